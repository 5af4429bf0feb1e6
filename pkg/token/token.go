// Package token decodes and encodes the fixed layouts of SPL token
// accounts and mints. Buffers are never aliased into structs; every read
// and write goes through an explicit length-checked step.
package token

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

const (
	// AccountLen is the serialized size of an SPL token account.
	AccountLen = 165

	// MintLen is the serialized size of an SPL mint.
	MintLen = 82

	amountOffset   = 64
	stateOffset    = 108
	decimalsOffset = 44
)

// Account is the decoded view of an SPL token account. Only the fields the
// swap program validates are surfaced.
type Account struct {
	Mint   solana.PublicKey
	Owner  solana.PublicKey
	Amount uint64
	State  uint8
}

// DecodeAccount parses a token account buffer.
func DecodeAccount(data []byte) (Account, error) {
	if len(data) != AccountLen {
		return Account{}, fmt.Errorf("token account: expected %d bytes, got %d", AccountLen, len(data))
	}

	var acc Account
	copy(acc.Mint[:], data[0:32])
	copy(acc.Owner[:], data[32:64])
	acc.Amount = binary.LittleEndian.Uint64(data[amountOffset : amountOffset+8])
	acc.State = data[stateOffset]
	return acc, nil
}

// NewAccountData builds an initialized token account buffer.
func NewAccountData(mint, owner solana.PublicKey, amount uint64) []byte {
	data := make([]byte, AccountLen)
	copy(data[0:32], mint[:])
	copy(data[32:64], owner[:])
	binary.LittleEndian.PutUint64(data[amountOffset:amountOffset+8], amount)
	data[stateOffset] = 1
	return data
}

// Amount reads the balance field in place.
func Amount(data []byte) (uint64, error) {
	if len(data) != AccountLen {
		return 0, fmt.Errorf("token account: expected %d bytes, got %d", AccountLen, len(data))
	}
	return binary.LittleEndian.Uint64(data[amountOffset : amountOffset+8]), nil
}

// PutAmount overwrites the balance field in place, leaving every other
// field untouched.
func PutAmount(data []byte, amount uint64) error {
	if len(data) != AccountLen {
		return fmt.Errorf("token account: expected %d bytes, got %d", AccountLen, len(data))
	}
	binary.LittleEndian.PutUint64(data[amountOffset:amountOffset+8], amount)
	return nil
}

// Mint is the decoded view of an SPL mint.
type Mint struct {
	Supply      uint64
	Decimals    uint8
	Initialized bool
}

// DecodeMint parses a mint buffer.
func DecodeMint(data []byte) (Mint, error) {
	if len(data) != MintLen {
		return Mint{}, fmt.Errorf("mint: expected %d bytes, got %d", MintLen, len(data))
	}

	var m Mint
	m.Supply = binary.LittleEndian.Uint64(data[36:44])
	m.Decimals = data[decimalsOffset]
	m.Initialized = data[45] == 1
	return m, nil
}

// NewMintData builds an initialized mint buffer.
func NewMintData(decimals uint8, supply uint64) []byte {
	data := make([]byte, MintLen)
	binary.LittleEndian.PutUint64(data[36:44], supply)
	data[decimalsOffset] = decimals
	data[45] = 1
	return data
}
