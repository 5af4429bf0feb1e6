// Package client builds the swap program's instructions for callers
// submitting real transactions. Account ordering is positional and fixed
// per operation; see the handler documentation in pkg/program.
package client

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"aquaswap/pkg/program"
	"aquaswap/pkg/swap"
)

// OpenInstruction creates a position.
type OpenInstruction struct {
	bin.BaseVariant
	Params                  program.OpenParams
	programID               solana.PublicKey
	solana.AccountMetaSlice `bin:"-" borsh_skip:"true"`
}

// NewOpenInstruction assembles the open instruction. The storage address
// and bump must come from the same derivation the program verifies; use
// Derive.
func NewOpenInstruction(
	programID solana.PublicKey,
	params program.OpenParams,
	owner solana.PublicKey,
	storage solana.PublicKey,
	baseVault solana.PublicKey,
	quote solana.PublicKey,
) *OpenInstruction {
	inst := &OpenInstruction{
		Params:    params,
		programID: programID,
	}
	inst.BaseVariant = bin.BaseVariant{Impl: inst}
	inst.AccountMetaSlice = solana.AccountMetaSlice{
		solana.NewAccountMeta(owner, true, true),
		solana.NewAccountMeta(storage, true, false),
		solana.NewAccountMeta(baseVault, false, false),
		solana.NewAccountMeta(quote, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
	}
	return inst
}

func (inst *OpenInstruction) ProgramID() solana.PublicKey {
	return inst.programID
}

func (inst *OpenInstruction) Accounts() (out []*solana.AccountMeta) {
	return inst.Impl.(solana.AccountsGettable).GetAccounts()
}

func (inst *OpenInstruction) Data() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := buf.WriteByte(program.OpOpen); err != nil {
		return nil, fmt.Errorf("failed to write opcode: %w", err)
	}

	enc := bin.NewBorshEncoder(buf)
	idBytes := make([]byte, 16)
	inst.Params.ID.PutBytes(idBytes)
	if err := enc.WriteBytes(idBytes, false); err != nil {
		return nil, fmt.Errorf("failed to encode id: %w", err)
	}
	if err := enc.WriteUint64(inst.Params.Price, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("failed to encode price: %w", err)
	}
	if err := enc.WriteUint64(inst.Params.BonusBase, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("failed to encode base bonus: %w", err)
	}
	if err := enc.WriteUint64(inst.Params.BonusQuote, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("failed to encode quote bonus: %w", err)
	}
	if err := enc.WriteByte(inst.Params.Bump); err != nil {
		return nil, fmt.Errorf("failed to encode bump: %w", err)
	}
	if err := enc.WriteBool(inst.Params.RequireVerify); err != nil {
		return nil, fmt.Errorf("failed to encode verify flag: %w", err)
	}

	return buf.Bytes(), nil
}

// SwapInstruction executes one fill against a position.
type SwapInstruction struct {
	bin.BaseVariant
	QuoteIn                 uint64
	programID               solana.PublicKey
	solana.AccountMetaSlice `bin:"-" borsh_skip:"true"`
}

// SwapAccounts names the accounts of one swap call.
type SwapAccounts struct {
	Taker      solana.PublicKey
	Storage    solana.PublicKey
	BaseVault  solana.PublicKey
	QuoteVault solana.PublicKey
	TakerBase  solana.PublicKey
	TakerQuote solana.PublicKey
	BaseMint   solana.PublicKey
	QuoteMint  solana.PublicKey
	BonusBase  solana.PublicKey
	BonusQuote solana.PublicKey
	WSOLTemp   solana.PublicKey
}

// NewSwapInstruction assembles the swap instruction. Callers with no bonus
// recipients pass the taker's own token accounts for BonusBase/BonusQuote,
// which disables the bonus legs.
func NewSwapInstruction(programID solana.PublicKey, quoteIn uint64, accs SwapAccounts) *SwapInstruction {
	inst := &SwapInstruction{
		QuoteIn:   quoteIn,
		programID: programID,
	}
	inst.BaseVariant = bin.BaseVariant{Impl: inst}
	inst.AccountMetaSlice = solana.AccountMetaSlice{
		solana.NewAccountMeta(accs.Taker, true, true),
		solana.NewAccountMeta(accs.Storage, false, false),
		solana.NewAccountMeta(accs.BaseVault, true, false),
		solana.NewAccountMeta(accs.QuoteVault, true, false),
		solana.NewAccountMeta(accs.TakerBase, true, false),
		solana.NewAccountMeta(accs.TakerQuote, true, false),
		solana.NewAccountMeta(accs.BaseMint, false, false),
		solana.NewAccountMeta(accs.QuoteMint, false, false),
		solana.NewAccountMeta(accs.BonusBase, true, false),
		solana.NewAccountMeta(accs.BonusQuote, true, false),
		solana.NewAccountMeta(accs.WSOLTemp, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.SPLAssociatedTokenAccountProgramID, false, false),
	}
	return inst
}

func (inst *SwapInstruction) ProgramID() solana.PublicKey {
	return inst.programID
}

func (inst *SwapInstruction) Accounts() (out []*solana.AccountMeta) {
	return inst.Impl.(solana.AccountsGettable).GetAccounts()
}

func (inst *SwapInstruction) Data() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := buf.WriteByte(program.OpSwap); err != nil {
		return nil, fmt.Errorf("failed to write opcode: %w", err)
	}
	if err := bin.NewBorshEncoder(buf).WriteUint64(inst.QuoteIn, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("failed to encode quote amount: %w", err)
	}
	return buf.Bytes(), nil
}

// CloseInstruction closes a position and reclaims the vault balance and
// deposits.
type CloseInstruction struct {
	bin.BaseVariant
	programID               solana.PublicKey
	solana.AccountMetaSlice `bin:"-" borsh_skip:"true"`
}

func NewCloseInstruction(
	programID solana.PublicKey,
	owner solana.PublicKey,
	storage solana.PublicKey,
	baseVault solana.PublicKey,
	ownerBase solana.PublicKey,
) *CloseInstruction {
	inst := &CloseInstruction{programID: programID}
	inst.BaseVariant = bin.BaseVariant{Impl: inst}
	inst.AccountMetaSlice = solana.AccountMetaSlice{
		solana.NewAccountMeta(owner, true, true),
		solana.NewAccountMeta(storage, true, false),
		solana.NewAccountMeta(baseVault, true, false),
		solana.NewAccountMeta(ownerBase, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}
	return inst
}

func (inst *CloseInstruction) ProgramID() solana.PublicKey {
	return inst.programID
}

func (inst *CloseInstruction) Accounts() (out []*solana.AccountMeta) {
	return inst.Impl.(solana.AccountsGettable).GetAccounts()
}

func (inst *CloseInstruction) Data() ([]byte, error) {
	return []byte{program.OpClose}, nil
}

// Derive computes the position storage address and bump for an identifier.
func Derive(programID solana.PublicKey, id uint128.Uint128) (solana.PublicKey, uint8, error) {
	return swap.NewDeriver(programID).Derive(id)
}

// WSOLTempAddress computes the temporary wrapped-native bridging account
// for a position: the storage address's associated WSOL account.
func WSOLTempAddress(storage solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(storage, swap.NativeMint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive wsol temp address: %w", err)
	}
	return addr, nil
}
