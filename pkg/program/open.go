package program

import (
	"encoding/binary"
	"log"

	"lukechampine.com/uint128"

	"aquaswap/pkg/swap"
	"aquaswap/pkg/token"
)

// OpenParams is the open instruction payload, fixed little-endian layout.
type OpenParams struct {
	ID         uint128.Uint128
	Price      uint64
	BonusBase  uint64
	BonusQuote uint64
	Bump       uint8
	// RequireVerify is carried on the wire for compatibility; the record
	// does not persist it.
	RequireVerify bool
}

// OpenParamsLen is the exact payload size of the open instruction.
const OpenParamsLen = 42

func decodeOpenParams(data []byte) (OpenParams, error) {
	if len(data) != OpenParamsLen {
		return OpenParams{}, swap.ErrInvalidInstructionData
	}

	var p OpenParams
	p.ID = uint128.FromBytes(data[0:16])
	p.Price = binary.LittleEndian.Uint64(data[16:24])
	p.BonusBase = binary.LittleEndian.Uint64(data[24:32])
	p.BonusQuote = binary.LittleEndian.Uint64(data[32:40])
	p.Bump = data[40]
	switch data[41] {
	case 0:
		p.RequireVerify = false
	case 1:
		p.RequireVerify = true
	default:
		return OpenParams{}, swap.ErrInvalidInstructionData
	}
	return p, nil
}

// EncodeOpenParams serializes the payload; callers prepend the opcode.
func EncodeOpenParams(p OpenParams) []byte {
	data := make([]byte, OpenParamsLen)
	p.ID.PutBytes(data[0:16])
	binary.LittleEndian.PutUint64(data[16:24], p.Price)
	binary.LittleEndian.PutUint64(data[24:32], p.BonusBase)
	binary.LittleEndian.PutUint64(data[32:40], p.BonusQuote)
	data[40] = p.Bump
	if p.RequireVerify {
		data[41] = 1
	}
	return data
}

// Open creates a position: it allocates the storage account at the derived
// address and populates the record. No asset moves in this operation.
//
// Accounts: owner (signer, writable), storage (writable), base vault,
// quote vault or native recipient, system program, rent sysvar.
func (e *Engine) Open(accounts []*Account, data []byte) error {
	log.Printf("open position")

	params, err := decodeOpenParams(data)
	if err != nil {
		return err
	}

	if len(accounts) < 6 {
		return swap.ErrNotEnoughAccounts
	}
	ownerAcc, storageAcc, baseAcc, quoteAcc := accounts[0], accounts[1], accounts[2], accounts[3]

	if !ownerAcc.Signer {
		return swap.ErrMissingSignature
	}

	if err := e.deriver.Verify(params.Bump, params.ID, storageAcc.Key); err != nil {
		return err
	}
	if len(storageAcc.Data) != 0 {
		return swap.ErrAlreadyInitialized
	}

	baseToken, err := baseAcc.TokenAccount()
	if err != nil {
		return swap.ErrInvalidParameters
	}

	// The quote side is either a token account (tokenized quote, or a
	// wrapped-native account identifying the recipient) or a plain wallet
	// (native quote paid straight to it).
	quoteRef := quoteAcc.Key
	quoteIsNative := false
	var quoteToken token.Account
	quoteIsToken := quoteAcc.IsTokenAccount()
	if quoteIsToken {
		quoteToken, err = quoteAcc.TokenAccount()
		if err != nil {
			return swap.ErrInvalidParameters
		}
		if quoteToken.Mint.Equals(baseToken.Mint) {
			return swap.ErrSameMint
		}
		if quoteToken.Mint.Equals(swap.NativeMint) {
			quoteIsNative = true
			quoteRef = quoteToken.Owner
		}
	} else {
		quoteIsNative = true
		if baseToken.Mint.Equals(swap.NativeMint) {
			return swap.ErrSameMint
		}
	}

	// Custody of the base vault must already sit with the derived address.
	if !baseToken.Owner.Equals(storageAcc.Key) {
		return swap.ErrWrongOwnerBase
	}

	// The quote side stays outside program custody.
	if quoteIsToken && quoteToken.Owner.Equals(storageAcc.Key) {
		return swap.ErrWrongOwnerQuote
	}

	if params.Price == 0 {
		return swap.ErrInvalidParameters
	}

	seeds := e.deriver.SignerSeeds(params.ID, params.Bump)
	lamports := e.rt.MinimumBalance(swap.RecordLen)
	if err := e.rt.CreateAccount(ownerAcc, storageAcc, swap.RecordLen, e.deriver.ProgramID(), lamports, seeds); err != nil {
		return err
	}

	record := swap.Position{
		Version:       swap.RecordVersion,
		Owner:         ownerAcc.Key,
		BaseVault:     baseAcc.Key,
		Quote:         quoteRef,
		ID:            params.ID,
		Price:         params.Price,
		BonusBase:     params.BonusBase,
		BonusQuote:    params.BonusQuote,
		Bump:          params.Bump,
		QuoteIsNative: quoteIsNative,
	}
	copy(storageAcc.Data, record.Encode())

	log.Printf("position opened: %s", storageAcc.Key)
	return nil
}
