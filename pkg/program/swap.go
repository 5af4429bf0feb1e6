package program

import (
	"encoding/binary"
	"log"

	"aquaswap/pkg/swap"
)

// SwapParams is the swap instruction payload.
type SwapParams struct {
	// QuoteIn is the amount of quote units the taker pays.
	QuoteIn uint64
}

// SwapParamsLen is the exact payload size of the swap instruction.
const SwapParamsLen = 8

func decodeSwapParams(data []byte) (SwapParams, error) {
	if len(data) != SwapParamsLen {
		return SwapParams{}, swap.ErrInvalidInstructionData
	}
	return SwapParams{QuoteIn: binary.LittleEndian.Uint64(data[0:8])}, nil
}

// EncodeSwapParams serializes the payload; callers prepend the opcode.
func EncodeSwapParams(p SwapParams) []byte {
	data := make([]byte, SwapParamsLen)
	binary.LittleEndian.PutUint64(data[0:8], p.QuoteIn)
	return data
}

// Swap executes one atomic fill against the posted price: the taker pays
// quote into the vault (minus any quote-side bonus) and receives the
// converted base amount from the vault, signed by the derived authority.
//
// Accounts: taker (signer, writable), storage, base vault (w), quote vault
// or native recipient (w), taker base (w), taker quote (w), base mint,
// quote mint, bonus base recipient (w), bonus quote recipient (w), wsol
// temp (w), token program, system program, associated token program.
func (e *Engine) Swap(accounts []*Account, data []byte) error {
	log.Printf("swap")

	params, err := decodeSwapParams(data)
	if err != nil {
		return err
	}
	if params.QuoteIn == 0 {
		return swap.ErrInvalidInstructionData
	}

	if len(accounts) < 14 {
		return swap.ErrNotEnoughAccounts
	}
	takerAcc := accounts[0]
	storageAcc := accounts[1]
	baseVaultAcc := accounts[2]
	quoteVaultAcc := accounts[3]
	takerBaseAcc := accounts[4]
	takerQuoteAcc := accounts[5]
	baseMintAcc := accounts[6]
	quoteMintAcc := accounts[7]
	bonusBaseAcc := accounts[8]
	bonusQuoteAcc := accounts[9]
	wsolTempAcc := accounts[10]

	if !takerAcc.Signer {
		return swap.ErrMissingSignature
	}

	if swap.IsBlank(storageAcc.Data) {
		return swap.ErrNotInitialized
	}
	var record swap.Position
	if err := record.Decode(storageAcc.Data); err != nil {
		return err
	}
	if err := e.deriver.Verify(record.Bump, record.ID, storageAcc.Key); err != nil {
		return err
	}

	// Load every field needed from the token views up front; nothing below
	// re-reads account data once transfers start.
	baseVault, err := baseVaultAcc.TokenAccount()
	if err != nil {
		return swap.ErrInvalidParameters
	}
	takerBase, err := takerBaseAcc.TokenAccount()
	if err != nil {
		return swap.ErrInvalidParameters
	}
	takerQuote, err := takerQuoteAcc.TokenAccount()
	if err != nil {
		return swap.ErrInvalidParameters
	}
	baseMint, err := baseMintAcc.Mint()
	if err != nil {
		return swap.ErrInvalidParameters
	}

	if !record.BaseVault.Equals(baseVaultAcc.Key) {
		return swap.ErrWrongVaultBase
	}
	if !baseVault.Owner.Equals(storageAcc.Key) {
		return swap.ErrWrongOwnerBase
	}
	if !baseVault.Mint.Equals(takerBase.Mint) {
		return swap.ErrWrongMintBase
	}
	if !baseVault.Mint.Equals(baseMintAcc.Key) {
		return swap.ErrWrongMintBase
	}

	quoteDecimals := uint8(swap.NativeDecimals)
	if record.QuoteIsNative {
		if !quoteMintAcc.Key.Equals(swap.NativeMint) {
			return swap.ErrWrongMintQuote
		}
		// Native proceeds go to the recipient the record names, nobody else.
		if !record.Quote.Equals(quoteVaultAcc.Key) {
			return swap.ErrWrongVaultQuote
		}
	} else {
		if !record.Quote.Equals(quoteVaultAcc.Key) {
			return swap.ErrWrongVaultQuote
		}
		quoteVault, err := quoteVaultAcc.TokenAccount()
		if err != nil {
			return swap.ErrInvalidParameters
		}
		// The quote vault stays outside program custody; a quote vault
		// assigned to the derived authority is rejected.
		if quoteVault.Owner.Equals(storageAcc.Key) {
			return swap.ErrWrongOwnerQuote
		}
		if !quoteVault.Mint.Equals(takerQuote.Mint) {
			return swap.ErrWrongMintQuote
		}
		if !quoteVault.Mint.Equals(quoteMintAcc.Key) {
			return swap.ErrWrongMintQuote
		}
		quoteMint, err := quoteMintAcc.Mint()
		if err != nil {
			return swap.ErrInvalidParameters
		}
		quoteDecimals = quoteMint.Decimals
	}

	baseOut, err := swap.QuoteToBase(params.QuoteIn, record.Price, baseMint.Decimals, quoteDecimals)
	if err != nil {
		return err
	}

	var quoteBonus uint64
	if record.BonusQuote != 0 && !bonusQuoteAcc.Key.Equals(takerQuoteAcc.Key) {
		quoteBonus, err = swap.ApplyBonus(record.BonusQuote, params.QuoteIn)
		if err != nil {
			return err
		}
		log.Printf("quote bonus: %d", quoteBonus)
	}
	if quoteBonus > params.QuoteIn {
		return swap.ErrInvalidParameters
	}
	quoteToVault := params.QuoteIn - quoteBonus

	seeds := SignerSeeds(e.deriver.SignerSeeds(record.ID, record.Bump))

	// Leg 1: taker pays the vault. Native quote cannot be moved with the
	// tokenized primitive, so it bridges through a temporary wrapped
	// account before a plain native transfer.
	if record.QuoteIsNative {
		if err := e.rt.CreateAssociatedTokenAccount(takerAcc, wsolTempAcc, storageAcc, quoteMintAcc, true, seeds); err != nil {
			return err
		}
		if err := e.rt.TransferChecked(takerQuoteAcc, quoteMintAcc, wsolTempAcc, takerAcc, quoteToVault, quoteDecimals, nil); err != nil {
			return err
		}
		if err := e.rt.CloseTokenAccount(wsolTempAcc, takerAcc, storageAcc, seeds); err != nil {
			return err
		}
		if err := e.rt.TransferLamports(takerAcc, quoteVaultAcc, quoteToVault); err != nil {
			return err
		}
	} else {
		if err := e.rt.TransferChecked(takerQuoteAcc, quoteMintAcc, quoteVaultAcc, takerAcc, quoteToVault, quoteDecimals, nil); err != nil {
			return err
		}
	}

	// Leg 2: quote-side referral bonus.
	if quoteBonus > 0 {
		if record.QuoteIsNative {
			if err := e.rt.CreateAssociatedTokenAccount(takerAcc, wsolTempAcc, storageAcc, quoteMintAcc, false, seeds); err != nil {
				return err
			}
			if err := e.rt.TransferChecked(takerQuoteAcc, quoteMintAcc, wsolTempAcc, takerAcc, quoteBonus, quoteDecimals, nil); err != nil {
				return err
			}
			if err := e.rt.CloseTokenAccount(wsolTempAcc, takerAcc, storageAcc, seeds); err != nil {
				return err
			}
			if err := e.rt.TransferLamports(takerAcc, bonusQuoteAcc, quoteBonus); err != nil {
				return err
			}
		} else {
			if err := e.rt.TransferChecked(takerQuoteAcc, quoteMintAcc, bonusQuoteAcc, takerAcc, quoteBonus, quoteDecimals, nil); err != nil {
				return err
			}
		}
	}

	// Leg 3: vault delivers base to the taker, signed by the derived
	// authority.
	log.Printf("base out: %d", baseOut)
	if err := e.rt.TransferChecked(baseVaultAcc, baseMintAcc, takerBaseAcc, storageAcc, baseOut, baseMint.Decimals, seeds); err != nil {
		return err
	}

	// Leg 4: base-side referral bonus.
	if record.BonusBase != 0 && !bonusBaseAcc.Key.Equals(takerBaseAcc.Key) {
		bonusBase, err := bonusBaseAcc.TokenAccount()
		if err != nil {
			return swap.ErrInvalidParameters
		}
		if !bonusBase.Mint.Equals(baseMintAcc.Key) {
			return swap.ErrWrongMintBase
		}
		baseBonus, err := swap.ApplyBonus(record.BonusBase, baseOut)
		if err != nil {
			return err
		}
		log.Printf("base bonus: %d", baseBonus)
		if err := e.rt.TransferChecked(baseVaultAcc, baseMintAcc, bonusBaseAcc, storageAcc, baseBonus, baseMint.Decimals, seeds); err != nil {
			return err
		}
	}

	log.Printf("swap completed")
	return nil
}
