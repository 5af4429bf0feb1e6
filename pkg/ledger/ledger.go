// Package ledger is an in-memory stand-in for the external ledger runtime:
// it implements the program.Runtime primitives over plain account values
// and executes instructions all-or-nothing, the same contract the real
// ledger provides.
package ledger

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"aquaswap/pkg/program"
	"aquaswap/pkg/swap"
	"aquaswap/pkg/token"
)

// Rent parameters of the hosting ledger.
const (
	lamportsPerByteYear    = 3480
	rentExemptionYears     = 2
	accountStorageOverhead = 128
)

// Ledger implements program.Runtime.
type Ledger struct {
	programID solana.PublicKey
}

func New(programID solana.PublicKey) *Ledger {
	return &Ledger{programID: programID}
}

// MinimumBalance returns the rent-exempt minimum for an account of the
// given size.
func (l *Ledger) MinimumBalance(space uint64) uint64 {
	return (space + accountStorageOverhead) * lamportsPerByteYear * rentExemptionYears
}

// authorized reports whether authority may act for expected: either it is
// the expected key and a transaction signer, or the supplied seeds derive
// the expected key under the hosted program (delegated signing).
func (l *Ledger) authorized(authority *program.Account, expected solana.PublicKey, seeds program.SignerSeeds) bool {
	if !authority.Key.Equals(expected) {
		return false
	}
	if authority.Signer {
		return true
	}
	if len(seeds) == 0 {
		return false
	}
	derived, err := solana.CreateProgramAddress(seeds, l.programID)
	if err != nil {
		return false
	}
	return derived.Equals(expected)
}

func (l *Ledger) CreateAccount(from, to *program.Account, space uint64, owner solana.PublicKey, lamports uint64, seeds program.SignerSeeds) error {
	if !from.Signer {
		return fmt.Errorf("create account: funding account %s is not a signer", from.Key)
	}
	if !l.authorized(to, to.Key, seeds) {
		return fmt.Errorf("create account: %s did not authorize its allocation", to.Key)
	}
	if len(to.Data) != 0 || to.Lamports != 0 {
		return fmt.Errorf("create account: %s is already in use", to.Key)
	}
	if from.Lamports < lamports {
		return fmt.Errorf("create account: insufficient lamports in %s", from.Key)
	}

	from.Lamports -= lamports
	to.Lamports += lamports
	to.Data = make([]byte, space)
	to.Owner = owner
	return nil
}

func (l *Ledger) Transfer(from, to, authority *program.Account, amount uint64, seeds program.SignerSeeds) error {
	return l.transferToken(from, to, authority, amount, seeds, nil, 0)
}

func (l *Ledger) TransferChecked(from, mint, to, authority *program.Account, amount uint64, decimals uint8, seeds program.SignerSeeds) error {
	return l.transferToken(from, to, authority, amount, seeds, mint, decimals)
}

func (l *Ledger) transferToken(from, to, authority *program.Account, amount uint64, seeds program.SignerSeeds, mint *program.Account, decimals uint8) error {
	src, err := from.TokenAccount()
	if err != nil {
		return fmt.Errorf("token transfer: source %s: %w", from.Key, err)
	}
	dst, err := to.TokenAccount()
	if err != nil {
		return fmt.Errorf("token transfer: destination %s: %w", to.Key, err)
	}
	if !src.Mint.Equals(dst.Mint) {
		return fmt.Errorf("token transfer: mint mismatch between %s and %s", from.Key, to.Key)
	}
	if mint != nil {
		if !src.Mint.Equals(mint.Key) {
			return fmt.Errorf("token transfer: source mint does not match %s", mint.Key)
		}
		m, err := mint.Mint()
		if err != nil {
			return fmt.Errorf("token transfer: mint %s: %w", mint.Key, err)
		}
		if m.Decimals != decimals {
			return fmt.Errorf("token transfer: decimals mismatch for %s", mint.Key)
		}
	}
	if !l.authorized(authority, src.Owner, seeds) {
		return fmt.Errorf("token transfer: %s is not authorized over %s", authority.Key, from.Key)
	}
	if src.Amount < amount {
		return fmt.Errorf("token transfer: insufficient balance in %s", from.Key)
	}

	if err := token.PutAmount(from.Data, src.Amount-amount); err != nil {
		return err
	}
	return token.PutAmount(to.Data, dst.Amount+amount)
}

func (l *Ledger) TransferLamports(from, to *program.Account, lamports uint64) error {
	if !from.Signer {
		return fmt.Errorf("native transfer: %s is not a signer", from.Key)
	}
	if from.Lamports < lamports {
		return fmt.Errorf("native transfer: insufficient lamports in %s", from.Key)
	}
	from.Lamports -= lamports
	to.Lamports += lamports
	return nil
}

func (l *Ledger) CloseTokenAccount(account, destination, authority *program.Account, seeds program.SignerSeeds) error {
	acc, err := account.TokenAccount()
	if err != nil {
		return fmt.Errorf("close token account: %s: %w", account.Key, err)
	}
	if !l.authorized(authority, acc.Owner, seeds) {
		return fmt.Errorf("close token account: %s is not authorized over %s", authority.Key, account.Key)
	}
	// Non-native accounts must be drained first. Wrapped-native accounts
	// may close with a balance; on a real ledger their lamports track the
	// wrapped amount and closing redeems both. Here token amounts and
	// lamports are bookkept independently, so only the account's lamports
	// are credited and a residual wrapped balance is simply dropped.
	if acc.Amount > 0 && !acc.Mint.Equals(swap.NativeMint) {
		return fmt.Errorf("close token account: %s still holds %d units", account.Key, acc.Amount)
	}

	destination.Lamports += account.Lamports
	account.Lamports = 0
	account.Data = nil
	account.Owner = solana.SystemProgramID
	return nil
}

func (l *Ledger) CreateAssociatedTokenAccount(funding, account, wallet, mint *program.Account, idempotent bool, seeds program.SignerSeeds) error {
	if account.IsTokenAccount() {
		if idempotent {
			return nil
		}
		return fmt.Errorf("create associated token account: %s already exists", account.Key)
	}
	if !funding.Signer {
		return fmt.Errorf("create associated token account: funding account %s is not a signer", funding.Key)
	}

	expected, _, err := solana.FindAssociatedTokenAddress(wallet.Key, mint.Key)
	if err != nil {
		return fmt.Errorf("create associated token account: %w", err)
	}
	if !expected.Equals(account.Key) {
		return fmt.Errorf("create associated token account: %s is not the associated address of %s", account.Key, wallet.Key)
	}

	lamports := l.MinimumBalance(token.AccountLen)
	if funding.Lamports < lamports {
		return fmt.Errorf("create associated token account: insufficient lamports in %s", funding.Key)
	}
	funding.Lamports -= lamports
	account.Lamports += lamports
	account.Data = token.NewAccountData(mint.Key, wallet.Key, 0)
	account.Owner = solana.TokenProgramID
	return nil
}
