package program

import (
	"github.com/gagliardetto/solana-go"

	"aquaswap/pkg/token"
)

// Account is one externally-supplied account reference, as handed to a
// handler by the dispatcher. The handlers treat every field as adversarial
// input and re-derive or cross-check it before any value moves.
type Account struct {
	Key      solana.PublicKey
	Lamports uint64
	Data     []byte
	Owner    solana.PublicKey
	Signer   bool
	Writable bool
}

// IsTokenAccount reports whether the account plausibly holds an SPL token
// account: owned by the token program with the exact serialized size.
func (a *Account) IsTokenAccount() bool {
	return a.Owner.Equals(solana.TokenProgramID) && len(a.Data) == token.AccountLen
}

// TokenAccount decodes the account as an SPL token account.
func (a *Account) TokenAccount() (token.Account, error) {
	if !a.Owner.Equals(solana.TokenProgramID) {
		return token.Account{}, ErrNotTokenAccount
	}
	return token.DecodeAccount(a.Data)
}

// Mint decodes the account as an SPL mint.
func (a *Account) Mint() (token.Mint, error) {
	if !a.Owner.Equals(solana.TokenProgramID) {
		return token.Mint{}, ErrNotTokenAccount
	}
	return token.DecodeMint(a.Data)
}
