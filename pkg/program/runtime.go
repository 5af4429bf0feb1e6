package program

import (
	"errors"

	"github.com/gagliardetto/solana-go"
)

// ErrNotTokenAccount marks an account that cannot be interpreted as SPL
// token state.
var ErrNotTokenAccount = errors.New("account is not owned by the token program")

// SignerSeeds authorize an operation on behalf of a derived address: the
// derivation seeds plus the bump. A nil value means the operation is
// authorized by a transaction signer instead.
type SignerSeeds [][]byte

// Runtime is the external ledger at its interface: account allocation,
// rent computation and the token/native transfer primitives. Every
// operation issued within one instruction either fully commits or fully
// reverts; that atomicity is the runtime's contract, so the handlers carry
// no compensating rollback logic.
type Runtime interface {
	// MinimumBalance returns the rent-exempt minimum for an account of the
	// given size.
	MinimumBalance(space uint64) uint64

	// CreateAccount allocates a new account funded by from, assigned to
	// owner. The new account authorizes the allocation either as a
	// transaction signer or through seeds deriving its own address.
	CreateAccount(from, to *Account, space uint64, owner solana.PublicKey, lamports uint64, seeds SignerSeeds) error

	// Transfer moves token units between two token accounts of the same
	// mint.
	Transfer(from, to, authority *Account, amount uint64, seeds SignerSeeds) error

	// TransferChecked moves token units with an explicit mint and decimals
	// cross-check.
	TransferChecked(from, mint, to, authority *Account, amount uint64, decimals uint8, seeds SignerSeeds) error

	// TransferLamports moves native value between accounts; from must be a
	// transaction signer.
	TransferLamports(from, to *Account, lamports uint64) error

	// CloseTokenAccount closes a token account, crediting its lamports to
	// destination.
	CloseTokenAccount(account, destination, authority *Account, seeds SignerSeeds) error

	// CreateAssociatedTokenAccount creates the associated token account of
	// wallet for mint, funded by funding. When idempotent is set an
	// existing account is left as is.
	CreateAssociatedTokenAccount(funding, account, wallet, mint *Account, idempotent bool, seeds SignerSeeds) error
}
