package program

import (
	"log"

	"aquaswap/pkg/swap"
)

// Close tears a position down: any remaining vault balance returns to the
// owner, the vault account is closed, the storage account's lamports are
// swept to the owner and its contents zeroed ahead of deallocation.
//
// Accounts: owner (signer, writable), storage (writable), base vault (w),
// owner base destination (w), token program.
func (e *Engine) Close(accounts []*Account, data []byte) error {
	log.Printf("close position")

	if len(data) != 0 {
		return swap.ErrInvalidInstructionData
	}
	if len(accounts) < 5 {
		return swap.ErrNotEnoughAccounts
	}
	ownerAcc, storageAcc, vaultAcc, destAcc := accounts[0], accounts[1], accounts[2], accounts[3]

	if !ownerAcc.Signer {
		return swap.ErrMissingSignature
	}

	if swap.IsBlank(storageAcc.Data) {
		return swap.ErrNotInitialized
	}
	var record swap.Position
	if err := record.Decode(storageAcc.Data); err != nil {
		return err
	}

	if !record.Owner.Equals(ownerAcc.Key) {
		return swap.ErrNotOwner
	}
	if !record.BaseVault.Equals(vaultAcc.Key) {
		return swap.ErrWrongVaultBase
	}
	if err := e.deriver.Verify(record.Bump, record.ID, storageAcc.Key); err != nil {
		return err
	}

	vault, err := vaultAcc.TokenAccount()
	if err != nil {
		return swap.ErrInvalidParameters
	}
	dest, err := destAcc.TokenAccount()
	if err != nil {
		return swap.ErrInvalidParameters
	}

	if !vault.Mint.Equals(dest.Mint) {
		return swap.ErrWrongMintBase
	}
	if !vault.Owner.Equals(storageAcc.Key) {
		return swap.ErrWrongOwnerBase
	}

	seeds := e.deriver.SignerSeeds(record.ID, record.Bump)

	if vault.Amount > 0 {
		log.Printf("returning %d base units to owner", vault.Amount)
		if err := e.rt.Transfer(vaultAcc, destAcc, storageAcc, vault.Amount, seeds); err != nil {
			return err
		}
	}

	if err := e.rt.CloseTokenAccount(vaultAcc, ownerAcc, storageAcc, seeds); err != nil {
		return err
	}

	// The storage account belongs to the program: sweep its deposit and
	// zero its contents directly.
	ownerAcc.Lamports += storageAcc.Lamports
	storageAcc.Lamports = 0
	for i := range storageAcc.Data {
		storageAcc.Data[i] = 0
	}

	log.Printf("position closed")
	return nil
}
