package swap

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

// Deriver computes and verifies the program-scoped authority address of a
// position. The derived address doubles as the record's storage location
// and as the delegated signing authority for vault transfers.
type Deriver struct {
	programID solana.PublicKey
}

func NewDeriver(programID solana.PublicKey) *Deriver {
	return &Deriver{programID: programID}
}

func (d *Deriver) ProgramID() solana.PublicKey {
	return d.programID
}

// Seeds returns the derivation seeds for a position identifier: its 16-byte
// little-endian encoding.
func (d *Deriver) Seeds(id uint128.Uint128) [][]byte {
	seed := make([]byte, 16)
	id.PutBytes(seed)
	return [][]byte{seed}
}

// SignerSeeds returns the seeds extended with the bump, as used to sign
// transfers on behalf of the derived authority.
func (d *Deriver) SignerSeeds(id uint128.Uint128, bump uint8) [][]byte {
	return append(d.Seeds(id), []byte{bump})
}

// Derive finds the derived address and bump for a position identifier.
func (d *Deriver) Derive(id uint128.Uint128) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(d.Seeds(id), d.programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive position address: %w", err)
	}
	return addr, bump, nil
}

// Verify recomputes the derived address from (id, bump) and rejects any
// candidate that does not match exactly. This is the sole gate against a
// spoofed position-storage address.
func (d *Deriver) Verify(bump uint8, id uint128.Uint128, candidate solana.PublicKey) error {
	derived, err := solana.CreateProgramAddress(d.SignerSeeds(id, bump), d.programID)
	if err != nil {
		return ErrPDAMismatch
	}
	if !derived.Equals(candidate) {
		return ErrPDAMismatch
	}
	return nil
}
