package swap

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

const (
	// RecordVersion is the current persisted layout version. The original
	// layout carried no discriminant; the version byte is an additive
	// extension at offset 0.
	RecordVersion = 1

	// RecordLen is the exact size of an encoded position record.
	RecordLen = 147
)

// Position is the persistent state of one open swap offer. It is created
// once by the open handler, read (never mutated) by the swap handler, and
// zeroed by the close handler.
type Position struct {
	Version   uint8
	Owner     solana.PublicKey
	BaseVault solana.PublicKey
	// Quote is the custodial quote vault, or the quote recipient identity
	// when QuoteIsNative is set.
	Quote         solana.PublicKey
	ID            uint128.Uint128
	Price         uint64
	BonusBase     uint64
	BonusQuote    uint64
	Bump          uint8
	QuoteIsNative bool
}

// Decode reads a position record from its fixed byte layout. The buffer
// length must match RecordLen exactly.
func (p *Position) Decode(data []byte) error {
	if len(data) != RecordLen {
		return fmt.Errorf("position record: expected %d bytes, got %d: %w", RecordLen, len(data), ErrInvalidInstructionData)
	}
	if data[0] != RecordVersion {
		return fmt.Errorf("position record: version %d: %w", data[0], ErrUnknownVersion)
	}
	p.Version = data[0]

	offset := 1
	copy(p.Owner[:], data[offset:offset+32])
	offset += 32
	copy(p.BaseVault[:], data[offset:offset+32])
	offset += 32
	copy(p.Quote[:], data[offset:offset+32])
	offset += 32

	p.ID = uint128.FromBytes(data[offset : offset+16])
	offset += 16

	p.Price = binary.LittleEndian.Uint64(data[offset : offset+8])
	offset += 8
	p.BonusBase = binary.LittleEndian.Uint64(data[offset : offset+8])
	offset += 8
	p.BonusQuote = binary.LittleEndian.Uint64(data[offset : offset+8])
	offset += 8

	p.Bump = data[offset]
	offset++
	switch data[offset] {
	case 0:
		p.QuoteIsNative = false
	case 1:
		p.QuoteIsNative = true
	default:
		return fmt.Errorf("position record: bad native flag %d: %w", data[offset], ErrInvalidInstructionData)
	}

	return nil
}

// Encode writes the record into its fixed byte layout.
func (p *Position) Encode() []byte {
	data := make([]byte, RecordLen)
	data[0] = RecordVersion

	offset := 1
	copy(data[offset:offset+32], p.Owner[:])
	offset += 32
	copy(data[offset:offset+32], p.BaseVault[:])
	offset += 32
	copy(data[offset:offset+32], p.Quote[:])
	offset += 32

	p.ID.PutBytes(data[offset : offset+16])
	offset += 16

	binary.LittleEndian.PutUint64(data[offset:offset+8], p.Price)
	offset += 8
	binary.LittleEndian.PutUint64(data[offset:offset+8], p.BonusBase)
	offset += 8
	binary.LittleEndian.PutUint64(data[offset:offset+8], p.BonusQuote)
	offset += 8

	data[offset] = p.Bump
	offset++
	if p.QuoteIsNative {
		data[offset] = 1
	}

	return data
}

// IsBlank reports whether the buffer holds no record (all zero bytes), as
// left behind by account allocation or by the close handler.
func IsBlank(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
