package swap

// Error is a program-level failure. The numeric value is the custom error
// code surfaced to the dispatcher as the instruction's failure code.
type Error uint32

const (
	ErrInvalidInstructionData Error = iota
	ErrSameMint
	ErrWrongOwnerBase
	ErrWrongOwnerQuote
	ErrInvalidParameters
	ErrNotOwner
	ErrWrongVaultBase
	ErrWrongVaultQuote
	ErrWrongMintBase
	ErrWrongMintQuote
	ErrPDAMismatch
	ErrMissingSignature
	ErrNotEnoughAccounts
	ErrAlreadyInitialized
	ErrNotInitialized
	ErrUnknownVersion
)

func (e Error) Code() uint32 {
	return uint32(e)
}

func (e Error) Error() string {
	switch e {
	case ErrInvalidInstructionData:
		return "invalid instruction data"
	case ErrSameMint:
		return "base and quote mints are identical"
	case ErrWrongOwnerBase:
		return "base vault authority mismatch"
	case ErrWrongOwnerQuote:
		return "quote vault authority mismatch"
	case ErrInvalidParameters:
		return "invalid parameters"
	case ErrNotOwner:
		return "caller is not the position owner"
	case ErrWrongVaultBase:
		return "base vault does not match position record"
	case ErrWrongVaultQuote:
		return "quote vault does not match position record"
	case ErrWrongMintBase:
		return "base mint mismatch"
	case ErrWrongMintQuote:
		return "quote mint mismatch"
	case ErrPDAMismatch:
		return "derived address mismatch"
	case ErrMissingSignature:
		return "missing required signature"
	case ErrNotEnoughAccounts:
		return "not enough accounts supplied"
	case ErrAlreadyInitialized:
		return "position account already initialized"
	case ErrNotInitialized:
		return "position account not initialized"
	case ErrUnknownVersion:
		return "unknown position record version"
	default:
		return "unknown swap error"
	}
}
