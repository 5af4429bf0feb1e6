package swap

import "github.com/gagliardetto/solana-go"

const (
	// DEFAULT_PROGRAM_ID is the deployed swap program address.
	DEFAULT_PROGRAM_ID = "26iQhBNLcPpV5gQnbCAqLR9m1rY7ZG88Qvmm2yLTKUiQ"

	// NATIVE_MINT is the canonical wrapped-SOL mint.
	NATIVE_MINT = "So11111111111111111111111111111111111111112"
)

var (
	DefaultProgramID = solana.MustPublicKeyFromBase58(DEFAULT_PROGRAM_ID)
	NativeMint       = solana.MustPublicKeyFromBase58(NATIVE_MINT)
)

// NativeDecimals is the decimal precision of the native asset (SOL).
const NativeDecimals = 9
