package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/mr-tron/base58"

	"aquaswap/pkg/swap"
)

// Config holds everything the CLI and services need to reach the cluster
// and the deployed swap program.
type Config struct {
	RPCEndpoints []string
	WSEndpoint   string
	JitoRPC      string
	RateLimit    int
	ProgramID    solana.PublicKey
	// Wallet is the signing key, when configured.
	Wallet solana.PrivateKey
}

// Load reads configuration from the environment, with an optional .env
// file filling in unset variables.
func Load() (Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	cfg := Config{
		RPCEndpoints: splitCSV(os.Getenv("RPC_ENDPOINTS")),
		WSEndpoint:   strings.TrimSpace(os.Getenv("WS_ENDPOINT")),
		JitoRPC:      strings.TrimSpace(os.Getenv("JITO_RPC")),
		RateLimit:    20,
		ProgramID:    swap.DefaultProgramID,
	}

	if raw := strings.TrimSpace(os.Getenv("RPC_RATE_LIMIT")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return Config{}, fmt.Errorf("invalid RPC_RATE_LIMIT %q", raw)
		}
		cfg.RateLimit = limit
	}

	if raw := strings.TrimSpace(os.Getenv("SWAP_PROGRAM_ID")); raw != "" {
		pk, err := solana.PublicKeyFromBase58(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SWAP_PROGRAM_ID: %w", err)
		}
		cfg.ProgramID = pk
	}

	if raw := strings.TrimSpace(os.Getenv("SWAP_WALLET_KEY")); raw != "" {
		key, err := base58.Decode(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SWAP_WALLET_KEY: %w", err)
		}
		if len(key) != 64 {
			return Config{}, fmt.Errorf("invalid SWAP_WALLET_KEY: expected 64 bytes, got %d", len(key))
		}
		cfg.Wallet = solana.PrivateKey(key)
	}

	return cfg, nil
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
