package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"aquaswap/pkg/client"
	"aquaswap/pkg/config"
	"aquaswap/pkg/program"
	"aquaswap/pkg/sol"
	"aquaswap/pkg/swap"
	"aquaswap/pkg/token"
	"aquaswap/pkg/watch"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: swapctl <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  derive  Compute the storage address for a position id")
	fmt.Fprintln(os.Stderr, "  open    Open a position")
	fmt.Fprintln(os.Stderr, "  swap    Fill against a position")
	fmt.Fprintln(os.Stderr, "  close   Close a position and reclaim the vault")
	fmt.Fprintln(os.Stderr, "  show    Print a position record")
	fmt.Fprintln(os.Stderr, "  watch   Follow a position over WebSocket")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	var cmdErr error
	switch os.Args[1] {
	case "derive":
		cmdErr = cmdDerive(cfg, os.Args[2:])
	case "open":
		cmdErr = cmdOpen(ctx, cfg, os.Args[2:])
	case "swap":
		cmdErr = cmdSwap(ctx, cfg, os.Args[2:])
	case "close":
		cmdErr = cmdClose(ctx, cfg, os.Args[2:])
	case "show":
		cmdErr = cmdShow(ctx, cfg, os.Args[2:])
	case "watch":
		cmdErr = cmdWatch(ctx, cfg, os.Args[2:])
	default:
		usage()
	}
	if cmdErr != nil {
		log.Fatalf("%s: %v", os.Args[1], cmdErr)
	}
}

func newPool(ctx context.Context, cfg config.Config) (*sol.RPCPool, error) {
	if len(cfg.RPCEndpoints) == 0 {
		return nil, fmt.Errorf("no RPC endpoints configured; set RPC_ENDPOINTS")
	}
	return sol.NewRPCPool(ctx, cfg.RPCEndpoints, cfg.JitoRPC, cfg.RateLimit)
}

func parseID(raw string) (uint128.Uint128, error) {
	if raw == "" {
		return uint128.Uint128{}, fmt.Errorf("missing -id")
	}
	id, err := uint128.FromString(raw)
	if err != nil {
		return uint128.Uint128{}, fmt.Errorf("invalid -id %q: %w", raw, err)
	}
	return id, nil
}

func parseAmount(raw, name string) (uint64, error) {
	if raw == "" {
		return 0, fmt.Errorf("missing -%s", name)
	}
	amount, ok := math.NewIntFromString(raw)
	if !ok || amount.IsNegative() || !amount.IsUint64() {
		return 0, fmt.Errorf("invalid -%s %q: must fit in an unsigned 64-bit integer", name, raw)
	}
	return amount.Uint64(), nil
}

func parseKey(raw, name string) (solana.PublicKey, error) {
	if raw == "" {
		return solana.PublicKey{}, fmt.Errorf("missing -%s", name)
	}
	pk, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid -%s: %w", name, err)
	}
	return pk, nil
}

func requireWallet(cfg config.Config) (solana.PrivateKey, error) {
	if len(cfg.Wallet) == 0 {
		return nil, fmt.Errorf("no wallet configured; set SWAP_WALLET_KEY")
	}
	return cfg.Wallet, nil
}

func submit(ctx context.Context, cfg config.Config, pool *sol.RPCPool, wallet solana.PrivateKey, inst solana.Instruction) error {
	rpcClient := pool.GetClient()

	blockhash, err := rpcClient.GetLatestBlockhash(ctx)
	if err != nil {
		return fmt.Errorf("fetch blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{inst},
		blockhash.Value.Blockhash,
		solana.TransactionPayer(wallet.PublicKey()),
	)
	if err != nil {
		return fmt.Errorf("build transaction: %w", err)
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(wallet.PublicKey()) {
			return &wallet
		}
		return nil
	}); err != nil {
		return fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := rpcClient.SendTransaction(ctx, tx)
	if err != nil {
		return err
	}
	log.Printf("submitted: %s", sig)
	return nil
}

func cmdDerive(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("derive", flag.ExitOnError)
	idFlag := fs.String("id", "", "Position identifier (decimal, up to 128 bits)")
	fs.Parse(args)

	id, err := parseID(*idFlag)
	if err != nil {
		return err
	}

	storage, bump, err := client.Derive(cfg.ProgramID, id)
	if err != nil {
		return err
	}
	wsolTemp, err := client.WSOLTempAddress(storage)
	if err != nil {
		return err
	}

	fmt.Printf("program:   %s\n", cfg.ProgramID)
	fmt.Printf("storage:   %s\n", storage)
	fmt.Printf("bump:      %d\n", bump)
	fmt.Printf("wsol temp: %s\n", wsolTemp)
	return nil
}

func cmdOpen(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("open", flag.ExitOnError)
	idFlag := fs.String("id", "", "Position identifier (decimal, up to 128 bits)")
	priceFlag := fs.String("price", "", "Base per quote price, scaled by 1e9")
	bonusBaseFlag := fs.String("bonus-base", "0", "Base-side bonus percentage, scaled by 1e9")
	bonusQuoteFlag := fs.String("bonus-quote", "0", "Quote-side bonus percentage, scaled by 1e9")
	baseVaultFlag := fs.String("base-vault", "", "Funded base token account owned by the storage address")
	quoteFlag := fs.String("quote", "", "Quote vault token account, or wallet for a native quote")
	fs.Parse(args)

	wallet, err := requireWallet(cfg)
	if err != nil {
		return err
	}
	id, err := parseID(*idFlag)
	if err != nil {
		return err
	}
	price, err := parseAmount(*priceFlag, "price")
	if err != nil {
		return err
	}
	bonusBase, err := parseAmount(*bonusBaseFlag, "bonus-base")
	if err != nil {
		return err
	}
	bonusQuote, err := parseAmount(*bonusQuoteFlag, "bonus-quote")
	if err != nil {
		return err
	}
	baseVault, err := parseKey(*baseVaultFlag, "base-vault")
	if err != nil {
		return err
	}
	quote, err := parseKey(*quoteFlag, "quote")
	if err != nil {
		return err
	}

	storage, bump, err := client.Derive(cfg.ProgramID, id)
	if err != nil {
		return err
	}

	pool, err := newPool(ctx, cfg)
	if err != nil {
		return err
	}

	inst := client.NewOpenInstruction(cfg.ProgramID, program.OpenParams{
		ID:         id,
		Price:      price,
		BonusBase:  bonusBase,
		BonusQuote: bonusQuote,
		Bump:       bump,
	}, wallet.PublicKey(), storage, baseVault, quote)

	log.Printf("opening position %s at %s", id, storage)
	return submit(ctx, cfg, pool, wallet, inst)
}

func cmdSwap(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("swap", flag.ExitOnError)
	idFlag := fs.String("id", "", "Position identifier (decimal, up to 128 bits)")
	quoteInFlag := fs.String("quote-in", "", "Quote amount to pay in smallest units")
	takerQuoteFlag := fs.String("taker-quote", "", "Taker quote token account (omit for a native quote)")
	bonusBaseFlag := fs.String("bonus-base-account", "", "Referral base token account (optional)")
	bonusQuoteFlag := fs.String("bonus-quote-account", "", "Referral quote token account (optional)")
	fs.Parse(args)

	wallet, err := requireWallet(cfg)
	if err != nil {
		return err
	}
	id, err := parseID(*idFlag)
	if err != nil {
		return err
	}
	quoteIn, err := parseAmount(*quoteInFlag, "quote-in")
	if err != nil {
		return err
	}

	storage, _, err := client.Derive(cfg.ProgramID, id)
	if err != nil {
		return err
	}

	pool, err := newPool(ctx, cfg)
	if err != nil {
		return err
	}
	rpcClient := pool.GetClient()

	record, err := fetchRecord(ctx, rpcClient, storage)
	if err != nil {
		return err
	}

	// The base mint comes from the vault, the quote side from the record.
	vaultInfo, err := rpcClient.GetAccountInfo(ctx, record.BaseVault)
	if err != nil {
		return fmt.Errorf("fetch base vault: %w", err)
	}
	vault, err := token.DecodeAccount(vaultInfo.Value.Data.GetBinary())
	if err != nil {
		return fmt.Errorf("decode base vault: %w", err)
	}

	quoteMint := swap.NativeMint
	takerQuote, _, err := solana.FindAssociatedTokenAddress(wallet.PublicKey(), swap.NativeMint)
	if err != nil {
		return fmt.Errorf("derive taker quote account: %w", err)
	}
	if !record.QuoteIsNative {
		quoteInfo, err := rpcClient.GetAccountInfo(ctx, record.Quote)
		if err != nil {
			return fmt.Errorf("fetch quote vault: %w", err)
		}
		quoteVault, err := token.DecodeAccount(quoteInfo.Value.Data.GetBinary())
		if err != nil {
			return fmt.Errorf("decode quote vault: %w", err)
		}
		quoteMint = quoteVault.Mint
		takerQuote, err = parseKey(*takerQuoteFlag, "taker-quote")
		if err != nil {
			return err
		}
	}

	takerBase, _, err := solana.FindAssociatedTokenAddress(wallet.PublicKey(), vault.Mint)
	if err != nil {
		return fmt.Errorf("derive taker base account: %w", err)
	}
	wsolTemp, err := client.WSOLTempAddress(storage)
	if err != nil {
		return err
	}

	// Bonus accounts default to the taker's own, which disables the legs.
	bonusBase := takerBase
	if *bonusBaseFlag != "" {
		if bonusBase, err = parseKey(*bonusBaseFlag, "bonus-base-account"); err != nil {
			return err
		}
	}
	bonusQuote := takerQuote
	if *bonusQuoteFlag != "" {
		if bonusQuote, err = parseKey(*bonusQuoteFlag, "bonus-quote-account"); err != nil {
			return err
		}
	}

	inst := client.NewSwapInstruction(cfg.ProgramID, quoteIn, client.SwapAccounts{
		Taker:      wallet.PublicKey(),
		Storage:    storage,
		BaseVault:  record.BaseVault,
		QuoteVault: record.Quote,
		TakerBase:  takerBase,
		TakerQuote: takerQuote,
		BaseMint:   vault.Mint,
		QuoteMint:  quoteMint,
		BonusBase:  bonusBase,
		BonusQuote: bonusQuote,
		WSOLTemp:   wsolTemp,
	})

	log.Printf("swapping %d quote units against %s", quoteIn, storage)
	return submit(ctx, cfg, pool, wallet, inst)
}

func cmdClose(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("close", flag.ExitOnError)
	idFlag := fs.String("id", "", "Position identifier (decimal, up to 128 bits)")
	destFlag := fs.String("dest", "", "Base token account receiving the vault balance (defaults to the owner ATA)")
	fs.Parse(args)

	wallet, err := requireWallet(cfg)
	if err != nil {
		return err
	}
	id, err := parseID(*idFlag)
	if err != nil {
		return err
	}

	storage, _, err := client.Derive(cfg.ProgramID, id)
	if err != nil {
		return err
	}

	pool, err := newPool(ctx, cfg)
	if err != nil {
		return err
	}
	rpcClient := pool.GetClient()

	record, err := fetchRecord(ctx, rpcClient, storage)
	if err != nil {
		return err
	}

	dest := solana.PublicKey{}
	if *destFlag != "" {
		if dest, err = parseKey(*destFlag, "dest"); err != nil {
			return err
		}
	} else {
		vaultInfo, err := rpcClient.GetAccountInfo(ctx, record.BaseVault)
		if err != nil {
			return fmt.Errorf("fetch base vault: %w", err)
		}
		vault, err := token.DecodeAccount(vaultInfo.Value.Data.GetBinary())
		if err != nil {
			return fmt.Errorf("decode base vault: %w", err)
		}
		if dest, _, err = solana.FindAssociatedTokenAddress(wallet.PublicKey(), vault.Mint); err != nil {
			return fmt.Errorf("derive destination account: %w", err)
		}
	}

	inst := client.NewCloseInstruction(cfg.ProgramID, wallet.PublicKey(), storage, record.BaseVault, dest)

	log.Printf("closing position %s", storage)
	return submit(ctx, cfg, pool, wallet, inst)
}

func cmdShow(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	idFlag := fs.String("id", "", "Position identifier (decimal, up to 128 bits)")
	fs.Parse(args)

	id, err := parseID(*idFlag)
	if err != nil {
		return err
	}
	storage, bump, err := client.Derive(cfg.ProgramID, id)
	if err != nil {
		return err
	}

	pool, err := newPool(ctx, cfg)
	if err != nil {
		return err
	}
	rpcClient := pool.GetClient()

	record, err := fetchRecord(ctx, rpcClient, storage)
	if err != nil {
		return err
	}

	// One batched fetch for the vault and, when tokenized, the quote vault.
	keys := []solana.PublicKey{record.BaseVault}
	if !record.QuoteIsNative {
		keys = append(keys, record.Quote)
	}
	batch, err := rpcClient.GetMultipleAccounts(ctx, keys...)
	if err != nil {
		return fmt.Errorf("fetch vaults: %w", err)
	}
	if len(batch.Value) == 0 || batch.Value[0] == nil {
		return fmt.Errorf("base vault %s not found", record.BaseVault)
	}
	vault, err := token.DecodeAccount(batch.Value[0].Data.GetBinary())
	if err != nil {
		return fmt.Errorf("decode base vault: %w", err)
	}

	fmt.Printf("storage:      %s (bump %d)\n", storage, bump)
	fmt.Printf("owner:        %s\n", record.Owner)
	fmt.Printf("base vault:   %s\n", record.BaseVault)
	fmt.Printf("base mint:    %s\n", vault.Mint)
	fmt.Printf("base balance: %d\n", vault.Amount)
	if record.QuoteIsNative {
		fmt.Printf("quote:        native, paid to %s\n", record.Quote)
	} else {
		fmt.Printf("quote vault:  %s\n", record.Quote)
		if len(batch.Value) > 1 && batch.Value[1] != nil {
			if quoteVault, err := token.DecodeAccount(batch.Value[1].Data.GetBinary()); err == nil {
				fmt.Printf("quote mint:   %s\n", quoteVault.Mint)
			}
		}
	}
	fmt.Printf("price:        %d (scaled by %d)\n", record.Price, swap.PriceScale)
	fmt.Printf("bonus base:   %d\n", record.BonusBase)
	fmt.Printf("bonus quote:  %d\n", record.BonusQuote)
	return nil
}

func cmdWatch(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	idFlag := fs.String("id", "", "Position identifier (decimal, up to 128 bits)")
	intervalFlag := fs.Duration("interval", 15*time.Second, "Status print interval")
	fs.Parse(args)

	if cfg.WSEndpoint == "" {
		return fmt.Errorf("no WebSocket endpoint configured; set WS_ENDPOINT")
	}
	id, err := parseID(*idFlag)
	if err != nil {
		return err
	}
	storage, _, err := client.Derive(cfg.ProgramID, id)
	if err != nil {
		return err
	}

	pool, err := newPool(ctx, cfg)
	if err != nil {
		return err
	}
	record, err := fetchRecord(ctx, pool.GetClient(), storage)
	if err != nil {
		return err
	}

	watcher, err := watch.New(ctx, cfg.WSEndpoint)
	if err != nil {
		return err
	}
	defer watcher.Close()

	monitor, err := watch.NewPositionMonitor(watcher, storage, record.BaseVault)
	if err != nil {
		return err
	}

	log.Printf("watching position %s (vault %s)", storage, record.BaseVault)
	ticker := time.NewTicker(*intervalFlag)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, ok := monitor.Record(); !ok {
				log.Printf("position %s: no record observed", storage)
				continue
			}
			log.Printf("position %s: vault balance %d", storage, monitor.VaultBalance())
		}
	}
}

func fetchRecord(ctx context.Context, rpcClient *sol.Client, storage solana.PublicKey) (swap.Position, error) {
	info, err := rpcClient.GetAccountInfo(ctx, storage)
	if err != nil {
		return swap.Position{}, fmt.Errorf("fetch position %s: %w", storage, err)
	}
	data := info.Value.Data.GetBinary()
	if swap.IsBlank(data) {
		return swap.Position{}, fmt.Errorf("position %s is not open", storage)
	}
	var record swap.Position
	if err := record.Decode(data); err != nil {
		return swap.Position{}, fmt.Errorf("decode position %s: %w", storage, err)
	}
	return record, nil
}
