package program_test

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"aquaswap/pkg/ledger"
	"aquaswap/pkg/program"
	"aquaswap/pkg/swap"
	"aquaswap/pkg/token"
)

var testProgramID = swap.DefaultProgramID

func newEngine() (*program.Engine, *ledger.Ledger) {
	l := ledger.New(testProgramID)
	return program.NewEngine(swap.NewDeriver(testProgramID), l), l
}

func walletAccount(key solana.PublicKey, lamports uint64, signer bool) *program.Account {
	return &program.Account{Key: key, Lamports: lamports, Owner: solana.SystemProgramID, Signer: signer, Writable: true}
}

func tokenAccount(mint, owner solana.PublicKey, amount uint64) *program.Account {
	return &program.Account{
		Key:      solana.NewWallet().PublicKey(),
		Lamports: 2_039_280,
		Data:     token.NewAccountData(mint, owner, amount),
		Owner:    solana.TokenProgramID,
		Writable: true,
	}
}

func mintAccount(key solana.PublicKey, decimals uint8) *program.Account {
	return &program.Account{
		Key:   key,
		Data:  token.NewMintData(decimals, 1_000_000_000_000_000),
		Owner: solana.TokenProgramID,
	}
}

func stubAccount(key solana.PublicKey) *program.Account {
	return &program.Account{Key: key}
}

// fixture holds one maker-side position setup: a funded base vault in
// program custody and a quote destination, plus the engine to run
// instructions against.
type fixture struct {
	t      *testing.T
	engine *program.Engine
	ledger *ledger.Ledger

	id   uint128.Uint128
	bump uint8

	baseMint  solana.PublicKey
	quoteMint solana.PublicKey

	owner     *program.Account
	storage   *program.Account
	baseVault *program.Account
	quote     *program.Account
}

func newFixture(t *testing.T) *fixture {
	engine, l := newEngine()
	id := uint128.From64(7)
	storageKey, bump, err := engine.Deriver().Derive(id)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	f := &fixture{
		t:         t,
		engine:    engine,
		ledger:    l,
		id:        id,
		bump:      bump,
		baseMint:  solana.NewWallet().PublicKey(),
		quoteMint: solana.NewWallet().PublicKey(),
	}
	f.owner = walletAccount(solana.NewWallet().PublicKey(), 10_000_000_000, true)
	f.storage = &program.Account{Key: storageKey, Owner: solana.SystemProgramID, Writable: true}
	f.baseVault = tokenAccount(f.baseMint, storageKey, 1_000_000_000_000)
	f.quote = tokenAccount(f.quoteMint, f.owner.Key, 0)
	return f
}

// nativeQuote switches the fixture's quote side to a plain wallet, which
// opens the position with a native quote.
func (f *fixture) nativeQuote() *program.Account {
	f.quote = walletAccount(solana.NewWallet().PublicKey(), 1_000_000_000, false)
	return f.quote
}

func (f *fixture) openAccounts() []*program.Account {
	return []*program.Account{
		f.owner, f.storage, f.baseVault, f.quote,
		stubAccount(solana.SystemProgramID), stubAccount(solana.SysVarRentPubkey),
	}
}

func (f *fixture) open(price, bonusBase, bonusQuote uint64) error {
	params := program.OpenParams{
		ID:         f.id,
		Price:      price,
		BonusBase:  bonusBase,
		BonusQuote: bonusQuote,
		Bump:       f.bump,
	}
	data := append([]byte{program.OpOpen}, program.EncodeOpenParams(params)...)
	return f.ledger.Execute(f.engine, f.openAccounts(), data)
}

func (f *fixture) mustOpen(price, bonusBase, bonusQuote uint64) {
	f.t.Helper()
	if err := f.open(price, bonusBase, bonusQuote); err != nil {
		f.t.Fatalf("open failed: %v", err)
	}
}

func (f *fixture) record() swap.Position {
	f.t.Helper()
	var record swap.Position
	if err := record.Decode(f.storage.Data); err != nil {
		f.t.Fatalf("record decode failed: %v", err)
	}
	return record
}

func balance(t *testing.T, acc *program.Account) uint64 {
	t.Helper()
	amount, err := token.Amount(acc.Data)
	if err != nil {
		t.Fatalf("balance of %s: %v", acc.Key, err)
	}
	return amount
}

func TestOpenCreatesRecord(t *testing.T) {
	f := newFixture(t)
	ownerBefore := f.owner.Lamports

	f.mustOpen(2_000_000_000, 1, 2)

	record := f.record()
	if !record.Owner.Equals(f.owner.Key) {
		t.Fatalf("record owner mismatch: %s", record.Owner)
	}
	if !record.BaseVault.Equals(f.baseVault.Key) {
		t.Fatalf("record vault mismatch: %s", record.BaseVault)
	}
	if !record.Quote.Equals(f.quote.Key) {
		t.Fatalf("record quote mismatch: %s", record.Quote)
	}
	if record.Price != 2_000_000_000 || record.BonusBase != 1 || record.BonusQuote != 2 {
		t.Fatalf("record terms mismatch: %+v", record)
	}
	if record.QuoteIsNative {
		t.Fatal("tokenized quote flagged as native")
	}

	rent := f.ledger.MinimumBalance(swap.RecordLen)
	if f.owner.Lamports != ownerBefore-rent {
		t.Fatalf("owner paid %d, expected %d", ownerBefore-f.owner.Lamports, rent)
	}
	if f.storage.Lamports != rent {
		t.Fatalf("storage holds %d lamports, expected %d", f.storage.Lamports, rent)
	}
	if !f.storage.Owner.Equals(testProgramID) {
		t.Fatalf("storage owner is %s", f.storage.Owner)
	}
}

func TestOpenNativeQuoteWallet(t *testing.T) {
	f := newFixture(t)
	recipient := f.nativeQuote()

	f.mustOpen(2_000_000_000, 0, 0)

	record := f.record()
	if !record.QuoteIsNative {
		t.Fatal("wallet quote should open a native position")
	}
	if !record.Quote.Equals(recipient.Key) {
		t.Fatalf("record quote mismatch: %s", record.Quote)
	}
}

func TestOpenWrappedNativeQuote(t *testing.T) {
	f := newFixture(t)
	recipient := solana.NewWallet().PublicKey()
	f.quote = tokenAccount(swap.NativeMint, recipient, 0)

	f.mustOpen(2_000_000_000, 0, 0)

	record := f.record()
	if !record.QuoteIsNative {
		t.Fatal("wrapped-native quote should open a native position")
	}
	if !record.Quote.Equals(recipient) {
		t.Fatalf("record quote should be the token owner, got %s", record.Quote)
	}
}

func TestOpenRequiresSignature(t *testing.T) {
	f := newFixture(t)
	f.owner.Signer = false
	if err := f.open(2_000_000_000, 0, 0); !errors.Is(err, swap.ErrMissingSignature) {
		t.Fatalf("expected ErrMissingSignature, got %v", err)
	}
}

func TestOpenRejectsSpoofedStorage(t *testing.T) {
	f := newFixture(t)
	f.storage.Key = solana.NewWallet().PublicKey()
	if err := f.open(2_000_000_000, 0, 0); !errors.Is(err, swap.ErrPDAMismatch) {
		t.Fatalf("expected ErrPDAMismatch, got %v", err)
	}
}

func TestOpenRejectsReopen(t *testing.T) {
	f := newFixture(t)
	f.mustOpen(2_000_000_000, 0, 0)
	if err := f.open(2_000_000_000, 0, 0); !errors.Is(err, swap.ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}
}

func TestOpenRejectsZeroPrice(t *testing.T) {
	f := newFixture(t)
	if err := f.open(0, 0, 0); !errors.Is(err, swap.ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters, got %v", err)
	}
}

func TestOpenRejectsSameMint(t *testing.T) {
	f := newFixture(t)
	f.quote = tokenAccount(f.baseMint, f.owner.Key, 0)
	if err := f.open(2_000_000_000, 0, 0); !errors.Is(err, swap.ErrSameMint) {
		t.Fatalf("expected ErrSameMint, got %v", err)
	}
}

func TestOpenRejectsNativeBaseWithNativeQuote(t *testing.T) {
	f := newFixture(t)
	f.baseVault = tokenAccount(swap.NativeMint, f.storage.Key, 1_000_000_000)
	f.nativeQuote()
	if err := f.open(2_000_000_000, 0, 0); !errors.Is(err, swap.ErrSameMint) {
		t.Fatalf("expected ErrSameMint, got %v", err)
	}
}

func TestOpenRejectsUncustodialVault(t *testing.T) {
	f := newFixture(t)
	f.baseVault = tokenAccount(f.baseMint, f.owner.Key, 1_000_000_000)
	if err := f.open(2_000_000_000, 0, 0); !errors.Is(err, swap.ErrWrongOwnerBase) {
		t.Fatalf("expected ErrWrongOwnerBase, got %v", err)
	}
}

func TestOpenChecksBaseCustodyBeforeQuoteCustody(t *testing.T) {
	f := newFixture(t)
	// Both custody rules violated at once: the base-side failure surfaces.
	f.baseVault = tokenAccount(f.baseMint, f.owner.Key, 1_000_000_000)
	f.quote = tokenAccount(f.quoteMint, f.storage.Key, 0)
	if err := f.open(2_000_000_000, 0, 0); !errors.Is(err, swap.ErrWrongOwnerBase) {
		t.Fatalf("expected ErrWrongOwnerBase, got %v", err)
	}
}

func TestOpenRejectsCustodialQuote(t *testing.T) {
	f := newFixture(t)
	f.quote = tokenAccount(f.quoteMint, f.storage.Key, 0)
	if err := f.open(2_000_000_000, 0, 0); !errors.Is(err, swap.ErrWrongOwnerQuote) {
		t.Fatalf("expected ErrWrongOwnerQuote, got %v", err)
	}
}

func TestOpenRejectsBadPayload(t *testing.T) {
	f := newFixture(t)

	short := append([]byte{program.OpOpen}, make([]byte, program.OpenParamsLen-1)...)
	if err := f.ledger.Execute(f.engine, f.openAccounts(), short); !errors.Is(err, swap.ErrInvalidInstructionData) {
		t.Fatalf("short payload: expected ErrInvalidInstructionData, got %v", err)
	}

	bad := program.EncodeOpenParams(program.OpenParams{ID: f.id, Price: 1, Bump: f.bump})
	bad[program.OpenParamsLen-1] = 2
	if err := f.ledger.Execute(f.engine, f.openAccounts(), append([]byte{program.OpOpen}, bad...)); !errors.Is(err, swap.ErrInvalidInstructionData) {
		t.Fatalf("bad verify flag: expected ErrInvalidInstructionData, got %v", err)
	}
}

// swapFixture extends the maker setup with a taker side.
type swapFixture struct {
	*fixture
	taker        *program.Account
	takerBase    *program.Account
	takerQuote   *program.Account
	quoteVault   *program.Account
	baseMintAcc  *program.Account
	quoteMintAcc *program.Account
	bonusBase    *program.Account
	bonusQuote   *program.Account
	wsolTemp     *program.Account
}

func newSwapFixture(t *testing.T) *swapFixture {
	f := newFixture(t)
	s := &swapFixture{fixture: f}
	s.taker = walletAccount(solana.NewWallet().PublicKey(), 10_000_000_000, true)
	s.takerBase = tokenAccount(f.baseMint, s.taker.Key, 0)
	s.takerQuote = tokenAccount(f.quoteMint, s.taker.Key, 1_000_000_000)
	s.quoteVault = f.quote
	s.baseMintAcc = mintAccount(f.baseMint, 9)
	s.quoteMintAcc = mintAccount(f.quoteMint, 6)
	// Pointing the bonus accounts at the taker disables the bonus legs.
	s.bonusBase = s.takerBase
	s.bonusQuote = s.takerQuote
	s.wsolTemp = stubAccount(solana.NewWallet().PublicKey())
	return s
}

func (s *swapFixture) swapAccounts() []*program.Account {
	return []*program.Account{
		s.taker, s.storage, s.baseVault, s.quoteVault,
		s.takerBase, s.takerQuote, s.baseMintAcc, s.quoteMintAcc,
		s.bonusBase, s.bonusQuote, s.wsolTemp,
		stubAccount(solana.TokenProgramID),
		stubAccount(solana.SystemProgramID),
		stubAccount(solana.SPLAssociatedTokenAccountProgramID),
	}
}

func (s *swapFixture) swap(quoteIn uint64) error {
	data := append([]byte{program.OpSwap}, program.EncodeSwapParams(program.SwapParams{QuoteIn: quoteIn})...)
	return s.ledger.Execute(s.engine, s.swapAccounts(), data)
}

func TestSwapTokenized(t *testing.T) {
	s := newSwapFixture(t)
	// 2 quote units per whole base unit, 9 base decimals against 6 quote
	// decimals.
	s.mustOpen(2_000_000_000, 0, 0)

	if err := s.swap(2_000_000); err != nil {
		t.Fatalf("swap failed: %v", err)
	}

	if got := balance(t, s.takerBase); got != 1_000_000_000 {
		t.Fatalf("taker received %d base units, expected 1_000_000_000", got)
	}
	if got := balance(t, s.baseVault); got != 1_000_000_000_000-1_000_000_000 {
		t.Fatalf("vault holds %d base units", got)
	}
	if got := balance(t, s.quoteVault); got != 2_000_000 {
		t.Fatalf("quote vault holds %d, expected 2_000_000", got)
	}
	if got := balance(t, s.takerQuote); got != 1_000_000_000-2_000_000 {
		t.Fatalf("taker quote holds %d", got)
	}
}

func TestSwapQuoteBonus(t *testing.T) {
	s := newSwapFixture(t)
	s.mustOpen(2_000_000_000, 0, 10_000_000_000) // 10% quote bonus
	s.bonusQuote = tokenAccount(s.quoteMint, solana.NewWallet().PublicKey(), 0)

	if err := s.swap(2_000_000); err != nil {
		t.Fatalf("swap failed: %v", err)
	}

	if got := balance(t, s.bonusQuote); got != 200_000 {
		t.Fatalf("referrer received %d quote units, expected 200_000", got)
	}
	if got := balance(t, s.quoteVault); got != 1_800_000 {
		t.Fatalf("quote vault holds %d, expected 1_800_000", got)
	}
	// The taker still receives the full conversion of the gross amount.
	if got := balance(t, s.takerBase); got != 1_000_000_000 {
		t.Fatalf("taker received %d base units", got)
	}
}

func TestSwapBaseBonus(t *testing.T) {
	s := newSwapFixture(t)
	s.mustOpen(2_000_000_000, 5_000_000_000, 0) // 5% base bonus
	s.bonusBase = tokenAccount(s.baseMint, solana.NewWallet().PublicKey(), 0)

	if err := s.swap(2_000_000); err != nil {
		t.Fatalf("swap failed: %v", err)
	}

	if got := balance(t, s.bonusBase); got != 50_000_000 {
		t.Fatalf("referrer received %d base units, expected 50_000_000", got)
	}
	if got := balance(t, s.baseVault); got != 1_000_000_000_000-1_000_000_000-50_000_000 {
		t.Fatalf("vault holds %d base units", got)
	}
}

func TestSwapBonusDisabledBySelfReferral(t *testing.T) {
	s := newSwapFixture(t)
	s.mustOpen(2_000_000_000, 5_000_000_000, 10_000_000_000)

	if err := s.swap(2_000_000); err != nil {
		t.Fatalf("swap failed: %v", err)
	}

	// With the bonus accounts aliased to the taker's, no bonus leg runs:
	// the vault keeps the full quote amount and pays only the conversion.
	if got := balance(t, s.quoteVault); got != 2_000_000 {
		t.Fatalf("quote vault holds %d, expected 2_000_000", got)
	}
	if got := balance(t, s.baseVault); got != 1_000_000_000_000-1_000_000_000 {
		t.Fatalf("vault holds %d base units", got)
	}
}

func TestSwapNativeQuote(t *testing.T) {
	s := newSwapFixture(t)
	recipient := s.nativeQuote()
	s.quoteVault = recipient
	s.mustOpen(2_000_000_000, 0, 0)

	s.takerQuote = tokenAccount(swap.NativeMint, s.taker.Key, 5_000_000_000)
	s.bonusQuote = s.takerQuote
	s.quoteMintAcc = mintAccount(swap.NativeMint, 9)
	tempKey, _, err := solana.FindAssociatedTokenAddress(s.storage.Key, swap.NativeMint)
	if err != nil {
		t.Fatalf("derive temp address: %v", err)
	}
	s.wsolTemp = &program.Account{Key: tempKey, Owner: solana.SystemProgramID, Writable: true}

	recipientBefore := recipient.Lamports
	takerBefore := s.taker.Lamports

	if err := s.swap(2_000_000_000); err != nil {
		t.Fatalf("swap failed: %v", err)
	}

	if recipient.Lamports != recipientBefore+2_000_000_000 {
		t.Fatalf("recipient holds %d lamports, expected %d", recipient.Lamports, recipientBefore+2_000_000_000)
	}
	if s.taker.Lamports != takerBefore-2_000_000_000 {
		t.Fatalf("taker holds %d lamports, expected %d", s.taker.Lamports, takerBefore-2_000_000_000)
	}
	if got := balance(t, s.takerBase); got != 1_000_000_000 {
		t.Fatalf("taker received %d base units", got)
	}
	// The bridging account does not outlive the instruction.
	if s.wsolTemp.Data != nil {
		t.Fatal("temporary wrapped account survived the swap")
	}
}

func TestSwapNativeRejectsWrongRecipient(t *testing.T) {
	s := newSwapFixture(t)
	s.quoteVault = s.nativeQuote()
	s.mustOpen(2_000_000_000, 0, 0)

	s.takerQuote = tokenAccount(swap.NativeMint, s.taker.Key, 5_000_000_000)
	s.bonusQuote = s.takerQuote
	s.quoteMintAcc = mintAccount(swap.NativeMint, 9)
	s.quoteVault = walletAccount(solana.NewWallet().PublicKey(), 0, false)

	if err := s.swap(2_000_000_000); !errors.Is(err, swap.ErrWrongVaultQuote) {
		t.Fatalf("expected ErrWrongVaultQuote, got %v", err)
	}
}

func TestSwapRejectsZeroQuote(t *testing.T) {
	s := newSwapFixture(t)
	s.mustOpen(2_000_000_000, 0, 0)
	if err := s.swap(0); !errors.Is(err, swap.ErrInvalidInstructionData) {
		t.Fatalf("expected ErrInvalidInstructionData, got %v", err)
	}
}

func TestSwapRejectsUnopenedPosition(t *testing.T) {
	s := newSwapFixture(t)
	if err := s.swap(2_000_000); !errors.Is(err, swap.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestSwapRejectsWrongVault(t *testing.T) {
	s := newSwapFixture(t)
	s.mustOpen(2_000_000_000, 0, 0)
	s.baseVault = tokenAccount(s.baseMint, s.storage.Key, 1_000_000_000)
	if err := s.swap(2_000_000); !errors.Is(err, swap.ErrWrongVaultBase) {
		t.Fatalf("expected ErrWrongVaultBase, got %v", err)
	}
}

func TestSwapRejectsCustodialQuoteVault(t *testing.T) {
	s := newSwapFixture(t)
	s.mustOpen(2_000_000_000, 0, 0)
	// The quote vault is reassigned to the derived authority after the
	// position opened; the fill must refuse to pay into program custody.
	s.quoteVault.Data = token.NewAccountData(s.quoteMint, s.storage.Key, 0)
	if err := s.swap(2_000_000); !errors.Is(err, swap.ErrWrongOwnerQuote) {
		t.Fatalf("expected ErrWrongOwnerQuote, got %v", err)
	}
}

func TestSwapRejectsMintMismatch(t *testing.T) {
	s := newSwapFixture(t)
	s.mustOpen(2_000_000_000, 0, 0)
	s.takerBase = tokenAccount(solana.NewWallet().PublicKey(), s.taker.Key, 0)
	if err := s.swap(2_000_000); !errors.Is(err, swap.ErrWrongMintBase) {
		t.Fatalf("expected ErrWrongMintBase, got %v", err)
	}
}

func TestSwapRollsBackOnFailure(t *testing.T) {
	s := newSwapFixture(t)
	s.mustOpen(2_000_000_000, 0, 0)
	// Drain the vault below the owed amount so the base leg fails after
	// the quote leg already moved value.
	if err := token.PutAmount(s.baseVault.Data, 10); err != nil {
		t.Fatalf("PutAmount failed: %v", err)
	}

	if err := s.swap(2_000_000); err == nil {
		t.Fatal("swap should fail on an underfunded vault")
	}

	if got := balance(t, s.quoteVault); got != 0 {
		t.Fatalf("quote vault kept %d units after rollback", got)
	}
	if got := balance(t, s.takerQuote); got != 1_000_000_000 {
		t.Fatalf("taker quote holds %d after rollback", got)
	}
	if got := balance(t, s.baseVault); got != 10 {
		t.Fatalf("base vault holds %d after rollback", got)
	}
}

func (f *fixture) closeAccounts(dest *program.Account) []*program.Account {
	return []*program.Account{
		f.owner, f.storage, f.baseVault, dest,
		stubAccount(solana.TokenProgramID),
	}
}

func (f *fixture) close(dest *program.Account) error {
	return f.ledger.Execute(f.engine, f.closeAccounts(dest), []byte{program.OpClose})
}

func TestCloseReturnsVaultAndDeposits(t *testing.T) {
	f := newFixture(t)
	f.mustOpen(2_000_000_000, 0, 0)

	dest := tokenAccount(f.baseMint, f.owner.Key, 0)
	ownerBefore := f.owner.Lamports
	storageLamports := f.storage.Lamports
	vaultLamports := f.baseVault.Lamports

	if err := f.close(dest); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if got := balance(t, dest); got != 1_000_000_000_000 {
		t.Fatalf("owner received %d base units, expected the full vault", got)
	}
	if f.baseVault.Data != nil {
		t.Fatal("vault account survived close")
	}
	if !swap.IsBlank(f.storage.Data) {
		t.Fatal("record survived close")
	}
	if f.storage.Lamports != 0 {
		t.Fatalf("storage kept %d lamports", f.storage.Lamports)
	}
	want := ownerBefore + storageLamports + vaultLamports
	if f.owner.Lamports != want {
		t.Fatalf("owner holds %d lamports, expected %d", f.owner.Lamports, want)
	}
}

func TestCloseRejectsNonOwner(t *testing.T) {
	f := newFixture(t)
	f.mustOpen(2_000_000_000, 0, 0)

	f.owner = walletAccount(solana.NewWallet().PublicKey(), 0, true)
	dest := tokenAccount(f.baseMint, f.owner.Key, 0)
	if err := f.close(dest); !errors.Is(err, swap.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestCloseTwice(t *testing.T) {
	f := newFixture(t)
	f.mustOpen(2_000_000_000, 0, 0)

	dest := tokenAccount(f.baseMint, f.owner.Key, 0)
	if err := f.close(dest); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := f.close(dest); !errors.Is(err, swap.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestCloseRejectsWrongVault(t *testing.T) {
	f := newFixture(t)
	f.mustOpen(2_000_000_000, 0, 0)

	f.baseVault = tokenAccount(f.baseMint, f.storage.Key, 5)
	dest := tokenAccount(f.baseMint, f.owner.Key, 0)
	if err := f.close(dest); !errors.Is(err, swap.ErrWrongVaultBase) {
		t.Fatalf("expected ErrWrongVaultBase, got %v", err)
	}
}

func TestCloseRejectsMintMismatch(t *testing.T) {
	f := newFixture(t)
	f.mustOpen(2_000_000_000, 0, 0)

	dest := tokenAccount(f.quoteMint, f.owner.Key, 0)
	if err := f.close(dest); !errors.Is(err, swap.ErrWrongMintBase) {
		t.Fatalf("expected ErrWrongMintBase, got %v", err)
	}
}

func TestProcessRejectsUnknownOpcode(t *testing.T) {
	f := newFixture(t)
	if err := f.ledger.Execute(f.engine, f.openAccounts(), []byte{99}); !errors.Is(err, swap.ErrInvalidInstructionData) {
		t.Fatalf("expected ErrInvalidInstructionData, got %v", err)
	}
	if err := f.ledger.Execute(f.engine, f.openAccounts(), nil); !errors.Is(err, swap.ErrInvalidInstructionData) {
		t.Fatalf("expected ErrInvalidInstructionData, got %v", err)
	}
}

func TestCloseRejectsPayload(t *testing.T) {
	f := newFixture(t)
	f.mustOpen(2_000_000_000, 0, 0)

	dest := tokenAccount(f.baseMint, f.owner.Key, 0)
	data := []byte{program.OpClose, 0}
	if err := f.ledger.Execute(f.engine, f.closeAccounts(dest), data); !errors.Is(err, swap.ErrInvalidInstructionData) {
		t.Fatalf("expected ErrInvalidInstructionData, got %v", err)
	}
}
