package sol

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	jitorpc "github.com/jito-labs/jito-go-rpc"
	"golang.org/x/time/rate"
)

// Client wraps a Solana RPC endpoint with request rate limiting and an
// optional Jito block-engine path for transaction submission.
type Client struct {
	endpoint string
	rpc      *rpc.Client
	limiter  *rate.Limiter
	jito     *jitorpc.JitoJsonRpcClient
}

// NewClient creates a client for one endpoint. jitoRpc may be empty, in
// which case transactions go through the regular RPC. reqLimitPerSecond
// caps outgoing requests per endpoint.
func NewClient(ctx context.Context, endpoint string, jitoRpc string, reqLimitPerSecond int) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("empty RPC endpoint")
	}
	if reqLimitPerSecond <= 0 {
		reqLimitPerSecond = 20
	}

	client := &Client{
		endpoint: endpoint,
		rpc:      rpc.New(endpoint),
		limiter:  rate.NewLimiter(rate.Limit(reqLimitPerSecond), reqLimitPerSecond),
	}
	if jitoRpc != "" {
		client.jito = jitorpc.NewJitoJsonRpcClient(jitoRpc, "")
	}
	return client, nil
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// GetAccountInfo fetches one account.
func (c *Client) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.rpc.GetAccountInfo(ctx, account)
}

// GetMultipleAccounts fetches a batch of accounts in one request.
func (c *Client) GetMultipleAccounts(ctx context.Context, accounts ...solana.PublicKey) (*rpc.GetMultipleAccountsResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.rpc.GetMultipleAccounts(ctx, accounts...)
}

// GetMinimumBalanceForRentExemption asks the cluster for the rent-exempt
// minimum of an account of the given size.
func (c *Client) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	return c.rpc.GetMinimumBalanceForRentExemption(ctx, dataSize, rpc.CommitmentConfirmed)
}

// GetLatestBlockhash fetches a recent blockhash for transaction assembly.
func (c *Client) GetLatestBlockhash(ctx context.Context) (*rpc.GetLatestBlockhashResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
}

// SendTransaction submits a signed transaction, through Jito when
// configured.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return solana.Signature{}, err
	}

	if c.jito != nil {
		serialized, err := tx.ToBase64()
		if err != nil {
			return solana.Signature{}, fmt.Errorf("serialize transaction: %w", err)
		}
		params := []interface{}{serialized, map[string]string{"encoding": "base64"}}
		if _, err := c.jito.SendTxn(params, false); err != nil {
			return solana.Signature{}, fmt.Errorf("jito send transaction: %w", err)
		}
		return tx.Signatures[0], nil
	}

	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}
	return sig, nil
}
