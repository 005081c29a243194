package rpcclient

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"

	"github.com/solwallet/solwallet/pkg/types"
)

// Commitment levels.
const (
	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"
)

// ErrAccountNotFound is returned when the node has no account for a key.
var ErrAccountNotFound = errors.New("account not found")

// ErrNoFee is returned by GetFeeForMessage when the blockhash has expired.
var ErrNoFee = errors.New("fee unavailable for message")

// maxMultipleAccounts is the node's limit for getMultipleAccounts.
const maxMultipleAccounts = 100

type rpcContext struct {
	Slot uint64 `json:"slot"`
}

// LatestBlockhash is the result of getLatestBlockhash.
type LatestBlockhash struct {
	Slot                 uint64
	Blockhash            types.Hash
	LastValidBlockHeight uint64
}

// AccountInfo is an account's on-chain state.
type AccountInfo struct {
	Lamports   uint64
	Owner      types.PublicKey
	Data       []byte
	Executable bool
	RentEpoch  uint64
}

type accountJSON struct {
	Lamports   uint64          `json:"lamports"`
	Owner      types.PublicKey `json:"owner"`
	Data       []string        `json:"data"`
	Executable bool            `json:"executable"`
	RentEpoch  uint64          `json:"rentEpoch"`
}

func (a *accountJSON) decode() (*AccountInfo, error) {
	info := &AccountInfo{
		Lamports:   a.Lamports,
		Owner:      a.Owner,
		Executable: a.Executable,
		RentEpoch:  a.RentEpoch,
	}
	if len(a.Data) > 0 && a.Data[0] != "" {
		if len(a.Data) > 1 && a.Data[1] != "base64" {
			return nil, fmt.Errorf("unexpected account data encoding %q", a.Data[1])
		}
		b, err := base64.StdEncoding.DecodeString(a.Data[0])
		if err != nil {
			return nil, fmt.Errorf("decode account data: %w", err)
		}
		info.Data = b
	}
	return info, nil
}

// KeyedAccount pairs an account with its address.
type KeyedAccount struct {
	PublicKey types.PublicKey
	Account   *AccountInfo
}

// TokenAmount is a token balance in base units plus its decimals.
type TokenAmount struct {
	Amount         uint64
	Decimals       uint8
	UIAmountString string
}

// TokenAccount is a parsed SPL token account.
type TokenAccount struct {
	PublicKey types.PublicKey
	Mint      types.PublicKey
	Owner     types.PublicKey
	Amount    TokenAmount
	Lamports  uint64
}

// TokenAccountFilter selects token accounts by mint or by token program.
// Exactly one field must be set.
type TokenAccountFilter struct {
	Mint      types.PublicKey
	ProgramID types.PublicKey
}

func (c *Client) config(extra map[string]interface{}) map[string]interface{} {
	cfg := map[string]interface{}{"commitment": c.commitment}
	for k, v := range extra {
		cfg[k] = v
	}
	return cfg
}

// GetLatestBlockhash returns a recent blockhash for building transactions.
func (c *Client) GetLatestBlockhash(ctx context.Context) (*LatestBlockhash, error) {
	var res struct {
		Context rpcContext `json:"context"`
		Value   struct {
			Blockhash            types.Hash `json:"blockhash"`
			LastValidBlockHeight uint64     `json:"lastValidBlockHeight"`
		} `json:"value"`
	}
	if err := c.Call(ctx, "getLatestBlockhash", []interface{}{c.config(nil)}, &res); err != nil {
		return nil, fmt.Errorf("getLatestBlockhash: %w", err)
	}
	return &LatestBlockhash{
		Slot:                 res.Context.Slot,
		Blockhash:            res.Value.Blockhash,
		LastValidBlockHeight: res.Value.LastValidBlockHeight,
	}, nil
}

// GetBalance returns an account's balance in lamports.
func (c *Client) GetBalance(ctx context.Context, pub types.PublicKey) (uint64, error) {
	var res struct {
		Context rpcContext `json:"context"`
		Value   uint64     `json:"value"`
	}
	if err := c.Call(ctx, "getBalance", []interface{}{pub.String(), c.config(nil)}, &res); err != nil {
		return 0, fmt.Errorf("getBalance %s: %w", pub, err)
	}
	return res.Value, nil
}

// GetBalances returns lamport balances for keys in order. Missing accounts
// have a zero balance.
func (c *Client) GetBalances(ctx context.Context, keys []types.PublicKey) ([]uint64, error) {
	accounts, err := c.GetMultipleAccounts(ctx, keys)
	if err != nil {
		return nil, err
	}
	out := make([]uint64, len(accounts))
	for i, a := range accounts {
		if a != nil {
			out[i] = a.Lamports
		}
	}
	return out, nil
}

// GetAccountInfo returns an account's state, or ErrAccountNotFound.
func (c *Client) GetAccountInfo(ctx context.Context, pub types.PublicKey) (*AccountInfo, error) {
	var res struct {
		Context rpcContext   `json:"context"`
		Value   *accountJSON `json:"value"`
	}
	params := []interface{}{pub.String(), c.config(map[string]interface{}{"encoding": "base64"})}
	if err := c.Call(ctx, "getAccountInfo", params, &res); err != nil {
		return nil, fmt.Errorf("getAccountInfo %s: %w", pub, err)
	}
	if res.Value == nil {
		return nil, fmt.Errorf("%s: %w", pub, ErrAccountNotFound)
	}
	return res.Value.decode()
}

// GetMultipleAccounts fetches accounts in batches. Entries for accounts
// that do not exist are nil.
func (c *Client) GetMultipleAccounts(ctx context.Context, keys []types.PublicKey) ([]*AccountInfo, error) {
	out := make([]*AccountInfo, 0, len(keys))
	for start := 0; start < len(keys); start += maxMultipleAccounts {
		end := start + maxMultipleAccounts
		if end > len(keys) {
			end = len(keys)
		}
		addrs := make([]string, 0, end-start)
		for _, k := range keys[start:end] {
			addrs = append(addrs, k.String())
		}

		var res struct {
			Context rpcContext     `json:"context"`
			Value   []*accountJSON `json:"value"`
		}
		params := []interface{}{addrs, c.config(map[string]interface{}{"encoding": "base64"})}
		if err := c.Call(ctx, "getMultipleAccounts", params, &res); err != nil {
			return nil, fmt.Errorf("getMultipleAccounts: %w", err)
		}
		if len(res.Value) != len(addrs) {
			return nil, fmt.Errorf("getMultipleAccounts: got %d accounts, asked for %d", len(res.Value), len(addrs))
		}
		for _, v := range res.Value {
			if v == nil {
				out = append(out, nil)
				continue
			}
			info, err := v.decode()
			if err != nil {
				return nil, err
			}
			out = append(out, info)
		}
	}
	return out, nil
}

type parsedTokenAccount struct {
	Pubkey  types.PublicKey `json:"pubkey"`
	Account struct {
		Lamports uint64 `json:"lamports"`
		Data     struct {
			Program string `json:"program"`
			Parsed  struct {
				Info struct {
					Mint        types.PublicKey `json:"mint"`
					Owner       types.PublicKey `json:"owner"`
					TokenAmount struct {
						Amount         string `json:"amount"`
						Decimals       uint8  `json:"decimals"`
						UIAmountString string `json:"uiAmountString"`
					} `json:"tokenAmount"`
				} `json:"info"`
			} `json:"parsed"`
		} `json:"data"`
	} `json:"account"`
}

// GetTokenAccountsByOwner lists the token accounts owned by owner.
func (c *Client) GetTokenAccountsByOwner(ctx context.Context, owner types.PublicKey, filter TokenAccountFilter) ([]TokenAccount, error) {
	var sel map[string]string
	switch {
	case !filter.Mint.IsZero() && filter.ProgramID.IsZero():
		sel = map[string]string{"mint": filter.Mint.String()}
	case filter.Mint.IsZero() && !filter.ProgramID.IsZero():
		sel = map[string]string{"programId": filter.ProgramID.String()}
	default:
		return nil, errors.New("token account filter needs exactly one of mint or program id")
	}

	var res struct {
		Context rpcContext           `json:"context"`
		Value   []parsedTokenAccount `json:"value"`
	}
	params := []interface{}{owner.String(), sel, c.config(map[string]interface{}{"encoding": "jsonParsed"})}
	if err := c.Call(ctx, "getTokenAccountsByOwner", params, &res); err != nil {
		return nil, fmt.Errorf("getTokenAccountsByOwner %s: %w", owner, err)
	}

	out := make([]TokenAccount, 0, len(res.Value))
	for _, v := range res.Value {
		info := v.Account.Data.Parsed.Info
		amount, err := strconv.ParseUint(info.TokenAmount.Amount, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("token account %s amount %q: %w", v.Pubkey, info.TokenAmount.Amount, err)
		}
		out = append(out, TokenAccount{
			PublicKey: v.Pubkey,
			Mint:      info.Mint,
			Owner:     info.Owner,
			Lamports:  v.Account.Lamports,
			Amount: TokenAmount{
				Amount:         amount,
				Decimals:       info.TokenAmount.Decimals,
				UIAmountString: info.TokenAmount.UIAmountString,
			},
		})
	}
	return out, nil
}

// GetProgramAccounts lists every account owned by program.
func (c *Client) GetProgramAccounts(ctx context.Context, program types.PublicKey) ([]KeyedAccount, error) {
	var res []struct {
		Pubkey  types.PublicKey `json:"pubkey"`
		Account accountJSON     `json:"account"`
	}
	params := []interface{}{program.String(), c.config(map[string]interface{}{"encoding": "base64"})}
	if err := c.Call(ctx, "getProgramAccounts", params, &res); err != nil {
		return nil, fmt.Errorf("getProgramAccounts %s: %w", program, err)
	}
	out := make([]KeyedAccount, 0, len(res))
	for _, r := range res {
		info, err := r.Account.decode()
		if err != nil {
			return nil, err
		}
		out = append(out, KeyedAccount{PublicKey: r.Pubkey, Account: info})
	}
	return out, nil
}

// SendTransaction submits signed wire bytes and returns the first
// signature, which identifies the transaction.
func (c *Client) SendTransaction(ctx context.Context, raw []byte) (types.Signature, error) {
	var sig string
	params := []interface{}{
		base64.StdEncoding.EncodeToString(raw),
		map[string]interface{}{"encoding": "base64", "preflightCommitment": c.commitment},
	}
	if err := c.Call(ctx, "sendTransaction", params, &sig); err != nil {
		return types.Signature{}, fmt.Errorf("sendTransaction: %w", err)
	}
	return types.SignatureFromBase58(sig)
}

// GetFeeForMessage returns the fee the cluster will charge for an unsigned
// message.
func (c *Client) GetFeeForMessage(ctx context.Context, message []byte) (uint64, error) {
	var res struct {
		Context rpcContext `json:"context"`
		Value   *uint64    `json:"value"`
	}
	params := []interface{}{base64.StdEncoding.EncodeToString(message), c.config(nil)}
	if err := c.Call(ctx, "getFeeForMessage", params, &res); err != nil {
		return 0, fmt.Errorf("getFeeForMessage: %w", err)
	}
	if res.Value == nil {
		return 0, ErrNoFee
	}
	return *res.Value, nil
}

// RequestAirdrop asks a test cluster faucet for lamports.
func (c *Client) RequestAirdrop(ctx context.Context, pub types.PublicKey, lamports uint64) (types.Signature, error) {
	var sig string
	params := []interface{}{pub.String(), lamports, c.config(nil)}
	if err := c.Call(ctx, "requestAirdrop", params, &sig); err != nil {
		return types.Signature{}, fmt.Errorf("requestAirdrop %s: %w", pub, err)
	}
	return types.SignatureFromBase58(sig)
}
