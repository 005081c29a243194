package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/solwallet/solwallet/pkg/types"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// Balance is the last known on-chain balance of an account.
type Balance struct {
	Lamports  uint64
	UpdatedAt time.Time
}

// SOL returns the balance in SOL.
func (b Balance) SOL() float64 {
	return float64(b.Lamports) / LamportsPerSOL
}

// BalanceSource fetches lamport balances for several accounts at once.
// Accounts that do not exist on chain report zero.
type BalanceSource interface {
	GetBalances(ctx context.Context, keys []types.PublicKey) ([]uint64, error)
}

// RefreshBalances updates the balance of every account in the wallet. Only
// public keys are needed, so a locked wallet refreshes its watch-only view.
func (w *Wallet) RefreshBalances(ctx context.Context, src BalanceSource) error {
	w.mu.Lock()
	accts := append([]*Account(nil), w.accounts...)
	w.mu.Unlock()
	if len(accts) == 0 {
		return nil
	}

	keys := make([]types.PublicKey, len(accts))
	for i, a := range accts {
		keys[i] = a.PublicKey()
	}
	lamports, err := src.GetBalances(ctx, keys)
	if err != nil {
		return fmt.Errorf("fetch balances: %w", err)
	}
	if len(lamports) != len(accts) {
		return fmt.Errorf("fetch balances: got %d results for %d accounts", len(lamports), len(accts))
	}

	now := time.Now()
	w.mu.Lock()
	for i, a := range accts {
		a.Balance = Balance{Lamports: lamports[i], UpdatedAt: now}
	}
	w.mu.Unlock()

	w.publish(EventAccountsChanged)
	return nil
}
