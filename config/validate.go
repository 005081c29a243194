package config

import (
	"fmt"
	"net/url"
	"strings"
)

// MaxDerivedAccounts caps wallet.accounts.
const MaxDerivedAccounts = 100

// Validate checks config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	known := false
	for _, n := range Networks() {
		if cfg.Network == n {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("network must be one of mainnet-beta, devnet, testnet, localnet")
	}
	if err := validateURL(cfg.RPC.URL, "rpc.url", "http", "https"); err != nil {
		return err
	}
	if err := validateURL(cfg.RPC.WSURL, "rpc.ws", "ws", "wss"); err != nil {
		return err
	}
	if cfg.RPC.Timeout <= 0 {
		return fmt.Errorf("rpc.timeout must be positive")
	}
	switch cfg.RPC.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("rpc.commitment must be processed, confirmed, or finalized")
	}

	slot := cfg.Wallet.Slot
	if slot == "" || strings.ContainsAny(slot, "/\x00") {
		return fmt.Errorf("wallet.slot must be non-empty and must not contain '/'")
	}
	if cfg.Wallet.DerivationPath == "" {
		return fmt.Errorf("wallet.path is empty")
	}
	if cfg.Wallet.Accounts < 1 || cfg.Wallet.Accounts > MaxDerivedAccounts {
		return fmt.Errorf("wallet.accounts must be in range [1, %d]", MaxDerivedAccounts)
	}
	return nil
}

func validateURL(raw, field string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL", field)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("%s scheme must be %s", field, strings.Join(schemes, " or "))
}
