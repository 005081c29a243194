package config

import "time"

// Default cluster endpoints.
var endpoints = map[NetworkType][2]string{
	MainnetBeta: {"https://api.mainnet-beta.solana.com", "wss://api.mainnet-beta.solana.com"},
	Devnet:      {"https://api.devnet.solana.com", "wss://api.devnet.solana.com"},
	Testnet:     {"https://api.testnet.solana.com", "wss://api.testnet.solana.com"},
	Localnet:    {"http://127.0.0.1:8899", "ws://127.0.0.1:8900"},
}

// DefaultEndpoints returns the public HTTP and WebSocket URLs of network.
func DefaultEndpoints(network NetworkType) (rpcURL, wsURL string) {
	e, ok := endpoints[network]
	if !ok {
		e = endpoints[MainnetBeta]
	}
	return e[0], e[1]
}

// Default returns the default configuration for the given network.
func Default(network NetworkType) *Config {
	if _, ok := endpoints[network]; !ok {
		network = MainnetBeta
	}
	rpcURL, wsURL := DefaultEndpoints(network)
	return &Config{
		Network: network,
		DataDir: DefaultDataDir(),
		RPC: RPCConfig{
			URL:        rpcURL,
			WSURL:      wsURL,
			Timeout:    10 * time.Second,
			Commitment: "confirmed",
		},
		Wallet: WalletConfig{
			Slot:           "default",
			DerivationPath: "bip44",
			Accounts:       1,
		},
		Log: LogConfig{
			Level: "warn",
			JSON:  false,
		},
	}
}
