// Package config handles wallet CLI configuration.
//
// Values are layered: built-in defaults per network, then the .conf file in
// the data directory, then command-line flags. The result is validated
// before use.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// NetworkType identifies a cluster.
type NetworkType string

const (
	MainnetBeta NetworkType = "mainnet-beta"
	Devnet      NetworkType = "devnet"
	Testnet     NetworkType = "testnet"
	Localnet    NetworkType = "localnet"
)

// Networks lists every known cluster.
func Networks() []NetworkType {
	return []NetworkType{MainnetBeta, Devnet, Testnet, Localnet}
}

// Config holds wallet CLI runtime configuration.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// RPC endpoints
	RPC RPCConfig

	// Wallet
	Wallet WalletConfig

	// Logging
	Log LogConfig
}

// RPCConfig holds cluster endpoint settings.
type RPCConfig struct {
	URL        string        `conf:"rpc.url"`
	WSURL      string        `conf:"rpc.ws"`
	Timeout    time.Duration `conf:"rpc.timeout"`
	Commitment string        `conf:"rpc.commitment"`
}

// WalletConfig holds wallet session settings.
type WalletConfig struct {
	Slot           string `conf:"wallet.slot"`
	DerivationPath string `conf:"wallet.path"`     // preset name or m/... path
	Accounts       int    `conf:"wallet.accounts"` // accounts derived on create/restore
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.solwallet
//	macOS:   ~/Library/Application Support/Solwallet
//	Windows: %APPDATA%\Solwallet
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".solwallet"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Solwallet")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Solwallet")
		}
		return filepath.Join(home, "AppData", "Roaming", "Solwallet")
	default:
		return filepath.Join(home, ".solwallet")
	}
}

// NetworkDataDir returns the cluster-specific data directory.
func (c *Config) NetworkDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// KeystoreDir returns the save-slot database directory.
func (c *Config) KeystoreDir() string {
	return filepath.Join(c.NetworkDataDir(), "keystore")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "solwallet.conf")
}
