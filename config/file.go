package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadFile loads configuration from a .conf file.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct. A network
// set in the file re-derives endpoints that were left at their defaults.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	if n, ok := values["network"]; ok {
		setNetwork(cfg, NetworkType(n))
	}
	for key, value := range values {
		if key == "network" {
			continue
		}
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setNetwork switches cluster, moving endpoints along unless they were
// customised.
func setNetwork(cfg *Config, network NetworkType) {
	oldRPC, oldWS := DefaultEndpoints(cfg.Network)
	newRPC, newWS := DefaultEndpoints(network)
	if cfg.RPC.URL == "" || cfg.RPC.URL == oldRPC {
		cfg.RPC.URL = newRPC
	}
	if cfg.RPC.WSURL == "" || cfg.RPC.WSURL == oldWS {
		cfg.RPC.WSURL = newWS
	}
	cfg.Network = network
}

func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	// Core
	case "network":
		setNetwork(cfg, NetworkType(value))
	case "datadir":
		cfg.DataDir = value

	// RPC
	case "rpc.url", "rpc":
		cfg.RPC.URL = value
	case "rpc.ws", "ws":
		cfg.RPC.WSURL = value
	case "rpc.timeout":
		d, err := parseDuration(value)
		if err != nil {
			return err
		}
		cfg.RPC.Timeout = d
	case "rpc.commitment":
		cfg.RPC.Commitment = strings.ToLower(value)

	// Wallet
	case "wallet.slot", "wallet":
		cfg.Wallet.Slot = value
	case "wallet.path":
		cfg.Wallet.DerivationPath = value
	case "wallet.accounts":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Wallet.Accounts = n

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return nil
}

// parseDuration accepts Go durations ("15s") or bare seconds ("15").
func parseDuration(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// WriteDefaultConfig writes a default configuration file.
func WriteDefaultConfig(path string, network NetworkType) error {
	rpcURL, wsURL := DefaultEndpoints(network)
	content := `# Solwallet Configuration
#
# Command-line flags override values in this file.

# Cluster: mainnet-beta, devnet, testnet or localnet
network = ` + string(network) + `

# Data directory (default: ~/.solwallet)
# datadir = ~/.solwallet

# ============================================================================
# RPC
# ============================================================================

# rpc.url = ` + rpcURL + `
# rpc.ws = ` + wsURL + `
rpc.timeout = 10s
rpc.commitment = confirmed

# ============================================================================
# Wallet
# ============================================================================

wallet.slot = default
# Derivation path preset (bip44, bip44change) or explicit m/44'/501'/... path
wallet.path = bip44
wallet.accounts = 1

# ============================================================================
# Logging
# ============================================================================

log.level = warn
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0600)
}
