package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ErrHelp is returned by ParseFlags when -h or --help was given.
var ErrHelp = flag.ErrHelp

// Flags holds parsed global command-line flags.
type Flags struct {
	Version bool

	// Core
	Network string
	DataDir string
	Config  string

	// RPC
	RPCURL     string
	WSURL      string
	Timeout    time.Duration
	Commitment string

	// Wallet
	Slot           string
	DerivationPath string
	Accounts       int

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args: the subcommand and its arguments.
	Args []string

	SetLogJSON bool
}

// ParseFlags parses global flags from args (without the program name).
// Parsing stops at the first non-flag argument, which starts the command.
// -h and --help yield ErrHelp.
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("solwallet-cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.BoolVar(&f.Version, "version", false, "Show version information")

	fs.StringVar(&f.Network, "network", "", "Cluster: mainnet-beta, devnet, testnet, localnet")
	fs.StringVar(&f.Network, "n", "", "Cluster (shorthand)")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	fs.StringVar(&f.RPCURL, "rpc", "", "JSON-RPC HTTP endpoint")
	fs.StringVar(&f.WSURL, "ws", "", "JSON-RPC WebSocket endpoint")
	fs.DurationVar(&f.Timeout, "timeout", 0, "RPC request timeout")
	fs.StringVar(&f.Commitment, "commitment", "", "Commitment level")

	fs.StringVar(&f.Slot, "wallet", "", "Wallet save slot")
	fs.StringVar(&f.Slot, "w", "", "Wallet save slot (shorthand)")
	fs.StringVar(&f.DerivationPath, "path", "", "Derivation path preset or m/... path")
	fs.IntVar(&f.Accounts, "accounts", 0, "Accounts to derive on create/restore")

	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error, off)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, ErrHelp
		}
		return nil, err
	}
	f.Args = fs.Args()
	f.SetLogJSON = isFlagSet(fs, "log-json")
	return f, nil
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	if f.Network != "" {
		setNetwork(cfg, NetworkType(strings.ToLower(f.Network)))
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	if f.RPCURL != "" {
		cfg.RPC.URL = f.RPCURL
	}
	if f.WSURL != "" {
		cfg.RPC.WSURL = f.WSURL
	}
	if f.Timeout != 0 {
		cfg.RPC.Timeout = f.Timeout
	}
	if f.Commitment != "" {
		cfg.RPC.Commitment = strings.ToLower(f.Commitment)
	}

	if f.Slot != "" {
		cfg.Wallet.Slot = f.Slot
	}
	if f.DerivationPath != "" {
		cfg.Wallet.DerivationPath = f.DerivationPath
	}
	if f.Accounts != 0 {
		cfg.Wallet.Accounts = f.Accounts
	}

	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// PrintUsage writes the global option summary.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, `Global Options:
  --network, -n   Cluster: mainnet-beta (default), devnet, testnet, localnet
  --datadir       Data directory (default: ~/.solwallet)
  --config, -c    Config file path (default: <datadir>/solwallet.conf)
  --rpc           JSON-RPC HTTP endpoint (default: cluster public endpoint)
  --ws            JSON-RPC WebSocket endpoint
  --timeout       RPC request timeout (default: 10s)
  --commitment    processed, confirmed (default) or finalized
  --wallet, -w    Wallet save slot (default: default)
  --path          Derivation path: bip44 (default), bip44change or m/44'/501'/...
  --accounts      Accounts to derive on create/restore (default: 1)
  --log-level     trace, debug, info, warn (default), error, off
  --log-file      Log file path (default: stderr)
  --log-json      Output logs as JSON
`)
}

// Load builds configuration from args with the following precedence:
// 1. Default values for the selected network
// 2. Auto-create data dirs + default config (idempotent)
// 3. Config file
// 4. Command-line flags
func Load(args []string) (*Config, *Flags, error) {
	flags, err := ParseFlags(args)
	if err != nil {
		return nil, nil, err
	}

	cfg := Default(NetworkType(strings.ToLower(flags.Network)))
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	if err := EnsureDataDirs(cfg); err != nil {
		return nil, nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}
	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}

	ApplyFlags(cfg, flags)
	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, flags, nil
}

// EnsureDataDirs creates the data directory structure and a default config
// file if they don't already exist. Safe to call on every startup.
func EnsureDataDirs(cfg *Config) error {
	dirs := []string{
		cfg.DataDir,
		cfg.NetworkDataDir(),
		cfg.LogsDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath, cfg.Network); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}
	return nil
}
