// solwallet-cli manages Solana wallets and submits transactions to a cluster.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/solwallet/solwallet/config"
	"github.com/solwallet/solwallet/internal/log"
	"github.com/solwallet/solwallet/internal/rpcclient"
	"github.com/solwallet/solwallet/internal/storage"
	"github.com/solwallet/solwallet/internal/wallet"
	"golang.org/x/term"
)

var version = "dev"

// env carries what every command needs. The keystore is opened on demand
// because Badger holds an exclusive directory lock.
type env struct {
	cfg    *config.Config
	client *rpcclient.Client
	db     storage.DB
}

func main() {
	cfg, flags, err := config.Load(os.Args[1:])
	if errors.Is(err, config.ErrHelp) {
		usage()
		return
	}
	if err != nil {
		fatal("%v", err)
	}
	if flags.Version {
		fmt.Printf("solwallet-cli %s\n", version)
		return
	}

	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("init logging: %v", err)
	}

	args := flags.Args
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := &env{
		cfg:    cfg,
		client: rpcclient.NewWithTimeout(cfg.RPC.URL, cfg.RPC.Timeout).WithCommitment(cfg.RPC.Commitment),
	}
	defer e.close()

	log.CLI.Debug().
		Str("network", string(cfg.Network)).
		Str("rpc", cfg.RPC.URL).
		Str("command", args[0]).
		Msg("Starting")

	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "wallet":
		cmdWallet(ctx, e, cmdArgs)
	case "balance":
		cmdBalance(ctx, e, cmdArgs)
	case "send":
		cmdSend(ctx, e, cmdArgs)
	case "token":
		cmdToken(ctx, e, cmdArgs)
	case "airdrop":
		cmdAirdrop(ctx, e, cmdArgs)
	case "watch":
		cmdWatch(ctx, e, cmdArgs)
	case "decode":
		cmdDecode(cmdArgs)
	case "blockhash":
		cmdBlockhash(ctx, e)
	case "account":
		cmdAccount(ctx, e, cmdArgs)
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: solwallet-cli [global flags] <command> [flags]

Commands:
  wallet create         Create a wallet with a new mnemonic
  wallet restore        Restore a wallet from a mnemonic
  wallet list           List save slots
  wallet accounts       List accounts of a slot (no password needed)
  wallet new-account    Derive the next account
  wallet import-key     Import a private key (Base58 or byte array)
  wallet import-pubkey  Add a watch-only account
  wallet remove         Remove an account
  wallet export-key     Print an account's private key
  wallet mnemonic       Print the wallet mnemonic
  wallet paths          Preview accounts under every derivation path
  wallet rename         Rename a save slot
  wallet delete         Delete a save slot
  balance [pubkey]      Show SOL balances
  send                  Transfer SOL
  token balances        List SPL token accounts
  token send            Transfer SPL tokens
  airdrop               Request an airdrop (devnet, testnet, localnet)
  watch <pubkey>        Stream balance changes of an account
  decode <tx>           Decode and verify a signed transaction
  blockhash             Show the latest blockhash
  account <pubkey>      Show on-chain account state

`)
	config.PrintUsage(os.Stderr)
}

// keystore opens the Badger keystore for the configured network.
func (e *env) keystore() *wallet.Keystore {
	if e.db == nil {
		db, err := storage.NewBadger(e.cfg.KeystoreDir())
		if err != nil {
			fatal("open keystore: %v", err)
		}
		e.db = db
	}
	return wallet.NewKeystore(e.db, wallet.DefaultParams())
}

func (e *env) close() {
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			log.CLI.Error().Err(err).Msg("Close keystore")
		}
	}
}

// openWallet opens the configured slot, locked.
func (e *env) openWallet(mustExist bool) *wallet.Wallet {
	ks := e.keystore()
	slot := e.cfg.Wallet.Slot
	if mustExist {
		exists, err := ks.Exists(slot)
		if err != nil {
			fatal("open wallet: %v", err)
		}
		if !exists {
			fatal("wallet %q does not exist (create one with: solwallet-cli wallet create)", slot)
		}
	}
	w, err := wallet.Open(ks, slot)
	if err != nil {
		fatal("open wallet: %v", err)
	}
	return w
}

// unlockWallet opens the configured slot and prompts for its password.
func (e *env) unlockWallet() *wallet.Wallet {
	w := e.openWallet(true)
	password, err := readPassword(fmt.Sprintf("Password for %s: ", w.Slot()))
	if err != nil {
		fatal("read password: %v", err)
	}
	defer zero(password)
	if err := w.Unlock(password); err != nil {
		fatal("unlock: %v", err)
	}
	return w
}

// ── Password helper ─────────────────────────────────────────────────────

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, err
	}
	return password, nil
}

func readNewPassword() []byte {
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	defer zero(confirm)
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}
	if len(password) == 0 {
		fatal("empty password")
	}
	return password
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
