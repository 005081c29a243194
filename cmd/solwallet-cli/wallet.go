package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"strings"

	"github.com/solwallet/solwallet/internal/wallet"
	"github.com/solwallet/solwallet/pkg/types"
)

const walletUsage = "Usage: solwallet-cli wallet <create|restore|list|accounts|new-account|import-key|import-pubkey|remove|export-key|mnemonic|paths|rename|delete> [flags]"

func cmdWallet(ctx context.Context, e *env, args []string) {
	if len(args) < 1 {
		fatal(walletUsage)
	}

	switch args[0] {
	case "create":
		cmdWalletCreate(ctx, e, args[1:])
	case "restore":
		cmdWalletRestore(ctx, e, args[1:])
	case "list":
		cmdWalletList(e)
	case "accounts":
		cmdWalletAccounts(ctx, e, args[1:])
	case "new-account":
		cmdWalletNewAccount(e)
	case "import-key":
		cmdWalletImportKey(e)
	case "import-pubkey":
		cmdWalletImportPubkey(e, args[1:])
	case "remove":
		cmdWalletRemove(e, args[1:])
	case "export-key":
		cmdWalletExportKey(e, args[1:])
	case "mnemonic":
		cmdWalletMnemonic(e)
	case "paths":
		cmdWalletPaths(ctx, e, args[1:])
	case "rename":
		cmdWalletRename(e, args[1:])
	case "delete":
		cmdWalletDelete(e, args[1:])
	default:
		fatal("Unknown wallet command: %s\n%s", args[0], walletUsage)
	}
}

// derivationPath resolves the configured path preset or explicit path.
func derivationPath(s string) (wallet.DerivationPath, error) {
	switch strings.ToLower(s) {
	case "", "bip44":
		return wallet.PathBIP44, nil
	case "bip44change":
		return wallet.PathBIP44Change, nil
	}
	return wallet.ParseDerivationPath(s)
}

// newWallet opens an empty slot, fatal if it is already taken.
func (e *env) newWallet() *wallet.Wallet {
	w := e.openWallet(false)
	if w.IsLocked() {
		fatal("wallet %q already exists", w.Slot())
	}
	return w
}

// seedAccounts sets the configured path and derives the first n accounts.
func seedAccounts(w *wallet.Wallet, pathName string, n int) {
	path, err := derivationPath(pathName)
	if err != nil {
		fatal("%v", err)
	}
	if err := w.SetDerivationPath(path); err != nil {
		fatal("set derivation path: %v", err)
	}
	for i := 0; i < n; i++ {
		if _, err := w.GenerateAccountAt(i); err != nil {
			fatal("derive account %d: %v", i, err)
		}
	}
}

func cmdWalletCreate(ctx context.Context, e *env, args []string) {
	fs := flag.NewFlagSet("wallet create", flag.ExitOnError)
	words := fs.Int("words", 24, "Mnemonic length (12, 15, 18, 21 or 24)")
	fs.Parse(args)

	w := e.newWallet()
	mnemonic, err := w.GenerateMnemonic(*words)
	if err != nil {
		fatal("generate mnemonic: %v", err)
	}

	fmt.Println("Mnemonic (write this down!):")
	fmt.Printf("  %s\n\n", mnemonic)

	seedAccounts(w, e.cfg.Wallet.DerivationPath, e.cfg.Wallet.Accounts)

	password := readNewPassword()
	defer zero(password)
	if err := w.SetPassword(password); err != nil {
		fatal("save wallet: %v", err)
	}

	fmt.Printf("Wallet created: %s\n", w.Slot())
	fmt.Printf("Path:           %s\n", w.DerivationPath().Name)
	printAccounts(w.Accounts(), false)
	if err := w.Lock(false); err != nil {
		fatal("lock: %v", err)
	}
}

func cmdWalletRestore(ctx context.Context, e *env, args []string) {
	fs := flag.NewFlagSet("wallet restore", flag.ExitOnError)
	scan := fs.Int("scan", 0, "Also add funded accounts among the first N derived")
	fs.Parse(args)

	w := e.newWallet()
	sentence, err := readPassword("Mnemonic: ")
	if err != nil {
		fatal("read mnemonic: %v", err)
	}
	defer zero(sentence)
	if err := w.RestoreMnemonic(strings.Join(strings.Fields(string(sentence)), " ")); err != nil {
		fatal("%v", err)
	}

	seedAccounts(w, e.cfg.Wallet.DerivationPath, e.cfg.Wallet.Accounts)

	if *scan > 0 {
		found, err := scanFunded(ctx, e, w, *scan)
		if err != nil {
			fatal("scan accounts: %v", err)
		}
		fmt.Printf("Found %d funded account(s)\n", found)
	}

	password := readNewPassword()
	defer zero(password)
	if err := w.SetPassword(password); err != nil {
		fatal("save wallet: %v", err)
	}

	fmt.Printf("Wallet restored: %s\n", w.Slot())
	printAccounts(w.Accounts(), *scan > 0)
	if err := w.Lock(false); err != nil {
		fatal("lock: %v", err)
	}
}

// scanFunded previews n accounts on the wallet's path and adds every one
// that holds lamports.
func scanFunded(ctx context.Context, e *env, w *wallet.Wallet, n int) (int, error) {
	preview, err := w.AccountsFromPath(ctx, w.DerivationPath(), n)
	if err != nil {
		return 0, err
	}
	keys := make([]types.PublicKey, len(preview))
	for i, a := range preview {
		keys[i] = a.PublicKey()
		a.Zero()
	}
	lamports, err := e.client.GetBalances(ctx, keys)
	if err != nil {
		return 0, err
	}
	found := 0
	for i, l := range lamports {
		if l == 0 {
			continue
		}
		found++
		if _, err := w.GenerateAccountAt(i); err != nil {
			return found, err
		}
	}
	return found, w.RefreshBalances(ctx, e.client)
}

func cmdWalletList(e *env) {
	ks := e.keystore()
	slots, err := ks.List()
	if err != nil {
		fatal("list wallets: %v", err)
	}
	if len(slots) == 0 {
		fmt.Println("No wallets found.")
		return
	}
	for _, slot := range slots {
		keys, err := ks.PublicKeys(slot)
		if err != nil {
			fatal("read %s: %v", slot, err)
		}
		marker := " "
		if slot == e.cfg.Wallet.Slot {
			marker = "*"
		}
		fmt.Printf("%s %-20s %d account(s)\n", marker, slot, len(keys))
	}
}

func cmdWalletAccounts(ctx context.Context, e *env, args []string) {
	fs := flag.NewFlagSet("wallet accounts", flag.ExitOnError)
	balances := fs.Bool("balance", false, "Fetch balances")
	fs.Parse(args)

	w := e.openWallet(true)
	if *balances {
		if err := w.RefreshBalances(ctx, e.client); err != nil {
			fatal("%v", err)
		}
	}
	printAccounts(w.Accounts(), *balances)
}

func printAccounts(accts []*wallet.Account, balances bool) {
	for i, a := range accts {
		kind := "watch"
		if a.CanSign() {
			kind = "signer"
		}
		line := fmt.Sprintf("  %2d  %-44s  %-6s", i, a.PublicKeyBase58(), kind)
		if a.Name != "" {
			line += "  " + a.Name
		}
		if balances {
			line += fmt.Sprintf("  %s SOL", formatAmount(a.Balance.Lamports, solDecimals))
		}
		fmt.Println(line)
	}
}

func cmdWalletNewAccount(e *env) {
	w := e.unlockWallet()
	defer w.Lock(false)

	a, err := w.GenerateNewAccount()
	if err != nil {
		fatal("derive account: %v", err)
	}
	if err := w.Save(); err != nil {
		fatal("save wallet: %v", err)
	}
	fmt.Printf("Account %d: %s\n", a.GenIndex, a.PublicKeyBase58())
}

func cmdWalletImportKey(e *env) {
	w := e.unlockWallet()
	defer w.Lock(false)

	key, err := readPassword("Private key: ")
	if err != nil {
		fatal("read key: %v", err)
	}
	defer zero(key)
	a, err := w.ImportPrivateKey(strings.TrimSpace(string(key)))
	if err != nil {
		fatal("import: %v", err)
	}
	if err := w.Save(); err != nil {
		fatal("save wallet: %v", err)
	}
	fmt.Printf("Imported: %s\n", a.PublicKeyBase58())
}

func cmdWalletImportPubkey(e *env, args []string) {
	if len(args) != 1 {
		fatal("Usage: solwallet-cli wallet import-pubkey <pubkey>")
	}
	w := e.unlockWallet()
	defer w.Lock(false)

	a, err := w.ImportPublicKey(args[0])
	if err != nil {
		fatal("import: %v", err)
	}
	if err := w.Save(); err != nil {
		fatal("save wallet: %v", err)
	}
	fmt.Printf("Watching: %s\n", a.PublicKeyBase58())
}

func cmdWalletRemove(e *env, args []string) {
	if len(args) != 1 {
		fatal("Usage: solwallet-cli wallet remove <pubkey>")
	}
	pub, err := types.PublicKeyFromBase58(args[0])
	if err != nil {
		fatal("invalid public key: %v", err)
	}
	w := e.unlockWallet()
	defer w.Lock(false)

	if err := w.RemoveAccount(pub); err != nil {
		fatal("%v", err)
	}
	if err := w.Save(); err != nil {
		fatal("save wallet: %v", err)
	}
	fmt.Printf("Removed: %s\n", pub)
}

func cmdWalletExportKey(e *env, args []string) {
	fs := flag.NewFlagSet("wallet export-key", flag.ExitOnError)
	format := fs.String("format", "base58", "Key format: base58 or bytes")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fatal("Usage: solwallet-cli wallet export-key [--format base58|bytes] <pubkey>")
	}

	w := e.unlockWallet()
	defer w.Lock(false)

	a := w.Account(fs.Arg(0))
	if a == nil {
		fatal("%v: %s", wallet.ErrAccountNotFound, fs.Arg(0))
	}
	if !a.CanSign() {
		fatal("%v", wallet.ErrNoPrivateKey)
	}

	fmt.Println("WARNING: anyone with this key controls the account.")
	switch *format {
	case "base58":
		fmt.Println(a.PrivateKeyBase58())
	case "bytes":
		key := a.PrivateKeyBytes()
		defer zero(key)
		ints := make([]int, len(key))
		for i, b := range key {
			ints[i] = int(b)
		}
		out, err := json.Marshal(ints)
		if err != nil {
			fatal("encode key: %v", err)
		}
		fmt.Println(string(out))
	default:
		fatal("unknown key format %q", *format)
	}
}

func cmdWalletMnemonic(e *env) {
	w := e.unlockWallet()
	defer w.Lock(false)

	m, err := w.Mnemonic()
	if err != nil {
		fatal("%v", err)
	}
	fmt.Println(m)
}

func cmdWalletPaths(ctx context.Context, e *env, args []string) {
	fs := flag.NewFlagSet("wallet paths", flag.ExitOnError)
	n := fs.Int("n", 3, "Accounts to preview per path")
	fs.Parse(args)

	w := e.unlockWallet()
	defer w.Lock(false)

	current := w.DerivationPath()
	for _, p := range w.DerivationPaths() {
		accts, err := w.AccountsFromPath(ctx, p, *n)
		if err != nil {
			fatal("derive %s: %v", p.Name, err)
		}
		marker := " "
		if p.Equal(current) {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, p.Name)
		for i, a := range accts {
			fmt.Printf("    %d  %s\n", i, a.PublicKeyBase58())
			a.Zero()
		}
	}
}

func cmdWalletRename(e *env, args []string) {
	if len(args) != 2 {
		fatal("Usage: solwallet-cli wallet rename <from> <to>")
	}
	if err := e.keystore().Rename(args[0], args[1]); err != nil {
		fatal("rename: %v", err)
	}
	fmt.Printf("Renamed %s to %s\n", args[0], args[1])
}

func cmdWalletDelete(e *env, args []string) {
	fs := flag.NewFlagSet("wallet delete", flag.ExitOnError)
	yes := fs.Bool("yes", false, "Confirm deletion")
	fs.Parse(args)
	if !*yes {
		fatal("Refusing to delete wallet %q without --yes", e.cfg.Wallet.Slot)
	}

	w := e.openWallet(true)
	if err := w.Wipe(); err != nil {
		fatal("delete: %v", err)
	}
	fmt.Printf("Deleted wallet: %s\n", w.Slot())
}
