package main

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"

	"github.com/solwallet/solwallet/config"
	"github.com/solwallet/solwallet/internal/log"
	"github.com/solwallet/solwallet/internal/rpcclient"
	"github.com/solwallet/solwallet/internal/txutil"
	"github.com/solwallet/solwallet/internal/wallet"
	"github.com/solwallet/solwallet/pkg/program"
	"github.com/solwallet/solwallet/pkg/tx"
	"github.com/solwallet/solwallet/pkg/types"
)

func parsePubkey(s, what string) types.PublicKey {
	pub, err := types.PublicKeyFromBase58(s)
	if err != nil {
		fatal("invalid %s: %v", what, err)
	}
	return pub
}

// signerAccount returns the account for from, or the first signing account
// when from is empty.
func signerAccount(w *wallet.Wallet, from string) *wallet.Account {
	if from != "" {
		a := w.Account(from)
		if a == nil {
			fatal("%v: %s", wallet.ErrAccountNotFound, from)
		}
		if !a.CanSign() {
			fatal("%s: %v", from, wallet.ErrNoPrivateKey)
		}
		return a
	}
	for _, a := range w.Accounts() {
		if a.CanSign() {
			return a
		}
	}
	fatal("wallet %q has no signing account", w.Slot())
	return nil
}

func cmdBalance(ctx context.Context, e *env, args []string) {
	if len(args) == 1 {
		pub := parsePubkey(args[0], "public key")
		lamports, err := e.client.GetBalance(ctx, pub)
		if err != nil {
			fatal("%v", err)
		}
		fmt.Printf("%s SOL\n", formatAmount(lamports, solDecimals))
		return
	}

	w := e.openWallet(true)
	if err := w.RefreshBalances(ctx, e.client); err != nil {
		fatal("%v", err)
	}
	var total uint64
	for _, a := range w.Accounts() {
		total += a.Balance.Lamports
	}
	printAccounts(w.Accounts(), true)
	fmt.Printf("  Total: %s SOL\n", formatAmount(total, solDecimals))
}

// messageFee asks the cluster for the fee of a signed transaction, falling
// back to the per-signature schedule when the node cannot price it.
func messageFee(ctx context.Context, client *rpcclient.Client, raw []byte) uint64 {
	d, err := tx.Decode(raw)
	if err != nil {
		fatal("decode transaction: %v", err)
	}
	fee, err := client.GetFeeForMessage(ctx, d.Message)
	if err != nil {
		if !errors.Is(err, rpcclient.ErrNoFee) {
			log.CLI.Warn().Err(err).Msg("Fee lookup failed, using estimate")
		}
		return tx.RequiredFee(d)
	}
	return fee
}

// submit prints the transaction on dry runs and sends it otherwise.
func submit(ctx context.Context, e *env, raw []byte, dryRun bool) {
	if dryRun {
		fmt.Println(base64.StdEncoding.EncodeToString(raw))
		return
	}
	sig, err := e.client.SendTransaction(ctx, raw)
	if err != nil {
		fatal("%v", err)
	}
	log.CLI.Info().Stringer("signature", sig).Int("size", len(raw)).Msg("Transaction sent")
	fmt.Printf("Signature: %s\n", sig)
}

func cmdSend(ctx context.Context, e *env, args []string) {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	from := fs.String("from", "", "Sending account (default: first signing account)")
	to := fs.String("to", "", "Recipient public key")
	amount := fs.String("amount", "", "Amount in SOL (e.g. 1.5)")
	dryRun := fs.Bool("dry-run", false, "Print the signed transaction instead of sending it")
	fs.Parse(args)

	if *to == "" || *amount == "" {
		fatal("Usage: solwallet-cli send --to <pubkey> --amount <sol> [--from <pubkey>] [--dry-run]")
	}
	recipient := parsePubkey(*to, "recipient")
	lamports, err := parseAmount(*amount, solDecimals)
	if err != nil {
		fatal("invalid amount: %v", err)
	}
	if lamports == 0 {
		fatal("amount must be positive")
	}

	w := e.unlockWallet()
	defer w.Lock(false)
	sender := signerAccount(w, *from)

	bh, err := e.client.GetLatestBlockhash(ctx)
	if err != nil {
		fatal("%v", err)
	}
	raw, err := txutil.TransferSOL(sender, recipient, lamports, bh.Blockhash)
	if err != nil {
		fatal("build transaction: %v", err)
	}

	fee := messageFee(ctx, e.client, raw)
	balance, err := e.client.GetBalance(ctx, sender.PublicKey())
	if err != nil {
		fatal("%v", err)
	}
	if balance < lamports+fee {
		fatal("insufficient funds: have %s SOL, need %s SOL (fee %s)",
			formatAmount(balance, solDecimals),
			formatAmount(lamports+fee, solDecimals),
			formatAmount(fee, solDecimals))
	}

	fmt.Printf("Sending %s SOL from %s to %s (fee %s SOL)\n",
		formatAmount(lamports, solDecimals), sender.PublicKeyBase58(), recipient, formatAmount(fee, solDecimals))
	submit(ctx, e, raw, *dryRun)
}

func cmdToken(ctx context.Context, e *env, args []string) {
	if len(args) < 1 {
		fatal("Usage: solwallet-cli token <balances|send> [flags]")
	}

	switch args[0] {
	case "balances":
		cmdTokenBalances(ctx, e, args[1:])
	case "send":
		cmdTokenSend(ctx, e, args[1:])
	default:
		fatal("Unknown token command: %s\nUsage: solwallet-cli token <balances|send> [flags]", args[0])
	}
}

func cmdTokenBalances(ctx context.Context, e *env, args []string) {
	var owners []types.PublicKey
	if len(args) == 1 {
		owners = append(owners, parsePubkey(args[0], "owner"))
	} else {
		for _, a := range e.openWallet(true).Accounts() {
			owners = append(owners, a.PublicKey())
		}
	}

	found := 0
	for _, owner := range owners {
		accts, err := e.client.GetTokenAccountsByOwner(ctx, owner, rpcclient.TokenAccountFilter{ProgramID: program.TokenProgramID})
		if err != nil {
			fatal("%v", err)
		}
		for _, ta := range accts {
			found++
			fmt.Printf("%s\n", ta.PublicKey)
			fmt.Printf("  Owner:  %s\n", ta.Owner)
			fmt.Printf("  Mint:   %s\n", ta.Mint)
			fmt.Printf("  Amount: %s\n", formatAmount(ta.Amount.Amount, int(ta.Amount.Decimals)))
		}
	}
	if found == 0 {
		fmt.Println("No token accounts found.")
	}
}

func cmdTokenSend(ctx context.Context, e *env, args []string) {
	fs := flag.NewFlagSet("token send", flag.ExitOnError)
	from := fs.String("from", "", "Owner of the source token account (default: first signing account)")
	to := fs.String("to", "", "Recipient wallet public key")
	mintStr := fs.String("mint", "", "Token mint")
	amount := fs.String("amount", "", "Amount in token units (e.g. 2.5)")
	dryRun := fs.Bool("dry-run", false, "Print the signed transaction instead of sending it")
	fs.Parse(args)

	if *to == "" || *mintStr == "" || *amount == "" {
		fatal("Usage: solwallet-cli token send --mint <mint> --to <pubkey> --amount <amount> [--from <pubkey>] [--dry-run]")
	}
	recipient := parsePubkey(*to, "recipient")
	mint := parsePubkey(*mintStr, "mint")

	w := e.unlockWallet()
	defer w.Lock(false)
	owner := signerAccount(w, *from)

	sources, err := e.client.GetTokenAccountsByOwner(ctx, owner.PublicKey(), rpcclient.TokenAccountFilter{Mint: mint})
	if err != nil {
		fatal("%v", err)
	}
	if len(sources) == 0 {
		fatal("%s holds no %s tokens", owner.PublicKeyBase58(), mint)
	}
	decimals := int(sources[0].Amount.Decimals)
	units, err := parseAmount(*amount, decimals)
	if err != nil {
		fatal("invalid amount: %v", err)
	}
	if units == 0 {
		fatal("amount must be positive")
	}
	var source *rpcclient.TokenAccount
	for i := range sources {
		if sources[i].Amount.Amount >= units {
			source = &sources[i]
			break
		}
	}
	if source == nil {
		fatal("no token account of %s holds %s", owner.PublicKeyBase58(), formatAmount(units, decimals))
	}

	p := txutil.TokenTransfer{
		Source:    source.PublicKey,
		Owner:     owner,
		Recipient: recipient,
		Mint:      mint,
		Amount:    units,
	}
	dests, err := e.client.GetTokenAccountsByOwner(ctx, recipient, rpcclient.TokenAccountFilter{Mint: mint})
	if err != nil {
		fatal("%v", err)
	}
	if len(dests) > 0 {
		p.Destination = dests[0].PublicKey
	}

	bh, err := e.client.GetLatestBlockhash(ctx)
	if err != nil {
		fatal("%v", err)
	}
	p.Blockhash = bh.Blockhash
	res, err := txutil.TransferToken(p)
	if err != nil {
		fatal("build transaction: %v", err)
	}

	fee := messageFee(ctx, e.client, res.Raw)
	if res.Created {
		fmt.Printf("Creating token account %s for %s (rent %s SOL)\n",
			res.Destination, recipient, formatAmount(program.TokenAccountRentExempt, solDecimals))
	}
	fmt.Printf("Sending %s tokens from %s to %s (fee %s SOL)\n",
		formatAmount(units, decimals), source.PublicKey, res.Destination, formatAmount(fee, solDecimals))
	submit(ctx, e, res.Raw, *dryRun)
}

func cmdAirdrop(ctx context.Context, e *env, args []string) {
	fs := flag.NewFlagSet("airdrop", flag.ExitOnError)
	to := fs.String("to", "", "Recipient (default: first wallet account)")
	amount := fs.String("amount", "1", "Amount in SOL")
	fs.Parse(args)

	if e.cfg.Network == config.MainnetBeta {
		fatal("airdrops are not available on %s", e.cfg.Network)
	}
	lamports, err := parseAmount(*amount, solDecimals)
	if err != nil {
		fatal("invalid amount: %v", err)
	}

	var recipient types.PublicKey
	if *to != "" {
		recipient = parsePubkey(*to, "recipient")
	} else {
		accts := e.openWallet(true).Accounts()
		if len(accts) == 0 {
			fatal("wallet %q has no accounts", e.cfg.Wallet.Slot)
		}
		recipient = accts[0].PublicKey()
	}

	sig, err := e.client.RequestAirdrop(ctx, recipient, lamports)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Airdrop of %s SOL to %s requested\n", formatAmount(lamports, solDecimals), recipient)
	fmt.Printf("Signature: %s\n", sig)
}

func cmdBlockhash(ctx context.Context, e *env) {
	bh, err := e.client.GetLatestBlockhash(ctx)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Blockhash:        %s\n", bh.Blockhash)
	fmt.Printf("Slot:             %d\n", bh.Slot)
	fmt.Printf("Last valid block: %d\n", bh.LastValidBlockHeight)
}

func cmdAccount(ctx context.Context, e *env, args []string) {
	if len(args) != 1 {
		fatal("Usage: solwallet-cli account <pubkey>")
	}
	pub := parsePubkey(args[0], "public key")
	info, err := e.client.GetAccountInfo(ctx, pub)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Account:    %s\n", pub)
	fmt.Printf("Balance:    %s SOL\n", formatAmount(info.Lamports, solDecimals))
	fmt.Printf("Owner:      %s\n", info.Owner)
	fmt.Printf("Executable: %v\n", info.Executable)
	fmt.Printf("Data:       %d bytes\n", len(info.Data))
}
