package main

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"flag"
	"fmt"
	"strings"

	"github.com/solwallet/solwallet/internal/log"
	"github.com/solwallet/solwallet/internal/rpcclient"
	"github.com/solwallet/solwallet/pkg/base58"
	"github.com/solwallet/solwallet/pkg/tx"
)

func cmdWatch(ctx context.Context, e *env, args []string) {
	if len(args) != 1 {
		fatal("Usage: solwallet-cli watch <pubkey>")
	}
	pub := parsePubkey(args[0], "public key")

	ws, err := rpcclient.DialWS(ctx, e.cfg.RPC.WSURL)
	if err != nil {
		fatal("%v", err)
	}
	defer ws.Close()

	sub, err := ws.AccountSubscribe(ctx, pub, e.cfg.RPC.Commitment)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Watching %s (Ctrl-C to stop)\n", pub)

	var last *uint64
	for {
		select {
		case <-ctx.Done():
			if err := sub.Unsubscribe(context.Background()); err != nil {
				log.CLI.Debug().Err(err).Msg("Unsubscribe")
			}
			return
		case <-ws.Done():
			if err := ws.Err(); err != nil {
				fatal("subscription ended: %v", err)
			}
			return
		case n, ok := <-sub.C:
			if !ok {
				return
			}
			if n.Account == nil {
				continue
			}
			delta := ""
			if last != nil {
				delta = fmt.Sprintf(" (%s)", formatDelta(*last, n.Account.Lamports))
			}
			lamports := n.Account.Lamports
			last = &lamports
			fmt.Printf("slot %d: %s SOL%s\n", n.Slot, formatAmount(lamports, solDecimals), delta)
		}
	}
}

func formatDelta(prev, cur uint64) string {
	if cur >= prev {
		return "+" + formatAmount(cur-prev, solDecimals)
	}
	return "-" + formatAmount(prev-cur, solDecimals)
}

func cmdDecode(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	encoding := fs.String("encoding", "base64", "Input encoding: base64, base58 or hex")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fatal("Usage: solwallet-cli decode [--encoding base64|base58|hex] <transaction>")
	}

	in := strings.TrimSpace(fs.Arg(0))
	var raw []byte
	var err error
	switch *encoding {
	case "base64":
		raw, err = base64.StdEncoding.DecodeString(in)
	case "base58":
		raw, err = base58.Decode(in)
	case "hex":
		raw, err = hex.DecodeString(in)
	default:
		fatal("unknown encoding %q", *encoding)
	}
	if err != nil {
		fatal("decode %s: %v", *encoding, err)
	}

	d, err := tx.Decode(raw)
	if err != nil {
		fatal("%v", err)
	}

	fmt.Printf("Size:       %d bytes\n", len(raw))
	fmt.Printf("Blockhash:  %s\n", d.Blockhash)
	fmt.Printf("Header:     %d signer(s), %d read-only signed, %d read-only unsigned\n",
		d.Header.RequiredSignatures, d.Header.ReadonlySigned, d.Header.ReadonlyUnsigned)
	fmt.Printf("Fee:        %s SOL\n", formatAmount(tx.RequiredFee(d), solDecimals))

	fmt.Println("Accounts:")
	for i, k := range d.AccountKeys {
		flags := ""
		if d.IsSigner(i) {
			flags += "s"
		}
		if d.IsWritable(i) {
			flags += "w"
		}
		fmt.Printf("  %2d  %-44s  %s\n", i, k, flags)
	}

	fmt.Println("Instructions:")
	for i, ix := range d.Instructions {
		prog := "?"
		if int(ix.ProgramIDIndex) < len(d.AccountKeys) {
			prog = d.AccountKeys[ix.ProgramIDIndex].String()
		}
		fmt.Printf("  %d  program %s accounts %v data %s\n", i, prog, ix.Accounts, hex.EncodeToString(ix.Data))
	}

	fmt.Println("Signatures:")
	for _, s := range d.Signatures {
		fmt.Printf("  %s\n", s)
	}

	if err := d.Validate(); err != nil {
		fatal("invalid transaction: %v", err)
	}
	if err := d.VerifySignatures(); err != nil {
		fatal("%v", err)
	}
	fmt.Println("Signatures verified.")
}
