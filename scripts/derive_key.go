// derive_key.go prints the public key of a Solana CLI keypair file
// (JSON byte array) or a Base58 private key file.
// Usage: go run scripts/derive_key.go <keyfile>
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/solwallet/solwallet/internal/wallet"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: derive_key <keyfile>")
		os.Exit(1)
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	a, err := wallet.ParsePrivateKey(strings.TrimSpace(string(data)))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer a.Zero()
	fmt.Printf("pubkey=%s\n", a.PublicKeyBase58())
	fmt.Printf("short=%s\n", wallet.ShortPublicKey(a.PublicKeyBase58(), 4, 4))
}
