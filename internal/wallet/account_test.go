package wallet

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/solwallet/solwallet/pkg/base58"
)

// RFC 8032 test 1 keypair.
const (
	rfcSeed = "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"
	rfcPub  = "d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a"
)

func rfcAccount(t *testing.T) *Account {
	t.Helper()
	a, err := AccountFromSeed(mustHex(t, rfcSeed))
	if err != nil {
		t.Fatalf("AccountFromSeed() error: %v", err)
	}
	return a
}

func TestAccountFromSeed(t *testing.T) {
	a := rfcAccount(t)
	if !a.CanSign() {
		t.Error("seeded account should sign")
	}
	if a.GenIndex != -1 {
		t.Errorf("GenIndex = %d, want -1", a.GenIndex)
	}
	if got := base58.Encode(mustHex(t, rfcPub)); a.PublicKeyBase58() != got {
		t.Errorf("PublicKeyBase58() = %s, want %s", a.PublicKeyBase58(), got)
	}
	priv := a.PrivateKeyBytes()
	if len(priv) != 64 {
		t.Fatalf("PrivateKeyBytes() length = %d", len(priv))
	}
	if fmt.Sprintf("%x", priv) != rfcSeed+rfcPub {
		t.Error("private key should be seed ‖ public key")
	}
}

func TestAccountFromSeed_BadLength(t *testing.T) {
	if _, err := AccountFromSeed(make([]byte, 64)); !errors.Is(err, ErrMalformedKey) {
		t.Errorf("expected ErrMalformedKey, got %v", err)
	}
}

func TestAccountFromPrivateKeyBase58_MatchesSDK(t *testing.T) {
	a := rfcAccount(t)
	encoded := a.PrivateKeyBase58()

	restored, err := AccountFromPrivateKeyBase58(encoded)
	if err != nil {
		t.Fatalf("AccountFromPrivateKeyBase58() error: %v", err)
	}
	if restored.PublicKey() != a.PublicKey() {
		t.Error("restored account has different public key")
	}

	sdk, err := sdktypes.AccountFromBase58(encoded)
	if err != nil {
		t.Fatalf("sdk AccountFromBase58() error: %v", err)
	}
	if sdk.PublicKey.ToBase58() != a.PublicKeyBase58() {
		t.Errorf("sdk public key = %s, want %s", sdk.PublicKey.ToBase58(), a.PublicKeyBase58())
	}
}

func TestAccountFromPrivateKeyBytes_Mismatch(t *testing.T) {
	b := rfcAccount(t).PrivateKeyBytes()
	b[63] ^= 0x01
	if _, err := AccountFromPrivateKeyBytes(b); !errors.Is(err, ErrKeyMismatch) {
		t.Errorf("expected ErrKeyMismatch, got %v", err)
	}
	if _, err := AccountFromPrivateKeyBytes(b[:32]); !errors.Is(err, ErrMalformedKey) {
		t.Errorf("expected ErrMalformedKey, got %v", err)
	}
}

func TestAccountFromPrivateKeyBase58_Invalid(t *testing.T) {
	if _, err := AccountFromPrivateKeyBase58("0OIl"); !errors.Is(err, base58.ErrInvalidCharacter) {
		t.Errorf("expected ErrInvalidCharacter, got %v", err)
	}
	if _, err := AccountFromPrivateKeyBase58("abc"); !errors.Is(err, ErrMalformedKey) {
		t.Errorf("expected ErrMalformedKey, got %v", err)
	}
}

func TestAccountFromPublicKey(t *testing.T) {
	signer := rfcAccount(t)
	watch, err := AccountFromPublicKeyBase58(signer.PublicKeyBase58())
	if err != nil {
		t.Fatalf("AccountFromPublicKeyBase58() error: %v", err)
	}
	if watch.CanSign() {
		t.Error("watch-only account should not sign")
	}
	if watch.PrivateKeyBytes() != nil || watch.PrivateKeyBase58() != "" {
		t.Error("watch-only account should have no private key")
	}
	if _, err := watch.Sign([]byte("x")); !errors.Is(err, ErrNoPrivateKey) {
		t.Errorf("expected ErrNoPrivateKey, got %v", err)
	}

	pub := signer.PublicKey()
	fromBytes, err := AccountFromPublicKeyBytes(pub[:])
	if err != nil {
		t.Fatalf("AccountFromPublicKeyBytes() error: %v", err)
	}
	if fromBytes.PublicKey() != pub {
		t.Error("public key mismatch")
	}
	if _, err := AccountFromPublicKeyBytes(pub[:31]); !errors.Is(err, ErrMalformedKey) {
		t.Errorf("expected ErrMalformedKey, got %v", err)
	}
}

func TestAccount_SignVerify(t *testing.T) {
	a := rfcAccount(t)
	sig, err := a.Sign(nil)
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	want := "e5564300c360ac729086e2cc806e828a84877f1eb8e5d974d873e06522490155" +
		"5fb8821590a33bacc61e39701cf9b46bd25bf5f0595bbe24655141438e7a100b"
	if fmt.Sprintf("%x", sig) != want {
		t.Errorf("Sign() = %x", sig)
	}
	if !a.Verify(nil, sig) {
		t.Error("Verify() rejected own signature")
	}

	pub := a.PublicKey()
	if !Verify(nil, sig, pub[:]) {
		t.Error("package Verify() rejected valid signature")
	}
	if Verify([]byte("other"), sig, pub[:]) {
		t.Error("Verify() accepted signature over another message")
	}
}

func TestAccount_Zero(t *testing.T) {
	a := rfcAccount(t)
	pub := a.PublicKey()
	a.Zero()
	if a.CanSign() {
		t.Error("zeroed account should not sign")
	}
	if a.PublicKey() != pub {
		t.Error("Zero() should keep the public key")
	}
}

func TestParsePrivateKey(t *testing.T) {
	a := rfcAccount(t)
	priv := a.PrivateKeyBytes()

	parts := make([]string, len(priv))
	for i, b := range priv {
		parts[i] = fmt.Sprint(b)
	}
	byteForm := "[" + strings.Join(parts, ", ") + "]"

	tests := []struct {
		name  string
		input string
	}{
		{"base58", a.PrivateKeyBase58()},
		{"base58 padded", "  " + a.PrivateKeyBase58() + "\n"},
		{"byte array", byteForm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrivateKey(tt.input)
			if err != nil {
				t.Fatalf("ParsePrivateKey() error: %v", err)
			}
			if got.PublicKey() != a.PublicKey() {
				t.Error("public key mismatch")
			}
		})
	}

	if !IsBytePrivateKey(byteForm) || IsBytePrivateKey(a.PrivateKeyBase58()) {
		t.Error("IsBytePrivateKey() misclassified input")
	}
	if !IsBase58PrivateKey(a.PrivateKeyBase58()) || IsBase58PrivateKey(a.PublicKeyBase58()) {
		t.Error("IsBase58PrivateKey() misclassified input")
	}
}

func TestParsePrivateKey_Invalid(t *testing.T) {
	tests := []string{
		"[1,2,3]",
		"[" + strings.Repeat("300,", 63) + "300]",
		"[not json",
	}
	for _, in := range tests {
		if _, err := ParsePrivateKey(in); !errors.Is(err, ErrMalformedKey) {
			t.Errorf("ParsePrivateKey(%q) error = %v, want ErrMalformedKey", in, err)
		}
	}
}

func TestShortPublicKey(t *testing.T) {
	tests := []struct {
		pub        string
		head, tail int
		want       string
	}{
		{"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", 6, 4, "Tokenk...Q5DA"},
		{"short", 3, 3, "short"},
		{"abcdefgh", 2, 2, "ab...gh"},
	}
	for _, tt := range tests {
		if got := ShortPublicKey(tt.pub, tt.head, tt.tail); got != tt.want {
			t.Errorf("ShortPublicKey(%q) = %q, want %q", tt.pub, got, tt.want)
		}
	}
}
