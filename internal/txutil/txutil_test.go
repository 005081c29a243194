package txutil

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/solwallet/solwallet/pkg/crypto"
	"github.com/solwallet/solwallet/pkg/program"
	"github.com/solwallet/solwallet/pkg/tx"
	"github.com/solwallet/solwallet/pkg/types"
)

func testKey(t *testing.T, b byte) *crypto.PrivateKey {
	t.Helper()
	k, err := crypto.NewKeypairFromSeed(bytes.Repeat([]byte{b}, crypto.SeedSize))
	if err != nil {
		t.Fatalf("NewKeypairFromSeed() error: %v", err)
	}
	return k
}

func TestTransferSOL(t *testing.T) {
	from := testKey(t, 1)
	to := types.PublicKey{0x22}
	raw, err := TransferSOL(from, to, 1500, types.Hash{9})
	if err != nil {
		t.Fatalf("TransferSOL() error: %v", err)
	}
	d, err := tx.Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if err := d.VerifySignatures(); err != nil {
		t.Fatalf("VerifySignatures() error: %v", err)
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	want := []types.PublicKey{from.PublicKey(), to, program.SystemProgramID}
	for i, k := range want {
		if d.AccountKeys[i] != k {
			t.Errorf("account %d = %s, want %s", i, d.AccountKeys[i], k)
		}
	}
	if !bytes.Equal(d.Instructions[0].Data, program.TransferLamports(from.PublicKey(), to, 1500).Data) {
		t.Error("instruction data mismatch")
	}
}

func TestTransferSOL_NoSigner(t *testing.T) {
	if _, err := TransferSOL(nil, types.PublicKey{}, 1, types.Hash{}); !errors.Is(err, ErrNoSigner) {
		t.Errorf("TransferSOL(nil) error = %v, want ErrNoSigner", err)
	}
}

func TestTransferToken_Existing(t *testing.T) {
	owner := testKey(t, 2)
	src := types.PublicKey{0x10}
	dst := types.PublicKey{0x11}
	res, err := TransferToken(TokenTransfer{
		Source:      src,
		Owner:       owner,
		Destination: dst,
		Mint:        types.PublicKey{0x12},
		Amount:      77,
		Blockhash:   types.Hash{1},
	})
	if err != nil {
		t.Fatalf("TransferToken() error: %v", err)
	}
	if res.Created || res.Destination != dst {
		t.Errorf("result = %+v", res)
	}
	d, err := tx.Decode(res.Raw)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(d.Signatures) != 1 || len(d.Instructions) != 1 {
		t.Fatalf("got %d signatures, %d instructions", len(d.Signatures), len(d.Instructions))
	}
	if err := d.VerifySignatures(); err != nil {
		t.Errorf("VerifySignatures() error: %v", err)
	}
}

func TestTransferToken_CreatesAccount(t *testing.T) {
	owner := testKey(t, 3)
	recipient := types.PublicKey{0x30}
	mint := types.PublicKey{0x31}
	seed := bytes.Repeat([]byte{0x44}, crypto.SeedSize)

	res, err := TransferToken(TokenTransfer{
		Source:    types.PublicKey{0x32},
		Owner:     owner,
		Recipient: recipient,
		Mint:      mint,
		Amount:    5,
		Blockhash: types.Hash{2},
		Rand:      bytes.NewReader(seed),
	})
	if err != nil {
		t.Fatalf("TransferToken() error: %v", err)
	}
	if !res.Created {
		t.Fatal("expected a new token account")
	}
	expected, _ := crypto.NewKeypairFromSeed(seed)
	if res.Destination != expected.PublicKey() {
		t.Errorf("Destination = %s, want %s", res.Destination, expected.PublicKey())
	}

	d, err := tx.Decode(res.Raw)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(d.Signatures) != 2 || d.Header.RequiredSignatures != 2 {
		t.Fatalf("signatures = %d, header = %+v", len(d.Signatures), d.Header)
	}
	if d.AccountKeys[0] != owner.PublicKey() || d.AccountKeys[1] != res.Destination {
		t.Errorf("signer order = %s, %s", d.AccountKeys[0], d.AccountKeys[1])
	}
	if len(d.Instructions) != 3 {
		t.Fatalf("got %d instructions, want 3", len(d.Instructions))
	}
	if err := d.VerifySignatures(); err != nil {
		t.Errorf("VerifySignatures() error: %v", err)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
	create := d.Instructions[0].Data
	if got := hex.EncodeToString(create[:4]); got != "00000000" {
		t.Errorf("create account index = %s", got)
	}
}

func TestTransferToken_NoOwner(t *testing.T) {
	if _, err := TransferToken(TokenTransfer{}); !errors.Is(err, ErrNoSigner) {
		t.Errorf("TransferToken() error = %v, want ErrNoSigner", err)
	}
}
