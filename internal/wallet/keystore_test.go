package wallet

import (
	"bytes"
	"errors"
	"testing"

	"github.com/solwallet/solwallet/internal/storage"
)

func newTestKeystore(t *testing.T) (*Keystore, storage.DB) {
	t.Helper()
	db := storage.NewMemory()
	return NewKeystore(db, fastParams()), db
}

func testWalletData(t *testing.T) *walletData {
	t.Helper()
	a := rfcAccount(t)
	a.Name = "main"
	return &walletData{
		Mnemonic:       testMnemonic,
		DerivationPath: PathBIP44Change,
		Accounts:       []AccountEntry{entryFromAccount(a)},
	}
}

func TestKeystore_SaveAndLoad(t *testing.T) {
	ks, _ := newTestKeystore(t)
	password := []byte("test-password")

	if err := ks.save("main", testWalletData(t), password); err != nil {
		t.Fatalf("save() error: %v", err)
	}

	got, err := ks.load("main", password)
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	if got.Mnemonic != testMnemonic {
		t.Error("loaded mnemonic mismatch")
	}
	if !got.DerivationPath.Equal(PathBIP44Change) {
		t.Errorf("derivation path = %s", got.DerivationPath)
	}
	if len(got.Accounts) != 1 || got.Accounts[0].Name != "main" {
		t.Fatalf("accounts = %+v", got.Accounts)
	}
	a, err := got.Accounts[0].account()
	if err != nil {
		t.Fatalf("account() error: %v", err)
	}
	if !a.CanSign() || a.PublicKey() != rfcAccount(t).PublicKey() {
		t.Error("restored account mismatch")
	}
}

func TestKeystore_LoadWrongPassword(t *testing.T) {
	ks, _ := newTestKeystore(t)
	if err := ks.save("main", testWalletData(t), []byte("correct")); err != nil {
		t.Fatalf("save() error: %v", err)
	}
	if _, err := ks.load("main", []byte("wrong")); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("load() error = %v, want ErrWrongPassword", err)
	}
}

func TestKeystore_LoadNonexistent(t *testing.T) {
	ks, _ := newTestKeystore(t)
	if _, err := ks.load("missing", []byte("pass")); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("load() error = %v, want ErrSlotNotFound", err)
	}
}

func TestKeystore_PublicKeysInClear(t *testing.T) {
	ks, _ := newTestKeystore(t)
	data := testWalletData(t)
	if err := ks.save("main", data, []byte("pass")); err != nil {
		t.Fatalf("save() error: %v", err)
	}
	keys, err := ks.PublicKeys("main")
	if err != nil {
		t.Fatalf("PublicKeys() error: %v", err)
	}
	if len(keys) != 1 || keys[0] != rfcAccount(t).PublicKeyBase58() {
		t.Errorf("PublicKeys() = %v", keys)
	}
}

func TestKeystore_SlotsUsePrefix(t *testing.T) {
	ks, db := newTestKeystore(t)
	if err := ks.save("main", testWalletData(t), []byte("pass")); err != nil {
		t.Fatalf("save() error: %v", err)
	}
	ok, err := db.Has([]byte("slot/main"))
	if err != nil || !ok {
		t.Errorf("slot/main missing from underlying DB (ok=%v err=%v)", ok, err)
	}
	raw, _ := db.Get([]byte("slot/main"))
	if bytes.Contains(raw, []byte("abandon")) {
		t.Error("mnemonic stored in clear")
	}
}

func TestKeystore_List(t *testing.T) {
	ks, db := newTestKeystore(t)
	db.Put([]byte("other/key"), []byte("x"))
	for _, name := range []string{"beta", "alpha"} {
		if err := ks.save(name, testWalletData(t), []byte("pass")); err != nil {
			t.Fatalf("save(%s) error: %v", name, err)
		}
	}
	names, err := ks.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("List() = %v, want [alpha beta]", names)
	}
}

func TestKeystore_RenameAndDelete(t *testing.T) {
	ks, _ := newTestKeystore(t)
	if err := ks.save("old", testWalletData(t), []byte("pass")); err != nil {
		t.Fatalf("save() error: %v", err)
	}
	if err := ks.Rename("old", "new"); err != nil {
		t.Fatalf("Rename() error: %v", err)
	}
	if ok, _ := ks.Exists("old"); ok {
		t.Error("old slot should be gone")
	}
	if _, err := ks.load("new", []byte("pass")); err != nil {
		t.Errorf("load(new) error: %v", err)
	}

	if err := ks.Delete("new"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := ks.Delete("new"); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("second Delete() error = %v, want ErrSlotNotFound", err)
	}
}

func TestKeystore_InvalidSlotName(t *testing.T) {
	ks, _ := newTestKeystore(t)
	for _, name := range []string{"", "a/b"} {
		if err := ks.save(name, testWalletData(t), []byte("pass")); err == nil {
			t.Errorf("save(%q) should fail", name)
		}
	}
}

func TestKeystore_KeepsCreatedAt(t *testing.T) {
	ks, _ := newTestKeystore(t)
	if err := ks.save("main", testWalletData(t), []byte("pass")); err != nil {
		t.Fatalf("save() error: %v", err)
	}
	first, err := ks.readRecord("main")
	if err != nil {
		t.Fatalf("readRecord() error: %v", err)
	}
	if err := ks.save("main", testWalletData(t), []byte("pass")); err != nil {
		t.Fatalf("save() error: %v", err)
	}
	second, err := ks.readRecord("main")
	if err != nil {
		t.Fatalf("readRecord() error: %v", err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Error("CreatedAt changed on resave")
	}
}

func TestKeystore_RenameConflicts(t *testing.T) {
	ks, _ := newTestKeystore(t)
	for _, slot := range []string{"a", "b"} {
		if err := ks.save(slot, testWalletData(t), []byte("pass")); err != nil {
			t.Fatalf("save(%s) error: %v", slot, err)
		}
	}
	if err := ks.Rename("a", "b"); err == nil {
		t.Error("Rename() onto an existing slot should fail")
	}
	if err := ks.Rename("missing", "c"); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("Rename() of missing slot error = %v, want ErrSlotNotFound", err)
	}
	if _, err := ks.load("a", []byte("pass")); err != nil {
		t.Errorf("failed Rename() damaged source slot: %v", err)
	}
}
