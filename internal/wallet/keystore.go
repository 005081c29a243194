package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/solwallet/solwallet/internal/log"
	"github.com/solwallet/solwallet/internal/storage"
)

const (
	keystoreVersion = 1
	slotPrefix      = "slot/"
)

// slotRecord is the stored JSON form of a save slot. Public keys are kept
// in clear so a locked wallet can still list its addresses.
type slotRecord struct {
	Version    int       `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	PublicKeys []string  `json:"public_keys"`
	Encrypted  []byte    `json:"encrypted"`
}

// walletData is the plaintext sealed inside a slot.
type walletData struct {
	Mnemonic       string         `json:"mnemonic"`
	DerivationPath DerivationPath `json:"derivation_path"`
	Accounts       []AccountEntry `json:"accounts"`
	Loaded         bool           `json:"loaded"`
}

func (d *walletData) zero() {
	d.Mnemonic = ""
	for i := range d.Accounts {
		d.Accounts[i].PrivateKey = ""
	}
}

// AccountEntry stores one account inside the sealed blob.
type AccountEntry struct {
	Name       string `json:"name"`
	GenIndex   int    `json:"gen_index"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key,omitempty"` // Base58, empty for watch-only
}

func entryFromAccount(a *Account) AccountEntry {
	return AccountEntry{
		Name:       a.Name,
		GenIndex:   a.GenIndex,
		PublicKey:  a.PublicKeyBase58(),
		PrivateKey: a.PrivateKeyBase58(),
	}
}

func (e AccountEntry) account() (*Account, error) {
	var (
		a   *Account
		err error
	)
	if e.PrivateKey != "" {
		a, err = AccountFromPrivateKeyBase58(e.PrivateKey)
	} else {
		a, err = AccountFromPublicKeyBase58(e.PublicKey)
	}
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", e.PublicKey, err)
	}
	if a.PublicKeyBase58() != e.PublicKey {
		return nil, fmt.Errorf("account %s: %w", e.PublicKey, ErrKeyMismatch)
	}
	a.Name = e.Name
	a.GenIndex = e.GenIndex
	return a, nil
}

// Keystore persists encrypted save slots in a key-value store.
type Keystore struct {
	db     *storage.PrefixDB
	params EncryptionParams
	logger zerolog.Logger
}

// NewKeystore creates a keystore that keeps its slots under the "slot/"
// prefix of db.
func NewKeystore(db storage.DB, params EncryptionParams) *Keystore {
	return &Keystore{
		db:     storage.NewPrefixDB(db, []byte(slotPrefix)),
		params: params,
		logger: log.Keystore,
	}
}

func validSlotName(name string) error {
	if name == "" || strings.ContainsAny(name, "/\x00") {
		return fmt.Errorf("invalid slot name %q", name)
	}
	return nil
}

// Exists reports whether a slot has been saved.
func (ks *Keystore) Exists(slot string) (bool, error) {
	if err := validSlotName(slot); err != nil {
		return false, err
	}
	return ks.db.Has([]byte(slot))
}

func (ks *Keystore) save(slot string, data *walletData, password []byte) error {
	if err := validSlotName(slot); err != nil {
		return err
	}
	data.Loaded = true
	plain, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal wallet: %w", err)
	}
	defer zero(plain)

	sealed, err := Encrypt(plain, password, ks.params)
	if err != nil {
		return fmt.Errorf("encrypt wallet: %w", err)
	}

	now := time.Now().UTC()
	rec := slotRecord{
		Version:    keystoreVersion,
		CreatedAt:  now,
		UpdatedAt:  now,
		PublicKeys: make([]string, 0, len(data.Accounts)),
		Encrypted:  sealed,
	}
	if prev, err := ks.readRecord(slot); err == nil {
		rec.CreatedAt = prev.CreatedAt
	}
	for _, e := range data.Accounts {
		rec.PublicKeys = append(rec.PublicKeys, e.PublicKey)
	}

	if err := ks.writeRecord(slot, &rec); err != nil {
		return err
	}
	ks.logger.Debug().Str("slot", slot).Int("accounts", len(rec.PublicKeys)).Msg("Saved wallet slot")
	return nil
}

func (ks *Keystore) load(slot string, password []byte) (*walletData, error) {
	rec, err := ks.readRecord(slot)
	if err != nil {
		return nil, err
	}
	done := log.Benchmark("keystore.decrypt")
	plain, err := Decrypt(rec.Encrypted, password)
	done()
	if err != nil {
		return nil, err
	}
	defer zero(plain)

	var data walletData
	if err := json.Unmarshal(plain, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
	}
	if !data.Loaded {
		return nil, ErrWrongPassword
	}
	return &data, nil
}

// PublicKeys returns the clear-text addresses recorded for slot.
func (ks *Keystore) PublicKeys(slot string) ([]string, error) {
	rec, err := ks.readRecord(slot)
	if err != nil {
		return nil, err
	}
	return rec.PublicKeys, nil
}

// List returns the names of all saved slots in order.
func (ks *Keystore) List() ([]string, error) {
	var names []string
	err := ks.db.ForEach(nil, func(key, _ []byte) error {
		names = append(names, string(key))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return names, nil
}

// Rename moves a slot to a new name. The sealed contents are unchanged.
func (ks *Keystore) Rename(from, to string) error {
	if err := validSlotName(from); err != nil {
		return err
	}
	if err := validSlotName(to); err != nil {
		return err
	}
	err := ks.db.Rename([]byte(from), []byte(to))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%w: %q", ErrSlotNotFound, from)
	case errors.Is(err, storage.ErrExists):
		return fmt.Errorf("slot %q already exists", to)
	case err != nil:
		return fmt.Errorf("rename slot: %w", err)
	}
	ks.logger.Info().Str("from", from).Str("to", to).Msg("Renamed wallet slot")
	return nil
}

// Delete removes a slot.
func (ks *Keystore) Delete(slot string) error {
	ok, err := ks.Exists(slot)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrSlotNotFound, slot)
	}
	if err := ks.db.Delete([]byte(slot)); err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	ks.logger.Info().Str("slot", slot).Msg("Deleted wallet slot")
	return nil
}

func (ks *Keystore) writeRecord(slot string, rec *slotRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal slot: %w", err)
	}
	if err := ks.db.Put([]byte(slot), data); err != nil {
		return fmt.Errorf("write slot: %w", err)
	}
	return nil
}

func (ks *Keystore) readRecord(slot string) (*slotRecord, error) {
	if err := validSlotName(slot); err != nil {
		return nil, err
	}
	data, err := ks.db.Get([]byte(slot))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrSlotNotFound, slot)
	}
	if err != nil {
		return nil, fmt.Errorf("read slot: %w", err)
	}
	var rec slotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse slot: %w", err)
	}
	if rec.Version != keystoreVersion {
		return nil, fmt.Errorf("unsupported keystore version: %d", rec.Version)
	}
	return &rec, nil
}
