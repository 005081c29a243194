package wallet

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/solwallet/solwallet/internal/log"
	"github.com/solwallet/solwallet/pkg/types"
)

// EventKind identifies a wallet state change.
type EventKind int

// Wallet events.
const (
	EventUnlocked EventKind = iota + 1
	EventLocked
	EventWiped
	EventAccountsChanged
	EventMnemonicUpdated
)

func (k EventKind) String() string {
	switch k {
	case EventUnlocked:
		return "unlocked"
	case EventLocked:
		return "locked"
	case EventWiped:
		return "wiped"
	case EventAccountsChanged:
		return "accounts_changed"
	case EventMnemonicUpdated:
		return "mnemonic_updated"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is delivered to subscribers. It never carries secrets.
type Event struct {
	Kind EventKind
	Slot string
}

// Wallet is an encrypted session bound to one keystore save slot. A wallet
// opened on an existing slot starts locked and exposes only the stored
// public keys until Unlock.
type Wallet struct {
	mu       sync.Mutex
	ks       *Keystore
	slot     string
	locked   bool
	password []byte
	mnemonic string
	path     DerivationPath
	accounts []*Account
	subs     map[int]chan Event
	nextSub  int
	logger   zerolog.Logger
}

// Open binds a wallet to slot. If the slot exists the wallet starts locked
// with watch-only accounts for the stored public keys.
func Open(ks *Keystore, slot string) (*Wallet, error) {
	w := &Wallet{
		ks:     ks,
		slot:   slot,
		path:   PathBIP44,
		subs:   make(map[int]chan Event),
		logger: log.WithSlot(log.Wallet, slot),
	}
	exists, err := ks.Exists(slot)
	if err != nil {
		return nil, err
	}
	if !exists {
		return w, nil
	}

	keys, err := ks.PublicKeys(slot)
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		a, err := AccountFromPublicKeyBase58(k)
		if err != nil {
			return nil, fmt.Errorf("slot %q: %w", slot, err)
		}
		w.accounts = append(w.accounts, a)
	}
	w.locked = true
	return w, nil
}

// Slot returns the save slot name.
func (w *Wallet) Slot() string {
	return w.slot
}

// Subscribe registers for wallet events. Events are dropped when the
// channel buffer is full. The returned func unsubscribes.
func (w *Wallet) Subscribe(buffer int) (<-chan Event, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch := make(chan Event, buffer)
	id := w.nextSub
	w.nextSub++
	w.subs[id] = ch
	return ch, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if c, ok := w.subs[id]; ok {
			delete(w.subs, id)
			close(c)
		}
	}
}

func (w *Wallet) publish(kind EventKind) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ev := Event{Kind: kind, Slot: w.slot}
	for _, ch := range w.subs {
		select {
		case ch <- ev:
		default:
			w.logger.Warn().Stringer("event", kind).Msg("Dropped event for slow subscriber")
		}
	}
}

// IsLocked reports whether the wallet is locked.
func (w *Wallet) IsLocked() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.locked
}

// HasMnemonic reports whether a mnemonic is loaded.
func (w *Wallet) HasMnemonic() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mnemonic != ""
}

// Mnemonic returns the loaded mnemonic sentence.
func (w *Wallet) Mnemonic() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.locked {
		return "", ErrWalletLocked
	}
	if w.mnemonic == "" {
		return "", ErrNoMnemonic
	}
	return w.mnemonic, nil
}

// GenerateMnemonic creates a fresh mnemonic for an empty wallet.
func (w *Wallet) GenerateMnemonic(words int) (string, error) {
	m, err := GenerateMnemonic(words)
	if err != nil {
		return "", err
	}
	if err := w.setMnemonic(m); err != nil {
		return "", err
	}
	return m, nil
}

// RestoreMnemonic loads an existing mnemonic into an empty wallet.
func (w *Wallet) RestoreMnemonic(sentence string) error {
	if err := Validate(sentence, EnglishWordlist()); err != nil {
		return fmt.Errorf("invalid mnemonic: %w", err)
	}
	return w.setMnemonic(sentence)
}

func (w *Wallet) setMnemonic(m string) error {
	w.mu.Lock()
	if w.locked {
		w.mu.Unlock()
		return ErrWalletLocked
	}
	if w.mnemonic != "" {
		w.mu.Unlock()
		return ErrMnemonicExists
	}
	w.mnemonic = m
	w.path = PathBIP44
	w.zeroAccounts()
	w.accounts = nil
	w.mu.Unlock()

	w.logger.Info().Msg("Mnemonic loaded")
	w.publish(EventMnemonicUpdated)
	return nil
}

// SetPassword sets the slot password and saves the wallet under it.
func (w *Wallet) SetPassword(password []byte) error {
	if len(password) == 0 {
		return ErrNoPassword
	}
	w.mu.Lock()
	if w.locked {
		w.mu.Unlock()
		return ErrWalletLocked
	}
	zero(w.password)
	w.password = append([]byte(nil), password...)
	w.mu.Unlock()
	return w.Save()
}

// Save seals the wallet into its slot.
func (w *Wallet) Save() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.saveLocked()
}

func (w *Wallet) saveLocked() error {
	if w.locked {
		return ErrWalletLocked
	}
	if len(w.password) == 0 {
		return ErrNoPassword
	}
	data := &walletData{
		Mnemonic:       w.mnemonic,
		DerivationPath: w.path,
		Accounts:       make([]AccountEntry, 0, len(w.accounts)),
	}
	for _, a := range w.accounts {
		data.Accounts = append(data.Accounts, entryFromAccount(a))
	}
	defer data.zero()
	return w.ks.save(w.slot, data, w.password)
}

// Unlock decrypts the slot. Unlocking an unlocked wallet only checks the
// password.
func (w *Wallet) Unlock(password []byte) error {
	w.mu.Lock()
	if !w.locked {
		ok := len(w.password) > 0 && subtle.ConstantTimeCompare(w.password, password) == 1
		w.mu.Unlock()
		if !ok {
			return ErrWrongPassword
		}
		return nil
	}

	data, err := w.ks.load(w.slot, password)
	if err != nil {
		w.mu.Unlock()
		if errors.Is(err, ErrWrongPassword) {
			w.logger.Warn().Msg("Unlock failed: wrong password")
		}
		return err
	}
	defer data.zero()

	accts := make([]*Account, 0, len(data.Accounts))
	for _, e := range data.Accounts {
		a, err := e.account()
		if err != nil {
			w.mu.Unlock()
			for _, done := range accts {
				done.Zero()
			}
			return err
		}
		accts = append(accts, a)
	}

	w.zeroAccounts()
	w.accounts = accts
	w.mnemonic = data.Mnemonic
	if len(data.DerivationPath.Segments) > 0 {
		w.path = data.DerivationPath
	}
	w.password = append([]byte(nil), password...)
	w.locked = false
	w.mu.Unlock()

	w.logger.Info().Int("accounts", len(accts)).Msg("Wallet unlocked")
	w.publish(EventMnemonicUpdated)
	w.publish(EventUnlocked)
	return nil
}

// Lock optionally saves, then zeroes the mnemonic, password and private
// keys. Accounts remain as watch-only.
func (w *Wallet) Lock(save bool) error {
	w.mu.Lock()
	if w.locked {
		w.mu.Unlock()
		return nil
	}
	if save {
		if err := w.saveLocked(); err != nil {
			w.mu.Unlock()
			return err
		}
	}
	w.lockLocked()
	w.mu.Unlock()

	w.logger.Info().Msg("Wallet locked")
	w.publish(EventLocked)
	return nil
}

func (w *Wallet) lockLocked() {
	zero(w.password)
	w.password = nil
	w.mnemonic = ""
	w.zeroAccounts()
	w.locked = true
}

func (w *Wallet) zeroAccounts() {
	for _, a := range w.accounts {
		a.Zero()
	}
}

// Wipe locks the wallet without saving, deletes its slot and resets it to
// an empty unlocked state.
func (w *Wallet) Wipe() error {
	w.mu.Lock()
	w.lockLocked()
	w.accounts = nil
	w.path = PathBIP44
	w.locked = false
	w.mu.Unlock()

	if err := w.ks.Delete(w.slot); err != nil && !errors.Is(err, ErrSlotNotFound) {
		return err
	}
	w.logger.Info().Msg("Wallet wiped")
	w.publish(EventWiped)
	return nil
}

// DerivationPath returns the path used for new accounts.
func (w *Wallet) DerivationPath() DerivationPath {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

// SetDerivationPath selects the path used for new accounts.
func (w *Wallet) SetDerivationPath(p DerivationPath) error {
	if len(p.Segments) == 0 {
		return fmt.Errorf("empty derivation path")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.locked {
		return ErrWalletLocked
	}
	w.path = p
	return nil
}

// DerivationPaths returns the supported derivation path presets.
func (w *Wallet) DerivationPaths() []DerivationPath {
	return DerivationPaths()
}

// AccountsFromPath previews the first n accounts of path without adding
// them to the wallet.
func (w *Wallet) AccountsFromPath(ctx context.Context, path DerivationPath, n int) ([]*Account, error) {
	seed, err := w.seed()
	if err != nil {
		return nil, err
	}
	defer zero(seed)
	return DeriveAccounts(ctx, seed, path, 0, n)
}

func (w *Wallet) seed() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.locked {
		return nil, ErrWalletLocked
	}
	if w.mnemonic == "" {
		return nil, ErrNoMnemonic
	}
	return DeriveSeed(w.mnemonic), nil
}

// nextGenIndex returns the smallest unused generation index, so gaps left
// by removed accounts are filled first.
func (w *Wallet) nextGenIndex() int {
	used := make(map[int]bool, len(w.accounts))
	for _, a := range w.accounts {
		if a.GenIndex >= 0 {
			used[a.GenIndex] = true
		}
	}
	i := 0
	for used[i] {
		i++
	}
	return i
}

// GenerateNewAccount derives the account at the next free generation index.
func (w *Wallet) GenerateNewAccount() (*Account, error) {
	w.mu.Lock()
	idx := w.nextGenIndex()
	w.mu.Unlock()
	return w.GenerateAccountAt(idx)
}

// GenerateAccountAt returns the account at genIndex, deriving and adding it
// if needed.
func (w *Wallet) GenerateAccountAt(genIndex int) (*Account, error) {
	if genIndex < 0 {
		return nil, fmt.Errorf("negative generation index %d", genIndex)
	}
	if w.IsLocked() {
		return nil, ErrWalletLocked
	}
	if a := w.AccountByGenIndex(genIndex); a != nil {
		return a, nil
	}
	seed, err := w.seed()
	if err != nil {
		return nil, err
	}
	defer zero(seed)

	w.mu.Lock()
	key := DerivePath(seed, w.path.SegmentsFor(uint32(genIndex)))
	a, err := AccountFromSeed(key)
	zero(key)
	if err != nil {
		w.mu.Unlock()
		return nil, err
	}
	a.GenIndex = genIndex
	a.Name = fmt.Sprintf("Wallet %d", len(w.accounts)+1)
	if err := w.addLocked(a); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	w.mu.Unlock()

	w.logger.Info().Int("gen_index", genIndex).Str("account", a.PublicKeyBase58()).Msg("Generated account")
	w.publish(EventAccountsChanged)
	return a, nil
}

// AccountByGenIndex returns the derived account at genIndex, or nil.
func (w *Wallet) AccountByGenIndex(genIndex int) *Account {
	if genIndex < 0 {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, a := range w.accounts {
		if a.GenIndex == genIndex {
			return a
		}
	}
	return nil
}

// ImportPrivateKey adds a signing account from a Base58 or byte-array key.
func (w *Wallet) ImportPrivateKey(s string) (*Account, error) {
	a, err := ParsePrivateKey(s)
	if err != nil {
		return nil, err
	}
	return w.importAccount(a)
}

// ImportPublicKey adds a watch-only account.
func (w *Wallet) ImportPublicKey(s string) (*Account, error) {
	a, err := AccountFromPublicKeyBase58(s)
	if err != nil {
		return nil, err
	}
	return w.importAccount(a)
}

func (w *Wallet) importAccount(a *Account) (*Account, error) {
	w.mu.Lock()
	if w.locked {
		w.mu.Unlock()
		a.Zero()
		return nil, ErrWalletLocked
	}
	a.Name = fmt.Sprintf("Imported %d", len(w.accounts)+1)
	if err := w.addLocked(a); err != nil {
		w.mu.Unlock()
		a.Zero()
		return nil, err
	}
	w.mu.Unlock()

	w.logger.Info().Str("account", a.PublicKeyBase58()).Bool("signer", a.CanSign()).Msg("Imported account")
	w.publish(EventAccountsChanged)
	return a, nil
}

func (w *Wallet) addLocked(a *Account) error {
	for _, existing := range w.accounts {
		if existing.PublicKey() == a.PublicKey() {
			return fmt.Errorf("%w: %s", ErrAccountExists, a.PublicKeyBase58())
		}
	}
	w.accounts = append(w.accounts, a)
	return nil
}

// RemoveAccount drops an account from the wallet and zeroes its key.
func (w *Wallet) RemoveAccount(pub types.PublicKey) error {
	w.mu.Lock()
	if w.locked {
		w.mu.Unlock()
		return ErrWalletLocked
	}
	idx := -1
	for i, a := range w.accounts {
		if a.PublicKey() == pub {
			idx = i
			break
		}
	}
	if idx < 0 {
		w.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAccountNotFound, pub)
	}
	w.accounts[idx].Zero()
	w.accounts = append(w.accounts[:idx], w.accounts[idx+1:]...)
	w.mu.Unlock()

	w.publish(EventAccountsChanged)
	return nil
}

// Accounts returns the wallet accounts in insertion order.
func (w *Wallet) Accounts() []*Account {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*Account(nil), w.accounts...)
}

// Account returns the account with the given Base58 address, or nil.
func (w *Wallet) Account(pub string) *Account {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, a := range w.accounts {
		if a.PublicKeyBase58() == pub {
			return a
		}
	}
	return nil
}
