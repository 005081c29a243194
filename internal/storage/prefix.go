package storage

// PrefixDB scopes a shared DB to one keyspace, such as wallet save slots.
// Keys seen by callers never include the prefix.
type PrefixDB struct {
	inner  DB
	prefix []byte
}

// NewPrefixDB scopes inner to keys starting with prefix.
func NewPrefixDB(inner DB, prefix []byte) *PrefixDB {
	return &PrefixDB{inner: inner, prefix: append([]byte(nil), prefix...)}
}

func (p *PrefixDB) key(k []byte) []byte {
	out := make([]byte, 0, len(p.prefix)+len(k))
	return append(append(out, p.prefix...), k...)
}

func (p *PrefixDB) Get(key []byte) ([]byte, error) { return p.inner.Get(p.key(key)) }
func (p *PrefixDB) Put(key, value []byte) error { return p.inner.Put(p.key(key), value) }
func (p *PrefixDB) Delete(key []byte) error { return p.inner.Delete(p.key(key)) }
func (p *PrefixDB) Has(key []byte) (bool, error) { return p.inner.Has(p.key(key)) }
func (p *PrefixDB) Rename(from, to []byte) error { return p.inner.Rename(p.key(from), p.key(to)) }

// ForEach visits keys under prefix within the keyspace, stripped of the
// keyspace prefix.
func (p *PrefixDB) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	n := len(p.prefix)
	return p.inner.ForEach(p.key(prefix), func(key, value []byte) error {
		return fn(key[n:], value)
	})
}

// Close leaves the inner DB open; its owner closes it.
func (p *PrefixDB) Close() error {
	return nil
}
