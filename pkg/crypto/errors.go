package crypto

import "errors"

// ErrKeyMismatch is returned when a 64-byte secret carries a public key that
// does not belong to its seed.
var ErrKeyMismatch = errors.New("embedded public key does not match seed")

// ErrKeyCleared is returned when signing with a key that has been zeroed.
var ErrKeyCleared = errors.New("private key cleared")
