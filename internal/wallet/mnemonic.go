// Package wallet implements mnemonic generation, SLIP-10 ed25519 key
// derivation, accounts and the encrypted wallet session.
package wallet

import (
	"fmt"
	"strings"

	"github.com/solwallet/solwallet/pkg/crypto"
	"github.com/tyler-smith/go-bip39"
	"github.com/tyler-smith/go-bip39/wordlists"
)

const (
	// WordlistSize is the number of words in a BIP-39 wordlist.
	WordlistSize = 2048

	// DefaultWordCount is used when GenerateMnemonic is asked for 0 words.
	DefaultWordCount = 24

	bitsPerWord = 11
)

// EnglishWordlist returns the BIP-39 English wordlist.
func EnglishWordlist() []string {
	return wordlists.English
}

// GenerateEntropy returns strength random bytes followed by one checksum
// byte. Only the first strength/4 bits of the checksum byte are part of the
// mnemonic; the rest is the remainder of the SHA-256 digest byte.
func GenerateEntropy(strength int) ([]byte, error) {
	if !validEntropyLength(strength) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidEntropyLength, strength)
	}
	entropy, err := bip39.NewEntropy(strength * 8)
	if err != nil {
		return nil, fmt.Errorf("generate entropy: %w", err)
	}
	return appendChecksum(entropy), nil
}

func appendChecksum(entropy []byte) []byte {
	sum := crypto.SHA256(entropy)
	out := make([]byte, len(entropy)+1)
	copy(out, entropy)
	out[len(entropy)] = sum[0]
	return out
}

func validEntropyLength(n int) bool {
	return n >= 16 && n <= 32 && n%4 == 0
}

// SplitBytesByBits reads data as a big-endian bit stream and returns
// consecutive groups of bits. A trailing partial group is dropped.
func SplitBytesByBits(data []byte, bits int) []uint32 {
	if bits <= 0 || bits > 32 {
		return nil
	}
	out := make([]uint32, 0, len(data)*8/bits)
	var acc uint64
	var have int
	for _, b := range data {
		acc = acc<<8 | uint64(b)
		have += 8
		for have >= bits {
			have -= bits
			out = append(out, uint32(acc>>uint(have))&(1<<uint(bits)-1))
		}
		acc &= 1<<uint(have) - 1
	}
	return out
}

// ToSentence converts entropy with its trailing checksum byte into a
// space-separated mnemonic sentence.
func ToSentence(entropyWithChecksum []byte, wordlist []string) (string, error) {
	if len(wordlist) != WordlistSize {
		return "", fmt.Errorf("%w: got %d", ErrInvalidWordlist, len(wordlist))
	}
	entLen := len(entropyWithChecksum) - 1
	if !validEntropyLength(entLen) {
		return "", fmt.Errorf("%w: got %d", ErrInvalidEntropyLength, entLen)
	}
	entBits := entLen * 8
	count := (entBits + entBits/32) / bitsPerWord

	indices := SplitBytesByBits(entropyWithChecksum, bitsPerWord)[:count]
	words := make([]string, count)
	for i, idx := range indices {
		words[i] = wordlist[idx]
	}
	return strings.Join(words, " "), nil
}

// Validate checks the word count, that every word is in wordlist and that
// the embedded checksum matches the entropy.
func Validate(sentence string, wordlist []string) error {
	if len(wordlist) != WordlistSize {
		return fmt.Errorf("%w: got %d", ErrInvalidWordlist, len(wordlist))
	}
	words := strings.Fields(sentence)
	if !validWordCount(len(words)) {
		return fmt.Errorf("%w: got %d", ErrInvalidWordCount, len(words))
	}

	lookup := make(map[string]uint32, WordlistSize)
	for i, w := range wordlist {
		lookup[w] = uint32(i)
	}

	totalBits := len(words) * bitsPerWord
	packed := make([]byte, (totalBits+7)/8)
	bit := 0
	for _, w := range words {
		idx, ok := lookup[w]
		if !ok {
			return fmt.Errorf("%w: %q", ErrInvalidWord, w)
		}
		for i := bitsPerWord - 1; i >= 0; i-- {
			if idx>>uint(i)&1 == 1 {
				packed[bit/8] |= 0x80 >> uint(bit%8)
			}
			bit++
		}
	}

	csBits := totalBits / 33
	entropy := packed[:(totalBits-csBits)/8]
	sum := crypto.SHA256(entropy)
	mask := byte(0xff) << uint(8-csBits)
	if packed[len(entropy)]&mask != sum[0]&mask {
		return ErrChecksumMismatch
	}
	return nil
}

// IsValid reports whether sentence passes Validate.
func IsValid(sentence string, wordlist []string) bool {
	return Validate(sentence, wordlist) == nil
}

func validWordCount(n int) bool {
	return n >= 12 && n <= 24 && n%3 == 0
}

// GenerateMnemonic creates a new English mnemonic with the given number of
// words. Zero selects DefaultWordCount.
func GenerateMnemonic(words int) (string, error) {
	if words == 0 {
		words = DefaultWordCount
	}
	if !validWordCount(words) {
		return "", fmt.Errorf("%w: got %d", ErrInvalidWordCount, words)
	}
	entropy, err := GenerateEntropy(words * 4 / 3)
	if err != nil {
		return "", err
	}
	defer zero(entropy)
	return ToSentence(entropy, EnglishWordlist())
}

// ValidateMnemonic checks a sentence against the English wordlist.
func ValidateMnemonic(sentence string) bool {
	return IsValid(sentence, EnglishWordlist())
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
