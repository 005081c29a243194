package wallet

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/tyler-smith/go-bip39"
)

func TestGenerateEntropy(t *testing.T) {
	for _, strength := range []int{16, 20, 24, 28, 32} {
		ent, err := GenerateEntropy(strength)
		if err != nil {
			t.Fatalf("GenerateEntropy(%d) error: %v", strength, err)
		}
		if len(ent) != strength+1 {
			t.Fatalf("GenerateEntropy(%d) length = %d, want %d", strength, len(ent), strength+1)
		}
		sum := sha256Byte0(ent[:strength])
		if ent[strength] != sum {
			t.Errorf("checksum byte = %02x, want %02x", ent[strength], sum)
		}
	}
}

func TestGenerateEntropy_InvalidLength(t *testing.T) {
	for _, strength := range []int{0, 8, 15, 17, 33, 64} {
		if _, err := GenerateEntropy(strength); !errors.Is(err, ErrInvalidEntropyLength) {
			t.Errorf("GenerateEntropy(%d) error = %v, want ErrInvalidEntropyLength", strength, err)
		}
	}
}

func TestSplitBytesByBits(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		bits int
		want []uint32
	}{
		{"nibbles", []byte{0xab, 0xcd}, 4, []uint32{0xa, 0xb, 0xc, 0xd}},
		{"bytes", []byte{1, 2, 3}, 8, []uint32{1, 2, 3}},
		{"eleven drops tail", []byte{0xff, 0xff, 0xff}, 11, []uint32{0x7ff, 0x7ff}},
		{"msb first", []byte{0x80, 0x00}, 11, []uint32{0x400}},
		{"too few bits", []byte{0xff}, 11, []uint32{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitBytesByBits(tt.data, tt.bits)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%v)", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("group %d = %#x, want %#x", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestToSentence_KnownVectors(t *testing.T) {
	tests := []struct {
		entropy byte
		want    string
	}{
		{0x00, "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"},
		{0x7f, "legal winner thank year wave sausage worth useful legal winner thank yellow"},
		{0x80, "letter advice cage absurd amount doctor acoustic avoid letter advice cage above"},
		{0xff, "zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo wrong"},
	}
	for _, tt := range tests {
		ent := bytes.Repeat([]byte{tt.entropy}, 16)
		got, err := ToSentence(appendChecksum(ent), EnglishWordlist())
		if err != nil {
			t.Fatalf("ToSentence() error: %v", err)
		}
		if got != tt.want {
			t.Errorf("ToSentence(%02x...) = %q, want %q", tt.entropy, got, tt.want)
		}
	}
}

func TestToSentence_MatchesBIP39(t *testing.T) {
	for _, strength := range []int{16, 20, 24, 28, 32} {
		ent, err := GenerateEntropy(strength)
		if err != nil {
			t.Fatalf("GenerateEntropy() error: %v", err)
		}
		got, err := ToSentence(ent, EnglishWordlist())
		if err != nil {
			t.Fatalf("ToSentence() error: %v", err)
		}
		want, err := bip39.NewMnemonic(ent[:strength])
		if err != nil {
			t.Fatalf("bip39.NewMnemonic() error: %v", err)
		}
		if got != want {
			t.Errorf("strength %d: got %q, want %q", strength, got, want)
		}
		if words := len(strings.Fields(got)); words != strength*3/4 {
			t.Errorf("strength %d: %d words, want %d", strength, words, strength*3/4)
		}
	}
}

func TestToSentence_Errors(t *testing.T) {
	if _, err := ToSentence(make([]byte, 17), []string{"a"}); !errors.Is(err, ErrInvalidWordlist) {
		t.Errorf("expected ErrInvalidWordlist, got %v", err)
	}
	if _, err := ToSentence(make([]byte, 10), EnglishWordlist()); !errors.Is(err, ErrInvalidEntropyLength) {
		t.Errorf("expected ErrInvalidEntropyLength, got %v", err)
	}
}

func TestGenerateMnemonic(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{0, 24}, {12, 12}, {15, 15}, {18, 18}, {21, 21}, {24, 24},
	}
	for _, tt := range tests {
		m, err := GenerateMnemonic(tt.words)
		if err != nil {
			t.Fatalf("GenerateMnemonic(%d) error: %v", tt.words, err)
		}
		if got := len(strings.Fields(m)); got != tt.want {
			t.Errorf("GenerateMnemonic(%d) word count = %d, want %d", tt.words, got, tt.want)
		}
		if !ValidateMnemonic(m) {
			t.Errorf("generated mnemonic should validate: %q", m)
		}
		if !bip39.IsMnemonicValid(m) {
			t.Errorf("go-bip39 rejects generated mnemonic: %q", m)
		}
	}

	if _, err := GenerateMnemonic(13); !errors.Is(err, ErrInvalidWordCount) {
		t.Errorf("GenerateMnemonic(13) error = %v, want ErrInvalidWordCount", err)
	}
}

func TestGenerateMnemonic_Unique(t *testing.T) {
	m1, err := GenerateMnemonic(24)
	if err != nil {
		t.Fatalf("GenerateMnemonic() error: %v", err)
	}
	m2, err := GenerateMnemonic(24)
	if err != nil {
		t.Fatalf("GenerateMnemonic() error: %v", err)
	}

	if m1 == m2 {
		t.Error("two generated mnemonics should not be identical")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mnemonic string
		wantErr  error
	}{
		{
			name:     "valid 24-word",
			mnemonic: "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon art",
		},
		{
			name:     "valid 12-word",
			mnemonic: "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about",
		},
		{
			name:     "empty string",
			mnemonic: "",
			wantErr:  ErrInvalidWordCount,
		},
		{
			name:     "seven words",
			mnemonic: "not a valid mnemonic phrase at all",
			wantErr:  ErrInvalidWordCount,
		},
		{
			name:     "unknown word",
			mnemonic: "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon solana",
			wantErr:  ErrInvalidWord,
		},
		{
			name:     "wrong checksum",
			mnemonic: "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon",
			wantErr:  ErrChecksumMismatch,
		},
		{
			name:     "wrong checksum 24-word",
			mnemonic: "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon",
			wantErr:  ErrChecksumMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.mnemonic, EnglishWordlist())
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if IsValid(tt.mnemonic, EnglishWordlist()) {
				t.Error("IsValid() = true for invalid mnemonic")
			}
		})
	}
}

func TestValidate_AgreesWithBIP39(t *testing.T) {
	m := "legal winner thank year wave sausage worth useful legal winner thank yellow"
	if ValidateMnemonic(m) != bip39.IsMnemonicValid(m) {
		t.Error("validation disagrees with go-bip39")
	}
	// Swapping two words breaks the checksum.
	swapped := "winner legal thank year wave sausage worth useful legal winner thank yellow"
	if ValidateMnemonic(swapped) != bip39.IsMnemonicValid(swapped) {
		t.Error("validation disagrees with go-bip39 on swapped words")
	}
}

// A single flipped bit must break the checksum unless the mutated entropy
// happens to hash to the same checksum bits.
func TestIsValid_EntropyBitFlip(t *testing.T) {
	wordlist := EnglishWordlist()
	for _, strength := range []int{16, 20, 24, 28, 32} {
		ent, err := GenerateEntropy(strength)
		if err != nil {
			t.Fatalf("GenerateEntropy(%d) error: %v", strength, err)
		}
		sentence, err := ToSentence(ent, wordlist)
		if err != nil {
			t.Fatalf("ToSentence() error: %v", err)
		}
		if !IsValid(sentence, wordlist) {
			t.Fatalf("IsValid() = false for generated %d-byte entropy", strength)
		}

		mask := byte(0xff) << (8 - strength/4)
		collisions := 0
		for bit := 0; bit < strength*8; bit++ {
			flipped := append([]byte(nil), ent...)
			flipped[bit/8] ^= 0x80 >> (bit % 8)
			sentence, err := ToSentence(flipped, wordlist)
			if err != nil {
				t.Fatalf("ToSentence() error: %v", err)
			}
			want := sha256Byte0(flipped[:strength])&mask == ent[strength]&mask
			if want {
				collisions++
			}
			if got := IsValid(sentence, wordlist); got != want {
				t.Fatalf("strength %d bit %d: IsValid() = %v, want %v", strength, bit, got, want)
			}
		}
		// Expected collisions are strength*8 / 2^(strength/4); allow wide slack.
		if limit := strength * 8 / 2; collisions > limit {
			t.Errorf("strength %d: %d of %d flips kept a valid checksum", strength, collisions, strength*8)
		}

		for bit := 0; bit < strength/4; bit++ {
			flipped := append([]byte(nil), ent...)
			flipped[strength] ^= 0x80 >> bit
			sentence, err := ToSentence(flipped, wordlist)
			if err != nil {
				t.Fatalf("ToSentence() error: %v", err)
			}
			if IsValid(sentence, wordlist) {
				t.Errorf("strength %d: checksum bit %d flipped but IsValid() = true", strength, bit)
			}
		}
	}
}

func sha256Byte0(b []byte) byte {
	sum := sha256Sum(b)
	return sum[0]
}
