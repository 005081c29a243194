package crypto

import (
	"encoding/hex"
	"testing"
)

func TestSHA256(t *testing.T) {
	got := SHA256([]byte("abc"))
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if hex.EncodeToString(got[:]) != want {
		t.Errorf("SHA256(abc) = %x, want %s", got, want)
	}
}

func TestSHA512(t *testing.T) {
	got := SHA512([]byte("abc"))
	want := "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a" +
		"2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f"
	if hex.EncodeToString(got[:]) != want {
		t.Errorf("SHA512(abc) = %x, want %s", got, want)
	}
}

func TestHMACSHA512(t *testing.T) {
	// RFC 4231 test case 2.
	got := HMACSHA512([]byte("Jefe"), []byte("what do ya want for nothing?"))
	want := "164b7a7bfcf819e2e395fbe73b56e0a387bd64222e831fd610270cd7ea250554" +
		"9758bf75c05a994a6d034f65f8f0e6fdcaeab1a34d4a6b4b636e070a38bce737"
	if hex.EncodeToString(got) != want {
		t.Errorf("HMACSHA512() = %x, want %s", got, want)
	}
}

func TestPBKDF2SHA512(t *testing.T) {
	sentence := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	got := PBKDF2SHA512([]byte(sentence), []byte("mnemonicTREZOR"), 2048, 64)
	want := "c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e5349553" +
		"1f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04"
	if hex.EncodeToString(got) != want {
		t.Errorf("PBKDF2SHA512() = %x, want %s", got, want)
	}
}

func TestHMACSHA512_Deterministic(t *testing.T) {
	a := HMACSHA512([]byte("ed25519 seed"), []byte{1, 2, 3})
	b := HMACSHA512([]byte("ed25519 seed"), []byte{1, 2, 3})
	if hex.EncodeToString(a) != hex.EncodeToString(b) {
		t.Error("same input should produce same MAC")
	}
	if len(a) != 64 {
		t.Errorf("MAC length = %d, want 64", len(a))
	}
}
