package main

import (
	"math"
	"testing"

	"github.com/solwallet/solwallet/internal/wallet"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in       string
		decimals int
		want     uint64
	}{
		{"1", solDecimals, wallet.LamportsPerSOL},
		{"1.5", solDecimals, 1_500_000_000},
		{"0.000000001", solDecimals, 1},
		{".25", solDecimals, 250_000_000},
		{"2.", solDecimals, 2 * wallet.LamportsPerSOL},
		{"0", solDecimals, 0},
		{"42", 0, 42},
		{"3.14", 2, 314},
		{"18446744073709551615", 0, math.MaxUint64},
		{"18446744073.709551615", solDecimals, math.MaxUint64},
	}
	for _, tt := range tests {
		got, err := parseAmount(tt.in, tt.decimals)
		if err != nil {
			t.Fatalf("parseAmount(%q, %d) error: %v", tt.in, tt.decimals, err)
		}
		if got != tt.want {
			t.Errorf("parseAmount(%q, %d) = %d, want %d", tt.in, tt.decimals, got, tt.want)
		}
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		decimals int
	}{
		{"empty", "", solDecimals},
		{"negative", "-1", solDecimals},
		{"too precise", "0.0000000001", solDecimals},
		{"fraction without decimals", "1.5", 0},
		{"letters", "1.5x", solDecimals},
		{"two dots", "1.2.3", solDecimals},
		{"overflow", "18446744074", solDecimals},
		{"overflow with fraction", "18446744073.709551616", solDecimals},
		{"bad decimals", "1", 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseAmount(tt.in, tt.decimals); err == nil {
				t.Errorf("parseAmount(%q, %d) should fail", tt.in, tt.decimals)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		units    uint64
		decimals int
		want     string
	}{
		{wallet.LamportsPerSOL, solDecimals, "1"},
		{1_500_000_000, solDecimals, "1.5"},
		{1, solDecimals, "0.000000001"},
		{0, solDecimals, "0"},
		{314, 2, "3.14"},
		{42, 0, "42"},
		{math.MaxUint64, solDecimals, "18446744073.709551615"},
	}
	for _, tt := range tests {
		if got := formatAmount(tt.units, tt.decimals); got != tt.want {
			t.Errorf("formatAmount(%d, %d) = %q, want %q", tt.units, tt.decimals, got, tt.want)
		}
	}
}

func TestFormatDelta(t *testing.T) {
	if got := formatDelta(wallet.LamportsPerSOL, 2*wallet.LamportsPerSOL); got != "+1" {
		t.Errorf("formatDelta(up) = %q, want +1", got)
	}
	if got := formatDelta(2*wallet.LamportsPerSOL, 500_000_000); got != "-1.5" {
		t.Errorf("formatDelta(down) = %q, want -1.5", got)
	}
}

func TestDerivationPath(t *testing.T) {
	tests := []struct {
		in   string
		want wallet.DerivationPath
	}{
		{"bip44", wallet.PathBIP44},
		{"BIP44Change", wallet.PathBIP44Change},
		{"", wallet.PathBIP44},
	}
	for _, tt := range tests {
		got, err := derivationPath(tt.in)
		if err != nil {
			t.Fatalf("derivationPath(%q) error: %v", tt.in, err)
		}
		if !got.Equal(tt.want) {
			t.Errorf("derivationPath(%q) = %s, want %s", tt.in, got.Name, tt.want.Name)
		}
	}

	got, err := derivationPath("m/44'/501'/7'")
	if err != nil {
		t.Fatalf("derivationPath() error: %v", err)
	}
	if len(got.Segments) != 3 || got.Segments[2] != 7 {
		t.Errorf("derivationPath() segments = %v", got.Segments)
	}
	if _, err := derivationPath("bogus"); err == nil {
		t.Error("derivationPath(bogus) should fail")
	}
}
