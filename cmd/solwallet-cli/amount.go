package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// solDecimals is the number of decimal places in one SOL.
const solDecimals = 9

// maxDecimals keeps 10^decimals within uint64.
const maxDecimals = 19

func pow10(decimals int) uint64 {
	p := uint64(1)
	for i := 0; i < decimals; i++ {
		p *= 10
	}
	return p
}

// formatAmount converts base units to a decimal string without trailing
// fractional zeros.
func formatAmount(units uint64, decimals int) string {
	if decimals <= 0 {
		return strconv.FormatUint(units, 10)
	}
	unit := pow10(decimals)
	s := fmt.Sprintf("%d.%0*d", units/unit, decimals, units%unit)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// parseAmount converts a decimal string to base units.
func parseAmount(s string, decimals int) (uint64, error) {
	if decimals < 0 || decimals > maxDecimals {
		return 0, fmt.Errorf("unsupported decimals %d", decimals)
	}
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("negative amount")
	}

	parts := strings.SplitN(s, ".", 2)
	if parts[0] == "" {
		parts[0] = "0"
	}

	whole, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid whole part: %w", err)
	}

	var frac uint64
	if len(parts) == 2 {
		fracStr := parts[1]
		if len(fracStr) > decimals {
			return 0, fmt.Errorf("too many decimal places (max %d)", decimals)
		}
		if fracStr != "" {
			// Pad to decimals digits.
			fracStr += strings.Repeat("0", decimals-len(fracStr))
			frac, err = strconv.ParseUint(fracStr, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid fractional part: %w", err)
			}
		}
	}

	unit := pow10(decimals)
	if whole > math.MaxUint64/unit {
		return 0, fmt.Errorf("amount too large")
	}
	result := whole * unit
	if result > math.MaxUint64-frac {
		return 0, fmt.Errorf("amount too large")
	}
	return result + frac, nil
}
