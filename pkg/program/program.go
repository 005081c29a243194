// Package program builds instructions for the System and Token programs.
package program

import "github.com/solwallet/solwallet/pkg/types"

// Well-known program and sysvar ids.
var (
	SystemProgramID = types.PublicKey{}
	TokenProgramID  = types.MustPublicKey("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	SysvarRentID    = types.MustPublicKey("SysvarRent111111111111111111111111111111111")
)

const (
	// TokenAccountSize is the data length of an SPL token account.
	TokenAccountSize = 165
	// TokenAccountRentExempt is the rent-exempt minimum for a token account
	// in lamports.
	TokenAccountRentExempt = 2039280
)
