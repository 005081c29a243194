package wallet

import (
	"context"
	"encoding/binary"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/solwallet/solwallet/pkg/crypto"
	"golang.org/x/sync/errgroup"
)

// SLIP-10 ed25519 constants. Only hardened derivation is defined for
// ed25519, so every index is forced into the hardened range.
const (
	HardenedOffset uint32 = 0x80000000

	// PurposeBIP44 is the BIP-44 purpose field.
	PurposeBIP44 uint32 = 44

	// CoinTypeSolana is the SLIP-44 registered coin type for Solana.
	CoinTypeSolana uint32 = 501

	masterKeySecret = "ed25519 seed"
)

// Node is a SLIP-10 ed25519 extended private key.
type Node struct {
	Key       [32]byte
	ChainCode [32]byte
}

// NewNode builds a node from raw key and chain code. Both must be 32 bytes;
// anything else is a programming error and panics.
func NewNode(key, chainCode []byte) Node {
	if len(key) != 32 || len(chainCode) != 32 {
		panic(fmt.Sprintf("hd node: key and chain code must be 32 bytes, got %d and %d", len(key), len(chainCode)))
	}
	var n Node
	copy(n.Key[:], key)
	copy(n.ChainCode[:], chainCode)
	return n
}

func nodeFromDigest(digest []byte) Node {
	n := NewNode(digest[:32], digest[32:])
	zero(digest)
	return n
}

// Root derives the master node from a seed.
func Root(seed []byte) Node {
	return nodeFromDigest(crypto.HMACSHA512([]byte(masterKeySecret), seed))
}

// DeriveChild derives the hardened child at index.
func DeriveChild(parent Node, index uint32) Node {
	var data [1 + 32 + 4]byte
	copy(data[1:33], parent.Key[:])
	binary.BigEndian.PutUint32(data[33:], index|HardenedOffset)
	n := nodeFromDigest(crypto.HMACSHA512(parent.ChainCode[:], data[:]))
	zero(data[:])
	return n
}

// DerivePath walks segments from the root of seed and returns the final
// 32-byte private key.
func DerivePath(seed []byte, segments []uint32) []byte {
	node := Root(seed)
	for _, idx := range segments {
		next := DeriveChild(node, idx)
		node.Zero()
		node = next
	}
	key := make([]byte, 32)
	copy(key, node.Key[:])
	node.Zero()
	return key
}

// Zero clears the key material.
func (n *Node) Zero() {
	zero(n.Key[:])
	zero(n.ChainCode[:])
}

// DerivationPath describes a family of account paths. The segment at
// IncreasingIndex is replaced by the account index.
type DerivationPath struct {
	Name            string   `json:"name"`
	Segments        []uint32 `json:"segments"`
	IncreasingIndex int      `json:"increasing_index"`
}

// Preset derivation paths.
var (
	PathBIP44 = DerivationPath{
		Name:            "m/44'/501'/0'",
		Segments:        []uint32{PurposeBIP44, CoinTypeSolana, 0},
		IncreasingIndex: 2,
	}
	PathBIP44Change = DerivationPath{
		Name:            "m/44'/501'/0'/0'",
		Segments:        []uint32{PurposeBIP44, CoinTypeSolana, 0, 0},
		IncreasingIndex: 2,
	}
)

// DerivationPaths returns the supported presets, default first.
func DerivationPaths() []DerivationPath {
	return []DerivationPath{PathBIP44, PathBIP44Change}
}

// ParseDerivationPath parses a path such as "m/44'/501'/3'/0'". Hardened
// markers are optional since every level is hardened anyway.
func ParseDerivationPath(s string) (DerivationPath, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) < 2 || parts[0] != "m" {
		return DerivationPath{}, fmt.Errorf("invalid derivation path %q", s)
	}
	segs := make([]uint32, 0, len(parts)-1)
	for _, p := range parts[1:] {
		p = strings.TrimRight(p, "'hH")
		v, err := strconv.ParseUint(p, 10, 31)
		if err != nil {
			return DerivationPath{}, fmt.Errorf("invalid derivation path %q: segment %q", s, p)
		}
		segs = append(segs, uint32(v))
	}
	dp := DerivationPath{Segments: segs, IncreasingIndex: 2}
	dp.Name = dp.String()
	return dp, nil
}

// String renders the path with every segment hardened.
func (p DerivationPath) String() string {
	var b strings.Builder
	b.WriteString("m")
	for _, s := range p.Segments {
		b.WriteString("/")
		b.WriteString(strconv.FormatUint(uint64(s), 10))
		b.WriteString("'")
	}
	return b.String()
}

// Equal reports whether two paths select the same keys.
func (p DerivationPath) Equal(o DerivationPath) bool {
	if len(p.Segments) != len(o.Segments) || p.IncreasingIndex != o.IncreasingIndex {
		return false
	}
	for i := range p.Segments {
		if p.Segments[i] != o.Segments[i] {
			return false
		}
	}
	return true
}

// SegmentsFor returns a copy of the segments with the increasing slot set
// to index. Paths too short to have that slot are returned unchanged.
func (p DerivationPath) SegmentsFor(index uint32) []uint32 {
	out := make([]uint32, len(p.Segments))
	copy(out, p.Segments)
	if p.IncreasingIndex >= 0 && p.IncreasingIndex < len(out) {
		out[p.IncreasingIndex] = index
	}
	return out
}

// DeriveAccounts derives n sibling accounts starting at index first. Work is
// spread across GOMAXPROCS goroutines; results are ordered by index.
func DeriveAccounts(ctx context.Context, seed []byte, path DerivationPath, first uint32, n int) ([]*Account, error) {
	if n <= 0 {
		return nil, nil
	}
	out := make([]*Account, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			idx := first + uint32(i)
			key := DerivePath(seed, path.SegmentsFor(idx))
			defer zero(key)
			acct, err := AccountFromSeed(key)
			if err != nil {
				return fmt.Errorf("derive account %d: %w", idx, err)
			}
			acct.GenIndex = int(idx)
			out[i] = acct
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, a := range out {
			if a != nil {
				a.Zero()
			}
		}
		return nil, err
	}
	return out, nil
}
