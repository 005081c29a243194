package tx

import "github.com/solwallet/solwallet/pkg/types"

// LamportsPerSignature is the base fee charged per required signature.
const LamportsPerSignature = 5000

// EstimateFee returns the base fee for a transaction with numSigners
// signatures. Prioritization fees are not included; GetFeeForMessage on the
// RPC client returns the cluster's authoritative figure.
func EstimateFee(numSigners int) uint64 {
	if numSigners < 0 {
		return 0
	}
	return uint64(numSigners) * LamportsPerSignature
}

// RequiredFee returns the base fee a decoded transaction will be charged.
func RequiredFee(d *Decoded) uint64 {
	return EstimateFee(int(d.Header.RequiredSignatures))
}

// Size returns the wire size tx would have when built for signers.
func (t *Transaction) Size(signers ...types.PublicKey) (int, error) {
	msg, err := t.Message(signers...)
	if err != nil {
		return 0, err
	}
	n := len(dedupKeys(signers))
	return len(EncodeLength(n)) + types.SignatureSize*n + len(msg), nil
}
