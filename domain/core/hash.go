package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Domain-specific hash types
type (
	// DistributionHash fingerprints an outcome table (labels, probability
	// columns, payoffs) so a run manifest pins exactly which inputs produced
	// an estimate.
	DistributionHash Hash

	// Fingerprint pins every determinism parameter of a run: same
	// fingerprint, same estimate, bit for bit.
	Fingerprint Hash
)

func NewDistributionHash(data []byte) DistributionHash { return DistributionHash(NewHash(data)) }
func NewFingerprint(data []byte) Fingerprint           { return Fingerprint(NewHash(data)) }

func (h DistributionHash) String() string { return Hash(h).String() }
func (h Fingerprint) String() string      { return Hash(h).String() }

// Short returns a truncated fingerprint for logs and CLI output.
func (h Fingerprint) Short() string {
	s := Hash(h).String()
	if len(s) > 12 {
		return s[:12]
	}
	return s
}
