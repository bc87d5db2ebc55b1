// Package synth derives bounded, reproducible player attributes from stable
// identifiers.
package synth

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// prefixLen is the number of hex digits of the digest used as the integer
// (48 bits).
const prefixLen = 12

// StableIndex maps seed to an integer in [0, modulus). The result depends
// only on the UTF-8 bytes of seed, so it is identical across runs, processes
// and platforms. It panics if modulus is not positive.
func StableIndex(seed string, modulus int) int {
	if modulus <= 0 {
		panic("synth: modulus must be positive")
	}

	sum := sha256.Sum256([]byte(seed))
	prefix := hex.EncodeToString(sum[:])[:prefixLen]

	n, err := strconv.ParseUint(prefix, 16, 64)
	if err != nil {
		// 12 hex digits always fit in 64 bits.
		panic(err)
	}

	return int(n % uint64(modulus))
}
