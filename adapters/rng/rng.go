package rng

import (
	cryptorand "crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
)

// cryptoSource feeds math/rand/v2 from the operating system CSPRNG
type cryptoSource struct{}

// Uint64 draws 8 bytes from crypto/rand, which never returns an error
func (cryptoSource) Uint64() uint64 {
	var buf [8]byte
	_, _ = cryptorand.Read(buf[:])
	return binary.LittleEndian.Uint64(buf[:])
}

// NewCrypto returns a random source backed by crypto/rand, for production draws
func NewCrypto() *rand.Rand {
	return rand.New(cryptoSource{})
}

// NewSeeded returns a reproducible ChaCha8 stream keyed by the seed and a stream
// name, so distinct operations sharing one seed draw independent streams
func NewSeeded(seed uint64, stream string) *rand.Rand {
	h := sha256.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], seed)
	h.Write(buf[:])
	h.Write([]byte(stream))

	var key [32]byte
	copy(key[:], h.Sum(nil))
	return rand.New(rand.NewChaCha8(key))
}
