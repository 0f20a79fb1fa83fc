package khash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFNV1aEmpty(t *testing.T) {
	assert.Equal(t, fnvOffsetBasis, FNV1a(nil))
}

func TestFNV1aKnownVector(t *testing.T) {
	// "a" under 64-bit FNV-1a is a widely published vector.
	assert.Equal(t, uint64(0xaf63dc4c8601ec8c), FNV1a([]byte("a")))
}

func TestFNV1aDeterministic(t *testing.T) {
	data := []byte("kernel core hash input")
	assert.Equal(t, FNV1a(data), FNV1a(data))
}

func TestCRC32KnownVector(t *testing.T) {
	// CRC-32/ISO-HDLC of "123456789" is the standard check vector.
	assert.Equal(t, uint32(0xCBF43926), CRC32([]byte("123456789")))
}

func TestCRC32Empty(t *testing.T) {
	assert.Equal(t, uint32(0), CRC32(nil))
}
