package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC32C(t *testing.T) {
	// Known vector for CRC32-Castagnoli.
	assert.Equal(t, uint32(0xe3069283), CRC32C([]byte("123456789")))

	data := []byte("payload")
	assert.NoError(t, Verify(data, CRC32C(data)))
	assert.ErrorIs(t, Verify([]byte("payloaD"), CRC32C(data)), ErrChecksumMismatch)
}
