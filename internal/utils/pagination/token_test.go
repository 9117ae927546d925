package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeTimeIDToken(t *testing.T) {
	occurredAt := time.Date(2024, 6, 1, 14, 30, 45, 123456789, time.UTC)
	id := "5f0c2a4e-8d1b-4c3e-9a7f-2b6d1e0c9a11"

	token := EncodeTimeIDToken(occurredAt, id)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedAt, decodedID, err := DecodeTimeIDToken(token)
	assert.NoError(t, err)
	assert.True(t, occurredAt.Equal(decodedAt), "Time should match after decode")
	assert.Equal(t, id, decodedID)

	// Non-UTC input is encoded in UTC
	ist := time.FixedZone("TRT", 3*60*60)
	decodedAt, _, err = DecodeTimeIDToken(EncodeTimeIDToken(occurredAt.In(ist), id))
	assert.NoError(t, err)
	assert.True(t, occurredAt.Equal(decodedAt))
}

func TestDecodeTimeIDTokenError(t *testing.T) {
	_, _, err := DecodeTimeIDToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode")

	_, _, err = DecodeTimeIDToken(base64.URLEncoding.EncodeToString([]byte("2024-06-01T00:00:00Z")))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	_, _, err = DecodeTimeIDToken(base64.URLEncoding.EncodeToString([]byte("yesterday|abc")))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "date parse")
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-5))
	assert.Equal(t, 7, NormalizeLimit(7))
	assert.Equal(t, MaxLimit, NormalizeLimit(1000))
}
