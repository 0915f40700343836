package signature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test_1234567890"

func TestVerify_ValidSignature(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	header := Sign(testSecret, "req-abc", "123456789", now.Unix())

	err := Verify(testSecret, header, "req-abc", "123456789", now)
	assert.NoError(t, err)
}

func TestVerify_ResourceIDLowercased(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	header := Sign(testSecret, "req-abc", "abc123", now.Unix())

	// Gateway canonicalizes ids to lowercase before signing.
	err := Verify(testSecret, header, "req-abc", "ABC123", now)
	assert.NoError(t, err)
}

func TestVerify_MissingSecretFailsClosed(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	header := Sign(testSecret, "req-abc", "123", now.Unix())

	err := Verify("", header, "req-abc", "123", now)
	assert.ErrorIs(t, err, ErrSecretMissing)
}

func TestVerify_StaleTimestampRejectedDespiteCorrectHMAC(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	signed := now.Add(-MaxClockSkew - time.Second)
	header := Sign(testSecret, "req-abc", "123", signed.Unix())

	err := Verify(testSecret, header, "req-abc", "123", now)
	assert.ErrorIs(t, err, ErrStaleTimestamp)
}

func TestVerify_FutureTimestampRejected(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	signed := now.Add(MaxClockSkew + time.Second)
	header := Sign(testSecret, "req-abc", "123", signed.Unix())

	err := Verify(testSecret, header, "req-abc", "123", now)
	assert.ErrorIs(t, err, ErrStaleTimestamp)
}

func TestVerify_EdgeOfWindowAccepted(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	signed := now.Add(-MaxClockSkew)
	header := Sign(testSecret, "req-abc", "123", signed.Unix())

	err := Verify(testSecret, header, "req-abc", "123", now)
	assert.NoError(t, err)
}

func TestVerify_WrongSecret(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	header := Sign("other-secret", "req-abc", "123", now.Unix())

	err := Verify(testSecret, header, "req-abc", "123", now)
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestVerify_TamperedResourceID(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	header := Sign(testSecret, "req-abc", "123", now.Unix())

	err := Verify(testSecret, header, "req-abc", "999", now)
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestParseHeader(t *testing.T) {
	parts, err := ParseHeader("ts=1704908010,v1=618c85345248dd820d5fd456117c2ab2")
	require.NoError(t, err)
	assert.Equal(t, int64(1704908010), parts.Timestamp)
	assert.Equal(t, "618c85345248dd820d5fd456117c2ab2", parts.V1)
}

func TestParseHeader_IgnoresUnknownKeys(t *testing.T) {
	parts, err := ParseHeader("ts=1704908010,v2=zzz,v1=abcd")
	require.NoError(t, err)
	assert.Equal(t, "abcd", parts.V1)
}

func TestParseHeader_Malformed(t *testing.T) {
	cases := []string{
		"",
		"ts=,v1=abcd",
		"ts=notanumber,v1=abcd",
		"v1=abcd",
		"ts=1704908010",
		"garbage",
	}
	for _, header := range cases {
		_, err := ParseHeader(header)
		assert.Error(t, err, "header %q", header)
	}
}
