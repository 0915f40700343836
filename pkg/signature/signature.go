// Package signature validates Mercado Pago webhook signatures.
//
// The gateway signs each delivery with HMAC-SHA256 over a canonical manifest
// built from the notified resource id, the x-request-id header and a unix
// timestamp, and ships timestamp and digest in a single header as
// "ts=<unix_seconds>,v1=<hex_hmac>". Verification is fail-closed: a missing
// secret, a malformed header, a stale timestamp or a digest mismatch all
// reject the delivery before any state is touched.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxClockSkew is the hard replay window. A correctly signed delivery whose
// timestamp is further than this from the server clock is rejected.
const MaxClockSkew = 300 * time.Second

var (
	ErrSecretMissing   = fmt.Errorf("signature: shared secret not configured")
	ErrHeaderMalformed = fmt.Errorf("signature: malformed signature header")
	ErrStaleTimestamp  = fmt.Errorf("signature: timestamp outside freshness window")
	ErrMismatch        = fmt.Errorf("signature: digest mismatch")
)

// Parts holds the values extracted from the x-signature header.
type Parts struct {
	Timestamp int64
	V1        string
}

// ParseHeader extracts ts and v1 from a comma-separated key=value header.
// Unknown keys are ignored so the gateway can add fields without breaking us.
func ParseHeader(header string) (Parts, error) {
	var parts Parts
	for _, kv := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(kv), "=")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "ts":
			ts, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			if err != nil {
				return Parts{}, ErrHeaderMalformed
			}
			parts.Timestamp = ts
		case "v1":
			parts.V1 = strings.TrimSpace(value)
		}
	}
	if parts.Timestamp == 0 || parts.V1 == "" {
		return Parts{}, ErrHeaderMalformed
	}
	return parts, nil
}

// Manifest builds the canonical string the gateway signs. The resource id is
// lowercased, matching the gateway's canonicalization of alphanumeric ids.
func Manifest(resourceID, requestID string, timestamp int64) string {
	return fmt.Sprintf("id:%s;request-id:%s;ts:%d;", strings.ToLower(resourceID), requestID, timestamp)
}

// Verify checks freshness and digest for one delivery. now is injected so the
// replay window is testable.
func Verify(secret, header, requestID, resourceID string, now time.Time) error {
	if secret == "" {
		return ErrSecretMissing
	}

	parts, err := ParseHeader(header)
	if err != nil {
		return err
	}

	age := now.Sub(time.Unix(parts.Timestamp, 0))
	if age > MaxClockSkew || age < -MaxClockSkew {
		return ErrStaleTimestamp
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(Manifest(resourceID, requestID, parts.Timestamp)))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(parts.V1))) {
		return ErrMismatch
	}

	return nil
}

// Sign produces a header value for the given manifest inputs. Used by tests
// and by local tooling that replays captured deliveries.
func Sign(secret, requestID, resourceID string, timestamp int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(Manifest(resourceID, requestID, timestamp)))
	return fmt.Sprintf("ts=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}
