// Package totp implements RFC 6238 time-based one-time passwords with the
// parameters authenticator apps default to: SHA-1, 6 digits, 30-second step.
package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	secretBytes = 20
	Digits      = 6
	Period      = 30
	// Skew is the number of steps accepted either side of the current one.
	Skew = 1
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateSecret returns a fresh random secret, base32-encoded.
func GenerateSecret() (string, error) {
	raw := make([]byte, secretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return b32.EncodeToString(raw), nil
}

// ProvisioningURI builds the otpauth URL encoded into enrollment QR codes.
// Each label component is percent-encoded on its own so the issuer:account
// separator stays literal while characters like @ do not.
func ProvisioningURI(secret, issuer, account string) string {
	label := url.QueryEscape(issuer) + ":" + url.QueryEscape(account)

	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", issuer)
	v.Set("period", fmt.Sprintf("%d", Period))
	v.Set("digits", fmt.Sprintf("%d", Digits))
	v.Set("algorithm", "SHA1")

	return "otpauth://totp/" + label + "?" + v.Encode()
}

// Verify checks code against secret at the given time, tolerating Skew steps
// of clock drift in either direction.
func Verify(secret, code string, now time.Time) (bool, error) {
	trimmed := strings.TrimSpace(code)
	if len(trimmed) != Digits || !isNumeric(trimmed) {
		return false, nil
	}

	key, err := b32.DecodeString(strings.ToUpper(secret))
	if err != nil {
		return false, fmt.Errorf("malformed totp secret: %w", err)
	}
	if len(key) == 0 {
		return false, errors.New("empty totp secret")
	}

	baseCounter := now.Unix() / Period
	for step := int64(-Skew); step <= Skew; step++ {
		counter := baseCounter + step
		if counter < 0 {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(hotpCode(key, counter)), []byte(trimmed)) == 1 {
			return true, nil
		}
	}

	return false, nil
}

func hotpCode(key []byte, counter int64) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	value := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return fmt.Sprintf("%06d", value%1000000)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

const backupCodeLength = 8

// Readable alphabet for backup codes: upper-case letters and digits without
// the easily confused 0/O and 1/I.
const backupAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateBackupCodes returns n opaque single-use recovery codes.
func GenerateBackupCodes(n int) ([]string, error) {
	codes := make([]string, n)
	for i := range codes {
		buf := make([]byte, backupCodeLength)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		chars := make([]byte, backupCodeLength)
		for j, b := range buf {
			chars[j] = backupAlphabet[int(b)%len(backupAlphabet)]
		}
		codes[i] = string(chars)
	}
	return codes, nil
}
