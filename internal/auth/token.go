package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrTokenFormat = errors.New("invalid token format")
	ErrTokenSig    = errors.New("invalid token signature")
	ErrTokenExp    = errors.New("token expired")
	ErrTokenClient = errors.New("client id mismatch")
)

// GenerateControlToken builds a bearer token for a control-surface client.
// Format: base64url(client_id + "." + exp_unix + "." + hex(hmac_sha256(secret, client_id+"."+exp)))
func GenerateControlToken(secret, clientID string, expUnix int64) string {
	msg := clientID + "." + strconv.FormatInt(expUnix, 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(msg))
	raw := msg + "." + hex.EncodeToString(mac.Sum(nil))
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// ValidateControlToken parses and verifies token. When expectClientID is
// non-empty the embedded client id must match. Expiry is checked against
// now with skewSeconds of allowance.
func ValidateControlToken(secret, token, expectClientID string, now time.Time, skewSeconds int) (string, int64, error) {
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", 0, ErrTokenFormat
	}
	parts := strings.Split(string(b), ".")
	if len(parts) != 3 {
		return "", 0, ErrTokenFormat
	}
	clientID, expStr, sigHex := parts[0], parts[1], parts[2]

	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		return "", 0, ErrTokenFormat
	}
	if expectClientID != "" && clientID != expectClientID {
		return "", 0, ErrTokenClient
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(clientID + "." + expStr))
	want := mac.Sum(nil)
	got, err := hex.DecodeString(sigHex)
	if err != nil {
		return "", 0, ErrTokenFormat
	}
	if !hmac.Equal(want, got) {
		return "", 0, ErrTokenSig
	}

	if now.Unix() > exp+int64(skewSeconds) {
		return "", 0, ErrTokenExp
	}
	return clientID, exp, nil
}
