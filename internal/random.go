package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"
)

// RefreshSecretSize is the byte length of a raw refresh secret.
const RefreshSecretSize = 32

// ErrTokenMalformed is returned when a presented refresh token cannot be decoded.
var ErrTokenMalformed = errors.New("malformed refresh token")

// NewRefreshSecret returns a fresh high-entropy refresh secret.
func NewRefreshSecret() ([RefreshSecretSize]byte, error) {
	var secret [RefreshSecretSize]byte
	_, err := rand.Read(secret[:])
	return secret, err
}

// HashRefreshSecret derives the storage hash of a refresh secret. Only the
// hash ever reaches the store.
func HashRefreshSecret(secret [RefreshSecretSize]byte) [32]byte {
	return sha256.Sum256(secret[:])
}

// CredentialID derives the stable record identifier for a refresh secret:
// the base64url form of its hash.
func CredentialID(secret [RefreshSecretSize]byte) string {
	hash := HashRefreshSecret(secret)
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// ConstantTimeEqual compares two credential IDs without leaking a timing
// side channel.
func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// EncodeRefreshToken packs a user ID and refresh secret into the opaque
// dot-separated wire form handed to clients.
func EncodeRefreshToken(userID string, secret [RefreshSecretSize]byte) (string, error) {
	if userID == "" {
		return "", errors.New("empty user id")
	}
	return base64.RawURLEncoding.EncodeToString([]byte(userID)) +
		"." +
		base64.RawURLEncoding.EncodeToString(secret[:]), nil
}

// DecodeRefreshToken unpacks the wire form produced by [EncodeRefreshToken].
func DecodeRefreshToken(token string) (string, [RefreshSecretSize]byte, error) {
	var secret [RefreshSecretSize]byte

	head, tail, ok := strings.Cut(token, ".")
	if !ok {
		return "", secret, ErrTokenMalformed
	}

	userRaw, err := base64.RawURLEncoding.DecodeString(head)
	if err != nil || len(userRaw) == 0 {
		return "", secret, ErrTokenMalformed
	}

	secretRaw, err := base64.RawURLEncoding.DecodeString(tail)
	if err != nil || len(secretRaw) != RefreshSecretSize {
		return "", secret, ErrTokenMalformed
	}

	copy(secret[:], secretRaw)
	return string(userRaw), secret, nil
}
