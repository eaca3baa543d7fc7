package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationFailed is returned when a symmetric decrypt fails
	// tag verification. The (ciphertext, iv, tag) triple is an atomic unit;
	// any mismatch across it surfaces as this error.
	ErrAuthenticationFailed = errors.New("symmetric authentication failed")
	// ErrInvalidKeySize is returned when the key is not 32 bytes.
	ErrInvalidKeySize = errors.New("symmetric key must be 32 bytes")
)

const (
	// SymmetricKeySize is the AES-256 key length.
	SymmetricKeySize = 32
	ivSize           = 12
	tagSize          = 16

	// AlgorithmAES256GCM names the cipher declared on stored records.
	AlgorithmAES256GCM = "aes-256-gcm"
	// KeyEncodingUTF8 marks keys whose raw bytes are the UTF-8 encoding of
	// a hex string, as produced by GenerateSecretKey.
	KeyEncodingUTF8 = "utf8"
)

// SymmetricCipher is the detached output of an AEAD encryption: three
// independent base64 values matching the storage schema.
type SymmetricCipher struct {
	Ciphertext string
	IV         string
	Tag        string
}

// GenerateSecretKey returns 16 random bytes hex-encoded. The 32 UTF-8 bytes
// of the returned string are used directly as an AES-256 key, which keeps
// the wrapped payload printable for the asymmetric layer.
func GenerateSecretKey() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate secret key: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// EncryptSymmetric encrypts plaintext with AES-256-GCM, drawing a fresh
// random IV per call. Empty plaintext is valid: unused fixed-width fields
// still get a complete, authenticated triple.
func EncryptSymmetric(plaintext string, key []byte) (SymmetricCipher, error) {
	aead, err := newGCM(key)
	if err != nil {
		return SymmetricCipher{}, err
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return SymmetricCipher{}, fmt.Errorf("failed to generate iv: %w", err)
	}

	sealed := aead.Seal(nil, iv, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	return SymmetricCipher{
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		IV:         base64.StdEncoding.EncodeToString(iv),
		Tag:        base64.StdEncoding.EncodeToString(tag),
	}, nil
}

// DecryptSymmetric is the inverse of EncryptSymmetric.
func DecryptSymmetric(c SymmetricCipher, key []byte) (string, error) {
	aead, err := newGCM(key)
	if err != nil {
		return "", err
	}

	ciphertext, err := base64.StdEncoding.DecodeString(c.Ciphertext)
	if err != nil {
		return "", ErrAuthenticationFailed
	}
	iv, err := base64.StdEncoding.DecodeString(c.IV)
	if err != nil || len(iv) != ivSize {
		return "", ErrAuthenticationFailed
	}
	tag, err := base64.StdEncoding.DecodeString(c.Tag)
	if err != nil || len(tag) != tagSize {
		return "", ErrAuthenticationFailed
	}

	plaintext, err := aead.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return "", ErrAuthenticationFailed
	}

	return string(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != SymmetricKeySize {
		return nil, ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcm: %w", err)
	}

	return aead, nil
}
