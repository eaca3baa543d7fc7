package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/box"
)

var (
	// ErrDecryptionFailed is returned when an asymmetric open fails
	// authentication: tampered ciphertext, wrong keys or wrong nonce.
	ErrDecryptionFailed = errors.New("asymmetric decryption failed")
	// ErrInvalidKey is returned for keys that are not valid base64 or not
	// 32 bytes long.
	ErrInvalidKey = errors.New("invalid key")
)

const (
	keySize   = 32
	nonceSize = 24
)

// KeyPair is an X25519 keypair with both halves base64-encoded.
type KeyPair struct {
	PublicKey  string
	PrivateKey string
}

// GenerateKeyPair creates a fresh X25519 keypair.
func GenerateKeyPair() (KeyPair, error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("failed to generate keypair: %w", err)
	}

	return KeyPair{
		PublicKey:  base64.StdEncoding.EncodeToString(pub[:]),
		PrivateKey: base64.StdEncoding.EncodeToString(priv[:]),
	}, nil
}

// EncryptAsymmetric seals plaintext for the receiver, authenticated by the
// sender. A fresh random nonce is drawn per call; nonces are never reused
// for a key pair because no counter is tracked anywhere. Outputs are base64.
func EncryptAsymmetric(plaintext, receiverPublicKey, senderPrivateKey string) (ciphertext, nonce string, err error) {
	pub, err := decodeKey(receiverPublicKey)
	if err != nil {
		return "", "", err
	}
	priv, err := decodeKey(senderPrivateKey)
	if err != nil {
		return "", "", err
	}

	var n [nonceSize]byte
	if _, err := rand.Read(n[:]); err != nil {
		return "", "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := box.Seal(nil, []byte(plaintext), &n, pub, priv)

	return base64.StdEncoding.EncodeToString(sealed), base64.StdEncoding.EncodeToString(n[:]), nil
}

// DecryptAsymmetric opens a sealed box. Authentication failure is a hard
// error, never garbled plaintext.
func DecryptAsymmetric(ciphertext, nonce, senderPublicKey, receiverPrivateKey string) (string, error) {
	pub, err := decodeKey(senderPublicKey)
	if err != nil {
		return "", err
	}
	priv, err := decodeKey(receiverPrivateKey)
	if err != nil {
		return "", err
	}

	rawNonce, err := base64.StdEncoding.DecodeString(nonce)
	if err != nil || len(rawNonce) != nonceSize {
		return "", ErrDecryptionFailed
	}
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	var n [nonceSize]byte
	copy(n[:], rawNonce)

	plaintext, ok := box.Open(nil, sealed, &n, pub, priv)
	if !ok {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}

func decodeKey(key string) (*[keySize]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	if len(raw) != keySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKey, len(raw), keySize)
	}

	var out [keySize]byte
	copy(out[:], raw)
	return &out, nil
}
