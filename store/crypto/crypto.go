package crypto

import (
	"errors"
	"io"

	"github.com/RNCryptor/RNCryptor/rncryptor"
)

// Salt creates a new cryptographically secure salt, for deriving a store's
// long-term keys from a password.
func Salt() ([]byte, error) {
	s, err := rncryptor.NewSalt()
	if err != nil {
		return nil, err
	}
	return s[:], nil
}

// DeriveKeys derives a store's long-term encryption and HMAC keys from a
// secret and two independent salts — one PBKDF2 call per key, the same
// derivation rncryptor itself runs for password mode. Every object the
// store subsequently writes is encrypted under these keys in rncryptor key
// mode, each with its own fresh IV (see NewCrypter).
func DeriveKeys(secret, encSalt, hmacSalt []byte) (encKey, hmacKey []byte) {
	var es, hs rncryptor.Salt
	copy(es[:], encSalt)
	copy(hs[:], hmacSalt)
	return rncryptor.DeriveKey(secret, es, rncryptor.EncryptionKeySize),
		rncryptor.DeriveKey(secret, hs, rncryptor.HmacKeySize)
}

// -----------------------------------------------------------------------------

// Crypter encrypts and decrypts data under a fixed pair of long-term keys.
// Encrypt/EncryptReader each produce a fresh, self-contained rncryptor v3
// key-mode container (fresh IV, full HMAC-SHA256 authentication).
type Crypter interface {
	Encrypt(plaintext []byte) (ciphertext []byte, err error)
	Decrypt(ciphertext []byte) (plaintext []byte, err error)
	EncryptReader(plaintext io.Reader) (ciphertext io.Reader, err error)
	DecryptReader(ciphertext io.Reader) (plaintext io.Reader, err error)
}

type rnCrypter struct {
	encKey  rncryptor.EncryptionKey
	hmacKey rncryptor.HmacKey
}

// NewCrypter returns a Crypter for the given raw encryption and HMAC keys.
func NewCrypter(encKey, hmacKey []byte) (Crypter, error) {
	if len(encKey) != rncryptor.EncryptionKeySize {
		return nil, errors.New("invalid encryption key length")
	}
	if len(hmacKey) != rncryptor.HmacKeySize {
		return nil, errors.New("invalid authentication key length")
	}
	c := &rnCrypter{}
	copy(c.encKey[:], encKey)
	copy(c.hmacKey[:], hmacKey)
	return c, nil
}

// Encrypt plaintext into a complete v3 container.
func (c *rnCrypter) Encrypt(plaintext []byte) ([]byte, error) {
	return rncryptor.EncryptKeyBuffer(c.encKey, c.hmacKey, plaintext)
}

// Decrypt authenticates and decrypts a complete v3 container.
func (c *rnCrypter) Decrypt(ciphertext []byte) ([]byte, error) {
	return rncryptor.DecryptKeyBuffer(c.encKey, c.hmacKey, ciphertext)
}

// EncryptReader streams plaintext into a v3 container as it's read.
func (c *rnCrypter) EncryptReader(plaintext io.Reader) (io.Reader, error) {
	return rncryptor.EncryptKeyReader(c.encKey, c.hmacKey, plaintext)
}

// DecryptReader streams and authenticates a v3 container, yielding
// plaintext only once the whole container has been read and its HMAC
// verified.
func (c *rnCrypter) DecryptReader(ciphertext io.Reader) (io.Reader, error) {
	return rncryptor.DecryptKeyReader(c.encKey, c.hmacKey, ciphertext), nil
}
