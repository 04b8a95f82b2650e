// Package rncryptor implements the RNCryptor v3 container format: a
// self-describing binary envelope around AES-256-CBC (PKCS#7 padded),
// authenticated end-to-end with HMAC-SHA256, with keys either supplied
// directly or derived from a password via PBKDF2.
//
// The engine is a synchronous, single-threaded state machine. An Encryptor
// or Decryptor is driven with zero or more calls to Update, followed by
// exactly one call to Finalize. Neither call ever blocks internally;
// distinct instances are independent and may be driven from separate
// goroutines in parallel, but a single instance is not safe for concurrent
// use.
package rncryptor

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"hash"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// EncryptionKeySize is the size in bytes of the AES-256 key.
	EncryptionKeySize = 32
	// HmacKeySize is the size in bytes of the HMAC-SHA256 key.
	HmacKeySize = 32
	// SaltSize is the size in bytes of each password-mode salt.
	SaltSize = 8
	// IVSize is the size in bytes of the CBC initialization vector.
	IVSize = aes.BlockSize
	// MacSize is the size in bytes of the trailing HMAC-SHA256 tag.
	MacSize = sha256.Size
	// pbkdf2Rounds is the fixed PBKDF2 iteration count for both the
	// encryption and HMAC key derivations in password mode.
	pbkdf2Rounds = 10000
)

// EncryptionKey is a raw AES-256 key.
type EncryptionKey [EncryptionKeySize]byte

// HmacKey is a raw HMAC-SHA256 key.
type HmacKey [HmacKeySize]byte

// Salt is an 8-byte value mixed into PBKDF2 to derive a key from a password.
type Salt [SaltSize]byte

// IV is the 16-byte CBC initialization vector.
type IV [IVSize]byte

// Mac is a 32-byte HMAC-SHA256 tag.
type Mac [MacSize]byte

// randomBytes fills and returns n fresh bytes from the CSPRNG.
func randomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return nil, ErrInternalError
	}
	return buf, nil
}

// NewSalt generates a fresh random salt.
func NewSalt() (Salt, error) {
	var s Salt
	b, err := randomBytes(SaltSize)
	if err != nil {
		return s, err
	}
	copy(s[:], b)
	return s, nil
}

// NewIV generates a fresh random initialization vector.
func NewIV() (IV, error) {
	var iv IV
	b, err := randomBytes(IVSize)
	if err != nil {
		return iv, err
	}
	copy(iv[:], b)
	return iv, nil
}

// DeriveKey runs PBKDF2-HMAC-SHA1 over password and salt for the fixed
// v3 round count, returning a key of the given output length. It is the
// single PBKDF2 call that NewPasswordEncryptor/NewPasswordDecryptor invoke
// twice (once per salt), and is also reused by callers (e.g. an
// application's own long-term key custody) that need the identical
// derivation outside of a single cryptor session.
func DeriveKey(password []byte, salt Salt, keyLen int) []byte {
	return pbkdf2.Key(password, salt[:], pbkdf2Rounds, keyLen, sha1.New)
}

// deriveEncryptionKey derives a 32-byte AES key from password and salt.
func deriveEncryptionKey(password []byte, salt Salt) EncryptionKey {
	var k EncryptionKey
	copy(k[:], DeriveKey(password, salt, EncryptionKeySize))
	return k
}

// deriveHmacKey derives a 32-byte HMAC key from password and salt.
func deriveHmacKey(password []byte, salt Salt) HmacKey {
	var k HmacKey
	copy(k[:], DeriveKey(password, salt, HmacKeySize))
	return k
}

// -----------------------------------------------------------------------------
// cipher adapter

// newCBCEncrypter builds the block-mode encrypter for a key/IV pair.
func newCBCEncrypter(key EncryptionKey, iv IV) (cipher.BlockMode, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, ErrInternalError
	}
	return cipher.NewCBCEncrypter(block, iv[:]), nil
}

// newCBCDecrypter builds the block-mode decrypter for a key/IV pair.
func newCBCDecrypter(key EncryptionKey, iv IV) (cipher.BlockMode, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, ErrInternalError
	}
	return cipher.NewCBCDecrypter(block, iv[:]), nil
}

// -----------------------------------------------------------------------------
// HMAC adapter

// newHMAC builds a running HMAC-SHA256 computation over key.
func newHMAC(key HmacKey) hash.Hash {
	return hmac.New(sha256.New, key[:])
}

// zero overwrites a byte slice's backing array, for key/buffer hygiene.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
