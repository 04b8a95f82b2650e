package rncryptor

import (
	"crypto/hmac"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHMACWrittenInParts(t *testing.T) {
	var key HmacKey
	copy(key[:], []byte("myspecialkey"))
	message := []byte("some message which we'll hmac in parts")

	mac1 := newHMAC(key)
	mac1.Write(message)

	mac2 := newHMAC(key)
	mac2.Write(message[:5])
	mac2.Write(message[5:10])
	mac2.Write(message[10:])

	assert.True(t, hmac.Equal(mac1.Sum(nil), mac2.Sum(nil)))
}

func TestNewHMACReset(t *testing.T) {
	var key HmacKey
	copy(key[:], []byte("myspecialkey"))
	message := []byte("some message which we'll hmac in parts")

	mac1 := newHMAC(key)
	mac1.Write(message)
	mac1.Reset()
	mac1.Write(message)

	mac2 := newHMAC(key)
	mac2.Write(message)

	assert.True(t, hmac.Equal(mac1.Sum(nil), mac2.Sum(nil)))
}

func TestDeriveKeySizesAndDeterminism(t *testing.T) {
	salt, err := NewSalt()
	assert.NoError(t, err)
	password := []byte("correct horse battery staple")

	encKey1 := DeriveKey(password, salt, EncryptionKeySize)
	encKey2 := DeriveKey(password, salt, EncryptionKeySize)
	assert.Equal(t, EncryptionKeySize, len(encKey1))
	assert.Equal(t, encKey1, encKey2, "same password+salt derives the same key")

	otherSalt, err := NewSalt()
	assert.NoError(t, err)
	encKey3 := DeriveKey(password, otherSalt, EncryptionKeySize)
	assert.NotEqual(t, encKey1, encKey3, "different salts derive different keys")
}

func TestNewSaltAndIVAreRandom(t *testing.T) {
	s1, err := NewSalt()
	assert.NoError(t, err)
	s2, err := NewSalt()
	assert.NoError(t, err)
	assert.NotEqual(t, s1, s2)

	iv1, err := NewIV()
	assert.NoError(t, err)
	iv2, err := NewIV()
	assert.NoError(t, err)
	assert.NotEqual(t, iv1, iv2)
}

func TestZero(t *testing.T) {
	b := []byte("sensitive key material")
	zero(b)
	for _, c := range b {
		assert.EqualValues(t, 0, c)
	}
}
