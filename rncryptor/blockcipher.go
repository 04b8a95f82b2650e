package rncryptor

import "crypto/aes"

// blockEncrypter drives AES-256-CBC with PKCS#7 padding over an arbitrary
// chunking of input. It buffers any partial block across calls to update,
// and emits the final padded block only from final.
type blockEncrypter struct {
	cbc interface {
		CryptBlocks(dst, src []byte)
	}
	buf []byte // partial block, always < aes.BlockSize
}

func newBlockEncrypter(key EncryptionKey, iv IV) (*blockEncrypter, error) {
	cbc, err := newCBCEncrypter(key, iv)
	if err != nil {
		return nil, err
	}
	return &blockEncrypter{cbc: cbc}, nil
}

// update accepts any amount of plaintext and returns ciphertext for every
// whole block it now has buffered; any trailing partial block is retained
// for the next call.
func (e *blockEncrypter) update(plaintext []byte) []byte {
	e.buf = append(e.buf, plaintext...)
	n := (len(e.buf) / aes.BlockSize) * aes.BlockSize
	if n == 0 {
		return nil
	}
	out := make([]byte, n)
	e.cbc.CryptBlocks(out, e.buf[:n])
	e.buf = append([]byte{}, e.buf[n:]...)
	return out
}

// final pads whatever remains (always 1..BlockSize bytes of padding) and
// encrypts the last block(s).
func (e *blockEncrypter) final() []byte {
	pad := aes.BlockSize - (len(e.buf) % aes.BlockSize)
	padded := append(e.buf, make([]byte, pad)...)
	for i := len(padded) - pad; i < len(padded); i++ {
		padded[i] = byte(pad)
	}
	out := make([]byte, len(padded))
	e.cbc.CryptBlocks(out, padded)
	e.buf = nil
	return out
}

// -----------------------------------------------------------------------------

// blockDecrypter mirrors blockEncrypter for decryption. Because the final
// ciphertext block's padding can't be stripped until we know it's the last
// block, update() always retains the final complete block it has seen,
// releasing plaintext one block "behind" the ciphertext it has consumed.
type blockDecrypter struct {
	cbc interface {
		CryptBlocks(dst, src []byte)
	}
	buf     []byte // unprocessed ciphertext, < 2*aes.BlockSize after update
	held    []byte // last decrypted block, withheld pending final()
	hasHeld bool
}

func newBlockDecrypter(key EncryptionKey, iv IV) (*blockDecrypter, error) {
	cbc, err := newCBCDecrypter(key, iv)
	if err != nil {
		return nil, err
	}
	return &blockDecrypter{cbc: cbc}, nil
}

// update accepts ciphertext (any chunking, but the engine above is expected
// to deliver whole blocks since CBC only operates on whole blocks) and
// returns plaintext for every block except the most recently decrypted one,
// which is withheld until final().
func (d *blockDecrypter) update(ciphertext []byte) []byte {
	d.buf = append(d.buf, ciphertext...)
	n := (len(d.buf) / aes.BlockSize) * aes.BlockSize
	if n == 0 {
		return nil
	}
	chunk := d.buf[:n]
	d.buf = append([]byte{}, d.buf[n:]...)

	decrypted := make([]byte, n)
	d.cbc.CryptBlocks(decrypted, chunk)

	var out []byte
	if d.hasHeld {
		out = append(out, d.held...)
	}
	// Release every decrypted block except the last; hold the last one.
	last := len(decrypted) - aes.BlockSize
	out = append(out, decrypted[:last]...)
	d.held = append([]byte{}, decrypted[last:]...)
	d.hasHeld = true
	return out
}

// final releases the withheld last block with its PKCS#7 padding stripped.
// Returns ErrHMACMismatch (not a distinct padding error, per spec) if the
// padding is malformed or there's no withheld block at all (zero-length
// ciphertext body is invalid: PKCS#7 always adds at least one byte).
func (d *blockDecrypter) final() ([]byte, error) {
	if len(d.buf) != 0 || !d.hasHeld {
		return nil, ErrHMACMismatch
	}
	block := d.held
	d.held = nil
	d.hasHeld = false

	pad := int(block[len(block)-1])
	if pad == 0 || pad > aes.BlockSize || pad > len(block) {
		return nil, ErrHMACMismatch
	}
	for _, b := range block[len(block)-pad:] {
		if int(b) != pad {
			return nil, ErrHMACMismatch
		}
	}
	return block[:len(block)-pad], nil
}
