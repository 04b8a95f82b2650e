package rncryptor

import "io"

// EncryptBuffer encrypts plaintext whole, in password mode, and returns the
// complete v3 container.
func EncryptBuffer(password, plaintext []byte) ([]byte, error) {
	var out []byte
	e, err := NewPasswordEncryptor(password, func(b []byte) { out = append(out, b...) })
	if err != nil {
		return nil, err
	}
	if err := e.Update(plaintext); err != nil {
		return nil, err
	}
	if err := e.Finalize(); err != nil {
		return nil, err
	}
	return out, nil
}

// DecryptBuffer decrypts a complete v3 container whole, in password mode,
// and returns the plaintext.
func DecryptBuffer(password, container []byte) ([]byte, error) {
	out := []byte{}
	d := NewPasswordDecryptor(password, func(b []byte) { out = append(out, b...) })
	if err := d.Update(container); err != nil {
		return nil, err
	}
	if err := d.Finalize(); err != nil {
		return nil, err
	}
	return out, nil
}

// EncryptKeyBuffer encrypts plaintext whole, in key mode, and returns the
// complete v3 container.
func EncryptKeyBuffer(encKey EncryptionKey, hmacKey HmacKey, plaintext []byte) ([]byte, error) {
	var out []byte
	e, err := NewKeyEncryptor(encKey, hmacKey, func(b []byte) { out = append(out, b...) })
	if err != nil {
		return nil, err
	}
	if err := e.Update(plaintext); err != nil {
		return nil, err
	}
	if err := e.Finalize(); err != nil {
		return nil, err
	}
	return out, nil
}

// DecryptKeyBuffer decrypts a complete v3 container whole, in key mode, and
// returns the plaintext.
func DecryptKeyBuffer(encKey EncryptionKey, hmacKey HmacKey, container []byte) ([]byte, error) {
	out := []byte{}
	d := NewKeyDecryptor(encKey, hmacKey, func(b []byte) { out = append(out, b...) })
	if err := d.Update(container); err != nil {
		return nil, err
	}
	if err := d.Finalize(); err != nil {
		return nil, err
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// io.Reader glue
//
// These adapters turn the push-style Update/Finalize engine into a pull-style
// io.Reader by running the engine in a goroutine that writes into an
// io.Pipe, and reading from the pipe's other end. This is the "trivial
// adapter" spec.md §1 describes file/stream glue as being: all of the
// format's hard invariants live in the engine above, not here.

const readChunkSize = 32 * 1024

// drive reads from r in readChunkSize chunks, calling update for each and
// final once r is exhausted, writing any error (including one from
// reading r itself) to pw.
func drive(r io.Reader, pw *io.PipeWriter, update func([]byte) error, final func() error) {
	buf := make([]byte, readChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if uerr := update(buf[:n]); uerr != nil {
				pw.CloseWithError(uerr)
				return
			}
		}
		if err == io.EOF {
			pw.CloseWithError(final())
			return
		}
		if err != nil {
			pw.CloseWithError(err)
			return
		}
	}
}

// EncryptReader returns an io.Reader yielding the password-mode container
// for plaintext, read incrementally from plaintext.
func EncryptReader(password []byte, plaintext io.Reader) (io.Reader, error) {
	pr, pw := io.Pipe()
	e, err := NewPasswordEncryptor(password, func(b []byte) { pw.Write(b) })
	if err != nil {
		return nil, err
	}
	go drive(plaintext, pw, e.Update, e.Finalize)
	return pr, nil
}

// DecryptReader returns an io.Reader yielding the verified plaintext for a
// password-mode container, read incrementally from ciphertext. No bytes are
// readable from the result until the whole container has been consumed and
// its HMAC verified (per the buffered decrypt contract), so callers should
// expect Read to block until EOF on the source, then return everything at
// once (or the authentication error).
func DecryptReader(password []byte, ciphertext io.Reader) io.Reader {
	pr, pw := io.Pipe()
	d := NewPasswordDecryptor(password, func(b []byte) { pw.Write(b) })
	go drive(ciphertext, pw, d.Update, d.Finalize)
	return pr
}

// EncryptKeyReader is EncryptReader for key mode.
func EncryptKeyReader(encKey EncryptionKey, hmacKey HmacKey, plaintext io.Reader) (io.Reader, error) {
	pr, pw := io.Pipe()
	e, err := NewKeyEncryptor(encKey, hmacKey, func(b []byte) { pw.Write(b) })
	if err != nil {
		return nil, err
	}
	go drive(plaintext, pw, e.Update, e.Finalize)
	return pr, nil
}

// DecryptKeyReader is DecryptReader for key mode.
func DecryptKeyReader(encKey EncryptionKey, hmacKey HmacKey, ciphertext io.Reader) io.Reader {
	pr, pw := io.Pipe()
	d := NewKeyDecryptor(encKey, hmacKey, func(b []byte) { pw.Write(b) })
	go drive(ciphertext, pw, d.Update, d.Finalize)
	return pr
}
