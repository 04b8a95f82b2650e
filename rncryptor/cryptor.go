package rncryptor

import "crypto/hmac"

// Sink receives container bytes (encryption) or verified plaintext bytes
// (decryption) in strict container/plaintext order, as soon as the engine
// has them to give.
type Sink func([]byte)

// EncryptorState is the lifecycle of a streaming Encryptor.
type EncryptorState int

const (
	HeaderNotEmitted EncryptorState = iota
	Streaming
	EncryptorFinished
	EncryptorFailed
)

// DecryptorState is the lifecycle of a streaming Decryptor.
type DecryptorState int

const (
	AwaitingHeader DecryptorState = iota
	Decrypting
	// Finalizing is never assigned: Finalize runs to completion in one call
	// and moves the decryptor straight from Decrypting to Finished or
	// Failed. The constant only names the step Finalize is performing,
	// matching the decryptor's conceptual state machine in spec.md.
	Finalizing
	Finished
	Failed
)

// -----------------------------------------------------------------------------
// Encryptor

// Encryptor is the streaming encryption state machine (C5, encrypt path).
type Encryptor struct {
	sink  Sink
	state EncryptorState
	err   error

	header []byte
	hmac   interface {
		Write([]byte) (int, error)
		Sum([]byte) []byte
	}
	block *blockEncrypter

	encKey  EncryptionKey
	hmacKey HmacKey
}

// NewPasswordEncryptor derives fresh encryption and HMAC keys from password
// via two independent PBKDF2 calls (one per freshly generated salt), and
// returns an Encryptor that will emit a password-mode (34-byte header)
// container to sink.
func NewPasswordEncryptor(password []byte, sink Sink) (*Encryptor, error) {
	encSalt, err := NewSalt()
	if err != nil {
		return nil, err
	}
	hmacSalt, err := NewSalt()
	if err != nil {
		return nil, err
	}
	encKey := deriveEncryptionKey(password, encSalt)
	hmacKey := deriveHmacKey(password, hmacSalt)

	iv, err := NewIV()
	if err != nil {
		return nil, err
	}
	return newEncryptor(ModePassword, encSalt, hmacSalt, iv, encKey, hmacKey, sink)
}

// NewKeyEncryptor builds an Encryptor from caller-supplied raw keys. It
// returns an 18-byte key-mode header container to sink.
func NewKeyEncryptor(encKey EncryptionKey, hmacKey HmacKey, sink Sink) (*Encryptor, error) {
	iv, err := NewIV()
	if err != nil {
		return nil, err
	}
	var zeroSalt Salt
	return newEncryptor(ModeKey, zeroSalt, zeroSalt, iv, encKey, hmacKey, sink)
}

func newEncryptor(mode Mode, encSalt, hmacSalt Salt, iv IV, encKey EncryptionKey, hmacKey HmacKey, sink Sink) (*Encryptor, error) {
	block, err := newBlockEncrypter(encKey, iv)
	if err != nil {
		return nil, err
	}
	e := &Encryptor{
		sink:    sink,
		state:   HeaderNotEmitted,
		header:  serializeHeader(mode, encSalt, hmacSalt, iv),
		hmac:    newHMAC(hmacKey),
		block:   block,
		encKey:  encKey,
		hmacKey: hmacKey,
	}
	// The header is authenticated immediately, even though its emission to
	// sink is deferred until the first Update/Finalize call.
	e.hmac.Write(e.header)
	return e, nil
}

func (e *Encryptor) emitHeaderIfNeeded() {
	if e.state == HeaderNotEmitted {
		e.sink(e.header)
		e.state = Streaming
	}
}

func (e *Encryptor) zeroKeys() {
	zero(e.encKey[:])
	zero(e.hmacKey[:])
}

// Update encrypts plaintext incrementally, driving the block cipher and the
// running HMAC, and emits ciphertext (prefixed by the header, on the first
// call) to sink.
func (e *Encryptor) Update(plaintext []byte) error {
	switch e.state {
	case EncryptorFailed:
		return e.err
	case EncryptorFinished:
		e.err = ErrInvalidParameter
		e.state = EncryptorFailed
		return e.err
	}
	e.emitHeaderIfNeeded()
	ciphertext := e.block.update(plaintext)
	if len(ciphertext) > 0 {
		e.hmac.Write(ciphertext)
		e.sink(ciphertext)
	}
	return nil
}

// Finalize emits the final padded ciphertext block followed by the 32-byte
// HMAC tag, then zeroes all key material. It must be called exactly once,
// after any number of Update calls (including zero).
func (e *Encryptor) Finalize() error {
	switch e.state {
	case EncryptorFailed:
		return e.err
	case EncryptorFinished:
		e.err = ErrInvalidParameter
		return e.err
	}
	e.emitHeaderIfNeeded()

	final := e.block.final()
	e.hmac.Write(final)
	e.sink(final)

	mac := e.hmac.Sum(nil)
	e.sink(mac)

	e.zeroKeys()
	e.state = EncryptorFinished
	return nil
}

// -----------------------------------------------------------------------------
// Decryptor

// Decryptor is the streaming decryption state machine (C5, decrypt path).
// No plaintext reaches sink until Finalize has verified the container's
// HMAC; all plaintext produced by Update is buffered internally.
type Decryptor struct {
	sink  Sink
	state DecryptorState
	err   error

	// Set at construction; used to validate the parsed header's mode
	// matches how this Decryptor was built.
	expectPassword   bool
	password         []byte // zeroed once keys are derived
	suppliedEncKey   EncryptionKey
	suppliedHmacKey  HmacKey
	haveSuppliedKeys bool

	headerBuf []byte

	hmac interface {
		Write([]byte) (int, error)
		Sum([]byte) []byte
	}
	trailer macTrailer
	block   *blockDecrypter

	plaintext []byte

	encKey  EncryptionKey
	hmacKey HmacKey
}

// NewPasswordDecryptor returns a Decryptor that expects a password-mode
// container and derives its keys from password once the header is parsed.
func NewPasswordDecryptor(password []byte, sink Sink) *Decryptor {
	return &Decryptor{
		sink:           sink,
		state:          AwaitingHeader,
		expectPassword: true,
		password:       append([]byte{}, password...),
	}
}

// NewKeyDecryptor returns a Decryptor that expects a key-mode container and
// uses the supplied keys directly.
func NewKeyDecryptor(encKey EncryptionKey, hmacKey HmacKey, sink Sink) *Decryptor {
	return &Decryptor{
		sink:             sink,
		state:            AwaitingHeader,
		expectPassword:   false,
		suppliedEncKey:   encKey,
		suppliedHmacKey:  hmacKey,
		haveSuppliedKeys: true,
	}
}

func (d *Decryptor) fail(err error) error {
	d.err = err
	d.state = Failed
	zero(d.password)
	zero(d.encKey[:])
	zero(d.hmacKey[:])
	zero(d.suppliedEncKey[:])
	zero(d.suppliedHmacKey[:])
	zero(d.plaintext)
	d.plaintext = nil
	return err
}

// Update feeds the next chunk of container bytes (header, ciphertext and/or
// trailing HMAC, in any chunking) into the decryptor.
func (d *Decryptor) Update(data []byte) error {
	switch d.state {
	case Failed:
		return d.err
	case Finished:
		return d.fail(ErrInvalidParameter)
	}
	if d.state == AwaitingHeader {
		return d.updateAwaitingHeader(data)
	}
	return d.feedDecrypting(data)
}

func (d *Decryptor) updateAwaitingHeader(data []byte) error {
	d.headerBuf = append(d.headerBuf, data...)
	h, consumed, result := parseHeader(d.headerBuf)
	switch result {
	case headerNeedMoreInput:
		return nil
	case headerInvalid:
		return d.fail(ErrUnknownHeader)
	}

	if (h.mode == ModePassword) != d.expectPassword {
		return d.fail(ErrInvalidParameter)
	}

	if d.expectPassword {
		d.encKey = deriveEncryptionKey(d.password, h.encryptSalt)
		d.hmacKey = deriveHmacKey(d.password, h.hmacSalt)
		zero(d.password)
		d.password = nil
	} else {
		d.encKey = d.suppliedEncKey
		d.hmacKey = d.suppliedHmacKey
	}

	d.hmac = newHMAC(d.hmacKey)
	d.hmac.Write(d.headerBuf[:consumed])

	block, err := newBlockDecrypter(d.encKey, h.iv)
	if err != nil {
		return d.fail(ErrInternalError)
	}
	d.block = block

	remaining := d.headerBuf[consumed:]
	d.headerBuf = nil
	d.state = Decrypting

	if len(remaining) > 0 {
		return d.feedDecrypting(remaining)
	}
	return nil
}

func (d *Decryptor) feedDecrypting(data []byte) error {
	released := d.trailer.push(data)
	if len(released) == 0 {
		return nil
	}
	d.hmac.Write(released)
	plaintext := d.block.update(released)
	if len(plaintext) > 0 {
		d.plaintext = append(d.plaintext, plaintext...)
	}
	return nil
}

// Finalize verifies the container's trailing HMAC in constant time, then —
// only on success — strips PKCS#7 padding from the final block and
// releases all buffered plaintext to sink. On any failure, sink receives
// zero bytes and all key/plaintext material is zeroed.
func (d *Decryptor) Finalize() error {
	switch d.state {
	case Failed:
		return d.err
	case Finished:
		return d.fail(ErrInvalidParameter)
	case AwaitingHeader:
		// Container was truncated before the header was even complete.
		return d.fail(ErrHMACMismatch)
	}

	candidate := d.trailer.take()
	if len(candidate) != MacSize {
		return d.fail(ErrHMACMismatch)
	}
	expected := d.hmac.Sum(nil)
	if !hmac.Equal(candidate, expected) {
		return d.fail(ErrHMACMismatch)
	}

	final, err := d.block.final()
	if err != nil {
		return d.fail(ErrHMACMismatch)
	}
	d.plaintext = append(d.plaintext, final...)

	d.sink(d.plaintext)
	d.plaintext = nil
	zero(d.encKey[:])
	zero(d.hmacKey[:])
	zero(d.suppliedEncKey[:])
	zero(d.suppliedHmacKey[:])
	d.state = Finished
	return nil
}
