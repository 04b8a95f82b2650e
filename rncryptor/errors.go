package rncryptor

import "errors"

// ErrUnknownHeader is reported when the container's version byte isn't 0x03,
// or its options byte has a reserved bit set.
var ErrUnknownHeader = errors.New("rncryptor: unknown header")

// ErrHMACMismatch is reported for any authentication failure: a bad HMAC, a
// truncated container (not enough trailing bytes to form a MAC), or invalid
// PKCS#7 padding. These are deliberately collapsed into one error kind so a
// caller cannot distinguish a padding failure from a MAC failure (padding
// oracle protection).
var ErrHMACMismatch = errors.New("rncryptor: hmac mismatch")

// ErrInvalidParameter is reported for caller misuse: a call to
// Update/Finalize after the cryptor has already finished, or a decryptor fed
// a container of the other mode (a key-mode decryptor given a password-mode
// container, or the reverse). After a failure, later calls return the
// latched error instead. Keys are fixed-size array types, so their length is
// not checked at run time.
var ErrInvalidParameter = errors.New("rncryptor: invalid parameter")

// ErrInternalError is reported when a primitive adapter fails in a way that
// should be impossible (e.g. the CSPRNG or block cipher construction).
var ErrInternalError = errors.New("rncryptor: internal error")
