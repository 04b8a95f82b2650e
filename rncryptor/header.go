package rncryptor

// version is the only container version this package reads or writes.
const version byte = 0x03

// optionPassword is bit 0 of the options byte: set means the container
// carries password-mode salts, unset means key mode (no salts, 18-byte
// header).
const optionPassword byte = 0x01

// Mode distinguishes password-derived keys from caller-supplied raw keys.
type Mode int

const (
	// ModeKey is the 18-byte header: version, options, IV.
	ModeKey Mode = iota
	// ModePassword is the 34-byte header: version, options, encSalt,
	// hmacSalt, IV.
	ModePassword
)

// headerLen returns the on-wire header length for a mode.
func headerLen(mode Mode) int {
	if mode == ModePassword {
		return 2 + SaltSize + SaltSize + IVSize
	}
	return 2 + IVSize
}

// header is the parsed fixed-layout container header.
type header struct {
	mode        Mode
	encryptSalt Salt // zero value in key mode
	hmacSalt    Salt // zero value in key mode
	iv          IV
}

// serializeHeader writes the header bytes for the given mode. encSalt and
// hmacSalt are ignored in key mode.
func serializeHeader(mode Mode, encSalt, hmacSalt Salt, iv IV) []byte {
	var options byte
	if mode == ModePassword {
		options = optionPassword
	}
	buf := make([]byte, 0, headerLen(mode))
	buf = append(buf, version, options)
	if mode == ModePassword {
		buf = append(buf, encSalt[:]...)
		buf = append(buf, hmacSalt[:]...)
	}
	buf = append(buf, iv[:]...)
	return buf
}

// headerParseResult distinguishes the three possible parseHeader outcomes.
type headerParseResult int

const (
	headerNeedMoreInput headerParseResult = iota
	headerOK
	headerInvalid
)

// parseHeader attempts to parse a header from the front of prefix. It never
// needs more than 34 bytes (the longest possible header) to decide.
//
// Returns headerNeedMoreInput if prefix doesn't yet contain enough bytes to
// know the mode and parse the full header; headerInvalid if the version or
// options byte is malformed; headerOK with the parsed header and the number
// of bytes consumed from prefix otherwise.
func parseHeader(prefix []byte) (h header, consumed int, result headerParseResult) {
	if len(prefix) < 2 {
		return h, 0, headerNeedMoreInput
	}
	if prefix[0] != version {
		return h, 0, headerInvalid
	}
	options := prefix[1]
	if options&^optionPassword != 0 {
		return h, 0, headerInvalid
	}
	mode := ModeKey
	if options&optionPassword != 0 {
		mode = ModePassword
	}
	need := headerLen(mode)
	if len(prefix) < need {
		return h, 0, headerNeedMoreInput
	}
	h.mode = mode
	off := 2
	if mode == ModePassword {
		copy(h.encryptSalt[:], prefix[off:off+SaltSize])
		off += SaltSize
		copy(h.hmacSalt[:], prefix[off:off+SaltSize])
		off += SaltSize
	}
	copy(h.iv[:], prefix[off:off+IVSize])
	off += IVSize
	return h, off, headerOK
}
