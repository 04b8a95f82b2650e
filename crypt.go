package main

import (
	"github.com/RNCryptor/RNCryptor/rncryptor"
	"io"
	"log"
	"os"
)

// runCrypt handles the standalone "encrypt"/"decrypt" commands: password-mode
// container conversion of a single file, independent of the remote store.
func runCrypt(opt options) error {
	src, err := os.Open(opt.cryptSrc)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(opt.cryptDst)
	if err != nil {
		return err
	}
	defer dst.Close()

	var r io.Reader
	if opt.cryptEncrypt {
		log.Printf("encrypting %q -> %q\n", opt.cryptSrc, opt.cryptDst)
		r, err = rncryptor.EncryptReader([]byte(opt.storeSecret), src)
	} else {
		log.Printf("decrypting %q -> %q\n", opt.cryptSrc, opt.cryptDst)
		r = rncryptor.DecryptReader([]byte(opt.storeSecret), src)
	}
	if err != nil {
		return err
	}

	_, err = io.Copy(dst, r)
	return err
}
