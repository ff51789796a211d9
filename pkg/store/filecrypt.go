package store

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 16
)

// fileCipher encrypts the serialized account store with AES-GCM under a
// scrypt-derived key. Layout on disk: [16-byte salt][12-byte nonce][ciphertext].
type fileCipher struct {
	passphrase string
}

func newFileCipher(passphrase string) *fileCipher {
	return &fileCipher{passphrase: passphrase}
}

func (c *fileCipher) deriveKey(salt []byte) ([]byte, error) {
	key, err := scrypt.Key([]byte(c.passphrase), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	return key, nil
}

func (c *fileCipher) encrypt(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	gcm, err := c.aead(salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, saltLen+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

func (c *fileCipher) decrypt(data []byte) ([]byte, error) {
	if len(data) < saltLen {
		return nil, errors.New("ciphertext too short")
	}
	salt := data[:saltLen]
	gcm, err := c.aead(salt)
	if err != nil {
		return nil, err
	}
	rest := data[saltLen:]
	if len(rest) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func (c *fileCipher) aead(salt []byte) (cipher.AEAD, error) {
	key, err := c.deriveKey(salt)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
