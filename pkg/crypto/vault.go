package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"
)

// ErrDecryptionFailed is returned for any undecryptable input: wrong
// password, wrong salt, truncated or corrupted ciphertext.
var ErrDecryptionFailed = errors.New("decryption failed")

const (
	// VaultKeyLength is the derived AES key size in bytes
	VaultKeyLength = 32
	// VaultIterations is the PBKDF2 iteration count
	VaultIterations = 10_000
	// VaultSaltLength is the key-derivation salt size in bytes
	VaultSaltLength = 16
)

// deriveVaultKey stretches a password into an AES-256 key.
// The salt is used for derivation only; the IV is independent.
func deriveVaultKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, VaultIterations, VaultKeyLength, sha256.New)
}

// EncryptKey encrypts private key material with a password-derived key
// (AES-256-CBC, PKCS#7). A fresh random IV is prepended to the ciphertext.
func EncryptKey(plaintext, password string, salt []byte) ([]byte, error) {
	key := deriveVaultKey(password, salt)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)

	out := make([]byte, aes.BlockSize+len(padded))
	iv := out[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, err
	}

	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[aes.BlockSize:], padded)
	return out, nil
}

// DecryptKey reverses EncryptKey. Any malformed input, bad padding or
// non-text plaintext (i.e. a wrong password) yields ErrDecryptionFailed.
func DecryptKey(ciphertext []byte, password string, salt []byte) (string, error) {
	if len(ciphertext) < 2*aes.BlockSize || len(ciphertext)%aes.BlockSize != 0 {
		return "", ErrDecryptionFailed
	}

	key := deriveVaultKey(password, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	iv, body := ciphertext[:aes.BlockSize], ciphertext[aes.BlockSize:]
	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, body)

	unpadded, ok := pkcs7Unpad(plain, aes.BlockSize)
	if !ok || !utf8.Valid(unpadded) {
		return "", ErrDecryptionFailed
	}
	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, bool) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, false
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, false
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, false
		}
	}
	return data[:len(data)-padLen], true
}
