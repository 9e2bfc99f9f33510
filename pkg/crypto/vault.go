package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"unicode/utf8"
)

// The vault has to read every envelope format that ever made it into the
// database. Three are known:
//
//   1. current: base64(iv) + ":" + base64(ct), AES-256-CBC keyed by
//      SHA-256 of the server passphrase
//   2. legacy:  hex of the base64 of the plaintext (pre-encryption era)
//   3. plain base64 (imported rows)
//
// Encrypt only ever writes format 1. Decrypt tries the formats in that
// order and returns "" when none applies: a stored credential that cannot
// be read is treated as missing, never as a hard failure.

var errMalformed = errors.New("malformed envelope")

// Encrypt seals plaintext in the current envelope format.
func Encrypt(plaintext, passphrase string) (string, error) {
	if passphrase == "" {
		return "", errors.New("encryption passphrase is not configured")
	}

	key := sha256.Sum256([]byte(passphrase))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return "", err
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	return base64.StdEncoding.EncodeToString(iv) + ":" + base64.StdEncoding.EncodeToString(ct), nil
}

// Decrypt opens any supported envelope. It fails closed: unreadable input
// yields the empty string so callers can treat the credential as absent.
func Decrypt(value, passphrase string) string {
	if value == "" {
		return ""
	}

	if plain, err := decryptCurrent(value, passphrase); err == nil {
		return plain
	}
	if plain, err := decodeLegacy(value); err == nil {
		return plain
	}
	if plain, err := decodePlainBase64(value); err == nil {
		return plain
	}
	return ""
}

func decryptCurrent(value, passphrase string) (string, error) {
	if passphrase == "" {
		return "", errMalformed
	}

	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return "", errMalformed
	}

	iv, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(iv) != aes.BlockSize {
		return "", errMalformed
	}
	ct, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil || len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", errMalformed
	}

	key := sha256.Sum256([]byte(passphrase))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return "", err
	}

	padded := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ct)

	plain, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(plain) {
		return "", errMalformed
	}
	return string(plain), nil
}

// decodeLegacy reverses the first-generation encoding: hex over base64.
func decodeLegacy(value string) (string, error) {
	inner, err := hex.DecodeString(value)
	if err != nil {
		return "", errMalformed
	}
	plain, err := base64.StdEncoding.DecodeString(string(inner))
	if err != nil {
		return "", errMalformed
	}
	if len(plain) == 0 || !utf8.Valid(plain) {
		return "", errMalformed
	}
	return string(plain), nil
}

func decodePlainBase64(value string) (string, error) {
	plain, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", errMalformed
	}
	if len(plain) == 0 || !utf8.Valid(plain) {
		return "", errMalformed
	}
	return string(plain), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errMalformed
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, errMalformed
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errMalformed
		}
	}
	return data[:len(data)-n], nil
}
