// Package legacycrypt decrypts the payment card data Clientexec stores on
// user records.
//
// Clientexec encrypts each card with AES-256 in CBC mode. The key is the hex
// MD5 digest (32 ASCII bytes) of the user's numeric id concatenated with the
// installation passphrase, so every record has its own key. The random IV is
// stored base64 encoded next to the base64 ciphertext. Plaintext is zero
// padded to the block size.
//
// Inputs:  remote user id, passphrase, base64 ciphertext, base64 IV.
// Output:  the plaintext value (card number) with padding removed.
package legacycrypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNoPassphrase is returned when no passphrase is configured.
	ErrNoPassphrase = errors.New("legacycrypt: passphrase not configured")
	// ErrMalformed is returned for ciphertext or IV that cannot be decoded.
	ErrMalformed = errors.New("legacycrypt: malformed ciphertext")
)

// Key derives the per-record key for a remote id.
func Key(remoteID int64, passphrase string) []byte {
	sum := md5.Sum([]byte(strconv.FormatInt(remoteID, 10) + passphrase))
	return []byte(hex.EncodeToString(sum[:]))
}

// Decrypt returns the plaintext stored for remoteID.
func Decrypt(remoteID int64, passphrase, ciphertext, iv string) (string, error) {
	if passphrase == "" {
		return "", ErrNoPassphrase
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(ciphertext))
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext: %v", ErrMalformed, err)
	}
	ivBytes, err := base64.StdEncoding.DecodeString(strings.TrimSpace(iv))
	if err != nil {
		return "", fmt.Errorf("%w: iv: %v", ErrMalformed, err)
	}
	if len(ivBytes) != aes.BlockSize {
		return "", fmt.Errorf("%w: iv must be %d bytes, got %d", ErrMalformed, aes.BlockSize, len(ivBytes))
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext length %d is not a multiple of %d", ErrMalformed, len(data), aes.BlockSize)
	}

	block, err := aes.NewCipher(Key(remoteID, passphrase))
	if err != nil {
		return "", fmt.Errorf("legacycrypt: %w", err)
	}

	plain := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, ivBytes).CryptBlocks(plain, data)
	return string(bytes.TrimRight(plain, "\x00")), nil
}
