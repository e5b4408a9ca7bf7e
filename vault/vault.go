// Package vault encrypts credential records at rest. Secrets are sealed
// with NaCl secretbox under a single symmetric key; the nonce is prepended
// to the ciphertext and the whole blob is base64 encoded for storage.
package vault

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"

	"agency-dashboard/models"
)

const nonceSize = 24

// Vault seals and opens dashboard secrets.
type Vault struct {
	key [32]byte
}

// New returns a vault using the given 32-byte key.
func New(key [32]byte) *Vault {
	return &Vault{key: key}
}

// Encrypt seals plaintext and returns a base64 blob.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &v.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a blob produced by Encrypt.
func (v *Vault) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decoding ciphertext: %w", err)
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return "", fmt.Errorf("ciphertext too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	opened, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &v.key)
	if !ok {
		return "", fmt.Errorf("failed to open ciphertext: wrong key or corrupt data")
	}
	return string(opened), nil
}

// EncryptCredentials serializes and seals a full credential record.
func (v *Vault) EncryptCredentials(creds models.WordPressCredentials) (string, error) {
	data, err := json.Marshal(creds)
	if err != nil {
		return "", fmt.Errorf("marshaling credentials: %w", err)
	}
	return v.Encrypt(string(data))
}

// DecryptCredentials opens a blob produced by EncryptCredentials.
func (v *Vault) DecryptCredentials(blob string) (models.WordPressCredentials, error) {
	var creds models.WordPressCredentials
	plaintext, err := v.Decrypt(blob)
	if err != nil {
		return creds, err
	}
	if err := json.Unmarshal([]byte(plaintext), &creds); err != nil {
		return creds, fmt.Errorf("unmarshaling credentials: %w", err)
	}
	return creds, nil
}
