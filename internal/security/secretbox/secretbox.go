// Package secretbox sella y abre secretos de configuración (p.ej. el consumer
// secret de Fastpass) con NaCl secretbox (XSalsa20-Poly1305).
//
// Formato sellado: "enc:" + base64(nonce) + "|" + base64(ciphertext).
package secretbox

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	// Prefix marca un valor sellado en config/env.
	Prefix = "enc:"

	keySize   = 32
	nonceSize = 24
	sep       = "|"
)

var (
	ErrInvalidKey    = errors.New("secretbox: invalid master key")
	ErrInvalidFormat = errors.New("secretbox: invalid sealed format, expected enc:base64(nonce)|base64(ciphertext)")
	ErrDecrypt       = errors.New("secretbox: authentication failed")
)

// Box sella/abre con una master key fija.
type Box struct {
	key [keySize]byte
}

// New acepta la master key en base64 (std o raw) o hex de 64 caracteres.
// Generar con: openssl rand -base64 32
func New(masterKey string) (*Box, error) {
	k, err := decodeKey(strings.TrimSpace(masterKey))
	if err != nil {
		return nil, err
	}
	b := &Box{}
	copy(b.key[:], k)
	return b, nil
}

func decodeKey(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil && len(b) == keySize {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(s); err == nil && len(b) == keySize {
		return b, nil
	}
	if len(s) == 2*keySize {
		if b, err := hex.DecodeString(s); err == nil {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: must decode to %d bytes", ErrInvalidKey, keySize)
}

// IsSealed indica si v tiene el prefijo "enc:".
func IsSealed(v string) bool {
	return strings.HasPrefix(v, Prefix)
}

// Seal cifra plain y devuelve el valor con prefijo.
func (b *Box) Seal(plain string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("secretbox: nonce: %w", err)
	}
	ct := secretbox.Seal(nil, []byte(plain), &nonce, &b.key)
	return Prefix + base64.StdEncoding.EncodeToString(nonce[:]) + sep + base64.StdEncoding.EncodeToString(ct), nil
}

// Open descifra un valor sellado. El prefijo "enc:" es opcional.
func (b *Box) Open(sealed string) (string, error) {
	parts := strings.Split(strings.TrimPrefix(strings.TrimSpace(sealed), Prefix), sep)
	if len(parts) != 2 {
		return "", ErrInvalidFormat
	}
	n, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(n) != nonceSize {
		return "", ErrInvalidFormat
	}
	ct, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", ErrInvalidFormat
	}
	var nonce [nonceSize]byte
	copy(nonce[:], n)

	pt, ok := secretbox.Open(nil, ct, &nonce, &b.key)
	if !ok {
		return "", ErrDecrypt
	}
	return string(pt), nil
}

// Reveal devuelve v tal cual si no está sellado; si lo está, lo abre con
// masterKey.
func Reveal(masterKey, v string) (string, error) {
	if !IsSealed(v) {
		return v, nil
	}
	b, err := New(masterKey)
	if err != nil {
		return "", err
	}
	return b.Open(v)
}
