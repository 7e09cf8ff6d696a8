// Package encryption implements the at-rest message pipeline:
// gzip compression, AES-256-GCM, and an independent SHA-256 plaintext
// hash stored alongside the ciphertext.
package encryption

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"chat-relay/errors"
)

const (
	nonceSize = 12
	tagSize   = 16

	// PreviewLength caps the plaintext copied into the independently
	// encrypted conversation-list preview.
	PreviewLength = 50

	// PreviewPlaceholder is what list rendering shows when a preview
	// cannot be decrypted. Callers substitute it, never propagate.
	PreviewPlaceholder = "Message preview unavailable"
)

// Pipeline is a stateless transform keyed by process-wide key material.
type Pipeline struct {
	aead cipher.AEAD
}

func NewPipeline(key []byte) (*Pipeline, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher init: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("aead init: %w", err)
	}
	return &Pipeline{aead: aead}, nil
}

// Encode compresses and encrypts plaintext. The returned ciphertext is
// base64(nonce || tag || sealed body); the hash is hex(SHA-256) of the
// original plaintext, a second integrity check independent of the
// cipher.
func (p *Pipeline) Encode(plaintext string) (ciphertext, hash string, err error) {
	compressed, err := compress([]byte(plaintext))
	if err != nil {
		return "", "", fmt.Errorf("compress: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", "", fmt.Errorf("nonce: %w", err)
	}

	// Seal returns body||tag; the stored layout is nonce||tag||body.
	sealed := p.aead.Seal(nil, nonce, compressed, nil)
	body := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	combined := make([]byte, 0, nonceSize+len(sealed))
	combined = append(combined, nonce...)
	combined = append(combined, tag...)
	combined = append(combined, body...)

	sum := sha256.Sum256([]byte(plaintext))
	return base64.StdEncoding.EncodeToString(combined), hex.EncodeToString(sum[:]), nil
}

// Decode reverses Encode. A tag mismatch yields ErrDecryption and no
// plaintext; a post-decrypt hash mismatch yields ErrIntegrity.
func (p *Pipeline) Decode(ciphertext, expectedHash string) (string, error) {
	plaintext, err := p.open(ciphertext)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(plaintext)
	if subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(expectedHash)) != 1 {
		return "", errors.ErrIntegrity
	}
	return string(plaintext), nil
}

// EncodePreview independently encrypts a truncated copy of the content
// for list rendering, so conversation lists never decrypt full history.
func (p *Pipeline) EncodePreview(plaintext string) (string, error) {
	runes := []rune(plaintext)
	if len(runes) > PreviewLength {
		plaintext = string(runes[:PreviewLength]) + "..."
	}
	preview, _, err := p.Encode(plaintext)
	return preview, err
}

// DecodePreview decrypts a preview. No stored hash exists for previews,
// so only the AEAD authenticates it.
func (p *Pipeline) DecodePreview(preview string) (string, error) {
	plaintext, err := p.open(preview)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func (p *Pipeline) open(encoded string) ([]byte, error) {
	combined, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrDecryption, err)
	}
	if len(combined) < nonceSize+tagSize {
		return nil, errors.ErrDecryption
	}

	nonce := combined[:nonceSize]
	tag := combined[nonceSize : nonceSize+tagSize]
	body := combined[nonceSize+tagSize:]

	sealed := make([]byte, 0, len(body)+tagSize)
	sealed = append(sealed, body...)
	sealed = append(sealed, tag...)

	compressed, err := p.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, errors.ErrDecryption
	}

	plaintext, err := decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrDecryption, err)
	}
	return plaintext, nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
