// Package encoding turns small values (history states) into URL-safe tokens
// and back. Values are packed with msgpack, then either signed with an HMAC
// (readable, tamper-evident) or sealed with AES-256-GCM (opaque).
package encoding

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Sentinel errors returned by Decode.
var (
	ErrInvalidFormat    = errors.New("encoding: invalid token format")
	ErrSignatureInvalid = errors.New("encoding: signature verification failed")
	ErrDecryptFailed    = errors.New("encoding: token decryption failed")
)

const sigLen = 16

// Codec encodes and decodes tokens with a fixed key.
type Codec struct {
	key  []byte
	gcm  cipher.AEAD
	seal bool
}

// Option configures a Codec.
type Option func(*Codec)

// Sealed makes the codec encrypt tokens instead of signing them.
func Sealed() Option {
	return func(c *Codec) { c.seal = true }
}

// NewCodec creates a codec. Keys shorter than 32 bytes are stretched with
// SHA-256.
func NewCodec(key []byte, opts ...Option) (*Codec, error) {
	if len(key) < 32 {
		h := sha256.Sum256(key)
		key = h[:]
	}
	block, err := aes.NewCipher(key[:32])
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	c := &Codec{key: key, gcm: gcm}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Encode packs v and returns a token.
func (c *Codec) Encode(v any) (string, error) {
	packed, err := msgpack.Marshal(v)
	if err != nil {
		return "", err
	}
	if c.seal {
		return c.encrypt(packed)
	}
	return c.sign(packed), nil
}

// Decode verifies or opens token and unpacks it into v.
func (c *Codec) Decode(token string, v any) error {
	var (
		packed []byte
		err    error
	)
	if c.seal {
		packed, err = c.decrypt(token)
	} else {
		packed, err = c.verify(token)
	}
	if err != nil {
		return err
	}
	if err := msgpack.Unmarshal(packed, v); err != nil {
		return errors.Join(ErrInvalidFormat, err)
	}
	return nil
}

func (c *Codec) mac(data []byte) []byte {
	m := hmac.New(sha256.New, c.key)
	m.Write(data)
	return m.Sum(nil)[:sigLen]
}

// sign produces base64(data).base64(mac).
func (c *Codec) sign(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data) + "." +
		base64.RawURLEncoding.EncodeToString(c.mac(data))
}

func (c *Codec) verify(token string) ([]byte, error) {
	body, sig, ok := strings.Cut(token, ".")
	if !ok {
		return nil, ErrInvalidFormat
	}
	data, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	if !hmac.Equal(got, c.mac(data)) {
		return nil, ErrSignatureInvalid
	}
	return data, nil
}

func (c *Codec) encrypt(data []byte) (string, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(c.gcm.Seal(nonce, nonce, data, nil)), nil
}

func (c *Codec) decrypt(token string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	if len(raw) < c.gcm.NonceSize() {
		return nil, ErrInvalidFormat
	}
	nonce, body := raw[:c.gcm.NonceSize()], raw[c.gcm.NonceSize():]
	data, err := c.gcm.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return data, nil
}
