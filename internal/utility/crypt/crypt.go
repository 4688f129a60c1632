// Package crypt holds the byte transforms managers use on asset payloads:
// repeating-key XOR and AES-128-CBC with PKCS#7 padding.
package crypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"haloframe/internal/statuscode"
)

var logger = zlog.Logger

// SetLogger replaces the logger used to report misuse such as an empty password.
func SetLogger(l zerolog.Logger) { logger = l }

// QuickLength is how many leading bytes the Quick* variants transform.
const QuickLength = 220

// QuickXor returns a copy of b with its first QuickLength bytes XORed with code.
func QuickXor(b, code []byte) ([]byte, error) {
	return XorRange(b, 0, min(QuickLength, len(b)), code)
}

// QuickSelfXor is QuickXor in place.
func QuickSelfXor(b, code []byte) error {
	return SelfXorRange(b, 0, min(QuickLength, len(b)), code)
}

// Xor returns a copy of b XORed with code. A nil b yields nil.
func Xor(b, code []byte) ([]byte, error) {
	if b == nil {
		return nil, nil
	}
	return XorRange(b, 0, len(b), code)
}

// SelfXor XORs b with code in place.
func SelfXor(b, code []byte) error {
	if b == nil {
		return nil
	}
	return SelfXorRange(b, 0, len(b), code)
}

// XorRange returns a copy of b where bytes [start, start+length) are XORed with code.
func XorRange(b []byte, start, length int, code []byte) ([]byte, error) {
	if b == nil {
		return nil, nil
	}
	out := bytes.Clone(b)
	if err := SelfXorRange(out, start, length, code); err != nil {
		return nil, err
	}
	return out, nil
}

// SelfXorRange XORs bytes [start, start+length) of b with code in place. The
// code index starts at start modulo len(code), so a range transformed in
// pieces matches the same range transformed at once.
func SelfXorRange(b []byte, start, length int, code []byte) error {
	if b == nil {
		return nil
	}
	if len(code) == 0 {
		return statuscode.EncryptionError.Err("xor code is empty")
	}
	if start < 0 || length < 0 || start+length > len(b) {
		return statuscode.EncryptionError.Err(fmt.Sprintf("invalid range start=%d length=%d size=%d", start, length, len(b)))
	}
	ci := start % len(code)
	for i := start; i < start+length; i++ {
		b[i] ^= code[ci]
		ci++
		if ci == len(code) {
			ci = 0
		}
	}
	return nil
}

// XOREncrypt XORs b in place with the bytes of password, cycling the password.
// An empty password is logged as an error and b is returned unchanged.
func XOREncrypt(b []byte, password string) ([]byte, error) {
	if password == "" {
		logger.Error().Str("code", statuscode.EncryptionError.String()).Int("bytes", len(b)).Msg("xor: empty password, input left unchanged")
		return b, nil
	}
	p := []byte(password)
	for i := range b {
		b[i] ^= p[i%len(p)]
	}
	return b, nil
}

// XORDecrypt reverses XOREncrypt.
func XORDecrypt(b []byte, password string) ([]byte, error) { return XOREncrypt(b, password) }

// aesKey pads or truncates password to a 16 byte AES-128 key.
func aesKey(password string) []byte {
	key := make([]byte, aes.BlockSize)
	copy(key, password)
	return key
}

func aesIV(iv string) ([]byte, error) {
	if len(iv) != aes.BlockSize {
		return nil, statuscode.EncryptionError.Err(fmt.Sprintf("iv must be %d bytes, got %d", aes.BlockSize, len(iv)))
	}
	return []byte(iv), nil
}

// AESEncrypt encrypts src with AES-128-CBC and PKCS#7 padding.
func AESEncrypt(src []byte, password, iv string) ([]byte, error) {
	ivb, err := aesIV(iv)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(aesKey(password))
	if err != nil {
		return nil, statuscode.EncryptionError.Errorf("aes: %w", err)
	}
	pad := aes.BlockSize - len(src)%aes.BlockSize
	buf := make([]byte, len(src)+pad)
	copy(buf, src)
	for i := len(src); i < len(buf); i++ {
		buf[i] = byte(pad)
	}
	cipher.NewCBCEncrypter(block, ivb).CryptBlocks(buf, buf)
	return buf, nil
}

// AESDecrypt reverses AESEncrypt.
func AESDecrypt(src []byte, password, iv string) ([]byte, error) {
	ivb, err := aesIV(iv)
	if err != nil {
		return nil, err
	}
	if len(src) == 0 || len(src)%aes.BlockSize != 0 {
		return nil, statuscode.EncryptionError.Err("ciphertext is not a multiple of the block size")
	}
	block, err := aes.NewCipher(aesKey(password))
	if err != nil {
		return nil, statuscode.EncryptionError.Errorf("aes: %w", err)
	}
	buf := make([]byte, len(src))
	cipher.NewCBCDecrypter(block, ivb).CryptBlocks(buf, src)
	pad := int(buf[len(buf)-1])
	if pad == 0 || pad > aes.BlockSize {
		return nil, statuscode.EncryptionError.Err("bad padding")
	}
	for _, v := range buf[len(buf)-pad:] {
		if int(v) != pad {
			return nil, statuscode.EncryptionError.Err("bad padding")
		}
	}
	return buf[:len(buf)-pad], nil
}
