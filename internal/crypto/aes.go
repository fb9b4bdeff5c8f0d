package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// decryptAESCTR decrypts with AES in counter mode starting from an all-zero
// IV. Every message uses fresh keys, so the fixed IV is never reused.
func decryptAESCTR(key, ciphertext []byte) ([]byte, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: AES key of %d bytes", ErrInvalidKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, aes.BlockSize)
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCTR(block, iv).XORKeyStream(plaintext, ciphertext)
	return plaintext, nil
}
