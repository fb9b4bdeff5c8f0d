package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"
	"sync/atomic"

	"golang.org/x/crypto/hkdf"
)

// DeriveKey expands secret into length bytes with HKDF-SHA256. A nil salt
// is treated as a zero-filled salt of hash length.
func DeriveKey(secret, salt, info []byte, length int) ([]byte, error) {
	reader := hkdf.New(sha256.New, secret, salt, info)
	key := make([]byte, length)

	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	return key, nil
}

// ComputeSharedSecret runs P-256 ECDH between the recipient key and the
// sender's ephemeral key.
func ComputeSharedSecret(priv *PrivateKey, pub *PublicKey) ([]byte, error) {
	if !ValidateCurve(priv) || !ValidateCurve(pub) {
		return nil, ErrCurveMismatch
	}

	secret, err := priv.dh.ECDH(pub.dh)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCurveMismatch, err)
	}
	if len(secret) != SharedSecretSize {
		return nil, fmt.Errorf("%w: shared secret of %d bytes", ErrCurveMismatch, len(secret))
	}
	return secret, nil
}

// DerivedKeys holds the symmetric and MAC keys for exactly one message.
// Open may be called once; the keys are wiped afterwards.
type DerivedKeys struct {
	symmetricKey []byte
	macKey       []byte
	used         atomic.Bool
}

// DeriveKeys computes the message keys for an ephemeral public point. The
// HKDF input is the ephemeral point bytes followed by the shared secret,
// with no salt and the fixed info string.
func DeriveKeys(priv *PrivateKey, ephemeralPublicKey []byte, symmetricKeySize, macKeySize int) (*DerivedKeys, error) {
	if symmetricKeySize <= 0 || macKeySize <= 0 {
		return nil, fmt.Errorf("%w: %d/%d", ErrInvalidKeySize, symmetricKeySize, macKeySize)
	}

	ephemeral, err := ParsePublicKeyPoint(ephemeralPublicKey)
	if err != nil {
		return nil, fmt.Errorf("ephemeral public key: %w", err)
	}

	secret, err := ComputeSharedSecret(priv, ephemeral)
	if err != nil {
		return nil, err
	}
	defer clear(secret)

	ikm := make([]byte, 0, len(ephemeralPublicKey)+len(secret))
	ikm = append(ikm, ephemeralPublicKey...)
	ikm = append(ikm, secret...)
	defer clear(ikm)

	material, err := DeriveKey(ikm, nil, []byte(HKDFInfo), symmetricKeySize+macKeySize)
	if err != nil {
		return nil, err
	}

	return &DerivedKeys{
		symmetricKey: material[:symmetricKeySize:symmetricKeySize],
		macKey:       material[symmetricKeySize:],
	}, nil
}

// SymmetricKey returns a copy of the encryption key.
func (k *DerivedKeys) SymmetricKey() []byte {
	return append([]byte(nil), k.symmetricKey...)
}

// MACKey returns a copy of the MAC key.
func (k *DerivedKeys) MACKey() []byte {
	return append([]byte(nil), k.macKey...)
}

// Open checks tag over ciphertext and, if it matches, decrypts. Any
// mismatch yields ErrDecryptionFailed. The keys are wiped on return and a
// second call fails with ErrKeysConsumed.
func (k *DerivedKeys) Open(ciphertext, tag []byte) ([]byte, error) {
	if !k.used.CompareAndSwap(false, true) {
		return nil, ErrKeysConsumed
	}
	defer k.wipe()

	if !VerifyTag(k.macKey, ciphertext, tag) {
		return nil, ErrDecryptionFailed
	}
	return decryptAESCTR(k.symmetricKey, ciphertext)
}

func (k *DerivedKeys) wipe() {
	clear(k.symmetricKey)
	clear(k.macKey)
}
