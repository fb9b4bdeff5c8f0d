package crypto

import (
	"context"
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/paymentdata/client-go/internal/clock"
)

// KeyProvider returns the root signing keys for a protocol version as DER
// SubjectPublicKeyInfo bytes. An empty result means no key is known.
type KeyProvider interface {
	PublicKeys(ctx context.Context, version ProtocolVersion) ([][]byte, error)
}

// SignedString frames components for signing: each is written as a
// little-endian uint32 byte length followed by its bytes.
func SignedString(components ...string) []byte {
	size := 0
	for _, c := range components {
		size += lengthPrefixSize + len(c)
	}

	out := make([]byte, 0, size)
	for _, c := range components {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(c)))
		out = append(out, c...)
	}
	return out
}

// Verifier checks token signatures against root signing keys.
type Verifier struct {
	keys  KeyProvider
	clock clock.Clock
}

// NewVerifier returns a Verifier. A nil clock uses the system clock.
func NewVerifier(keys KeyProvider, c clock.Clock) *Verifier {
	if c == nil {
		c = clock.System
	}
	return &Verifier{keys: keys, clock: c}
}

// VerifyMessage checks that token was signed by sender for recipient.
//
// ECv1 tokens must verify directly against one of the root keys. ECv2 and
// ECv2SigningOnly tokens carry an intermediate key that must be signed by a
// root key and unexpired; the message must then verify against it.
func (v *Verifier) VerifyMessage(ctx context.Context, token *Token, sender, recipient string) error {
	version := token.Version()
	if !version.Known() {
		return fmt.Errorf("%w: %q", ErrUnsupportedProtocol, token.ProtocolVersion)
	}

	signature, err := DecodeBase64(token.Signature)
	if err != nil {
		return fmt.Errorf("%w: signature: %v", ErrMalformedToken, err)
	}

	roots, err := v.keys.PublicKeys(ctx, version)
	if err != nil {
		if errors.Is(err, ErrKeyFetchFailed) || ctx.Err() != nil {
			return fmt.Errorf("signing keys for %s: %w", version, err)
		}
		return fmt.Errorf("signing keys for %s: %w: %w", version, ErrKeyFetchFailed, err)
	}
	if len(roots) == 0 {
		return fmt.Errorf("%w: no signing keys for %s", ErrNoValidSigningKey, version)
	}

	signed := SignedString(sender, recipient, version.String(), token.SignedMessage)

	switch version {
	case ECv1:
		if !anyRootVerifies(roots, signed, [][]byte{signature}) {
			return ErrSignatureInvalid
		}
		return nil
	case ECv2:
		return v.verifyChain(roots, token, GoogleSenderID, signed, signature)
	case ECv2SigningOnly:
		return v.verifyChain(roots, token, PassesSenderID, signed, signature)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedProtocol, token.ProtocolVersion)
	}
}

func (v *Verifier) verifyChain(roots [][]byte, token *Token, keySender string, signed, signature []byte) error {
	isk := token.IntermediateSigningKey
	if isk == nil || isk.SignedKey == "" {
		return fmt.Errorf("%w: missing intermediateSigningKey", ErrMalformedToken)
	}

	chainSignatures := make([][]byte, 0, len(isk.Signatures))
	for _, s := range isk.Signatures {
		sig, err := DecodeBase64(s)
		if err != nil {
			return fmt.Errorf("%w: intermediate signature: %v", ErrMalformedToken, err)
		}
		chainSignatures = append(chainSignatures, sig)
	}

	keySigned := SignedString(keySender, token.ProtocolVersion, isk.SignedKey)
	if !anyRootVerifies(roots, keySigned, chainSignatures) {
		return fmt.Errorf("%w: intermediate key not signed by a root key", ErrNoValidSigningKey)
	}

	signedKey, err := ParseKeyWithExpiration(isk.SignedKey)
	if err != nil {
		return err
	}
	if signedKey.KeyExpiration.IsZero() {
		return fmt.Errorf("%w: intermediate key has no expiration", ErrExpiredKey)
	}
	if now := v.clock.Now(); signedKey.KeyExpiration.Expired(now) {
		return fmt.Errorf("%w: intermediate key expired at %s", ErrExpiredKey, signedKey.KeyExpiration.Time().UTC())
	}

	intermediate, err := ParseDirectoryPublicKeyBase64(signedKey.KeyValue)
	if err != nil {
		return fmt.Errorf("intermediate key: %w", err)
	}

	if !verifySignature(intermediate.ECDSA(), signed, signature) {
		return ErrSignatureInvalid
	}
	return nil
}

// anyRootVerifies reports whether any signature verifies under any root.
// Roots that fail to parse are skipped.
func anyRootVerifies(roots [][]byte, data []byte, signatures [][]byte) bool {
	for _, der := range roots {
		root, err := ParseDirectoryPublicKey(der)
		if err != nil {
			continue
		}
		for _, sig := range signatures {
			if verifySignature(root.ECDSA(), data, sig) {
				return true
			}
		}
	}
	return false
}

func verifySignature(pub *ecdsa.PublicKey, data, signature []byte) bool {
	digest := sha256.Sum256(data)
	return ecdsa.VerifyASN1(pub, digest[:], signature)
}
