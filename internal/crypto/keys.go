package crypto

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	encoding_asn1 "encoding/asn1"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

var (
	oidPublicKeyECDSA = encoding_asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}
	oidNamedCurveP256 = encoding_asn1.ObjectIdentifier{1, 2, 840, 10045, 3, 1, 7}
)

// CurveKey is implemented by every key type in this package.
type CurveKey interface {
	Curve() ecdh.Curve
}

// ValidateCurve reports whether key is a non-nil P-256 key.
func ValidateCurve(key CurveKey) bool {
	if key == nil {
		return false
	}
	return key.Curve() == ecdh.P256()
}

// PublicKey is a P-256 public key usable for both ECDH and ECDSA
// verification.
type PublicKey struct {
	dh  *ecdh.PublicKey
	sig *ecdsa.PublicKey
}

// Curve returns the key's curve, or nil for a zero key.
func (k *PublicKey) Curve() ecdh.Curve {
	if k == nil || k.dh == nil {
		return nil
	}
	return k.dh.Curve()
}

// Bytes returns the uncompressed point encoding.
func (k *PublicKey) Bytes() []byte {
	return k.dh.Bytes()
}

// ECDSA returns the key in the form used for signature verification.
func (k *PublicKey) ECDSA() *ecdsa.PublicKey {
	return k.sig
}

// PrivateKey is a P-256 recipient private key.
type PrivateKey struct {
	dh *ecdh.PrivateKey
}

// Curve returns the key's curve, or nil for a zero key.
func (k *PrivateKey) Curve() ecdh.Curve {
	if k == nil || k.dh == nil {
		return nil
	}
	return k.dh.Curve()
}

// PublicKey returns the public half of k.
func (k *PrivateKey) PublicKey() *PublicKey {
	pub := k.dh.PublicKey()
	sig, err := ecdsa.ParseUncompressedPublicKey(elliptic.P256(), pub.Bytes())
	if err != nil {
		// A valid ecdh key always yields a valid point.
		panic("crypto: private key produced an invalid public point: " + err.Error())
	}
	return &PublicKey{dh: pub, sig: sig}
}

// ParsePublicKeyPoint decodes a raw X9.62 point, compressed or uncompressed.
func ParsePublicKeyPoint(point []byte) (*PublicKey, error) {
	switch {
	case len(point) == UncompressedPointSize && point[0] == 0x04:
		return newPublicKey(point)

	case len(point) == CompressedPointSize && (point[0] == 0x02 || point[0] == 0x03):
		x, y := elliptic.UnmarshalCompressed(elliptic.P256(), point)
		if x == nil {
			return nil, fmt.Errorf("%w: compressed point is not on P-256", ErrCurveMismatch)
		}
		uncompressed := make([]byte, UncompressedPointSize)
		uncompressed[0] = 0x04
		x.FillBytes(uncompressed[1:33])
		y.FillBytes(uncompressed[33:])
		return newPublicKey(uncompressed)

	default:
		return nil, fmt.Errorf("%w: point of %d bytes", ErrInvalidKeyEncoding, len(point))
	}
}

func newPublicKey(uncompressed []byte) (*PublicKey, error) {
	dh, err := ecdh.P256().NewPublicKey(uncompressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCurveMismatch, err)
	}
	sig, err := ecdsa.ParseUncompressedPublicKey(elliptic.P256(), uncompressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCurveMismatch, err)
	}
	return &PublicKey{dh: dh, sig: sig}, nil
}

// ParsePublicKeyDER decodes an X.509 SubjectPublicKeyInfo holding a P-256
// point. The curve must be given by its named OID; keys on any other curve
// fail with ErrCurveMismatch.
func ParsePublicKeyDER(der []byte) (*PublicKey, error) {
	input := cryptobyte.String(der)
	var spki, algorithm cryptobyte.String
	var algorithmOID encoding_asn1.ObjectIdentifier

	if !input.ReadASN1(&spki, asn1.SEQUENCE) || !input.Empty() ||
		!spki.ReadASN1(&algorithm, asn1.SEQUENCE) ||
		!algorithm.ReadASN1ObjectIdentifier(&algorithmOID) {
		return nil, fmt.Errorf("%w: malformed SubjectPublicKeyInfo", ErrInvalidKeyEncoding)
	}
	if !algorithmOID.Equal(oidPublicKeyECDSA) {
		return nil, fmt.Errorf("%w: not an EC public key", ErrInvalidKeyEncoding)
	}

	if algorithm.PeekASN1Tag(asn1.SEQUENCE) {
		return nil, fmt.Errorf("%w: explicit curve parameters", ErrCurveMismatch)
	}
	var curveOID encoding_asn1.ObjectIdentifier
	if !algorithm.ReadASN1ObjectIdentifier(&curveOID) || !algorithm.Empty() {
		return nil, fmt.Errorf("%w: malformed curve parameters", ErrInvalidKeyEncoding)
	}
	if !curveOID.Equal(oidNamedCurveP256) {
		return nil, fmt.Errorf("%w: curve %s", ErrCurveMismatch, curveOID)
	}

	var bits encoding_asn1.BitString
	if !spki.ReadASN1BitString(&bits) || !spki.Empty() || bits.BitLength%8 != 0 {
		return nil, fmt.Errorf("%w: malformed subject public key", ErrInvalidKeyEncoding)
	}

	return ParsePublicKeyPoint(bits.Bytes)
}

// ParseDirectoryPublicKey decodes a root or intermediate signing key. Only
// the two canonical P-256 SubjectPublicKeyInfo lengths are accepted.
func ParseDirectoryPublicKey(der []byte) (*PublicKey, error) {
	if len(der) != compressedSPKISize && len(der) != uncompressedSPKISize {
		return nil, fmt.Errorf("%w: signing key of %d bytes", ErrInvalidKeyEncoding, len(der))
	}
	return ParsePublicKeyDER(der)
}

// ParseDirectoryPublicKeyBase64 decodes the base64 keyValue of a signing key.
func ParseDirectoryPublicKeyBase64(keyValue string) (*PublicKey, error) {
	der, err := DecodeBase64(keyValue)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, err)
	}
	return ParseDirectoryPublicKey(der)
}

// ParsePrivateKeyPKCS8 decodes a PKCS#8 DER private key on P-256.
func ParsePrivateKeyPKCS8(der []byte) (*PrivateKey, error) {
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, err)
	}

	switch key := parsed.(type) {
	case *ecdsa.PrivateKey:
		if key.Curve != elliptic.P256() {
			return nil, fmt.Errorf("%w: private key on %s", ErrCurveMismatch, key.Curve.Params().Name)
		}
		dh, err := key.ECDH()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, err)
		}
		return &PrivateKey{dh: dh}, nil

	case *ecdh.PrivateKey:
		if key.Curve() != ecdh.P256() {
			return nil, fmt.Errorf("%w: private key is not a P-256 key", ErrCurveMismatch)
		}
		return &PrivateKey{dh: key}, nil

	default:
		return nil, fmt.Errorf("%w: unsupported private key type %T", ErrInvalidKeyEncoding, parsed)
	}
}

// ParsePrivateKeyBase64 decodes a base64 PKCS#8 private key.
func ParsePrivateKeyBase64(s string) (*PrivateKey, error) {
	der, err := DecodeBase64(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, err)
	}
	return ParsePrivateKeyPKCS8(der)
}

// ParsePrivateKeyScalar builds a P-256 private key from its scalar.
func ParsePrivateKeyScalar(d *big.Int) (*PrivateKey, error) {
	if d == nil || d.Sign() <= 0 || d.BitLen() > 256 {
		return nil, fmt.Errorf("%w: scalar out of range", ErrInvalidKeyEncoding)
	}
	scalar := d.FillBytes(make([]byte, 32))
	dh, err := ecdh.P256().NewPrivateKey(scalar)
	clear(scalar)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, err)
	}
	return &PrivateKey{dh: dh}, nil
}

// ParsePrivateKeyHex builds a P-256 private key from a big-endian hex
// scalar. Leading zero bytes and an optional 0x prefix are accepted.
func ParsePrivateKeyHex(s string) (*PrivateKey, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	d, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("%w: not a hex scalar", ErrInvalidKeyEncoding)
	}
	return ParsePrivateKeyScalar(d)
}
