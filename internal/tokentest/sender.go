// Package tokentest mints payment tokens for tests. It implements the
// sending side of the protocol on its own, without the recipient code, so
// tokens it produces exercise the recipient end to end.
package tokentest

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"io"
	"strconv"
	"testing"
	"time"

	"golang.org/x/crypto/hkdf"
)

var (
	oidPublicKeyECDSA = asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}
	oidNamedCurveP256 = asn1.ObjectIdentifier{1, 2, 840, 10045, 3, 1, 7}
)

// Sender signs and seals tokens.
type Sender struct {
	// SenderID defaults to "Google".
	SenderID string
	// ProtocolVersion is "ECv1", "ECv2" or "ECv2SigningOnly".
	ProtocolVersion string
	// Root signs ECv1 messages and ECv2 intermediate keys.
	Root *ecdsa.PrivateKey
	// Intermediate signs ECv2 messages.
	Intermediate *ecdsa.PrivateKey
	// IntermediateExpiration is written into the signed key. Zero omits it.
	IntermediateExpiration time.Time
	// IntermediateSenderID defaults to "Google" for ECv2 and
	// "GooglePayPasses" for ECv2SigningOnly.
	IntermediateSenderID string
}

// Token mirrors the wire token so tests can tamper with fields.
type Token struct {
	ProtocolVersion        string                  `json:"protocolVersion"`
	Signature              string                  `json:"signature"`
	IntermediateSigningKey *IntermediateSigningKey `json:"intermediateSigningKey,omitempty"`
	SignedMessage          string                  `json:"signedMessage"`
}

// IntermediateSigningKey mirrors the wire intermediate key.
type IntermediateSigningKey struct {
	SignedKey  string   `json:"signedKey"`
	Signatures []string `json:"signatures"`
}

// JSON encodes the token.
func (tok *Token) JSON(t testing.TB) string {
	t.Helper()
	data, err := json.Marshal(tok)
	if err != nil {
		t.Fatalf("marshal token: %v", err)
	}
	return string(data)
}

// NewSigningKey generates a P-256 ECDSA key.
func NewSigningKey(t testing.TB) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate signing key: %v", err)
	}
	return key
}

// NewRecipientKey generates a recipient key and returns it as base64
// PKCS#8 together with its ECDH public key.
func NewRecipientKey(t testing.TB) (string, *ecdh.PublicKey) {
	t.Helper()
	key := NewSigningKey(t)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal recipient key: %v", err)
	}
	pub, err := key.PublicKey.ECDH()
	if err != nil {
		t.Fatalf("recipient ECDH key: %v", err)
	}
	return base64.StdEncoding.EncodeToString(der), pub
}

// PublicKeyBase64 encodes pub as base64 SubjectPublicKeyInfo with an
// uncompressed point.
func PublicKeyBase64(t testing.TB, pub *ecdsa.PublicKey) string {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	return base64.StdEncoding.EncodeToString(der)
}

// CompressedPublicKeyBase64 encodes pub as base64 SubjectPublicKeyInfo with
// a compressed point.
func CompressedPublicKeyBase64(t testing.TB, pub *ecdsa.PublicKey) string {
	t.Helper()
	params, err := asn1.Marshal(oidNamedCurveP256)
	if err != nil {
		t.Fatalf("marshal curve OID: %v", err)
	}
	point := elliptic.MarshalCompressed(elliptic.P256(), pub.X, pub.Y)
	der, err := asn1.Marshal(struct {
		Algorithm pkix.AlgorithmIdentifier
		PublicKey asn1.BitString
	}{
		Algorithm: pkix.AlgorithmIdentifier{
			Algorithm:  oidPublicKeyECDSA,
			Parameters: asn1.RawValue{FullBytes: params},
		},
		PublicKey: asn1.BitString{Bytes: point, BitLength: 8 * len(point)},
	})
	if err != nil {
		t.Fatalf("marshal compressed public key: %v", err)
	}
	return base64.StdEncoding.EncodeToString(der)
}

// DirectoryKey is one entry of a key directory.
type DirectoryKey struct {
	KeyValue        string
	ProtocolVersion string
	// KeyExpiration is omitted when zero.
	KeyExpiration time.Time
}

// KeyDirectory encodes keys as a key directory document.
func KeyDirectory(t testing.TB, keys ...DirectoryKey) []byte {
	t.Helper()
	type entry struct {
		KeyValue        string `json:"keyValue"`
		ProtocolVersion string `json:"protocolVersion"`
		KeyExpiration   string `json:"keyExpiration,omitempty"`
	}
	doc := struct {
		Keys []entry `json:"keys"`
	}{Keys: make([]entry, 0, len(keys))}

	for _, k := range keys {
		e := entry{KeyValue: k.KeyValue, ProtocolVersion: k.ProtocolVersion}
		if !k.KeyExpiration.IsZero() {
			e.KeyExpiration = strconv.FormatInt(k.KeyExpiration.UnixMilli(), 10)
		}
		doc.Keys = append(doc.Keys, e)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal key directory: %v", err)
	}
	return data
}

// SignedString frames components with little-endian uint32 lengths.
func SignedString(components ...string) []byte {
	var out []byte
	for _, c := range components {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(c)))
		out = append(out, c...)
	}
	return out
}

// Sign returns a base64 ASN.1 signature over SHA-256 of data.
func Sign(t testing.TB, key *ecdsa.PrivateKey, data []byte) string {
	t.Helper()
	digest := sha256.Sum256(data)
	sig, err := ecdsa.SignASN1(rand.Reader, key, digest[:])
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return base64.StdEncoding.EncodeToString(sig)
}

// Seal encrypts plaintext for recipient and returns the signed token.
func (s *Sender) Seal(t testing.TB, recipientID string, recipient *ecdh.PublicKey, plaintext string) *Token {
	t.Helper()
	return s.SignMessage(t, recipientID, SealMessage(t, s.ProtocolVersion, recipient, plaintext))
}

// SignMessage wraps an arbitrary signed message into a token.
func (s *Sender) SignMessage(t testing.TB, recipientID, signedMessage string) *Token {
	t.Helper()
	senderID := s.SenderID
	if senderID == "" {
		senderID = "Google"
	}

	tok := &Token{ProtocolVersion: s.ProtocolVersion, SignedMessage: signedMessage}
	messageKey := s.Root
	if s.ProtocolVersion != "ECv1" {
		tok.IntermediateSigningKey = s.intermediateKey(t)
		messageKey = s.Intermediate
	}
	tok.Signature = Sign(t, messageKey, SignedString(senderID, recipientID, s.ProtocolVersion, signedMessage))
	return tok
}

func (s *Sender) intermediateKey(t testing.TB) *IntermediateSigningKey {
	t.Helper()
	if s.Intermediate == nil {
		t.Fatal("sender has no intermediate key")
	}

	signedKey := struct {
		KeyValue      string `json:"keyValue"`
		KeyExpiration string `json:"keyExpiration,omitempty"`
	}{KeyValue: PublicKeyBase64(t, &s.Intermediate.PublicKey)}
	if !s.IntermediateExpiration.IsZero() {
		signedKey.KeyExpiration = strconv.FormatInt(s.IntermediateExpiration.UnixMilli(), 10)
	}
	data, err := json.Marshal(signedKey)
	if err != nil {
		t.Fatalf("marshal signed key: %v", err)
	}

	keySender := s.IntermediateSenderID
	if keySender == "" {
		keySender = "Google"
		if s.ProtocolVersion == "ECv2SigningOnly" {
			keySender = "GooglePayPasses"
		}
	}

	return &IntermediateSigningKey{
		SignedKey:  string(data),
		Signatures: []string{Sign(t, s.Root, SignedString(keySender, s.ProtocolVersion, string(data)))},
	}
}

// SealMessage builds the encrypted signed message for recipient.
func SealMessage(t testing.TB, protocolVersion string, recipient *ecdh.PublicKey, plaintext string) string {
	t.Helper()
	symmetricSize, macSize := 16, 16
	if protocolVersion == "ECv2" {
		symmetricSize, macSize = 32, 32
	}

	ephemeral, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate ephemeral key: %v", err)
	}
	shared, err := ephemeral.ECDH(recipient)
	if err != nil {
		t.Fatalf("ECDH: %v", err)
	}
	ephemeralBytes := ephemeral.PublicKey().Bytes()

	ikm := append(append([]byte{}, ephemeralBytes...), shared...)
	material := make([]byte, symmetricSize+macSize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, nil, []byte("Google")), material); err != nil {
		t.Fatalf("HKDF: %v", err)
	}

	block, err := aes.NewCipher(material[:symmetricSize])
	if err != nil {
		t.Fatalf("AES: %v", err)
	}
	ciphertext := make([]byte, len(plaintext))
	cipher.NewCTR(block, make([]byte, aes.BlockSize)).XORKeyStream(ciphertext, []byte(plaintext))

	mac := hmac.New(sha256.New, material[symmetricSize:])
	mac.Write(ciphertext)

	msg, err := json.Marshal(struct {
		EncryptedMessage   string `json:"encryptedMessage"`
		EphemeralPublicKey string `json:"ephemeralPublicKey"`
		Tag                string `json:"tag"`
	}{
		EncryptedMessage:   base64.StdEncoding.EncodeToString(ciphertext),
		EphemeralPublicKey: base64.StdEncoding.EncodeToString(ephemeralBytes),
		Tag:                base64.StdEncoding.EncodeToString(mac.Sum(nil)),
	})
	if err != nil {
		t.Fatalf("marshal signed message: %v", err)
	}
	return string(msg)
}
