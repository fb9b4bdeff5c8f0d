package crypto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ProtocolVersion identifies the token format. The set is closed; anything
// this package does not know parses to ProtocolUnrecognized.
type ProtocolVersion uint8

const (
	ProtocolUnrecognized ProtocolVersion = iota
	ECv1
	ECv2
	ECv2SigningOnly
)

var protocolNames = [...]string{
	ProtocolUnrecognized: "",
	ECv1:                 "ECv1",
	ECv2:                 "ECv2",
	ECv2SigningOnly:      "ECv2SigningOnly",
}

// KnownProtocolVersions lists every version that can be verified, in the
// order used by key directory summaries.
var KnownProtocolVersions = []ProtocolVersion{ECv1, ECv2, ECv2SigningOnly}

// ParseProtocolVersion maps a wire string to a ProtocolVersion. Matching is
// exact and case sensitive.
func ParseProtocolVersion(s string) ProtocolVersion {
	for v, name := range protocolNames {
		if name != "" && name == s {
			return ProtocolVersion(v)
		}
	}
	return ProtocolUnrecognized
}

// String returns the wire form of v. ProtocolUnrecognized yields "unrecognized".
func (v ProtocolVersion) String() string {
	if v.Known() {
		return protocolNames[v]
	}
	return "unrecognized"
}

// Known reports whether v is a supported version.
func (v ProtocolVersion) Known() bool {
	return v > ProtocolUnrecognized && int(v) < len(protocolNames)
}

// UsesIntermediateKey reports whether tokens of this version carry an
// intermediate signing key.
func (v ProtocolVersion) UsesIntermediateKey() bool {
	return v == ECv2 || v == ECv2SigningOnly
}

// Encrypted reports whether the signed message of this version is an
// encrypted envelope.
func (v ProtocolVersion) Encrypted() bool {
	return v == ECv1 || v == ECv2
}

// KeySizes returns the symmetric and MAC key sizes derived for a message of
// this version.
func (v ProtocolVersion) KeySizes() (symmetric, mac int) {
	if v == ECv2 {
		return SymmetricKeySizeECv2, MACKeySizeECv2
	}
	return SymmetricKeySize, MACKeySize
}

// Token is the outer JSON object handed to the recipient.
type Token struct {
	// ProtocolVersion is the wire version string, e.g. "ECv2".
	ProtocolVersion string `json:"protocolVersion"`
	// Signature is the base64 ASN.1 ECDSA signature over the signed string.
	Signature string `json:"signature"`
	// SignedMessage is the exact JSON text that was signed.
	SignedMessage string `json:"signedMessage"`
	// IntermediateSigningKey is present for ECv2 and ECv2SigningOnly.
	IntermediateSigningKey *IntermediateSigningKey `json:"intermediateSigningKey,omitempty"`
}

// IntermediateSigningKey is a short-lived key signed by a root key.
type IntermediateSigningKey struct {
	// SignedKey is the exact JSON text of a KeyWithExpiration.
	SignedKey string `json:"signedKey"`
	// Signatures are base64 ASN.1 signatures over the key signed string.
	Signatures []string `json:"signatures"`
}

// KeyWithExpiration is the decoded form of IntermediateSigningKey.SignedKey.
type KeyWithExpiration struct {
	KeyValue      string     `json:"keyValue"`
	KeyExpiration UnixMillis `json:"keyExpiration"`
}

// SignedMessage is the decoded encrypted envelope.
type SignedMessage struct {
	EncryptedMessage   string `json:"encryptedMessage"`
	EphemeralPublicKey string `json:"ephemeralPublicKey"`
	Tag                string `json:"tag"`
}

// Version returns the parsed protocol version of the token.
func (t *Token) Version() ProtocolVersion {
	return ParseProtocolVersion(t.ProtocolVersion)
}

// ParseToken decodes a token and checks that the fields every version
// needs are present. The protocol version itself is not validated here.
func ParseToken(data []byte) (*Token, error) {
	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	switch {
	case token.ProtocolVersion == "":
		return nil, fmt.Errorf("%w: missing protocolVersion", ErrMalformedToken)
	case token.Signature == "":
		return nil, fmt.Errorf("%w: missing signature", ErrMalformedToken)
	case token.SignedMessage == "":
		return nil, fmt.Errorf("%w: missing signedMessage", ErrMalformedToken)
	}

	return &token, nil
}

// ParseSignedMessage decodes the encrypted envelope of an ECv1 or ECv2 token.
func ParseSignedMessage(s string) (*SignedMessage, error) {
	var msg SignedMessage
	if err := json.Unmarshal([]byte(s), &msg); err != nil {
		return nil, fmt.Errorf("%w: signedMessage: %v", ErrMalformedToken, err)
	}

	switch {
	case msg.EncryptedMessage == "":
		return nil, fmt.Errorf("%w: missing encryptedMessage", ErrMalformedToken)
	case msg.EphemeralPublicKey == "":
		return nil, fmt.Errorf("%w: missing ephemeralPublicKey", ErrMalformedToken)
	case msg.Tag == "":
		return nil, fmt.Errorf("%w: missing tag", ErrMalformedToken)
	}

	return &msg, nil
}

// ParseKeyWithExpiration decodes the signedKey text of an intermediate key.
func ParseKeyWithExpiration(s string) (*KeyWithExpiration, error) {
	var key KeyWithExpiration
	if err := json.Unmarshal([]byte(s), &key); err != nil {
		return nil, fmt.Errorf("%w: signedKey: %v", ErrMalformedToken, err)
	}
	if key.KeyValue == "" {
		return nil, fmt.Errorf("%w: missing keyValue", ErrMalformedToken)
	}
	return &key, nil
}

// UnixMillis is a Unix timestamp in milliseconds. On the wire it appears
// either as a decimal string or as a JSON number. Zero means absent.
type UnixMillis int64

// UnmarshalJSON accepts a quoted decimal string, a number, or null.
func (m *UnixMillis) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}

	raw := string(data)
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*m = 0
			return nil
		}
		raw = s
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("keyExpiration %q: %w", raw, err)
	}
	*m = UnixMillis(ms)
	return nil
}

// MarshalJSON writes the decimal string form used by the key directory.
func (m UnixMillis) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatInt(int64(m), 10))
}

// IsZero reports whether the timestamp is absent.
func (m UnixMillis) IsZero() bool {
	return m == 0
}

// Time converts m to a time.Time.
func (m UnixMillis) Time() time.Time {
	return time.UnixMilli(int64(m))
}

// Expired reports whether a present timestamp is at or before now. A key
// is valid only while now is strictly before its expiration.
func (m UnixMillis) Expired(now time.Time) bool {
	return m != 0 && now.UnixMilli() >= int64(m)
}
