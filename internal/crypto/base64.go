package crypto

import (
	"encoding/base64"
)

// ToBase64 encodes bytes to standard base64 with padding, the encoding used
// for every binary field of a payment token.
func ToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 decodes base64 in any of the standard or URL-safe alphabets,
// with or without padding. Tokens in the wild use standard padded base64,
// but the other forms are accepted for keys pasted from other tooling.
func DecodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}

	data, err = base64.RawStdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}

	data, err = base64.URLEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}

	return base64.RawURLEncoding.DecodeString(s)
}
