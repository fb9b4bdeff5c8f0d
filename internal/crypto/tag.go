package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
)

// ComputeTag returns HMAC-SHA256(macKey, data).
func ComputeTag(macKey, data []byte) []byte {
	mac := hmac.New(sha256.New, macKey)
	mac.Write(data)
	return mac.Sum(nil)
}

// VerifyTag reports whether tag is the HMAC-SHA256 of data. The comparison
// is constant time.
func VerifyTag(macKey, data, tag []byte) bool {
	return hmac.Equal(ComputeTag(macKey, data), tag)
}
