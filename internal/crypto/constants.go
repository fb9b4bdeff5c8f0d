package crypto

import "crypto/sha256"

const (
	// HKDFInfo is the info string fed to HKDF when deriving the message keys.
	HKDFInfo = "Google"

	// GoogleSenderID is the sender identifier for payment tokens and for the
	// ECv2 intermediate signing key.
	GoogleSenderID = "Google"
	// PassesSenderID is the sender identifier that signs ECv2SigningOnly
	// intermediate keys.
	PassesSenderID = "GooglePayPasses"

	// SharedSecretSize is the size of a P-256 ECDH shared secret in bytes.
	SharedSecretSize = 32

	// SymmetricKeySize is the AES key size used by ECv1 messages.
	SymmetricKeySize = 16
	// MACKeySize is the HMAC key size used by ECv1 messages.
	MACKeySize = 16

	// SymmetricKeySizeECv2 is the AES key size used by ECv2 messages.
	SymmetricKeySizeECv2 = 32
	// MACKeySizeECv2 is the HMAC key size used by ECv2 messages.
	MACKeySizeECv2 = 32

	// TagSize is the size of an HMAC-SHA256 tag in bytes.
	TagSize = sha256.Size

	// UncompressedPointSize is the size of an uncompressed P-256 point.
	UncompressedPointSize = 65
	// CompressedPointSize is the size of a compressed P-256 point.
	CompressedPointSize = 33

	// Directory keys are accepted only in these two DER lengths: the
	// compressed and uncompressed SubjectPublicKeyInfo encodings of a
	// P-256 point.
	compressedSPKISize   = 59
	uncompressedSPKISize = 91

	lengthPrefixSize = 4
)
