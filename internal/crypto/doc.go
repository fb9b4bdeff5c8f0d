// Package crypto implements the cryptographic core of payment token
// unsealing: key codecs, signature verification, key derivation and
// message decryption.
//
// # Algorithm Suite
//
//   - ECDSA over P-256 with SHA-256 and ASN.1 DER signatures, for the root
//     key, intermediate key and message signatures.
//
//   - ECDH over P-256 between the recipient key and the sender's ephemeral
//     key.
//
//   - HKDF-SHA256 (RFC 5869) with no salt and info "Google", over the
//     ephemeral point bytes followed by the shared secret. ECv1 derives a
//     16-byte AES key and a 16-byte MAC key; ECv2 derives 32 and 32.
//
//   - HMAC-SHA256 over the ciphertext, compared in constant time.
//
//   - AES in counter mode with an all-zero IV.
//
// # Signed Strings
//
// Every signature covers a sequence of strings, each written as a 4-byte
// little-endian length followed by its bytes (see [SignedString]). A message
// signature covers sender, recipient, protocol version and the signed
// message. An ECv2 intermediate key signature covers the sender, the
// protocol version and the signed key.
//
// # Ordering
//
// [Verifier.VerifyMessage] must succeed before any key derivation or
// decryption is attempted. [DerivedKeys.Open] checks the tag before it
// decrypts and reports every mismatch as [ErrDecryptionFailed].
//
// # Key Encodings
//
// Signing keys are X.509 SubjectPublicKeyInfo DER on the named P-256 curve,
// with either a compressed or uncompressed point. Recipient keys are PKCS#8
// DER, or a raw hex scalar. Keys on any other curve fail with
// [ErrCurveMismatch].
package crypto
