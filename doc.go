// Package paymentdata unseals payment method tokens produced by Google Pay.
//
// A token is verified against Google's rotating root signing keys (ECv1
// directly, ECv2 through a short-lived intermediate key), then decrypted
// with one of the recipient's P-256 private keys using ECDH, HKDF-SHA256,
// HMAC-SHA256 and AES-CTR.
//
// Basic usage:
//
//	recipient, err := paymentdata.New("merchant:12345", paymentdata.WithTestEnvironment())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := recipient.AddPrivateKey(privateKeyBase64); err != nil {
//	    log.Fatal(err)
//	}
//
//	payload, err := recipient.Unseal(ctx, tokenJSON)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(payload)
//
// Signing keys are cached per protocol version and refreshed after seven
// days, or after the max-age announced by the key directory. Concurrent
// Unseal calls share a single refresh.
//
// Errors can be inspected with errors.Is against the Err* sentinels, or with
// errors.As against *SignatureVerificationError, *DecryptionError and
// *KeyFetchError.
package paymentdata
