package tokentest

// Reference tokens produced by the production sender, with the recipient
// keys and key directories they verify against.
const (
	// RecipientPrivateKey decrypts ECv1Token. ECv2Token decrypts under one
	// of RecipientPrivateKey and AlternateRecipientPrivateKey.
	RecipientPrivateKey = "MIGHAgEAMBMGByqGSM49AgEGCCqGSM49AwEHBG0wawIBAQQgCPSuFr4iSIaQprjjchHPyDu2NXFe0vDBoTpPkYaK9dehRANCAATnaFz/vQKuO90pxsINyVNWojabHfbx9qIJ6uD7Q7ZSxmtyo/Ez3/o2kDT8g0pIdyVIYktCsq65VoQIDWSh2Bdm"

	// RecipientPrivateKeyHex is the scalar of RecipientPrivateKey.
	RecipientPrivateKeyHex = "08f4ae16be22488690a6b8e37211cfc83bb635715ed2f0c1a13a4f91868af5d7"

	// AlternateRecipientPrivateKey is a second registered recipient key.
	AlternateRecipientPrivateKey = "MIGHAgEAMBMGByqGSM49AgEGCCqGSM49AwEHBG0wawIBAQQgOUIzccyJ3rTx6SVmXrWdtwUP0NU26nvc8KIYw2GmYZKhRANCAAR5AjmTNAE93hQEQE+PryLlgr6Q7FXyNXoZRk+1Fikhq61mFhQ9s14MOwGBxd5O6Jwn/sdUrWxkYk3idtNEN1Rz"

	// ECv1KeyDirectory holds the root key that signed ECv1Token.
	ECv1KeyDirectory = `{"keys":[{"keyValue":"MFkwEwYHKoZIzj0CAQYIKoZIzj0DAQcDQgAEPYnHwS8uegWAewQtlxizmLFynwHcxRT1PK07cDA6/C4sXrVI1SzZCUx8U8S0LjMrT6ird/VW7be3Mz6t/srtRQ==","protocolVersion":"ECv1"}]}`

	// ECv2KeyDirectory holds the root key that signed the ECv2 intermediate keys.
	ECv2KeyDirectory = `{"keys":[{"keyValue":"MFkwEwYHKoZIzj0CAQYIKoZIzj0DAQcDQgAEvhuz8WZo0DhP7Lg1AQtpQpm2i7Gr6yBa+i6mVOwz3iepodYVDE9YGLzUwoL8AEsPUz/26Pg3lofL2u04/edeXg==","protocolVersion":"ECv2","keyExpiration":"2154841200000"}]}`

	// TokenTimeMillis is a clock reading at which both reference tokens are
	// valid.
	TokenTimeMillis int64 = 1542319793000

	// ECv1Recipient is the recipient ID ECv1Token was sealed for.
	ECv1Recipient = "someRecipient"

	// ECv1Token decrypts to ECv1Plaintext.
	ECv1Token = `{"protocolVersion":"ECv1","signedMessage":"{\"tag\":\"ZVwlJt7dU8Plk0+r8rPF8DmPTvDiOA1UAoNjDV+SqDE\\u003d\",\"ephemeralPublicKey\":\"BPhVspn70Zj2Kkgu9t8+ApEuUWsI/zos5whGCQBlgOkuYagOis7qsrcbQrcprjvTZO3XOU+Qbcc28FSgsRtcgQE\\u003d\",\"encryptedMessage\":\"12jUObueVTdy\"}","signature":"MEQCIDxBoUCoFRGReLdZ/cABlSSRIKoOEFoU3e27c14vMZtfAiBtX3pGMEpnw6mSAbnagCCgHlCk3NcFwWYEyxIE6KGZVA=="}`

	// ECv1SignedMessage is the signedMessage text of ECv1Token. The escaped
	// padding is part of the signed bytes.
	ECv1SignedMessage = `{"tag":"ZVwlJt7dU8Plk0+r8rPF8DmPTvDiOA1UAoNjDV+SqDE\u003d","ephemeralPublicKey":"BPhVspn70Zj2Kkgu9t8+ApEuUWsI/zos5whGCQBlgOkuYagOis7qsrcbQrcprjvTZO3XOU+Qbcc28FSgsRtcgQE\u003d","encryptedMessage":"12jUObueVTdy"}`

	// ECv1Signature is the signature of ECv1Token.
	ECv1Signature = "MEQCIDxBoUCoFRGReLdZ/cABlSSRIKoOEFoU3e27c14vMZtfAiBtX3pGMEpnw6mSAbnagCCgHlCk3NcFwWYEyxIE6KGZVA=="

	// ECv1EphemeralPublicKey, ECv1Ciphertext and ECv1Tag are the decoded
	// fields of ECv1SignedMessage.
	ECv1EphemeralPublicKey = "BPhVspn70Zj2Kkgu9t8+ApEuUWsI/zos5whGCQBlgOkuYagOis7qsrcbQrcprjvTZO3XOU+Qbcc28FSgsRtcgQE="
	ECv1Ciphertext         = "12jUObueVTdy"
	ECv1Tag                = "ZVwlJt7dU8Plk0+r8rPF8DmPTvDiOA1UAoNjDV+SqDE="

	// ECv1SymmetricKeyHex and ECv1MACKeyHex are the keys RecipientPrivateKey
	// derives from ECv1EphemeralPublicKey.
	ECv1SymmetricKeyHex = "59EDEC98018C6DD4CCAF1119AD247843"
	ECv1MACKeyHex       = "D5F72946AAE92D54697A4FF305B6F9F4"

	// ECv1Plaintext is the content of ECv1Token.
	ECv1Plaintext = "plaintext"

	// ECv2Recipient is the recipient ID ECv2Token was sealed for.
	ECv2Recipient = "gateway:ariane"

	// ECv2Token decrypts to ECv2Plaintext.
	ECv2Token = `{"protocolVersion":"ECv2","signature":"MEUCIG39tbaQPwJe28U+UMsJmxUBUWSkwlOv9Ibohacer+CoAiEA8Wuq3lLUCwLQ06D2kErxaMg3b/oLDFbd2gcFze1zDqU=","intermediateSigningKey":{"signedKey":"{\"keyExpiration\":\"1542394027316\",\"keyValue\":\"MFkwEwYHKoZIzj0CAQYIKoZIzj0DAQcDQgAE/1+3HBVSbdv+j7NaArdgMyoSAM43yRydzqdg1TxodSzA96Dj4Mc1EiKroxxunavVIvdxGnJeFViTzFvzFRxyCw\\u003d\\u003d\"}","signatures":["MEYCIQDcXCoB4fYJF3EolxrE2zB+7THZCfKA7cWxSztKceXTCgIhAN/d5eBgx/1A6qKBdH0IS7/aQ7dO4MuEt26OrLCUxZnl"]},"signedMessage":"{\"tag\":\"TjkIKzIOvCrFvjf7/aeeL8/FZJ3tigaNnerag68hIaw\\u003d\",\"ephemeralPublicKey\":\"BLJoTmxP2z7M2N6JmaN786aJcT/L/OJfuJKQdIXcceuBBZ00sf5nm2+snxAJxeJ4HYFTdNH4MOJrH58GNDJ9lJw\\u003d\",\"encryptedMessage\":\"mleAf23XkKjj\"}"}`

	// ECv2IntermediateExpirationMillis is the keyExpiration inside ECv2Token.
	ECv2IntermediateExpirationMillis int64 = 1542394027316

	// ECv2Plaintext is the content of ECv2Token.
	ECv2Plaintext = "plaintext"

	// ECv2VerifyTimeMillis is a clock reading at which the ECv2 verification
	// fields below are valid.
	ECv2VerifyTimeMillis int64 = 1542233393000

	// ECv2VerifyRecipient is the recipient the ECv2 verification fields were
	// signed for.
	ECv2VerifyRecipient = "merchant:12345"

	// ECv2VerifySignature, ECv2VerifySignedMessage, ECv2VerifySignedKey and
	// ECv2VerifyKeySignature make up a signed ECv2 token without an
	// encrypted payload meant for this package's keys.
	ECv2VerifySignature     = "MEQCIH6Q4OwQ0jAceFEkGF0JID6sJNXxOEi4r+mA7biRxqBQAiAondqoUpU/bdsrAOpZIsrHQS9nwiiNwOrr24RyPeHA0Q=="
	ECv2VerifySignedMessage = `{"tag":"jpGz1F1Bcoi/fCNxI9n7Qrsw7i7KHrGtTf3NrRclt+U\u003d","ephemeralPublicKey":"BJatyFvFPPD21l8/uLP46Ta1hsKHndf8Z+tAgk+DEPQgYTkhHy19cF3h/bXs0tWTmZtnNm+vlVrKbRU9K8+7cZs\u003d","encryptedMessage":"mKOoXwi8OavZ"}`
	ECv2VerifySignedKey     = `{"keyExpiration":"1542323393147","keyValue":"MFkwEwYHKoZIzj0CAQYIKoZIzj0DAQcDQgAE/1+3HBVSbdv+j7NaArdgMyoSAM43yRydzqdg1TxodSzA96Dj4Mc1EiKroxxunavVIvdxGnJeFViTzFvzFRxyCw\u003d\u003d"}`
	ECv2VerifyKeySignature  = "MEYCIQCO2EIi48s8VTH+ilMEpoXLFfkxAwHjfPSCVED/QDSHmQIhALLJmrUlNAY8hDQRV/y1iKZGsWpeNmIP+z+tCQHQxP0v"
)
