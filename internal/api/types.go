package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/paymentdata/client-go/internal/apierrors"
	"github.com/paymentdata/client-go/internal/crypto"
)

// KeyDirectory is the signing key document served at the keys URL.
type KeyDirectory struct {
	Keys []SigningKey `json:"keys"`

	// MaxAge is the Cache-Control max-age of the response, zero when the
	// server sent none. Not part of the JSON document.
	MaxAge time.Duration `json:"-"`
}

// SigningKey is one root signing key of the directory.
type SigningKey struct {
	KeyValue        string            `json:"keyValue"`
	ProtocolVersion string            `json:"protocolVersion"`
	KeyExpiration   crypto.UnixMillis `json:"keyExpiration,omitempty"`
}

// ParseKeyDirectory decodes a key directory document.
func ParseKeyDirectory(data []byte) (*KeyDirectory, error) {
	var dir KeyDirectory
	if err := json.Unmarshal(data, &dir); err != nil {
		return nil, fmt.Errorf("%w: %v", apierrors.ErrInvalidDirectory, err)
	}
	if dir.Keys == nil {
		return nil, fmt.Errorf("%w: missing keys", apierrors.ErrInvalidDirectory)
	}
	return &dir, nil
}
