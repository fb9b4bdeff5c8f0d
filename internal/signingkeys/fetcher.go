package signingkeys

import (
	"context"
	"fmt"

	"github.com/paymentdata/client-go/internal/api"
)

// Fetcher retrieves the signing key directory. *api.Client is the network
// implementation.
type Fetcher interface {
	FetchKeyDirectory(ctx context.Context) (*api.KeyDirectory, error)
}

var (
	_ Fetcher = (*api.Client)(nil)
	_ Fetcher = (*StaticFetcher)(nil)
)

// StaticFetcher serves a fixed key directory document, typically test data.
type StaticFetcher struct {
	data []byte
}

// NewStaticFetcher validates data as a key directory document and returns
// a fetcher that serves it.
func NewStaticFetcher(data []byte) (*StaticFetcher, error) {
	if _, err := api.ParseKeyDirectory(data); err != nil {
		return nil, fmt.Errorf("static key directory: %w", err)
	}
	return &StaticFetcher{data: append([]byte(nil), data...)}, nil
}

// FetchKeyDirectory decodes the stored document. The result never carries
// a max-age.
func (f *StaticFetcher) FetchKeyDirectory(ctx context.Context) (*api.KeyDirectory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return api.ParseKeyDirectory(f.data)
}
