package api

import (
	"context"
	"time"

	"github.com/pquerna/cachecontrol/cacheobject"
)

// FetchKeyDirectory retrieves and decodes the signing key directory.
func (c *Client) FetchKeyDirectory(ctx context.Context) (*KeyDirectory, error) {
	resp, err := c.get(ctx)
	if err != nil {
		return nil, err
	}

	dir, err := ParseKeyDirectory(resp.body)
	if err != nil {
		return nil, err
	}
	dir.MaxAge = maxAge(resp.header.Get("Cache-Control"))
	return dir, nil
}

// maxAge returns the max-age directive of a Cache-Control header, or zero
// when it is absent, malformed, or the response must not be cached.
func maxAge(header string) time.Duration {
	if header == "" {
		return 0
	}
	directives, err := cacheobject.ParseResponseCacheControl(header)
	if err != nil || directives.NoStore {
		return 0
	}
	if directives.MaxAge <= 0 {
		return 0
	}
	return time.Duration(directives.MaxAge) * time.Second
}
