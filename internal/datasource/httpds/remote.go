package httpds

import (
	"context"
	"fmt"
	"io"
)

// Remote is an extract source backed by one or more HTTP URLs. It satisfies
// the pipeline's Source contract the same way a local directory does.
type Remote struct {
	client *Client
	urls   []string
}

// NewRemote builds a Remote over the given URLs.
func NewRemote(cfg Config, urls ...string) *Remote {
	return &Remote{client: NewClient(cfg), urls: urls}
}

// Resolve returns the configured URLs in order.
func (r *Remote) Resolve() ([]string, error) {
	if len(r.urls) == 0 {
		return nil, fmt.Errorf("httpds: no urls configured")
	}
	return r.urls, nil
}

// Open streams one extract. The returned body is the download stream; the
// caller closes it.
func (r *Remote) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	resp, err := r.client.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// FileName maps a URL onto the provenance label recorded with each row.
func (r *Remote) FileName(url string) string {
	return FileLabel(url)
}

// Peek fetches up to n leading bytes of one extract for header checks.
func (r *Remote) Peek(ctx context.Context, url string, n int) ([]byte, error) {
	return r.client.FetchFirstBytes(ctx, url, n)
}
