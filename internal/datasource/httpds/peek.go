package httpds

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// FetchFirstBytes retrieves up to n bytes from url. A Range header asks the
// server for just the prefix; a LimitedReader caps the read even when the
// server ignores it. Used for header checks that should not download a whole
// extract.
func (c *Client) FetchFirstBytes(ctx context.Context, url string, n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("httpds: n must be > 0")
	}

	h := make(http.Header)
	h.Set("Range", fmt.Sprintf("bytes=0-%d", n-1))

	resp, err := c.Get(ctx, url, h)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(&io.LimitedReader{R: resp.Body, N: int64(n)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
