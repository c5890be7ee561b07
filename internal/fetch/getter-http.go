package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/lockmirror/lockmirror/internal/utils"
)

// Getter opens a streaming read of a record's source URL.
type Getter interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

type HTTPGetter struct {
	Client *utils.MirrorHTTPClient
}

func (g *HTTPGetter) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating GET request: %v", err)
	}
	req.Header.Set("Connection", "keep-alive")
	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing GET request: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return resp.Body, nil
}
