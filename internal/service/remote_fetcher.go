package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/guttosm/quote-configurator/internal/circuitbreaker"
)

const maxRemoteDocumentSize = 50 << 20

var (
	// ErrRemoteDocument is returned when a remote server answers with a non-2xx status.
	ErrRemoteDocument = errors.New("remote document unavailable")
	// ErrRemoteDocumentTooLarge is returned when a download exceeds the size limit.
	ErrRemoteDocumentTooLarge = errors.New("remote document too large")
)

// RemoteDocumentFetcher downloads apartment documents over HTTP behind a
// circuit breaker.
type RemoteDocumentFetcher struct {
	client  *http.Client
	breaker *circuitbreaker.CircuitBreaker
	maxSize int64
}

// NewRemoteDocumentFetcher creates a fetcher with the given per-download timeout.
// A nil breaker gets the default configuration.
func NewRemoteDocumentFetcher(timeout time.Duration, breaker *circuitbreaker.CircuitBreaker) *RemoteDocumentFetcher {
	if breaker == nil {
		cfg := circuitbreaker.DefaultConfig()
		cfg.Name = "remote-documents"
		breaker = circuitbreaker.New(cfg)
	}
	return &RemoteDocumentFetcher{
		client:  &http.Client{Timeout: timeout},
		breaker: breaker,
		maxSize: maxRemoteDocumentSize,
	}
}

// Fetch downloads url. A 404 yields no document and no error.
func (f *RemoteDocumentFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return circuitbreaker.Call(ctx, f.breaker, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		if resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("%w: %s returned %d", ErrRemoteDocument, url, resp.StatusCode)
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > f.maxSize {
			return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrRemoteDocumentTooLarge, url, f.maxSize)
		}
		return data, nil
	})
}
