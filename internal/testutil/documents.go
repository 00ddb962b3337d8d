//go:build integration

package testutil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/require"
)

// SamplePDF renders a one-page document with the given title.
func SamplePDF(t *testing.T, title string) []byte {
	t.Helper()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, title)

	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

// DocumentServer serves floor plans and other remote documents by path.
// Unknown paths answer 404.
type DocumentServer struct {
	*httptest.Server
	requests atomic.Int64
}

// NewDocumentServer starts a server for docs, keyed by request path. It is
// closed when the test ends.
func NewDocumentServer(t *testing.T, docs map[string][]byte) *DocumentServer {
	t.Helper()

	s := &DocumentServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		data, ok := docs[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(data)
	}))
	t.Cleanup(s.Close)
	return s
}

// Requests returns the number of requests served so far.
func (s *DocumentServer) Requests() int64 {
	return s.requests.Load()
}
