// Package middleware provides HTTP middleware components for the quote configurator.
package middleware

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// Annex and proforma PDFs are already deflated and the metrics handler negotiates its
// own encoding.
var (
	uncompressedPaths    = []string{"/metrics"}
	uncompressedPatterns = []string{`^/api/quotes/[^/]+/(annex|proforma)$`}
)

// Compression gzips responses for clients that accept it.
func Compression() gin.HandlerFunc {
	return gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths(uncompressedPaths),
		gzip.WithExcludedPathsRegexs(uncompressedPatterns),
		gzip.WithExcludedExtensions([]string{".pdf"}),
	)
}
