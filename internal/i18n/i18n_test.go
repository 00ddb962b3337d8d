//go:build !integration

package i18n

import (
	"go/ast"
	"go/parser"
	"go/token"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"testing/fstest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTranslator_Singleton(t *testing.T) {
	assert.Same(t, GetTranslator(), GetTranslator())
	assert.Equal(t, []string{"en", "ro"}, GetTranslator().Locales())
}

func TestTranslator_Translate(t *testing.T) {
	tr := NewTranslator()

	tests := []struct {
		name   string
		key    string
		locale string
		want   string
	}{
		{"english", ErrKeyQuoteNotFound, "en", "Quote not found"},
		{"romanian", ErrKeyQuoteNotFound, "ro", "Oferta nu a fost găsită"},
		{"empty locale uses default", ErrKeyInvalidRequest, "", "Invalid request"},
		{"unknown locale uses default", ErrKeyInvalidRequest, "de", "Invalid request"},
		{"unknown key returns key", "error.nope", "ro", "error.nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Translate(tt.key, tt.locale))
		})
	}
}

func TestTranslator_Format(t *testing.T) {
	tr := NewTranslator()

	tests := []struct {
		name   string
		key    string
		locale string
		args   []string
		want   string
	}{
		{
			name:   "two placeholders",
			key:    "validation.duplicate_asset",
			locale: "en",
			args:   []string{"Parking P1", "PK-01"},
			want:   "The product Parking P1 (PK-01) can be added only once, either as an option or as a standalone product.",
		},
		{
			name:   "romanian progress",
			key:    "annex.progress.merging",
			locale: "ro",
			args:   []string{"7"},
			want:   "Se îmbină 7 documente...",
		},
		{
			name:   "missing args leave placeholders",
			key:    "annex.warning.apartment",
			locale: "en",
			want:   "Could not download: {0}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Format(tt.key, tt.locale, tt.args...))
		})
	}
}

func TestTranslator_Negotiate(t *testing.T) {
	tr := NewTranslator()

	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"ro", "ro"},
		{"ro-RO,ro;q=0.9,en;q=0.8", "ro"},
		{"en-US,ro;q=0.5", "en"},
		{"de-DE,ro;q=0.7,en;q=0.3", "ro"},
		{"en;q=0.2,ro;q=0.8", "ro"},
		{"ro;q=0,en", "en"},
		{"fr,de", "en"},
		{"*", "en"},
		{" RO ; q=0.9 ", "ro"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Negotiate(tt.header))
		})
	}
}

func TestGetLocale(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/quotes/Q1/annex", nil)
	c.Request.Header.Set(AcceptLanguageHeader, "ro-RO,ro;q=0.9")

	assert.Equal(t, "ro", GetLocale(c))
}

func TestLoadTranslator(t *testing.T) {
	tests := []struct {
		name    string
		fsys    fstest.MapFS
		wantErr string
	}{
		{
			name: "valid catalogs",
			fsys: fstest.MapFS{
				"en.yaml": {Data: []byte("error.timeout: \"Timed out\"\n")},
				"ro.yaml": {Data: []byte("error.timeout: \"Expirat\"\n")},
			},
		},
		{
			name:    "malformed yaml",
			fsys:    fstest.MapFS{"en.yaml": {Data: []byte("error.timeout: [unclosed\n")}},
			wantErr: "parse catalog en.yaml",
		},
		{
			name:    "default locale missing",
			fsys:    fstest.MapFS{"ro.yaml": {Data: []byte("a: b\n")}},
			wantErr: `catalog "en" is missing`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := LoadTranslator(tt.fsys)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Expirat", tr.Translate("error.timeout", "ro"))
		})
	}
}

// declaredKeys returns every string constant declared in keys.go.
func declaredKeys(t *testing.T) []string {
	t.Helper()
	file, err := parser.ParseFile(token.NewFileSet(), "keys.go", nil, 0)
	require.NoError(t, err)

	var keys []string
	ast.Inspect(file, func(n ast.Node) bool {
		lit, ok := n.(*ast.BasicLit)
		if ok && lit.Kind == token.STRING {
			v, err := strconv.Unquote(lit.Value)
			require.NoError(t, err)
			keys = append(keys, v)
		}
		return true
	})
	return keys
}

func TestCatalogs_CoverEveryKey(t *testing.T) {
	tr := NewTranslator()
	keys := declaredKeys(t)
	require.NotEmpty(t, keys)

	for _, locale := range tr.Locales() {
		for _, key := range keys {
			_, ok := tr.messages[locale][key]
			assert.True(t, ok, "%s catalog is missing %s", locale, key)
		}
		assert.Len(t, tr.messages[locale], len(tr.messages[DefaultLocale]), "%s catalog size", locale)
	}
}
