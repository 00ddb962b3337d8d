// Package i18n translates user-facing messages. Catalogs live in
// locales/<locale>.yaml as flat key to message maps.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultLocale is used when the caller asks for nothing we carry.
	DefaultLocale = "en"
	// AcceptLanguageHeader is the HTTP header name for language preference.
	AcceptLanguageHeader = "Accept-Language"
)

//go:embed locales/*.yaml
var embeddedLocales embed.FS

var (
	defaultTranslator *Translator
	translatorOnce    sync.Once
)

// Translator handles message translation for different locales.
type Translator struct {
	messages map[string]map[string]string
}

// LoadTranslator reads every *.yaml catalog under the root of fsys. The file
// name without extension is the locale. DefaultLocale must be present.
func LoadTranslator(fsys fs.FS) (*Translator, error) {
	files, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, err
	}

	t := &Translator{messages: make(map[string]map[string]string, len(files))}
	for _, name := range files {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", name, err)
		}
		catalog := make(map[string]string)
		if err := yaml.Unmarshal(raw, &catalog); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", name, err)
		}
		t.messages[strings.TrimSuffix(path.Base(name), ".yaml")] = catalog
	}

	if _, ok := t.messages[DefaultLocale]; !ok {
		return nil, fmt.Errorf("catalog %q is missing", DefaultLocale)
	}
	return t, nil
}

// NewTranslator creates a translator over the embedded catalogs.
func NewTranslator() *Translator {
	sub, err := fs.Sub(embeddedLocales, "locales")
	if err != nil {
		panic(err)
	}
	t, err := LoadTranslator(sub)
	if err != nil {
		panic(fmt.Sprintf("i18n: embedded catalogs: %v", err))
	}
	return t
}

// GetTranslator returns the process-wide translator.
func GetTranslator() *Translator {
	translatorOnce.Do(func() {
		defaultTranslator = NewTranslator()
	})
	return defaultTranslator
}

// Locales lists the locales the translator carries, sorted.
func (t *Translator) Locales() []string {
	out := make([]string, 0, len(t.messages))
	for loc := range t.messages {
		out = append(out, loc)
	}
	sort.Strings(out)
	return out
}

// Supports reports whether locale has a catalog.
func (t *Translator) Supports(locale string) bool {
	_, ok := t.messages[locale]
	return ok
}

// Translate returns the message for key in locale, falling back to
// DefaultLocale and then to the key itself.
func (t *Translator) Translate(key, locale string) string {
	if msg, ok := t.messages[locale][key]; ok {
		return msg
	}
	if msg, ok := t.messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Format translates key and replaces positional placeholders {0}, {1}, ... with args.
func (t *Translator) Format(key, locale string, args ...string) string {
	msg := t.Translate(key, locale)
	for i, arg := range args {
		msg = strings.ReplaceAll(msg, "{"+strconv.Itoa(i)+"}", arg)
	}
	return msg
}

// GetLocale picks the best supported locale from Accept-Language.
func GetLocale(c *gin.Context) string {
	return GetTranslator().Negotiate(c.GetHeader(AcceptLanguageHeader))
}

type languageRange struct {
	tag string
	q   float64
}

// Negotiate returns the supported locale with the highest quality in an
// Accept-Language value, e.g. "ro-RO,ro;q=0.9,en;q=0.8". Region subtags are
// ignored. Ties keep header order.
func (t *Translator) Negotiate(acceptLanguage string) string {
	var ranges []languageRange
	for _, part := range strings.Split(acceptLanguage, ",") {
		fields := strings.Split(part, ";")
		tag := strings.ToLower(strings.TrimSpace(fields[0]))
		if i := strings.IndexByte(tag, '-'); i > 0 {
			tag = tag[:i]
		}
		if tag == "" || tag == "*" {
			continue
		}
		q := 1.0
		for _, param := range fields[1:] {
			param = strings.TrimSpace(param)
			if v, ok := strings.CutPrefix(param, "q="); ok {
				if parsed, err := strconv.ParseFloat(v, 64); err == nil {
					q = parsed
				}
			}
		}
		if q > 0 {
			ranges = append(ranges, languageRange{tag: tag, q: q})
		}
	}

	sort.SliceStable(ranges, func(i, j int) bool { return ranges[i].q > ranges[j].q })
	for _, r := range ranges {
		if t.Supports(r.tag) {
			return r.tag
		}
	}
	return DefaultLocale
}
