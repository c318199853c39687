// Package i18n holds the localized user-facing messages returned in store
// results. Catalogs are embedded YAML files registered with x/text/message.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale is used when a requested locale has no catalog.
const BaseLocale = "en"

// DefaultLocale matches the storefront's primary audience.
const DefaultLocale = "ar"

//go:embed locales/*.yaml
var localesFS embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

var (
	loadOnce sync.Once
	builder  *catalog.Builder
	locales  []string
	loadErr  error
)

func load() {
	builder = catalog.NewBuilder(catalog.Fallback(language.MustParse(BaseLocale)))

	paths, err := fs.Glob(localesFS, "locales/*.yaml")
	if err != nil {
		loadErr = fmt.Errorf("glob locale catalogs: %w", err)
		return
	}
	sort.Strings(paths)

	for _, path := range paths {
		data, err := fs.ReadFile(localesFS, path)
		if err != nil {
			loadErr = fmt.Errorf("read catalog %s: %w", path, err)
			return
		}

		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			loadErr = fmt.Errorf("parse catalog %s: %w", path, err)
			return
		}

		tag, err := language.Parse(strings.TrimSpace(file.Locale))
		if err != nil {
			loadErr = fmt.Errorf("catalog %s: parse locale %q: %w", path, file.Locale, err)
			return
		}

		for key, value := range file.Messages {
			if err := builder.SetString(tag, key, value); err != nil {
				loadErr = fmt.Errorf("catalog %s: set %q: %w", path, key, err)
				return
			}
		}
		locales = append(locales, tag.String())
	}
}

// Locales returns the locales with an embedded catalog.
func Locales() []string {
	loadOnce.Do(load)
	out := make([]string, len(locales))
	copy(out, locales)
	return out
}

// Supported reports whether locale has an embedded catalog.
func Supported(locale string) bool {
	tag, err := language.Parse(locale)
	if err != nil {
		return false
	}
	base, _ := tag.Base()
	for _, l := range Locales() {
		if l == tag.String() || l == base.String() {
			return true
		}
	}
	return false
}

// Printer formats catalog messages for one locale.
type Printer struct {
	locale string
	p      *message.Printer
}

// New returns a Printer for locale. Unknown or invalid locales fall back to
// BaseLocale.
func New(locale string) (*Printer, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}

	tag, err := language.Parse(locale)
	if err != nil || !Supported(locale) {
		tag = language.MustParse(BaseLocale)
	}

	return &Printer{
		locale: tag.String(),
		p:      message.NewPrinter(tag, message.Catalog(builder)),
	}, nil
}

// MustNew is like New but panics when the embedded catalogs are broken.
func MustNew(locale string) *Printer {
	p, err := New(locale)
	if err != nil {
		panic(err)
	}
	return p
}

// Locale returns the locale the printer resolved to.
func (p *Printer) Locale() string {
	return p.locale
}

// T returns the localized message for key, formatted with args.
func (p *Printer) T(key string, args ...any) string {
	return p.p.Sprintf(key, args...)
}
