// Package preprocess holds the format-aware HTML normalizers that run before
// quotation extraction, and the registry mapping each detected format to the
// ordered normalizers that apply to it.
package preprocess

import (
	"github.com/dtnitsch/email-reply-parser/models"
	"github.com/dtnitsch/email-reply-parser/pkg/htmldoc"
)

// Normalizer rewrites a parsed document in place. It reports whether anything
// changed. Normalizers must be idempotent.
type Normalizer interface {
	Name() string
	Normalize(doc *htmldoc.Document) bool
}

// Registry maps a detected format to its ordered normalizers. It is read-only
// once built.
type Registry struct {
	chains map[models.DetectedFormat][]Normalizer
}

// NewRegistry builds a registry from an explicit table.
func NewRegistry(table map[models.DetectedFormat][]Normalizer) *Registry {
	chains := make(map[models.DetectedFormat][]Normalizer, len(table))
	for format, list := range table {
		chains[format] = append([]Normalizer(nil), list...)
	}
	return &Registry{chains: chains}
}

// DefaultRegistry returns the standard table.
func DefaultRegistry() *Registry {
	return NewRegistry(map[models.DetectedFormat][]Normalizer{
		models.FormatO365:           {O365Merge{}, WordCleanup{}},
		models.FormatOutlookDesktop: {OutlookDivider{}, WordCleanup{}},
		models.FormatWordGenerated:  {WordCleanup{}},
	})
}

// For returns the normalizers registered for format.
func (r *Registry) For(format models.DetectedFormat) []Normalizer {
	return r.chains[format]
}

// Without returns a copy of the registry with the named normalizer removed
// from every chain.
func (r *Registry) Without(name string) *Registry {
	table := make(map[models.DetectedFormat][]Normalizer, len(r.chains))
	for format, list := range r.chains {
		for _, n := range list {
			if n.Name() != name {
				table[format] = append(table[format], n)
			}
		}
	}
	return NewRegistry(table)
}

// Normalize applies the chain for format to src. Input that cannot be parsed
// or is left untouched by every normalizer is returned unchanged. applied lists
// the normalizers that changed something.
func (r *Registry) Normalize(src string, format models.DetectedFormat) (out string, applied []string) {
	chain := r.For(format)
	if len(chain) == 0 {
		return src, nil
	}

	doc, err := htmldoc.Parse(src)
	if err != nil {
		return src, nil
	}

	for _, n := range chain {
		if n.Normalize(doc) {
			applied = append(applied, n.Name())
		}
	}
	if len(applied) == 0 {
		return src, nil
	}

	rendered, err := doc.Render()
	if err != nil {
		return src, nil
	}
	return rendered, applied
}
