package report

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/pbudget/internal/model"
)

// Document is the machine-readable report: the payload plus its headers.
type Document struct {
	Title        string `json:"title" yaml:"title"`
	Currency     string `json:"currency" yaml:"currency"`
	model.Report `yaml:",inline"`
}

// NewDocument wraps r with the option headers.
func NewDocument(r model.Report, opts Options) Document {
	opts = opts.withDefaults()
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = opts.GeneratedAt
	}
	return Document{Title: opts.Title, Currency: opts.Currency, Report: r}
}

func renderJSON(w io.Writer, r model.Report, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(NewDocument(r, opts))
}

func renderYAML(w io.Writer, r model.Report, opts Options) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(r, opts)); err != nil {
		return err
	}
	return enc.Close()
}
