package nlp

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/ppiankov/wikitopics/internal/model"
)

// Options controls which tokens survive normalization
type Options struct {
	Lemmatize      bool
	AllowedPOS     []string // nil keeps every part of speech
	MinLength      int      // in runes
	ExtraStopwords []string
}

// OptionsFromConfig converts the normalize section of the configuration
func OptionsFromConfig(cfg model.NormalizeConfig) Options {
	return Options{
		Lemmatize:      cfg.Lemmatize,
		AllowedPOS:     cfg.AllowedPOS,
		MinLength:      cfg.MinLength,
		ExtraStopwords: cfg.ExtraStopwords,
	}
}

// Normalizer filters and lemmatizes the tokens of a document
type Normalizer struct {
	tagger Tagger
}

// NewNormalizer creates a normalizer backed by tagger
func NewNormalizer(tagger Tagger) *Normalizer {
	return &Normalizer{tagger: tagger}
}

// Normalize returns the surviving tokens of doc, in order and lowercase.
// The same input and options always give the same output.
func (n *Normalizer) Normalize(doc model.Document, opts Options) (model.TokenList, error) {
	out := model.TokenList{}
	if len(doc) == 0 {
		return out, nil
	}

	extra := NewStopwords(opts.ExtraStopwords)
	var allowed map[string]bool
	if opts.AllowedPOS != nil {
		allowed = make(map[string]bool, len(opts.AllowedPOS))
		for _, p := range opts.AllowedPOS {
			allowed[strings.ToUpper(p)] = true
		}
	}

	for i, text := range doc {
		if strings.TrimSpace(text) == "" {
			continue
		}

		tokens, err := n.tagger.Analyze(norm.NFC.String(text))
		if err != nil {
			return nil, fmt.Errorf("analyze section %d: %w", i, err)
		}

		for _, t := range tokens {
			if utf8.RuneCountInString(t.Text) < opts.MinLength || t.IsStop || extra.Contains(t.Text) {
				continue
			}
			if !hasWordRune(t.Text) {
				continue
			}
			if allowed != nil && !allowed[t.POS] {
				continue
			}

			form := strings.ToLower(t.Text)
			if opts.Lemmatize && t.Lemma != "" {
				form = strings.ToLower(t.Lemma)
			}
			if utf8.RuneCountInString(form) < opts.MinLength || extra.Contains(form) {
				continue
			}
			out = append(out, form)
		}
	}
	return out, nil
}

func hasWordRune(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}
