package nlp

import (
	"fmt"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/jdkato/prose/v2"
)

// ProseTagger tokenizes and tags English text with prose and looks lemmas
// up in golem's English dictionary
type ProseTagger struct {
	lemmatizer *golem.Lemmatizer
	stopwords  Stopwords
}

// NewProseTagger loads the lemma dictionary. A nil stoplist means the
// built-in one.
func NewProseTagger(stopwords Stopwords) (*ProseTagger, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load lemmatizer: %w", err)
	}
	if stopwords == nil {
		stopwords = DefaultStopwords()
	}
	return &ProseTagger{lemmatizer: lem, stopwords: stopwords}, nil
}

// Analyze implements Tagger
func (p *ProseTagger) Analyze(text string) ([]Token, error) {
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("tag text: %w", err)
	}

	raw := doc.Tokens()
	tokens := make([]Token, 0, len(raw))
	for _, t := range raw {
		pos := UniversalTag(t.Tag)
		tokens = append(tokens, Token{
			Text:   t.Text,
			IsStop: p.stopwords.Contains(t.Text),
			POS:    pos,
			Lemma:  p.lemma(t.Text, pos),
		})
	}
	return tokens, nil
}

func (p *ProseTagger) lemma(word, pos string) string {
	lower := strings.ToLower(word)
	if pos == "PROPN" {
		return lower
	}
	return pickLemma(lower, pos, p.lemmatizer.Lemmas(lower))
}

// pickLemma chooses among golem's base forms using the tag, since the
// dictionary itself has no part of speech. "building" lists both itself
// and "build": a verb takes the form that differs from the word, a noun
// keeps the word when it is a base form of its own.
func pickLemma(word, pos string, candidates []string) string {
	if len(candidates) == 0 {
		return word
	}
	switch pos {
	case "VERB", "AUX":
		for _, c := range candidates {
			if c != word {
				return c
			}
		}
	case "NOUN":
		for _, c := range candidates {
			if c == word {
				return c
			}
		}
	}
	return candidates[0]
}
