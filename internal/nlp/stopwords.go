package nlp

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed stopwords_en.yaml
var defaultStoplist []byte

// Stoplist is the YAML layout of a stopword file
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// Stopwords is a lowercase stopword set
type Stopwords map[string]struct{}

// NewStopwords builds a set from terms, lowercased
func NewStopwords(terms []string) Stopwords {
	s := make(Stopwords, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			s[t] = struct{}{}
		}
	}
	return s
}

// Contains reports whether word is a stopword, ignoring case
func (s Stopwords) Contains(word string) bool {
	_, ok := s[strings.ToLower(word)]
	return ok
}

// DefaultStopwords returns the built-in English stoplist
func DefaultStopwords() Stopwords {
	s, err := parseStoplist(defaultStoplist)
	if err != nil {
		panic(fmt.Sprintf("embedded stoplist: %v", err))
	}
	return s
}

// LoadStopwords reads a YAML stoplist with a top-level terms list
func LoadStopwords(path string) (Stopwords, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stoplist: %w", err)
	}
	s, err := parseStoplist(data)
	if err != nil {
		return nil, fmt.Errorf("stoplist %s: %w", path, err)
	}
	return s, nil
}

func parseStoplist(data []byte) (Stopwords, error) {
	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, fmt.Errorf("parse stoplist: %w", err)
	}
	return NewStopwords(sl.Terms), nil
}
