// Package nlp turns section texts into the filtered, lemmatized token lists
// fed to the corpus builder.
package nlp

// Token is one analysed word
type Token struct {
	Text   string // surface form as it appeared
	IsStop bool
	POS    string // universal tag: NOUN, VERB, ADJ, ...
	Lemma  string
}

// Tagger tokenizes text and annotates every token
type Tagger interface {
	Analyze(text string) ([]Token, error)
}
