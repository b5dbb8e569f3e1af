// Package corpus builds the vocabulary and bag-of-words matrix consumed by
// the topic model trainer.
package corpus

import (
	"sort"

	"github.com/ppiankov/wikitopics/internal/model"
)

// Pair is one (token id, count) entry of a bag-of-words
type Pair struct {
	ID    int
	Count int
}

// BagOfWords is a sparse document vector sorted by ascending id
type BagOfWords []Pair

// Dictionary maps tokens to dense ids assigned in order of first occurrence
type Dictionary struct {
	ids     map[string]int
	tokens  []string
	docFreq []int
	numDocs int
}

// NewDictionary returns an empty dictionary
func NewDictionary() *Dictionary {
	return &Dictionary{ids: make(map[string]int)}
}

// Len returns the vocabulary size
func (d *Dictionary) Len() int { return len(d.tokens) }

// NumDocs returns the number of documents added
func (d *Dictionary) NumDocs() int { return d.numDocs }

// Token returns the token with the given id
func (d *Dictionary) Token(id int) string { return d.tokens[id] }

// DocFreq returns how many documents contain the token with the given id
func (d *Dictionary) DocFreq(id int) int { return d.docFreq[id] }

// Add registers the tokens of one document
func (d *Dictionary) Add(tokens model.TokenList) {
	d.numDocs++
	seen := make(map[int]bool, len(tokens))
	for _, t := range tokens {
		id, ok := d.ids[t]
		if !ok {
			id = len(d.tokens)
			d.ids[t] = id
			d.tokens = append(d.tokens, t)
			d.docFreq = append(d.docFreq, 0)
		}
		if !seen[id] {
			seen[id] = true
			d.docFreq[id]++
		}
	}
}

// Doc2Bow counts the known tokens of a document. Unknown tokens are skipped.
func (d *Dictionary) Doc2Bow(tokens model.TokenList) BagOfWords {
	counts := make(map[int]int)
	for _, t := range tokens {
		if id, ok := d.ids[t]; ok {
			counts[id]++
		}
	}

	bow := make(BagOfWords, 0, len(counts))
	for id, c := range counts {
		bow = append(bow, Pair{ID: id, Count: c})
	}
	sort.Slice(bow, func(i, j int) bool { return bow[i].ID < bow[j].ID })
	return bow
}

// Corpus is the output of Build. Kept, Tokens and BOW are index-aligned.
type Corpus struct {
	Dictionary *Dictionary
	// Kept holds the input index of every surviving document
	Kept   []int
	Tokens []model.TokenList
	BOW    []BagOfWords
}

// NNZ returns the number of non-zero entries across all documents
func (c *Corpus) NNZ() int {
	n := 0
	for _, b := range c.BOW {
		n += len(b)
	}
	return n
}

// Build drops empty token lists, then builds the dictionary and the
// bag-of-words of every remaining document
func Build(lists []model.TokenList) *Corpus {
	c := &Corpus{
		Dictionary: NewDictionary(),
		Kept:       []int{},
		Tokens:     []model.TokenList{},
	}
	for i, l := range lists {
		if len(l) == 0 {
			continue
		}
		c.Kept = append(c.Kept, i)
		c.Tokens = append(c.Tokens, l)
		c.Dictionary.Add(l)
	}

	c.BOW = make([]BagOfWords, len(c.Tokens))
	for i, l := range c.Tokens {
		c.BOW[i] = c.Dictionary.Doc2Bow(l)
	}
	return c
}
