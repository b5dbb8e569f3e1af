package nlp

import "strings"

// pennToUniversal maps Penn Treebank tags onto the universal tag set
var pennToUniversal = map[string]string{
	"NN":   "NOUN",
	"NNS":  "NOUN",
	"NNP":  "PROPN",
	"NNPS": "PROPN",
	"VB":   "VERB",
	"VBD":  "VERB",
	"VBG":  "VERB",
	"VBN":  "VERB",
	"VBP":  "VERB",
	"VBZ":  "VERB",
	"MD":   "AUX",
	"JJ":   "ADJ",
	"JJR":  "ADJ",
	"JJS":  "ADJ",
	"RB":   "ADV",
	"RBR":  "ADV",
	"RBS":  "ADV",
	"WRB":  "ADV",
	"PRP":  "PRON",
	"PRP$": "PRON",
	"WP":   "PRON",
	"WP$":  "PRON",
	"EX":   "PRON",
	"DT":   "DET",
	"PDT":  "DET",
	"WDT":  "DET",
	"IN":   "ADP",
	"CC":   "CCONJ",
	"CD":   "NUM",
	"UH":   "INTJ",
	"RP":   "PART",
	"TO":   "PART",
	"POS":  "PART",
	"FW":   "X",
	"LS":   "X",
	"SYM":  "SYM",
	"$":    "SYM",
	"#":    "SYM",
}

// UniversalTag converts a Penn Treebank tag. Punctuation tags become PUNCT
// and anything unrecognised becomes X.
func UniversalTag(penn string) string {
	if u, ok := pennToUniversal[penn]; ok {
		return u
	}
	if penn != "" && strings.IndexFunc(penn, isTagLetter) < 0 {
		return "PUNCT"
	}
	switch penn {
	case "-LRB-", "-RRB-", "HYPH", "NFP":
		return "PUNCT"
	}
	return "X"
}

func isTagLetter(r rune) bool {
	return r >= 'A' && r <= 'Z'
}
