package corpus

import (
	"fmt"

	"github.com/ppiankov/wikitopics/internal/model"
)

// AuthorMap maps an author to the ascending indices of their documents
type AuthorMap map[string][]int

// BuildAuthorMap inverts a per-document author list. Every unknown author
// gets its own synthetic name unknown_<k>, never clashing with a real
// author.
func BuildAuthorMap(authors []string) AuthorMap {
	taken := make(map[string]bool, len(authors))
	for _, a := range authors {
		if a != model.UnknownAuthor {
			taken[a] = true
		}
	}

	m := make(AuthorMap)
	k := 0
	for i, a := range authors {
		if a == model.UnknownAuthor {
			for {
				a = fmt.Sprintf("unknown_%d", k)
				k++
				if !taken[a] {
					break
				}
			}
		}
		m[a] = append(m[a], i)
	}
	return m
}

// Select returns the elements of items at the given indices, in order
func Select[T any](items []T, indices []int) []T {
	out := make([]T, 0, len(indices))
	for _, i := range indices {
		out = append(out, items[i])
	}
	return out
}
