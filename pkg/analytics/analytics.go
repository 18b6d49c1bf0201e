package analytics

import "strings"

type Analytics struct{}

// CountWords returns the number of whitespace-separated tokens in text.
// Any Unicode whitespace run counts as a single separator.
func (a *Analytics) CountWords(text string) uint32 {
	return uint32(len(strings.Fields(text)))
}

// CountAll sums CountWords over every text entry of a record.
func (a *Analytics) CountAll(texts []string) uint32 {
	var total uint32
	for _, t := range texts {
		total += a.CountWords(t)
	}
	return total
}
