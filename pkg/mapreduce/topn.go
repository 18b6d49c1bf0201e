package mapreduce

import (
	"fmt"
	"io"
	"sort"
)

// TopK is how many names a chatty list holds at most.
const TopK = 10

// Scorer is anything rankable by words per question.
type Scorer interface {
	Coefficient() uint32
}

// Ranked is one entry of a ranking.
type Ranked struct {
	Name        string `json:"name" yaml:"name"`
	Coefficient uint32 `json:"coefficient" yaml:"coefficient"`
}

// Ranking returns every entry of m sorted by coefficient descending, then
// name ascending. Names are unique map keys, so the order is total and does
// not depend on map iteration.
func Ranking[V Scorer](m map[string]V) []Ranked {
	ss := make([]Ranked, 0, len(m))
	for k, v := range m {
		ss = append(ss, Ranked{Name: k, Coefficient: v.Coefficient()})
	}

	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Coefficient != ss[j].Coefficient {
			return ss[i].Coefficient > ss[j].Coefficient
		}
		return ss[i].Name < ss[j].Name
	})

	return ss
}

// TopN returns the names of the first n entries of Ranking(m).
// Fewer than n entries yields all of them; the result is never padded and
// never nil.
func TopN[V Scorer](m map[string]V, n int) []string {
	ss := Ranking(m)

	limit := n
	if len(ss) < n {
		limit = len(ss)
	}
	if limit < 0 {
		limit = 0
	}

	names := make([]string, limit)
	for i := 0; i < limit; i++ {
		names[i] = ss[i].Name
	}
	return names
}

// PrintTop writes a numbered listing of at most TopK ranked entries.
func PrintTop(w io.Writer, title string, ranked []Ranked) {
	fmt.Fprintf(w, "--- %s ---\n", title)

	limit := TopK
	if len(ranked) < limit {
		limit = len(ranked)
	}
	if limit == 0 {
		fmt.Fprintln(w, "(none)")
		return
	}

	for i := 0; i < limit; i++ {
		fmt.Fprintf(w, "%d. %s: %d\n", i+1, ranked[i].Name, ranked[i].Coefficient)
	}
}
