package mapreduce

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/dtnitsch/chatty/models"
	"github.com/dtnitsch/chatty/pkg/analytics"
)

func TestTopNTieBreakByName(t *testing.T) {
	m := map[string]Counter{
		"b": {Questions: 1, Words: 5},
		"a": {Questions: 2, Words: 11}, // 5 after floor division
		"c": {Questions: 1, Words: 3},
	}

	got := TopN(m, TopK)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopN() = %v, want %v", got, want)
	}
}

func TestTopNTruncates(t *testing.T) {
	m := make(map[string]Counter)
	for i := 0; i < 15; i++ {
		// coefficients 0..14, t14 is the chattiest
		m[fmt.Sprintf("t%02d", i)] = Counter{Questions: 1, Words: uint32(i)}
	}

	got := TopN(m, TopK)
	if len(got) != TopK {
		t.Fatalf("len(TopN()) = %d, want %d", len(got), TopK)
	}
	for i, name := range got {
		want := fmt.Sprintf("t%02d", 14-i)
		if name != want {
			t.Errorf("TopN()[%d] = %q, want %q", i, name, want)
		}
	}
}

func TestTopNFewerThanK(t *testing.T) {
	got := TopN(map[string]Counter{"x": {Questions: 1, Words: 1}}, TopK)
	if !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("TopN() = %v, want [x]", got)
	}

	empty := TopN(map[string]Counter{}, TopK)
	if empty == nil || len(empty) != 0 {
		t.Errorf("TopN(empty) = %#v, want empty non-nil slice", empty)
	}
}

func TestTopNDeterministic(t *testing.T) {
	m := make(map[string]Counter)
	for i := 0; i < 40; i++ {
		m[fmt.Sprintf("tag-%d", i)] = Counter{Questions: 1, Words: uint32(i % 4)}
	}

	first := TopN(m, TopK)
	for i := 0; i < 20; i++ {
		if got := TopN(m, TopK); !reflect.DeepEqual(got, first) {
			t.Fatalf("TopN() run %d = %v, want %v", i, got, first)
		}
	}
}

func TestRankingSites(t *testing.T) {
	sites := map[string]SiteAggregate{
		"quiet": {Questions: 4, Words: 4},
		"loud":  {Questions: 1, Words: 100},
	}
	got := Ranking(sites)
	want := []Ranked{{Name: "loud", Coefficient: 100}, {Name: "quiet", Coefficient: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Ranking() = %v, want %v", got, want)
	}
}

func TestRank(t *testing.T) {
	a := &analytics.Analytics{}
	var cs []Report
	for _, site := range []string{"site1", "site2"} {
		cs = append(cs,
			Map(site, models.Record{Texts: []string{"1", "2"}, Tags: []string{"1", "tag repetido"}}, a, 1),
			Map(site, models.Record{Texts: []string{"3", "4 5 6 7"}, Tags: []string{"2", "tag repetido"}}, a, 1),
		)
	}
	cs = append(cs, Map("site3", models.Record{Texts: []string{"x y z w v u t s r q"}, Tags: []string{"long"}}, a, 1))
	r := Reduce(1, cs)

	if err := Rank(context.Background(), &r, 2); err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	// site1: "2" -> 5, "tag repetido" -> 3, "1" -> 2
	if got, want := r.Sites["site1"].ChattyTags, []string{"2", "tag repetido", "1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("site1.ChattyTags = %v, want %v", got, want)
	}
	if got, want := r.Sites["site3"].ChattyTags, []string{"long"}; !reflect.DeepEqual(got, want) {
		t.Errorf("site3.ChattyTags = %v, want %v", got, want)
	}
	// site3 -> 10, site1 and site2 -> 3
	if got, want := r.Totals.ChattySites, []string{"site3", "site1", "site2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Totals.ChattySites = %v, want %v", got, want)
	}
	// long -> 10, 2 -> 5, tag repetido -> 14/4 = 3, 1 -> 2
	if got, want := r.Totals.ChattyTags, []string{"long", "2", "tag repetido", "1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Totals.ChattyTags = %v, want %v", got, want)
	}
}

func TestRankCancelled(t *testing.T) {
	r := Map("s", models.Record{Texts: []string{"a"}, Tags: []string{"t"}}, &analytics.Analytics{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Rank(ctx, &r, 1); err == nil {
		t.Error("Rank() with cancelled context error = nil, want error")
	}
}

func TestPrintTop(t *testing.T) {
	var buf bytes.Buffer
	PrintTop(&buf, "Chatty tags", []Ranked{{Name: "go", Coefficient: 12}, {Name: "db", Coefficient: 3}})

	out := buf.String()
	for _, want := range []string{"--- Chatty tags ---", "1. go: 12", "2. db: 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("PrintTop() output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	PrintTop(&buf, "Empty", nil)
	if !strings.Contains(buf.String(), "(none)") {
		t.Errorf("PrintTop(nil) = %q, want (none)", buf.String())
	}
}
