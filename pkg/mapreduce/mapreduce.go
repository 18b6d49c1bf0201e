package mapreduce

import (
	"github.com/dtnitsch/chatty/models"
	"github.com/dtnitsch/chatty/pkg/analytics"
)

// questionsPerRecord is how many questions one input line stands for.
const questionsPerRecord = 1

// Map turns one record of a site into a singleton contribution.
//
// The site counts the record once. Every entry of rec.Tags counts it again,
// both in the site's tag map and in the global one, so a tag listed twice in
// the same record is incremented twice.
func Map(site string, rec models.Record, a *analytics.Analytics, registryID uint32) Report {
	words := a.CountAll(rec.Texts)
	unit := Counter{Questions: questionsPerRecord, Words: words}

	tags := make(map[string]Counter, len(rec.Tags))
	for _, tag := range rec.Tags {
		tags[tag] = tags[tag].Add(unit)
	}

	out := NewReport(registryID)
	out.Sites[site] = SiteAggregate{
		Questions: unit.Questions,
		Words:     unit.Words,
		Tags:      tags,
	}
	MergeCounters(out.Tags, tags)
	return out
}

// Reduce folds contributions into a fresh report in slice order.
// The result does not depend on the order, only on the multiset of inputs.
func Reduce(registryID uint32, contributions []Report) Report {
	final := NewReport(registryID)
	for _, c := range contributions {
		final.Add(c)
	}
	return final
}
