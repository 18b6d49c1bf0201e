package mapreduce

// Counter is the aggregate for one tag: how many questions carried it and
// how many words those questions had in total.
type Counter struct {
	Questions uint32 `json:"questions" yaml:"questions"`
	Words     uint32 `json:"words" yaml:"words"`
}

// Add returns the sum of two counters.
func (c Counter) Add(o Counter) Counter {
	return Counter{
		Questions: c.Questions + o.Questions,
		Words:     c.Words + o.Words,
	}
}

// Coefficient is words per question, floor division.
// A counter built by Map always has at least one question.
func (c Counter) Coefficient() uint32 {
	if c.Questions == 0 {
		return 0
	}
	return c.Words / c.Questions
}

// SiteAggregate holds a site's own totals plus its site-scoped tag counters.
// ChattyTags stays empty until the ranking pass.
type SiteAggregate struct {
	Questions  uint32             `json:"questions" yaml:"questions"`
	Words      uint32             `json:"words" yaml:"words"`
	Tags       map[string]Counter `json:"tags" yaml:"tags"`
	ChattyTags []string           `json:"chatty_tags" yaml:"chatty_tags"`
}

// Coefficient is the site's words per question, ignoring its tags.
func (s SiteAggregate) Coefficient() uint32 {
	return Counter{Questions: s.Questions, Words: s.Words}.Coefficient()
}

// Add merges o into s. s must be owned by the caller; o is left untouched.
// Ranking output is not additive, so ChattyTags is cleared.
func (s *SiteAggregate) Add(o SiteAggregate) {
	s.Questions += o.Questions
	s.Words += o.Words
	if s.Tags == nil {
		s.Tags = make(map[string]Counter, len(o.Tags))
	}
	MergeCounters(s.Tags, o.Tags)
	s.ChattyTags = nil
}

// Clone returns a deep copy.
func (s SiteAggregate) Clone() SiteAggregate {
	out := SiteAggregate{
		Questions: s.Questions,
		Words:     s.Words,
		Tags:      make(map[string]Counter, len(s.Tags)),
	}
	for k, v := range s.Tags {
		out.Tags[k] = v
	}
	if s.ChattyTags != nil {
		out.ChattyTags = append([]string(nil), s.ChattyTags...)
	}
	return out
}

// Totals carries the cross-site rankings. Never merged, only computed.
type Totals struct {
	ChattySites []string `json:"chatty_sites" yaml:"chatty_sites"`
	ChattyTags  []string `json:"chatty_tags" yaml:"chatty_tags"`
}

// Report is the whole-corpus result.
type Report struct {
	RegistryID uint32                   `json:"registry_id" yaml:"registry_id"`
	Sites      map[string]SiteAggregate `json:"sites" yaml:"sites"`
	Tags       map[string]Counter       `json:"tags" yaml:"tags"`
	Totals     Totals                   `json:"totals" yaml:"totals"`
}

// NewReport returns the identity contribution for a run.
func NewReport(registryID uint32) Report {
	return Report{
		RegistryID: registryID,
		Sites:      make(map[string]SiteAggregate),
		Tags:       make(map[string]Counter),
	}
}

// Add merges o into r in place. r must be owned by the caller (a worker's
// private accumulator); o is never modified and none of its maps are aliased.
//
// RegistryID is a constant of the run: r keeps its own unless it is unset.
// Totals and every site's ChattyTags are cleared and must be recomputed by Rank.
func (r *Report) Add(o Report) {
	if r.RegistryID == 0 {
		r.RegistryID = o.RegistryID
	}
	if r.Sites == nil {
		r.Sites = make(map[string]SiteAggregate, len(o.Sites))
	}
	if r.Tags == nil {
		r.Tags = make(map[string]Counter, len(o.Tags))
	}

	for name, site := range r.Sites {
		if site.ChattyTags != nil {
			site.ChattyTags = nil
			r.Sites[name] = site
		}
	}
	for name, site := range o.Sites {
		cur, ok := r.Sites[name]
		if !ok {
			cur = site.Clone()
			cur.ChattyTags = nil
			r.Sites[name] = cur
			continue
		}
		cur.Add(site)
		r.Sites[name] = cur
	}

	MergeCounters(r.Tags, o.Tags)
	r.Totals = Totals{}
}

// Clone returns a deep copy of r.
func (r Report) Clone() Report {
	out := Report{
		RegistryID: r.RegistryID,
		Sites:      make(map[string]SiteAggregate, len(r.Sites)),
		Tags:       make(map[string]Counter, len(r.Tags)),
		Totals: Totals{
			ChattySites: append([]string(nil), r.Totals.ChattySites...),
			ChattyTags:  append([]string(nil), r.Totals.ChattyTags...),
		},
	}
	for k, v := range r.Sites {
		out.Sites[k] = v.Clone()
	}
	for k, v := range r.Tags {
		out.Tags[k] = v
	}
	return out
}

// Merge combines two reports without modifying either.
// It is associative and commutative over the counting fields, with
// NewReport as identity.
func Merge(a, b Report) Report {
	out := a.Clone()
	out.Add(b)
	return out
}

// MergeCounters adds every counter of src into dst, key by key.
func MergeCounters(dst, src map[string]Counter) {
	for k, v := range src {
		dst[k] = dst[k].Add(v)
	}
}

// Equal reports whether two reports hold the same counts.
// Ranking fields are ignored; maps compare by key set and values.
func (r Report) Equal(o Report) bool {
	if r.RegistryID != o.RegistryID {
		return false
	}
	if !countersEqual(r.Tags, o.Tags) {
		return false
	}
	if len(r.Sites) != len(o.Sites) {
		return false
	}
	for name, a := range r.Sites {
		b, ok := o.Sites[name]
		if !ok {
			return false
		}
		if a.Questions != b.Questions || a.Words != b.Words {
			return false
		}
		if !countersEqual(a.Tags, b.Tags) {
			return false
		}
	}
	return true
}

func countersEqual(a, b map[string]Counter) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}
