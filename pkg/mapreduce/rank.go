package mapreduce

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Rank fills every chatty list of a fully reduced report: each site's
// ChattyTags, Totals.ChattyTags from the global tag map and
// Totals.ChattySites from the sites' own coefficients.
//
// Per-site rankings run concurrently, at most workers at a time. They only
// read the report; results are written back after all of them finish.
func Rank(ctx context.Context, r *Report, workers int) error {
	names := make([]string, 0, len(r.Sites))
	for name := range r.Sites {
		names = append(names, name)
	}
	sort.Strings(names)

	chatty := make([][]string, len(names))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, name := range names {
		tags := r.Sites[name].Tags
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			chatty[i] = TopN(tags, TopK)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, name := range names {
		site := r.Sites[name]
		site.ChattyTags = chatty[i]
		r.Sites[name] = site
	}

	r.Totals = Totals{
		ChattySites: TopN(r.Sites, TopK),
		ChattyTags:  TopN(r.Tags, TopK),
	}
	return nil
}
