// Package recent remembers the sources played from this machine and
// suggests them back for shell completion.
package recent

import (
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
	"github.com/vidplay/vidplay/filesystem"
	"github.com/vidplay/vidplay/key"
	"github.com/vidplay/vidplay/where"
	"golang.org/x/exp/slices"
)

// Limit is how many sources are kept; the least played are dropped first.
const Limit = 50

type record struct {
	Rank int    `json:"rank"`
	URL  string `json:"url"`
}

var (
	mu     sync.Mutex
	cacher = gache.New[map[string]*record](&gache.Options{
		Path:       where.Recent(),
		FileSystem: &filesystem.GacheFs{},
	})
)

// Remember records a played source, or bumps its rank by weight.
func Remember(url string, weight int) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	cached, expired, err := cacher.Get()
	if expired || err != nil || cached == nil {
		cached = make(map[string]*record)
	}

	if r, ok := cached[url]; ok {
		r.Rank += weight
	} else {
		cached[url] = &record{Rank: weight, URL: url}
	}

	if len(cached) > Limit {
		ranked := sorted(lo.Values(cached))
		for _, r := range ranked[Limit:] {
			delete(cached, r.URL)
		}
	}

	return cacher.Set(cached)
}

// Clear forgets every remembered source.
func Clear() error {
	mu.Lock()
	defer mu.Unlock()
	return cacher.Set(map[string]*record{})
}

// Suggest returns the best match for a partial URL.
func Suggest(partial string) mo.Option[string] {
	suggestions := SuggestMany(partial)
	if len(suggestions) == 0 {
		return mo.None[string]()
	}
	return mo.Some(suggestions[0])
}

// SuggestMany returns every remembered source fuzzily matching partial, most played first.
func SuggestMany(partial string) []string {
	if !viper.GetBool(key.PlaySuggestRecent) {
		return []string{}
	}

	mu.Lock()
	cached, expired, err := cacher.Get()
	mu.Unlock()
	if err != nil || expired || cached == nil {
		return []string{}
	}

	partial = strings.ToLower(strings.TrimSpace(partial))
	matches := lo.Filter(lo.Values(cached), func(r *record, _ int) bool {
		return fuzzy.MatchFold(partial, r.URL)
	})

	return lo.Map(sorted(matches), func(r *record, _ int) string {
		return r.URL
	})
}

// sorted orders by rank, then by URL so ties are stable.
func sorted(records []*record) []*record {
	slices.SortFunc(records, func(a, b *record) int {
		if a.Rank != b.Rank {
			return b.Rank - a.Rank
		}
		return strings.Compare(a.URL, b.URL)
	})
	return records
}
