// Package hybrid presents assets that share a hybridGroup tag as one composite asset.
//
// A group only combines when at least two configured assets carry its tag. The combined
// series is attributed to the first member in configuration order.
package hybrid

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/aggregate"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
)

// MinMembers is the smallest group that is combined.
const MinMembers = 2

// Group is a set of assets tagged with the same hybridGroup.
type Group struct {
	Name        string
	PrimaryID   int
	MemberIDs   []int
	MemberNames []string
}

// DisplayName is the label of the composite asset.
func (g Group) DisplayName() string {
	return g.Name + " (Hybrid)"
}

// AssetNames joins the member names for display.
func (g Group) AssetNames() string {
	return strings.Join(g.MemberNames, " + ")
}

// Combines reports whether the group is large enough to merge.
func (g Group) Combines() bool {
	return len(g.MemberIDs) >= MinMembers
}

// Groups collects every tagged group of the portfolio, single-member ones included,
// in order of first appearance.
func Groups(cfg *model.PortfolioConfig) []Group {
	if cfg == nil {
		return nil
	}
	index := map[string]int{}
	var groups []Group
	for _, a := range cfg.Assets {
		if a.HybridGroup == "" {
			continue
		}
		i, ok := index[a.HybridGroup]
		if !ok {
			i = len(groups)
			index[a.HybridGroup] = i
			groups = append(groups, Group{Name: a.HybridGroup, PrimaryID: a.ID})
		}
		groups[i].MemberIDs = append(groups[i].MemberIDs, a.ID)
		groups[i].MemberNames = append(groups[i].MemberNames, cfg.AssetName(a.ID))
	}
	return groups
}

// Find returns the named group.
func Find(cfg *model.PortfolioConfig, name string) (Group, bool) {
	for _, g := range Groups(cfg) {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// Detect returns the group of the asset when that group combines. A tag carried by a
// single asset is treated as no group at all.
func Detect(cfg *model.PortfolioConfig, assetID int) (Group, bool) {
	if cfg == nil {
		return Group{}, false
	}
	a, ok := cfg.Asset(assetID)
	if !ok || a.HybridGroup == "" {
		return Group{}, false
	}
	g, ok := Find(cfg, a.HybridGroup)
	if !ok || !g.Combines() {
		return Group{}, false
	}
	return g, true
}

type combined struct {
	bucket aggregate.Bucket
	means  map[string]int
}

// Combine merges the member buckets of each period into one bucket attributed to the
// primary id. Buckets of non-members are ignored. Fields are summed across members, except
// intensive fields (prices), which are averaged over the members that report them.
// The result is ordered by period.
func Combine(buckets []aggregate.Bucket, g Group) []aggregate.Bucket {
	members := make(map[string]bool, len(g.MemberIDs))
	for _, id := range g.MemberIDs {
		members[strconv.Itoa(id)] = true
	}
	primary := strconv.Itoa(g.PrimaryID)

	index := map[string]*combined{}
	var order []*combined
	for _, b := range buckets {
		if !members[b.Entity] {
			continue
		}
		key := b.Period.Key()
		c, ok := index[key]
		if !ok {
			c = &combined{
				bucket: aggregate.Bucket{
					Entity:    primary,
					Period:    b.Period,
					FirstDate: b.FirstDate,
					LastDate:  b.LastDate,
					Values:    map[string]float64{},
				},
				means: map[string]int{},
			}
			index[key] = c
			order = append(order, c)
		}
		c.add(b)
	}

	out := make([]aggregate.Bucket, len(order))
	for i, c := range order {
		for field, n := range c.means {
			c.bucket.Values[field] = aggregate.SafeDiv(c.bucket.Values[field], float64(n))
		}
		out[i] = c.bucket
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Period.Before(out[j].Period)
	})
	return out
}

func (c *combined) add(b aggregate.Bucket) {
	c.bucket.Count += b.Count
	c.bucket.FirstDate = earliest(c.bucket.FirstDate, b.FirstDate)
	c.bucket.LastDate = latest(c.bucket.LastDate, b.LastDate)
	for field, v := range b.Values {
		c.bucket.Values[field] += v
		if aggregate.SemanticsOf(field) == aggregate.Mean {
			c.means[field]++
		}
	}
}

func earliest(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
