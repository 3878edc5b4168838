package hybrid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/aggregate"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
)

func portfolio() *model.PortfolioConfig {
	return &model.PortfolioConfig{
		UniqueID:     "p1",
		PlatformName: "Platform One",
		Assets: []model.AssetInput{
			{ID: 1, Name: "Solar North", HybridGroup: "Hub"},
			{ID: 2, Name: "Battery North", HybridGroup: "Hub"},
			{ID: 3, Name: "Wind South", HybridGroup: "Lonely"},
			{ID: 4, Name: "Solar East"},
		},
	}
}

func TestGroups(t *testing.T) {
	groups := Groups(portfolio())
	require.Len(t, groups, 2)

	assert.Equal(t, "Hub", groups[0].Name)
	assert.Equal(t, 1, groups[0].PrimaryID)
	assert.Equal(t, []int{1, 2}, groups[0].MemberIDs)
	assert.Equal(t, "Hub (Hybrid)", groups[0].DisplayName())
	assert.Equal(t, "Solar North + Battery North", groups[0].AssetNames())
	assert.True(t, groups[0].Combines())

	assert.Equal(t, []int{3}, groups[1].MemberIDs)
	assert.False(t, groups[1].Combines())

	assert.Nil(t, Groups(nil))
}

func TestDetect(t *testing.T) {
	cfg := portfolio()

	g, ok := Detect(cfg, 2)
	require.True(t, ok)
	assert.Equal(t, 1, g.PrimaryID)

	_, ok = Detect(cfg, 3)
	assert.False(t, ok, "single-member group must not combine")

	_, ok = Detect(cfg, 4)
	assert.False(t, ok)

	_, ok = Detect(cfg, 99)
	assert.False(t, ok)
}

func buckets(t *testing.T, records []aggregate.Record) []aggregate.Bucket {
	t.Helper()
	return aggregate.New(aggregate.Monthly).Aggregate(records)
}

func at(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCombine_SumsMembersOntoPrimary(t *testing.T) {
	cfg := portfolio()
	g, ok := Detect(cfg, 1)
	require.True(t, ok)

	in := buckets(t, []aggregate.Record{
		{Entity: "1", Date: at(time.January, 31), Values: map[string]float64{"revenue": 10, "cash": 100}},
		{Entity: "2", Date: at(time.January, 15), Values: map[string]float64{"revenue": 5, "cash": 40}},
		{Entity: "4", Date: at(time.January, 31), Values: map[string]float64{"revenue": 1000}},
	})

	out := Combine(in, g)
	require.Len(t, out, 1)
	assert.Equal(t, "1", out[0].Entity)
	assert.Equal(t, "2024-01", out[0].Period.Key())
	assert.InDelta(t, 15, out[0].Values["revenue"], 1e-9)
	assert.InDelta(t, 140, out[0].Values["cash"], 1e-9)
	assert.Equal(t, 2, out[0].Count)
	assert.Equal(t, at(time.January, 15), out[0].FirstDate)
	assert.Equal(t, at(time.January, 31), out[0].LastDate)
}

func TestCombine_AveragesPrices(t *testing.T) {
	g := Group{Name: "Hub", PrimaryID: 1, MemberIDs: []int{1, 2}}
	in := buckets(t, []aggregate.Record{
		{Entity: "1", Date: at(time.March, 1), Values: map[string]float64{"avgEnergyPrice": 80}},
		{Entity: "2", Date: at(time.March, 1), Values: map[string]float64{"avgEnergyPrice": 60}},
	})

	out := Combine(in, g)
	require.Len(t, out, 1)
	assert.InDelta(t, 70, out[0].Values["avgEnergyPrice"], 1e-9)
}

func TestCombine_SingleMemberIsUnchanged(t *testing.T) {
	cfg := portfolio()
	g, ok := Find(cfg, "Lonely")
	require.True(t, ok)

	in := buckets(t, []aggregate.Record{
		{Entity: "3", Date: at(time.January, 1), Values: map[string]float64{"revenue": 7}},
		{Entity: "3", Date: at(time.February, 1), Values: map[string]float64{"revenue": 8}},
	})

	out := Combine(in, g)
	require.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, in[i].Period.Key(), out[i].Period.Key())
		assert.Equal(t, in[i].Values, out[i].Values)
		assert.Equal(t, in[i].Entity, out[i].Entity)
	}
}

func TestCombine_KeepsPeriodOrder(t *testing.T) {
	g := Group{Name: "Hub", PrimaryID: 1, MemberIDs: []int{1, 2}}
	in := buckets(t, []aggregate.Record{
		{Entity: "2", Date: at(time.January, 1), Values: map[string]float64{"revenue": 1}},
		{Entity: "1", Date: at(time.March, 1), Values: map[string]float64{"revenue": 3}},
		{Entity: "1", Date: at(time.February, 1), Values: map[string]float64{"revenue": 2}},
	})

	out := Combine(in, g)
	require.Len(t, out, 3)
	assert.Equal(t, "2024-01", out[0].Period.Key())
	assert.Equal(t, "2024-02", out[1].Period.Key())
	assert.Equal(t, "2024-03", out[2].Period.Key())
}
