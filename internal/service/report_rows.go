package service

import (
	"sort"
	"strconv"
	"time"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/aggregate"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
)

// toRecords converts cash-flow records into aggregator input keyed by asset id.
func toRecords(rows []model.CashFlowRecord) []aggregate.Record {
	out := make([]aggregate.Record, len(rows))
	for i, r := range rows {
		out[i] = aggregate.Record{
			Entity: strconv.Itoa(r.AssetID),
			Date:   r.Date,
			Values: r.Values,
		}
	}
	return out
}

// entityAssetID parses the asset id back out of a bucket entity.
func entityAssetID(b aggregate.Bucket) int {
	id, _ := strconv.Atoi(b.Entity)
	return id
}

// bucketRow renders a bucket the way the charts read it: the grouping key under _id,
// the period label, a representative date and the aggregated fields.
// withAsset adds asset_id to the key and to the row.
func bucketRow(b aggregate.Bucket, date time.Time, withAsset bool) map[string]any {
	id := map[string]any{}
	for k, v := range b.Period.Components() {
		id[k] = v
	}
	row := map[string]any{
		docstore.IDField: id,
		"period":         b.Period.Key(),
		model.FieldDate:  date,
	}
	if withAsset {
		assetID := entityAssetID(b)
		id[model.FieldAssetID] = assetID
		row[model.FieldAssetID] = assetID
	}
	for k, v := range b.Values {
		row[k] = v
	}
	return row
}

// bucketRows renders buckets with their first record date.
func bucketRows(buckets []aggregate.Bucket, withAsset bool) []map[string]any {
	rows := make([]map[string]any, len(buckets))
	for i, b := range buckets {
		rows[i] = bucketRow(b, b.FirstDate, withAsset)
	}
	return rows
}

// rawRows returns documents unchanged, ordered by date.
func rawRows(docs []docstore.Document) []map[string]any {
	sorted := make([]docstore.Document, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, _ := sorted[i].Time(model.FieldDate)
		b, _ := sorted[j].Time(model.FieldDate)
		return a.Before(b)
	})
	rows := make([]map[string]any, len(sorted))
	for i, d := range sorted {
		rows[i] = map[string]any(d)
	}
	return rows
}
