package search

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/kailas-cloud/fieldcodec/internal/fieldtype"
	"github.com/kailas-cloud/fieldcodec/internal/metrics"
)

// ShardHit is one hit as reported by a shard: a doc id and its sort token.
type ShardHit struct {
	Doc  uint32
	Sort fieldtype.Token
}

// ShardResult is the sorted hit list of one shard.
type ShardResult struct {
	Name string
	Hits []ShardHit
}

// MergedHit is a hit in the merged order. ShardIndex and HitIndex point back
// into the input so callers can carry their own per-hit payload.
type MergedHit struct {
	Shard      string
	ShardIndex int
	HitIndex   int
	Doc        uint32
	Sort       fieldtype.Token
}

// MergeRequest asks to merge shard results sorted by Field.
type MergeRequest struct {
	Field   string
	Reverse bool
	Limit   int
	Shards  []ShardResult
}

// Merge resolves req.Field against the schema and merges req.Shards.
func (s *Service) Merge(req MergeRequest) ([]MergedHit, error) {
	f, t, err := s.resolve(req.Field)
	if err != nil {
		return nil, err
	}
	sf, err := t.SortField(f, req.Reverse)
	if err != nil {
		return nil, err
	}
	return Merge(sf, t, req.Shards, s.clampLimit(req.Limit))
}

type mergeEntry struct {
	shard int
	hit   int
	doc   uint32
	key   fieldtype.SortValue
}

// Merge k-way merges shard hit lists by sf. Every token is unmarshalled with t,
// so the comparison is the one each shard sorted with. Ties go to the earlier
// shard, then the lower doc id. At most limit hits are returned, with their
// tokens marshalled again.
func Merge(sf fieldtype.SortField, t fieldtype.Type, shards []ShardResult, limit int) ([]MergedHit, error) {
	byShard := make([][]mergeEntry, len(shards))
	for i, shard := range shards {
		entries := make([]mergeEntry, len(shard.Hits))
		for j, h := range shard.Hits {
			key, err := t.UnmarshalSortValue(h.Sort)
			if err != nil {
				metrics.EncodingErrorsTotal.WithLabelValues(metrics.OpUnmarshal).Inc()
				return nil, fmt.Errorf("shard %q hit %d: %w", shard.Name, j, err)
			}
			metrics.SortValuesTotal.WithLabelValues(metrics.OpUnmarshal).Inc()
			entries[j] = mergeEntry{shard: i, hit: j, doc: h.Doc, key: key}
		}
		// The merge needs every list ordered by sf; stable keeps the shard's own tie order.
		slices.SortStableFunc(entries, func(a, b mergeEntry) int {
			return compareEntries(sf, a, b)
		})
		byShard[i] = entries
	}

	heads := make([]int, len(byShard))
	var out []MergedHit
	for limit <= 0 || len(out) < limit {
		best := -1
		for i, entries := range byShard {
			if heads[i] >= len(entries) {
				continue
			}
			if best < 0 || compareEntries(sf, entries[heads[i]], byShard[best][heads[best]]) < 0 {
				best = i
			}
		}
		if best < 0 {
			break
		}
		e := byShard[best][heads[best]]
		heads[best]++

		tok, err := t.MarshalSortValue(e.key)
		if err != nil {
			metrics.EncodingErrorsTotal.WithLabelValues(metrics.OpMarshal).Inc()
			return nil, fmt.Errorf("marshal merged hit: %w", err)
		}
		metrics.SortValuesTotal.WithLabelValues(metrics.OpMarshal).Inc()
		out = append(out, MergedHit{
			Shard:      shards[e.shard].Name,
			ShardIndex: e.shard,
			HitIndex:   e.hit,
			Doc:        e.doc,
			Sort:       tok,
		})
	}
	return out, nil
}

func compareEntries(sf fieldtype.SortField, a, b mergeEntry) int {
	if c := sf.Compare(a.key, b.key); c != 0 {
		return c
	}
	if c := cmp.Compare(a.shard, b.shard); c != 0 {
		return c
	}
	return cmp.Compare(a.doc, b.doc)
}
