package transform

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"

	"nycetl/internal/schema"
)

// DedupLast collapses records sharing the dataset's natural key, keeping the
// latest occurrence. Runs before batching so an upsert never races itself
// inside one multi-row statement. Datasets without key columns pass through
// untouched, as do records missing part of their key.
//
// Output preserves the position of each winning record.
func DedupLast(d *schema.Dataset, recs []schema.Record) []schema.Record {
	if len(d.KeyColumns) == 0 || len(recs) == 0 {
		return recs
	}

	type slot struct {
		rec   schema.Record
		index int
	}
	winners := make(map[uint64]slot, len(recs))

	for i, r := range recs {
		key, ok := keyHash(d.KeyColumns, r)
		if !ok {
			continue
		}
		winners[key] = slot{rec: r, index: i}
	}

	out := make([]schema.Record, 0, len(winners))
	keep := make(map[int]struct{}, len(winners))
	for _, s := range winners {
		keep[s.index] = struct{}{}
	}
	for i, r := range recs {
		if _, ok := keep[i]; ok {
			out = append(out, r)
			continue
		}
		if _, ok := keyHash(d.KeyColumns, r); !ok {
			out = append(out, r)
		}
	}
	return out
}

// keyHash folds the record's key column values into a 64-bit fingerprint.
// A nil key component makes the record unkeyable (pass-through).
func keyHash(keys []string, r schema.Record) (uint64, bool) {
	var b strings.Builder
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			return 0, false
		}
		if b.Len() > 0 {
			b.WriteByte('\x1f')
		}
		switch t := v.(type) {
		case string:
			b.WriteString(t)
		default:
			b.WriteString(fmt.Sprint(t))
		}
	}
	return xxh3.HashString(b.String()), true
}
