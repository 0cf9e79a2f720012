package pipeline

// Batch splits rows into consecutive slices of at most size rows. The slices
// share the input's backing array; callers must not mutate them. A run of R
// rows yields ceil(R/size) batches and the final batch holds the remainder.
func Batch(rows [][]any, size int) [][][]any {
	if size <= 0 || len(rows) == 0 {
		return nil
	}
	n := (len(rows) + size - 1) / size
	out := make([][][]any, 0, n)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[start:end])
	}
	return out
}
