package watch

import "sort"

// Diff partitions current into what the history already knows and what is
// new. Contexts are compared by exact string equality per keyword.
//
// The model is additive: keywords that only exist in previous are ignored,
// never reported as removed.
func Diff(current MatchSet, previous HistoryRecord) DiffResult {
	res := DiffResult{NewContexts: map[string][]string{}}

	for k, ctxs := range current {
		if len(ctxs) == 0 {
			continue
		}
		known, seenBefore := previous[k]
		if !seenBefore {
			res.NewKeywords = append(res.NewKeywords, k)
		}

		skip := make(map[string]struct{}, len(known)+len(ctxs))
		for _, c := range known {
			skip[c] = struct{}{}
		}
		var fresh []string
		for _, c := range ctxs {
			if _, ok := skip[c]; ok {
				continue
			}
			skip[c] = struct{}{}
			fresh = append(fresh, c)
		}
		if len(fresh) > 0 {
			res.NewContexts[k] = fresh
		}
	}

	sort.Strings(res.NewKeywords)
	return res
}

// Merge returns the union of previous and current. Per keyword, the previous
// contexts keep their order and unseen current contexts are appended in
// occurrence order. Nothing is ever removed.
func Merge(previous HistoryRecord, current MatchSet) HistoryRecord {
	out := previous.Clone()
	for k, ctxs := range current {
		if len(ctxs) == 0 {
			continue
		}
		have := make(map[string]struct{}, len(out[k]))
		for _, c := range out[k] {
			have[c] = struct{}{}
		}
		for _, c := range ctxs {
			if _, ok := have[c]; ok {
				continue
			}
			have[c] = struct{}{}
			out[k] = append(out[k], c)
		}
	}
	return out
}
