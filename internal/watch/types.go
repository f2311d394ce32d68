package watch

// MatchSet maps a folded keyword to the context snippets observed for it in
// one extraction, in occurrence order. Keywords without occurrences are absent.
type MatchSet map[string][]string

// HistoryRecord is the MatchSet persisted by the last successful run.
// A nil or empty record means "first run".
type HistoryRecord = MatchSet

// Count returns the total number of contexts across all keywords.
func (m MatchSet) Count() int {
	n := 0
	for _, ctxs := range m {
		n += len(ctxs)
	}
	return n
}

// Clone returns a deep copy.
func (m MatchSet) Clone() MatchSet {
	out := make(MatchSet, len(m))
	for k, ctxs := range m {
		out[k] = append([]string(nil), ctxs...)
	}
	return out
}

// DiffResult holds the part of a MatchSet that is not yet in the history.
type DiffResult struct {
	// NewKeywords lists keywords with no history at all, sorted.
	NewKeywords []string
	// NewContexts holds, per keyword, contexts absent from the history in
	// occurrence order.
	NewContexts map[string][]string
}

// Empty reports whether the diff should trigger no notification.
func (d DiffResult) Empty() bool {
	if len(d.NewKeywords) > 0 {
		return false
	}
	for _, ctxs := range d.NewContexts {
		if len(ctxs) > 0 {
			return false
		}
	}
	return true
}

// ContextCount returns the number of new contexts.
func (d DiffResult) ContextCount() int {
	n := 0
	for _, ctxs := range d.NewContexts {
		n += len(ctxs)
	}
	return n
}

func (d DiffResult) isNewKeyword(k string) bool {
	for _, nk := range d.NewKeywords {
		if nk == k {
			return true
		}
	}
	return false
}
