// Package match ranks historical transactions as candidates for a
// statement line and runs the debounced description search.
package match

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/lvu/firemerge/internal/model"
)

const (
	// MaxCandidates caps how many suggestions a ranking returns.
	MaxCandidates = 10
	// ScoreCutoff is the minimum similarity (0..100) for a candidate
	// to be suggested at all.
	ScoreCutoff = 93.0
)

// Scored pairs an item with its similarity score against a query.
type Scored[T any] struct {
	Item  T
	Score float64
}

// Best returns the items whose text scores at least cutoff against
// query, best first, at most limit. Items with empty text are skipped.
func Best[T any](items []T, query string, text func(T) string, limit int, cutoff float64) []Scored[T] {
	if query == "" {
		return nil
	}

	lev := metrics.NewLevenshtein()
	var out []Scored[T]
	for _, item := range items {
		s := text(item)
		if s == "" {
			continue
		}
		score := strutil.Similarity(query, s, lev) * 100
		if score >= cutoff {
			out = append(out, Scored[T]{Item: item, Score: score})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Deduplicate collapses candidates that differ only in date and score
// (and notes, when ignoreNotes is set), keeping the most recent date
// and the best score of each group. Input order is preserved.
func Deduplicate(candidates []model.TransactionCandidate, ignoreNotes bool) []model.TransactionCandidate {
	var order []string
	byKey := make(map[string]model.TransactionCandidate)

	for _, c := range candidates {
		key := dedupeKey(c, ignoreNotes)
		prev, seen := byKey[key]
		switch {
		case !seen:
			order = append(order, key)
			byKey[key] = c
		case prev.Date.Before(c.Date):
			c.Score = max(c.Score, prev.Score)
			byKey[key] = c
		}
	}

	out := make([]model.TransactionCandidate, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key])
	}
	return out
}

// BestCandidates ranks candidates against a query, deduplicates the
// survivors ignoring notes, and orders them by score then recency.
func BestCandidates(candidates []model.TransactionCandidate, query string, text func(model.TransactionCandidate) string, limit int, cutoff float64) []model.TransactionCandidate {
	scored := Best(candidates, query, text, limit, cutoff)

	withScores := make([]model.TransactionCandidate, len(scored))
	for i, s := range scored {
		c := s.Item
		c.Score = s.Score
		withScores[i] = c
	}

	out := Deduplicate(withScores, true)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// ByNotes extracts a candidate's notes, the default ranking text for
// statement lines.
func ByNotes(c model.TransactionCandidate) string { return c.Notes }

// ByDescription extracts a candidate's description, used by the
// interactive description search.
func ByDescription(c model.TransactionCandidate) string { return c.Description }

func dedupeKey(c model.TransactionCandidate, ignoreNotes bool) string {
	c.Date = time.Time{}
	c.Score = 0
	if ignoreNotes {
		c.Notes = ""
	}
	raw, err := json.Marshal(c)
	if err != nil {
		// Candidates are plain data; this cannot happen.
		panic(err)
	}
	return string(raw)
}
