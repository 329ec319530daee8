package mining

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strconv"

	"github.com/bits-and-blooms/bitset"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MineParams configures a frequent itemset search.
type MineParams struct {
	// MinSupport is the inclusive support threshold, in (0,1].
	MinSupport float64
	// MaxLen caps itemset size; 0 means no cap.
	MaxLen int
	// Workers bounds parallel support counting; <= 0 uses GOMAXPROCS.
	Workers int
	Logger  *zap.Logger
}

// FrequentItemset is an itemset whose support met the threshold.
type FrequentItemset struct {
	Items   Itemset `json:"itemsets"`
	Count   int     `json:"count"`
	Support float64 `json:"support"`
}

// LevelStats records candidate generation figures for one level of the search.
type LevelStats struct {
	K         int `json:"k"`
	Generated int `json:"generated"`
	Pruned    int `json:"pruned"`
	Counted   int `json:"counted"`
	Frequent  int `json:"frequent"`
}

// Result is the complete output of one Mine call. It is immutable once returned.
type Result struct {
	N          int
	MinSupport float64
	Itemsets   []FrequentItemset
	Levels     []LevelStats
	Outcome    Outcome

	index map[string]int
}

// Lookup returns the record for s, which must be canonical (see NewItemset).
func (r *Result) Lookup(s Itemset) (FrequentItemset, bool) {
	if r == nil {
		return FrequentItemset{}, false
	}
	i, ok := r.index[s.key()]
	if !ok {
		return FrequentItemset{}, false
	}
	return r.Itemsets[i], true
}

// Support returns the support fraction of s if it is frequent.
func (r *Result) Support(s Itemset) (float64, bool) {
	fi, ok := r.Lookup(s)
	return fi.Support, ok
}

// MaxSize returns the size of the largest frequent itemset.
func (r *Result) MaxSize() int {
	if r == nil || len(r.Itemsets) == 0 {
		return 0
	}
	return len(r.Itemsets[len(r.Itemsets)-1].Items)
}

// OfSize returns the frequent itemsets with exactly k items.
func (r *Result) OfSize(k int) []FrequentItemset {
	var out []FrequentItemset
	for _, fi := range r.Itemsets {
		if len(fi.Items) == k {
			out = append(out, fi)
		}
	}
	return out
}

func validateSupport(v float64) error {
	if !(v > 0 && v <= 1) {
		return &InvalidParameterError{Name: "min_support", Value: v, Reason: "must be in (0,1]"}
	}
	return nil
}

// candidate is an itemset over vocabulary indexes, kept sorted ascending.
// tids is the set of transactions that contain it.
type candidate struct {
	ids   []int
	count int
	tids  *bitset.BitSet
}

func idsKey(ids []int) string {
	b := make([]byte, 0, len(ids)*3)
	for _, id := range ids {
		b = strconv.AppendInt(b, int64(id), 10)
		b = append(b, ',')
	}
	return string(b)
}

// Mine finds every itemset whose support is at least p.MinSupport using a
// level-wise search: frequent (k-1)-itemsets sharing a (k-2)-prefix are
// joined into k-candidates, candidates with an infrequent (k-1)-subset are
// pruned, and the survivors are counted by intersecting transaction bitsets.
//
// ctx is checked between levels. On cancellation the partial result is
// dropped and the context error returned.
func Mine(ctx context.Context, t *Table, p MineParams) (*Result, error) {
	if err := validateSupport(p.MinSupport); err != nil {
		return nil, err
	}
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	res := &Result{MinSupport: p.MinSupport, index: map[string]int{}}
	if t == nil || t.n == 0 {
		res.Outcome = OutcomeNoItemsets
		log.Debug("no transactions to mine")
		return res, nil
	}
	res.N = t.n
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	frequent := func(count int) bool {
		return float64(count)/float64(t.n) >= p.MinSupport
	}

	// Level 1 reads popcounts straight off the columns.
	var level []candidate
	for j, col := range t.cols {
		c := int(col.Count())
		if frequent(c) {
			level = append(level, candidate{ids: []int{j}, count: c, tids: col})
		}
	}
	res.Levels = append(res.Levels, LevelStats{K: 1, Generated: len(t.cols), Counted: len(t.cols), Frequent: len(level)})
	log.Debug("apriori level", zap.Int("k", 1), zap.Int("candidates", len(t.cols)), zap.Int("frequent", len(level)))

	all := keep(nil, level)
	for k := 2; len(level) > 0 && k <= len(t.items); k++ {
		if p.MaxLen > 0 && k > p.MaxLen {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("mining aborted before level %d: %w", k, err)
		}
		cands, generated, pruned := generateCandidates(level)
		if generated == 0 {
			break
		}
		if err := countCandidates(ctx, t, cands, workers); err != nil {
			return nil, fmt.Errorf("mining aborted at level %d: %w", k, err)
		}
		next := cands[:0]
		for _, c := range cands {
			if frequent(c.count) {
				next = append(next, c)
			}
		}
		res.Levels = append(res.Levels, LevelStats{K: k, Generated: generated, Pruned: pruned, Counted: len(cands), Frequent: len(next)})
		log.Debug("apriori level",
			zap.Int("k", k),
			zap.Int("candidates", generated),
			zap.Int("pruned", pruned),
			zap.Int("frequent", len(next)))
		level = next
		all = keep(all, level)
	}

	res.Itemsets = make([]FrequentItemset, len(all))
	for i, c := range all {
		items := make(Itemset, len(c.ids))
		for x, id := range c.ids {
			items[x] = t.items[id]
		}
		res.Itemsets[i] = FrequentItemset{Items: items, Count: c.count, Support: float64(c.count) / float64(t.n)}
	}
	sort.SliceStable(res.Itemsets, func(i, j int) bool {
		return lessItemsets(res.Itemsets[i].Items, res.Itemsets[j].Items)
	})
	for i, fi := range res.Itemsets {
		res.index[fi.Items.key()] = i
	}
	if len(res.Itemsets) == 0 {
		res.Outcome = OutcomeNoItemsets
	}
	return res, nil
}

// generateCandidates joins itemsets of one level that share all but their
// last item and drops joins that have an infrequent subset. level must be
// sorted lexicographically by ids, which holds by construction.
func generateCandidates(level []candidate) (out []candidate, generated, pruned int) {
	known := make(map[string]struct{}, len(level))
	for _, c := range level {
		known[idsKey(c.ids)] = struct{}{}
	}
	k := len(level[0].ids) + 1
	sub := make([]int, 0, k-1)
	for i := 0; i < len(level); i++ {
		a := level[i]
		for j := i + 1; j < len(level); j++ {
			b := level[j]
			if !samePrefix(a.ids, b.ids) {
				break
			}
			generated++
			ids := make([]int, k)
			copy(ids, a.ids)
			ids[k-1] = b.ids[k-2]

			// Dropping either of the last two items yields a or b; check the rest.
			ok := true
			for drop := 0; drop < k-2 && ok; drop++ {
				sub = sub[:0]
				sub = append(sub, ids[:drop]...)
				sub = append(sub, ids[drop+1:]...)
				if _, found := known[idsKey(sub)]; !found {
					ok = false
				}
			}
			if !ok {
				pruned++
				continue
			}
			out = append(out, candidate{ids: ids, tids: a.tids})
		}
	}
	return out, generated, pruned
}

// keep appends the level to dst without transaction sets, which are only
// needed while the next level is generated.
func keep(dst, level []candidate) []candidate {
	for _, c := range level {
		dst = append(dst, candidate{ids: c.ids, count: c.count})
	}
	return dst
}

func samePrefix(a, b []int) bool {
	for i := 0; i < len(a)-1; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// countCandidates computes exact support for each candidate. On entry
// c.tids holds the transactions of the candidate's (k-1)-prefix; on return it
// holds the candidate's own transactions. Work is split into contiguous
// chunks, one per worker, each writing only its own slice elements.
func countCandidates(ctx context.Context, t *Table, cands []candidate, workers int) error {
	if len(cands) == 0 {
		return nil
	}
	if workers > len(cands) {
		workers = len(cands)
	}
	chunk := (len(cands) + workers - 1) / workers
	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(cands); start += chunk {
		part := cands[start:min(start+chunk, len(cands))]
		g.Go(func() error {
			for i := range part {
				if i%256 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				c := &part[i]
				last := t.cols[c.ids[len(c.ids)-1]]
				c.tids = c.tids.Intersection(last)
				c.count = int(c.tids.Count())
			}
			return nil
		})
	}
	return g.Wait()
}
