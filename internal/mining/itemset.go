package mining

import (
	"sort"
	"strconv"
	"strings"
)

// ItemDelimiter joins item labels in the canonical display form of an itemset.
const ItemDelimiter = ", "

// Itemset is a sorted set of distinct item labels.
type Itemset []string

// NewItemset builds a canonical itemset: items are trimmed, blanks dropped,
// duplicates removed and the result sorted.
func NewItemset(items ...string) Itemset {
	seen := make(map[string]struct{}, len(items))
	out := make(Itemset, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of items.
func (s Itemset) Len() int { return len(s) }

// String renders the canonical presentation form, e.g. "bread, milk".
func (s Itemset) String() string { return strings.Join(s, ItemDelimiter) }

// key length-prefixes every item so no label content can make two
// distinct itemsets share a key.
func (s Itemset) key() string {
	var b strings.Builder
	for _, it := range s {
		b.WriteString(strconv.Itoa(len(it)))
		b.WriteByte(':')
		b.WriteString(it)
	}
	return b.String()
}

// Contains reports whether item is a member of s.
func (s Itemset) Contains(item string) bool {
	i := sort.SearchStrings(s, item)
	return i < len(s) && s[i] == item
}

// IsSubsetOf reports whether every item of s is in other.
func (s Itemset) IsSubsetOf(other Itemset) bool {
	if len(s) > len(other) {
		return false
	}
	for _, it := range s {
		if !other.Contains(it) {
			return false
		}
	}
	return true
}

// Equal reports element-wise equality of two canonical itemsets.
func (s Itemset) Equal(other Itemset) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// lessItemsets orders by size first, then lexicographically by label.
func lessItemsets(a, b Itemset) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
