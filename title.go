package xlbridge

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// RootTitleName names the synthetic root of every title tree.
const RootTitleName = "__root__"

// Title is a node of a sheet's hierarchical header. Column indexes are
// absolute and 0-based; ranges are inclusive.
type Title struct {
	Name         string
	FromIndex    int
	ToIndex      int
	Tags         map[string]string
	Root         bool
	SubTitleList []*Title

	// Derived by Init.
	Sep                string
	SelfMultiRows      bool
	HierarchyMultiRows bool

	subTitles   map[string]*Title
	leafIndexes []int
}

// NewRootTitle creates the root spanning columns [0, usedColumns-1].
func NewRootTitle(usedColumns int) *Title {
	return &Title{
		Name:      RootTitleName,
		FromIndex: 0,
		ToIndex:   usedColumns - 1,
		Root:      true,
		Tags:      map[string]string{},
	}
}

// AddSubTitle appends a child. Sibling names must be unique.
func (t *Title) AddSubTitle(sub *Title) error {
	if t.subTitles == nil {
		t.subTitles = make(map[string]*Title)
	}
	if _, dup := t.subTitles[sub.Name]; dup {
		return fmt.Errorf("duplicate column %q under %q", sub.Name, t.Name)
	}
	t.subTitles[sub.Name] = sub
	t.SubTitleList = append(t.SubTitleList, sub)
	return nil
}

// SubTitle returns the direct child with the given name.
func (t *Title) SubTitle(name string) (*Title, bool) {
	sub, ok := t.subTitles[name]
	return sub, ok
}

// IsLeaf reports whether the title has no children.
func (t *Title) IsLeaf() bool { return len(t.SubTitleList) == 0 }

// Init finalizes the tree bottom-up: children are ordered by column, a
// parent's ToIndex becomes the largest child ToIndex, leaf index lists are
// cached and the sep/multi_rows tags are resolved.
func (t *Title) Init() {
	sort.SliceStable(t.SubTitleList, func(i, j int) bool {
		return t.SubTitleList[i].FromIndex < t.SubTitleList[j].FromIndex
	})
	t.Sep = t.Tags["sep"]
	t.SelfMultiRows = isTrueTag(t.Tags["multi_rows"])
	t.HierarchyMultiRows = t.SelfMultiRows

	if t.IsLeaf() {
		t.leafIndexes = columnRange(t.FromIndex, t.ToIndex)
		return
	}
	t.leafIndexes = nil
	maxTo := t.SubTitleList[0].ToIndex
	for _, sub := range t.SubTitleList {
		sub.Init()
		maxTo = max(maxTo, sub.ToIndex)
		t.leafIndexes = append(t.leafIndexes, sub.leafIndexes...)
		t.HierarchyMultiRows = t.HierarchyMultiRows || sub.HierarchyMultiRows
	}
	t.ToIndex = maxTo
}

func columnRange(from, to int) []int {
	cols := make([]int, 0, to-from+1)
	for c := from; c <= to; c++ {
		cols = append(cols, c)
	}
	return cols
}

func isTrueTag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "y", "yes":
		return true
	}
	return false
}

// LeafIndexes returns the ordered absolute columns the title covers.
// Valid after Init.
func (t *Title) LeafIndexes() []int { return t.leafIndexes }

// Walk visits the tree depth-first, parents before children.
func (t *Title) Walk(fn func(node *Title, depth int)) {
	t.walk(fn, 0)
}

func (t *Title) walk(fn func(*Title, int), depth int) {
	fn(t, depth)
	for _, sub := range t.SubTitleList {
		sub.walk(fn, depth+1)
	}
}

// Validate checks the tree invariants: ranges are ordered, parents end where
// their last child ends, children are ordered and non-overlapping, and leaf
// lists concatenate bottom-up. A leaf from a horizontally merged header cell
// covers every column of the merge.
func (t *Title) Validate() error {
	if t.FromIndex > t.ToIndex {
		return fmt.Errorf("title %q: from %d > to %d", t.Name, t.FromIndex, t.ToIndex)
	}
	if t.IsLeaf() {
		if !slices.Equal(t.leafIndexes, columnRange(t.FromIndex, t.ToIndex)) {
			return fmt.Errorf("leaf %q: stale leaf index list %v", t.Name, t.leafIndexes)
		}
		return nil
	}

	var leaves []int
	maxTo := -1
	for i, sub := range t.SubTitleList {
		if sub.FromIndex < t.FromIndex || sub.ToIndex > t.ToIndex {
			return fmt.Errorf("title %q [%d, %d] extends beyond parent %q [%d, %d]",
				sub.Name, sub.FromIndex, sub.ToIndex, t.Name, t.FromIndex, t.ToIndex)
		}
		if i > 0 && sub.FromIndex <= t.SubTitleList[i-1].ToIndex {
			return fmt.Errorf("title %q overlaps sibling %q", sub.Name, t.SubTitleList[i-1].Name)
		}
		if err := sub.Validate(); err != nil {
			return err
		}
		maxTo = max(maxTo, sub.ToIndex)
		leaves = append(leaves, sub.leafIndexes...)
	}
	if t.ToIndex != maxTo {
		return fmt.Errorf("title %q ends at %d, children end at %d", t.Name, t.ToIndex, maxTo)
	}
	if !slices.Equal(t.leafIndexes, leaves) {
		return fmt.Errorf("title %q: leaf index list %v, children give %v", t.Name, t.leafIndexes, leaves)
	}
	return nil
}

// Describe returns an indented dump of the tree, one title per line:
//
//	__root__ A:D
//	  id A
//	  pos B:C [multi_rows=1]
func (t *Title) Describe() string {
	var b strings.Builder
	t.Walk(func(n *Title, depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(n.Name)
		b.WriteByte(' ')
		b.WriteString(ColToName(n.FromIndex))
		if n.ToIndex != n.FromIndex {
			b.WriteByte(':')
			b.WriteString(ColToName(n.ToIndex))
		}
		if len(n.Tags) > 0 {
			keys := make([]string, 0, len(n.Tags))
			for k := range n.Tags {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			pairs := make([]string, len(keys))
			for i, k := range keys {
				pairs[i] = k + "=" + n.Tags[k]
			}
			fmt.Fprintf(&b, " [%s]", strings.Join(pairs, " "))
		}
		b.WriteByte('\n')
	})
	return b.String()
}

// ParseTitleText splits header cell text into a name and its tags using the
// grammar name[<delim>k=v[<sep>k=v]...].
func ParseTitleText(text, delim, sep string) (string, map[string]string, error) {
	tags := make(map[string]string)
	name, tagText, hasTags := strings.Cut(text, delim)
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, fmt.Errorf("empty title name")
	}
	if !hasTags {
		return name, tags, nil
	}
	for _, pair := range strings.Split(tagText, sep) {
		kv := strings.Split(pair, "=")
		if len(kv) != 2 {
			return "", nil, fmt.Errorf("tag %q is not key=value", pair)
		}
		key := strings.TrimSpace(kv[0])
		if key == "" {
			return "", nil, fmt.Errorf("tag %q has an empty key", pair)
		}
		if _, dup := tags[key]; dup {
			return "", nil, fmt.Errorf("duplicate tag %q", key)
		}
		tags[key] = strings.TrimSpace(kv[1])
	}
	return name, tags, nil
}
