package core

import (
	"sort"
	"strings"
)

// UntaggedLabel is the display label for notes whose tag is empty.
const UntaggedLabel = "Untagged"

// TagGroup is one bucket of the group-by-tag view.
type TagGroup struct {
	Tag   string `json:"tag"`
	Notes []Note `json:"notes"`
}

// Count returns the number of notes in the group.
func (g TagGroup) Count() int {
	return len(g.Notes)
}

// Label returns the tag, or UntaggedLabel for the empty tag.
func (g TagGroup) Label() string {
	if g.Tag == "" {
		return UntaggedLabel
	}
	return g.Tag
}

// GroupByTag returns one group per distinct tag, largest first.
// Groups of equal size keep the order in which their tag was first seen.
func GroupByTag(notes []Note) []TagGroup {
	index := make(map[string]int)
	var groups []TagGroup
	for _, n := range notes {
		i, ok := index[n.Tag]
		if !ok {
			i = len(groups)
			index[n.Tag] = i
			groups = append(groups, TagGroup{Tag: n.Tag})
		}
		groups[i].Notes = append(groups[i].Notes, n)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].Notes) > len(groups[j].Notes)
	})
	return groups
}

// FilterByTag returns the notes whose tag equals tag exactly, in collection order.
func FilterByTag(notes []Note, tag string) []Note {
	var out []Note
	for _, n := range notes {
		if n.Tag == tag {
			out = append(out, n)
		}
	}
	return out
}

// Search returns notes whose title or tag contains query, ignoring case.
// A blank query matches nothing.
func Search(notes []Note, query string) []Note {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	q := strings.ToLower(query)

	var out []Note
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Tag), q) {
			out = append(out, n)
		}
	}
	return out
}

// DistinctTags lists the non-empty tags in first-seen order.
func DistinctTags(notes []Note) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, n := range notes {
		if n.Tag == "" || seen[n.Tag] {
			continue
		}
		seen[n.Tag] = true
		tags = append(tags, n.Tag)
	}
	return tags
}

// CountTag returns how many notes carry tag.
func CountTag(notes []Note, tag string) int {
	count := 0
	for _, n := range notes {
		if n.Tag == tag {
			count++
		}
	}
	return count
}
