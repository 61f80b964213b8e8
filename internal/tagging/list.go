package tagging

import (
	"slices"
	"strings"
)

// List is the caller's tag input: an explicit sequence of titles, a
// comma-separated string, or None.
//
// The zero value is None. It reads as "no tags" and is distinct from an
// empty sequence: Tag with None reads the bean's tags, Tag with an empty
// list clears them.
type List struct {
	titles []string
	set    bool
}

// None is the "no tags" sentinel.
var None = List{}

// Titles builds a list from an explicit sequence. Titles are kept as given.
func Titles(titles ...string) List {
	if titles == nil {
		titles = []string{}
	}
	return List{titles: titles, set: true}
}

// Parse splits s on commas. Tokens are not trimmed, so "a, b" yields
// "a" and " b". The empty string parses to an empty list.
func Parse(s string) List {
	if s == "" {
		return Titles()
	}
	return List{titles: strings.Split(s, ","), set: true}
}

// IsNone reports whether l is the None sentinel.
func (l List) IsNone() bool {
	return !l.set
}

// Normalize returns the ordered titles. None normalizes to nil.
func (l List) Normalize() []string {
	if !l.set {
		return nil
	}
	return slices.Clone(l.titles)
}

// Len returns the number of titles, duplicates included.
func (l List) Len() int {
	return len(l.titles)
}

// String joins the titles with commas.
func (l List) String() string {
	return strings.Join(l.titles, ",")
}
