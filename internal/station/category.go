package station

import (
	"fmt"
	"strings"
)

// Category is the ownership/brand bucket of a station.
type Category string

const (
	FlagshipBrand Category = "PLX"
	PartnerBrand  Category = "PVOIL"
	Franchise     Category = "TNNQ"
	NewInvestment Category = "DTM"
	Other         Category = "OTHER"
)

// Categories lists every category in display order.
var Categories = []Category{FlagshipBrand, PartnerBrand, Franchise, NewInvestment, Other}

// classifyOrder is the match priority; the first marker found in the tag wins.
var classifyOrder = []struct {
	marker   string
	category Category
}{
	{"TNNQ", Franchise},
	{"PVOIL", PartnerBrand},
	{"DTM", NewInvestment},
	{"PLX", FlagshipBrand},
}

// Classify maps a raw category tag to a Category.
func Classify(tag string) Category {
	tag = strings.ToUpper(strings.TrimSpace(tag))
	if tag == "" {
		return Other
	}
	for _, rule := range classifyOrder {
		if strings.Contains(tag, rule.marker) {
			return rule.category
		}
	}
	return Other
}

// ParseCategory parses a category name as produced by Category.String.
func ParseCategory(s string) (Category, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

func (c Category) String() string {
	return string(c)
}

// Label is the human readable category name.
func (c Category) Label() string {
	switch c {
	case FlagshipBrand:
		return "Petrolimex"
	case PartnerBrand:
		return "Đối tác"
	case Franchise:
		return "Nhượng quyền"
	case NewInvestment:
		return "Đầu tư mới"
	default:
		return "Khác"
	}
}

// CategoryGroup is one row of the category breakdown panel.
type CategoryGroup struct {
	Category Category  `json:"category"`
	Label    string    `json:"label"`
	Stations []Station `json:"stations"`
}

// Group buckets stations by category, in Categories order. Empty categories
// are included so the panel always shows every bucket.
func Group(stations []Station) []CategoryGroup {
	index := make(map[Category]int, len(Categories))
	groups := make([]CategoryGroup, len(Categories))
	for i, c := range Categories {
		index[c] = i
		groups[i] = CategoryGroup{Category: c, Label: c.Label()}
	}
	for _, s := range stations {
		i := index[s.Category()]
		groups[i].Stations = append(groups[i].Stations, s)
	}
	return groups
}

// Visibility maps a category to whether it is shown. Missing entries are shown.
type Visibility map[Category]bool

// Shows reports whether c is visible.
func (v Visibility) Shows(c Category) bool {
	shown, ok := v[c]
	return !ok || shown
}

// Clone returns a copy of v.
func (v Visibility) Clone() Visibility {
	out := make(Visibility, len(v))
	for k, b := range v {
		out[k] = b
	}
	return out
}

// Only returns a visibility that shows c and hides every other category.
func Only(c Category) Visibility {
	v := make(Visibility, len(Categories))
	for _, other := range Categories {
		v[other] = other == c
	}
	return v
}

// ParseVisibility builds a visibility showing only the comma separated
// categories in list. An empty list shows everything.
func ParseVisibility(list string) (Visibility, error) {
	v := make(Visibility, len(Categories))
	if strings.TrimSpace(list) == "" {
		return v, nil
	}
	for _, c := range Categories {
		v[c] = false
	}
	for _, name := range strings.Split(list, ",") {
		c, ok := ParseCategory(name)
		if !ok {
			return nil, fmt.Errorf("unknown category %q", strings.TrimSpace(name))
		}
		v[c] = true
	}
	return v, nil
}

// Visible filters stations down to the visible categories.
func Visible(stations []Station, v Visibility) []Station {
	out := make([]Station, 0, len(stations))
	for _, s := range stations {
		if v.Shows(s.Category()) {
			out = append(out, s)
		}
	}
	return out
}
