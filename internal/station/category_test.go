package station

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		tag      string
		expected Category
	}{
		{"PLX", FlagshipBrand},
		{"plx", FlagshipBrand},
		{"PLX_TNNQ", Franchise},
		{"tnnq-plx", Franchise},
		{"PVOIL", PartnerBrand},
		{"PLX_PVOIL", PartnerBrand},
		{"DTM", NewInvestment},
		{"PLX DTM", NewInvestment},
		{"PVOIL_DTM", PartnerBrand},
		{"", Other},
		{"   ", Other},
		{"SHELL", Other},
	}

	for _, test := range tests {
		if got := Classify(test.tag); got != test.expected {
			t.Errorf("Classify(%q) = %s, expected %s", test.tag, got, test.expected)
		}
	}
}

func TestGroup(t *testing.T) {
	stations := []Station{
		{ID: "1", CategoryTag: "PLX"},
		{ID: "2", CategoryTag: "PVOIL"},
		{ID: "3", CategoryTag: "PLX"},
		{ID: "4", CategoryTag: "SHELL"},
	}

	groups := Group(stations)
	if len(groups) != len(Categories) {
		t.Fatalf("Expected %d groups, got %d", len(Categories), len(groups))
	}

	counts := map[Category][]string{}
	for _, g := range groups {
		for _, s := range g.Stations {
			counts[g.Category] = append(counts[g.Category], s.ID)
		}
	}
	if ids := counts[FlagshipBrand]; len(ids) != 2 || ids[0] != "1" || ids[1] != "3" {
		t.Errorf("Unexpected flagship group %v", ids)
	}
	if ids := counts[Other]; len(ids) != 1 || ids[0] != "4" {
		t.Errorf("Unexpected other group %v", ids)
	}
	if len(counts[Franchise]) != 0 {
		t.Errorf("Expected empty franchise group, got %v", counts[Franchise])
	}
}

func TestVisible(t *testing.T) {
	stations := []Station{
		{ID: "1", CategoryTag: "PLX"},
		{ID: "2", CategoryTag: "PVOIL"},
		{ID: "3", CategoryTag: "PLX_TNNQ"},
	}

	all := Visible(stations, nil)
	if len(all) != 3 {
		t.Errorf("Expected nil visibility to show everything, got %d", len(all))
	}

	some := Visible(stations, Visibility{PartnerBrand: false, FlagshipBrand: true})
	if len(some) != 2 || some[0].ID != "1" || some[1].ID != "3" {
		t.Errorf("Unexpected visible set %+v", some)
	}

	only := Visible(stations, Only(Franchise))
	if len(only) != 1 || only[0].ID != "3" {
		t.Errorf("Unexpected visible set for Only(Franchise): %+v", only)
	}
}

func TestParseCategory(t *testing.T) {
	if c, ok := ParseCategory("pvoil"); !ok || c != PartnerBrand {
		t.Errorf("ParseCategory(pvoil) = %s, %v", c, ok)
	}
	if _, ok := ParseCategory("esso"); ok {
		t.Error("Expected unknown category to fail")
	}
}

func TestParseVisibility(t *testing.T) {
	all, err := ParseVisibility(" ")
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range Categories {
		if !all.Shows(c) {
			t.Errorf("Expected %s visible for an empty list", c)
		}
	}

	v, err := ParseVisibility("plx, DTM")
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range Categories {
		want := c == FlagshipBrand || c == NewInvestment
		if v.Shows(c) != want {
			t.Errorf("Category %s visible = %v, expected %v", c, v.Shows(c), want)
		}
	}

	if _, err := ParseVisibility("PLX,SHELL"); err == nil {
		t.Error("Expected an error for an unknown category")
	}
}
