package translations

import (
	"strings"

	"github.com/rubiojr/stationmap/internal/station"
)

// Translations contains all text strings shown to users
type Translations struct {
	// Category names
	CategoryFlagship      string
	CategoryPartner       string
	CategoryFranchise     string
	CategoryNewInvestment string
	CategoryOther         string

	// Station listings
	StationsFound   string
	NearestTo       string
	LocationFound   string
	Address         string
	Category        string
	Distance        string
	Price           string
	PriceDifference string
	Coordinates     string
	NotAvailable    string

	// Snapshots
	SnapshotSaved    string
	NoSnapshots      string
	SnapshotsDeleted string

	// Location submission
	LocationSubmitted string
}

// GetTranslations returns translations for the specified language
func GetTranslations(lang string) Translations {
	switch GetLanguage(lang) {
	case "en":
		return GetEnglishTranslations()
	default:
		return GetVietnameseTranslations()
	}
}

// GetLanguage normalizes a language parameter, defaults to Vietnamese
func GetLanguage(lang string) string {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "en", "english":
		return "en"
	default:
		return "vi"
	}
}

// CategoryLabel returns the display name of c.
func (t Translations) CategoryLabel(c station.Category) string {
	switch c {
	case station.FlagshipBrand:
		return t.CategoryFlagship
	case station.PartnerBrand:
		return t.CategoryPartner
	case station.Franchise:
		return t.CategoryFranchise
	case station.NewInvestment:
		return t.CategoryNewInvestment
	default:
		return t.CategoryOther
	}
}
