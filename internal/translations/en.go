package translations

// GetEnglishTranslations returns all English text strings
func GetEnglishTranslations() Translations {
	return Translations{
		CategoryFlagship:      "Petrolimex",
		CategoryPartner:       "Partner",
		CategoryFranchise:     "Franchise",
		CategoryNewInvestment: "New investment",
		CategoryOther:         "Other",

		StationsFound:   "Found %d stations",
		NearestTo:       "Nearest to %s (%s)",
		LocationFound:   "Location found:",
		Address:         "Address",
		Category:        "Category",
		Distance:        "Distance",
		Price:           "Price",
		PriceDifference: "Price difference",
		Coordinates:     "Coordinates",
		NotAvailable:    "N/A",

		SnapshotSaved:    "Saved snapshot %d with %d stations",
		NoSnapshots:      "No snapshots found in database.",
		SnapshotsDeleted: "Deleted %d snapshots older than %d days",

		LocationSubmitted: "Location of %s submitted (%s)",
	}
}
