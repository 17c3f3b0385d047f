// Package station holds the station working set: normalization of upstream
// records, the in-memory store, category classification and nearest-neighbor
// ranking.
package station

import (
	"math"

	"github.com/rubiojr/stationmap/pkg/rpc"
)

// UntitledStation is used when upstream sends an empty name.
const UntitledStation = "Cửa hàng không tên"

// ImageKind tells where a station image comes from.
type ImageKind int

const (
	ImageNone ImageKind = iota
	ImageEmbedded
	ImageURL
)

// Image is the single active image of a station.
type Image struct {
	Kind ImageKind `json:"kind"`
	// Data is base64 text for embedded images and a URL otherwise.
	Data string `json:"data,omitempty"`
}

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Station is a point of sale in the working set.
type Station struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Address     string  `json:"address,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	CategoryTag string  `json:"category_tag,omitempty"`
	Image       Image   `json:"image"`

	// Pricing is only present when a product is selected.
	Price               *float64 `json:"price,omitempty"`
	PriceChange         *float64 `json:"price_change,omitempty"`
	PriceChangeRegional *float64 `json:"price_change_regional,omitempty"`
	V1Threshold         *float64 `json:"v1_threshold,omitempty"`
	MaxThreshold        *float64 `json:"max_threshold,omitempty"`
}

// Point returns the station coordinates.
func (s Station) Point() Point {
	return Point{Lat: s.Lat, Lng: s.Lng}
}

// Category classifies the station by its tag.
func (s Station) Category() Category {
	return Classify(s.CategoryTag)
}

// ShowsPriceChange reports whether the upstream price change may be displayed.
// A delta is only meaningful when its threshold was computed upstream.
func (s Station) ShowsPriceChange() bool {
	return s.PriceChange != nil && positive(s.V1Threshold)
}

// ShowsPriceChangeRegional is ShowsPriceChange for the regional comparison.
func (s Station) ShowsPriceChangeRegional() bool {
	return s.PriceChangeRegional != nil && positive(s.MaxThreshold)
}

func positive(v *float64) bool {
	return v != nil && *v > 0
}

// Normalize converts upstream records into stations, dropping records with
// non-finite coordinates.
func Normalize(records []rpc.StationRecord) []Station {
	stations := make([]Station, 0, len(records))
	for i := range records {
		s, ok := FromRecord(&records[i])
		if !ok {
			continue
		}
		stations = append(stations, s)
	}
	return stations
}

// FromRecord converts a single record. ok is false when the coordinates are unusable.
func FromRecord(r *rpc.StationRecord) (s Station, ok bool) {
	if !finite(r.Lat) || !finite(r.Lng) {
		return Station{}, false
	}

	title := r.Title
	if title == "" {
		title = UntitledStation
	}

	return Station{
		ID:                  r.ID,
		Title:               title,
		Lat:                 r.Lat.Value,
		Lng:                 r.Lng.Value,
		Address:             r.Address,
		Phone:               r.Phone,
		CategoryTag:         r.Logo,
		Image:               pickImage(r.Image, r.ImageURL),
		Price:               r.Price.Ptr(),
		PriceChange:         r.PriceChange.Ptr(),
		PriceChangeRegional: r.PriceChangeRegional.Ptr(),
		V1Threshold:         r.V1.Ptr(),
		MaxThreshold:        r.VMax.Ptr(),
	}, true
}

func finite(n rpc.Number) bool {
	return n.Valid && !math.IsNaN(n.Value) && !math.IsInf(n.Value, 0)
}

func pickImage(embedded, url string) Image {
	switch {
	case embedded != "":
		return Image{Kind: ImageEmbedded, Data: embedded}
	case url != "":
		return Image{Kind: ImageURL, Data: url}
	default:
		return Image{}
	}
}

// Merge puts detail into list: fields of detail overwrite the entry with the
// same id, keeping summary values where detail is empty, or detail is
// appended when the id is new. list is not modified.
func Merge(list []Station, detail Station) []Station {
	merged := make([]Station, len(list), len(list)+1)
	copy(merged, list)

	for i := range merged {
		if merged[i].ID == detail.ID {
			merged[i] = overlay(merged[i], detail)
			return merged
		}
	}
	return append(merged, detail)
}

func overlay(base, d Station) Station {
	base.Lat, base.Lng = d.Lat, d.Lng
	if d.Title != "" && d.Title != UntitledStation {
		base.Title = d.Title
	}
	if d.Address != "" {
		base.Address = d.Address
	}
	if d.Phone != "" {
		base.Phone = d.Phone
	}
	if d.CategoryTag != "" {
		base.CategoryTag = d.CategoryTag
	}
	if d.Image.Kind != ImageNone {
		base.Image = d.Image
	}
	base.Price = firstSet(d.Price, base.Price)
	base.PriceChange = firstSet(d.PriceChange, base.PriceChange)
	base.PriceChangeRegional = firstSet(d.PriceChangeRegional, base.PriceChangeRegional)
	base.V1Threshold = firstSet(d.V1Threshold, base.V1Threshold)
	base.MaxThreshold = firstSet(d.MaxThreshold, base.MaxThreshold)
	return base
}

func firstSet(a, b *float64) *float64 {
	if a != nil {
		return a
	}
	return b
}

// Target returns the station whose id is id.
func Target(stations []Station, id string) (Station, bool) {
	if id == "" {
		return Station{}, false
	}
	for _, s := range stations {
		if s.ID == id {
			return s, true
		}
	}
	return Station{}, false
}
