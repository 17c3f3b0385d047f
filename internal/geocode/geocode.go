// Package geocode resolves place names to coordinates through Nominatim.
package geocode

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/muesli/gominatim"
	"github.com/patrickmn/go-cache"

	"github.com/rubiojr/stationmap/internal/station"
)

const (
	DefaultServer = "https://nominatim.openstreetmap.org/"

	cacheExpiration = 30 * time.Minute
	cacheCleanup    = 90 * time.Minute
)

// ErrNotFound is returned when a place name has no match.
var ErrNotFound = errors.New("location not found")

// SearchFunc queries the geocoding backend.
type SearchFunc func(q string) ([]gominatim.SearchResult, error)

// Place is a resolved location.
type Place struct {
	Name  string        `json:"name"`
	Point station.Point `json:"point"`
}

type Geocoder struct {
	search SearchFunc
	cache  *cache.Cache
	log    *slog.Logger
}

type Option func(*Geocoder)

// WithSearch replaces the Nominatim lookup.
func WithSearch(fn SearchFunc) Option {
	return func(g *Geocoder) { g.search = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Geocoder) { g.log = l }
}

var setServer sync.Once

func nominatimSearch(q string) ([]gominatim.SearchResult, error) {
	setServer.Do(func() { gominatim.SetServer(DefaultServer) })
	query := gominatim.SearchQuery{Q: q}
	return query.Get()
}

func New(opts ...Option) *Geocoder {
	g := &Geocoder{
		search: nominatimSearch,
		cache:  cache.New(cacheExpiration, cacheCleanup),
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Lookup returns the best match for name.
func (g *Geocoder) Lookup(name string) (Place, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Place{}, fmt.Errorf("empty location: %w", ErrNotFound)
	}
	if cached, ok := g.cache.Get(key); ok {
		g.log.Debug("Using cached location", "location", name)
		return cached.(Place), nil
	}

	results, err := g.search(name)
	if err != nil {
		return Place{}, fmt.Errorf("geocoding error: %w", err)
	}
	if len(results) == 0 {
		return Place{}, fmt.Errorf("no results found for location %s: %w", name, ErrNotFound)
	}

	place, err := toPlace(results[0])
	if err != nil {
		return Place{}, err
	}
	g.cache.Set(key, place, cache.DefaultExpiration)
	g.log.Debug("Location found", "location", name, "display_name", place.Name)
	return place, nil
}

func toPlace(result gominatim.SearchResult) (Place, error) {
	lat, err := strconv.ParseFloat(result.Lat, 64)
	if err != nil {
		return Place{}, fmt.Errorf("error parsing latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(result.Lon, 64)
	if err != nil {
		return Place{}, fmt.Errorf("error parsing longitude: %w", err)
	}
	return Place{Name: result.DisplayName, Point: station.Point{Lat: lat, Lng: lng}}, nil
}
