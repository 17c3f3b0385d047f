package station

import (
	"net/url"
	"strings"

	"github.com/rubiojr/stationmap/pkg/rpc"
)

// URL parameter names, lower case variant. Upper case and any other casing
// are accepted too.
const (
	ParamBukrs     = "bukrs"
	ParamMatnr     = "matnr"
	ParamStationID = "chxd_id"
)

// Query selects the station set to load.
type Query struct {
	Bukrs     string `json:"bukrs"`
	Matnr     string `json:"matnr,omitempty"`
	StationID string `json:"chxd_id,omitempty"`
}

// Summary returns the summary request data for q.
func (q Query) Summary() rpc.StationQuery {
	return rpc.StationQuery{Bukrs: q.Bukrs, Matnr: q.Matnr}
}

// Detail returns the detail request data for q.
func (q Query) Detail() rpc.StationQuery {
	return rpc.StationQuery{Bukrs: q.Bukrs, Matnr: q.Matnr, StationID: q.StationID}
}

// ParseQuery extracts a Query from URL parameters.
func ParseQuery(values url.Values) Query {
	return Query{
		Bukrs:     Param(values, ParamBukrs),
		Matnr:     Param(values, ParamMatnr),
		StationID: Param(values, ParamStationID),
	}
}

// Param looks name up as given, then upper cased, then with a case
// insensitive match on every key.
func Param(values url.Values, name string) string {
	if v := values.Get(name); v != "" {
		return v
	}
	if v := values.Get(strings.ToUpper(name)); v != "" {
		return v
	}
	for k := range values {
		if strings.EqualFold(k, name) {
			if v := values.Get(k); v != "" {
				return v
			}
		}
	}
	return ""
}

// SelectURL returns u with the target station parameter set to id. Selection
// is a full navigation to the returned URL.
func SelectURL(u *url.URL, id string) string {
	values := u.Query()
	for k := range values {
		if strings.EqualFold(k, ParamStationID) {
			values.Del(k)
		}
	}
	if id != "" {
		values.Set(strings.ToUpper(ParamStationID), id)
	}

	out := *u
	out.RawQuery = values.Encode()
	return out.String()
}
