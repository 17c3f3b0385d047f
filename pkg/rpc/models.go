package rpc

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Request is the body accepted by the RPC endpoint.
type Request struct {
	Func string `json:"FUNC"`
	Data any    `json:"DATA,omitempty"`
}

// Response is the envelope returned by the RPC endpoint.
type Response struct {
	Response ResponseBody `json:"RESPONSE"`
}

// ResponseBody carries either a T_DATA table or an E_RETURN message.
type ResponseBody struct {
	TData   json.RawMessage `json:"T_DATA"`
	EReturn *Return         `json:"E_RETURN"`
}

// Return is the upstream status structure.
type Return struct {
	Type    string `json:"TYPE"`
	Message string `json:"MESSAGE"`
}

// StationRecord is a single row of the station table as sent by upstream.
type StationRecord struct {
	ID                  string `json:"CHXD_ID"`
	Title               string `json:"CHXD_TXT"`
	Lat                 Number `json:"ZLAT"`
	Lng                 Number `json:"ZLONG"`
	Address             string `json:"ADDRESS"`
	Phone               string `json:"PHONE"`
	Logo                string `json:"LOGO"`
	Image               string `json:"IMAGE"`
	ImageURL            string `json:"IMAGE_URL"`
	Price               Number `json:"PRICE"`
	PriceChange         Number `json:"PRICE_CHANGE"`
	PriceChangeRegional Number `json:"PRICE_CHANGE_REGION"`
	V1                  Number `json:"V1"`
	VMax                Number `json:"VMAX"`
}

// StationQuery is the DATA block of a ZFM_CHXD_GMAP request.
type StationQuery struct {
	Bukrs     string `json:"I_BUKRS,omitempty"`
	Matnr     string `json:"I_MATNR,omitempty"`
	StationID string `json:"I_CHXD_ID,omitempty"`
}

// LocationData is the DATA block of a ZFM_CHXD_LOCATION request.
type LocationData struct {
	Location StationLocation `json:"I_CHXD_GMAP"`
	Type     string          `json:"I_TYPE"`
}

// StationLocation holds coordinates as decimal strings, the way upstream stores them.
type StationLocation struct {
	ID  string `json:"CHXD_ID"`
	Lat string `json:"ZLAT"`
	Lng string `json:"ZLONG"`
}

// Number is a numeric field that upstream may send as a JSON number, a
// string, an empty string or null. Unparseable values decode as invalid
// instead of failing the whole document.
type Number struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
	}

	v, err := ParseDecimal(s)
	if err != nil {
		return nil
	}
	*n = Number{Value: v, Valid: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(n.Value, 'f', -1, 64)), nil
}

// Ptr returns a pointer to the value, or nil when the number is invalid.
func (n Number) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// ParseDecimal parses a decimal string accepting a comma as decimal separator.
// Infinite and NaN values are rejected.
func ParseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.Replace(s, ",", ".", 1)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, strconv.ErrRange
	}

	return v, nil
}
