package station

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rubiojr/stationmap/pkg/rpc"
)

// Submission types understood by upstream.
const (
	SubmitInput   = "01"
	SubmitDefault = "02"
)

// Caller is the part of rpc.Client needed to send a location.
type Caller interface {
	Call(ctx context.Context, fn string, data, out any) error
}

// Submission reports the measured coordinates of a station.
type Submission struct {
	StationID string
	Lat       float64
	Lng       float64
	Type      string
}

// Validate checks the submission before it is sent.
func (s Submission) Validate() error {
	if s.StationID == "" {
		return errors.New("station id is required")
	}
	if s.Lat < -90 || s.Lat > 90 || s.Lng < -180 || s.Lng > 180 {
		return fmt.Errorf("coordinates out of range: %f, %f", s.Lat, s.Lng)
	}
	switch s.Type {
	case "", SubmitInput, SubmitDefault:
	default:
		return fmt.Errorf("unknown submission type %q", s.Type)
	}
	return nil
}

// SubmitLocation sends the coordinates of a station upstream.
func SubmitLocation(ctx context.Context, c Caller, s Submission) error {
	if err := s.Validate(); err != nil {
		return err
	}
	typ := s.Type
	if typ == "" {
		typ = SubmitDefault
	}

	data := rpc.LocationData{
		Location: rpc.StationLocation{
			ID:  s.StationID,
			Lat: strconv.FormatFloat(s.Lat, 'f', -1, 64),
			Lng: strconv.FormatFloat(s.Lng, 'f', -1, 64),
		},
		Type: typ,
	}
	if err := c.Call(ctx, rpc.FuncStationLocation, data, nil); err != nil {
		return fmt.Errorf("error submitting location for %s: %w", s.StationID, err)
	}
	return nil
}
