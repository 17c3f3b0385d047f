package station

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/rubiojr/stationmap/pkg/rpc"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		raw      string
		expected Query
	}{
		{"bukrs=1000&matnr=xang95&chxd_id=A1", Query{Bukrs: "1000", Matnr: "xang95", StationID: "A1"}},
		{"BUKRS=1000&MATNR=diezel&CHXD_ID=A2", Query{Bukrs: "1000", Matnr: "diezel", StationID: "A2"}},
		{"Bukrs=2000&ChXd_Id=A3", Query{Bukrs: "2000", StationID: "A3"}},
		{"bukrs=&BUKRS=3000", Query{Bukrs: "3000"}},
		{"", Query{}},
	}

	for _, test := range tests {
		values, err := url.ParseQuery(test.raw)
		if err != nil {
			t.Fatalf("ParseQuery(%q): %v", test.raw, err)
		}
		if got := ParseQuery(values); got != test.expected {
			t.Errorf("ParseQuery(%q) = %+v, expected %+v", test.raw, got, test.expected)
		}
	}
}

func TestSelectURL(t *testing.T) {
	u, _ := url.Parse("https://dash.local/app/chxd?bukrs=1000&chxd_id=OLD&Chxd_Id=OLDER")

	got := SelectURL(u, "NEW")
	parsed, err := url.Parse(got)
	if err != nil {
		t.Fatalf("SelectURL returned invalid URL %q: %v", got, err)
	}
	values := parsed.Query()
	if len(values) != 2 {
		t.Errorf("Expected bukrs and a single station id, got %v", values)
	}
	if values.Get("CHXD_ID") != "NEW" || values.Get("bukrs") != "1000" {
		t.Errorf("Unexpected query %v", values)
	}
	if parsed.Path != "/app/chxd" {
		t.Errorf("Path changed to %q", parsed.Path)
	}
	if u.Query().Get("chxd_id") != "OLD" {
		t.Error("SelectURL must not modify its input")
	}
}

type fakeCaller struct {
	fn   string
	data any
	err  error
}

func (f *fakeCaller) Call(_ context.Context, fn string, data, _ any) error {
	f.fn = fn
	f.data = data
	return f.err
}

func TestSubmitLocation(t *testing.T) {
	c := &fakeCaller{}
	err := SubmitLocation(context.Background(), c, Submission{StationID: "A1", Lat: 21.0285, Lng: 105.8542})
	if err != nil {
		t.Fatalf("SubmitLocation() failed: %v", err)
	}
	if c.fn != rpc.FuncStationLocation {
		t.Errorf("Expected %s, got %s", rpc.FuncStationLocation, c.fn)
	}
	body, _ := json.Marshal(c.data)
	expected := `{"I_CHXD_GMAP":{"CHXD_ID":"A1","ZLAT":"21.0285","ZLONG":"105.8542"},"I_TYPE":"02"}`
	if string(body) != expected {
		t.Errorf("Unexpected DATA\n got %s\nwant %s", body, expected)
	}
}

func TestSubmitLocation_Errors(t *testing.T) {
	tests := []Submission{
		{Lat: 1, Lng: 1},
		{StationID: "A", Lat: 91, Lng: 1},
		{StationID: "A", Lat: 1, Lng: 181},
		{StationID: "A", Type: "03"},
	}
	for _, s := range tests {
		c := &fakeCaller{}
		if err := SubmitLocation(context.Background(), c, s); err == nil {
			t.Errorf("Expected %+v to be rejected", s)
		}
		if c.fn != "" {
			t.Errorf("Invalid submission %+v reached upstream", s)
		}
	}

	upstream := &rpc.ReturnError{Func: rpc.FuncStationLocation, Type: "E", Message: "locked"}
	c := &fakeCaller{err: upstream}
	err := SubmitLocation(context.Background(), c, Submission{StationID: "A", Type: SubmitInput})
	var retErr *rpc.ReturnError
	if !errors.As(err, &retErr) || retErr.Message != "locked" {
		t.Errorf("Expected upstream error to be wrapped, got %v", err)
	}
}
