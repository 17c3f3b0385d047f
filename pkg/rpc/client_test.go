package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, handler func(req Request) (int, string)) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "api" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected Content-Type application/json, got %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		var req Request
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("Invalid request body %q: %v", body, err)
		}
		status, resp := handler(req)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, "api", "secret")
}

func TestClient_Stations(t *testing.T) {
	var got Request
	client := newTestServer(t, func(req Request) (int, string) {
		got = req
		return http.StatusOK, `{"RESPONSE":{"T_DATA":[
			{"CHXD_ID":"A","CHXD_TXT":"Station A","ZLAT":"21.0","ZLONG":105.8,"LOGO":"PLX","PRICE":"20500"},
			{"CHXD_ID":"B","CHXD_TXT":"Station B","ZLAT":"bad","ZLONG":"105,9"}
		]}}`
	})

	records, err := client.Stations(context.Background(), StationQuery{Bukrs: "1000", Matnr: "xang95"})
	if err != nil {
		t.Fatalf("Stations() failed: %v", err)
	}

	if got.Func != FuncStationMap {
		t.Errorf("Expected FUNC %q, got %q", FuncStationMap, got.Func)
	}
	data, _ := json.Marshal(got.Data)
	if string(data) != `{"I_BUKRS":"1000","I_MATNR":"xang95"}` {
		t.Errorf("Unexpected DATA %s", data)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if !records[0].Lat.Valid || records[0].Lat.Value != 21.0 {
		t.Errorf("Expected lat 21.0, got %+v", records[0].Lat)
	}
	if !records[0].Lng.Valid || records[0].Lng.Value != 105.8 {
		t.Errorf("Expected lng 105.8, got %+v", records[0].Lng)
	}
	if records[1].Lat.Valid {
		t.Errorf("Expected invalid lat for %q, got %+v", "bad", records[1].Lat)
	}
	if records[1].Lng.Value != 105.9 {
		t.Errorf("Expected comma decimal to parse as 105.9, got %v", records[1].Lng.Value)
	}
	if records[1].Price.Valid {
		t.Error("Expected missing PRICE to be invalid")
	}
}

func TestClient_NoData(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing T_DATA", `{"RESPONSE":{}}`},
		{"null T_DATA", `{"RESPONSE":{"T_DATA":null}}`},
		{"object T_DATA", `{"RESPONSE":{"T_DATA":{"CHXD_ID":"A"}}}`},
		{"wrong row shape", `{"RESPONSE":{"T_DATA":[{"CHXD_ID":{"x":1}}]}}`},
		{"missing RESPONSE", `{}`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client := newTestServer(t, func(Request) (int, string) {
				return http.StatusOK, test.body
			})
			records, err := client.Stations(context.Background(), StationQuery{})
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if len(records) != 0 {
				t.Errorf("Expected no records, got %d", len(records))
			}
		})
	}
}

func TestClient_TransportErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, ""},
		{"invalid json", http.StatusOK, "<html>"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client := newTestServer(t, func(Request) (int, string) {
				return test.status, test.body
			})
			_, err := client.Stations(context.Background(), StationQuery{})
			if !errors.Is(err, ErrTransport) {
				t.Errorf("Expected ErrTransport, got %v", err)
			}
		})
	}

	client := NewClient("http://127.0.0.1:1", "api", "secret")
	if _, err := client.Stations(context.Background(), StationQuery{}); !errors.Is(err, ErrTransport) {
		t.Errorf("Expected ErrTransport for unreachable endpoint, got %v", err)
	}
}

func TestClient_Unauthorized(t *testing.T) {
	client := newTestServer(t, func(Request) (int, string) {
		return http.StatusOK, `{"RESPONSE":{"T_DATA":[]}}`
	})
	client.password = "wrong"

	if _, err := client.Stations(context.Background(), StationQuery{}); !errors.Is(err, ErrTransport) {
		t.Errorf("Expected ErrTransport on 401, got %v", err)
	}
}

func TestClient_ReturnError(t *testing.T) {
	client := newTestServer(t, func(Request) (int, string) {
		return http.StatusOK, `{"RESPONSE":{"E_RETURN":{"TYPE":"E","MESSAGE":"CHXD not found"}}}`
	})

	err := client.Call(context.Background(), FuncStationLocation, LocationData{Type: "02"}, nil)
	var retErr *ReturnError
	if !errors.As(err, &retErr) {
		t.Fatalf("Expected *ReturnError, got %v", err)
	}
	if retErr.Message != "CHXD not found" {
		t.Errorf("Unexpected message %q", retErr.Message)
	}
	if errors.Is(err, ErrTransport) {
		t.Error("A ReturnError must not be reported as a transport error")
	}
}

func TestClient_SuccessReturn(t *testing.T) {
	client := newTestServer(t, func(Request) (int, string) {
		return http.StatusOK, `{"RESPONSE":{"E_RETURN":{"TYPE":"S","MESSAGE":"saved"}}}`
	})

	if err := client.Call(context.Background(), FuncStationLocation, nil, nil); err != nil {
		t.Errorf("Expected success return to pass, got %v", err)
	}
}

func TestNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		valid    bool
	}{
		{`21.0285`, 21.0285, true},
		{`"21.0285"`, 21.0285, true},
		{`"21,0285"`, 21.0285, true},
		{`" -3.7 "`, -3.7, true},
		{`""`, 0, false},
		{`null`, 0, false},
		{`"bad"`, 0, false},
		{`"NaN"`, 0, false},
		{`"Inf"`, 0, false},
		{`true`, 0, false},
	}

	for _, test := range tests {
		var n Number
		if err := json.Unmarshal([]byte(test.input), &n); err != nil {
			t.Errorf("Unmarshal(%s) unexpected error: %v", test.input, err)
			continue
		}
		if n.Valid != test.valid {
			t.Errorf("Unmarshal(%s) valid = %v, expected %v", test.input, n.Valid, test.valid)
		}
		if n.Value != test.expected {
			t.Errorf("Unmarshal(%s) = %f, expected %f", test.input, n.Value, test.expected)
		}
	}
}

func TestNumber_Ptr(t *testing.T) {
	if (Number{}).Ptr() != nil {
		t.Error("Expected nil pointer for invalid number")
	}
	p := Number{Value: 1.5, Valid: true}.Ptr()
	if p == nil || *p != 1.5 {
		t.Errorf("Expected pointer to 1.5, got %v", p)
	}
}
