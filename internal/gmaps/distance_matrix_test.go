package gmaps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoDestinationsBody = `{
  "destination_addresses": ["94 Sawyer Ave, Boston, MA 02125, USA", "4 Olivewood Ct, Greenbelt, MD 20770, USA"],
  "origin_addresses": ["46 Everdean St, Boston, MA 02122, USA"],
  "rows": [{"elements": [
    {"distance": {"text": "1.5 mi", "value": 2458}, "duration": {"text": "7 mins", "value": 427}, "status": "OK"},
    {"distance": {"text": "430 mi", "value": 692625}, "duration": {"text": "6 hours 49 mins", "value": 24533}, "status": "OK"}
  ]}],
  "status": "OK"
}`

func TestQueryParams(t *testing.T) {
	origin := "46 Everdean St Boston, MA"
	dests := []string{"123 Fake St Boston, MA", "1600 Penn Ave Washington, DC"}

	q := QueryParams(origin, dests, "")
	assert.Equal(t, origin, q.Get("origins"))
	assert.Equal(t, dests, strings.Split(q.Get("destinations"), "|"))
	assert.Equal(t, "imperial", q.Get("units"))
	assert.False(t, q.Has("key"))

	assert.Equal(t, "secret", QueryParams(origin, dests, "secret").Get("key"))
}

func TestDrivingInfo_Success(t *testing.T) {
	dests := []string{"94 Sawyer Ave Boston, MA", "4 Olivewood Ct Greenbelt, MD"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "46 Everdean St Boston, MA", r.URL.Query().Get("origins"))
		assert.Equal(t, strings.Join(dests, "|"), r.URL.Query().Get("destinations"))
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(twoDestinationsBody))
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	infos, err := c.DrivingInfo(context.Background(), "46 Everdean St Boston, MA", dests)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, DrivingInfo{
		Destination:  dests[0],
		Distance:     2458,
		DistanceText: "1.5 mi",
		Time:         427,
		TimeText:     "7 mins",
		OK:           true,
	}, infos[0])
	assert.Equal(t, "6 hours 49 mins", infos[1].TimeText)
}

func TestDrivingInfo_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))
	_, err := c.DrivingInfo(context.Background(), "a", []string{"b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 500")
}

func TestDrivingInfo_TransportErrorHidesURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c := NewClient("secret-key", WithBaseURL(srv.URL))
	_, err := c.DrivingInfo(context.Background(), "46 Everdean St Boston MA", []string{"1 Worrell St, Boston, MA"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-key")
	assert.NotContains(t, err.Error(), "Everdean")
}

func TestDrivingInfo_NoDestinations(t *testing.T) {
	_, err := NewClient("").DrivingInfo(context.Background(), "a", nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestParseResponse_Statuses(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"denied", `{"status":"REQUEST_DENIED","error_message":"bad key"}`, ErrRequestDenied},
		{"quota", `{"status":"OVER_QUERY_LIMIT"}`, ErrQuotaExceeded},
		{"invalid", `{"status":"INVALID_REQUEST"}`, ErrInvalidRequest},
		{"unknown", `{"status":"WHAT"}`, ErrUnknown},
		{"not json", `<html>`, ErrMalformedResponse},
		{"no rows", `{"status":"OK","rows":[]}`, ErrMalformedResponse},
		{"short row", `{"status":"OK","rows":[{"elements":[]}]}`, ErrMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponse([]byte(tt.body), []string{"x"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseResponse_ElementNotFound(t *testing.T) {
	body := `{"status":"OK","rows":[{"elements":[
		{"status":"NOT_FOUND"},
		{"distance":{"text":"1 mi","value":1609},"duration":{"text":"3 mins","value":180},"status":"OK"}
	]}]}`
	infos, err := ParseResponse([]byte(body), []string{"nowhere", "somewhere"})
	require.NoError(t, err)
	assert.False(t, infos[0].OK)
	assert.True(t, infos[1].OK)
	assert.Equal(t, "somewhere", infos[1].Destination)
}
