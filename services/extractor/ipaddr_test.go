package extractor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"mturk-extractor/lib/testutil"

	"github.com/stretchr/testify/require"
)

func TestIpLookup(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{name: "ok", status: http.StatusOK, body: `{"ip":"203.0.113.7"}`, expected: "203.0.113.7"},
		{name: "missing ip", status: http.StatusOK, body: `{}`, expected: "N/A"},
		{name: "malformed", status: http.StatusOK, body: `not json`, expected: "N/A"},
		{name: "server error", status: http.StatusInternalServerError, body: ``, expected: "N/A"},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(test.status)
				w.Write([]byte(test.body))
			}))
			defer server.Close()

			lookup := NewIpLookup(server.URL, testutil.NewRecordingAPI(), nil)
			require.Equal(t, test.expected, lookup.Lookup(context.Background()))
		})
	}
}

func TestIpLookupUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	tel := testutil.NewRecordingAPI()
	lookup := NewIpLookup(url, tel, nil)
	require.Equal(t, "N/A", lookup.Lookup(context.Background()))
	require.NotZero(t, tel.Count(testutil.KindWarning))
}

func TestNoLookup(t *testing.T) {
	require.Equal(t, "N/A", NoLookup{}.Lookup(context.Background()))
}
