package delivery

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mturk-extractor/lib/testutil"

	"github.com/stretchr/testify/require"
)

func TestWebhookDeliver(t *testing.T) {
	received := make(chan map[string]any, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var decoded map[string]any
		if json.Unmarshal(body, &decoded) != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		received <- decoded
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer server.Close()

	hook := NewWebhook("zapier", server.URL, testutil.NewRecordingAPI(), nil)
	require.Equal(t, "zapier", hook.Name())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	err := hook.Deliver(ctx, Payload{
		Filename:   "mturk_data_A1_2025-01-02",
		Timestamp:  "2025-01-02T12:00:00.000Z",
		WorkerData: map[string]string{"workerId": "A1"},
		Summary:    map[string]string{"workerId": "A1"},
		RawData:    "{\n  \"workerId\": \"A1\"\n}",
	})
	require.NoError(t, err)

	body := <-received
	require.Equal(t, "mturk_data_A1_2025-01-02", body["filename"])
	require.Equal(t, "2025-01-02T12:00:00.000Z", body["timestamp"])
	require.Equal(t, map[string]any{"workerId": "A1"}, body["workerData"])
	require.Equal(t, map[string]any{"workerId": "A1"}, body["summary"])
	require.Equal(t, "{\n  \"workerId\": \"A1\"\n}", body["rawData"])
}

func TestWebhookErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer server.Close()

	hook := NewWebhook("gone", server.URL, testutil.NewRecordingAPI(), nil)
	err := hook.Deliver(context.Background(), Payload{})
	require.ErrorContains(t, err, "410")
}
