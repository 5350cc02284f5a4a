package mturk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	devenv "mturk-extractor/dev/env"
	"mturk-extractor/lib/testutil"

	"github.com/stretchr/testify/require"
)

func TestClientSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session-token")
		if err != nil || cookie.Value != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("user-agent") != "test-agent" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("content-type", "text/html")
		w.Write([]byte(dashboardPage))
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{
		DashboardUrl:  server.URL + "/dashboard",
		Cookies:       map[string]string{"session-token": "secret"},
		UserAgent:     "test-agent",
		DisableBypass: true,
	}, testutil.NewRecordingAPI())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	snap, err := client.Snapshot(ctx)
	require.NoError(t, err)

	e := NewExtractor(testutil.NewRecordingAPI())
	require.Equal(t, "A3EXAMPLEWORKER1", e.Fields(ctx, snap).WorkerId)
}

func TestClientSnapshotErrors(t *testing.T) {
	signin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>Sign-In</body></html>"))
	}))
	defer signin.Close()
	signinUrl := strings.Replace(signin.URL, "127.0.0.1", "localhost", 1)

	dashboard := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/expired":
			http.Redirect(w, r, signinUrl+"/ap/signin", http.StatusFound)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer dashboard.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	for _, path := range []string{"/expired", "/down"} {
		tel := testutil.NewRecordingAPI()
		client, err := NewClient(ClientOptions{
			DashboardUrl:  dashboard.URL + path,
			DisableBypass: true,
		}, tel)
		require.NoError(t, err)

		_, err = client.Snapshot(ctx)
		require.Error(t, err, path)
		require.Equal(t, 1, tel.Count(testutil.KindBroken), path)
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.html")
	err := os.WriteFile(path, []byte(dashboardPage), 0600)
	require.NoError(t, err)

	snap, err := FileSource{Path: path}.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.QueryAll("#dashboard-hits-overview .row"), 4)

	_, err = FileSource{Path: filepath.Join(t.TempDir(), "missing.html")}.Snapshot(context.Background())
	require.Error(t, err)
}

func getTestConfig(t testing.TB) devenv.DashboardTestConfig {
	contents, err := devenv.GetStateFile("dashboard_config.json")
	if err != nil {
		t.Skip("no live dashboard config:", err)
	}

	var cached devenv.DashboardTestConfig
	err = json.Unmarshal(contents, &cached)
	if err != nil {
		t.Fatal(err)
	}
	return cached
}

func TestLiveDashboard(t *testing.T) {
	config := getTestConfig(t)

	client, err := NewClient(ClientOptions{
		DashboardUrl: config.DashboardUrl,
		Cookies:      config.Cookies,
	}, testutil.NewRecordingAPI())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	snap, err := client.Snapshot(ctx)
	require.NoError(t, err)

	fields := NewExtractor(testutil.NewRecordingAPI()).Fields(ctx, snap)
	require.NotEqual(t, NotAvailable, fields.WorkerId)
}
