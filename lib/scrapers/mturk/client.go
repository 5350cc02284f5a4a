package mturk

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"time"

	"mturk-extractor/lib/assert"
	"mturk-extractor/lib/htmlutil"
	"mturk-extractor/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
)

const (
	report_client_dashboard = "client.dashboard"
)

const DefaultDashboardUrl = "https://worker.mturk.com/dashboard"

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type ClientOptions struct {
	DashboardUrl string
	// Cookies are the session cookies of a logged in worker, keyed by name.
	Cookies   map[string]string
	UserAgent string
	Timeout   time.Duration
	// DisableBypass turns off the cloudflare bypass transport.
	DisableBypass bool
	// HttpOutput dumps every exchange when set.
	HttpOutput telemetry.HttpOutput
}

// Client fetches the dashboard page of a logged in worker.
type Client struct {
	http         *resty.Client
	dashboardUrl *url.URL
	tel          telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (Client, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("mturk_client", tel)

	if opts.DashboardUrl == "" {
		opts.DashboardUrl = DefaultDashboardUrl
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	dashboardUrl, err := url.Parse(opts.DashboardUrl)
	if err != nil {
		return Client{}, fmt.Errorf("parse dashboard url: %w", err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return Client{}, err
	}
	cookies := make([]*http.Cookie, 0, len(opts.Cookies))
	for name, value := range opts.Cookies {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value, Path: "/"})
	}
	jar.SetCookies(dashboardUrl, cookies)

	httpClient := resty.New()
	httpClient.SetCookieJar(jar)
	if !opts.DisableBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	httpClient.SetHeader("user-agent", opts.UserAgent)
	httpClient.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(httpClient, tel, opts.HttpOutput)

	return Client{
		http:         httpClient,
		dashboardUrl: dashboardUrl,
		tel:          tel,
	}, nil
}

// Snapshot fetches the dashboard and parses it.
//
// A dashboard request that ends up on another host (the amazon sign in page)
// means the session cookies expired, that is returned as an error.
func (c Client) Snapshot(ctx context.Context) (htmlutil.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "Client.Snapshot")
	defer span.End()

	endpoint := c.dashboardUrl.String()
	res, err := c.http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(
			report_client_dashboard,
			fmt.Errorf("fetch: %w", err),
			endpoint,
		)
		return nil, err
	}
	if res.IsError() {
		err := fmt.Errorf("unexpected status: %s", res.Status())
		c.tel.ReportBroken(report_client_dashboard, err, endpoint)
		return nil, err
	}
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		finalHost := res.RawResponse.Request.URL.Hostname()
		if finalHost != c.dashboardUrl.Hostname() {
			err := fmt.Errorf("redirected to %s, the session has likely expired", finalHost)
			c.tel.ReportBroken(report_client_dashboard, err, endpoint)
			return nil, err
		}
	}

	snap, err := htmlutil.NewSnapshot(bytes.NewReader(res.Body()))
	if err != nil {
		c.tel.ReportBroken(report_client_dashboard, err, endpoint)
		return nil, err
	}
	return snap, nil
}

// FileSource reads a dashboard page saved to disk.
type FileSource struct {
	Path string
}

func (s FileSource) Snapshot(ctx context.Context) (htmlutil.Snapshot, error) {
	_, span := tracer.Start(ctx, "FileSource.Snapshot")
	defer span.End()

	contents, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read dashboard file: %w", err)
	}
	return htmlutil.NewSnapshot(bytes.NewReader(contents))
}
