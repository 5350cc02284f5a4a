package extractor

import (
	"context"
	"time"

	"mturk-extractor/lib/assert"
	"mturk-extractor/lib/scrapers/mturk"
	"mturk-extractor/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

const (
	report_ip_lookup = "ip.lookup"
)

const DefaultIpLookupUrl = "https://api.ipify.org?format=json"

// IpLookup asks an ipify compatible endpoint for the public address of the
// machine.
type IpLookup struct {
	http *resty.Client
	url  string
	tel  telemetry.API
}

func NewIpLookup(url string, tel telemetry.API, output telemetry.HttpOutput) IpLookup {
	assert.NotEmptyStr(url)
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("ip_lookup", tel)

	client := resty.New()
	client.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(client, tel, output)

	return IpLookup{
		http: client,
		url:  url,
		tel:  tel,
	}
}

type ipifyResponse struct {
	Ip string `json:"ip"`
}

// Lookup returns "N/A" when the address could not be determined.
func (l IpLookup) Lookup(ctx context.Context) string {
	var body ipifyResponse
	res, err := l.http.R().
		SetContext(ctx).
		SetResult(&body).
		ForceContentType("application/json").
		Get(l.url)
	if err != nil {
		l.tel.ReportWarning(report_ip_lookup, err)
		return mturk.NotAvailable
	}
	if res.IsError() {
		l.tel.ReportWarning(report_ip_lookup, res.Status())
		return mturk.NotAvailable
	}
	if body.Ip == "" {
		return mturk.NotAvailable
	}
	return body.Ip
}

// NoLookup is used when the lookup is disabled.
type NoLookup struct{}

func (NoLookup) Lookup(ctx context.Context) string {
	return mturk.NotAvailable
}
