package delivery

import (
	"context"
	"fmt"
	"time"

	"mturk-extractor/lib/assert"
	"mturk-extractor/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

// Webhook POSTs the payload as json to a url (zapier catch hooks,
// webhook.site, ...).
type Webhook struct {
	name string
	url  string
	http *resty.Client
}

func NewWebhook(name, url string, tel telemetry.API, output telemetry.HttpOutput) Webhook {
	assert.NotEmptyStr(url)
	assert.NotNil(tel)

	client := resty.New()
	client.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(client, telemetry.NewScopedAPI(fmt.Sprintf("webhook_%s", name), tel), output)

	return Webhook{
		name: name,
		url:  url,
		http: client,
	}
}

func (w Webhook) Name() string {
	return w.name
}

func (w Webhook) Deliver(ctx context.Context, payload Payload) error {
	res, err := w.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("post: unexpected status %s", res.Status())
	}
	return nil
}
