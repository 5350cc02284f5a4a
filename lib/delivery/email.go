package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"strings"

	"mturk-extractor/lib/assert"

	"github.com/jordan-wright/email"
)

type EmailConfig struct {
	Server   string   `json:"server"`
	Port     int      `json:"port"`
	Address  string   `json:"address"`
	Password string   `json:"password"`
	To       []string `json:"to"`
}

// Email mails the payload summary with the full record attached.
type Email struct {
	name   string
	config EmailConfig
}

func NewEmail(name string, config EmailConfig) Email {
	assert.NotEmptyStr(config.Server)
	assert.NotEmptyStr(config.Address)
	return Email{name: name, config: config}
}

func (e Email) Name() string {
	return e.name
}

func (e Email) message(payload Payload) (*email.Email, error) {
	summary, err := json.MarshalIndent(payload.Summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("MTurk Extractor <%s>", e.config.Address)
	mail.To = e.config.To
	mail.Subject = payload.Filename
	mail.Text = []byte(fmt.Sprintf("Extracted at %s\n\n%s\n", payload.Timestamp, summary))

	_, err = mail.Attach(
		bytes.NewBufferString(payload.RawData),
		payload.Filename+".json",
		"application/json",
	)
	if err != nil {
		return nil, fmt.Errorf("attach record: %w", err)
	}
	return mail, nil
}

func (e Email) send(mail *email.Email) error {
	addr := fmt.Sprintf("%s:%d", e.config.Server, e.config.Port)
	err := mail.Send(addr, smtp.PlainAuth("", e.config.Address, e.config.Password, e.config.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// Deliver gives up when ctx is done, the smtp client itself has no
// deadlines so a stuck send is left to finish in the background.
func (e Email) Deliver(ctx context.Context, payload Payload) error {
	mail, err := e.message(payload)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- e.send(mail)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("send mail: %w", ctx.Err())
	}
}
