package mturk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"mturk-extractor/lib/assert"
	"mturk-extractor/lib/htmlutil"
	"mturk-extractor/lib/telemetry"
	"mturk-extractor/lib/textutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	report_extractor_worker_id         = "extractor.worker-id"
	report_extractor_current_earnings  = "extractor.current-earnings"
	report_extractor_next_transfer     = "extractor.next-transfer-date"
	report_extractor_hits_overview     = "extractor.hits-overview"
	report_extractor_table             = "extractor.table"
	report_extractor_strategy_panicked = "extractor.strategy"
)

const (
	selectorAvailableEarnings = "#dashboard-available-earnings .text-xs-right"
	selectorMutedText         = ".text-muted"
	selectorHitsOverviewRows  = "#dashboard-hits-overview .row"
	selectorRightCell         = ".text-xs-right"
	selectorReactProps        = "[data-react-props]"

	reactPropsAttr = "data-react-props"
	bodyDataMarker = "bodyData"
)

var transferDateRegex = regexp.MustCompile(`[A-Z][a-z]{2} \d{1,2}, \d{4}`)

var tracer = otel.Tracer("mturk-extractor.lib.scrapers.mturk")

// Extractor pulls fields off a dashboard snapshot.
type Extractor struct {
	tel telemetry.API
}

func NewExtractor(tel telemetry.API) Extractor {
	assert.NotNil(tel)
	return Extractor{tel: telemetry.NewScopedAPI("mturk", tel)}
}

// guard runs fn, a panic inside of it is reported and counts as "found nothing".
func (e Extractor) guard(id string, fn func()) (ok bool) {
	defer func() {
		r := recover()
		if r != nil {
			e.tel.ReportWarning(report_extractor_strategy_panicked, id, fmt.Errorf("recovered: %v", r))
			ok = false
		}
	}()
	fn()
	return true
}

// Fields extracts every scalar field, it never fails: fields that could not
// be found keep their defaults.
func (e Extractor) Fields(ctx context.Context, snap htmlutil.Snapshot) Fields {
	_, span := tracer.Start(ctx, "Fields")
	defer span.End()

	fields := DefaultFields()
	e.guard(report_extractor_worker_id, func() {
		fields.WorkerId = e.WorkerId(snap)
	})
	e.guard(report_extractor_current_earnings, func() {
		fields.CurrentEarnings = e.CurrentEarnings(snap)
	})
	e.guard(report_extractor_next_transfer, func() {
		fields.NextTransferDate = e.NextTransferDate(snap)
	})
	e.guard(report_extractor_hits_overview, func() {
		fields.ApprovedHits, fields.ApprovalRate = e.HitsOverview(snap)
	})

	span.SetAttributes(
		attribute.String("worker_id", fields.WorkerId),
		attribute.String("current_earnings", fields.CurrentEarnings),
	)
	return fields
}

// WorkerId runs WorkerIdStrategies in order.
func (e Extractor) WorkerId(snap htmlutil.Snapshot) string {
	for _, strategy := range WorkerIdStrategies {
		var id string
		var found bool
		e.guard(strategy.Name, func() {
			id, found = strategy.Find(snap)
		})
		if found {
			e.tel.ReportDebug("worker id found", strategy.Name, id)
			return id
		}
	}
	e.tel.ReportWarning(report_extractor_worker_id, "no strategy matched")
	return NotAvailable
}

func (e Extractor) CurrentEarnings(snap htmlutil.Snapshot) string {
	matches := snap.QueryAll(selectorAvailableEarnings)
	if len(matches) == 0 {
		e.tel.ReportWarning(report_extractor_current_earnings, "selector missed", selectorAvailableEarnings)
		return NotAvailable
	}
	return textutil.Default(textutil.Trim(matches[0].Text()), NotAvailable)
}

// NextTransferDate looks through the muted text for the "next payment"
// sentence. Every matching element overwrites the previous result.
func (e Extractor) NextTransferDate(snap htmlutil.Snapshot) string {
	date := ""
	for _, el := range snap.QueryAll(selectorMutedText) {
		text := el.Text()
		if !strings.Contains(text, "next payment") {
			continue
		}
		date, _ = textutil.FirstSubmatch(transferDateRegex, text)
	}
	if date == "" {
		e.tel.ReportWarning(report_extractor_next_transfer, "no transfer date found")
	}
	return textutil.Default(date, NotAvailable)
}

// HitsOverview returns the approved hit count and the approval rate from
// the hits overview rows, later rows overwrite earlier ones.
func (e Extractor) HitsOverview(snap htmlutil.Snapshot) (approvedHits string, approvalRate string) {
	approvedHits = DefaultApprovedHits
	approvalRate = DefaultApprovalRate

	rows := snap.QueryAll(selectorHitsOverviewRows)
	if len(rows) == 0 {
		e.tel.ReportWarning(report_extractor_hits_overview, "selector missed", selectorHitsOverviewRows)
		return approvedHits, approvalRate
	}

	for _, row := range rows {
		text := row.Text()
		if strings.Contains(text, "Approved") {
			cells := row.Find(selectorRightCell)
			if len(cells) > 0 {
				approvedHits = textutil.Default(textutil.Trim(cells[0].Text()), DefaultApprovedHits)
			}
		}
		if strings.Contains(text, "Approval Rate") {
			cells := row.Find(selectorRightCell)
			if len(cells) > 0 {
				approvalRate = textutil.Default(textutil.Trim(cells[0].Text()), DefaultApprovalRate)
			}
		}
	}
	return approvedHits, approvalRate
}

// Table returns the daily earnings rows embedded in the page, newest first.
//
// Every element carrying `bodyData` is parsed and the scan does not stop at
// the first hit, so the last one on the page wins. The result is never nil.
func (e Extractor) Table(ctx context.Context, snap htmlutil.Snapshot) []DailyEntry {
	_, span := tracer.Start(ctx, "Table")
	defer span.End()

	entries := []DailyEntry{}
	e.guard(report_extractor_table, func() {
		for _, el := range snap.QueryAll(selectorReactProps) {
			props, _ := el.Attr(reactPropsAttr)
			if !strings.Contains(props, bodyDataMarker) {
				continue
			}
			body, err := parseBodyData(props)
			if err != nil {
				e.tel.ReportWarning(report_extractor_table, err)
				continue
			}
			if body != nil {
				entries = body
			}
		}
	})

	span.SetAttributes(attribute.Int("entries", len(entries)))
	return entries
}

// parseBodyData returns nil without an error when the props do not carry a
// bodyData array.
func parseBodyData(props string) ([]DailyEntry, error) {
	var parsed struct {
		BodyData json.RawMessage `json:"bodyData"`
	}
	err := json.Unmarshal([]byte(props), &parsed)
	if err != nil {
		return nil, fmt.Errorf("unmarshal react props: %w", err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(parsed.BodyData), []byte("[")) {
		return nil, nil
	}

	body := []DailyEntry{}
	err = json.Unmarshal(parsed.BodyData, &body)
	if err != nil {
		return nil, fmt.Errorf("unmarshal body data: %w", err)
	}
	return body, nil
}
