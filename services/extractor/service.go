// Package extractor runs the whole pipeline: read the dashboard, extract,
// assemble a record and hand it to the sinks, at most once a day.
package extractor

import (
	"context"
	"fmt"

	"mturk-extractor/lib/assert"
	"mturk-extractor/lib/chrono"
	"mturk-extractor/lib/delivery"
	"mturk-extractor/lib/htmlutil"
	"mturk-extractor/lib/scrapers/mturk"
	"mturk-extractor/lib/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	report_service_snapshot = "service.snapshot"
	report_service_assemble = "service.assemble"
	report_service_gate     = "service.gate"
	report_service_delivery = "service.delivery"
	report_service_runs     = "service.runs"
)

var tracer = otel.Tracer("mturk-extractor.services.extractor")

// Source produces the dashboard page, see mturk.Client and mturk.FileSource.
type Source interface {
	Snapshot(ctx context.Context) (htmlutil.Snapshot, error)
}

// RunGate is the once-a-day guard, see runstate.Gate.
type RunGate interface {
	ShouldRun(ctx context.Context) (bool, error)
	Mark(ctx context.Context) error
	TotalRuns(ctx context.Context) (int64, error)
	IncrementRuns(ctx context.Context) (int64, error)
}

type AddressLookup interface {
	Lookup(ctx context.Context) string
}

type Deliverer interface {
	Deliver(ctx context.Context, payload delivery.Payload) delivery.Results
}

type Options struct {
	Source    Source
	Gate      RunGate
	Lookup    AddressLookup
	Deliverer Deliverer
	Time      chrono.TimeAPI
}

type Service struct {
	source    Source
	gate      RunGate
	lookup    AddressLookup
	deliverer Deliverer
	time      chrono.TimeAPI
	extractor mturk.Extractor
	tel       telemetry.API
}

func NewService(opts Options, tel telemetry.API) Service {
	assert.NotNil(opts.Source)
	assert.NotNil(opts.Gate)
	assert.NotNil(opts.Deliverer)
	assert.NotNil(opts.Time)
	assert.NotNil(tel)

	lookup := opts.Lookup
	if lookup == nil {
		lookup = NoLookup{}
	}

	return Service{
		source:    opts.Source,
		gate:      opts.Gate,
		lookup:    lookup,
		deliverer: opts.Deliverer,
		time:      opts.Time,
		extractor: mturk.NewExtractor(tel),
		tel:       telemetry.NewScopedAPI("extractor", tel),
	}
}

// Extract reads the dashboard and assembles a record without delivering it
// or touching the run state.
func (s Service) Extract(ctx context.Context) (Record, error) {
	ctx, span := tracer.Start(ctx, "Extract")
	defer span.End()

	runs, err := s.gate.TotalRuns(ctx)
	if err != nil {
		return Record{}, fmt.Errorf("read total runs: %w", err)
	}
	return s.extract(ctx, runs+1)
}

func (s Service) extract(ctx context.Context, runCount int64) (Record, error) {
	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		s.tel.ReportBroken(report_service_snapshot, err)
		return Record{}, fmt.Errorf("read dashboard: %w", err)
	}

	fields := s.extractor.Fields(ctx, snap)
	table := s.extractor.Table(ctx, snap)
	ip := s.lookup.Lookup(ctx)

	record, err := Assemble(Inputs{
		Fields:    fields,
		Table:     table,
		IpAddress: ip,
		RunCount:  runCount,
	}, s.time.Now())
	if err != nil {
		s.tel.ReportBroken(report_service_assemble, err)
		return Record{}, err
	}
	return record, nil
}

// Outcome is what a call to Run did.
type Outcome struct {
	// Skipped is set when the gate said the pipeline already ran today.
	Skipped bool
	Record  Record
	Results delivery.Results
}

// Run executes the pipeline if it has not completed today yet, force skips
// the check.
//
// An error is only returned when no record could be produced (or the gate
// could not be read), in which case nothing was delivered and the gate is
// left alone. Delivery failures are reported in Outcome.Results.
func (s Service) Run(ctx context.Context, force bool) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	if !force {
		should, err := s.gate.ShouldRun(ctx)
		if err != nil {
			s.tel.ReportBroken(report_service_gate, err)
			return Outcome{}, fmt.Errorf("read run gate: %w", err)
		}
		if !should {
			s.tel.ReportDebug("already ran today, skipping")
			span.SetAttributes(attribute.Bool("skipped", true))
			return Outcome{Skipped: true}, nil
		}
	}

	runs, err := s.gate.TotalRuns(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("read total runs: %w", err)
	}
	record, err := s.extract(ctx, runs+1)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		return Outcome{}, err
	}

	count, err := s.gate.IncrementRuns(ctx)
	if err != nil {
		s.tel.ReportWarning(report_service_gate, err)
	} else {
		s.tel.ReportCount(report_service_runs, count)
	}

	payload, err := record.Payload(s.time.Now())
	if err != nil {
		s.tel.ReportBroken(report_service_assemble, err)
		return Outcome{}, err
	}

	results := s.deliverer.Deliver(ctx, payload)
	err = results.Err()
	if err != nil {
		s.tel.ReportWarning(report_service_delivery, err)
	}

	err = s.gate.Mark(ctx)
	if err != nil {
		s.tel.ReportBroken(report_service_gate, err)
	}

	span.SetAttributes(
		attribute.String("worker_id", record.WorkerId),
		attribute.Int64("run_count", record.DailyRunInfo.RunCount),
	)
	s.tel.ReportDebug("run complete", "worker_id", record.WorkerId, "file", payload.Filename)

	return Outcome{
		Record:  record,
		Results: results,
	}, nil
}
