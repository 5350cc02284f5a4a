package delivery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mturk-extractor/lib/assert"
	"mturk-extractor/lib/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	report_dispatcher_deliver = "dispatcher.deliver"
)

var tracer = otel.Tracer("mturk-extractor.lib.delivery")

// Target is a sink and whether the dispatcher waits for it.
type Target struct {
	Sink  Sink
	Await bool
}

// Result is the outcome of delivering to one awaited sink.
type Result struct {
	Sink string
	Err  error
}

type Results []Result

// Err joins the errors of every failed sink.
func (r Results) Err() error {
	var errs []error
	for _, result := range r {
		if result.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", result.Sink, result.Err))
		}
	}
	return errors.Join(errs...)
}

// Dispatcher delivers a payload to every target.
//
// Awaited targets are delivered one after the other in the order they were
// given. Once all of them are done the rest are started in the background
// and not waited for.
type Dispatcher struct {
	targets []Target
	tel     telemetry.API
	timeout time.Duration
	wg      *sync.WaitGroup
}

func NewDispatcher(targets []Target, tel telemetry.API) Dispatcher {
	assert.NotNil(tel)
	for _, t := range targets {
		assert.NotNil(t.Sink)
	}
	return Dispatcher{
		targets: targets,
		tel:     telemetry.NewScopedAPI("delivery", tel),
		timeout: time.Second * 60,
		wg:      &sync.WaitGroup{},
	}
}

// deliver never panics or returns past the sink, every failure ends up in
// the returned error and in telemetry.
func (d Dispatcher) deliver(ctx context.Context, sink Sink, payload Payload) (err error) {
	ctx, span := tracer.Start(ctx, "deliver")
	defer span.End()
	span.SetAttributes(attribute.String("sink", sink.Name()))

	defer func() {
		r := recover()
		if r != nil {
			err = fmt.Errorf("sink panicked: %v", r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "delivery failed")
			d.tel.ReportBroken(report_dispatcher_deliver, sink.Name(), err)
			return
		}
		d.tel.ReportDebug("delivered", sink.Name())
	}()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return sink.Deliver(ctx, payload)
}

// Deliver returns the results of the awaited targets once they are all
// done, the fire-and-forget targets may still be running.
func (d Dispatcher) Deliver(ctx context.Context, payload Payload) Results {
	var results Results
	var background []Target
	for _, target := range d.targets {
		if !target.Await {
			background = append(background, target)
			continue
		}
		err := d.deliver(ctx, target.Sink, payload)
		results = append(results, Result{Sink: target.Sink.Name(), Err: err})
	}

	detached := context.WithoutCancel(ctx)
	for _, target := range background {
		target := target
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.deliver(detached, target.Sink, payload)
		}()
	}

	return results
}

// Wait blocks until every fire-and-forget delivery has finished, it should
// be called before the process exits.
func (d Dispatcher) Wait() {
	d.wg.Wait()
}
