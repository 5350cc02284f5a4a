package extractor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mturk-extractor/lib/chrono"
	"mturk-extractor/lib/delivery"
	"mturk-extractor/lib/htmlutil"
	"mturk-extractor/lib/runstate"
	"mturk-extractor/lib/runstate/db"
	"mturk-extractor/lib/scrapers/mturk"
	"mturk-extractor/lib/testutil"

	"github.com/stretchr/testify/require"
)

const dashboardFixture = "../../lib/scrapers/mturk/testdata/dashboard.html"

type recordingSink struct {
	name     string
	err      error
	mutex    sync.Mutex
	payloads []delivery.Payload
}

func (s *recordingSink) Name() string {
	return s.name
}

func (s *recordingSink) Deliver(ctx context.Context, payload delivery.Payload) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.payloads = append(s.payloads, payload)
	return s.err
}

func (s *recordingSink) Delivered() []delivery.Payload {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.payloads
}

type failingSource struct{}

func (failingSource) Snapshot(ctx context.Context) (htmlutil.Snapshot, error) {
	return nil, errors.New("session expired")
}

type staticLookup string

func (l staticLookup) Lookup(ctx context.Context) string {
	return string(l)
}

type fixture struct {
	service    Service
	store      runstate.Store
	clock      *movableTime
	dispatcher delivery.Dispatcher
	primary    *recordingSink
	monitor    *recordingSink
}

type movableTime struct {
	now time.Time
}

func (m *movableTime) Now() time.Time {
	return m.now
}

func newFixture(t *testing.T, source Source, primaryErr error) fixture {
	store, err := runstate.NewStore(context.Background(), testutil.OpenMemoryDB(t, db.Schema))
	require.NoError(t, err)

	clock := &movableTime{now: testNow}
	primary := &recordingSink{name: "zapier", err: primaryErr}
	monitor := &recordingSink{name: "webhook.site"}

	tel := testutil.NewRecordingAPI()
	dispatcher := delivery.NewDispatcher([]delivery.Target{
		{Sink: primary, Await: true},
		{Sink: monitor},
	}, tel)

	service := NewService(Options{
		Source:    source,
		Gate:      runstate.NewGate(store, clock),
		Lookup:    staticLookup("203.0.113.7"),
		Deliverer: dispatcher,
		Time:      clock,
	}, tel)

	return fixture{
		service:    service,
		store:      store,
		clock:      clock,
		dispatcher: dispatcher,
		primary:    primary,
		monitor:    monitor,
	}
}

func TestRunOncePerDay(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	f := newFixture(t, mturk.FileSource{Path: dashboardFixture}, nil)

	outcome, err := f.service.Run(ctx, false)
	require.NoError(t, err)
	f.dispatcher.Wait()

	require.False(t, outcome.Skipped)
	require.NoError(t, outcome.Results.Err())
	require.Equal(t, "A3EXAMPLEWORKER1", outcome.Record.WorkerId)
	require.Equal(t, "203.0.113.7", outcome.Record.IpAddress)
	require.Equal(t, "$9.50", outcome.Record.TodaysEarnings)
	require.Equal(t, "$191.25", outcome.Record.ProjectedEarnings)
	require.Equal(t, "$18.42", outcome.Record.CurrentEarnings)
	require.Equal(t, "Jan 15, 2025", outcome.Record.NextTransferDate)
	require.Equal(t, "1,204", outcome.Record.ApprovedHits)
	require.Equal(t, "99.67%", outcome.Record.ApprovalRate)
	require.Equal(t, int64(1), outcome.Record.DailyRunInfo.RunCount)

	require.Len(t, f.primary.Delivered(), 1)
	require.Len(t, f.monitor.Delivered(), 1)
	require.Equal(t, "mturk_data_A3EXAMPLEWORKER1_2025-01-02", f.primary.Delivered()[0].Filename)

	last, err := f.store.LastRunDate(ctx)
	require.NoError(t, err)
	require.Equal(t, "2025-01-02", last)

	// same day, nothing happens
	f.clock.now = testNow.Add(time.Hour * 3)
	outcome, err = f.service.Run(ctx, false)
	require.NoError(t, err)
	f.dispatcher.Wait()
	require.True(t, outcome.Skipped)
	require.Len(t, f.primary.Delivered(), 1)

	// forced
	outcome, err = f.service.Run(ctx, true)
	require.NoError(t, err)
	f.dispatcher.Wait()
	require.False(t, outcome.Skipped)
	require.Equal(t, int64(2), outcome.Record.DailyRunInfo.RunCount)
	require.Len(t, f.primary.Delivered(), 2)

	// next day
	f.clock.now = testNow.Add(time.Hour * 24)
	outcome, err = f.service.Run(ctx, false)
	require.NoError(t, err)
	f.dispatcher.Wait()
	require.False(t, outcome.Skipped)
	require.Equal(t, "2025-01-03", outcome.Record.DailyRunInfo.RunDate)
	require.Equal(t, "$0.00", outcome.Record.TodaysEarnings)

	runs, err := f.store.TotalRuns(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), runs)
}

func TestRunAbortsWhenExtractionFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, failingSource{}, nil)

	_, err := f.service.Run(ctx, false)
	require.ErrorContains(t, err, "session expired")
	f.dispatcher.Wait()

	require.Empty(t, f.primary.Delivered())
	require.Empty(t, f.monitor.Delivered())

	last, err := f.store.LastRunDate(ctx)
	require.NoError(t, err)
	require.Equal(t, "", last)
	runs, err := f.store.TotalRuns(ctx)
	require.NoError(t, err)
	require.Zero(t, runs)
}

func TestRunMarksGateWhenDeliveryFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, mturk.FileSource{Path: dashboardFixture}, errors.New("502 bad gateway"))

	outcome, err := f.service.Run(ctx, false)
	require.NoError(t, err)
	f.dispatcher.Wait()

	require.ErrorContains(t, outcome.Results.Err(), "zapier")
	require.Len(t, f.monitor.Delivered(), 1)

	last, err := f.store.LastRunDate(ctx)
	require.NoError(t, err)
	require.Equal(t, "2025-01-02", last)
}

func TestExtractLeavesStateAlone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, mturk.FileSource{Path: dashboardFixture}, nil)

	record, err := f.service.Extract(ctx)
	require.NoError(t, err)
	require.Equal(t, "A3EXAMPLEWORKER1", record.WorkerId)
	require.Equal(t, int64(1), record.DailyRunInfo.RunCount)
	require.Len(t, record.RawTableData, 2)

	require.Empty(t, f.primary.Delivered())
	runs, err := f.store.TotalRuns(ctx)
	require.NoError(t, err)
	require.Zero(t, runs)
	last, err := f.store.LastRunDate(ctx)
	require.NoError(t, err)
	require.Equal(t, "", last)
}

var _ chrono.TimeAPI = (*movableTime)(nil)
