package extractor

import (
	"encoding/json"
	"fmt"
	"time"

	"mturk-extractor/lib/chrono"
	"mturk-extractor/lib/delivery"
	"mturk-extractor/lib/earnings"
	"mturk-extractor/lib/scrapers/mturk"
	"mturk-extractor/lib/textutil"

	"github.com/mazen160/go-random"
)

const runIdLength = 12

// RunInfo describes the run that produced a record.
type RunInfo struct {
	RunDate  string `json:"runDate"`
	RunTime  string `json:"runTime"`
	RunCount int64  `json:"runCount"`
	RunId    string `json:"runId"`
}

// Record is everything collected in one run. It is never mutated after
// Assemble returns it.
type Record struct {
	WorkerId          string             `json:"workerId"`
	IpAddress         string             `json:"ipAddress"`
	TodaysEarnings    string             `json:"todaysEarnings"`
	ProjectedEarnings string             `json:"projectedEarnings"`
	CurrentEarnings   string             `json:"currentEarnings"`
	NextTransferDate  string             `json:"nextTransferDate"`
	ExtractionDate    string             `json:"extractionDate"`
	ApprovedHits      string             `json:"approvedHits"`
	ApprovalRate      string             `json:"approvalRate"`
	RawTableData      []mturk.DailyEntry `json:"rawTableData"`
	DailyRunInfo      RunInfo            `json:"dailyRunInfo"`
}

// Summary is the short form of a record sent next to the full one.
type Summary struct {
	WorkerId          string  `json:"workerId"`
	IpAddress         string  `json:"ipAddress"`
	TodaysEarnings    string  `json:"todaysEarnings"`
	ProjectedEarnings string  `json:"projectedEarnings"`
	CurrentEarnings   string  `json:"currentEarnings"`
	NextTransferDate  string  `json:"nextTransferDate"`
	ApprovedHits      string  `json:"approvedHits"`
	ApprovalRate      string  `json:"approvalRate"`
	DailyRunInfo      RunInfo `json:"dailyRunInfo"`
}

// Inputs are the pieces a record is assembled from.
type Inputs struct {
	Fields    mturk.Fields
	Table     []mturk.DailyEntry
	IpAddress string
	// RunCount is the number this run will have once it completes.
	RunCount int64
}

// Assemble merges the inputs into a record stamped with now. Empty values
// are replaced by their defaults so every field of the result is set.
//
// An error means something unexpected went wrong, the record must not be
// delivered.
func Assemble(in Inputs, now time.Time) (record Record, err error) {
	defer func() {
		r := recover()
		if r != nil {
			record = Record{}
			err = fmt.Errorf("assemble record: %v", r)
		}
	}()

	runId, err := random.String(runIdLength)
	if err != nil {
		return Record{}, fmt.Errorf("generate run id: %w", err)
	}

	table := in.Table
	if table == nil {
		table = []mturk.DailyEntry{}
	}
	todays, projected := earnings.Project(table, now)
	timestamp := chrono.ISOTimestamp(now)

	record = Record{
		WorkerId:          textutil.Default(in.Fields.WorkerId, mturk.NotAvailable),
		IpAddress:         textutil.Default(in.IpAddress, mturk.NotAvailable),
		TodaysEarnings:    todays,
		ProjectedEarnings: projected,
		CurrentEarnings:   textutil.Default(in.Fields.CurrentEarnings, mturk.NotAvailable),
		NextTransferDate:  textutil.Default(in.Fields.NextTransferDate, mturk.NotAvailable),
		ExtractionDate:    timestamp,
		ApprovedHits:      textutil.Default(in.Fields.ApprovedHits, mturk.DefaultApprovedHits),
		ApprovalRate:      textutil.Default(in.Fields.ApprovalRate, mturk.DefaultApprovalRate),
		RawTableData:      table,
		DailyRunInfo: RunInfo{
			RunDate:  chrono.DateKey(now),
			RunTime:  timestamp,
			RunCount: in.RunCount,
			RunId:    runId,
		},
	}
	return record, nil
}

func (r Record) Summary() Summary {
	return Summary{
		WorkerId:          r.WorkerId,
		IpAddress:         r.IpAddress,
		TodaysEarnings:    r.TodaysEarnings,
		ProjectedEarnings: r.ProjectedEarnings,
		CurrentEarnings:   r.CurrentEarnings,
		NextTransferDate:  r.NextTransferDate,
		ApprovedHits:      r.ApprovedHits,
		ApprovalRate:      r.ApprovalRate,
		DailyRunInfo:      r.DailyRunInfo,
	}
}

// Filename is mturk_data_<worker id>_<date of the run>.
func (r Record) Filename() string {
	return fmt.Sprintf("mturk_data_%s_%s", r.WorkerId, r.DailyRunInfo.RunDate)
}

// Payload wraps the record in what is sent to every sink.
func (r Record) Payload(now time.Time) (delivery.Payload, error) {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return delivery.Payload{}, fmt.Errorf("marshal record: %w", err)
	}
	return delivery.Payload{
		Filename:   r.Filename(),
		Timestamp:  chrono.ISOTimestamp(now),
		WorkerData: r,
		Summary:    r.Summary(),
		RawData:    string(raw),
	}, nil
}
