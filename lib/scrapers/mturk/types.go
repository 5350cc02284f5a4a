package mturk

import (
	"bytes"
	"encoding/json"
)

const (
	NotAvailable        = "N/A"
	DefaultApprovedHits = "0"
	DefaultApprovalRate = "0%"
)

// Fields holds the scalar values read off the dashboard, every field is
// already defaulted.
type Fields struct {
	WorkerId         string
	CurrentEarnings  string
	NextTransferDate string
	ApprovedHits     string
	ApprovalRate     string
}

// DefaultFields returns the values used when nothing could be extracted.
func DefaultFields() Fields {
	return Fields{
		WorkerId:         NotAvailable,
		CurrentEarnings:  NotAvailable,
		NextTransferDate: NotAvailable,
		ApprovedHits:     DefaultApprovedHits,
		ApprovalRate:     DefaultApprovalRate,
	}
}

// DailyEntry is one row of the earnings table embedded in the dashboard.
//
// The page ships more columns than date and earnings (submitted, approved,
// rejected counts...), they are kept verbatim and written back out when the
// entry is marshalled.
type DailyEntry struct {
	Date     string
	Earnings float64

	raw json.RawMessage
}

func (e *DailyEntry) UnmarshalJSON(data []byte) error {
	e.raw = append(json.RawMessage(nil), data...)
	e.Date = ""
	e.Earnings = 0

	var fields map[string]json.RawMessage
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		err := json.Unmarshal(data, &fields)
		if err != nil {
			return err
		}
	}

	var date string
	if json.Unmarshal(fields["date"], &date) == nil {
		e.Date = date
	}
	var earnings float64
	if json.Unmarshal(fields["earnings"], &earnings) == nil {
		e.Earnings = earnings
	}
	return nil
}

func (e DailyEntry) MarshalJSON() ([]byte, error) {
	if len(e.raw) > 0 {
		return e.raw, nil
	}
	return json.Marshal(struct {
		Date     string  `json:"date"`
		Earnings float64 `json:"earnings"`
	}{
		Date:     e.Date,
		Earnings: e.Earnings,
	})
}

// Field returns a column of the row that is not modelled by DailyEntry.
func (e DailyEntry) Field(name string) (json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if json.Unmarshal(e.raw, &fields) != nil {
		return nil, false
	}
	value, ok := fields[name]
	return value, ok
}
