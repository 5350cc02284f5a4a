// Package delivery sends extraction payloads to external collectors.
//
// delivery is best effort: every sink is attempted independently, a failing
// sink is reported and never stops the others. nothing is retried.
package delivery

// Payload is the body POSTed to every collector.
type Payload struct {
	Filename  string `json:"filename"`
	Timestamp string `json:"timestamp"`
	// WorkerData is the whole record.
	WorkerData any `json:"workerData"`
	// Summary is the subset of the record collectors display.
	Summary any `json:"summary"`
	// RawData is the record serialized with 2 space indentation.
	RawData string `json:"rawData"`
}
