// Package smoke drives a running convention service end to end: concurrent
// registrations, duplicate detection, payment confirmation, UID
// verification, pitch submission and visitor counting.
package smoke

import "time"

// Config holds the smoke run settings.
type Config struct {
	BaseURL    string        // Base URL of the service
	Delegates  int           // Number of delegates to register
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	AdminToken string        // Bearer token for admin routes; admin steps are skipped when empty
	ReportFile string        // Where the JSON report is written; empty skips it
	Verbose    bool
}

// Stats are the counters collected during a run.
type Stats struct {
	Registered        int64         `json:"registered"`
	DuplicatesBlocked int64         `json:"duplicatesBlocked"`
	RegisterFailed    int64         `json:"registerFailed"`
	Confirmed         int64         `json:"confirmed"`
	Verified          int64         `json:"verified"`
	PitchesAccepted   int64         `json:"pitchesAccepted"`
	PitchesBlocked    int64         `json:"pitchesBlocked"`
	PitchFailed       int64         `json:"pitchFailed"`
	VisitsCounted     int64         `json:"visitsCounted"`
	VisitorCount      int64         `json:"visitorCount"`
	StartTime         time.Time     `json:"startTime"`
	EndTime           time.Time     `json:"endTime"`
	Duration          time.Duration `json:"duration"`
}
