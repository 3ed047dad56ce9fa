package loadcheck

import "time"

// Config holds configuration for a verification run.
type Config struct {
	BaseURL     string        // Base URL of the service
	NumSubjects int           // Number of subjects per estimator
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	Seed        uint64        // Generator seed; equal seeds give equal subjects
	SexTerm     bool          // BAA sex policy the server is expected to run
	OutputFile  string        // Output file for generated subjects
	Verbose     bool          // Enable verbose logging
}

// Subject is one synthetic panel submitted to an estimator endpoint.
type Subject struct {
	ID        string             `json:"id" yaml:"id"`
	Estimator string             `json:"estimator" yaml:"estimator"`
	Values    map[string]float64 `json:"values" yaml:"values"`
}

// Stats holds run statistics.
type Stats struct {
	SubjectsGenerated int
	Submitted         int
	Matched           int
	Rejected          int
	Mismatched        int
	Failed            int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
