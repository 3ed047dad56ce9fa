package loadcheck

// ProgressEvery is how many submissions pass between verbose progress logs.
const ProgressEvery = 500

// PercentageMultiplier converts ratios to percentages.
const PercentageMultiplier = 100

// Outcomes of a single submission.
const (
	outcomeMatch    = "match"
	outcomeRejected = "rejected"
	outcomeMismatch = "mismatch"
	outcomeFailed   = "failed"
)
