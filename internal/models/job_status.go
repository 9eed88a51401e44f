package models

// Analysis status constants
const (
	AnalysisStatusPending  = "pending"
	AnalysisStatusDone     = "done"
	AnalysisStatusFailed   = "failed"
	AnalysisStatusRetrying = "retrying" // failed attempt the queue will run again
)

// Error kind labels stored with failed analyses
const (
	ErrorKindInvalidInput = "invalid_input"
	ErrorKindNoData       = "no_extractable_data"
	ErrorKindUpstream     = "upstream_failure"
	ErrorKindInternal     = "internal"
)

// Service type labels for usage logs
const (
	ServiceTypeAnalysis = "analysis"
)
