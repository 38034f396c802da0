package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// ============================================
// Standard Tracing Fields (Context level)
// These fields are propagated through the call chain
// ============================================

const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldJobID is the ETL job ID
	FieldJobID = "job_id"

	// FieldJobType is the ETL job type (SEED, DAILY_UPDATE, BATCH_PROCESS)
	FieldJobType = "job_type"

	// FieldWorkerID is the worker instance ID (UUID)
	FieldWorkerID = "worker_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldTournamentID is the TopDeck tournament ID
	FieldTournamentID = "tournament_id"

	// FieldWeekStart is the unix start of the week being processed
	FieldWeekStart = "week_start"
)

// ============================================
// Standard Metric Fields (Entry level)
// These fields are used for aggregation and alerting
// ============================================

const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldStatus is the operation status
	FieldStatus = "status"

	// FieldSize is a payload size in bytes
	FieldSize = "size"
)
