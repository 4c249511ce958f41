package constants

// JobStatus is the canonical status for rows in extract_job.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusRunning JobStatus = "RUNNING" // in progress
	JobStatusTextOK  JobStatus = "TEXT_OK" // stage 1 completed (text extracted)
	JobStatusLLMOK   JobStatus = "LLM_OK"  // stage 2 completed (answers parsed)
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure
)
