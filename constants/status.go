package constants

// IngestionStatus is the outcome recorded for an ingestion attempt.
type IngestionStatus string

// Stable values (store these exact strings in DB).
const (
	IngestionSucceeded IngestionStatus = "succeeded" // tables published
	IngestionFailed    IngestionStatus = "failed"    // previous tables kept
)
