package async

import (
	"context"
	"time"
)

// Job asks for one workbook on disk to be ingested.
type Job struct {
	Path        string
	SubmittedAt time.Time
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
