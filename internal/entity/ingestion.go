package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/xltables/constants"
)

// Ingestion records one upload attempt for data transfer between layers.
type Ingestion struct {
	ID          uuid.UUID                 `json:"id" yaml:"id"`
	Filename    string                    `json:"filename" yaml:"filename"`
	Sheet       string                    `json:"sheet" yaml:"sheet"`
	ContentHash string                    `json:"content_hash" yaml:"content_hash"`
	FileSize    int                       `json:"file_size" yaml:"file_size"`
	Status      constants.IngestionStatus `json:"status" yaml:"status"`
	Error       string                    `json:"error,omitempty" yaml:"error,omitempty"`
	TableNames  []string                  `json:"table_names" yaml:"table_names"`
	Discarded   int                       `json:"discarded" yaml:"discarded"`
	CreatedAt   time.Time                 `json:"created_at" yaml:"created_at"`
}
