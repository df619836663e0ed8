package service

import (
	"context"
	"time"

	"github.com/aliskhannn/lwopan/internal/domain/entities"
)

// RecordStore provides read-only access to the question tables.
type RecordStore interface {
	LoadMaster(ctx context.Context) ([]entities.QuestionRecord, error)
	LoadCollectionIndex(ctx context.Context, id int) ([]string, error)
}

// Recorder observes finished resolutions.
type Recorder interface {
	ObserveResolution(intent entities.Intent, outcome Outcome, elapsed time.Duration)
}

// Outcome summarises how a query was answered.
type Outcome string

const (
	OutcomeMatched    Outcome = "matched"     // at least one real answer
	OutcomeNotFound   Outcome = "not_found"   // only the placeholder
	OutcomeStoreError Outcome = "store_error" // store failed, placeholder returned
)
