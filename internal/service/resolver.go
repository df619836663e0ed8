package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/aliskhannn/lwopan/internal/domain/entities"
)

// Resolver turns raw user queries into question/answer pairs.
// It keeps no state between calls and is safe for concurrent use.
type Resolver struct {
	store      RecordStore
	classifier *Classifier
	recorder   Recorder
	logger     *zap.Logger
}

// NewResolver creates a new Resolver. recorder may be nil.
func NewResolver(store RecordStore, classifier *Classifier, recorder Recorder, logger *zap.Logger) *Resolver {
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Resolver{
		store:      store,
		classifier: classifier,
		recorder:   recorder,
		logger:     logger,
	}
}

// Resolve answers q. It never fails: missing data and store errors both
// come back as a single not-found placeholder keyed on q.
func (r *Resolver) Resolve(ctx context.Context, q string) []entities.ResultEntry {
	start := time.Now()
	query := r.classifier.Classify(q)

	var (
		results []entities.ResultEntry
		err     error
	)
	switch query.Intent {
	case entities.IntentCollection:
		results, err = r.resolveCollection(ctx, query)
	case entities.IntentNumeric:
		results, err = r.resolveNumeric(ctx, query)
	default:
		results, err = r.resolveText(ctx, query)
	}

	outcome := outcomeOf(results)
	if err != nil {
		r.logger.Warn("record store failed, answering with placeholder",
			zap.String("intent", string(query.Intent)),
			zap.String("query", q),
			zap.Error(err),
		)
		results = notFound(q)
		outcome = OutcomeStoreError
	}

	if len(results) == 0 {
		results = notFound(q)
		outcome = OutcomeNotFound
	}

	r.recorder.ObserveResolution(query.Intent, outcome, time.Since(start))
	return results
}

// resolveCollection answers a collection URL. Unanswered questions are
// dropped; numbers missing from the master table get their own placeholder.
func (r *Resolver) resolveCollection(ctx context.Context, query entities.Query) ([]entities.ResultEntry, error) {
	id, ok := ParseCollectionID(query.CollectionID)
	if !ok {
		return notFound(query.Raw), nil
	}

	ids, err := r.store.LoadCollectionIndex(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load collection %d: %w", id, err)
	}
	if len(ids) == 0 {
		return notFound(query.Raw), nil
	}

	master, err := r.store.LoadMaster(ctx)
	if err != nil {
		return nil, fmt.Errorf("load master: %w", err)
	}
	byID := indexByID(master)

	results := make([]entities.ResultEntry, 0, len(ids))
	for _, qid := range ids {
		rec, found := byID[qid]
		if !found {
			results = append(results, entities.ResultEntry{
				Question: "question #" + qid,
				Answer:   entities.NotFoundAnswer,
			})
			continue
		}

		if !rec.Answered() {
			continue
		}

		results = append(results, entities.FromRecord(rec))
	}

	// Unanswered records are dropped above, so an all-unanswered collection
	// leaves nothing and collapses into one placeholder.
	if len(results) == 0 {
		return notFound(query.Raw), nil
	}

	return results, nil
}

// resolveNumeric answers a bare question number. Unlike the other paths an
// unanswered match yields a visible placeholder.
func (r *Resolver) resolveNumeric(ctx context.Context, query entities.Query) ([]entities.ResultEntry, error) {
	master, err := r.store.LoadMaster(ctx)
	if err != nil {
		return nil, fmt.Errorf("load master: %w", err)
	}

	for _, rec := range master {
		if rec.ID != query.Raw {
			continue
		}

		if !rec.Answered() {
			return notFound(query.Raw), nil
		}
		return []entities.ResultEntry{entities.FromRecord(rec)}, nil
	}

	return notFound(query.Raw), nil
}

// resolveText returns every answered record whose question contains the
// query, ignoring case, in table order.
func (r *Resolver) resolveText(ctx context.Context, query entities.Query) ([]entities.ResultEntry, error) {
	master, err := r.store.LoadMaster(ctx)
	if err != nil {
		return nil, fmt.Errorf("load master: %w", err)
	}

	// A Caser is stateful, so each call gets its own.
	fold := cases.Fold()
	needle := fold.String(query.Raw)

	var results []entities.ResultEntry
	for _, rec := range master {
		if !rec.Answered() {
			continue
		}
		if strings.Contains(fold.String(rec.Question), needle) {
			results = append(results, entities.FromRecord(rec))
		}
	}

	if len(results) == 0 {
		return notFound(query.Raw), nil
	}

	return results, nil
}

// indexByID maps question numbers to records. The first occurrence wins.
func indexByID(records []entities.QuestionRecord) map[string]entities.QuestionRecord {
	byID := make(map[string]entities.QuestionRecord, len(records))
	for _, rec := range records {
		if _, dup := byID[rec.ID]; dup {
			continue
		}
		byID[rec.ID] = rec
	}
	return byID
}

func outcomeOf(results []entities.ResultEntry) Outcome {
	for _, e := range results {
		if !e.IsNotFound() {
			return OutcomeMatched
		}
	}
	return OutcomeNotFound
}

func notFound(q string) []entities.ResultEntry {
	return []entities.ResultEntry{entities.NotFound(q)}
}

type nopRecorder struct{}

func (nopRecorder) ObserveResolution(entities.Intent, Outcome, time.Duration) {}
