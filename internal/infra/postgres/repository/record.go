package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/aliskhannn/lwopan/internal/domain/entities"
	"github.com/aliskhannn/lwopan/internal/infra/postgres"
	records "github.com/aliskhannn/lwopan/internal/repository"
	"github.com/aliskhannn/lwopan/internal/storage"
)

// RecordRepository serves the question tables from PostgreSQL. It only reads.
// Like the CSV store, the master table is loaded once and collection indexes
// are cached on first use, so a new import is picked up after a restart.
type RecordRepository struct {
	db postgres.DBTX

	mu     sync.Mutex
	master []entities.QuestionRecord
	loaded bool

	collections *storage.CollectionCache
}

// NewRecordRepository creates a new RecordRepository with the provided database pool.
func NewRecordRepository(db postgres.DBTX) *RecordRepository {
	r := &RecordRepository{db: db}
	r.collections = storage.NewCollectionCache(r.readCollection)
	return r
}

// LoadMaster returns every question with an id in import order.
// A failed load is retried on the next call.
func (r *RecordRepository) LoadMaster(ctx context.Context) ([]entities.QuestionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return r.master, nil
	}

	master, err := r.readMaster(ctx)
	if err != nil {
		return nil, err
	}

	r.master = master
	r.loaded = true
	return master, nil
}

// LoadCollectionIndex returns the question numbers of a collection in order.
func (r *RecordRepository) LoadCollectionIndex(ctx context.Context, id int) ([]string, error) {
	return r.collections.Get(ctx, id)
}

func (r *RecordRepository) readMaster(ctx context.Context) ([]entities.QuestionRecord, error) {
	query := `
		SELECT id, question, answer
		FROM questions
		ORDER BY position
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load master: %w: %w", records.ErrAccess, err)
	}
	defer rows.Close()

	var result []entities.QuestionRecord
	for rows.Next() {
		var id, question, answer string
		if err := rows.Scan(&id, &question, &answer); err != nil {
			return nil, fmt.Errorf("scan question: %w: %w", records.ErrDataCorrupt, err)
		}
		rec := entities.NewQuestionRecord(id, question, answer)
		if rec.ID == "" {
			continue
		}
		result = append(result, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load master: %w: %w", records.ErrAccess, err)
	}

	return result, nil
}

func (r *RecordRepository) readCollection(ctx context.Context, id int) ([]string, error) {
	query := `
		SELECT question_id
		FROM collection_items
		WHERE collection_id = $1
		ORDER BY position
	`

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("load collection %d: %w: %w", id, records.ErrAccess, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var qid string
		if err := rows.Scan(&qid); err != nil {
			return nil, fmt.Errorf("scan question id: %w: %w", records.ErrAccess, err)
		}
		ids = append(ids, qid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load collection %d: %w: %w", id, records.ErrAccess, err)
	}

	if len(ids) > 0 {
		return ids, nil
	}

	var exists bool
	err = r.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM collections WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check collection %d: %w: %w", id, records.ErrAccess, err)
	}
	if !exists {
		return nil, fmt.Errorf("collection %d: %w", id, records.ErrNotFound)
	}

	return ids, nil
}
