package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/lwopan/internal/domain/entities"
	"github.com/aliskhannn/lwopan/internal/infra/postgres"
	records "github.com/aliskhannn/lwopan/internal/repository"
)

// Source is where imported tables are read from, normally the CSV repository.
type Source interface {
	LoadMaster(ctx context.Context) ([]entities.QuestionRecord, error)
	LoadCollectionIndex(ctx context.Context, id int) ([]string, error)
}

// ImportStats summarises one import run.
type ImportStats struct {
	Questions   int
	Collections int
	Items       int
}

// Importer replaces the database tables with the contents of a Source.
type Importer struct {
	transactor *postgres.Transactor
	logger     *zap.Logger
}

// NewImporter creates a new Importer.
func NewImporter(transactor *postgres.Transactor, logger *zap.Logger) *Importer {
	return &Importer{transactor: transactor, logger: logger}
}

// Import reads every table from src and swaps them in within one transaction.
// Collections missing from src are left out.
func (i *Importer) Import(ctx context.Context, src Source) (ImportStats, error) {
	var stats ImportStats

	master, err := src.LoadMaster(ctx)
	if err != nil {
		return stats, fmt.Errorf("read master: %w", err)
	}

	questionRows := make([][]any, 0, len(master))
	for pos, rec := range master {
		questionRows = append(questionRows, []any{pos, rec.ID, rec.Question, rec.Answer})
	}

	var collectionRows, itemRows [][]any
	for id := entities.MinCollectionID; id <= entities.MaxCollectionID; id++ {
		ids, err := src.LoadCollectionIndex(ctx, id)
		if errors.Is(err, records.ErrNotFound) {
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("read collection %d: %w", id, err)
		}

		collectionRows = append(collectionRows, []any{id})
		for pos, qid := range ids {
			itemRows = append(itemRows, []any{id, pos, qid})
		}
	}

	err = i.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := postgres.EnsureSchema(ctx, tx); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, "TRUNCATE questions, collection_items, collections"); err != nil {
			return fmt.Errorf("truncate: %w", err)
		}

		copies := []struct {
			table   string
			columns []string
			rows    [][]any
		}{
			{"questions", []string{"position", "id", "question", "answer"}, questionRows},
			{"collections", []string{"id"}, collectionRows},
			{"collection_items", []string{"collection_id", "position", "question_id"}, itemRows},
		}
		for _, c := range copies {
			if _, err := tx.CopyFrom(ctx, pgx.Identifier{c.table}, c.columns, pgx.CopyFromRows(c.rows)); err != nil {
				return fmt.Errorf("copy %s: %w", c.table, err)
			}
		}

		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("import: %w", err)
	}

	stats = ImportStats{
		Questions:   len(questionRows),
		Collections: len(collectionRows),
		Items:       len(itemRows),
	}

	i.logger.Info("tables imported",
		zap.Int("questions", stats.Questions),
		zap.Int("collections", stats.Collections),
		zap.Int("items", stats.Items),
	)

	return stats, nil
}
