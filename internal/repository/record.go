package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/aliskhannn/lwopan/internal/domain/entities"
	"github.com/aliskhannn/lwopan/internal/storage"
)

// Master table layout.
const (
	masterColumns  = 7
	columnID       = 0
	columnQuestion = 1
	columnAnswer   = 6
)

// CSVOptions describes where the flat tables live.
type CSVOptions struct {
	Dir               string // directory holding every table
	MasterFile        string // master table file name, e.g. book_all.csv
	CollectionPattern string // fmt pattern for collection tables, e.g. Book_%d.csv
	MasterHasHeader   bool   // discard the first master row after the schema check
}

// RecordRepository provides read-only access to the question tables stored as CSV files.
// The master table is loaded once and collection indexes are cached on first use.
type RecordRepository struct {
	opts   CSVOptions
	logger *zap.Logger

	mu     sync.Mutex
	master []entities.QuestionRecord
	loaded bool

	collections *storage.CollectionCache
}

// NewRecordRepository creates a new RecordRepository reading from opts.Dir.
func NewRecordRepository(opts CSVOptions, logger *zap.Logger) *RecordRepository {
	r := &RecordRepository{
		opts:   opts,
		logger: logger,
	}
	r.collections = storage.NewCollectionCache(r.readCollection)
	return r
}

// LoadMaster returns every valid record of the master table in file order.
// A failed load is retried on the next call.
func (r *RecordRepository) LoadMaster(ctx context.Context) ([]entities.QuestionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return r.master, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := r.readMaster()
	if err != nil {
		return nil, err
	}

	r.master = records
	r.loaded = true

	r.logger.Info("master table loaded",
		zap.String("file", r.opts.MasterFile),
		zap.Int("records", len(records)),
	)

	return records, nil
}

// LoadCollectionIndex returns the ordered question numbers of collection id.
func (r *RecordRepository) LoadCollectionIndex(ctx context.Context, id int) ([]string, error) {
	return r.collections.Get(ctx, id)
}

// Preload reads the master table and every collection table up front.
// Missing collection tables are skipped.
func (r *RecordRepository) Preload(ctx context.Context, workers int) error {
	if _, err := r.LoadMaster(ctx); err != nil {
		return fmt.Errorf("preload master: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for id := entities.MinCollectionID; id <= entities.MaxCollectionID; id++ {
		g.Go(func() error {
			_, err := r.LoadCollectionIndex(gctx, id)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return fmt.Errorf("preload collection %d: %w", id, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	r.logger.Info("collection tables preloaded", zap.Int("collections", r.collections.Len()))
	return nil
}

func (r *RecordRepository) readMaster() ([]entities.QuestionRecord, error) {
	name := r.opts.MasterFile
	f, err := os.Open(filepath.Join(r.opts.Dir, name))
	if err != nil {
		return nil, classifyOpenErr(name, err)
	}
	defer f.Close()

	reader := newTableReader(f)

	var (
		records    []entities.QuestionRecord
		schemaSeen bool
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			r.logger.Warn("skipping unparsable master row",
				zap.Int("line", parseErr.Line),
				zap.Error(err),
			)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w: %w", name, ErrAccess, err)
		}

		line, _ := reader.FieldPos(0)

		if !schemaSeen {
			schemaSeen = true
			if len(row) < masterColumns {
				return nil, fmt.Errorf("%s: expected at least %d columns, got %d: %w",
					name, masterColumns, len(row), ErrDataCorrupt)
			}
			if r.opts.MasterHasHeader {
				continue
			}
		}

		if len(row) < masterColumns {
			r.logger.Warn("skipping short master row",
				zap.Int("line", line),
				zap.Int("columns", len(row)),
			)
			continue
		}

		if !validFields(row[columnID], row[columnQuestion], row[columnAnswer]) {
			r.logger.Warn("skipping master row with invalid encoding", zap.Int("line", line))
			continue
		}

		rec := entities.NewQuestionRecord(row[columnID], row[columnQuestion], row[columnAnswer])
		if rec.ID == "" {
			r.logger.Warn("skipping master row without id", zap.Int("line", line))
			continue
		}

		records = append(records, rec)
	}

	if !schemaSeen {
		return nil, fmt.Errorf("%s: empty table: %w", name, ErrDataCorrupt)
	}

	return records, nil
}

func (r *RecordRepository) readCollection(ctx context.Context, id int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := fmt.Sprintf(r.opts.CollectionPattern, id)
	f, err := os.Open(filepath.Join(r.opts.Dir, name))
	if err != nil {
		return nil, classifyOpenErr(name, err)
	}
	defer f.Close()

	rows, err := newTableReader(f).ReadAll()
	if err != nil {
		r.logger.Error("failed to read collection table",
			zap.String("file", name),
			zap.Error(err),
		)
		return nil, fmt.Errorf("read %s: %w: %w", name, ErrAccess, err)
	}

	if len(rows) == 0 {
		return []string{}, nil
	}

	ids := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}

		if !validFields(row[0]) {
			return nil, fmt.Errorf("read %s: invalid encoding: %w", name, ErrAccess)
		}

		qid := strings.TrimSpace(row[0])
		if qid == "" {
			continue
		}
		ids = append(ids, qid)
	}

	return ids, nil
}

// newTableReader returns a CSV reader that strips a UTF-8 BOM and accepts
// rows of any width.
func newTableReader(src io.Reader) *csv.Reader {
	reader := csv.NewReader(transform.NewReader(src, unicode.BOMOverride(transform.Nop)))
	reader.FieldsPerRecord = -1
	return reader
}

func validFields(fields ...string) bool {
	for _, f := range fields {
		if !utf8.ValidString(f) || strings.ContainsRune(f, utf8.RuneError) {
			return false
		}
	}
	return true
}
