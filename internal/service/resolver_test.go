package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/lwopan/internal/domain/entities"
	"github.com/aliskhannn/lwopan/internal/repository"
)

const site = "https://happyread.kh.edu.tw/"

type fakeStore struct {
	master      []entities.QuestionRecord
	masterErr   error
	collections map[int][]string
	indexErr    error
}

func (f *fakeStore) LoadMaster(_ context.Context) ([]entities.QuestionRecord, error) {
	if f.masterErr != nil {
		return nil, f.masterErr
	}
	return f.master, nil
}

func (f *fakeStore) LoadCollectionIndex(_ context.Context, id int) ([]string, error) {
	if f.indexErr != nil {
		return nil, f.indexErr
	}
	ids, ok := f.collections[id]
	if !ok {
		return nil, fmt.Errorf("collection %d: %w", id, repository.ErrNotFound)
	}
	return ids, nil
}

type observation struct {
	intent  entities.Intent
	outcome Outcome
}

type spyRecorder struct {
	mu   sync.Mutex
	seen []observation
}

func (s *spyRecorder) ObserveResolution(intent entities.Intent, outcome Outcome, _ time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, observation{intent: intent, outcome: outcome})
}

func newFixtureStore() *fakeStore {
	return &fakeStore{
		master: []entities.QuestionRecord{
			entities.NewQuestionRecord("1", "Basic Math facts", "2+2=4"),
			entities.NewQuestionRecord("2", "History of the island", "long ago"),
			entities.NewQuestionRecord("3", "Applied MATHEMATICS", ""),
			entities.NewQuestionRecord("42", "The answer to everything", "forty-two"),
			entities.NewQuestionRecord("43", "Unanswered riddle", "   "),
			entities.NewQuestionRecord("44", "math puzzles for kids", "practice"),
			entities.NewQuestionRecord("42", "Duplicate row", "should not win"),
		},
		collections: map[int][]string{
			1:   {"44", "1", "3"},
			2:   {"3", "43"},
			3:   {},
			4:   {"999", "42"},
			184: {"2"},
		},
	}
}

func newTestResolver(store RecordStore) (*Resolver, *spyRecorder) {
	rec := &spyRecorder{}
	return NewResolver(store, NewClassifier(site), rec, zap.NewNop()), rec
}

func placeholder(q string) []entities.ResultEntry {
	return []entities.ResultEntry{{Question: q, Answer: entities.NotFoundAnswer}}
}

func TestResolve_Collection_EmitsAnsweredInIndexOrder(t *testing.T) {
	r, rec := newTestResolver(newFixtureStore())

	got := r.Resolve(context.Background(), site+"book?id=1&page=2")

	assert.Equal(t, []entities.ResultEntry{
		{Question: "math puzzles for kids", Answer: "practice"},
		{Question: "Basic Math facts", Answer: "2+2=4"},
	}, got)
	require.Len(t, rec.seen, 1)
	assert.Equal(t, observation{entities.IntentCollection, OutcomeMatched}, rec.seen[0])
}

func TestResolve_Collection_AllUnansweredCollapses(t *testing.T) {
	r, _ := newTestResolver(newFixtureStore())
	q := site + "book?id=2"

	assert.Equal(t, placeholder(q), r.Resolve(context.Background(), q))
}

func TestResolve_Collection_EmptyIndex(t *testing.T) {
	r, _ := newTestResolver(newFixtureStore())
	q := site + "?id=3"

	assert.Equal(t, placeholder(q), r.Resolve(context.Background(), q))
}

func TestResolve_Collection_MissingQuestionGetsOwnPlaceholder(t *testing.T) {
	r, _ := newTestResolver(newFixtureStore())

	got := r.Resolve(context.Background(), site+"?id=4")

	assert.Equal(t, []entities.ResultEntry{
		{Question: "question #999", Answer: entities.NotFoundAnswer},
		{Question: "The answer to everything", Answer: "forty-two"},
	}, got)
}

func TestResolve_Collection_UpperBound(t *testing.T) {
	r, _ := newTestResolver(newFixtureStore())

	got := r.Resolve(context.Background(), site+"?id=184")

	assert.Equal(t, []entities.ResultEntry{{Question: "History of the island", Answer: "long ago"}}, got)
}

func TestResolve_Collection_InvalidIdentifiers(t *testing.T) {
	tests := []string{"0", "185", "abc", "-1", "12abc", ""}

	for _, id := range tests {
		t.Run(id, func(t *testing.T) {
			r, _ := newTestResolver(newFixtureStore())
			q := site + "?id=" + id

			assert.Equal(t, placeholder(q), r.Resolve(context.Background(), q))
		})
	}
}

func TestResolve_Collection_MissingTable(t *testing.T) {
	r, rec := newTestResolver(newFixtureStore())
	q := site + "?id=100"

	assert.Equal(t, placeholder(q), r.Resolve(context.Background(), q))
	require.Len(t, rec.seen, 1)
	assert.Equal(t, OutcomeStoreError, rec.seen[0].outcome)
}

func TestResolve_Numeric(t *testing.T) {
	r, _ := newTestResolver(newFixtureStore())

	t.Run("answered", func(t *testing.T) {
		got := r.Resolve(context.Background(), "42")
		assert.Equal(t, []entities.ResultEntry{{Question: "The answer to everything", Answer: "forty-two"}}, got)
	})

	t.Run("unanswered yields placeholder", func(t *testing.T) {
		assert.Equal(t, placeholder("43"), r.Resolve(context.Background(), "43"))
	})

	t.Run("absent", func(t *testing.T) {
		assert.Equal(t, placeholder("7"), r.Resolve(context.Background(), "7"))
	})

	t.Run("string equality", func(t *testing.T) {
		assert.Equal(t, placeholder("042"), r.Resolve(context.Background(), "042"))
	})
}

func TestResolve_Text(t *testing.T) {
	r, _ := newTestResolver(newFixtureStore())

	got := r.Resolve(context.Background(), "math")

	assert.Equal(t, []entities.ResultEntry{
		{Question: "Basic Math facts", Answer: "2+2=4"},
		{Question: "math puzzles for kids", Answer: "practice"},
	}, got)
}

func TestResolve_Text_NoMatch(t *testing.T) {
	r, rec := newTestResolver(newFixtureStore())

	assert.Equal(t, placeholder("chemistry"), r.Resolve(context.Background(), "chemistry"))
	require.Len(t, rec.seen, 1)
	assert.Equal(t, observation{entities.IntentText, OutcomeNotFound}, rec.seen[0])
}

func TestResolve_Text_OnlyUnansweredMatches(t *testing.T) {
	r, _ := newTestResolver(newFixtureStore())

	assert.Equal(t, placeholder("riddle"), r.Resolve(context.Background(), "riddle"))
}

func TestResolve_StoreErrorsBecomePlaceholder(t *testing.T) {
	errs := []error{
		repository.ErrAccess,
		repository.ErrDataCorrupt,
		errors.New("disk on fire"),
	}
	queries := []string{"42", "math", site + "?id=1"}

	for _, storeErr := range errs {
		for _, q := range queries {
			t.Run(storeErr.Error()+"/"+q, func(t *testing.T) {
				store := newFixtureStore()
				store.masterErr = storeErr
				store.indexErr = storeErr
				r, _ := newTestResolver(store)

				assert.Equal(t, placeholder(q), r.Resolve(context.Background(), q))
			})
		}
	}
}

func TestResolve_Idempotent(t *testing.T) {
	r, _ := newTestResolver(newFixtureStore())

	for _, q := range []string{"math", "42", site + "?id=1", "nothing here"} {
		assert.Equal(t, r.Resolve(context.Background(), q), r.Resolve(context.Background(), q), q)
	}
}

func TestResolve_Concurrent(t *testing.T) {
	r, _ := newTestResolver(newFixtureStore())
	want := r.Resolve(context.Background(), "math")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, r.Resolve(context.Background(), "math"))
		}()
	}
	wg.Wait()
}

func TestResolve_NilRecorder(t *testing.T) {
	r := NewResolver(newFixtureStore(), NewClassifier(""), nil, zap.NewNop())

	assert.NotEmpty(t, r.Resolve(context.Background(), "anything"))
}

func TestIndexByID_FirstOccurrenceWins(t *testing.T) {
	byID := indexByID(newFixtureStore().master)

	assert.Equal(t, "forty-two", byID["42"].Answer)
}
