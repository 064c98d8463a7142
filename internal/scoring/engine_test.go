package scoring

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookprepper/bookprepper-server/internal/domain"
)

var fixedTime = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

type memStore struct {
	mu     sync.Mutex
	events []domain.FeedbackEvent
	scores map[string]*domain.PromptScore
	aggErr error
	putErr error
}

func newMemStore() *memStore {
	return &memStore{scores: make(map[string]*domain.PromptScore)}
}

func (m *memStore) AggregateFeedback(_ context.Context, prepID string) ([]domain.FeedbackAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.aggErr != nil {
		return nil, m.aggErr
	}
	type key struct {
		d domain.Dimension
		v domain.VoteValue
	}
	counts := map[key]int{}
	for _, e := range m.events {
		if e.PrepID == prepID {
			counts[key{e.Dimension, e.Value}]++
		}
	}
	var rows []domain.FeedbackAggregate
	for k, c := range counts {
		rows = append(rows, domain.FeedbackAggregate{Dimension: k.d, Value: k.v, Count: c})
	}
	return rows, nil
}

func (m *memStore) UpsertPromptScore(_ context.Context, s *domain.PromptScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.scores[s.PrepID] = s
	return nil
}

type countingObserver struct{ n int }

func (o *countingObserver) ScoreRecomputed(Summary) { o.n++ }

func newTestEngine(store Store, obs Observer) *Engine {
	e := NewEngine(store, slog.New(slog.NewTextHandler(io.Discard, nil)), obs)
	e.now = func() time.Time { return fixedTime.Add(time.Hour) }
	return e
}

func TestEngine_EndToEnd(t *testing.T) {
	store := newMemStore()
	obs := &countingObserver{}
	engine := newTestEngine(store, obs)

	assert.Nil(t, SummaryFromRecord(store.scores["prep-1"]))

	store.events = append(store.events, domain.FeedbackEvent{
		PrepID: "prep-1", Dimension: domain.DimensionCorrect, Value: domain.VoteAgree,
	})

	summary, err := engine.Recompute(context.Background(), "prep-1", &fixedTime)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Agree)
	assert.Equal(t, 0, summary.Disagree)
	assert.Equal(t, 1, summary.Total)
	assert.InDelta(t, 0.7451, summary.Score, 0.0001)
	assert.Equal(t, domain.DimensionTally{Agree: 1, Total: 1}, summary.Dimensions[domain.DimensionCorrect])
	for _, d := range domain.Dimensions[1:] {
		assert.Equal(t, domain.DimensionTally{}, summary.Dimensions[d], string(d))
	}

	rec := store.scores["prep-1"]
	require.NotNil(t, rec)
	require.NotNil(t, rec.LastFeedbackAt)
	assert.Equal(t, fixedTime, *rec.LastFeedbackAt)
	assert.Equal(t, fixedTime.Add(time.Hour), rec.UpdatedAt)
	assert.Equal(t, summary.Score, rec.Score)
	assert.Equal(t, 1, obs.n)
}

func TestEngine_NoFeedbackClearsLastFeedback(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store, nil)

	summary, err := engine.Recompute(context.Background(), "prep-empty", nil)
	require.NoError(t, err)
	assert.Zero(t, summary.Total)

	rec := store.scores["prep-empty"]
	require.NotNil(t, rec)
	assert.Nil(t, rec.LastFeedbackAt)
	assert.Zero(t, rec.Score)
	assert.Equal(t, ToPayload(summary), PayloadFromRecord(rec))
}

func TestEngine_DefaultsTimestampToNow(t *testing.T) {
	store := newMemStore()
	store.events = []domain.FeedbackEvent{{PrepID: "p", Dimension: domain.DimensionFun, Value: domain.VoteDisagree}}
	engine := newTestEngine(store, nil)

	_, err := engine.Recompute(context.Background(), "p", nil)
	require.NoError(t, err)
	require.NotNil(t, store.scores["p"].LastFeedbackAt)
	assert.Equal(t, fixedTime.Add(time.Hour), *store.scores["p"].LastFeedbackAt)
}

func TestEngine_PropagatesStoreErrors(t *testing.T) {
	boom := errors.New("database is locked")

	store := newMemStore()
	store.aggErr = boom
	_, err := newTestEngine(store, nil).Recompute(context.Background(), "p", nil)
	assert.ErrorIs(t, err, boom)

	store = newMemStore()
	store.putErr = boom
	obs := &countingObserver{}
	_, err = newTestEngine(store, obs).Recompute(context.Background(), "p", nil)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, obs.n)
}
