package app

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadtime/adapters/jira"
	"leadtime/domain/core"
	"leadtime/domain/work"
	"leadtime/internal/analysis"
	"leadtime/internal/testkit"
	"leadtime/internal/workdays"
)

func newTestPipeline() *PipelineService {
	return NewPipelineService(jira.NewParser(), workdays.NewCounter())
}

func forecasterForTest() *analysis.Forecaster {
	return analysis.NewForecaster(core.NewHalflife(45))
}

func TestPipelineEndToEnd(t *testing.T) {
	feed := testkit.WriteFeed(t,
		testkit.Item("PROJ-1", "A", "small",
			testkit.Day(2013, time.October, 14),
			testkit.Day(2013, time.October, 16),
			testkit.Day(2013, time.October, 18)),
		testkit.Item("PROJ-2", "A", "Small",
			testkit.Day(2013, time.October, 14),
			testkit.Day(2013, time.October, 15),
			testkit.Day(2013, time.October, 17)),
		testkit.Item("PROJ-3", "B", "large",
			testkit.Day(2013, time.October, 14),
			testkit.Day(2013, time.October, 21),
			testkit.Day(2013, time.October, 23)),
	)

	res, err := newTestPipeline().Run(context.Background(), feed)
	require.NoError(t, err)
	require.NotNil(t, res.Document)

	assert.Equal(t, 3, res.ItemCount)
	assert.Equal(t, 2, res.GroupCount)
	assert.Equal(t, []string{"A", "B"}, res.Document.Assignees())

	// Case-folded estimates land in one bucket
	require.Len(t, res.Document["A"]["small"].Evidence, 2)
	require.Len(t, res.Document["B"]["large"].Evidence, 1)

	// Single-item group has zero spread
	b := res.Document["B"]["large"]
	assert.Zero(t, b.DevDoneStddev)
	assert.Zero(t, b.ProdDoneStddev)
	assert.Equal(t, float64(b.Evidence[0].DevDoneWorkdays), b.DevDoneMean)
}

func TestPipelineEvidenceRoundTrip(t *testing.T) {
	feed := testkit.WriteFeed(t,
		testkit.Item("PROJ-1", "alice", "small",
			testkit.Day(2013, time.October, 17),
			testkit.Day(2013, time.October, 18),
			testkit.Day(2013, time.October, 20)),
	)

	res, err := newTestPipeline().Run(context.Background(), feed)
	require.NoError(t, err)

	payload, err := json.Marshal(res.Document)
	require.NoError(t, err)

	var decoded map[string]map[string]struct {
		Evidence []struct {
			ID       string `json:"id"`
			DevStart string `json:"dev_start"`
			DevDone  string `json:"dev_done"`
			ProdDone string `json:"prod_done"`
		} `json:"evidence"`
		DevMean float64 `json:"dev_done_workdays_mean"`
	}
	require.NoError(t, json.Unmarshal(payload, &decoded))

	evidence := decoded["alice"]["small"].Evidence
	require.Len(t, evidence, 1)
	assert.Equal(t, "PROJ-1", evidence[0].ID)
	assert.Equal(t, "2013-10-17 09:00:00", evidence[0].DevStart)
	assert.Equal(t, "2013-10-18 09:00:00", evidence[0].DevDone)
	assert.Equal(t, "2013-10-20 09:00:00", evidence[0].ProdDone)
	assert.Equal(t, float64(1), decoded["alice"]["small"].DevMean)
}

func TestPipelineFailsWithoutPartialDocument(t *testing.T) {
	feed := testkit.WriteFeed(t,
		testkit.Item("PROJ-1", "alice", "small",
			testkit.Day(2013, time.October, 17),
			testkit.Day(2013, time.October, 18),
			testkit.Day(2013, time.October, 20)),
		// Inverted dev range fails derivation
		testkit.Item("PROJ-2", "alice", "small",
			testkit.Day(2013, time.October, 18),
			testkit.Day(2013, time.October, 17),
			testkit.Day(2013, time.October, 20)),
	)

	res, err := newTestPipeline().Run(context.Background(), feed)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, core.IsDerivationError(err))
}

func TestPipelineMissingFeed(t *testing.T) {
	_, err := newTestPipeline().Run(context.Background(), "/nonexistent/feed.xml")
	require.Error(t, err)
	assert.True(t, core.IsIngestionError(err))
}

// memoryStore collects saved documents for sync tests
type memoryStore struct {
	mu   sync.Mutex
	docs map[string]work.Document
}

func newMemoryStore() *memoryStore {
	return &memoryStore{docs: make(map[string]work.Document)}
}

func (m *memoryStore) SaveDocument(ctx context.Context, syncID core.ID, source string, doc work.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[source] = doc
	return nil
}

func TestSyncFeeds(t *testing.T) {
	feedA := testkit.WriteFeed(t,
		testkit.Item("PROJ-1", "alice", "small",
			testkit.Day(2013, time.October, 14),
			testkit.Day(2013, time.October, 16),
			testkit.Day(2013, time.October, 18)),
	)
	feedB := testkit.WriteFeed(t,
		testkit.Item("PROJ-2", "bob", "large",
			testkit.Day(2013, time.October, 14),
			testkit.Day(2013, time.October, 21),
			testkit.Day(2013, time.October, 23)),
	)

	store := newMemoryStore()
	svc := NewSyncService(newTestPipeline(), store)

	res, err := svc.SyncFeeds(context.Background(), []string{feedA, feedB})
	require.NoError(t, err)
	require.Len(t, res.Feeds, 2)

	assert.Equal(t, feedA, res.Feeds[0].Source)
	assert.Equal(t, 1, res.Feeds[0].ItemCount)
	assert.False(t, res.Feeds[0].SyncID.IsEmpty())
	require.Contains(t, store.docs, feedA)
	require.Contains(t, store.docs, feedB)
	assert.Len(t, store.docs[feedB]["bob"]["large"].Evidence, 1)
}

func TestSyncFailsWhenAnyFeedFails(t *testing.T) {
	feed := testkit.WriteFeed(t,
		testkit.Item("PROJ-1", "alice", "small",
			testkit.Day(2013, time.October, 14),
			testkit.Day(2013, time.October, 16),
			testkit.Day(2013, time.October, 18)),
	)

	store := newMemoryStore()
	svc := NewSyncService(newTestPipeline(), store)

	_, err := svc.SyncFeeds(context.Background(), []string{feed, "/nonexistent/feed.xml"})
	require.Error(t, err)
}

func TestForecastServiceGroups(t *testing.T) {
	feed := testkit.WriteFeed(t,
		testkit.Item("PROJ-1", "alice", "Small",
			testkit.Day(2013, time.October, 14),
			testkit.Day(2013, time.October, 16),
			testkit.Day(2013, time.October, 18)),
		testkit.Item("PROJ-2", "alice", "small",
			testkit.Day(2013, time.October, 14),
			testkit.Day(2013, time.October, 15),
			testkit.Day(2013, time.October, 17)),
	)

	svc := NewForecastService(newTestPipeline(), forecasterForTest())
	doc, err := svc.Run(context.Background(), feed, testkit.Day(2013, time.October, 25))
	require.NoError(t, err)

	require.Contains(t, doc, "alice")
	require.Contains(t, doc["alice"], "small")
	series := doc["alice"]["small"]
	require.NotEmpty(t, series)
	assert.Equal(t, "small", series[0].Estimate)
}
