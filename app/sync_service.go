package app

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"leadtime/domain/core"
	"leadtime/domain/work"
)

// EvidenceStore persists the output of a pipeline run
type EvidenceStore interface {
	SaveDocument(ctx context.Context, syncID core.ID, source string, doc work.Document) error
}

// SyncService ingests feeds into the evidence store. Feeds are fetched
// and aggregated concurrently; each feed's own pipeline stays strictly
// sequential.
type SyncService struct {
	pipeline *PipelineService
	store    EvidenceStore
}

// FeedSyncResult describes one synced feed
type FeedSyncResult struct {
	Source     string  `json:"source"`
	SyncID     core.ID `json:"sync_id"`
	ItemCount  int     `json:"item_count"`
	GroupCount int     `json:"group_count"`
}

// SyncResult contains the results for all feeds of one sync run
type SyncResult struct {
	Feeds []FeedSyncResult `json:"feeds"`
}

// NewSyncService creates a sync service
func NewSyncService(pipeline *PipelineService, store EvidenceStore) *SyncService {
	return &SyncService{pipeline: pipeline, store: store}
}

// SyncFeeds runs the pipeline for every source and stores the results.
// Any feed failing fails the whole sync.
func (s *SyncService) SyncFeeds(ctx context.Context, sources []string) (*SyncResult, error) {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]FeedSyncResult, len(sources))

	for i, source := range sources {
		i, source := i, source
		g.Go(func() error {
			res, err := s.pipeline.Run(ctx, source)
			if err != nil {
				return err
			}

			syncID := core.NewID()
			if err := s.store.SaveDocument(ctx, syncID, source, res.Document); err != nil {
				return err
			}

			log.Printf("[SyncService] synced %s: %d items, %d groups", source, res.ItemCount, res.GroupCount)
			results[i] = FeedSyncResult{
				Source:     source,
				SyncID:     syncID,
				ItemCount:  res.ItemCount,
				GroupCount: res.GroupCount,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &SyncResult{Feeds: results}, nil
}
