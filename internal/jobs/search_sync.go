package jobs

import (
	"context"
	"log"

	"anoa.com/nawhoknow/internal/entity"
	predictionRepo "anoa.com/nawhoknow/internal/modules/prediction/repository"
	search "anoa.com/nawhoknow/internal/modules/search/service"
)

// SearchSyncJob reconciles the Meilisearch index with the database. The
// write path indexes on approve/resolve already; this catches anything that
// slipped through while Meilisearch was down.
type SearchSyncJob struct {
	predictionRepo predictionRepo.Repository
	meili          search.MeiliSearchService
}

func NewSearchSyncJob(predictionRepo predictionRepo.Repository, meili search.MeiliSearchService) *SearchSyncJob {
	return &SearchSyncJob{
		predictionRepo: predictionRepo,
		meili:          meili,
	}
}

func (j *SearchSyncJob) Name() string {
	return "search-sync"
}

func (j *SearchSyncJob) Schedule() string {
	return "@every 15m"
}

func (j *SearchSyncJob) Run(ctx context.Context) error {
	predictions, err := j.predictionRepo.FindVisible(ctx, []string{entity.StatusApproved, entity.StatusResolved}, nil)
	if err != nil {
		return err
	}

	for _, p := range predictions {
		if err := j.meili.IndexPrediction(p); err != nil {
			log.Printf("Search sync: failed to index prediction %s: %v", p.ID, err)
		}
	}

	return nil
}
