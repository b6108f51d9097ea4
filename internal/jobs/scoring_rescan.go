package jobs

import (
	"context"
	"fmt"
	"time"

	scoring "anoa.com/nawhoknow/internal/modules/scoring/service"
)

// ScoringRescanJob periodically re-settles recently resolved predictions.
// Settlement is idempotent, so re-running only picks up votes a crashed or
// partial run missed.
type ScoringRescanJob struct {
	scoringService scoring.ScoringService
	every          time.Duration
	window         time.Duration
}

func NewScoringRescanJob(scoringService scoring.ScoringService, every time.Duration) *ScoringRescanJob {
	if every <= 0 {
		every = 2 * time.Minute
	}

	return &ScoringRescanJob{
		scoringService: scoringService,
		every:          every,
		// Look back far enough that a job outage never strands a vote.
		window: 48 * time.Hour,
	}
}

func (j *ScoringRescanJob) Name() string {
	return "scoring-rescan"
}

func (j *ScoringRescanJob) Schedule() string {
	return fmt.Sprintf("@every %s", j.every)
}

func (j *ScoringRescanJob) Run(ctx context.Context) error {
	return j.scoringService.RescanResolved(ctx, j.window)
}
