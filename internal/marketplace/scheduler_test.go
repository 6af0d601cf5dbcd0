package marketplace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerRefreshesDemand(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	NewScheduler(svc, 5*time.Millisecond).Start(ctx)
	assert.Equal(t, 1, repo.demandCallCount(), "refreshes once before returning")

	assert.Eventually(t, func() bool {
		return repo.demandCallCount() >= 3
	}, time.Second, 5*time.Millisecond)
}
