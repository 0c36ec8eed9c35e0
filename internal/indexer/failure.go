package indexer

import (
	"context"

	"github.com/gabapcia/registrywatch/internal/cursor"
	"github.com/gabapcia/registrywatch/internal/pkg/logger"
	"github.com/gabapcia/registrywatch/internal/pkg/x/chflow"
)

// Stage names the step of a cycle that failed.
type Stage string

const (
	StageFetch   Stage = "fetch"
	StageDecode  Stage = "decode"
	StagePublish Stage = "publish"
	StageCommit  Stage = "commit"
)

// CycleFailure describes a cycle abandoned after its retries were exhausted.
// The loop resumes from Cursor after a pause; nothing past it was committed.
type CycleFailure struct {
	Network string
	Cursor  cursor.Cursor
	Stage   Stage
	Err     error
}

// FailureHandler is called for every abandoned cycle.
type FailureHandler func(ctx context.Context, failure CycleFailure)

func defaultOnCycleFailure(ctx context.Context, failure CycleFailure) {
	logger.Error(ctx, "indexing cycle abandoned",
		"indexer.network", failure.Network,
		"cursor.value", failure.Cursor.String(),
		"cycle.stage", failure.Stage,
		"error", failure.Err,
	)
}

// handleCycleFailures passes every failure received on failureCh to the
// configured handler until the channel is closed or ctx is canceled.
func (s *service) handleCycleFailures(ctx context.Context, failureCh <-chan CycleFailure) {
	for {
		failure, ok := chflow.Receive(ctx, failureCh)
		if !ok {
			return
		}

		s.failureHandler(ctx, failure)
	}
}
