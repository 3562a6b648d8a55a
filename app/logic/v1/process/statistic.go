package process

import (
	"context"
	"log/slog"

	"github.com/askbase-ai/askbase-ai/app/core"
	"github.com/askbase-ai/askbase-ai/pkg/register"
)

// StatisticProcess recomputes knowledge base counters for every base
// flagged on the redis signal set. Recounting from current rows keeps
// the job idempotent; a failed member stays flagged for the next tick.
type StatisticProcess struct {
	core *core.Core
}

func NewStatisticProcess(core *core.Core) *StatisticProcess {
	return &StatisticProcess{core: core}
}

func (p *StatisticProcess) RecalculateFlagged(ctx context.Context) error {
	signals, err := p.core.Cache().StatSignals(ctx)
	if err != nil {
		return err
	}

	for _, kbUUID := range signals {
		if err := p.recalculate(ctx, kbUUID); err != nil {
			slog.Error("failed to recalculate knowledge base statistics",
				slog.String("kb_uuid", kbUUID),
				slog.String("error", err.Error()))
			continue
		}
		if err := p.core.Cache().RemoveStatSignal(ctx, kbUUID); err != nil {
			slog.Error("failed to remove statistic signal",
				slog.String("kb_uuid", kbUUID),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

func (p *StatisticProcess) recalculate(ctx context.Context, kbUUID string) error {
	itemCount, err := p.core.Store().KnowledgeBaseItemStore().CountByKb(ctx, kbUUID)
	if err != nil {
		return err
	}
	embeddingCount, err := p.core.Store().KnowledgeBaseEmbeddingStore().CountByKb(ctx, kbUUID)
	if err != nil {
		return err
	}
	starCount, err := p.core.Store().KnowledgeBaseStarStore().CountActiveByKb(ctx, kbUUID)
	if err != nil {
		return err
	}
	qaCount, err := p.core.Store().QaRecordStore().CountByKb(ctx, kbUUID)
	if err != nil {
		return err
	}

	return p.core.Store().KnowledgeBaseStore().UpdateCounts(ctx, kbUUID, itemCount, embeddingCount, starCount, qaCount)
}

func init() {
	register.RegisterFunc(ProcessKey{}, func(provider *Process) {
		provider.Cron().AddFunc("@every 1m", func() {
			if err := NewStatisticProcess(provider.Core()).RecalculateFlagged(context.Background()); err != nil {
				slog.Error("statistic recalculation tick failed", slog.String("error", err.Error()))
			}
		})
	})
}
