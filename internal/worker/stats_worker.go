package worker

import (
	"context"
	"log/slog"
	"time"
)

type VoteEvent struct {
	SurveyID int64
	OptionID int64
	UserID   int64
}

// Reconciler recomputes a survey's vote counter from the live vote rows.
type Reconciler interface {
	Reconcile(ctx context.Context, surveyID int64) (int64, error)
}

// StatsWorker listens for vote events and periodically reconciles the
// counters of surveys that saw traffic, healing any drift left behind by
// crashes between the vote write and the counter update.
type StatsWorker struct {
	Ch         <-chan VoteEvent
	reconciler Reconciler
	interval   time.Duration
	log        *slog.Logger
	dirty      map[int64]struct{}
}

func NewStatsWorker(ch <-chan VoteEvent, rec Reconciler, interval time.Duration, log *slog.Logger) *StatsWorker {
	if log == nil {
		log = slog.Default()
	}
	return &StatsWorker{
		Ch:         ch,
		reconciler: rec,
		interval:   interval,
		log:        log,
		dirty:      make(map[int64]struct{}),
	}
}

func (w *StatsWorker) Run(ctx context.Context) {
	w.log.Info("stats worker started", "reconcile_interval", w.interval.String())
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("stats worker stopped")
			return
		case ev := <-w.Ch:
			w.dirty[ev.SurveyID] = struct{}{}
			w.log.Debug("vote event", "survey_id", ev.SurveyID, "option_id", ev.OptionID)
		case <-ticker.C:
			w.reconcileDirty(ctx)
		}
	}
}

func (w *StatsWorker) reconcileDirty(ctx context.Context) {
	for surveyID := range w.dirty {
		if _, err := w.reconciler.Reconcile(ctx, surveyID); err != nil {
			w.log.Error("reconcile failed", "survey_id", surveyID, "err", err)
			continue
		}
		delete(w.dirty, surveyID)
	}
}
