package services

import (
	"context"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"
)

// Scheduler is the only source of non-request-triggered mutations: the
// one-shot auto-release armed per check-in and the recurring ambient drift
// tick. Both run through the same engine and bus as request mutations, and
// both swallow errors since nobody is waiting on them.
type Scheduler struct {
	engine       *MutationEngine
	store        PodStore
	releaseDelay time.Duration
	driftPeriod  time.Duration
}

func NewScheduler(engine *MutationEngine, store PodStore, releaseDelay, driftPeriod time.Duration) *Scheduler {
	return &Scheduler{
		engine:       engine,
		store:        store,
		releaseDelay: releaseDelay,
		driftPeriod:  driftPeriod,
	}
}

// ScheduleRelease arms a one-shot timer that unconditionally resets the pod
// to available. There is no cancellation: a manual status change before the
// timer fires does not disarm it, the release just re-asserts the same state.
func (s *Scheduler) ScheduleRelease(id uint) {
	time.AfterFunc(s.releaseDelay, func() {
		if _, err := s.engine.Release(context.Background(), id); err != nil {
			log.WithError(err).WithField("pod_id", id).Warn("auto-release failed")
			return
		}
		releasesFired.Inc()
		log.WithField("pod_id", id).Debug("auto-release fired")
	})
}

// Run drives the recurring drift tick until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.driftPeriod)
	defer ticker.Stop()

	log.WithField("period", s.driftPeriod).Info("drift scheduler running")
	for {
		select {
		case <-ticker.C:
			s.driftTick(ctx)
		case <-ctx.Done():
			log.Info("drift scheduler stopped")
			return
		}
	}
}

// driftTick picks one pod uniformly at random and applies ambient drift.
// An empty fleet is a no-op.
func (s *Scheduler) driftTick(ctx context.Context) {
	driftTicks.Inc()

	pods, err := s.store.List(ctx)
	if err != nil {
		log.WithError(err).Warn("drift tick: list pods failed")
		return
	}
	if len(pods) == 0 {
		return
	}

	pick := pods[rand.Intn(len(pods))]
	if _, err := s.engine.AmbientDrift(ctx, pick.ID); err != nil {
		log.WithError(err).WithField("pod_id", pick.ID).Warn("ambient drift failed")
	}
}
