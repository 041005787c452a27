package services

import (
	"context"
	"math/rand"
	"time"

	"pod-tracker-api/models"

	log "github.com/sirupsen/logrus"
)

// ReleaseScheduler arms the one-shot availability reset after a check-in.
type ReleaseScheduler interface {
	ScheduleRelease(id uint)
}

// MutationEngine applies every pod state transition. All paths load the pod,
// compute the new fields, persist through the store and broadcast the result,
// so the cleanliness invariant and the notification contract live in exactly
// one place.
type MutationEngine struct {
	store     PodStore
	bus       Publisher
	scheduler ReleaseScheduler
}

func NewMutationEngine(store PodStore, bus Publisher) *MutationEngine {
	return &MutationEngine{store: store, bus: bus}
}

// BindScheduler wires the one-shot release source. Without a scheduler,
// check-ins succeed but pods stay unavailable until a manual status change.
func (e *MutationEngine) BindScheduler(s ReleaseScheduler) {
	e.scheduler = s
}

// SetCleanliness stores the caller-supplied score verbatim and stamps
// last_cleaned. Deliberately unclamped: every other mutation path clamps to
// [0,100], but an explicit cleanliness write is trusted as-is.
func (e *MutationEngine) SetCleanliness(ctx context.Context, id uint, value int) (*models.Pod, error) {
	pod, err := e.store.Update(ctx, id, map[string]interface{}{
		"cleanliness":  value,
		"last_cleaned": time.Now().UTC(),
	})
	if err != nil {
		return nil, e.failed(err)
	}
	mutationsApplied.WithLabelValues("set_cleanliness").Inc()
	e.publishPod(ctx, pod)
	return pod, nil
}

// SetStatus updates availability and/or self-cleaning mode. Nil fields keep
// their current value and a fully empty request is a read, not a write.
func (e *MutationEngine) SetStatus(ctx context.Context, id uint, available, selfCleaning *bool) (*models.Pod, error) {
	fields := map[string]interface{}{}
	if available != nil {
		fields["available"] = *available
	}
	if selfCleaning != nil {
		fields["self_cleaning"] = *selfCleaning
	}
	if len(fields) == 0 {
		return e.store.Get(ctx, id)
	}

	pod, err := e.store.Update(ctx, id, fields)
	if err != nil {
		return nil, e.failed(err)
	}
	mutationsApplied.WithLabelValues("set_status").Inc()
	e.publishPod(ctx, pod)
	return pod, nil
}

// CheckIn marks a pod in use: cleanliness drops by 3 (floored at 0),
// availability flips off, a usage event fires alongside the pod update, and
// the auto-release timer is armed. Returns ErrConflict when the pod is
// already in use.
func (e *MutationEngine) CheckIn(ctx context.Context, id uint, method string) (*models.Pod, error) {
	pod, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !pod.Available {
		return nil, ErrConflict
	}

	cleanliness := pod.Cleanliness - 3
	if cleanliness < 0 {
		cleanliness = 0
	}

	updated, err := e.store.Update(ctx, id, map[string]interface{}{
		"cleanliness": cleanliness,
		"available":   false,
	})
	if err != nil {
		return nil, e.failed(err)
	}
	mutationsApplied.WithLabelValues("check_in").Inc()

	e.publish(ctx, EventUsage, models.UsageEvent{
		PodID:     id,
		Method:    method,
		Timestamp: time.Now().UTC(),
	})
	e.publishPod(ctx, updated)

	if e.scheduler != nil {
		e.scheduler.ScheduleRelease(id)
	}
	return updated, nil
}

// Release flips a pod back to available. It is the target of the one-shot
// timer and intentionally re-validates nothing: the timer always fires, even
// after a manual status change already made the pod available, in which case
// the second pod-updated broadcast is harmless.
func (e *MutationEngine) Release(ctx context.Context, id uint) (*models.Pod, error) {
	pod, err := e.store.Update(ctx, id, map[string]interface{}{
		"available": true,
	})
	if err != nil {
		return nil, e.failed(err)
	}
	mutationsApplied.WithLabelValues("release").Inc()
	e.publishPod(ctx, pod)
	return pod, nil
}

// AmbientDrift nudges cleanliness by a small random amount: upward for
// self-cleaning pods (0..9, capped at 100), downward otherwise (0..4, floored
// at 0). A zero-magnitude drift writes and broadcasts nothing.
func (e *MutationEngine) AmbientDrift(ctx context.Context, id uint) (*models.Pod, error) {
	pod, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := pod.Cleanliness
	if pod.SelfCleaning {
		next += rand.Intn(10)
		if next > 100 {
			next = 100
		}
	} else {
		next -= rand.Intn(5)
		if next < 0 {
			next = 0
		}
	}
	if next == pod.Cleanliness {
		return pod, nil
	}

	updated, err := e.store.Update(ctx, id, map[string]interface{}{
		"cleanliness":  next,
		"last_cleaned": time.Now().UTC(),
	})
	if err != nil {
		return nil, e.failed(err)
	}
	mutationsApplied.WithLabelValues("ambient_drift").Inc()
	e.publishPod(ctx, updated)
	return updated, nil
}

func (e *MutationEngine) publishPod(ctx context.Context, pod *models.Pod) {
	e.publish(ctx, EventPodUpdated, pod)
}

// publish is best-effort: a broken bus never fails the mutation that already
// committed.
func (e *MutationEngine) publish(ctx context.Context, event string, payload interface{}) {
	if err := e.bus.Publish(ctx, event, payload); err != nil {
		log.WithError(err).WithField("event", event).Warn("event publish failed")
	}
}

func (e *MutationEngine) failed(err error) error {
	if err != ErrNotFound {
		mutationsFailed.Inc()
	}
	return err
}
