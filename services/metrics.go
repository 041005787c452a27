package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "podtracker_mutations_applied_total",
		Help: "Total number of pod mutations applied, by operation.",
	}, []string{"op"})
	mutationsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "podtracker_mutations_failed_total",
		Help: "Total number of pod mutations that failed against the store.",
	})
	eventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "podtracker_events_published_total",
		Help: "Total number of events published on the live channel.",
	})
	driftTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "podtracker_drift_ticks_total",
		Help: "Total number of ambient drift ticks fired by the scheduler.",
	})
	releasesFired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "podtracker_releases_fired_total",
		Help: "Total number of one-shot auto-release timers that fired.",
	})
	sensorMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "podtracker_sensor_messages_total",
		Help: "Total number of MQTT sensor messages received.",
	})
	sensorRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "podtracker_sensor_messages_rejected_total",
		Help: "Total number of MQTT sensor messages rejected as malformed.",
	})
)
