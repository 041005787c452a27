package models

import "time"

// Envelope is the wire frame for every live event: the event name plus its
// payload, delivered verbatim to websocket subscribers.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// UsageEvent is broadcast on check-in, separately from the pod update itself.
type UsageEvent struct {
	PodID     uint      `json:"podId"`
	Method    string    `json:"method"`
	Timestamp time.Time `json:"timestamp"`
}

// ReportEvent is broadcast when a user files a report. Nothing is persisted.
type ReportEvent struct {
	PodID     uint      `json:"podId"`
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}
