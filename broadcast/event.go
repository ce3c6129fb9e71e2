// Package broadcast fans state-change events out to any number of
// observers (typically websocket clients) without blocking the publisher
// that holds the fleet lock.
package broadcast

// Kind names one of the four event types observers may receive.
type Kind string

const (
	Layout        Kind = "layout"
	StateSnapshot Kind = "state_snapshot"
	RobotUpdate   Kind = "robot_update"
	JobUpdate     Kind = "job_update"
)

// Event is a single message pushed to observers. Payload is whatever the
// publisher attaches (a robot, a job, or a full snapshot) and is serialized
// to JSON at the transport boundary.
type Event struct {
	Kind    Kind
	Payload any
}

// Publisher is the narrow interface the fleet store depends on so its core
// logic never imports a websocket package. Publish must not block the
// caller for longer than it takes to hand the event to an internal buffer —
// a slow or absent observer must never stall a state mutation taken under
// the fleet lock.
type Publisher interface {
	Publish(Event)
}

// Discard is a Publisher that drops every event, useful for tests and for
// running the core without any attached transport.
type Discard struct{}

func (Discard) Publish(Event) {}
