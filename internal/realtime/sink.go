package realtime

// EventSink is the narrow publishing interface handlers and services depend
// on, so they can broadcast without knowing about the websocket transport.
type EventSink interface {
	Publish(event string, payload interface{})
}

// Event names carried over the wire.
const (
	EventNewNotice      = "newNotice"
	EventUpdatedNotice  = "updatedNotice"
	EventDeletedNotice  = "deletedNotice"
	EventScheduleUpdate = "scheduleUpdate"
)

// NopSink discards every event. Used when the realtime transport is disabled
// and in tests that do not care about broadcasts.
type NopSink struct{}

func (NopSink) Publish(string, interface{}) {}
