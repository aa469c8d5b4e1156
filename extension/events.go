// events.go defines the event types for extension notifications.
//
// Separated from extension.go to isolate the event system. Events let
// extensions react to ledger changes without modifying core logic.
//
// Design: Events are fire-and-forget notifications, not approval requests.
// Extensions cannot block or veto a publish via events; they observe after
// the version is committed. Validation is the only gate.

package extension

// EventType identifies the kind of event.
type EventType string

const (
	EventStoryPublish EventType = "story:publish"
	EventStoryRetire  EventType = "story:retire"
	EventStoryRestore EventType = "story:restore"
)

// Event is the base interface for all events.
type Event interface {
	EventType() EventType
	EventStory() string
}

// StoryPublishEvent is fired after a new version is stored. Publishing
// identical content creates no version and fires nothing.
type StoryPublishEvent struct {
	Story    string
	Key      string
	Version  int
	Author   string
	Message  string
	Warnings int
}

func (e StoryPublishEvent) EventType() EventType { return EventStoryPublish }
func (e StoryPublishEvent) EventStory() string   { return e.Story }

// StoryRetireEvent is fired after a story is retired.
type StoryRetireEvent struct {
	Story string
}

func (e StoryRetireEvent) EventType() EventType { return EventStoryRetire }
func (e StoryRetireEvent) EventStory() string   { return e.Story }

// StoryRestoreEvent is fired after a retired story is restored.
type StoryRestoreEvent struct {
	Story string
}

func (e StoryRestoreEvent) EventType() EventType { return EventStoryRestore }
func (e StoryRestoreEvent) EventStory() string   { return e.Story }

// EventHandler is implemented by extensions that want to receive events.
type EventHandler interface {
	HandleEvent(ctx Context, e Event) error
}
