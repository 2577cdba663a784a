package bus

// EventName identifies one cacheable read query whose result can go stale.
// Every mutation publishes the names of the reads it affects; the set below is
// closed so a missing publish shows up as an unknown name at compile or
// validation time rather than a silently never-firing string.
type EventName string

const (
	EventGetByID         EventName = "event.getById"
	EventGetPaginated    EventName = "event.getPaginatedEvents"
	EventGetParticipants EventName = "event.getParticipants"
	EventGetFeed         EventName = "event.getFeed"

	GroupGetByID       EventName = "group.getById"
	GroupGetPaginated  EventName = "group.getPaginatedGroups"
	GroupGetMembers    EventName = "group.getMembers"
	GroupFreeIntervals EventName = "group.getFreeIntervals"

	CommentGetForEvent EventName = "comment.getForEvent"
	RatingGetForEvent  EventName = "rating.getForEvent"
	ChatGetForGroup    EventName = "chat.getForGroup"

	UserGetByID EventName = "user.getById"
)

var knownNames = map[EventName]bool{
	EventGetByID:         true,
	EventGetPaginated:    true,
	EventGetParticipants: true,
	EventGetFeed:         true,
	GroupGetByID:         true,
	GroupGetPaginated:    true,
	GroupGetMembers:      true,
	GroupFreeIntervals:   true,
	CommentGetForEvent:   true,
	RatingGetForEvent:    true,
	ChatGetForGroup:      true,
	UserGetByID:          true,
}

// Known reports whether name belongs to the taxonomy. Used to reject
// client-supplied subscription filters.
func Known(name EventName) bool {
	return knownNames[name]
}

// Event is an invalidation notice: the read it affects and, when ScopeID is
// set, the single entity instance it is scoped to. A nil ScopeID is a
// wildcard affecting every instance of the read.
type Event struct {
	Name    EventName `json:"eventName"`
	ScopeID *int64    `json:"data"`
}

// Scoped builds an Event narrowed to one entity id.
func Scoped(name EventName, id int) Event {
	scope := int64(id)
	return Event{Name: name, ScopeID: &scope}
}

// Wildcard builds an Event affecting all instances of the read.
func Wildcard(name EventName) Event {
	return Event{Name: name}
}
