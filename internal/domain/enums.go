package domain

// Role is the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Intent is the coarse category an utterance is routed to.
type Intent string

const (
	IntentList       Intent = "list"
	IntentSchedule   Intent = "schedule"
	IntentDelete     Intent = "delete"
	IntentSearch     Intent = "search"
	IntentReschedule Intent = "reschedule"
	IntentGeneral    Intent = "general"
)

// Collecting names the slot-filling task in progress.
type Collecting string

const (
	CollectingNone       Collecting = ""
	CollectingMeeting    Collecting = "meeting"
	CollectingReschedule Collecting = "reschedule"
	CollectingDelete     Collecting = "delete"
	CollectingSearch     Collecting = "search"
)

// Collecting returns the slot-filling tag used while this intent is incomplete.
func (i Intent) Collecting() Collecting {
	switch i {
	case IntentSchedule:
		return CollectingMeeting
	case IntentReschedule:
		return CollectingReschedule
	case IntentDelete:
		return CollectingDelete
	case IntentSearch:
		return CollectingSearch
	default:
		return CollectingNone
	}
}

// Tool names understood by the dispatcher.
const (
	ToolListMeetings   = "list_meetings"
	ToolCreateMeeting  = "create_meeting"
	ToolUpdateMeeting  = "update_meeting"
	ToolDeleteMeeting  = "delete_meeting"
	ToolSearchMeetings = "search_meetings"
)
