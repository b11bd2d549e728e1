package domain

// ConversationMessage is one entry of the caller-held conversation history.
type ConversationMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ConversationState hints what the dialogue is collecting. It is advisory:
// every turn re-classifies intent from the utterance alone.
type ConversationState struct {
	Collecting Collecting `json:"collecting,omitempty"`
}

// TurnRequest is the input of one conversation turn.
type TurnRequest struct {
	Message             string                `json:"message"`
	ConversationHistory []ConversationMessage `json:"conversationHistory"`
}

// TurnResponse is the reply to one conversation turn.
type TurnResponse struct {
	Response          string            `json:"response"`
	ConversationState ConversationState `json:"conversationState"`
}
