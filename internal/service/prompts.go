package service

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/xiaot623/meetagent/internal/domain"
)

// SystemPrompt is the persona used for general conversation.
const SystemPrompt = `You are a helpful voice-only meeting scheduling assistant.

Your capabilities:
1. Schedule new meetings by collecting: title, date & time (IST timezone), duration, and optional notes
2. List upcoming meetings in a natural, readable format
3. Reschedule, cancel or find existing meetings

Important rules:
- Always speak naturally and conversationally
- Ask ONE question at a time when collecting meeting details
- When confirming a meeting, summarize all details in one sentence
- When listing meetings, format them clearly with bullet points (⤷)
- Always use IST (Indian Standard Time) timezone unless user specifies otherwise
- Be concise but friendly
- If user says "yes" or confirms, proceed with the action
- If user says "no" or corrects something, ask for the correction

Always respond in a natural, conversational voice that sounds good when spoken aloud.`

var promptTemplates = template.Must(template.New("prompts").Parse(`
{{define "history"}}Conversation history:
{{range .History}}{{.Role}}: {{.Content}}
{{else}}(none)
{{end}}{{end}}

{{define "schedule"}}Based on the conversation history and current input, extract meeting details.
If information is missing, ask for it one piece at a time.
The current date and time is {{.Now}}. Use the {{.Zone}} timezone unless the user states another.

{{template "history" .}}
Current input: {{.Input}}

Respond with JSON if all details are present:
{
  "action": "create",
  "title": "...",
  "datetime": "ISO 8601 with timezone offset",
  "duration_minutes": number,
  "notes": "...",
  "participants": ["..."],
  "confirmed": false
}
Set "confirmed" to true only if the user has explicitly agreed to book over an overlapping meeting.

Or respond naturally asking for missing information.{{end}}

{{define "reschedule"}}User wants to reschedule a meeting. The current date and time is {{.Now}}.
Current meetings:
{{.Meetings}}

{{template "history" .}}
User said: {{.Input}}

Identify which meeting and what the new datetime should be. Respond with JSON:
{
  "action": "update",
  "meetingId": "id or title",
  "newDatetime": "ISO 8601 with timezone offset ({{.Zone}} unless the user states another)"
}

Or ask for clarification if unclear.{{end}}

{{define "delete"}}User wants to cancel a meeting.
Current meetings:
{{.Meetings}}

{{template "history" .}}
User said: {{.Input}}

Identify which meeting should be removed. Respond with JSON:
{
  "action": "delete",
  "meetingId": "id or title"
}

Or ask which meeting they mean if unclear.{{end}}

{{define "search"}}User wants to find meetings.

{{template "history" .}}
User said: {{.Input}}

Identify the words to search meeting titles and notes for. Respond with JSON:
{
  "action": "search",
  "query": "..."
}

Or ask what they are looking for if unclear.{{end}}
`))

type promptData struct {
	Now      string
	Zone     string
	Input    string
	History  []domain.ConversationMessage
	Meetings string
}

// buildPrompt renders the extraction prompt for intent.
func buildPrompt(intent domain.Intent, data promptData) (string, error) {
	var b strings.Builder
	if err := promptTemplates.ExecuteTemplate(&b, string(intent), data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", intent, err)
	}
	return b.String(), nil
}

func zoneLabel(now time.Time) string {
	name, _ := now.Zone()
	return name
}
