package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xiaot623/meetagent/internal/domain"
	"github.com/xiaot623/meetagent/internal/repository"
	"github.com/xiaot623/meetagent/internal/tools"
	"github.com/xiaot623/meetagent/policy"
)

const listTrailer = "\n\nAnything you'd like to reschedule?"

// PolicyEvaluator decides whether a meeting write may go ahead.
type PolicyEvaluator interface {
	Evaluate(ctx context.Context, in policy.Input) (decision string, reason string, err error)
}

// Dispatcher executes meeting tools against the store.
type Dispatcher struct {
	store     repository.Store
	policy    PolicyEvaluator
	formatter *Formatter
	loc       *time.Location
	registry  *tools.Registry
}

// NewDispatcher creates a dispatcher with the five meeting tools registered.
func NewDispatcher(store repository.Store, pe PolicyEvaluator, loc *time.Location) *Dispatcher {
	d := &Dispatcher{
		store:     store,
		policy:    pe,
		formatter: NewFormatter(loc),
		loc:       loc,
		registry:  tools.NewRegistry(),
	}
	d.registry.MustRegister(domain.ToolListMeetings, d.list)
	d.registry.MustRegister(domain.ToolCreateMeeting, d.create)
	d.registry.MustRegister(domain.ToolUpdateMeeting, d.update)
	d.registry.MustRegister(domain.ToolDeleteMeeting, d.delete)
	d.registry.MustRegister(domain.ToolSearchMeetings, d.search)
	return d
}

// Has reports whether tool is known.
func (d *Dispatcher) Has(tool string) bool {
	return d.registry.Has(tool)
}

// Tools lists the registered tool names.
func (d *Dispatcher) Tools() []string {
	return d.registry.Names()
}

// Execute runs tool with args against the meeting snapshot of the current turn.
func (d *Dispatcher) Execute(ctx context.Context, tool string, args json.RawMessage, meetings []domain.Meeting) (tools.Result, error) {
	return d.registry.Execute(ctx, tool, tools.Invocation{Args: args, Meetings: meetings})
}

func (d *Dispatcher) list(ctx context.Context, inv tools.Invocation) (tools.Result, error) {
	return tools.Result{Reply: d.formatter.FormatList(inv.Meetings) + listTrailer}, nil
}

func (d *Dispatcher) create(ctx context.Context, inv tools.Invocation) (tools.Result, error) {
	var args CreateArgs
	if err := decodeArgs(inv.Args, &args); err != nil {
		return tools.Result{}, err
	}
	in := args.Input()

	if in.Title == "" {
		return tools.Result{Reply: "What should I call the meeting?", Collecting: domain.CollectingMeeting}, nil
	}
	start, err := domain.ParseDatetime(in.Datetime, d.loc)
	if err != nil {
		return tools.Result{
			Reply:      fmt.Sprintf("I couldn't work out when %q should happen. What date and time would you like?", in.Title),
			Collecting: domain.CollectingMeeting,
		}, nil
	}

	if in.DurationMinutes <= 0 {
		return tools.Result{
			Reply:      fmt.Sprintf("I can't schedule %q: meetings need a positive duration.", in.Title),
			Collecting: domain.CollectingMeeting,
		}, nil
	}
	if in.DurationMinutes > domain.MaxDurationMinutes {
		return tools.Result{
			Reply:      fmt.Sprintf("I can't schedule %q: meetings can last at most 7 days. How long should it be?", in.Title),
			Collecting: domain.CollectingMeeting,
		}, nil
	}

	window := domain.Window{Start: start, End: start.Add(time.Duration(in.DurationMinutes) * time.Minute)}
	conflicts := FindConflicts(window, inv.Meetings, d.loc)

	decision, reason, err := d.policy.Evaluate(ctx, policy.Input{
		Action:          "create",
		Title:           in.Title,
		DurationMinutes: in.DurationMinutes,
		Conflicts:       titles(conflicts),
		Confirmed:       args.Confirmed,
	})
	if err != nil {
		return tools.Result{}, fmt.Errorf("evaluate create policy: %w", err)
	}

	switch decision {
	case policy.DecisionBlock:
		return tools.Result{
			Reply:      fmt.Sprintf("I can't schedule %q: %s.", in.Title, reason),
			Collecting: domain.CollectingMeeting,
		}, nil
	case policy.DecisionConfirm:
		return tools.Result{
			Reply: fmt.Sprintf("Heads up: %q at %s overlaps with %s. Should I schedule it anyway?",
				in.Title, start.In(d.loc).Format(spokenLayout), joinTitles(conflicts)),
			Collecting: domain.CollectingMeeting,
		}, nil
	}

	in.Datetime = domain.FormatDatetime(start, d.loc)
	if _, err := d.store.Create(ctx, in); err != nil {
		return tools.Result{}, fmt.Errorf("create meeting: %w", err)
	}
	return tools.Result{Reply: fmt.Sprintf("Meeting %q has been scheduled successfully!", in.Title)}, nil
}

func (d *Dispatcher) update(ctx context.Context, inv tools.Invocation) (tools.Result, error) {
	var args UpdateArgs
	if err := decodeArgs(inv.Args, &args); err != nil {
		return tools.Result{}, err
	}

	m := resolveMeeting(inv.Meetings, args.MeetingID)
	if m == nil {
		return notFound(args.MeetingID, "reschedule", domain.CollectingReschedule), nil
	}
	start, err := domain.ParseDatetime(args.NewDatetime, d.loc)
	if err != nil {
		return tools.Result{
			Reply:      fmt.Sprintf("I couldn't work out the new time for %q. When should it move to?", m.Title),
			Collecting: domain.CollectingReschedule,
		}, nil
	}

	datetime := domain.FormatDatetime(start, d.loc)
	if _, err := d.store.Update(ctx, m.ID, domain.MeetingUpdate{Datetime: &datetime}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(args.MeetingID, "reschedule", domain.CollectingReschedule), nil
		}
		return tools.Result{}, fmt.Errorf("reschedule meeting %s: %w", m.ID, err)
	}
	return tools.Result{Reply: fmt.Sprintf("Meeting %q has been rescheduled successfully!", m.Title)}, nil
}

func (d *Dispatcher) delete(ctx context.Context, inv tools.Invocation) (tools.Result, error) {
	var args DeleteArgs
	if err := decodeArgs(inv.Args, &args); err != nil {
		return tools.Result{}, err
	}

	m := resolveMeeting(inv.Meetings, args.MeetingID)
	if m == nil {
		return notFound(args.MeetingID, "cancel", domain.CollectingDelete), nil
	}
	if err := d.store.Remove(ctx, m.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(args.MeetingID, "cancel", domain.CollectingDelete), nil
		}
		return tools.Result{}, fmt.Errorf("delete meeting %s: %w", m.ID, err)
	}
	return tools.Result{Reply: fmt.Sprintf("Meeting %q has been cancelled and removed from your calendar.", m.Title)}, nil
}

func (d *Dispatcher) search(ctx context.Context, inv tools.Invocation) (tools.Result, error) {
	var args SearchArgs
	if err := decodeArgs(inv.Args, &args); err != nil {
		return tools.Result{}, err
	}

	query := strings.TrimSpace(args.Query)
	matches := SearchMeetings(inv.Meetings, query)
	if len(matches) == 0 {
		return tools.Result{Reply: fmt.Sprintf("No meetings found matching %q.", query)}, nil
	}
	return tools.Result{Reply: d.formatter.FormatList(matches)}, nil
}

// SearchMeetings returns the meetings whose title or notes contain query,
// ignoring case.
func SearchMeetings(meetings []domain.Meeting, query string) []domain.Meeting {
	q := strings.ToLower(query)
	var out []domain.Meeting
	for _, m := range meetings {
		if strings.Contains(strings.ToLower(m.Title), q) || strings.Contains(strings.ToLower(m.NotesText()), q) {
			out = append(out, m)
		}
	}
	return out
}

// resolveMeeting finds the meeting ref points at: an exact id wins over a
// case-insensitive title match.
func resolveMeeting(meetings []domain.Meeting, ref string) *domain.Meeting {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	for i := range meetings {
		if meetings[i].ID == ref {
			return &meetings[i]
		}
	}
	lower := strings.ToLower(ref)
	for i := range meetings {
		if strings.Contains(strings.ToLower(meetings[i].Title), lower) {
			return &meetings[i]
		}
	}
	return nil
}

func notFound(ref, verb string, collecting domain.Collecting) tools.Result {
	return tools.Result{
		Reply:      fmt.Sprintf("I couldn't find a meeting matching %q. Which meeting would you like to %s?", ref, verb),
		Collecting: collecting,
	}
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func titles(meetings []domain.Meeting) []string {
	out := make([]string, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, m.Title)
	}
	return out
}

// joinTitles renders `"A"`, `"A" and "B"` or `"A", "B" and "C"`.
func joinTitles(meetings []domain.Meeting) string {
	quoted := make([]string, 0, len(meetings))
	for _, m := range meetings {
		quoted = append(quoted, fmt.Sprintf("%q", m.Title))
	}
	switch len(quoted) {
	case 0:
		return ""
	case 1:
		return quoted[0]
	default:
		return strings.Join(quoted[:len(quoted)-1], ", ") + " and " + quoted[len(quoted)-1]
	}
}
