package scheduling

import (
	"context"
	"errors"
	"time"

	"screening-backend/internal/identity"
	"screening-backend/internal/shared/metrics"
	"screening-backend/internal/shared/telemetry"
)

const (
	// InterviewHour is the local hour at which interviews start.
	InterviewHour = 9
	// InterviewDuration is the length of every interview.
	InterviewDuration = 30 * time.Minute
)

// ErrCalendarUnavailable is returned when no calendar collaborator is configured.
var ErrCalendarUnavailable = errors.New("calendar provider unavailable")

// Calendar creates interview events. An empty link with a nil error means the provider
// accepted the request but returned no event link.
type Calendar interface {
	ScheduleEvent(ctx context.Context, email, name string, start, end time.Time) (string, error)
}

// Status is the outcome of scheduling one candidate.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusFailed    Status = "failed"
)

// Reason explains a failed scheduling attempt.
type Reason string

const (
	ReasonNoEmail       Reason = "no_email"
	ReasonProviderError Reason = "provider_error"
)

// Message returns the operator-facing text for r.
func (r Reason) Message() string {
	switch r {
	case ReasonNoEmail:
		return "No email found"
	case ReasonProviderError:
		return "Failed to schedule event"
	default:
		return ""
	}
}

// Result is the scheduling outcome for one selected candidate.
type Result struct {
	Candidate string `json:"candidate"`
	FileName  string `json:"fileName"`
	Status    Status `json:"status"`
	Link      string `json:"link,omitempty"`
	Reason    Reason `json:"reason,omitempty"`
}

// Succeeded reports whether an event was created.
func (r Result) Succeeded() bool {
	return r.Status == StatusScheduled
}

// Slot returns the interview window for a request made at now: tomorrow at InterviewHour
// in now's location, lasting InterviewDuration.
func Slot(now time.Time) (start, end time.Time) {
	y, m, d := now.Date()
	start = time.Date(y, m, d+1, InterviewHour, 0, 0, 0, now.Location())
	return start, start.Add(InterviewDuration)
}

// Orchestrator schedules interviews for selected candidates one at a time.
type Orchestrator struct {
	Calendar Calendar
	Now      func() time.Time
}

// NewOrchestrator builds an Orchestrator using the wall clock.
func NewOrchestrator(cal Calendar) *Orchestrator {
	return &Orchestrator{Calendar: cal, Now: time.Now}
}

// ScheduleAll attempts one calendar event per selected file name, in selection order.
// Repeated file names are scheduled once. A failure for one candidate never stops the
// others; every distinct selected file name gets exactly one Result.
func (o *Orchestrator) ScheduleAll(ctx context.Context, selected []string, identities map[string]identity.Identity) ([]Result, error) {
	if o == nil || o.Calendar == nil {
		return nil, ErrCalendarUnavailable
	}
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	start, end := Slot(now())

	seen := make(map[string]struct{}, len(selected))
	results := make([]Result, 0, len(selected))
	for _, fileName := range selected {
		if _, dup := seen[fileName]; dup {
			continue
		}
		seen[fileName] = struct{}{}
		results = append(results, o.scheduleOne(ctx, fileName, identities, start, end))
	}
	return results, nil
}

func (o *Orchestrator) scheduleOne(ctx context.Context, fileName string, identities map[string]identity.Identity, start, end time.Time) Result {
	id, ok := identities[fileName]
	if !ok {
		id = identity.Identity{FileName: fileName}
	}
	res := Result{Candidate: id.Label(), FileName: fileName}

	// A candidate that cannot be invited is reported by file name.
	if !id.HasEmail() {
		res.Candidate = fileName
		res.Status = StatusFailed
		res.Reason = ReasonNoEmail
		metrics.IncInterviewFailed()
		telemetry.Warn("interview.no_email", map[string]any{
			"file_name": fileName,
			"name":      id.Name,
			"known":     ok,
		})
		return res
	}

	link, err := o.Calendar.ScheduleEvent(ctx, id.Email, id.Label(), start, end)
	if err != nil || link == "" {
		res.Status = StatusFailed
		res.Reason = ReasonProviderError
		metrics.IncInterviewFailed()
		fields := map[string]any{
			"file_name": fileName,
			"candidate": res.Candidate,
			"email":     id.Email,
			"start":     start.Format(time.RFC3339),
			"end":       end.Format(time.RFC3339),
		}
		if err != nil {
			fields["error"] = err
		} else {
			fields["error"] = "empty event link"
		}
		telemetry.Error("interview.schedule_failed", fields)
		return res
	}

	res.Status = StatusScheduled
	res.Link = link
	metrics.IncInterviewScheduled()
	telemetry.Info("interview.scheduled", map[string]any{
		"file_name": fileName,
		"candidate": res.Candidate,
		"start":     start.Format(time.RFC3339),
	})
	return res
}
