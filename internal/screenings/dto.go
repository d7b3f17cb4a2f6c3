package screenings

import (
	"time"

	"screening-backend/internal/scheduling"
)

type rankedCandidateResponse struct {
	FileName string  `json:"filename"`
	Score    float64 `json:"score"`
	Summary  string  `json:"summary"`
	Name     string  `json:"name,omitempty"`
	HasEmail bool    `json:"hasEmail"`
}

type screeningResponse struct {
	Phase            Phase                     `json:"phase"`
	JobDescription   string                    `json:"jobDescription,omitempty"`
	RankedCandidates []rankedCandidateResponse `json:"rankedCandidates"`
	CreatedAt        *time.Time                `json:"createdAt,omitempty"`
}

type confirmRequest struct {
	SelectedCandidates []string `json:"selectedCandidates" form:"selected_candidates"`
}

type scheduleResultResponse struct {
	Candidate string            `json:"candidate"`
	FileName  string            `json:"filename"`
	Status    scheduling.Status `json:"status"`
	Link      string            `json:"link,omitempty"`
	Reason    scheduling.Reason `json:"reason,omitempty"`
	Message   string            `json:"message,omitempty"`
}

type confirmResponse struct {
	Results   []scheduleResultResponse `json:"results"`
	Scheduled int                      `json:"scheduled"`
	Failed    int                      `json:"failed"`
}

func emptyResponse() screeningResponse {
	return screeningResponse{Phase: PhaseEmpty, RankedCandidates: []rankedCandidateResponse{}}
}

func toResponse(snap Snapshot) screeningResponse {
	out := screeningResponse{
		Phase:            PhaseRanked,
		JobDescription:   snap.JobDescription,
		RankedCandidates: make([]rankedCandidateResponse, 0, len(snap.Entries)),
	}
	if !snap.CreatedAt.IsZero() {
		created := snap.CreatedAt
		out.CreatedAt = &created
	}
	for _, e := range snap.Entries {
		id, _ := snap.Identity(e.FileName)
		out.RankedCandidates = append(out.RankedCandidates, rankedCandidateResponse{
			FileName: e.FileName,
			Score:    e.Score,
			Summary:  e.Summary,
			Name:     id.Name,
			HasEmail: id.HasEmail(),
		})
	}
	return out
}

func toConfirmResponse(results []scheduling.Result) confirmResponse {
	out := confirmResponse{Results: make([]scheduleResultResponse, 0, len(results))}
	for _, r := range results {
		if r.Succeeded() {
			out.Scheduled++
		} else {
			out.Failed++
		}
		out.Results = append(out.Results, scheduleResultResponse{
			Candidate: r.Candidate,
			FileName:  r.FileName,
			Status:    r.Status,
			Link:      r.Link,
			Reason:    r.Reason,
			Message:   r.Reason.Message(),
		})
	}
	return out
}
