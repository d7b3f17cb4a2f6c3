package screenings

import (
	"time"

	"screening-backend/internal/identity"
	"screening-backend/internal/ranking"
)

// Phase is the workflow phase of a session.
type Phase string

const (
	PhaseEmpty  Phase = "empty"
	PhaseRanked Phase = "ranked"
)

// Snapshot is the ranked state carried from analyze into confirm. Every ranked entry's
// file name has an identity.
type Snapshot struct {
	SessionID      string                       `json:"sessionId"`
	JobDescription string                       `json:"jobDescription"`
	Entries        []ranking.Entry              `json:"entries"`
	Identities     map[string]identity.Identity `json:"identities"`
	CreatedAt      time.Time                    `json:"createdAt"`
}

// Upload is one candidate document received by Analyze.
type Upload struct {
	FileName string
	Data     []byte
}

// Identity returns the identity stored for fileName.
func (s Snapshot) Identity(fileName string) (identity.Identity, bool) {
	id, ok := s.Identities[fileName]
	return id, ok
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Entries = append([]ranking.Entry(nil), s.Entries...)
	out.Identities = make(map[string]identity.Identity, len(s.Identities))
	for k, v := range s.Identities {
		out.Identities[k] = v
	}
	return out
}
