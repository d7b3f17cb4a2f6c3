package identity

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9.\-]+`)

// Identity is the contact information recovered from a candidate document.
// Empty Email or Name means the value could not be found.
type Identity struct {
	FileName string `json:"fileName"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
}

// HasEmail reports whether the candidate can be invited.
func (i Identity) HasEmail() bool {
	return strings.TrimSpace(i.Email) != ""
}

// Label is the display label used in scheduling results: the name when known, otherwise the file name.
func (i Identity) Label() string {
	if name := strings.TrimSpace(i.Name); name != "" {
		return name
	}
	return i.FileName
}

// FromText builds the identity of a document from its extracted text.
func FromText(fileName, text string) Identity {
	email, name := Extract(text)
	return Identity{FileName: fileName, Email: email, Name: name}
}

// Extract returns the first email address in text and a best-effort display name.
// The name is the first two whitespace-separated tokens of the first non-empty line,
// or the whole line when it has fewer than two tokens.
func Extract(text string) (email, name string) {
	if text == "" {
		return "", ""
	}
	email = emailPattern.FindString(text)
	name = firstLineName(text)
	return email, name
}

func firstLineName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tokens := strings.Fields(line)
		if len(tokens) >= 2 {
			return tokens[0] + " " + tokens[1]
		}
		return line
	}
	return ""
}
