package identity

import "testing"

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantEmail string
		wantName  string
	}{
		{name: "empty", text: "", wantEmail: "", wantName: ""},
		{name: "two tokens", text: "Jane Doe\njane@x.com", wantEmail: "jane@x.com", wantName: "Jane Doe"},
		{name: "single token line", text: "Resume\nemail: a.b@c.io", wantEmail: "a.b@c.io", wantName: "Resume"},
		{name: "long first line", text: "John Ronald Reuel Tolkien\n", wantEmail: "", wantName: "John Ronald"},
		{name: "skips blank lines", text: "\n\n   \n  Ada   Lovelace  \n", wantEmail: "", wantName: "Ada Lovelace"},
		{name: "first email wins", text: "A B\nfirst@one.com second@two.com", wantEmail: "first@one.com", wantName: "A B"},
		{name: "crlf lines", text: "Grace Hopper\r\ngrace@navy.mil\r\n", wantEmail: "grace@navy.mil", wantName: "Grace Hopper"},
		{name: "whitespace only", text: " \n\t\n", wantEmail: "", wantName: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email, name := Extract(tt.text)
			if email != tt.wantEmail {
				t.Fatalf("email: expected %q, got %q", tt.wantEmail, email)
			}
			if name != tt.wantName {
				t.Fatalf("name: expected %q, got %q", tt.wantName, name)
			}
		})
	}
}

func TestIdentityLabelFallsBackToFileName(t *testing.T) {
	id := FromText("cv.pdf", "")
	if id.Label() != "cv.pdf" {
		t.Fatalf("expected file name label, got %q", id.Label())
	}
	if id.HasEmail() {
		t.Fatalf("expected no email")
	}

	id = FromText("cv.pdf", "Jane Doe\njane@x.com")
	if id.Label() != "Jane Doe" {
		t.Fatalf("expected name label, got %q", id.Label())
	}
	if !id.HasEmail() {
		t.Fatalf("expected email")
	}
}
