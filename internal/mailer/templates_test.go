package mailer

import (
	"strings"
	"testing"

	"pinpoint.dev/pinpoint/internal/domain"
)

func TestSubject(t *testing.T) {
	c := domain.EventContext{
		IssueTitle:       "Left flipper dead",
		MachineName:      "Medieval Madness",
		FormattedIssueID: "#12",
		NewStatus:        "in_progress",
	}

	tests := []struct {
		eventType domain.EventType
		want      string
	}{
		{domain.EventNewIssue, "New issue on Medieval Madness: Left flipper dead"},
		{domain.EventIssueStatusChanged, "Issue #12 is now in_progress: Left flipper dead"},
		{domain.EventNewComment, "New comment on issue #12: Left flipper dead"},
		{domain.EventIssueAssigned, "Issue #12 assigned: Left flipper dead"},
		{domain.EventMachineOwnershipChanged, "Ownership of Medieval Madness changed"},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			if got := Subject(tt.eventType, c); got != tt.want {
				t.Errorf("Subject() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTML_EscapesUserContent(t *testing.T) {
	c := domain.EventContext{
		IssueTitle:       "<script>alert(1)</script>",
		FormattedIssueID: "#3",
		CommentText:      "<b>injected</b>",
	}

	body := HTML(domain.EventNewComment, c)
	if strings.Contains(body, "<script>") {
		t.Error("HTML() must escape issue title")
	}
	if strings.Contains(body, "<b>injected</b>") {
		t.Error("HTML() must escape comment content")
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Error("escaped title missing from body")
	}
}

func TestBuildMIME(t *testing.T) {
	raw := string(buildMIME("noreply@pinpoint.dev", Message{
		To:      "user@example.com",
		Subject: "Test",
		HTML:    "<p>hi</p>",
	}))

	for _, want := range []string{
		"From: noreply@pinpoint.dev\r\n",
		"To: user@example.com\r\n",
		"Subject: Test\r\n",
		"Content-Type: text/html",
		"<p>hi</p>",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("MIME missing %q:\n%s", want, raw)
		}
	}
}
