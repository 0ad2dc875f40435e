package mailer

import (
	"fmt"
	"html"
	"strings"

	"pinpoint.dev/pinpoint/internal/domain"
)

// Subject renders the email subject line for a notification event.
func Subject(t domain.EventType, c domain.EventContext) string {
	switch t {
	case domain.EventNewIssue:
		return fmt.Sprintf("New issue on %s: %s", c.MachineName, c.IssueTitle)
	case domain.EventIssueStatusChanged:
		return fmt.Sprintf("Issue %s is now %s: %s", c.FormattedIssueID, c.NewStatus, c.IssueTitle)
	case domain.EventNewComment:
		return fmt.Sprintf("New comment on issue %s: %s", c.FormattedIssueID, c.IssueTitle)
	case domain.EventIssueAssigned:
		return fmt.Sprintf("Issue %s assigned: %s", c.FormattedIssueID, c.IssueTitle)
	case domain.EventMachineOwnershipChanged:
		return fmt.Sprintf("Ownership of %s changed", c.MachineName)
	default:
		return fmt.Sprintf("PinPoint notification: %s", c.IssueTitle)
	}
}

// HTML renders the email body for a notification event. All context fields
// are caller data and get escaped.
func HTML(t domain.EventType, c domain.EventContext) string {
	var b strings.Builder
	b.WriteString("<html><body>")

	title := html.EscapeString(c.IssueTitle)
	machine := html.EscapeString(c.MachineName)
	issueID := html.EscapeString(c.FormattedIssueID)

	switch t {
	case domain.EventNewIssue:
		fmt.Fprintf(&b, "<h2>New issue reported</h2>")
		fmt.Fprintf(&b, "<p><strong>%s</strong> on machine <strong>%s</strong> (%s)</p>", title, machine, issueID)
	case domain.EventIssueStatusChanged:
		fmt.Fprintf(&b, "<h2>Issue status changed</h2>")
		fmt.Fprintf(&b, "<p>Issue %s <strong>%s</strong> is now <strong>%s</strong>.</p>",
			issueID, title, html.EscapeString(c.NewStatus))
	case domain.EventNewComment:
		fmt.Fprintf(&b, "<h2>New comment</h2>")
		fmt.Fprintf(&b, "<p>On issue %s <strong>%s</strong>:</p>", issueID, title)
		fmt.Fprintf(&b, "<blockquote>%s</blockquote>", html.EscapeString(c.CommentText))
	case domain.EventIssueAssigned:
		fmt.Fprintf(&b, "<h2>Issue assigned</h2>")
		fmt.Fprintf(&b, "<p>Issue %s <strong>%s</strong> on %s has been assigned.</p>", issueID, title, machine)
	case domain.EventMachineOwnershipChanged:
		fmt.Fprintf(&b, "<h2>Machine ownership changed</h2>")
		fmt.Fprintf(&b, "<p>Machine <strong>%s</strong> has a new owner.</p>", machine)
	}

	b.WriteString("</body></html>")
	return b.String()
}
