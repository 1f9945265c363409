// Package jira handles the inbound issue webhook and the optional
// comment-back to the originating ticket.
package jira

import (
	"encoding/json"
	"fmt"

	jira "github.com/andygrunwald/go-jira"

	"github.com/duncanfisher/patchpilot/pkg/models"
)

// WebhookPayload is the subset of the Jira issue-event webhook body the
// pipeline consumes. The issue itself uses go-jira's schema.
type WebhookPayload struct {
	WebhookEvent string      `json:"webhookEvent,omitempty"`
	Issue        *jira.Issue `json:"issue,omitempty"`
}

// ParseWebhook decodes a webhook body into a Ticket. A payload missing the
// issue key, summary, or description is rejected here, before any pipeline
// stage or collaborator call runs.
func ParseWebhook(body []byte) (models.Ticket, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.Ticket{}, fmt.Errorf("failed to decode webhook payload: %v", err)
	}

	return TicketFromIssue(payload.Issue)
}

// TicketFromIssue validates a Jira issue and converts it to the internal
// ticket model.
func TicketFromIssue(issue *jira.Issue) (models.Ticket, error) {
	if issue == nil || issue.Fields == nil {
		return models.Ticket{}, fmt.Errorf("webhook payload has no issue")
	}

	var missing []string
	if issue.Key == "" {
		missing = append(missing, "key")
	}
	if issue.Fields.Summary == "" {
		missing = append(missing, "summary")
	}
	if issue.Fields.Description == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return models.Ticket{}, fmt.Errorf("webhook issue missing required fields: %v", missing)
	}

	ticket := models.Ticket{
		ID:          issue.ID,
		Key:         issue.Key,
		Summary:     issue.Fields.Summary,
		Description: issue.Fields.Description,
	}
	if issue.Fields.Priority != nil {
		ticket.Priority = issue.Fields.Priority.Name
	}

	return ticket, nil
}
