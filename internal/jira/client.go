package jira

import (
	"fmt"

	jira "github.com/andygrunwald/go-jira"

	"github.com/duncanfisher/patchpilot/internal/config"
	"github.com/duncanfisher/patchpilot/internal/logging"
)

// Client posts pipeline outcomes back onto the originating JIRA issue.
type Client struct {
	client *jira.Client
}

// NewClient creates a new JIRA client from the injected configuration.
func NewClient(cfg config.JiraConfig) (*Client, error) {
	if cfg.URL == "" || cfg.Username == "" || cfg.Token == "" {
		return nil, fmt.Errorf("jira configuration incomplete: JIRA_URL, JIRA_USERNAME, and JIRA_TOKEN are required")
	}

	// Create JIRA authentication transport
	tp := jira.BasicAuthTransport{
		Username: cfg.Username,
		Password: cfg.Token,
	}

	client, err := jira.NewClient(tp.Client(), cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %v", err)
	}

	logging.Info("jira configuration",
		"url", cfg.URL,
		"username", cfg.Username,
		"token", logging.MaskSensitive(cfg.Token))

	return &Client{client: client}, nil
}

// AddComment posts a comment on the given issue. Used to link the opened
// pull request back to the ticket; failures here are advisory and the
// caller logs rather than fails on them.
func (c *Client) AddComment(issueKey, body string) error {
	if c.client == nil {
		return fmt.Errorf("jira client not initialized")
	}

	comment := &jira.Comment{Body: body}
	_, resp, err := c.client.Issue.AddComment(issueKey, comment)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return fmt.Errorf("failed to add comment to %s: %v (status: %d)", issueKey, err, status)
	}

	logging.Debug("added jira comment", "issue", issueKey)
	return nil
}
