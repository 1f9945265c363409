package cmd

import (
	"fmt"

	"github.com/duncanfisher/patchpilot/internal/audit"
	"github.com/duncanfisher/patchpilot/internal/ci"
	"github.com/duncanfisher/patchpilot/internal/config"
	"github.com/duncanfisher/patchpilot/internal/github"
	"github.com/duncanfisher/patchpilot/internal/jira"
	"github.com/duncanfisher/patchpilot/internal/llm"
	"github.com/duncanfisher/patchpilot/internal/logging"
	"github.com/duncanfisher/patchpilot/internal/pipeline"
	"github.com/duncanfisher/patchpilot/internal/submit"
)

// buildPipeline constructs the pipeline with all real collaborators from
// the loaded configuration.
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	githubClient, err := github.NewClient(cfg.GitHub)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize github client: %v", err)
	}

	llmClient, err := llm.NewClient(cfg.Anthropic)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize anthropic client: %v", err)
	}

	var commenter pipeline.TicketCommenter
	if cfg.JiraEnabled() {
		jiraClient, err := jira.NewClient(cfg.Jira)
		if err != nil {
			logging.Warn("jira comment-back disabled", "error", err)
		} else {
			commenter = jiraClient
		}
	}

	sink := audit.NewLogger("patchpilot")
	assembler := pipeline.NewContextAssembler(githubClient, cfg.GitHub.BaseBranch)
	submitter := submit.New(githubClient, cfg.GitHub.BaseBranch)
	reconciler := ci.New(githubClient, cfg.CI.PollInterval, cfg.CI.PollTimeout)

	return pipeline.New(assembler, llmClient, submitter, reconciler, commenter, sink), nil
}
