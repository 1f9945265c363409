// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v41/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/duncanfisher/patchpilot/internal/config"
	"github.com/duncanfisher/patchpilot/internal/logging"
	"github.com/duncanfisher/patchpilot/pkg/models"
)

// Client encapsulates the GitHub REST and GraphQL API clients for one
// target repository.
type Client struct {
	client  *github.Client
	graphql *githubv4.Client
	owner   string
	repo    string
}

// NewClient creates a new GitHub API client from the injected configuration.
// It initializes the client with the appropriate base URL for github.com or
// GitHub Enterprise, authenticates, and tests the connection. It returns the
// configured client or an error if initialization fails.
func NewClient(cfg config.GitHubConfig) (*Client, error) {
	token := cfg.Token
	if token == "" {
		return nil, fmt.Errorf("github token not found in configuration")
	}

	parts := strings.Split(cfg.Repository, "/")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid repository format: %s, expected format: owner/repo", cfg.Repository)
	}

	domain := cfg.Domain
	if domain == "" {
		domain = "github.com"
	}

	// Construct API URLs based on domain
	var apiURL, graphqlURL string
	if domain == "github.com" {
		apiURL = "https://api.github.com/"
		graphqlURL = "https://api.github.com/graphql"
	} else {
		apiURL = fmt.Sprintf("https://%s/api/v3/", domain)
		graphqlURL = fmt.Sprintf("https://%s/api/graphql", domain)
	}

	logging.Info("github configuration",
		"domain", domain,
		"api_url", apiURL,
		"repository", cfg.Repository,
		"token", logging.MaskSensitive(token))

	// Create the oauth2 client
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	// Create GitHub client with custom base URL
	client := github.NewClient(tc)

	if domain != "github.com" {
		parsedURL, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url: %w", err)
		}

		client.BaseURL = parsedURL
		client.UploadURL = parsedURL
	}

	// GraphQL client for the operations REST v3 cannot express
	// (draft pull-request promotion).
	var graphql *githubv4.Client
	if domain == "github.com" {
		graphql = githubv4.NewClient(tc)
	} else {
		graphql = githubv4.NewEnterpriseClient(graphqlURL, tc)
	}

	// Test the token
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, resp, err := client.Users.Get(ctx, "")
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		logging.Error("failed to test github token",
			"error", err,
			"status_code", status)
		return nil, fmt.Errorf("error testing github token: %w", err)
	}

	logging.Info("github authentication successful",
		"username", user.GetLogin())

	return &Client{
		client:  client,
		graphql: graphql,
		owner:   parts[0],
		repo:    parts[1],
	}, nil
}

// ListTree returns the paths of all blobs in the repository tree at the
// given ref.
func (c *Client) ListTree(ctx context.Context, ref string) ([]string, error) {
	branchRef, _, err := c.client.Git.GetRef(ctx, c.owner, c.repo, "refs/heads/"+ref)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ref %s: %v", ref, err)
	}

	tree, _, err := c.client.Git.GetTree(ctx, c.owner, c.repo, branchRef.GetObject().GetSHA(), true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repository tree: %v", err)
	}

	var paths []string
	for _, entry := range tree.Entries {
		if entry.GetType() == "blob" {
			paths = append(paths, entry.GetPath())
		}
	}

	logging.Debug("listed repository tree",
		"ref", ref,
		"path_count", len(paths),
		"truncated", tree.GetTruncated())

	return paths, nil
}

// GetFileContent fetches and decodes the content of one file at the given ref.
func (c *Client) GetFileContent(ctx context.Context, path, ref string) (string, error) {
	opts := &github.RepositoryContentGetOptions{Ref: ref}

	fileContent, _, _, err := c.client.Repositories.GetContents(ctx, c.owner, c.repo, path, opts)
	if err != nil {
		return "", fmt.Errorf("failed to fetch content of %s: %v", path, err)
	}
	if fileContent == nil {
		return "", fmt.Errorf("path %s is not a file", path)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode content of %s: %v", path, err)
	}

	return content, nil
}

// GetBranchSHA returns the head commit SHA of the given branch.
func (c *Client) GetBranchSHA(ctx context.Context, branch string) (string, error) {
	ref, _, err := c.client.Git.GetRef(ctx, c.owner, c.repo, "refs/heads/"+branch)
	if err != nil {
		return "", fmt.Errorf("failed to get ref for branch %s: %v", branch, err)
	}
	return ref.GetObject().GetSHA(), nil
}

// CreateBranch creates a branch pointing at fromSHA. Creation is
// idempotent: a branch that already exists is treated as success and
// reused.
func (c *Client) CreateBranch(ctx context.Context, name, fromSHA string) error {
	ref := &github.Reference{
		Ref:    github.String("refs/heads/" + name),
		Object: &github.GitObject{SHA: github.String(fromSHA)},
	}

	_, resp, err := c.client.Git.CreateRef(ctx, c.owner, c.repo, ref)
	if err != nil {
		// 422 with "Reference already exists" means a previous run made
		// the branch; reuse it.
		if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity &&
			strings.Contains(err.Error(), "already exists") {
			logging.Info("branch already exists, reusing", "branch", name)
			return nil
		}
		return fmt.Errorf("failed to create branch %s: %v", name, err)
	}

	logging.Debug("created branch", "branch", name, "from_sha", fromSHA)
	return nil
}

// GetFileSHA returns the blob SHA of path on branch, or empty string when
// the file does not exist there.
func (c *Client) GetFileSHA(ctx context.Context, path, branch string) (string, error) {
	opts := &github.RepositoryContentGetOptions{Ref: branch}

	fileContent, _, resp, err := c.client.Repositories.GetContents(ctx, c.owner, c.repo, path, opts)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to look up blob sha for %s: %v", path, err)
	}
	if fileContent == nil {
		return "", fmt.Errorf("path %s is not a file", path)
	}

	return fileContent.GetSHA(), nil
}

// PutFile writes content to path on branch. When sha is non-empty the
// existing blob is updated; otherwise a new file is created.
func (c *Client) PutFile(ctx context.Context, path, content, branch, sha, message string) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: []byte(content),
		Branch:  github.String(branch),
	}

	var err error
	if sha != "" {
		opts.SHA = github.String(sha)
		_, _, err = c.client.Repositories.UpdateFile(ctx, c.owner, c.repo, path, opts)
	} else {
		_, _, err = c.client.Repositories.CreateFile(ctx, c.owner, c.repo, path, opts)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s on branch %s: %v", path, branch, err)
	}

	logging.Debug("wrote file", "path", path, "branch", branch, "update", sha != "")
	return nil
}

// CreatePullRequest opens a pull request from head into base. When draft is
// true the pull request is opened in draft state.
func (c *Client) CreatePullRequest(ctx context.Context, head, base, title, body string, draft bool) (string, int, error) {
	newPR := &github.NewPullRequest{
		Title: github.String(title),
		Head:  github.String(head),
		Base:  github.String(base),
		Body:  github.String(body),
		Draft: github.Bool(draft),
	}

	pr, _, err := c.client.PullRequests.Create(ctx, c.owner, c.repo, newPR)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create pull request from %s: %v", head, err)
	}

	logging.Info("created pull request",
		"number", pr.GetNumber(),
		"url", pr.GetHTMLURL(),
		"draft", draft)

	return pr.GetHTMLURL(), pr.GetNumber(), nil
}

// MarkReadyForReview flips a draft pull request to ready-for-review. The
// REST v3 API has no endpoint for this, so it goes through the GraphQL
// markPullRequestReadyForReview mutation using the PR's node ID.
func (c *Client) MarkReadyForReview(ctx context.Context, number int) error {
	pr, _, err := c.client.PullRequests.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return fmt.Errorf("failed to get pull request #%d: %v", number, err)
	}

	if !pr.GetDraft() {
		logging.Debug("pull request already ready for review", "number", number)
		return nil
	}

	var mutation struct {
		MarkPullRequestReadyForReview struct {
			PullRequest struct {
				IsDraft githubv4.Boolean
			}
		} `graphql:"markPullRequestReadyForReview(input: $input)"`
	}
	input := githubv4.MarkPullRequestReadyForReviewInput{
		PullRequestID: githubv4.ID(pr.GetNodeID()),
	}

	if err := c.graphql.Mutate(ctx, &mutation, input, nil); err != nil {
		return fmt.Errorf("failed to mark pull request #%d ready for review: %v", number, err)
	}

	logging.Info("marked pull request ready for review", "number", number)
	return nil
}

// AddComment posts an issue comment on the pull request.
func (c *Client) AddComment(ctx context.Context, number int, body string) error {
	comment := &github.IssueComment{Body: github.String(body)}

	_, _, err := c.client.Issues.CreateComment(ctx, c.owner, c.repo, number, comment)
	if err != nil {
		return fmt.Errorf("failed to comment on pull request #%d: %v", number, err)
	}

	return nil
}

// GetCombinedStatus returns the combined commit status state for ref:
// "success", "pending", or "failure".
func (c *Client) GetCombinedStatus(ctx context.Context, ref string) (string, error) {
	status, _, err := c.client.Repositories.GetCombinedStatus(ctx, c.owner, c.repo, ref, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get combined status for %s: %v", ref, err)
	}
	return status.GetState(), nil
}

// ListCheckRuns returns the check runs reported for ref.
func (c *Client) ListCheckRuns(ctx context.Context, ref string) ([]models.CheckResult, error) {
	opts := &github.ListCheckRunsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var results []models.CheckResult
	for {
		runs, resp, err := c.client.Checks.ListCheckRunsForRef(ctx, c.owner, c.repo, ref, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list check runs for %s: %v", ref, err)
		}

		for _, run := range runs.CheckRuns {
			results = append(results, models.CheckResult{
				Name:       run.GetName(),
				Status:     run.GetStatus(),
				Conclusion: run.GetConclusion(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return results, nil
}
