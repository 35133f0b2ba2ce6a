package hosting

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

// Client wraps the GitHub API client with rate limiting.
type Client struct {
	client      *github.Client
	rateLimiter *rate.Limiter
}

// NewClient creates a GitHub client. An empty token means anonymous
// access, which GitHub throttles heavily but allows for public repos.
func NewClient(token string, requestsPerSecond int) *Client {
	gh := github.NewClient(nil)
	if token != "" {
		gh = gh.WithAuthToken(token)
	}
	return &Client{
		client:      gh,
		rateLimiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// LoadToken reads GITHUB_TOKEN from the environment, loading a .env
// file first when one exists in the working directory.
func LoadToken() string {
	_ = godotenv.Load()
	return os.Getenv("GITHUB_TOKEN")
}

// PullRequest holds the metadata the analyzer needs from a pull request.
type PullRequest struct {
	Number    int
	Title     string
	Author    string
	BaseSHA   string
	HeadSHA   string
	Timestamp time.Time // merge time for merged PRs, last update otherwise
}

// ChangedFile is one file of a pull request with its unified patch text.
// Patch is empty for binary files.
type ChangedFile struct {
	Path   string
	Status string
	Patch  string
}

// FetchPullRequest gets one pull request's metadata.
func (c *Client) FetchPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	pr, _, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("fetch pull request %s/%s#%d: %w", owner, repo, number, err)
	}
	return convertPullRequest(pr), nil
}

// FetchPullRequestFiles retrieves all changed files of a pull request,
// each with its per-file patch text, following pagination.
func (c *Client) FetchPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]ChangedFile, error) {
	opts := &github.ListOptions{PerPage: 100}

	var all []ChangedFile
	for {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		files, resp, err := c.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("fetch files of %s/%s#%d: %w", owner, repo, number, err)
		}

		for _, f := range files {
			all = append(all, ChangedFile{
				Path:   f.GetFilename(),
				Status: f.GetStatus(),
				Patch:  f.GetPatch(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// convertPullRequest maps the API type to the analyzer's view of a PR.
func convertPullRequest(pr *github.PullRequest) *PullRequest {
	out := &PullRequest{
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		Author:    pr.GetUser().GetLogin(),
		BaseSHA:   pr.GetBase().GetSHA(),
		HeadSHA:   pr.GetHead().GetSHA(),
		Timestamp: pr.GetUpdatedAt().Time,
	}
	if pr.MergedAt != nil {
		out.Timestamp = pr.MergedAt.Time
	}
	return out
}
