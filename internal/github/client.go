package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v66/github"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

var logger = log.WithField("package", "github")

// Client wraps the GitHub REST API calls canon needs.
type Client struct {
	client *gh.Client
}

// NewClient authenticates with token. apiURL overrides the API root (for
// GitHub Enterprise or tests); empty means api.github.com.
func NewClient(token, apiURL string) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token is empty; set GITHUB_TOKEN")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := gh.NewClient(oauth2.NewClient(context.Background(), ts))

	if apiURL != "" {
		u, err := url.Parse(strings.TrimRight(apiURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing GitHub API URL: %w", err)
		}
		client.BaseURL = u
	}
	return &Client{client: client}, nil
}

// PullRequestDiff fetches the unified diff of a pull request.
func (c *Client) PullRequestDiff(ctx context.Context, pr PullRequest) (string, error) {
	raw, _, err := c.client.PullRequests.GetRaw(ctx, pr.Owner, pr.Repo, pr.Number, gh.RawOptions{Type: gh.Diff})
	if err != nil {
		return "", describe(err, fmt.Sprintf("fetching diff of %s", pr))
	}
	logger.WithFields(log.Fields{"pr": pr.String(), "bytes": len(raw)}).Debug("fetched pull request diff")
	return raw, nil
}

// Comment is an issue comment on a pull request.
type Comment struct {
	ID   int64
	Body string
}

// Comments lists every issue comment on the pull request.
func (c *Client) Comments(ctx context.Context, pr PullRequest) ([]Comment, error) {
	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	var all []Comment
	for {
		comments, resp, err := c.client.Issues.ListComments(ctx, pr.Owner, pr.Repo, pr.Number, opts)
		if err != nil {
			return nil, describe(err, fmt.Sprintf("listing comments of %s", pr))
		}
		for _, cm := range comments {
			all = append(all, Comment{ID: cm.GetID(), Body: cm.GetBody()})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// FindComment returns the first comment containing marker, or nil.
func (c *Client) FindComment(ctx context.Context, pr PullRequest, marker string) (*Comment, error) {
	comments, err := c.Comments(ctx, pr)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		if strings.Contains(comments[i].Body, marker) {
			return &comments[i], nil
		}
	}
	return nil, nil
}

// UpsertComment edits the comment carrying marker, or creates one. body
// must already contain marker for later runs to find it.
func (c *Client) UpsertComment(ctx context.Context, pr PullRequest, marker, body string) (int64, error) {
	existing, err := c.FindComment(ctx, pr, marker)
	if err != nil {
		return 0, err
	}
	comment := &gh.IssueComment{Body: gh.Ptr(body)}

	if existing != nil {
		if _, _, err := c.client.Issues.EditComment(ctx, pr.Owner, pr.Repo, existing.ID, comment); err != nil {
			return 0, describe(err, fmt.Sprintf("updating comment %d", existing.ID))
		}
		logger.WithFields(log.Fields{"pr": pr.String(), "comment": existing.ID}).Info("updated comment")
		return existing.ID, nil
	}

	created, _, err := c.client.Issues.CreateComment(ctx, pr.Owner, pr.Repo, pr.Number, comment)
	if err != nil {
		return 0, describe(err, fmt.Sprintf("commenting on %s", pr))
	}
	logger.WithFields(log.Fields{"pr": pr.String(), "comment": created.GetID()}).Info("created comment")
	return created.GetID(), nil
}

// ErrAuth marks GitHub rejecting the token.
var ErrAuth = errors.New("GitHub authentication failed")

func describe(err error, action string) error {
	var er *gh.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		switch er.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%s: %w: %s", action, ErrAuth, er.Message)
		case http.StatusNotFound:
			return fmt.Errorf("%s: not found", action)
		}
	}
	return fmt.Errorf("%s: %w", action, err)
}
