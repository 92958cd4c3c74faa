package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/canon/internal/review"
)

// Marker is the hidden tag that identifies the comment owned by an agent,
// so re-runs update it instead of stacking new comments.
func Marker(agent string) string {
	return fmt.Sprintf("<!-- canon:agent=%s -->", markerName(agent))
}

// markerName keeps lowercase letters, digits, '_', '.' and single hyphens,
// so the name cannot end the comment early.
func markerName(agent string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(agent) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.':
			b.WriteRune(r)
		case r == '-':
			if !strings.HasSuffix(b.String(), "-") {
				b.WriteRune(r)
			}
		default:
			b.WriteRune('_')
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// PRSource reads the diff of a pull request.
type PRSource struct {
	Client *Client
	PR     PullRequest
}

var _ review.DiffSource = (*PRSource)(nil)

func (s *PRSource) Diff(ctx context.Context) (string, error) {
	return s.Client.PullRequestDiff(ctx, s.PR)
}

// CommentSink posts a result as a pull request comment.
type CommentSink struct {
	Client *Client
	PR     PullRequest
	Render func(review.AnalysisResult) string
}

var _ review.Sink = (*CommentSink)(nil)

func (s *CommentSink) Post(ctx context.Context, res review.AnalysisResult) error {
	marker := Marker(res.AgentType)
	body := marker + "\n" + s.Render(res)
	_, err := s.Client.UpsertComment(ctx, s.PR, marker, body)
	return err
}
