package gitctx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "gitctx")

// Mode selects which changes a Source diffs.
type Mode string

const (
	ModeStaged   Mode = "staged"
	ModeUnstaged Mode = "unstaged"
	ModeRange    Mode = "range"
	ModeCommit   Mode = "commit"
)

// Source produces a diff from a local git repository.
type Source struct {
	Mode Mode
	// Rev is the revision range for ModeRange ("main..HEAD") or the commit
	// for ModeCommit.
	Rev string
	// MergeBase turns "a..b" into "a...b" so the diff starts at the merge base.
	MergeBase    bool
	ContextLines int
	Dir          string
}

// Diff runs git and returns its unified diff output.
func (s *Source) Diff(ctx context.Context) (string, error) {
	args, err := s.args()
	if err != nil {
		return "", err
	}
	out, err := s.git(ctx, args...)
	if err != nil && s.Mode == ModeCommit {
		// root commit has no parent to diff against
		out, err = s.git(ctx, "show", "--format=", s.unified(), s.Rev)
	}
	if err != nil {
		return "", err
	}
	logger.WithFields(log.Fields{"mode": s.Mode, "rev": s.Rev, "bytes": len(out)}).Debug("collected local diff")
	return out, nil
}

func (s *Source) args() ([]string, error) {
	switch s.Mode {
	case ModeStaged, "":
		return []string{"diff", "--cached", s.unified()}, nil
	case ModeUnstaged:
		return []string{"diff", s.unified()}, nil
	case ModeRange:
		if s.Rev == "" {
			return nil, errors.New("range mode needs a revision range")
		}
		rev := s.Rev
		if s.MergeBase && strings.Contains(rev, "..") && !strings.Contains(rev, "...") {
			rev = strings.Replace(rev, "..", "...", 1)
		}
		return []string{"diff", s.unified(), rev}, nil
	case ModeCommit:
		if s.Rev == "" {
			return nil, errors.New("commit mode needs a commit")
		}
		return []string{"diff", s.unified(), s.Rev + "~1", s.Rev}, nil
	default:
		return nil, fmt.Errorf("unknown diff mode %q", s.Mode)
	}
}

func (s *Source) unified() string {
	n := s.ContextLines
	if n <= 0 {
		n = 3
	}
	return fmt.Sprintf("-U%d", n)
}

func (s *Source) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = s.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return string(out), nil
}
