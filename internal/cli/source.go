package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dshills/canon/internal/gitctx"
	"github.com/dshills/canon/internal/review"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readerSource reads a diff from r, or from the file at path when set.
type readerSource struct {
	path string
	r    io.Reader
}

var _ review.DiffSource = (*readerSource)(nil)

func (s *readerSource) Diff(_ context.Context) (string, error) {
	if s.path != "" {
		data, err := os.ReadFile(s.path)
		if err != nil {
			return "", fmt.Errorf("reading diff file: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(s.r)
	if err != nil {
		return "", fmt.Errorf("reading diff from stdin: %w", err)
	}
	return string(data), nil
}

// stdinPiped reports whether stdin is a pipe or file rather than a terminal.
var stdinPiped = func() bool {
	return !term.IsTerminal(int(os.Stdin.Fd()))
}

// Local diff flags
var (
	flagDiffFile  string
	flagStaged    bool
	flagUnstaged  bool
	flagRange     string
	flagCommit    string
	flagMergeBase bool
	flagContext   int
)

// localSource picks the diff source from flags. An explicit --diff-file
// wins ("-" is stdin), then a git mode; with no flags a piped stdin is
// read, otherwise staged changes.
func localSource() (review.DiffSource, error) {
	modes := 0
	for _, set := range []bool{flagDiffFile != "", flagStaged, flagUnstaged, flagRange != "", flagCommit != ""} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return nil, errors.New("choose one of --diff-file, --staged, --unstaged, --range, --commit")
	}

	switch {
	case flagDiffFile == "-":
		return &readerSource{r: os.Stdin}, nil
	case flagDiffFile != "":
		return &readerSource{path: flagDiffFile}, nil
	case flagUnstaged:
		return &gitctx.Source{Mode: gitctx.ModeUnstaged, ContextLines: flagContext}, nil
	case flagRange != "":
		return &gitctx.Source{Mode: gitctx.ModeRange, Rev: flagRange, MergeBase: flagMergeBase, ContextLines: flagContext}, nil
	case flagCommit != "":
		return &gitctx.Source{Mode: gitctx.ModeCommit, Rev: flagCommit, ContextLines: flagContext}, nil
	case !flagStaged && stdinPiped():
		return &readerSource{r: os.Stdin}, nil
	default:
		return &gitctx.Source{Mode: gitctx.ModeStaged, ContextLines: flagContext}, nil
	}
}

func addLocalSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagDiffFile, "diff-file", "", "Read the diff from a file (\"-\" for stdin)")
	cmd.Flags().BoolVar(&flagStaged, "staged", false, "Diff staged changes (default when stdin is a terminal)")
	cmd.Flags().BoolVar(&flagUnstaged, "unstaged", false, "Diff unstaged changes")
	cmd.Flags().StringVar(&flagRange, "range", "", "Diff a revision range (e.g., origin/main..HEAD)")
	cmd.Flags().StringVar(&flagCommit, "commit", "", "Diff a single commit")
	cmd.Flags().BoolVar(&flagMergeBase, "merge-base", true, "Use the merge base for --range")
	cmd.Flags().IntVar(&flagContext, "context-lines", 0, "Context lines in git diffs (default 3)")
}
