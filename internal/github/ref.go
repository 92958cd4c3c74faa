package github

import (
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// PullRequest identifies a pull request.
type PullRequest struct {
	Owner  string
	Repo   string
	Number int
}

func (pr PullRequest) String() string {
	return fmt.Sprintf("%s/%s#%d", pr.Owner, pr.Repo, pr.Number)
}

// ParseRef extracts the pull request number from a GitHub Actions ref such
// as "refs/pull/42/merge".
func ParseRef(ref string) (int, error) {
	parts := strings.Split(strings.TrimSpace(ref), "/")
	if len(parts) < 4 || parts[0] != "refs" || parts[1] != "pull" {
		return 0, fmt.Errorf("ref %q is not a pull request ref (refs/pull/<n>/merge)", ref)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("ref %q has no valid pull request number", ref)
	}
	return n, nil
}

// ParseRepository splits "owner/repo".
func ParseRepository(repo string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(repo), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid repository %q, want owner/repo", repo)
	}
	return owner, name, nil
}

// FromEnv builds the pull request from GITHUB_REPOSITORY and GITHUB_REF.
func FromEnv(getenv func(string) string) (PullRequest, error) {
	owner, repo, err := ParseRepository(getenv("GITHUB_REPOSITORY"))
	if err != nil {
		return PullRequest{}, fmt.Errorf("GITHUB_REPOSITORY: %w", err)
	}
	n, err := ParseRef(getenv("GITHUB_REF"))
	if err != nil {
		return PullRequest{}, fmt.Errorf("GITHUB_REF: %w", err)
	}
	return PullRequest{Owner: owner, Repo: repo, Number: n}, nil
}

var (
	httpsRemoteRe = regexp.MustCompile(`^https?://[^/]+/([^/]+)/([^/\s]+)$`)
	sshRemoteRe   = regexp.MustCompile(`^(?:ssh://)?[^@]+@[^:/]+[:/]([^/]+)/([^/\s]+)$`)
)

// DetectRepo parses owner/repo from the origin remote of the working tree.
func DetectRepo() (owner, repo string, err error) {
	out, err := exec.Command("git", "remote", "get-url", "origin").Output()
	if err != nil {
		return "", "", fmt.Errorf("cannot detect repo: git remote get-url origin failed: %w", err)
	}
	return ParseRemoteURL(strings.TrimSpace(string(out)))
}

// ParseRemoteURL extracts owner/repo from an https or ssh remote URL.
func ParseRemoteURL(remote string) (owner, repo string, err error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(remote), ".git")
	for _, re := range []*regexp.Regexp{httpsRemoteRe, sshRemoteRe} {
		if m := re.FindStringSubmatch(trimmed); len(m) == 3 {
			return m[1], m[2], nil
		}
	}
	return "", "", fmt.Errorf("cannot parse owner/repo from remote URL: %s", remote)
}
