package gitutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	prURLRegex   = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/pull/(\d+)(?:/(?:files|commits|checks))?$`)
	prShortRegex = regexp.MustCompile(`^([\w.-]+)/([\w.-]+)#(\d+)$`)
)

// ParsePullRequestURL extracts the owner, repo and number of a pull request.
// It accepts https://github.com/{owner}/{repo}/pull/{number}, optionally
// followed by one of the PR tabs, and the short form {owner}/{repo}#{number}.
func ParsePullRequestURL(url string) (owner, repo string, prNumber int, err error) {
	url = strings.TrimSuffix(strings.TrimSpace(url), "/")

	matches := prURLRegex.FindStringSubmatch(url)
	if matches == nil {
		matches = prShortRegex.FindStringSubmatch(url)
	}
	if len(matches) != 4 {
		return "", "", 0, fmt.Errorf("invalid pull request URL format: %s", url)
	}

	prNumber, err = strconv.Atoi(matches[3])
	if err != nil || prNumber <= 0 {
		return "", "", 0, fmt.Errorf("invalid PR number %q", matches[3])
	}
	return matches[1], matches[2], prNumber, nil
}
