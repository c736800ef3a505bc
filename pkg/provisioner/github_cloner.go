// SPDX-License-Identifier: Apache-2.0

package provisioner

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/go-github/v43/github"
	"k8s.io/klog/v2"
)

// githubAwareCloner wraps a Cloner with a best-effort GitHub API lookup: for
// github.com repository URLs it resolves and logs the repository's default
// branch before delegating to the underlying shallow clone. This surfaces a
// clear diagnostic (wrong owner/repo, private repo needing a token) earlier
// than a go-git transport error would, at the cost of one extra API call.
type githubAwareCloner struct {
	inner  Cloner
	client *github.Client
}

// NewGitHubAwareCloner creates a Cloner that consults the GitHub API (via
// httpClient, which may already be OAuth2-authenticated and disk-cached, see
// httpclient.NewCachingClient) before delegating to NewGitCloner.
func NewGitHubAwareCloner(httpClient *http.Client) Cloner {
	return &githubAwareCloner{
		inner:  NewGitCloner(),
		client: github.NewClient(httpClient),
	}
}

func (c *githubAwareCloner) ShallowClone(ctx context.Context, url, dir string) error {
	if owner, repo, ok := ownerRepoFromGitHubURL(url); ok {
		if repoInfo, _, err := c.client.Repositories.Get(ctx, owner, repo); err == nil {
			klog.V(4).Infof("provisioner: %s/%s default branch is %s", owner, repo, repoInfo.GetDefaultBranch())
		} else {
			klog.V(4).Infof("provisioner: github lookup for %s/%s failed, proceeding with clone: %v", owner, repo, err)
		}
	}
	return c.inner.ShallowClone(ctx, url, dir)
}

// ownerRepoFromGitHubURL extracts (owner, repo) from a github.com clone URL,
// stripping an optional ".git" suffix and any trailing path segments.
func ownerRepoFromGitHubURL(rawURL string) (owner, repo string, ok bool) {
	trimmed := strings.TrimPrefix(rawURL, "https://")
	trimmed = strings.TrimPrefix(trimmed, "http://")
	if !strings.HasPrefix(trimmed, "github.com/") {
		return "", "", false
	}
	parts := strings.Split(strings.TrimPrefix(trimmed, "github.com/"), "/")
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), true
}
