// SPDX-License-Identifier: Apache-2.0

package provisioner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwnerRepoFromGitHubURL(t *testing.T) {
	cases := []struct {
		url       string
		wantOwner string
		wantRepo  string
		wantOK    bool
	}{
		{"https://github.com/unfoldingWord/en_tit", "unfoldingWord", "en_tit", true},
		{"https://github.com/unfoldingWord/en_tit.git", "unfoldingWord", "en_tit", true},
		{"http://github.com/owner/repo/extra", "owner", "repo", true},
		{"https://example.com/owner/repo", "", "", false},
	}
	for _, c := range cases {
		owner, repo, ok := ownerRepoFromGitHubURL(c.url)
		assert.Equal(t, c.wantOK, ok, c.url)
		if c.wantOK {
			assert.Equal(t, c.wantOwner, owner, c.url)
			assert.Equal(t, c.wantRepo, repo, c.url)
		}
	}
}
