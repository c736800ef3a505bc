// SPDX-License-Identifier: Apache-2.0

package provisioner

import (
	"context"

	gogit "github.com/go-git/go-git/v5"

	"github.com/wkelly17/bibleassembler/pkg/git"
)

// gitCloner implements Cloner on top of the pkg/git abstraction (a thin
// counterfeiter-friendly wrapper over go-git).
type gitCloner struct {
	g git.Git
}

// NewGitCloner creates a Cloner backed by go-git shallow clones.
func NewGitCloner() Cloner {
	return &gitCloner{g: git.NewGit()}
}

// ShallowClone performs a depth-1 clone of url into dir.
func (c *gitCloner) ShallowClone(ctx context.Context, url, dir string) error {
	_, err := c.g.PlainCloneContext(ctx, dir, false, &gogit.CloneOptions{
		URL:   url,
		Depth: 1,
	})
	return err
}
