// Package buildinfo exposes version metadata for the CLI binary.
package buildinfo

import (
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// CommitSHA returns the short commit hash of the repository containing dir,
// or empty when dir is not inside a git repository.
func CommitSHA(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}

	head, err := repo.Head()
	if err != nil {
		return ""
	}

	return head.Hash().String()[:8]
}

// CommitTime returns the commit timestamp of HEAD formatted for display, or
// empty when unavailable.
func CommitTime(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}

	head, err := repo.Head()
	if err != nil {
		return ""
	}

	var commit *object.Commit
	if commit, err = repo.CommitObject(head.Hash()); err != nil {
		return ""
	}

	return commit.Committer.When.Format("2006-01-02 15:04:05 -0700")
}
