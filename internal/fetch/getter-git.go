package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/rs/zerolog/log"

	"github.com/lockmirror/lockmirror/internal/utils"
)

// fetchGitArtifact mirrors a VCS-pinned lock entry. The record URL has
// the form git+https://host/owner/repo(.git)@revision and the expected
// hash is "commit:<sha>"; verification compares the resolved commit
// against the pinned one instead of stream-hashing bytes.
func fetchGitArtifact(ctx context.Context, record utils.ArtifactRecord, destDir string) error {
	algo, want, err := record.HashParts()
	if err != nil {
		return err
	}
	if algo != "commit" {
		return fmt.Errorf("git source %s requires a commit:<sha> hash, got %q", record.File, algo)
	}
	cloneURL, revision := parseGitSource(record.URL)
	if revision == "" {
		revision = want
	}
	target := filepath.Join(destDir, record.File)
	// PlainClone refuses a non-empty directory, so a rerun replaces the
	// previous clone wholesale.
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("error clearing clone target: %v", err)
	}
	repo, err := git.PlainCloneContext(ctx, target, false, &git.CloneOptions{
		URL:        cloneURL,
		NoCheckout: true,
	})
	if err != nil {
		return fmt.Errorf("git clone failed: %v", err)
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return fmt.Errorf("error resolving revision %q: %v", revision, err)
	}
	if !strings.EqualFold(hash.String(), want) {
		return &HashMismatchError{File: record.File, Expected: want, Actual: hash.String()}
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("error opening worktree: %v", err)
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash}); err != nil {
		return fmt.Errorf("error checking out %s: %v", hash, err)
	}
	log.Debug().Str("component", "fetch/git").Msgf("Cloned %s at %s", cloneURL, hash)
	return nil
}

// parseGitSource strips the git+ prefix and splits a trailing @revision.
// An @ inside the path or userinfo is left alone.
func parseGitSource(url string) (string, string) {
	url = strings.TrimPrefix(url, "git+")
	at := strings.LastIndex(url, "@")
	if at > strings.LastIndex(url, "/") {
		return url[:at], url[at+1:]
	}
	return url, ""
}
