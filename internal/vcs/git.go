// Package vcs wraps the git operations behind masterlist distribution:
// cloning the metadata repository, fast-forwarding it to a remote branch,
// and reporting the revision the working copy is at.
package vcs

import (
	"context"
	"errors"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/loadstone/loadstone/internal/xerr"
)

var (
	ErrNotRepository = errors.New("not a git repository")
	ErrDirtyWorktree = errors.New("the working copy has local modifications")
)

// Revision identifies the commit a masterlist working copy is at.
type Revision struct {
	ID   string
	Date string
}

// Update brings the file at path up to date with the named branch of the
// remote repository, cloning into the file's parent directory when no
// working copy exists yet. It returns whether the file's contents changed.
// The on-disk file is only replaced once the transfer has fully succeeded.
// Cancelling the context aborts the transfer between chunks; progress may be
// nil to disable transfer output.
func Update(ctx context.Context, path, url, branch string, progress io.Writer) (bool, error) {
	repoDir := filepath.Dir(path)
	before, hadFile := fileChecksum(path)

	repo, err := git.PlainOpen(repoDir)
	if err != nil {
		if err := clone(ctx, repoDir, url, branch, progress); err != nil {
			return false, err
		}
	} else {
		if err := fastForward(ctx, repo, branch, progress); err != nil {
			return false, err
		}
	}

	after, hasFile := fileChecksum(path)
	if !hasFile {
		return false, &xerr.FileAccessError{Path: path,
			Msg: "the remote branch does not contain the masterlist file"}
	}
	return !hadFile || before != after, nil
}

func clone(ctx context.Context, repoDir, url, branch string, progress io.Writer) error {
	_, statErr := os.Stat(repoDir)
	existedBefore := statErr == nil
	_, err := git.PlainCloneContext(ctx, repoDir, false, &git.CloneOptions{
		URL:           url,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
		Progress:      progress,
	})
	if err != nil {
		// Only remove what the failed clone itself created; a preexisting
		// directory may hold an old masterlist that must stay intact.
		if !existedBefore {
			cleanupFailedClone(repoDir)
		}
		return &xerr.GitStateError{Msg: "failed to clone " + url, Err: err}
	}
	return nil
}

func fastForward(ctx context.Context, repo *git.Repository, branch string, progress io.Writer) error {
	worktree, err := repo.Worktree()
	if err != nil {
		return &xerr.GitStateError{Msg: "failed to open worktree", Err: err}
	}

	status, err := worktree.Status()
	if err != nil {
		return &xerr.GitStateError{Msg: "failed to read worktree status", Err: err}
	}
	if !status.IsClean() {
		return &xerr.GitStateError{Msg: "cannot update masterlist", Err: ErrDirtyWorktree}
	}

	err = repo.FetchContext(ctx, &git.FetchOptions{RemoteName: "origin", Progress: progress})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return &xerr.GitStateError{Msg: "failed to fetch from origin", Err: err}
	}

	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
	if err != nil {
		return &xerr.GitStateError{Msg: "remote has no branch named " + branch, Err: err}
	}

	err = worktree.Reset(&git.ResetOptions{
		Commit: remoteRef.Hash(),
		Mode:   git.HardReset,
	})
	if err != nil {
		return &xerr.GitStateError{Msg: "failed to fast-forward to origin/" + branch, Err: err}
	}
	return nil
}

// GetRevision reports the commit the working copy containing path is at.
// short truncates the commit id to seven characters.
func GetRevision(path string, short bool) (Revision, error) {
	repo, err := git.PlainOpen(filepath.Dir(path))
	if err != nil {
		return Revision{}, &xerr.GitStateError{Msg: "no masterlist working copy at " +
			filepath.Dir(path), Err: ErrNotRepository}
	}

	head, err := repo.Head()
	if err != nil {
		return Revision{}, &xerr.GitStateError{Msg: "failed to read HEAD", Err: err}
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return Revision{}, &xerr.GitStateError{Msg: "failed to read HEAD commit", Err: err}
	}

	id := head.Hash().String()
	if short {
		id = id[:7]
	}
	return Revision{ID: id, Date: commit.Committer.When.Format("2006-01-02")}, nil
}

// IsLatest reports whether the working copy containing path is at the tip
// of the named remote branch.
func IsLatest(ctx context.Context, path, branch string) (bool, error) {
	repo, err := git.PlainOpen(filepath.Dir(path))
	if err != nil {
		return false, &xerr.GitStateError{Msg: "no masterlist working copy at " +
			filepath.Dir(path), Err: ErrNotRepository}
	}

	err = repo.FetchContext(ctx, &git.FetchOptions{RemoteName: "origin"})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return false, &xerr.GitStateError{Msg: "failed to fetch from origin", Err: err}
	}

	head, err := repo.Head()
	if err != nil {
		return false, &xerr.GitStateError{Msg: "failed to read HEAD", Err: err}
	}
	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
	if err != nil {
		return false, &xerr.GitStateError{Msg: "remote has no branch named " + branch, Err: err}
	}
	return head.Hash() == remoteRef.Hash(), nil
}

// fileChecksum returns the CRC-32 of the file at path, and whether the file
// exists at all.
func fileChecksum(path string) (uint32, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	return crc32.ChecksumIEEE(data), true
}

// cleanupFailedClone removes a directory left behind by a failed clone,
// leaving valid working copies alone.
func cleanupFailedClone(repoDir string) {
	if _, err := git.PlainOpen(repoDir); err == nil {
		return
	}
	_ = os.RemoveAll(repoDir)
}
