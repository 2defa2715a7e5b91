package metadata

import (
	"context"
	"io"

	"github.com/loadstone/loadstone/internal/vcs"
)

// Masterlist is a metadata list distributed through a git repository,
// together with the provenance of the working copy it was loaded from.
type Masterlist struct {
	MetadataList
}

// NewMasterlist returns an empty masterlist.
func NewMasterlist() *Masterlist {
	return &Masterlist{MetadataList: *NewMetadataList()}
}

// MasterlistInfo is the revision a masterlist working copy is at.
type MasterlistInfo struct {
	RevisionID   string
	RevisionDate string
}

// Update fetches the named branch of the remote repository and reloads the
// masterlist from it. It returns whether the on-disk file changed. The list
// in memory is only replaced after both the transfer and the reload have
// succeeded. Cancelling the context aborts the transfer; progress may be
// nil.
func (m *Masterlist) Update(ctx context.Context, path, url, branch string, progress io.Writer) (bool, error) {
	changed, err := vcs.Update(ctx, path, url, branch, progress)
	if err != nil {
		return false, err
	}

	loaded := NewMasterlist()
	if err := loaded.Load(path); err != nil {
		return changed, err
	}
	*m = *loaded
	return changed, nil
}

// GetInfo reports the revision of the working copy containing path.
func GetInfo(path string, short bool) (MasterlistInfo, error) {
	rev, err := vcs.GetRevision(path, short)
	if err != nil {
		return MasterlistInfo{}, err
	}
	return MasterlistInfo{RevisionID: rev.ID, RevisionDate: rev.Date}, nil
}

// IsLatest reports whether the working copy containing path is at the tip
// of the named branch.
func IsLatest(ctx context.Context, path, branch string) (bool, error) {
	return vcs.IsLatest(ctx, path, branch)
}
