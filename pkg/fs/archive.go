package fs

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mxpv/podarchive/pkg/model"
	"github.com/mxpv/podarchive/pkg/sanitize"
)

// Archive is the on-disk layout of one feed:
//
//	{destination}/{feed title}/          archived episodes
//	{destination}/{feed title}/meta/     sidecar JSON files, downloads in progress,
//	                                     podcast.rss, cover.jpg and meta.json
//
// An episode is archived if and only if its file exists in the root directory.
type Archive struct {
	root string
	meta string
}

// NewArchive returns the archive of a feed titled title under destination.
// Directories are not created until Prepare is called.
func NewArchive(destination, title string) (*Archive, error) {
	name := sanitize.FileName(title)
	if name == "" || name == "." || name == ".." {
		return nil, errors.Errorf("feed title %q can't be used as a directory name", title)
	}

	root := filepath.Join(destination, name)
	return &Archive{
		root: root,
		meta: filepath.Join(root, model.MetaDir),
	}, nil
}

// Root returns the directory holding archived episodes.
func (a *Archive) Root() string {
	return a.root
}

// MetaDir returns the staging and metadata directory.
func (a *Archive) MetaDir() string {
	return a.meta
}

func (a *Archive) RootPath(name string) string {
	return filepath.Join(a.root, name)
}

func (a *Archive) MetaPath(name string) string {
	return filepath.Join(a.meta, name)
}

// Exists reports whether an episode file is archived.
func (a *Archive) Exists(name string) (bool, error) {
	_, err := os.Stat(a.RootPath(name))
	if err == nil {
		return true, nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, errors.Wrapf(err, "failed to check whether %s exists", name)
}

// Prepare creates the archive directories.
func (a *Archive) Prepare() error {
	if err := os.MkdirAll(a.meta, 0755); err != nil {
		return errors.Wrapf(err, "failed to create archive directory %s", a.meta)
	}

	return nil
}

// Reserve writes the sidecar metadata of an episode before its download starts.
// A sidecar without the episode file is left behind by an interrupted run and is overwritten on retry.
func (a *Archive) Reserve(name string, metadata interface{}) error {
	return a.writeJSON(name, metadata)
}

// WriteMetadata writes the feed level meta.json file.
func (a *Archive) WriteMetadata(metadata interface{}) error {
	return a.writeJSON(model.FeedMeta, metadata)
}

// Commit moves a completed download from the meta directory to the archive root.
func (a *Archive) Commit(name string) error {
	var (
		source      = a.MetaPath(name)
		destination = a.RootPath(name)
	)

	log.WithField("file", name).Debugf("moving %s to %s", source, destination)

	if err := os.Rename(source, destination); err != nil {
		return &model.CommitMoveFailure{Source: source, Destination: destination, Err: err}
	}

	return nil
}

func (a *Archive) writeJSON(name string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %s", name)
	}

	if err := writeFileAtomic(a.MetaPath(name), data); err != nil {
		return errors.Wrapf(err, "failed to write %s", name)
	}

	return nil
}
