package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"webharvest/pkg/config"
	"webharvest/pkg/utils"
)

// FileStore persists named text blobs under a root directory, creating any
// missing intermediate directories. The collision policy decides what happens
// when the encoded name already exists: overwrite replaces stale content on
// re-crawl; suffix appends a numeric counter instead.
type FileStore struct {
	root   string
	policy config.CollisionPolicy
	log    *logrus.Entry
}

// NewFileStore creates a FileStore rooted at the given directory.
func NewFileStore(root string, policy config.CollisionPolicy, log *logrus.Entry) *FileStore {
	if policy == "" {
		policy = config.CollisionOverwrite
	}
	return &FileStore{root: root, policy: policy, log: log}
}

// Root returns the store's root directory.
func (fs *FileStore) Root() string {
	return fs.root
}

// Write persists text under the given name and returns the path actually
// written, which differs from the requested one only under the suffix policy.
func (fs *FileStore) Write(name, text string) (string, error) {
	path := filepath.Join(fs.root, name)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("%w: creating directory for '%s': %w", utils.ErrFilesystem, path, err)
	}

	if fs.policy == config.CollisionSuffix {
		path = uniquePath(path)
	}

	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("%w: writing '%s': %w", utils.ErrFilesystem, path, err)
	}

	fs.log.WithField("path", path).Debug("Persisted resource text")
	return path, nil
}

// uniquePath finds the first free numeric-suffix variant of path:
// base.ext, base_1.ext, base_2.ext, ...
func uniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s_%d%s", base, counter, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
