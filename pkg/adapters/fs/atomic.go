package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// TempFilePrefix names the scratch file a write stages next to its target.
// keyOf never reports these, so an interrupted write cannot surface as a key.
const TempFilePrefix = "tagnote-tmp-"

const filePerm = 0644

// revision is what one key held on disk before a write touched it.
type revision struct {
	key     string
	name    string
	data    []byte
	existed bool
}

// capture reads the current document for key so a failed commit can put it back.
func (s *Storage) capture(key, name string) (revision, error) {
	rev := revision{key: key, name: name}
	data, err := os.ReadFile(name)
	switch {
	case err == nil:
		rev.data, rev.existed = data, true
	case !errors.Is(err, os.ErrNotExist):
		return rev, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return rev, nil
}

// holds reports whether the captured document already equals data.
func (r revision) holds(data []byte) bool {
	return r.existed && xxhash.Sum64(r.data) == xxhash.Sum64(data)
}

// put replaces the document for rev.key with data. The fingerprint is taken
// before the rename so the watcher sees the new file as our own write.
func (s *Storage) put(rev revision, data []byte) error {
	s.remember(rev.key, data)
	if err := replaceFile(rev.name, data); err != nil {
		if rev.existed {
			s.remember(rev.key, rev.data)
		} else {
			s.forget(rev.key)
		}
		return err
	}
	return nil
}

// restore brings disk, index and fingerprint back to the captured state.
func (s *Storage) restore(rev revision) error {
	var err error
	if rev.existed {
		err = s.put(rev, rev.data)
	} else {
		s.forget(rev.key)
		if rmErr := os.Remove(rev.name); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = fmt.Errorf("failed to remove %s: %w", rev.key, rmErr)
		}
	}

	// The index may hold the abandoned content; a held index lock makes this fail too.
	if _, gitErr := s.git.Run("reset", "-q", "--", filepath.Base(rev.name)); gitErr != nil {
		s.log().Debug("could not unstage abandoned write", "key", rev.key, "error", gitErr)
	}
	return err
}

// abandon undoes a write whose commit failed and returns cause.
func (s *Storage) abandon(rev revision, cause error) error {
	if err := s.restore(rev); err != nil {
		s.log().Error("vault left with uncommitted change", "key", rev.key, "error", err)
		return errors.Join(cause, err)
	}
	return cause
}

// replaceFile stages data in a temp file beside name, syncs it and renames it
// over name, so readers see either the old document or the new one.
func replaceFile(name string, data []byte) (err error) {
	base := filepath.Base(name)
	tmp, err := os.CreateTemp(filepath.Dir(name), TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to stage %s: %w", base, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmp.Name(), filePerm)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", base, err)
	}

	if err = os.Rename(tmp.Name(), name); err != nil {
		return fmt.Errorf("failed to replace %s: %w", base, err)
	}
	return nil
}
