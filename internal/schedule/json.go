package schedule

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sync"

	"support-intake-go/internal/jsonfile"
	"support-intake-go/internal/types"
)

// FileName is the schedules document inside the data directory.
const FileName = "schedules.json"

// JSONStore keeps all schedules in one JSON array. Every operation reads the
// whole file; mutations rewrite it. The mutex serializes writers within this
// process only.
type JSONStore struct {
	path string
	mu   sync.Mutex
}

// OpenJSON returns a store for dataDir/schedules.json, creating it as an
// empty array if needed.
func OpenJSON(dataDir string) (*JSONStore, error) {
	s := &JSONStore{path: filepath.Join(dataDir, FileName)}
	ok, err := jsonfile.Exists(s.path)
	if err != nil {
		return nil, storageErr("stat", err)
	}
	if !ok {
		if err := jsonfile.Write(s.path, []types.Schedule{}); err != nil {
			return nil, storageErr("create", err)
		}
	}
	return s, nil
}

// Path returns the backing file.
func (s *JSONStore) Path() string { return s.path }

func (s *JSONStore) load() ([]types.Schedule, error) {
	var out []types.Schedule
	if err := jsonfile.Read(s.path, &out); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []types.Schedule{}, nil
		}
		return nil, storageErr("load", err)
	}
	if out == nil {
		out = []types.Schedule{}
	}
	return out, nil
}

func (s *JSONStore) save(all []types.Schedule) error {
	if err := jsonfile.Write(s.path, all); err != nil {
		return storageErr("save", err)
	}
	return nil
}

func (s *JSONStore) Append(_ context.Context, rec types.Schedule) (types.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return types.Schedule{}, err
	}
	id, err := uniqueID(func(id string) (bool, error) {
		return indexOf(all, id) >= 0, nil
	})
	if err != nil {
		return types.Schedule{}, err
	}
	rec.ID = id
	all = append(all, rec)
	if err := s.save(all); err != nil {
		return types.Schedule{}, err
	}
	return rec, nil
}

func (s *JSONStore) Update(_ context.Context, id string, p Patch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return false, err
	}
	i := indexOf(all, id)
	if i < 0 {
		return false, nil
	}
	p.Apply(&all[i])
	if err := s.save(all); err != nil {
		return false, err
	}
	return true, nil
}

func (s *JSONStore) List(_ context.Context) ([]types.Schedule, error) {
	return s.load()
}

func (s *JSONStore) Get(_ context.Context, id string) (types.Schedule, bool, error) {
	all, err := s.load()
	if err != nil {
		return types.Schedule{}, false, err
	}
	if i := indexOf(all, id); i >= 0 {
		return all[i], true, nil
	}
	return types.Schedule{}, false, nil
}

func (s *JSONStore) Close() error { return nil }

func indexOf(all []types.Schedule, id string) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}
