package todo

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// FileStore keeps todos in memory keyed by chat key and mirrors every
// mutation to a single JSON file via write-to-temp-then-rename, so a reader
// never observes a partially written file. Single process only.
type FileStore struct {
	path string

	// readFile is swapped in tests to observe load behavior.
	readFile func(string) ([]byte, error)

	loadGroup singleflight.Group

	mu     sync.Mutex
	loaded bool
	data   map[string]*chatTodos
}

type chatTodos struct {
	Items []Item `json:"items"`
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, readFile: os.ReadFile}
}

func (s *FileStore) Name() string { return "memory" }

// load reads the backing file into memory exactly once per process. The
// first caller performs the read; concurrent callers share the in-flight
// load instead of re-reading.
func (s *FileStore) load() error {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if loaded {
		return nil
	}

	_, err, _ := s.loadGroup.Do("load", func() (interface{}, error) {
		data := map[string]*chatTodos{}
		buf, err := s.readFile(s.path)
		switch {
		case os.IsNotExist(err):
			// first run, start empty
		case err != nil:
			return nil, errors.Wrapf(err, "reading %s", s.path)
		default:
			if err := json.Unmarshal(buf, &data); err != nil {
				log.WithError(err).WithField("path", s.path).Warn("todo data file is corrupt, starting empty")
				data = map[string]*chatTodos{}
			}
		}

		s.mu.Lock()
		s.data = data
		s.loaded = true
		s.mu.Unlock()
		return nil, nil
	})
	return err
}

// persist writes the full mapping under s.mu.
func (s *FileStore) persist() error {
	buf, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling todo data")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "creating data dir")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", tmp)
	}
	return errors.Wrap(os.Rename(tmp, s.path), "replacing data file")
}

func (s *FileStore) Add(_ context.Context, source Source, item NewItem) (Item, error) {
	text := strings.TrimSpace(item.Text)
	if text == "" {
		return Item{}, &ValidationError{Reason: "todo text must not be empty"}
	}
	if err := s.load(); err != nil {
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := ChatKeyOf(source)
	bucket := s.data[key]
	if bucket == nil {
		bucket = &chatTodos{}
		s.data[key] = bucket
	}
	added := Item{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: time.Now().UTC(),
		CreatedBy: item.UserID,
		Status:    StatusOpen,
	}
	bucket.Items = append(bucket.Items, added)
	if err := s.persist(); err != nil {
		return Item{}, err
	}
	return added, nil
}

func (s *FileStore) List(_ context.Context, source Source, opts ListOptions) ([]Item, error) {
	if err := s.load(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.data[ChatKeyOf(source)]
	if bucket == nil {
		return []Item{}, nil
	}
	items := make([]Item, 0, len(bucket.Items))
	for _, it := range bucket.Items {
		if it.Deleted {
			continue
		}
		if !opts.IncludeDone && it.Status != StatusOpen {
			continue
		}
		items = append(items, it)
	}
	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[len(items)-opts.Limit:]
	}
	return items, nil
}

func (s *FileStore) MarkDone(_ context.Context, id string, done bool) (DoneResult, error) {
	if err := s.load(); err != nil {
		return DoneResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	it := s.findLocked(id)
	if it == nil {
		return DoneResult{}, &NotFoundError{ID: id}
	}
	if done {
		it.Status = StatusDone
		it.DoneAt = time.Now().UTC().Format(time.RFC3339)
	} else {
		it.Status = StatusOpen
		it.DoneAt = ""
	}
	if err := s.persist(); err != nil {
		return DoneResult{}, err
	}
	return DoneResult{ID: id, Status: it.Status, DoneAt: it.DoneAt}, nil
}

func (s *FileStore) Delete(_ context.Context, id string) (DeleteResult, error) {
	if err := s.load(); err != nil {
		return DeleteResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	it := s.findLocked(id)
	if it == nil {
		return DeleteResult{}, &NotFoundError{ID: id}
	}
	it.Deleted = true
	if err := s.persist(); err != nil {
		return DeleteResult{}, err
	}
	return DeleteResult{ID: id, Deleted: true}, nil
}

func (s *FileStore) findLocked(id string) *Item {
	for _, bucket := range s.data {
		for i := range bucket.Items {
			if bucket.Items[i].ID == id {
				return &bucket.Items[i]
			}
		}
	}
	return nil
}
