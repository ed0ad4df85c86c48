package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/utils"
	"github.com/google/uuid"
)

// contextPreviewTokens bounds the context stored with each entry.
const contextPreviewTokens = 200

// Entry is one answered question.
type Entry struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Year      int       `json:"year,omitempty"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Context   string    `json:"context"`
	Answer    string    `json:"answer"`
	Failed    bool      `json:"failed"`
	RequestID string    `json:"request_id,omitempty"`
	AskedAt   time.Time `json:"asked_at"`
}

// Log is the question history persisted as a single JSON file.
type Log struct {
	Entries []*Entry  `json:"entries"`
	Updated time.Time `json:"updated_at"`

	path string
}

// Open loads the history at path. A missing file yields an empty log.
func Open(path string) (*Log, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path not set")
	}
	l := &Log{path: path}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return l, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}
	if err := json.Unmarshal(b, l); err != nil {
		return nil, fmt.Errorf("parse history: %w", err)
	}
	return l, nil
}

// Path returns the on-disk location of the log.
func (l *Log) Path() string { return l.path }

// Add appends e with a fresh id and timestamp and returns the stored entry.
func (l *Log) Add(e Entry) *Entry {
	e.ID = uuid.NewString()
	if e.AskedAt.IsZero() {
		e.AskedAt = time.Now()
	}
	e.Context = utils.TruncateToTokenLimit(e.Context, contextPreviewTokens)
	l.Entries = append(l.Entries, &e)
	return &e
}

// Get finds an entry by id or by a unique id prefix.
func (l *Log) Get(id string) (*Entry, error) {
	var found *Entry
	for _, e := range l.Entries {
		if e.ID == id {
			return e, nil
		}
		if id != "" && strings.HasPrefix(e.ID, id) {
			if found != nil {
				return nil, fmt.Errorf("ambiguous id prefix %q", id)
			}
			found = e
		}
	}
	if found == nil {
		return nil, fmt.Errorf("history entry %q not found", id)
	}
	return found, nil
}

// Recent returns up to n entries, newest first. n <= 0 returns all of them.
func (l *Log) Recent(n int) []*Entry {
	out := make([]*Entry, len(l.Entries))
	copy(out, l.Entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].AskedAt.After(out[j].AskedAt) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Clear drops every entry.
func (l *Log) Clear() { l.Entries = nil }

// Save writes the log using atomic write.
func (l *Log) Save() error {
	if l.path == "" {
		return errors.New("history path not set")
	}
	if err := utils.EnsureDir(filepath.Dir(l.path)); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	l.Updated = time.Now()
	data, err := utils.PrettyJSON(l)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(l.path, data)
}
