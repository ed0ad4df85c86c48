package export

import (
	"bytes"
	"time"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/dataset"
	"github.com/patrickmn/go-cache"
)

const cacheKeyPrefix = "csv:"

// Memo caches CSV renderings keyed by view content.
type Memo struct {
	c *cache.Cache
}

// NewMemo returns a memo whose entries live for ttl. A non-positive ttl keeps
// entries until Flush.
func NewMemo(ttl time.Duration) *Memo {
	if ttl <= 0 {
		return &Memo{c: cache.New(cache.NoExpiration, 0)}
	}
	return &Memo{c: cache.New(ttl, 2*ttl)}
}

// CSV returns the CSV bytes of v and whether they came from the cache.
func (m *Memo) CSV(v dataset.View) ([]byte, bool, error) {
	key := cacheKeyPrefix + Fingerprint(v)
	if b, ok := m.c.Get(key); ok {
		return b.([]byte), true, nil
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, v); err != nil {
		return nil, false, err
	}
	out := buf.Bytes()
	m.c.SetDefault(key, out)
	return out, false, nil
}

// Len reports the number of cached renderings.
func (m *Memo) Len() int { return m.c.ItemCount() }

// Flush drops every cached rendering, used when the dataset is reloaded.
func (m *Memo) Flush() { m.c.Flush() }
