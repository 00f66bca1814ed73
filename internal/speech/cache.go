package speech

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/hammamikhairi/ottodraw/internal/logger"
)

// AudioCache keeps synthesized clips in memory and, when dir is set, on
// disk. Keys are sha256(voice ":" text), so switching voices misses.
//
// The disk layer is always read when dir is set; persist controls only
// whether new clips are written there.
type AudioCache struct {
	voice   string
	dir     string
	persist bool
	log     *logger.Logger

	mu      sync.RWMutex
	entries map[string][]byte

	hits   atomic.Int64
	misses atomic.Int64
}

// NewAudioCache creates a cache. An empty dir disables the disk layer.
func NewAudioCache(voice, dir string, persist bool, log *logger.Logger) *AudioCache {
	if dir != "" && persist {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Warn("audio cache: %v; disk writes disabled", err)
			persist = false
		}
	}
	return &AudioCache{
		voice:   voice,
		dir:     dir,
		persist: persist,
		log:     log,
		entries: make(map[string][]byte),
	}
}

// Get returns the clip for text, promoting disk hits into memory.
func (c *AudioCache) Get(text string) ([]byte, bool) {
	key := c.key(text)

	c.mu.RLock()
	audio, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok && c.dir != "" {
		if b, err := os.ReadFile(c.path(key)); err == nil {
			audio, ok = b, true
			c.mu.Lock()
			c.entries[key] = b
			c.mu.Unlock()
			c.log.Debug("audio cache: disk hit %s", key[:12])
		}
	}

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return audio, ok
}

// Put stores a clip in memory and, if persisting, on disk.
func (c *AudioCache) Put(text string, audio []byte) {
	key := c.key(text)
	c.mu.Lock()
	c.entries[key] = audio
	c.mu.Unlock()

	if c.dir == "" || !c.persist {
		return
	}
	tmp := c.path(key) + ".tmp"
	if err := os.WriteFile(tmp, audio, 0o644); err != nil {
		c.log.Warn("audio cache: %v", err)
		return
	}
	if err := os.Rename(tmp, c.path(key)); err != nil {
		c.log.Warn("audio cache: %v", err)
	}
}

// Has reports whether a clip for text is in memory or on disk without
// touching the hit counters.
func (c *AudioCache) Has(text string) bool {
	key := c.key(text)
	c.mu.RLock()
	_, ok := c.entries[key]
	c.mu.RUnlock()
	if ok || c.dir == "" {
		return ok
	}
	_, err := os.Stat(c.path(key))
	return err == nil
}

// Len counts in-memory entries.
func (c *AudioCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns hit and miss counts since creation or the last Clear.
func (c *AudioCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Clear drops in-memory entries and counters. Disk files stay.
func (c *AudioCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string][]byte)
	c.mu.Unlock()
	c.hits.Store(0)
	c.misses.Store(0)
}

func (c *AudioCache) key(text string) string {
	sum := sha256.Sum256([]byte(c.voice + ":" + text))
	return hex.EncodeToString(sum[:])
}

func (c *AudioCache) path(key string) string {
	return filepath.Join(c.dir, key+".wav")
}
