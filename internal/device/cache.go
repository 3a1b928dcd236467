package device

import (
	"os"
	"strings"
	"sync"
)

// MemoryCache is the in-process Cache, used by tests and short-lived embeds.
type MemoryCache struct {
	mu sync.Mutex
	id string
}

func (c *MemoryCache) Load() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id, c.id != ""
}

func (c *MemoryCache) Store(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = id
}

// FileCache persists the identifier across restarts of an embedded gate
// client, mirroring how the install-lifetime cache behaves in a browser.
type FileCache struct {
	Path string

	mu sync.Mutex
}

func (c *FileCache) Load() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.Path)
	if err != nil {
		return "", false
	}

	id := strings.TrimSpace(string(data))
	return id, id != ""
}

func (c *FileCache) Store(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Best effort; the id can be rederived.
	_ = os.WriteFile(c.Path, []byte(id+"\n"), 0o600)
}
