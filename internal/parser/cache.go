package parser

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"

	"vuetifyconf-cli/internal/ast"
)

// DefaultCacheSize bounds the number of parsed modules kept between runs.
const DefaultCacheSize = 256

// Cache memoizes Parse by file name, dialect and content hash so that watch
// re-runs only re-parse files that changed. Cached modules are shared and
// must be treated as read-only.
type Cache struct {
	modules *lru.Cache[string, *ast.Module]
}

// NewCache creates a parse cache holding up to size modules.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	modules, err := lru.New[string, *ast.Module](size)
	if err != nil {
		return nil, err
	}
	return &Cache{modules: modules}, nil
}

// Parse returns the cached module for src or parses and stores it. A nil
// cache parses every time.
func (c *Cache) Parse(src []byte, filename string, dialect ast.Dialect) (*ast.Module, error) {
	if c == nil {
		return Parse(src, filename, dialect)
	}
	key := cacheKey(src, filename, dialect)
	if mod, ok := c.modules.Get(key); ok {
		return mod, nil
	}
	mod, err := Parse(src, filename, dialect)
	if err != nil {
		return nil, err
	}
	c.modules.Add(key, mod)
	return mod, nil
}

// Len returns the number of cached modules.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.modules.Len()
}

func cacheKey(src []byte, filename string, dialect ast.Dialect) string {
	sum := sha256.Sum256(src)
	return filename + "\x00" + dialect.String() + "\x00" + hex.EncodeToString(sum[:])
}
