package graphql

import (
	"encoding/json"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize es el tope de entidades si Options.CacheSize no se indica.
const DefaultCacheSize = 1024

// Cache normalizado por entidad: cada objeto de la respuesta que trae __typename e id
// se guarda bajo "typename:id", mezclando campos con lo ya visto.
// Es un LRU acotado; lo menos usado se descarta primero.
// Nadie depende de su consistencia; las páginas vuelven a leer después de escribir.
type Cache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, map[string]any]
}

func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, map[string]any](size)
	if err != nil {
		// solo falla con size <= 0
		panic(err)
	}
	return &Cache{entries: entries}
}

func cacheKey(typename, id string) string {
	return typename + ":" + id
}

// Normalize recorre data y guarda las entidades que encuentre.
func (c *Cache) Normalize(data json.RawMessage) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.walk(root)
}

func (c *Cache) walk(v any) {
	switch node := v.(type) {
	case []any:
		for _, item := range node {
			c.walk(item)
		}
	case map[string]any:
		for _, child := range node {
			c.walk(child)
		}

		typename, _ := node["__typename"].(string)
		id, _ := node["id"].(string)
		if typename == "" || id == "" {
			return
		}

		key := cacheKey(typename, id)
		entry, ok := c.entries.Get(key)
		if !ok {
			entry = make(map[string]any, len(node))
			c.entries.Add(key, entry)
		}
		for k, field := range node {
			// Los hijos ya quedaron normalizados; acá solo guardamos escalares.
			switch field.(type) {
			case map[string]any, []any:
				continue
			}
			entry[k] = field
		}
	}
}

// Get decodifica la entidad cacheada en out. false si no está.
func (c *Cache) Get(typename, id string, out any) bool {
	c.mu.Lock()
	entry, ok := c.entries.Get(cacheKey(typename, id))
	var raw []byte
	if ok {
		raw, _ = json.Marshal(entry)
	}
	c.mu.Unlock()

	if !ok {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func (c *Cache) Evict(typename, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Remove(cacheKey(typename, id))
}

// Retain descarta las entidades de typename cuyo campo field vale value y cuyo id
// no está en keep. Con la lista completa de un dueño recién leída, borra lo que
// ya no existe en el servidor. Devuelve cuántas sacó.
func (c *Cache) Retain(typename, field, value string, keep []string) int {
	alive := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		alive[cacheKey(typename, id)] = struct{}{}
	}
	prefix := typename + ":"

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, key := range c.entries.Keys() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if _, ok := alive[key]; ok {
			continue
		}
		entry, ok := c.entries.Peek(key)
		if !ok {
			continue
		}
		if v, _ := entry[field].(string); v != value {
			continue
		}
		c.entries.Remove(key)
		removed++
	}
	return removed
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}
