package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity es el tamaño de cada cache (drafts y publicados).
const DefaultCapacity = 1024

// LRU es un mapa id de mensaje → V de capacidad fija.
type LRU[V any] struct {
	c *lru.Cache[string, V]
}

// New crea un cache con la capacidad dada (<= 0 usa DefaultCapacity).
func New[V any](capacity int) (*LRU[V], error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c, err := lru.New[string, V](capacity)
	if err != nil {
		return nil, err
	}
	return &LRU[V]{c: c}, nil
}

// Get refresca la recencia de la entrada.
func (l *LRU[V]) Get(id string) (V, bool) { return l.c.Get(id) }

// Set inserta o reemplaza; si está lleno expulsa la entrada menos usada.
func (l *LRU[V]) Set(id string, v V) { l.c.Add(id, v) }

func (l *LRU[V]) Delete(id string) bool { return l.c.Remove(id) }

// Contains no toca la recencia.
func (l *LRU[V]) Contains(id string) bool { return l.c.Contains(id) }

func (l *LRU[V]) Len() int { return l.c.Len() }
