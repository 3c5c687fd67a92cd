package client

import "sync"

// collection: локальная копия списка ресурса в порядке сервера.
type collection[T any] struct {
	mu     sync.RWMutex
	items  []T
	loaded bool
	id     func(T) int
}

func newCollection[T any](id func(T) int) *collection[T] {
	return &collection[T]{id: id}
}

func (c *collection[T]) replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T(nil), items...)
	c.loaded = true
}

// put заменяет элемент с тем же id или добавляет новый в начало.
func (c *collection[T]) put(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.id(item)
	for i := range c.items {
		if c.id(c.items[i]) == id {
			c.items[i] = item
			return
		}
	}
	c.items = append([]T{item}, c.items...)
}

func (c *collection[T]) remove(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.id(c.items[i]) == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// removeWhere удаляет все элементы, для которых f вернула true.
func (c *collection[T]) removeWhere(f func(T) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0]
	for _, it := range c.items {
		if !f(it) {
			kept = append(kept, it)
		}
	}
	c.items = kept
}

func (c *collection[T]) get(id int) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if c.id(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func (c *collection[T]) list() ([]T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.items...), c.loaded
}

// invalidate помечает кеш устаревшим, данные остаются до следующей загрузки.
func (c *collection[T]) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
}

func (c *collection[T]) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.loaded = false
}
