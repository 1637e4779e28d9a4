package services

import (
	"sort"
	"sync"
	"time"
)

// Widget is the resource served by the widgets routes
type Widget struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// WidgetStore keeps widgets in memory. It is a singleton binding shared by
// every WidgetRoute instance.
type WidgetStore struct {
	mu      sync.RWMutex
	nextID  int
	widgets map[int]Widget
}

// NewWidgetStore creates an empty store
func NewWidgetStore() *WidgetStore {
	return &WidgetStore{nextID: 1, widgets: make(map[int]Widget)}
}

// List returns all widgets ordered by id
func (s *WidgetStore) List() []Widget {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Widget, 0, len(s.widgets))
	for _, w := range s.widgets {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns the widget with id
func (s *WidgetStore) Get(id int) (Widget, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.widgets[id]
	return w, ok
}

// Create stores a new widget
func (s *WidgetStore) Create(name string) Widget {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := Widget{ID: s.nextID, Name: name, CreatedAt: time.Now().UTC()}
	s.widgets[w.ID] = w
	s.nextID++
	return w
}

// Delete removes the widget with id and reports whether it existed
func (s *WidgetStore) Delete(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.widgets[id]; !ok {
		return false
	}
	delete(s.widgets, id)
	return true
}
