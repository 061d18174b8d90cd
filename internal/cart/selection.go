package cart

import (
	"context"

	"go.uber.org/zap"
)

// Selection marks which cart lines go into the next checkout.
type Selection map[string]bool

// prune drops every id that is not a current item and every false entry.
func (s Selection) prune(items []Item) Selection {
	out := make(Selection, len(s))
	for _, it := range items {
		if s[it.ID] {
			out[it.ID] = true
		}
	}
	return out
}

func (s Selection) ids(items []Item) []string {
	out := make([]string, 0, len(s))
	for _, it := range items {
		if s[it.ID] {
			out = append(out, it.ID)
		}
	}
	return out
}

func selectionOf(ids []string) Selection {
	out := make(Selection, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

// Toggle flips the selection of a cart line and reports the new state.
// Unknown ids are logged and left unselected.
func (s *Store) Toggle(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasLocked(id) {
		s.log.Info("toggle for item not in cart", zap.String("product", id))
		return false
	}
	if s.selection[id] {
		delete(s.selection, id)
	} else {
		s.selection[id] = true
	}
	s.persistLocked(ctx)
	return s.selection[id]
}

func (s *Store) SelectAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := make(Selection, len(s.items))
	for _, it := range s.items {
		sel[it.ID] = true
	}
	s.selection = sel
	s.persistLocked(ctx)
}

func (s *Store) DeselectAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection = Selection{}
	s.persistLocked(ctx)
}

func (s *Store) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection[id]
}

// Selected returns the selected lines in cart order.
func (s *Store) Selected() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, 0, len(s.selection))
	for _, it := range s.items {
		if s.selection[it.ID] {
			out = append(out, it)
		}
	}
	return out
}

func (s *Store) hasLocked(id string) bool {
	for _, it := range s.items {
		if it.ID == id {
			return true
		}
	}
	return false
}
