// Package cart owns a user's cart lines and checkout selection, mirrors them
// to durable storage and keeps them in step with the remote order-item resource.
package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

type snapshot struct {
	Items    []Item   `json:"items"`
	Selected []string `json:"selected,omitempty"`
}

func StorageKey(owner string) string {
	return "cart:" + owner
}

// Store is the single writer for one owner's cart. Mutations are serialized
// by opMu, which is held across the remote call; reads only take mu.
type Store struct {
	owner   string
	storage Storage
	sync    Synchronizer
	log     *zap.Logger

	opMu sync.Mutex

	mu        sync.RWMutex
	items     []Item
	selection Selection
}

// NewStore loads the owner's cart from storage. Missing or unreadable data
// gives an empty cart.
func NewStore(ctx context.Context, owner string, storage Storage, synchronizer Synchronizer, logger *zap.Logger) *Store {
	s := &Store{
		owner:     owner,
		storage:   storage,
		sync:      synchronizer,
		log:       logger.With(zap.String("owner", owner)),
		selection: Selection{},
	}
	s.load(ctx)
	return s
}

func (s *Store) Owner() string { return s.owner }

func (s *Store) load(ctx context.Context) {
	data, err := s.storage.Get(ctx, StorageKey(s.owner))
	if err != nil {
		s.log.Warn("cart load failed, starting empty", zap.Error(err))
		return
	}
	if len(data) == 0 {
		return
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		s.log.Warn("cart data malformed, starting empty", zap.Error(err))
		return
	}

	s.items = sanitize(snap.Items)
	s.selection = selectionOf(snap.Selected).prune(s.items)
}

// decodeSnapshot accepts the current object form and a bare item list.
func decodeSnapshot(data []byte) (snapshot, error) {
	var snap snapshot
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err := json.Unmarshal(trimmed, &snap.Items)
		return snap, err
	}
	err := json.Unmarshal(trimmed, &snap)
	return snap, err
}

// sanitize drops lines without an id and duplicates, and pins quantity.
func sanitize(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.ID) == "" {
			continue
		}
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		it.Quantity = 1
		it.State = StateSynced
		out = append(out, it)
	}
	return out
}

func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Item(nil), s.items...)
}

func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) find(id string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Add creates the remote line first and only then commits the item locally.
func (s *Store) Add(ctx context.Context, p Product) (AddResult, error) {
	if strings.TrimSpace(p.ID) == "" {
		s.log.Warn("ignoring add without product id")
		return AddResult{Notice: NoticeIgnored}, nil
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	if existing, ok := s.find(p.ID); ok {
		return AddResult{Item: existing, Notice: NoticeAlreadyInCart}, nil
	}

	item := Item{
		ID:       p.ID,
		Name:     p.Name,
		Image:    p.Image,
		Price:    p.Price,
		Quantity: 1,
		State:    StatePendingCreate,
	}

	res, err := s.sync.CreateRemoteLine(ctx, s.owner, p.ID)
	if err != nil {
		_ = item.transition(StateDeleted)
		return AddResult{}, err
	}
	item.RemoteLineID = res.Line.ID
	if err := item.transition(StateSynced); err != nil {
		return AddResult{}, err
	}

	notice := NoticeAdded
	if res.Duplicate {
		notice = NoticeAlreadyRemote
	}

	// Best effort: the item is committed even if the refresh fails.
	lines, err := s.sync.ListRemoteLines(ctx, s.owner)
	if err != nil {
		s.log.Warn("remote refresh after add failed", zap.String("product", p.ID), zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items := append(append([]Item(nil), s.items...), item)
	if err == nil {
		items = reconcile(items, lines)
	}
	s.commitLocked(ctx, items)

	for _, it := range items {
		if it.ID == item.ID {
			item = it
		}
	}
	s.log.Info("item added", zap.String("product", p.ID), zap.String("line", item.RemoteLineID), zap.String("notice", string(notice)))
	return AddResult{Item: item, Notice: notice}, nil
}

// reconcile takes remote line ids as authoritative for products both sides know.
func reconcile(items []Item, lines []RemoteLine) []Item {
	byProduct := make(map[string]string, len(lines))
	for _, l := range lines {
		if _, ok := byProduct[l.ProductID]; !ok {
			byProduct[l.ProductID] = l.ID
		}
	}
	for i := range items {
		if id, ok := byProduct[items[i].ID]; ok && id != "" {
			items[i].RemoteLineID = id
		}
	}
	return items
}

// Remove deletes the remote line before touching local state. If the remote
// delete fails the cart is left exactly as it was.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	it, ok := s.find(id)
	if !ok {
		s.log.Info("remove of item not in cart", zap.String("product", id))
		return nil
	}

	if it.RemoteLineID != "" {
		s.setState(id, StatePendingDelete)
		if err := s.sync.DeleteRemoteLine(ctx, it.RemoteLineID); err != nil {
			s.setState(id, StateSynced)
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Item, 0, len(s.items))
	for _, cur := range s.items {
		if cur.ID != id {
			items = append(items, cur)
		}
	}
	s.commitLocked(ctx, items)
	s.log.Info("item removed", zap.String("product", id))
	return nil
}

// Clear deletes every remote line concurrently, waits for all of them to
// settle and then empties the cart regardless of failures.
func (s *Store) Clear(ctx context.Context) ClearResult {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	items := s.Items()
	failed := make([]*FailedDelete, len(items))

	var wg sync.WaitGroup
	for i, it := range items {
		if it.RemoteLineID == "" {
			continue
		}
		s.setState(it.ID, StatePendingDelete)
		wg.Add(1)
		go func(i int, it Item) {
			defer wg.Done()
			if err := s.sync.DeleteRemoteLine(ctx, it.RemoteLineID); err != nil {
				failed[i] = &FailedDelete{ItemID: it.ID, RemoteLineID: it.RemoteLineID, Err: err}
			}
		}(i, it)
	}
	wg.Wait()

	res := ClearResult{Removed: len(items)}
	for _, f := range failed {
		if f != nil {
			res.Failed = append(res.Failed, *f)
			s.log.Warn("remote delete failed during clear", zap.String("product", f.ItemID), zap.String("line", f.RemoteLineID), zap.Error(f.Err))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked(ctx, nil)
	s.log.Info("cart cleared", zap.Int("items", res.Removed), zap.Int("failed", len(res.Failed)))
	return res
}

// IncreaseQuantity keeps quantity pinned at 1; multi-quantity lines are not supported.
func (s *Store) IncreaseQuantity(id string) (Item, bool) {
	it, ok := s.find(id)
	if !ok {
		return Item{}, false
	}
	s.log.Info("quantity change ignored, lines are single quantity", zap.String("product", id))
	it.Quantity = 1
	return it, true
}

func (s *Store) setState(id string, to LineState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		if err := s.items[i].transition(to); err != nil {
			s.log.Error("line state", zap.Error(err))
		}
		return
	}
}

// commitLocked is the only path that replaces items. It prunes the selection
// and writes the snapshot through. Caller holds mu.
func (s *Store) commitLocked(ctx context.Context, items []Item) {
	s.items = items
	s.selection = s.selection.prune(items)
	s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) {
	snap := snapshot{Items: s.items, Selected: s.selection.ids(s.items)}
	if snap.Items == nil {
		snap.Items = []Item{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		s.log.Error("encode cart snapshot", zap.Error(err))
		return
	}
	if err := s.storage.Put(ctx, StorageKey(s.owner), data); err != nil {
		s.log.Error("persist cart snapshot", zap.Error(fmt.Errorf("put %s: %w", StorageKey(s.owner), err)))
	}
}
