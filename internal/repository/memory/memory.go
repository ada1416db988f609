// Package memory is an in-process repository.Store. A write transaction works
// on a private copy of the collections which replaces the live state only
// when the transaction function succeeds, so readers never see a partially
// applied operation.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"agromarket/internal/models"
	"agromarket/internal/repository"
)

var ErrClosed = errors.New("memory: store is closed")

type entry[T any] struct {
	val T
	seq uint64
}

type table[T any] map[string]entry[T]

func (t table[T]) clone(cp func(T) T) table[T] {
	out := make(table[T], len(t))
	for k, e := range t {
		out[k] = entry[T]{val: cp(e.val), seq: e.seq}
	}
	return out
}

// sorted returns matching values newest first.
func (t table[T]) sorted(match func(T) bool, cp func(T) T) []T {
	entries := make([]entry[T], 0, len(t))
	for _, e := range t {
		if match(e.val) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq > entries[j].seq })

	out := make([]T, 0, len(entries))
	for _, e := range entries {
		out = append(out, cp(e.val))
	}
	return out
}

type state struct {
	seq      uint64
	products table[models.Product]
	rfqs     table[models.RFQ]
	bids     table[models.Bid]
	orders   table[models.Order]
}

func newState() *state {
	return &state{
		products: table[models.Product]{},
		rfqs:     table[models.RFQ]{},
		bids:     table[models.Bid]{},
		orders:   table[models.Order]{},
	}
}

func (s *state) clone() *state {
	return &state{
		seq:      s.seq,
		products: s.products.clone(models.Product.Clone),
		rfqs:     s.rfqs.clone(same[models.RFQ]),
		bids:     s.bids.clone(same[models.Bid]),
		orders:   s.orders.clone(models.Order.Clone),
	}
}

func (s *state) next() uint64 {
	s.seq++
	return s.seq
}

func same[T any](v T) T { return v }

type Store struct {
	mu     sync.RWMutex
	state  *state
	closed bool
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{state: newState()}
}

func (s *Store) View(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	return fn(&tx{state: s.state, readOnly: true})
}

func (s *Store) Update(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	next := s.state.clone()
	if err := fn(&tx{state: next}); err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type tx struct {
	state    *state
	readOnly bool
}

func (t *tx) writable() error {
	if t.readOnly {
		return repository.ErrReadOnly
	}
	return nil
}

//// Products

func (t *tx) Product(ctx context.Context, id string) (models.Product, bool, error) {
	e, ok := t.state.products[id]
	return e.val.Clone(), ok, nil
}

func (t *tx) Products(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	return t.state.products.sorted(filter.Match, models.Product.Clone), nil
}

func (t *tx) InsertProduct(ctx context.Context, p models.Product) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.state.products[p.Id]; ok {
		return fmt.Errorf("memory.tx.InsertProduct: duplicate id %s", p.Id)
	}
	t.state.products[p.Id] = entry[models.Product]{val: p.Clone(), seq: t.state.next()}
	return nil
}

func (t *tx) UpdateProduct(ctx context.Context, p models.Product) error {
	if err := t.writable(); err != nil {
		return err
	}
	e, ok := t.state.products[p.Id]
	if !ok {
		return fmt.Errorf("memory.tx.UpdateProduct: %w", models.ErrNoProduct)
	}
	e.val = p.Clone()
	t.state.products[p.Id] = e
	return nil
}

func (t *tx) DeleteProduct(ctx context.Context, id string) error {
	if err := t.writable(); err != nil {
		return err
	}
	delete(t.state.products, id)
	return nil
}

//// RFQs

func (t *tx) RFQ(ctx context.Context, id string) (models.RFQ, bool, error) {
	e, ok := t.state.rfqs[id]
	return e.val, ok, nil
}

func (t *tx) RFQs(ctx context.Context, filter models.RFQFilter) ([]models.RFQ, error) {
	return t.state.rfqs.sorted(filter.Match, same[models.RFQ]), nil
}

func (t *tx) InsertRFQ(ctx context.Context, r models.RFQ) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.state.rfqs[r.Id]; ok {
		return fmt.Errorf("memory.tx.InsertRFQ: duplicate id %s", r.Id)
	}
	t.state.rfqs[r.Id] = entry[models.RFQ]{val: r, seq: t.state.next()}
	return nil
}

func (t *tx) UpdateRFQ(ctx context.Context, r models.RFQ) error {
	if err := t.writable(); err != nil {
		return err
	}
	e, ok := t.state.rfqs[r.Id]
	if !ok {
		return fmt.Errorf("memory.tx.UpdateRFQ: %w", models.ErrNoRFQ)
	}
	e.val = r
	t.state.rfqs[r.Id] = e
	return nil
}

func (t *tx) DeleteRFQ(ctx context.Context, id string) error {
	if err := t.writable(); err != nil {
		return err
	}
	delete(t.state.rfqs, id)
	return nil
}

//// Bids

func (t *tx) Bid(ctx context.Context, id string) (models.Bid, bool, error) {
	e, ok := t.state.bids[id]
	return e.val, ok, nil
}

func (t *tx) Bids(ctx context.Context, filter models.BidFilter) ([]models.Bid, error) {
	return t.state.bids.sorted(filter.Match, same[models.Bid]), nil
}

func (t *tx) InsertBid(ctx context.Context, b models.Bid) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.state.bids[b.Id]; ok {
		return fmt.Errorf("memory.tx.InsertBid: duplicate id %s", b.Id)
	}
	for _, e := range t.state.bids {
		if e.val.RFQId == b.RFQId && e.val.SellerId == b.SellerId {
			return fmt.Errorf("memory.tx.InsertBid: %w", models.ErrDuplicateBid)
		}
	}
	t.state.bids[b.Id] = entry[models.Bid]{val: b, seq: t.state.next()}
	return nil
}

func (t *tx) UpdateBid(ctx context.Context, b models.Bid) error {
	if err := t.writable(); err != nil {
		return err
	}
	e, ok := t.state.bids[b.Id]
	if !ok {
		return fmt.Errorf("memory.tx.UpdateBid: %w", models.ErrNoBid)
	}
	e.val = b
	t.state.bids[b.Id] = e
	return nil
}

func (t *tx) DeleteBidsByRFQ(ctx context.Context, rfqId string) (int, error) {
	if err := t.writable(); err != nil {
		return 0, err
	}
	n := 0
	for id, e := range t.state.bids {
		if e.val.RFQId == rfqId {
			delete(t.state.bids, id)
			n++
		}
	}
	return n, nil
}

//// Orders

func (t *tx) Order(ctx context.Context, id string) (models.Order, bool, error) {
	e, ok := t.state.orders[id]
	if !ok {
		return models.Order{}, false, nil
	}
	return e.val.Clone(), true, nil
}

func (t *tx) Orders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	return t.state.orders.sorted(filter.Match, models.Order.Clone), nil
}

func (t *tx) InsertOrder(ctx context.Context, o models.Order) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.state.orders[o.Id]; ok {
		return fmt.Errorf("memory.tx.InsertOrder: duplicate id %s", o.Id)
	}
	for _, e := range t.state.orders {
		if e.val.BidId == o.BidId {
			return fmt.Errorf("memory.tx.InsertOrder: %w: bid %s already has an order", models.ErrInvalidTransition, o.BidId)
		}
	}
	t.state.orders[o.Id] = entry[models.Order]{val: o.Clone(), seq: t.state.next()}
	return nil
}

func (t *tx) UpdateOrder(ctx context.Context, o models.Order) error {
	if err := t.writable(); err != nil {
		return err
	}
	e, ok := t.state.orders[o.Id]
	if !ok {
		return fmt.Errorf("memory.tx.UpdateOrder: %w", models.ErrNoOrder)
	}
	e.val = o.Clone()
	t.state.orders[o.Id] = e
	return nil
}
