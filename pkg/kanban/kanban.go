// Package kanban models a status board whose moves are applied
// optimistically and compensated when persistence fails.
package kanban

import (
	"context"
	"errors"
	"fmt"
)

// DefaultNotice is shown when a move had to be rolled back.
const DefaultNotice = "Gagal memperbarui status"

var (
	ErrUnknownItem   = errors.New("kanban: unknown item")
	ErrUnknownColumn = errors.New("kanban: unknown column")
)

// Card is the board's view of one item.
type Card struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// Board holds the column order and the cards placed on it.
type Board struct {
	Columns []string       `json:"columns"`
	Cards   map[int64]Card `json:"cards"`
}

// NewBoard places cards on a board with the given column order.
func NewBoard(columns []string, cards ...Card) Board {
	b := Board{Columns: append([]string(nil), columns...), Cards: make(map[int64]Card, len(cards))}
	for _, c := range cards {
		b.Cards[c.ID] = c
	}
	return b
}

// Event moves ItemID from one column to another.
type Event struct {
	ItemID int64
	From   string
	To     string
}

// Inverse returns the event that undoes e.
func Inverse(e Event) Event {
	return Event{ItemID: e.ItemID, From: e.To, To: e.From}
}

// Apply returns a copy of b with e applied. b is not modified and unknown
// items leave the copy unchanged.
func Apply(b Board, e Event) Board {
	next := Board{Columns: b.Columns, Cards: make(map[int64]Card, len(b.Cards))}
	for id, c := range b.Cards {
		next.Cards[id] = c
	}
	if c, ok := next.Cards[e.ItemID]; ok {
		c.Status = e.To
		next.Cards[e.ItemID] = c
	}
	return next
}

func (b Board) hasColumn(status string) bool {
	for _, c := range b.Columns {
		if c == status {
			return true
		}
	}
	return false
}

// PersistFunc stores an applied event.
type PersistFunc func(ctx context.Context, e Event) error

// Outcome describes what Move did.
type Outcome struct {
	Changed    bool
	RolledBack bool
	Notice     string
	Err        error
}

type moveOptions struct {
	onApply func(Board)
	notice  string
}

// Option customises Move.
type Option func(*moveOptions)

// WithOptimisticView is called with the optimistic board before persisting.
func WithOptimisticView(fn func(Board)) Option {
	return func(o *moveOptions) { o.onApply = fn }
}

// WithNotice overrides the rollback notice.
func WithNotice(msg string) Option {
	return func(o *moveOptions) { o.notice = msg }
}

// Move relocates item id to target. Moving to the current column is a
// no-op. A failed persist returns the board as it was before the move with
// Outcome.RolledBack set; the error return is reserved for invalid input.
func Move(ctx context.Context, b Board, id int64, target string, persist PersistFunc, opts ...Option) (Board, Outcome, error) {
	o := moveOptions{notice: DefaultNotice}
	for _, opt := range opts {
		opt(&o)
	}

	card, ok := b.Cards[id]
	if !ok {
		return b, Outcome{}, fmt.Errorf("%w: %d", ErrUnknownItem, id)
	}
	if !b.hasColumn(target) {
		return b, Outcome{}, fmt.Errorf("%w: %q", ErrUnknownColumn, target)
	}
	if card.Status == target {
		return b, Outcome{}, nil
	}

	event := Event{ItemID: id, From: card.Status, To: target}
	optimistic := Apply(b, event)
	if o.onApply != nil {
		o.onApply(optimistic)
	}

	if err := persist(ctx, event); err != nil {
		return Apply(optimistic, Inverse(event)), Outcome{RolledBack: true, Notice: o.notice, Err: err}, nil
	}
	return optimistic, Outcome{Changed: true}, nil
}
