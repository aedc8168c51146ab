package kanban

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"created", "active", "completed", "archived"}

func board() Board {
	return NewBoard(columns,
		Card{ID: 1, Title: "Rapat kerja", Status: "created"},
		Card{ID: 2, Title: "Bakti sosial", Status: "active"},
	)
}

func TestApplyInverseRoundTrip(t *testing.T) {
	b := board()
	e := Event{ItemID: 1, From: "created", To: "completed"}

	moved := Apply(b, e)
	assert.Equal(t, "completed", moved.Cards[1].Status)
	assert.Equal(t, "created", b.Cards[1].Status, "input board must not change")

	back := Apply(moved, Inverse(e))
	assert.Equal(t, b.Cards, back.Cards)
}

func TestMoveSuccess(t *testing.T) {
	var persisted []Event
	next, out, err := Move(context.Background(), board(), 1, "active", func(_ context.Context, e Event) error {
		persisted = append(persisted, e)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.False(t, out.RolledBack)
	assert.Equal(t, "active", next.Cards[1].Status)
	assert.Equal(t, []Event{{ItemID: 1, From: "created", To: "active"}}, persisted)
	active := 0
	for _, c := range next.Cards {
		if c.Status == "active" {
			active++
		}
	}
	assert.Equal(t, 2, active)
}

func TestMoveSameColumnIsNoop(t *testing.T) {
	called := false
	next, out, err := Move(context.Background(), board(), 2, "active", func(context.Context, Event) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, Outcome{}, out)
	assert.Equal(t, board().Cards, next.Cards)
}

func TestMoveRollsBackOnPersistFailure(t *testing.T) {
	var optimistic Board
	boom := errors.New("db down")
	next, out, err := Move(context.Background(), board(), 1, "completed",
		func(context.Context, Event) error { return boom },
		WithOptimisticView(func(b Board) { optimistic = b }),
	)
	require.NoError(t, err)
	assert.Equal(t, "completed", optimistic.Cards[1].Status)
	assert.True(t, out.RolledBack)
	assert.Equal(t, DefaultNotice, out.Notice)
	assert.ErrorIs(t, out.Err, boom)
	assert.Equal(t, "created", next.Cards[1].Status)
}

func TestMoveRejectsUnknownInput(t *testing.T) {
	persist := func(context.Context, Event) error { return nil }

	_, _, err := Move(context.Background(), board(), 99, "active", persist)
	assert.ErrorIs(t, err, ErrUnknownItem)

	_, _, err = Move(context.Background(), board(), 1, "ongoing", persist)
	assert.ErrorIs(t, err, ErrUnknownColumn)
}
