package game

import (
	"testing"

	"github.com/pkg/errors"
)

func TestAppleAvoidsSnake(t *testing.T) {
	for seed := uint64(1); seed <= 50; seed++ {
		g := newTestGame(t, func(o *Options) {
			o.Grid = Grid{Columns: 4, Rows: 4}
			o.Seed = seed
		})
		cells := make([]Point, 12)
		for i := range cells {
			cells[i] = cycle4[11-i]
		}
		setBody(g, Down, cells...)

		if err := g.placeApple(); err != nil {
			t.Fatalf("Seed %d: unexpected error %v", seed, err)
		}
		if g.Snake.Occupies(g.Apple) {
			t.Fatalf("Seed %d: apple %v placed on the snake", seed, g.Apple)
		}
		if !g.Grid.Contains(g.Apple) {
			t.Fatalf("Seed %d: apple %v off the grid", seed, g.Apple)
		}
	}
}

func TestAppleLastFreeCell(t *testing.T) {
	g := newTestGame(t, func(o *Options) {
		o.Grid = Grid{Columns: 4, Rows: 4}
		o.InitialLength = 1
	})
	setBody(g, Up, cycle4[:15]...)

	if err := g.placeApple(); err != nil {
		t.Fatalf("Unexpected error %v", err)
	}
	if g.Apple != cycle4[15] {
		t.Errorf("Expected apple on %v, got %v", cycle4[15], g.Apple)
	}
}

func TestAppleFullBoard(t *testing.T) {
	g := newTestGame(t, func(o *Options) {
		o.Grid = Grid{Columns: 4, Rows: 4}
		o.InitialLength = 1
	})
	setBody(g, Up, cycle4...)

	err := g.placeApple()
	if errors.Cause(err) != ErrBoardFull {
		t.Fatalf("Expected ErrBoardFull, got %v", err)
	}
	if g.HasApple {
		t.Error("Expected no apple on a full board")
	}
}

func TestFreeCells(t *testing.T) {
	g := newTestGame(t, func(o *Options) {
		o.Grid = Grid{Columns: 4, Rows: 4}
		o.InitialLength = 1
	})
	setBody(g, Up, Point{0, 0}, Point{1, 0}, Point{1, 1})

	free := g.freeCells()
	if len(free) != 13 {
		t.Fatalf("Expected 13 free cells, got %d", len(free))
	}
	for _, p := range free {
		if g.Snake.Occupies(p) {
			t.Errorf("Free cell %v is occupied", p)
		}
	}
}
