package game

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// appleSampleTries bounds the uniform rejection sampling before falling back
// to drawing from the explicit list of free cells.
const appleSampleTries = 32

// ErrBoardFull is returned when no cell is left for an apple.
var ErrBoardFull = errors.New("game: no free cell for an apple")

// placeApple puts the apple on a uniformly chosen cell the snake does not
// occupy. When the board is full the apple is removed.
func (g *Game) placeApple() error {
	for i := 0; i < appleSampleTries; i++ {
		p := Point{X: g.rng.Intn(g.Grid.Columns), Y: g.rng.Intn(g.Grid.Rows)}
		if !g.Snake.Occupies(p) {
			g.setApple(p)
			return nil
		}
	}

	free := g.freeCells()
	if len(free) == 0 {
		g.HasApple = false
		return ErrBoardFull
	}
	g.setApple(free[g.rng.Intn(len(free))])
	return nil
}

func (g *Game) setApple(p Point) {
	g.Apple = p
	g.HasApple = true
	glog.V(2).Infof("New apple: x=%d y=%d", p.X, p.Y)
}

// freeCells lists every cell not covered by a segment, row by row.
func (g *Game) freeCells() []Point {
	occupied := make([]bool, g.Grid.Capacity())
	for _, seg := range g.Snake.Body {
		occupied[seg.Pos.Y*g.Grid.Columns+seg.Pos.X] = true
	}

	free := make([]Point, 0, len(occupied)-g.Snake.Len())
	for i, taken := range occupied {
		if !taken {
			free = append(free, Point{X: i % g.Grid.Columns, Y: i / g.Grid.Columns})
		}
	}
	return free
}
