package game

import (
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// State is the phase the game is in.
type State int

const (
	Playing State = iota
	Paused
	Won
	Lost
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for _, candidate := range []State{Playing, Paused, Won, Lost} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return errors.Errorf("game: unknown state %q", text)
}

// Terminal reports whether only a restart can leave s.
func (s State) Terminal() bool {
	return s == Won || s == Lost
}

// CollisionType represents what ended a lost game
type CollisionType int

const (
	NoCollision CollisionType = iota
	WallCollision
	SelfCollision
)

func (c CollisionType) String() string {
	switch c {
	case WallCollision:
		return "wall"
	case SelfCollision:
		return "self"
	default:
		return "none"
	}
}

func (c CollisionType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Event is a set of things that happened during one or more ticks.
type Event uint8

const (
	Moved Event = 1 << iota
	Ate
	Grew
	Died
	Completed
)

// Has reports whether all bits of e2 are set in e.
func (e Event) Has(e2 Event) bool {
	return e&e2 == e2
}

// Options fix the rules of a game.
type Options struct {
	Grid          Grid
	InitialLength int
	StepTime      time.Duration
	// Wrap makes the grid toroidal. Without it leaving the grid loses.
	Wrap bool
	Seed uint64
	// MaxTicksPerUpdate caps catch-up ticks after a long frame.
	MaxTicksPerUpdate int
}

// DefaultOptions mirror the classic 20x20 board.
func DefaultOptions() Options {
	return Options{
		Grid:              Grid{Columns: 20, Rows: 20},
		InitialLength:     3,
		StepTime:          250 * time.Millisecond,
		Wrap:              true,
		Seed:              1,
		MaxTicksPerUpdate: 5,
	}
}

// Game is one session on one grid, advanced by Update or Tick.
type Game struct {
	UUID      string
	Grid      Grid
	Snake     *Snake
	Apple     Point
	HasApple  bool
	Score     int
	State     State
	Ticks     int
	StartTime time.Time
	EndTime   time.Time
	Collision CollisionType

	opts    Options
	rng     *rand.Rand
	elapsed time.Duration
}

// NewGame starts a game with opts and places the first apple.
func NewGame(opts Options) *Game {
	if opts.MaxTicksPerUpdate <= 0 {
		opts.MaxTicksPerUpdate = 1
	}
	g := &Game{
		Grid: opts.Grid,
		opts: opts,
		rng:  rand.New(rand.NewSource(opts.Seed)),
	}
	g.reset()
	return g
}

func (g *Game) reset() {
	head := Point{X: g.Grid.Columns / 2, Y: g.Grid.Rows / 2}
	g.UUID = uuid.New().String()
	g.Snake = NewSnake(g.Grid, head, g.opts.InitialLength, Right)
	g.Score = 0
	g.State = Playing
	g.Ticks = 0
	g.StartTime = time.Now()
	g.EndTime = time.Time{}
	g.Collision = NoCollision
	g.elapsed = 0
	if err := g.placeApple(); err != nil {
		glog.Warningf("Game %s started without an apple: %v", g.UUID, err)
	}
}

// Options returns the rules the game was created with.
func (g *Game) Options() Options {
	return g.opts
}

// Update feeds dt of frame time into the step accumulator and runs one tick
// per whole step interval. Time does not accumulate unless the game is
// Playing.
func (g *Game) Update(dt time.Duration) Event {
	if g.State != Playing {
		return 0
	}

	g.elapsed += dt
	var ev Event
	for n := 0; g.elapsed >= g.opts.StepTime && g.State == Playing; n++ {
		if n == g.opts.MaxTicksPerUpdate {
			glog.V(2).Infof("Dropping %v of step backlog", g.elapsed)
			g.elapsed = 0
			break
		}
		g.elapsed -= g.opts.StepTime
		ev |= g.Tick()
	}
	return ev
}

// Tick advances the simulation by exactly one cell.
func (g *Game) Tick() Event {
	if g.State != Playing {
		return 0
	}
	g.Ticks++

	next := g.Snake.Head().Add(g.Snake.Heading.Delta())
	if g.opts.Wrap {
		next = g.Grid.Wrap(next)
	} else if !g.Grid.Contains(next) {
		g.finish(Lost, WallCollision)
		return Died
	}

	ev := Moved
	vacated := g.Snake.advance(next)
	if g.Snake.grow(vacated) {
		ev |= Grew
	}

	if g.Snake.HitsSelf() {
		g.finish(Lost, SelfCollision)
		return ev | Died
	}

	ate := g.HasApple && next == g.Apple
	if ate {
		g.Score++
		glog.V(2).Infof("Ate apple: x=%d y=%d score=%d", next.X, next.Y, g.Score)
		ev |= Ate
	}

	// The last apple sits on the last free cell, so the winning move eats it.
	if g.Snake.Len() == g.Grid.Capacity() {
		g.HasApple = false
		g.finish(Won, NoCollision)
		return ev | Completed
	}

	if ate {
		g.Snake.feed()
		if err := g.placeApple(); err != nil {
			glog.V(2).Infof("No apple placed: %v", err)
		}
	}
	return ev
}

func (g *Game) finish(s State, c CollisionType) {
	g.State = s
	g.Collision = c
	g.EndTime = time.Now()
	glog.Infof("Game %s %s after %d ticks, score %d, length %d", g.UUID, s, g.Ticks, g.Score, g.Snake.Len())
}

// SetHeading buffers the heading for the next tick. It returns false when the
// game is over, d is None or d reverses the previous tick's heading.
func (g *Game) SetHeading(d Direction) bool {
	if g.State.Terminal() {
		return false
	}
	return g.Snake.SetHeading(d)
}

// TogglePause switches between Playing and Paused.
func (g *Game) TogglePause() {
	switch g.State {
	case Playing:
		g.State = Paused
	case Paused:
		g.State = Playing
	}
}

// Restart starts a fresh game. The random source carries on so consecutive
// games differ.
func (g *Game) Restart() {
	g.reset()
}

// Duration is the wall-clock length of the game so far.
func (g *Game) Duration() time.Duration {
	if g.EndTime.IsZero() {
		return time.Since(g.StartTime)
	}
	return g.EndTime.Sub(g.StartTime)
}

// Progress is the fraction of the current step interval already elapsed.
func (g *Game) Progress() float64 {
	return float64(g.elapsed) / float64(g.opts.StepTime)
}
