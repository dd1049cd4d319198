package ai

import (
	"fmt"

	"raysnake/game"
)

// Action is a move relative to the current heading.
type Action int

const (
	TurnLeft Action = iota
	Straight
	TurnRight
	numActions
)

// Apply converts a relative action into an absolute heading.
func (a Action) Apply(d game.Direction) game.Direction {
	switch a {
	case TurnLeft:
		return d.TurnLeft()
	case TurnRight:
		return d.TurnRight()
	default:
		return d
	}
}

// Observation is what the agent sees from the head.
type Observation struct {
	// Danger in the cells left, ahead and right of the head.
	Danger [numActions]bool
	// Ahead and Side give the sign of the apple offset along the heading and
	// to its right. Both are zero when there is no apple.
	Ahead, Side int
	// Distance to the apple, -1 without one.
	Distance int
}

// Key is the Q-table row for o.
func (o Observation) Key() string {
	return fmt.Sprintf("%d%d%d:%d:%d",
		boolToInt(o.Danger[TurnLeft]), boolToInt(o.Danger[Straight]), boolToInt(o.Danger[TurnRight]),
		o.Ahead, o.Side)
}

// Observe reads the snapshot from the head's point of view.
func Observe(s game.Snapshot) Observation {
	heading := s.Heading
	if heading == game.None {
		heading = game.Right
	}
	head := s.Head()

	var o Observation
	for a := TurnLeft; a < numActions; a++ {
		o.Danger[a] = isDanger(s, head.Add(a.Apply(heading).Delta()))
	}

	o.Distance = -1
	if s.Apple != nil {
		dx := offset(head.X, s.Apple.X, s.Columns, s.Wrap)
		dy := offset(head.Y, s.Apple.Y, s.Rows, s.Wrap)
		fwd := heading.Delta()
		right := heading.TurnRight().Delta()
		o.Ahead = sign(dx*fwd.X + dy*fwd.Y)
		o.Side = sign(dx*right.X + dy*right.Y)
		o.Distance = abs(dx) + abs(dy)
	}
	return o
}

// isDanger reports whether moving the head onto p would end the game. The
// tail moves away on the same tick unless a new segment is about to fill it.
func isDanger(s game.Snapshot, p game.Point) bool {
	if s.Wrap {
		p = game.Grid{Columns: s.Columns, Rows: s.Rows}.Wrap(p)
	} else if p.X < 0 || p.X >= s.Columns || p.Y < 0 || p.Y >= s.Rows {
		return true
	}
	body := s.Segments
	if !s.Growing {
		body = body[:len(body)-1]
	}
	for _, seg := range body {
		if seg.Pos == p {
			return true
		}
	}
	return false
}

// offset is the shortest signed distance from a to b on an axis of size n,
// going across the edge when the grid wraps.
func offset(a, b, n int, wrap bool) int {
	d := b - a
	if !wrap {
		return d
	}
	if d > n/2 {
		d -= n
	} else if d < -n/2 {
		d += n
	}
	return d
}

func sign(x int) int {
	if x > 0 {
		return 1
	} else if x < 0 {
		return -1
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
