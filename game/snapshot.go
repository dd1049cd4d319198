package game

import "time"

// Snapshot is a read-only copy of the game handed to renderers and
// spectators.
type Snapshot struct {
	UUID      string        `json:"uuid"`
	Columns   int           `json:"columns"`
	Rows      int           `json:"rows"`
	Segments  []Segment     `json:"segments"`
	Heading   Direction     `json:"heading"`
	Apple     *Point        `json:"apple,omitempty"`
	Score     int           `json:"score"`
	State     State         `json:"state"`
	Collision CollisionType `json:"collision"`
	Ticks     int           `json:"ticks"`
	Wrap      bool          `json:"wrap"`
	Duration  time.Duration `json:"duration_ns"`

	// Growing is set when the next tick appends a segment at the tail.
	Growing bool `json:"growing,omitempty"`
}

// Snapshot copies the current state.
func (g *Game) Snapshot() Snapshot {
	segments := make([]Segment, len(g.Snake.Body))
	copy(segments, g.Snake.Body)

	snap := Snapshot{
		UUID:      g.UUID,
		Columns:   g.Grid.Columns,
		Rows:      g.Grid.Rows,
		Segments:  segments,
		Heading:   g.Snake.Previous,
		Score:     g.Score,
		State:     g.State,
		Collision: g.Collision,
		Ticks:     g.Ticks,
		Wrap:      g.opts.Wrap,
		Duration:  g.Duration(),
		Growing:   g.Snake.pendingGrowth > 0,
	}
	if g.HasApple {
		apple := g.Apple
		snap.Apple = &apple
	}
	return snap
}

// Head returns the head cell of the snapshot.
func (s Snapshot) Head() Point {
	return s.Segments[0].Pos
}
