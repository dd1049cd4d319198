package game

import "fmt"

// collisionOffset is the first body index compared against the head.
// Everything behind the head is scanned, odd-sized wrapping grids included.
const collisionOffset = 1

// Segment is one cell of the body. Grew marks the cell where an apple was
// eaten; the marker travels towards the tail with every tick.
type Segment struct {
	Pos  Point `json:"pos"`
	Grew bool  `json:"grew,omitempty"`
}

// Snake is the body and heading of the player.
type Snake struct {
	// Heading is applied to the head on the next tick.
	Heading Direction
	// Previous is the heading the last tick moved along.
	Previous Direction
	// Body holds the segments, head first. Its capacity is the grid capacity.
	Body []Segment

	pendingGrowth int
}

// NewSnake lays out length segments starting at head and trailing away from
// heading, wrapping on the grid if needed.
func NewSnake(grid Grid, head Point, length int, heading Direction) *Snake {
	capacity := grid.Capacity()
	if length < 1 || length > capacity {
		panic(fmt.Sprintf("game: snake length %d outside [1, %d]", length, capacity))
	}

	s := &Snake{
		Heading:  heading,
		Previous: heading,
		Body:     make([]Segment, length, capacity),
	}

	back := heading.Opposite().Delta()
	p := head
	for i := range s.Body {
		s.Body[i] = Segment{Pos: grid.Wrap(p)}
		p = p.Add(back)
	}
	return s
}

// Len is the number of segments.
func (s *Snake) Len() int {
	return len(s.Body)
}

// Head is the cell of the first segment.
func (s *Snake) Head() Point {
	return s.Body[0].Pos
}

// Tail is the cell of the last segment.
func (s *Snake) Tail() Point {
	return s.Body[len(s.Body)-1].Pos
}

// SetHeading buffers d for the next tick. A heading that would reverse the
// last tick's movement is rejected.
func (s *Snake) SetHeading(d Direction) bool {
	if d == None || d == s.Previous.Opposite() {
		return false
	}
	s.Heading = d
	return true
}

// Occupies reports whether any segment sits on p.
func (s *Snake) Occupies(p Point) bool {
	for _, seg := range s.Body {
		if seg.Pos == p {
			return true
		}
	}
	return false
}

// HitsSelf reports whether the head shares a cell with a body segment.
func (s *Snake) HitsSelf() bool {
	head := s.Head()
	for i := collisionOffset; i < len(s.Body); i++ {
		if s.Body[i].Pos == head {
			return true
		}
	}
	return false
}

// advance shifts every segment onto its predecessor, tail first, places the
// head at next and returns the cell the tail vacated.
func (s *Snake) advance(next Point) Point {
	vacated := s.Tail()
	for i := len(s.Body) - 1; i > 0; i-- {
		s.Body[i] = s.Body[i-1]
	}
	s.Body[0] = Segment{Pos: next}
	s.Previous = s.Heading
	return vacated
}

// feed records that the head ate an apple. The body grows on the next tick.
func (s *Snake) feed() {
	s.Body[0].Grew = true
	s.pendingGrowth++
}

// grow appends a segment at the vacated cell if growth is pending.
func (s *Snake) grow(vacated Point) bool {
	if s.pendingGrowth == 0 {
		return false
	}
	if len(s.Body) == cap(s.Body) {
		panic(fmt.Sprintf("game: snake would exceed grid capacity %d", cap(s.Body)))
	}
	s.pendingGrowth--
	s.Body = append(s.Body, Segment{Pos: vacated})
	return true
}
