package game

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// GroupSize is how many records of one level are folded into a single record
// of the next level.
const GroupSize = 100

// Record describes one finished game, or a group of them once CompressionIndex
// is above zero.
type Record struct {
	UUID             string    `json:"uuid,omitempty"`
	StartTime        time.Time `json:"startTime"`
	EndTime          time.Time `json:"endTime"`
	Outcome          State     `json:"outcome"`
	Score            int       `json:"score"`
	Length           int       `json:"length"`
	Ticks            int       `json:"ticks"`
	CompressionIndex int       `json:"compressionIndex"`
	GamesCount       int       `json:"gamesCount"`
	Wins             int       `json:"wins"`
	AverageScore     float64   `json:"averageScore"`
	MaxScore         int       `json:"maxScore"`
	MinScore         int       `json:"minScore"`
	AverageDuration  float64   `json:"averageDuration"`
}

// NewRecord captures a finished game.
func NewRecord(g *Game) Record {
	duration := g.Duration().Seconds()
	wins := 0
	if g.State == Won {
		wins = 1
	}
	return Record{
		UUID:            g.UUID,
		StartTime:       g.StartTime,
		EndTime:         g.StartTime.Add(g.Duration()),
		Outcome:         g.State,
		Score:           g.Score,
		Length:          g.Snake.Len(),
		Ticks:           g.Ticks,
		GamesCount:      1,
		Wins:            wins,
		AverageScore:    float64(g.Score),
		MaxScore:        g.Score,
		MinScore:        g.Score,
		AverageDuration: duration,
	}
}

// Stats keeps the history of finished games and persists it as JSON.
type Stats struct {
	path    string
	records []Record
	mutex   sync.RWMutex
}

// LoadStats reads the history stored at path. A missing file yields empty
// stats; an empty path keeps them in memory only.
func LoadStats(path string) (*Stats, error) {
	s := &Stats{path: path}
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, errors.Wrapf(err, "read stats %s", path)
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		return s, errors.Wrapf(err, "decode stats %s", path)
	}
	return s, nil
}

// Add appends a record and folds full groups.
func (s *Stats) Add(r Record) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.records = append(s.records, r)
	s.group()
}

// group folds every GroupSize records of one compression level into one
// record of the next level, oldest first, repeating up the levels.
func (s *Stats) group() {
	sort.SliceStable(s.records, func(i, j int) bool {
		if s.records[i].CompressionIndex != s.records[j].CompressionIndex {
			return s.records[i].CompressionIndex > s.records[j].CompressionIndex
		}
		return s.records[i].StartTime.Before(s.records[j].StartTime)
	})

	for level := 0; ; level++ {
		var same, other []Record
		for _, r := range s.records {
			if r.CompressionIndex == level {
				same = append(same, r)
			} else {
				other = append(other, r)
			}
		}
		if len(same) < GroupSize {
			return
		}

		folded := make([]Record, 0, len(same)/GroupSize)
		for len(same) >= GroupSize {
			folded = append(folded, fold(same[:GroupSize], level+1))
			same = same[GroupSize:]
		}
		s.records = append(append(other, folded...), same...)
	}
}

func fold(group []Record, level int) Record {
	out := Record{
		StartTime:        group[0].StartTime,
		EndTime:          group[0].EndTime,
		Outcome:          group[0].Outcome,
		CompressionIndex: level,
		MaxScore:         group[0].MaxScore,
		MinScore:         group[0].MinScore,
	}

	var totalScore, totalDuration float64
	for _, r := range group {
		if r.MaxScore > out.MaxScore {
			out.MaxScore = r.MaxScore
		}
		if r.MinScore < out.MinScore {
			out.MinScore = r.MinScore
		}
		if r.StartTime.Before(out.StartTime) {
			out.StartTime = r.StartTime
		}
		if r.EndTime.After(out.EndTime) {
			out.EndTime = r.EndTime
		}
		if r.Length > out.Length {
			out.Length = r.Length
		}
		totalScore += r.AverageScore * float64(r.GamesCount)
		totalDuration += r.AverageDuration * float64(r.GamesCount)
		out.GamesCount += r.GamesCount
		out.Wins += r.Wins
		out.Ticks += r.Ticks
	}
	out.Score = out.MaxScore
	out.AverageScore = totalScore / float64(out.GamesCount)
	out.AverageDuration = totalDuration / float64(out.GamesCount)
	return out
}

// Records returns a copy of the stored records.
func (s *Stats) Records() []Record {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// GamesPlayed counts every game, grouped or not.
func (s *Stats) GamesPlayed() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	total := 0
	for _, r := range s.records {
		total += r.GamesCount
	}
	return total
}

// BestScore is the highest score ever recorded.
func (s *Stats) BestScore() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	best := 0
	for _, r := range s.records {
		if r.MaxScore > best {
			best = r.MaxScore
		}
	}
	return best
}

// AverageScore weighs each record by the games it stands for.
func (s *Stats) AverageScore() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var total float64
	var games int
	for _, r := range s.records {
		total += r.AverageScore * float64(r.GamesCount)
		games += r.GamesCount
	}
	if games == 0 {
		return 0
	}
	return total / float64(games)
}

// Wins counts won games.
func (s *Stats) Wins() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	wins := 0
	for _, r := range s.records {
		wins += r.Wins
	}
	return wins
}

// Save writes the history to the file it was loaded from.
func (s *Stats) Save() error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrap(err, "create stats directory")
	}
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode stats")
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return errors.Wrapf(err, "write stats %s", s.path)
	}
	return nil
}
