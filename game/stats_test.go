package game

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func record(score int, start time.Time) Record {
	return Record{
		StartTime:       start,
		EndTime:         start.Add(time.Minute),
		Outcome:         Lost,
		Score:           score,
		Length:          score + 3,
		GamesCount:      1,
		AverageScore:    float64(score),
		MaxScore:        score,
		MinScore:        score,
		AverageDuration: 60,
	}
}

func TestStatsGrouping(t *testing.T) {
	s, err := LoadStats("")
	if err != nil {
		t.Fatalf("LoadStats failed: %v", err)
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2*GroupSize+50; i++ {
		s.Add(record(i%10, base.Add(time.Duration(i)*time.Hour)))
	}

	if got := s.GamesPlayed(); got != 2*GroupSize+50 {
		t.Errorf("Expected %d games, got %d", 2*GroupSize+50, got)
	}
	if got := len(s.Records()); got != 52 {
		t.Errorf("Expected 2 grouped and 50 single records, got %d", got)
	}
	if got := s.BestScore(); got != 9 {
		t.Errorf("Expected best score 9, got %d", got)
	}
	if got := s.AverageScore(); got < 4.49 || got > 4.51 {
		t.Errorf("Expected average score 4.5, got %v", got)
	}

	grouped := 0
	for _, r := range s.Records() {
		if r.CompressionIndex == 1 {
			grouped++
			if r.GamesCount != GroupSize || r.MinScore != 0 || r.MaxScore != 9 {
				t.Errorf("Unexpected group %+v", r)
			}
		}
	}
	if grouped != 2 {
		t.Errorf("Expected 2 grouped records, got %d", grouped)
	}
}

func TestStatsSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "stats.json")

	s, err := LoadStats(path)
	if err != nil {
		t.Fatalf("Loading a missing file should succeed, got %v", err)
	}
	if s.GamesPlayed() != 0 {
		t.Fatalf("Expected empty stats, got %d games", s.GamesPlayed())
	}

	won := record(17, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	won.Outcome = Won
	won.Wins = 1
	s.Add(won)
	s.Add(record(3, time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)))
	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadStats(path)
	if err != nil {
		t.Fatalf("LoadStats failed: %v", err)
	}
	if loaded.GamesPlayed() != 2 || loaded.BestScore() != 17 || loaded.Wins() != 1 {
		t.Errorf("Unexpected stats after reload: games=%d best=%d wins=%d",
			loaded.GamesPlayed(), loaded.BestScore(), loaded.Wins())
	}
	if got := loaded.Records()[0].Outcome; got != Won {
		t.Errorf("Expected first outcome won, got %v", got)
	}
}

func TestStatsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadStats(path); err == nil {
		t.Error("Expected an error for a corrupt stats file")
	}
}

func TestNewRecordFromGame(t *testing.T) {
	g := newTestGame(t, nil)
	g.Apple = Point{11, 10}
	g.HasApple = true
	g.Tick()
	g.finish(Lost, SelfCollision)

	r := NewRecord(g)
	if r.UUID != g.UUID || r.Score != 1 || r.Outcome != Lost || r.GamesCount != 1 || r.Ticks != 1 {
		t.Errorf("Unexpected record %+v", r)
	}
}
