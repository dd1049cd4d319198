package layout

import "testing"

func TestCompute(t *testing.T) {
	tests := []struct {
		name             string
		width, height    int32
		columns, rows    int
		tile             int32
		offsetX, offsetY int32
	}{
		{"classic window", 720, 720, 20, 20, 35, 10, 10},
		{"wide window", 1000, 500, 20, 20, 24, 260, 10},
		{"tall window", 400, 900, 10, 10, 38, 10, 260},
		{"rectangular grid", 720, 720, 30, 15, 23, 15, 187},
		{"tiny window", 20, 20, 64, 64, 1, -22, -22},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Compute(tt.width, tt.height, tt.columns, tt.rows)
			if l.TileSize != tt.tile {
				t.Errorf("Expected tile %d, got %d", tt.tile, l.TileSize)
			}
			if l.OffsetX != tt.offsetX || l.OffsetY != tt.offsetY {
				t.Errorf("Expected offset (%d, %d), got (%d, %d)", tt.offsetX, tt.offsetY, l.OffsetX, l.OffsetY)
			}
			if l.Width != l.TileSize*int32(tt.columns) || l.Height != l.TileSize*int32(tt.rows) {
				t.Errorf("Board size %dx%d does not match tiles", l.Width, l.Height)
			}
		})
	}
}

func TestBoardFitsWithPadding(t *testing.T) {
	for w := int32(100); w <= 1200; w += 37 {
		for h := int32(100); h <= 1200; h += 41 {
			l := Compute(w, h, 20, 13)
			if l.OffsetX < BorderPadding || l.OffsetY < BorderPadding {
				t.Fatalf("%dx%d: board at (%d, %d) overlaps the padding", w, h, l.OffsetX, l.OffsetY)
			}
			if l.OffsetX+l.Width > w-BorderPadding || l.OffsetY+l.Height > h-BorderPadding {
				t.Fatalf("%dx%d: board %dx%d overflows", w, h, l.Width, l.Height)
			}
		}
	}
}

func TestCell(t *testing.T) {
	l := Compute(720, 720, 20, 20)
	x, y := l.Cell(3, 4)
	if x != 10+3*35 || y != 10+4*35 {
		t.Errorf("Expected (115, 150), got (%d, %d)", x, y)
	}
	if got := l.Centered(100); got != 10+(700-100)/2 {
		t.Errorf("Expected centred text at 310, got %d", got)
	}
}

func TestFontSize(t *testing.T) {
	if l := Compute(720, 720, 20, 20); l.FontSize != 20 {
		t.Errorf("Expected the classic 20px font, got %d", l.FontSize)
	}
	if l := Compute(200, 200, 20, 20); l.FontSize != MinFontSize {
		t.Errorf("Expected the minimum font, got %d", l.FontSize)
	}
}
