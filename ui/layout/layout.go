// Package layout fits the board into the window.
package layout

const (
	// BorderPadding is kept free around the board on every side.
	BorderPadding = 10
	// MinFontSize and the divisor keep the HUD readable at any window size.
	MinFontSize    = 12
	fontSizeFactor = 36
)

// Layout is the pixel geometry of one frame.
type Layout struct {
	ScreenWidth, ScreenHeight int32
	TileSize                  int32
	OffsetX, OffsetY          int32
	// Width and Height of the board in pixels.
	Width, Height int32
	FontSize      int32
	LineHeight    int32
}

// Compute sizes square tiles so the whole board fits the screen and centres
// it. Tiles never shrink below one pixel.
func Compute(screenWidth, screenHeight int32, columns, rows int) Layout {
	l := Layout{ScreenWidth: screenWidth, ScreenHeight: screenHeight}

	availableWidth := screenWidth - BorderPadding*2
	availableHeight := screenHeight - BorderPadding*2
	if columns > 0 && rows > 0 {
		l.TileSize = min(availableWidth/int32(columns), availableHeight/int32(rows))
	}
	if l.TileSize < 1 {
		l.TileSize = 1
	}

	l.Width = l.TileSize * int32(columns)
	l.Height = l.TileSize * int32(rows)
	l.OffsetX = (screenWidth - l.Width) / 2
	l.OffsetY = (screenHeight - l.Height) / 2

	l.FontSize = max(MinFontSize, screenHeight/fontSizeFactor)
	l.LineHeight = l.FontSize * 3 / 2
	return l
}

// Cell returns the top-left pixel of grid cell (x, y).
func (l Layout) Cell(x, y int) (int32, int32) {
	return l.OffsetX + int32(x)*l.TileSize, l.OffsetY + int32(y)*l.TileSize
}

// Centered returns the x that centres a span of width w on the board.
func (l Layout) Centered(w int32) int32 {
	return l.OffsetX + (l.Width-w)/2
}
