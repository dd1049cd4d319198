package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"raysnake/game"
)

// Command is a non-steering key action.
type Command int

const (
	NoCommand Command = iota
	TogglePause
	Restart
	ToggleAutopilot
	Quit
)

type keyBinding[T any] struct {
	key   int32
	value T
}

// Checked in order; the first key pressed this frame wins.
var directionKeys = []keyBinding[game.Direction]{
	{rl.KeyRight, game.Right},
	{rl.KeyD, game.Right},
	{rl.KeyLeft, game.Left},
	{rl.KeyA, game.Left},
	{rl.KeyUp, game.Up},
	{rl.KeyW, game.Up},
	{rl.KeyDown, game.Down},
	{rl.KeyS, game.Down},
}

var commandKeys = []keyBinding[Command]{
	{rl.KeyP, TogglePause},
	{rl.KeySpace, TogglePause},
	{rl.KeyR, Restart},
	{rl.KeyTab, ToggleAutopilot},
	{rl.KeyQ, Quit},
}

// PollDirection returns the heading requested this frame, or None.
func PollDirection() game.Direction {
	for _, b := range directionKeys {
		if rl.IsKeyPressed(b.key) {
			return b.value
		}
	}
	return game.None
}

// PollCommand returns the command requested this frame, or NoCommand.
func PollCommand() Command {
	if rl.WindowShouldClose() {
		return Quit
	}
	for _, b := range commandKeys {
		if rl.IsKeyPressed(b.key) {
			return b.value
		}
	}
	return NoCommand
}
