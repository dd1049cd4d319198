package main

import (
	"context"
	"flag"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/golang/glog"

	"raysnake/ai"
	"raysnake/config"
	"raysnake/game"
	"raysnake/spectate"
	"raysnake/ui"
)

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		glog.Fatalf("Configuration: %v", err)
	}
	defer glog.Flush()

	stats, err := game.LoadStats(cfg.StatsFile)
	if err != nil {
		glog.Warningf("Starting with empty statistics: %v", err)
		stats, _ = game.LoadStats("")
	}

	opts := cfg.GameOptions()
	agent := ai.NewAgent(opts.Seed)
	if cfg.QTableFile != "" {
		if err := agent.Load(cfg.QTableFile); err != nil {
			glog.Warningf("Starting with an empty q-table: %v", err)
		}
	}

	var hub *spectate.Hub
	if cfg.SpectateAddr != "" {
		hub = spectate.NewHub()
		srv := spectate.NewServer(cfg.SpectateAddr, hub)
		if err := srv.Start(); err != nil {
			glog.Fatalf("Spectator feed: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				glog.Warningf("%v", err)
			}
		}()
	}

	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.WindowWidth), int32(cfg.WindowHeight), "Snake")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.TargetFPS))

	g := game.NewGame(opts)
	glog.Infof("Game %s started on a %dx%d grid (wrap=%t, seed=%d)",
		g.UUID, g.Grid.Columns, g.Grid.Rows, opts.Wrap, opts.Seed)

	renderer := ui.NewRenderer()
	autopilot := cfg.Autopilot
	publish := func(snap game.Snapshot) {
		if hub != nil {
			hub.Publish(snap)
		}
	}
	publish(g.Snapshot())

	running := true
	for running {
		switch ui.PollCommand() {
		case ui.Quit:
			running = false
			continue
		case ui.TogglePause:
			g.TogglePause()
			publish(g.Snapshot())
		case ui.Restart:
			if autopilot {
				agent.EndEpisode()
			}
			g.Restart()
			glog.Infof("Game %s started", g.UUID)
			publish(g.Snapshot())
		case ui.ToggleAutopilot:
			autopilot = !autopilot
			if !autopilot {
				agent.Cancel()
			}
			glog.Infof("Autopilot %t", autopilot)
		}

		if autopilot {
			if g.State == game.Playing && !agent.Pending() {
				g.SetHeading(agent.Decide(g.Snapshot()))
			}
		} else if d := ui.PollDirection(); d != game.None {
			g.SetHeading(d)
		}

		wasTerminal := g.State.Terminal()
		ev := g.Update(time.Duration(rl.GetFrameTime() * float32(time.Second)))
		if ev != 0 {
			snap := g.Snapshot()
			if autopilot {
				agent.Learn(snap, ev)
			}
			publish(snap)
		}

		if !wasTerminal && g.State.Terminal() {
			stats.Add(game.NewRecord(g))
			if err := stats.Save(); err != nil {
				glog.Warningf("%v", err)
			}
			if autopilot {
				agent.EndEpisode()
				g.Restart()
				publish(g.Snapshot())
			}
		}

		renderer.Draw(g.Snapshot(), ui.HUD{
			BestScore:   stats.BestScore(),
			GamesPlayed: stats.GamesPlayed(),
			Autopilot:   autopilot,
			Episodes:    agent.Episodes,
			Spectators:  hubCount(hub),
		})
	}

	if cfg.QTableFile != "" {
		if err := agent.Save(cfg.QTableFile); err != nil {
			glog.Warningf("%v", err)
		}
	}
	if err := stats.Save(); err != nil {
		glog.Warningf("%v", err)
	}
	glog.Infof("Played %d games, best score %d", stats.GamesPlayed(), stats.BestScore())
}

func hubCount(h *spectate.Hub) int {
	if h == nil {
		return 0
	}
	return h.Count()
}
