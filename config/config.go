package config

import (
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"raysnake/game"
)

// Grid limits
const (
	MinGridSize = 4
	MaxGridSize = 64
)

// ErrInvalid is the cause of every validation failure.
var ErrInvalid = errors.New("invalid config")

// Duration lets TOML files spell step times as "250ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrapf(err, "parse duration %q", text)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds every setting of a run.
type Config struct {
	Columns       int      `toml:"columns"`
	Rows          int      `toml:"rows"`
	InitialLength int      `toml:"initial_length"`
	StepTime      Duration `toml:"step_time"`
	Wrap          bool     `toml:"wrap"`

	// Seed 0 picks a seed from the clock.
	Seed uint64 `toml:"seed"`

	WindowWidth  int `toml:"window_width"`
	WindowHeight int `toml:"window_height"`
	TargetFPS    int `toml:"target_fps"`

	StatsFile    string `toml:"stats_file"`
	QTableFile   string `toml:"qtable_file"`
	Autopilot    bool   `toml:"autopilot"`
	SpectateAddr string `toml:"spectate_addr"`
}

// Default matches the classic board: 20x20 cells in a 720 pixel window.
func Default() Config {
	return Config{
		Columns:       20,
		Rows:          20,
		InitialLength: 3,
		StepTime:      Duration{250 * time.Millisecond},
		Wrap:          true,
		WindowWidth:   720,
		WindowHeight:  720,
		TargetFPS:     60,
		StatsFile:     filepath.Join("data", "stats.json"),
		QTableFile:    filepath.Join("data", "qtable.json"),
	}
}

// LoadFile overlays the TOML file at path on c. Keys absent from the file
// keep their current values.
func (c *Config) LoadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Wrapf(err, "load config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.Wrapf(ErrInvalid, "unknown key %q in %s", undecoded[0].String(), path)
	}
	return nil
}

// Save writes c as TOML.
func (c Config) Save(path string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create config directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create config %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close config %s", path)
		}
	}()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return errors.Wrapf(err, "encode config %s", path)
	}
	return nil
}

// Validate reports the first setting that cannot produce a playable game.
func (c Config) Validate() error {
	switch {
	case c.Columns < MinGridSize || c.Columns > MaxGridSize:
		return errors.Wrapf(ErrInvalid, "columns %d outside [%d, %d]", c.Columns, MinGridSize, MaxGridSize)
	case c.Rows < MinGridSize || c.Rows > MaxGridSize:
		return errors.Wrapf(ErrInvalid, "rows %d outside [%d, %d]", c.Rows, MinGridSize, MaxGridSize)
	case c.InitialLength < 1 || c.InitialLength > c.Columns/2:
		return errors.Wrapf(ErrInvalid, "initial length %d outside [1, %d]", c.InitialLength, c.Columns/2)
	case c.StepTime.Duration <= 0:
		return errors.Wrapf(ErrInvalid, "step time %v must be positive", c.StepTime.Duration)
	case c.WindowWidth <= 0 || c.WindowHeight <= 0:
		return errors.Wrapf(ErrInvalid, "window %dx%d must be positive", c.WindowWidth, c.WindowHeight)
	case c.TargetFPS <= 0:
		return errors.Wrapf(ErrInvalid, "target fps %d must be positive", c.TargetFPS)
	}
	return nil
}

// GameOptions converts c into simulation rules.
func (c Config) GameOptions() game.Options {
	opts := game.DefaultOptions()
	opts.Grid = game.Grid{Columns: c.Columns, Rows: c.Rows}
	opts.InitialLength = c.InitialLength
	opts.StepTime = c.StepTime.Duration
	opts.Wrap = c.Wrap
	opts.Seed = c.Seed
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}
	return opts
}

// Parse builds the configuration from defaults, the optional TOML file named
// by -config and finally the command-line flags. Flags given explicitly win
// over the file.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Default()

	path := fs.String("config", "", "TOML configuration file")
	fs.IntVar(&cfg.Columns, "columns", cfg.Columns, "Grid columns")
	fs.IntVar(&cfg.Rows, "rows", cfg.Rows, "Grid rows")
	fs.IntVar(&cfg.InitialLength, "length", cfg.InitialLength, "Initial snake length")
	fs.DurationVar(&cfg.StepTime.Duration, "step", cfg.StepTime.Duration, "Time per simulation step (lower = faster)")
	fs.BoolVar(&cfg.Wrap, "wrap", cfg.Wrap, "Wrap around grid edges instead of dying on walls")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed for apples (0 = from clock)")
	fs.IntVar(&cfg.WindowWidth, "width", cfg.WindowWidth, "Initial window width")
	fs.IntVar(&cfg.WindowHeight, "height", cfg.WindowHeight, "Initial window height")
	fs.IntVar(&cfg.TargetFPS, "fps", cfg.TargetFPS, "Target frames per second")
	fs.StringVar(&cfg.StatsFile, "stats", cfg.StatsFile, "Session statistics file (empty = do not persist)")
	fs.StringVar(&cfg.QTableFile, "qtable", cfg.QTableFile, "Autopilot Q-table file (empty = do not persist)")
	fs.BoolVar(&cfg.Autopilot, "autopilot", cfg.Autopilot, "Start with the autopilot steering")
	fs.StringVar(&cfg.SpectateAddr, "spectate", cfg.SpectateAddr, "Address for the spectator feed, e.g. :8080 (empty = off)")

	if err := fs.Parse(args); err != nil {
		return cfg, errors.Wrap(err, "parse flags")
	}

	if *path != "" {
		explicit := make(map[string]string)
		fs.Visit(func(f *flag.Flag) {
			explicit[f.Name] = f.Value.String()
		})
		if err := cfg.LoadFile(*path); err != nil {
			return cfg, err
		}
		for name, value := range explicit {
			if name == "config" || fs.Lookup(name) == nil {
				continue
			}
			if err := fs.Set(name, value); err != nil {
				return cfg, errors.Wrapf(err, "reapply flag -%s", name)
			}
		}
	}

	return cfg, cfg.Validate()
}
