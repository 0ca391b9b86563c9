// Package replay records the inputs of a run and re-simulates it.
// Engines are driven only by their seed and the (dt, actions) frames fed to
// Advance, so a recorded log reproduces the run's score exactly.
package replay

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/pet-arcade/internal/core"
	"github.com/vovakirdan/pet-arcade/internal/registry"
)

// FormatVersion is written into every log.
const FormatVersion = 1

// ErrMismatch is returned when a replay does not reproduce the recorded score.
var ErrMismatch = errors.New("replay: score mismatch")

// Frame is one Advance call. Repeat > 1 stands for that many identical calls.
type Frame struct {
	DT      time.Duration `yaml:"dt"`
	Actions []core.Action `yaml:"actions,omitempty,flow"`
	Repeat  int           `yaml:"repeat,omitempty"`
}

func (f Frame) count() int {
	return max(1, f.Repeat)
}

// Log is a recorded run.
type Log struct {
	Version    int           `yaml:"version"`
	Kind       core.GameKind `yaml:"kind"`
	Seed       int64         `yaml:"seed"`
	Preset     string        `yaml:"preset,omitempty"`
	ConfigPath string        `yaml:"config_path,omitempty"`
	ScreenW    int           `yaml:"screen_w"`
	ScreenH    int           `yaml:"screen_h"`
	Score      int           `yaml:"score"`
	Ended      bool          `yaml:"ended"`
	Frames     []Frame       `yaml:"frames"`
}

// Steps returns the number of Advance calls in the log.
func (l Log) Steps() int {
	n := 0
	for _, f := range l.Frames {
		n += f.count()
	}
	return n
}

func (l *Log) append(dt time.Duration, in core.InputFrame) {
	actions := in.List()
	if n := len(l.Frames); n > 0 && len(actions) == 0 {
		last := &l.Frames[n-1]
		if last.DT == dt && len(last.Actions) == 0 {
			last.Repeat = last.count() + 1
			return
		}
	}
	l.Frames = append(l.Frames, Frame{DT: dt, Actions: actions})
}

// Recorder wraps an engine and logs every run it plays.
type Recorder struct {
	registry.Game
	kind core.GameKind
	log  Log
}

// NewRecorder wraps g, which plays kind.
func NewRecorder(g registry.Game, kind core.GameKind) *Recorder {
	return &Recorder{Game: g, kind: kind}
}

// Reset starts a new log and resets the engine.
func (r *Recorder) Reset(rc core.RuntimeConfig, cb core.Callbacks) {
	r.log = Log{
		Version:    FormatVersion,
		Kind:       r.kind,
		Seed:       rc.Seed,
		Preset:     rc.Preset,
		ConfigPath: rc.ConfigPath,
		ScreenW:    rc.ScreenW,
		ScreenH:    rc.ScreenH,
	}

	end := cb.OnGameEnd
	cb.OnGameEnd = func(score int) {
		r.log.Score = score
		r.log.Ended = true
		if end != nil {
			end(score)
		}
	}
	r.Game.Reset(rc, cb)
}

// Advance records the frame and forwards it.
func (r *Recorder) Advance(dt time.Duration, in core.InputFrame) core.StepResult {
	res := r.Game.Advance(dt, in)
	r.log.append(dt, in)
	if !r.log.Ended {
		r.log.Score = res.State.Score
	}
	return res
}

// Log returns a copy of the current run's log.
func (r *Recorder) Log() Log {
	out := r.log
	out.Frames = slices.Clone(r.log.Frames)
	return out
}

// Result is the outcome of a replayed run.
type Result struct {
	Score int
	Ended bool
	Steps int
}

// Run re-simulates l on a fresh engine.
func Run(l Log) (Result, error) {
	game, err := registry.Create(string(l.Kind))
	if err != nil {
		return Result{}, fmt.Errorf("replay: %w", err)
	}
	defer game.Close()

	var res Result
	game.Reset(core.RuntimeConfig{
		ScreenW:    l.ScreenW,
		ScreenH:    l.ScreenH,
		Seed:       l.Seed,
		Preset:     l.Preset,
		ConfigPath: l.ConfigPath,
	}, core.Callbacks{
		OnGameEnd: func(score int) {
			res.Score = score
			res.Ended = true
		},
	})
	game.Start()

	for _, f := range l.Frames {
		in := core.FrameOf(f.Actions...)
		for range f.count() {
			st := game.Advance(f.DT, in)
			res.Steps++
			if !res.Ended {
				res.Score = st.State.Score
			}
		}
	}
	return res, nil
}

// Verify replays l and checks that it reproduces the recorded outcome.
func Verify(l Log) error {
	res, err := Run(l)
	if err != nil {
		return err
	}
	if res.Score != l.Score || res.Ended != l.Ended {
		return fmt.Errorf("%w: recorded %d (ended=%t), replayed %d (ended=%t)",
			ErrMismatch, l.Score, l.Ended, res.Score, res.Ended)
	}
	return nil
}

// Encode writes l as YAML.
func Encode(w io.Writer, l Log) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("replay: encode: %w", err)
	}
	return enc.Close()
}

// Decode reads a YAML log.
func Decode(r io.Reader) (Log, error) {
	var l Log
	if err := yaml.NewDecoder(r).Decode(&l); err != nil {
		return Log{}, fmt.Errorf("replay: decode: %w", err)
	}
	if l.Version != FormatVersion {
		return Log{}, fmt.Errorf("replay: unsupported version %d", l.Version)
	}
	if !l.Kind.Valid() {
		return Log{}, fmt.Errorf("replay: unknown game kind %q", l.Kind)
	}
	return l, nil
}

// Save writes l to path, creating parent directories.
func Save(path string, l Log) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("replay: cannot create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	if err := Encode(f, l); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads a log from path.
func Load(path string) (Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return Log{}, fmt.Errorf("replay: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
