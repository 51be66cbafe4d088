// Copyright © 2025 Neoview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/neoview/main.go
// Summary: Client binary wiring the grid engine, renderer, session store,
//          and bell audio.
// Usage: Reads newline-delimited JSON redraw batches from a replay file or
//        stdin and forwards encoded input events to stdout.

package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep/speaker"
	"golang.org/x/term"

	"github.com/framegrace/neoview/audio"
	"github.com/framegrace/neoview/config"
	"github.com/framegrace/neoview/font"
	"github.com/framegrace/neoview/grid"
	"github.com/framegrace/neoview/protocol"
	"github.com/framegrace/neoview/render"
	"github.com/framegrace/neoview/session"
)

const tickInterval = 16 * time.Millisecond

func main() {
	replayPath := flag.String("replay", "", "Replay file with newline-delimited JSON redraw batches")
	sessionName := flag.String("session", "", "Session name for snapshot persistence")
	configPath := flag.String("config", "", "Config file path (default: user config dir)")
	headless := flag.Bool("headless", false, "Run without a terminal screen (simulation)")
	flag.Parse()

	if err := run(*replayPath, *sessionName, *configPath, *headless); err != nil {
		log.Fatalf("neoview: %v", err)
	}
}

func run(replayPath, sessionName, configPath string, headless bool) error {
	cfg := config.Load(configPath)

	source, err := openSource(replayPath)
	if err != nil {
		return err
	}
	defer source.Close()

	screen, err := openScreen(headless)
	if err != nil {
		return fmt.Errorf("open screen: %w", err)
	}
	defer screen.Fini()

	cols, rows := screen.Size()
	mgr := grid.NewManager(rows, cols, grid.Options{
		Font: font.Options{
			Name:     cfg.GetString("font", "name", ""),
			WideName: cfg.GetString("font", "wide_name", ""),
			Size:     cfg.GetFloat("font", "size", font.DefaultSize),
		},
		AmbiguousWide: cfg.GetBool("render", "ambiguous_wide", false),
		CursorBlink: grid.BlinkTimings{
			On:   cfg.GetDuration("cursor", "blink_on_ms", 0),
			Off:  cfg.GetDuration("cursor", "blink_off_ms", 0),
			Wait: cfg.GetDuration("cursor", "blink_wait_ms", 0),
		},
		InvalidateWindow: cfg.GetDuration("render", "invalidate_window_ms", 20*time.Millisecond),
	})

	renderer := render.New(screen, mgr, render.Options{
		FlushInterval: flushInterval(cfg.GetInt("render", "fps_cap", 60)),
	})

	if cfg.GetBool("bell", "audible", true) {
		if bell, err := newBellPlayer(cfg); err != nil {
			log.Printf("neoview: bell disabled: %v", err)
		} else {
			mgr.Events().Subscribe(bell)
		}
	}

	var autosaver *session.Autosaver
	if sessionName != "" {
		store, err := session.Open(sessionDBPath(cfg))
		if err != nil {
			return fmt.Errorf("open session store: %w", err)
		}
		defer store.Close()

		snaps, err := store.Restore(sessionName)
		if err != nil {
			log.Printf("neoview: session restore failed: %v", err)
		} else if len(snaps) > 0 {
			mgr.Restore(snaps)
		}

		if cfg.GetBool("session", "autosave", true) {
			autosaver = session.NewAutosaver(
				store, sessionName,
				cfg.GetDuration("session", "autosave_wait_ms", time.Second),
				mgr.Snapshot,
			)
			mgr.Events().Subscribe(saveOnFlush{autosaver})
		}
	}

	return mainLoop(screen, mgr, renderer, autosaver, source)
}

// openSource picks the redraw stream: the replay file when given, stdin when
// it is a pipe. A terminal stdin carries no stream.
func openSource(replayPath string) (io.ReadCloser, error) {
	if replayPath != "" {
		f, err := os.Open(replayPath)
		if err != nil {
			return nil, fmt.Errorf("open replay: %w", err)
		}
		return f, nil
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, fmt.Errorf("stdin is a terminal; pipe a redraw stream or use -replay")
	}
	return os.Stdin, nil
}

func openScreen(headless bool) (tcell.Screen, error) {
	if headless {
		sim := tcell.NewSimulationScreen("UTF-8")
		if err := sim.Init(); err != nil {
			return nil, err
		}
		return sim, nil
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()
	return screen, nil
}

func flushInterval(fpsCap int) time.Duration {
	if fpsCap <= 0 {
		return 0
	}
	return time.Second / time.Duration(fpsCap)
}

func sessionDBPath(cfg config.Config) string {
	if path := cfg.GetString("session", "db_path", ""); path != "" {
		return path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "neoview-sessions.db"
	}
	return filepath.Join(dir, "neoview", "sessions.db")
}

// saveOnFlush requests an autosave after every flushed batch.
type saveOnFlush struct {
	auto *session.Autosaver
}

func (s saveOnFlush) OnEvent(ev grid.Event) {
	if ev.Type == grid.EventFlush {
		s.auto.Request(time.Now())
	}
}

// bellPlayer plays the synthesized bell on bell events.
type bellPlayer struct {
	cfg audio.Config
}

func newBellPlayer(cfg config.Config) (*bellPlayer, error) {
	bellCfg := audio.DefaultConfig()
	bellCfg.Volume = cfg.GetFloat("bell", "volume", bellCfg.Volume)
	bellCfg.Frequency = cfg.GetFloat("bell", "frequency_hz", bellCfg.Frequency)

	if err := speaker.Init(bellCfg.SampleRate, bellCfg.SampleRate.N(100*time.Millisecond)); err != nil {
		return nil, err
	}
	return &bellPlayer{cfg: bellCfg}, nil
}

func (b *bellPlayer) OnEvent(ev grid.Event) {
	if ev.Type != grid.EventBell {
		return
	}
	streamer, _ := audio.Bell(b.cfg)
	speaker.Play(streamer)
}

func mainLoop(screen tcell.Screen, mgr *grid.Manager, renderer *render.Renderer, autosaver *session.Autosaver, source io.Reader) error {
	batches := make(chan []protocol.Command, 16)
	readErr := make(chan error, 1)
	go readBatches(source, batches, readErr)

	screenEvents := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(screenEvents)
				return
			}
			screenEvents <- ev
		}
	}()

	translator := render.NewTranslator(mgr)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	streamDone := false
	for {
		select {
		case batch := <-batches:
			mgr.Apply(batch)

		case err := <-readErr:
			if err != nil && err != io.EOF {
				return fmt.Errorf("read redraw stream: %w", err)
			}
			// Keep the last screen up until the user quits.
			streamDone = true

		case ev, ok := <-screenEvents:
			if !ok {
				finalSave(autosaver)
				return nil
			}
			if resize, isResize := ev.(*tcell.EventResize); isResize {
				cols, rows := resize.Size()
				mgr.Apply([]protocol.Command{
					protocol.GridResize{Grid: grid.RootGridID, Rows: rows, Cols: cols},
					protocol.Flush{},
				})
				continue
			}
			if key, isKey := ev.(*tcell.EventKey); isKey && streamDone && key.Key() == tcell.KeyCtrlC {
				finalSave(autosaver)
				return nil
			}
			if input, ok := translator.Translate(ev); ok {
				forwardInput(out, input)
			}

		case <-ticker.C:
			renderer.Tick()
			if autosaver != nil {
				if err := autosaver.Tick(time.Now()); err != nil {
					log.Printf("neoview: autosave failed: %v", err)
				}
			}

		case <-sigs:
			finalSave(autosaver)
			return nil
		}
	}
}

// finalSave persists a pending autosave on any exit path.
func finalSave(autosaver *session.Autosaver) {
	if autosaver == nil {
		return
	}
	if err := autosaver.Flush(); err != nil {
		log.Printf("neoview: final save failed: %v", err)
	}
}

func readBatches(source io.Reader, batches chan<- []protocol.Command, done chan<- error) {
	scanner := bufio.NewScanner(source)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		batch, err := protocol.DecodeBatch(line)
		if err != nil {
			log.Printf("neoview: dropping bad batch: %v", err)
			continue
		}
		batches <- batch
	}
	done <- scanner.Err()
}

func forwardInput(out *bufio.Writer, input protocol.InputEvent) {
	data, err := protocol.EncodeInput(input)
	if err != nil {
		log.Printf("neoview: encode input: %v", err)
		return
	}
	out.Write(data)
	out.WriteByte('\n')
	out.Flush()
}
