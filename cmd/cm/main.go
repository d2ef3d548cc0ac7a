// Command cm is a terminal modal text editor. It wires tcell's screen, the
// buffer list, the colorizer-backed edit view, the mode router, the
// project/help/build modals, the agent bridge, and the config loader
// together and runs the single-threaded main loop spec.md §5 describes:
// read one input event, drain at most one bridge request, redraw.
//
// Grounded in the teacher's main.go (screen init/teardown, the
// event-then-redraw loop); generalized to a router-owned mode machine and
// a background agent bridge the teacher never had.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/tvernon-cm/cm/internal/bridge"
	"github.com/tvernon-cm/cm/internal/build"
	"github.com/tvernon-cm/cm/internal/buffer"
	"github.com/tvernon-cm/cm/internal/config"
	"github.com/tvernon-cm/cm/internal/help"
	"github.com/tvernon-cm/cm/internal/markup"
	"github.com/tvernon-cm/cm/internal/mode"
	"github.com/tvernon-cm/cm/internal/project"
	"github.com/tvernon-cm/cm/internal/view"
)

// stylesBox indirects through a pointer so a config hot-reload (spec.md
// §6.2/§9) can swap in a freshly loaded ProgramDefaults without every view
// needing its own reference refreshed.
type stylesBox struct {
	d config.ProgramDefaults
}

func (s *stylesBox) Style(lang markup.Language, class markup.ColorClass) tcell.Style {
	return s.d.Style(lang, class)
}
func (s *stylesBox) GutterStyle() tcell.Style      { return s.d.GutterStyle() }
func (s *stylesBox) CurrentLineStyle() tcell.Style { return s.d.CurrentLineStyle() }
func (s *stylesBox) StatusStyle() tcell.Style      { return s.d.StatusStyle() }
func (s *stylesBox) DefaultStyle() tcell.Style     { return s.d.DefaultStyle() }

func main() {
	port := flag.Int("bridge-port", bridge.DefaultPort, "loopback port for the agent bridge")
	buildCmd := flag.String("build-cmd", "go", "build command run by C-B's build view")
	buildArgs := flag.String("build-args", "build ./...", "space-separated arguments to the build command")
	flag.Parse()

	cfgPath, err := config.Path()
	if err != nil {
		log.Fatalf("cm: resolving config path: %v", err)
	}
	defaults, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("cm: loading %s: %v", cfgPath, err)
	}
	watcher, err := config.WatchConfig(cfgPath)
	if err != nil {
		log.Printf("cm: config hot-reload disabled: %v", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("cm: creating screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("cm: initializing screen: %v", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	list := buffer.NewList()
	for _, path := range flag.Args() {
		b := buffer.New()
		if err := b.LoadText(path, true); err != nil {
			log.Printf("cm: loading %s: %v", path, err)
		}
		list.Insert(b)
	}
	if list.Len() == 0 {
		list.Insert(buffer.New())
	}

	styles := &stylesBox{d: defaults}

	_, h := screen.Size()
	editView := view.NewEditView(screen, markup.NewEngine(), styles, 0, h-1)
	editView.SetActive(true)
	editView.SetJumpScroll(defaults.JumpScroll)
	editView.SetBuffer(list.Current())

	cmdline := view.NewCommandLineView(screen, styles, h-1)

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	projectView := project.New(screen, styles, cwd)
	defer projectView.Close()
	helpView := help.New(screen, styles)
	runner := build.NewRunner(*buildCmd, splitArgs(*buildArgs)...)
	buildView := build.New(screen, styles, runner)

	router := mode.NewRouter(list, editView, cmdline, projectView, helpView, buildView)

	br := bridge.New(*port)
	if err := br.Serve(); err != nil {
		log.Printf("cm: agent bridge disabled: %v", err)
	} else {
		defer br.Shutdown()
	}

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	// idle is the bridge's suspension point (spec.md §5): between keystrokes,
	// and at least this often even if the terminal is quiet, drain at most
	// one pending agent request before redrawing.
	idle := time.NewTicker(30 * time.Millisecond)
	defer idle.Stop()

	redraw(screen, router, editView, cmdline, projectView, helpView, buildView)

	for !router.QuitRequested() {
		select {
		case ev := <-events:
			switch e := ev.(type) {
			case *tcell.EventKey:
				router.HandleKey(e)
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-idle.C:
		}

		if watcher != nil {
			if reloaded, ok := watcher.Poll(); ok {
				styles.d = reloaded
				editView.SetJumpScroll(reloaded.JumpScroll)
			}
		}

		br.DrainOne(func(req bridge.Request) bridge.Response {
			return bridge.Dispatch(list, req)
		})
		editView.SetAgentConnected(br.Connected())

		redraw(screen, router, editView, cmdline, projectView, helpView, buildView)
	}
}

func redraw(screen tcell.Screen, router *mode.Router, editView *view.EditView, cmdline *view.CommandLineView, projectView, helpView, buildView interface{ UpdateScreen() }) {
	screen.Clear()
	switch router.State() {
	case mode.StateEdit:
		editView.Reframe()
		editView.UpdateScreen()
		editView.PlaceCursor()
	case mode.StateCommandLine:
		editView.UpdateScreen()
		cmdline.Draw()
	case mode.StateProjectView:
		projectView.UpdateScreen()
	case mode.StateHelpView:
		helpView.UpdateScreen()
	case mode.StateBuildView:
		buildView.UpdateScreen()
	}
	if msg := router.LastMessage(); msg != "" {
		drawMessage(screen, msg)
	}
	screen.Show()
}

func drawMessage(screen tcell.Screen, msg string) {
	w, h := screen.Size()
	row := h - 1
	x := 0
	for _, r := range fmt.Sprintf(" %s", msg) {
		if x >= w {
			break
		}
		screen.SetContent(x, row, r, nil, tcell.StyleDefault.Foreground(tcell.ColorYellow))
		x++
	}
}

func splitArgs(s string) []string {
	var out []string
	start := -1
	for i, r := range s {
		if r == ' ' {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}
