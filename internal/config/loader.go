package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Path returns the location of the configuration file, $HOME/.cmrc
// (spec.md §6.2).
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".cmrc"), nil
}

// Load reads the configuration file at path, writing a bootstrap file with
// Bootstrap()'s values if none exists yet.
func Load(path string) (ProgramDefaults, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		defaults := Bootstrap()
		if writeErr := write(path, defaults); writeErr != nil {
			return defaults, writeErr
		}
		return defaults, nil
	}
	if err != nil {
		return ProgramDefaults{}, fmt.Errorf("reading %s: %w", path, err)
	}

	defaults := Bootstrap()
	if err := json.Unmarshal(data, &defaults); err != nil {
		return ProgramDefaults{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return defaults, nil
}

func write(path string, defaults ProgramDefaults) error {
	data, err := json.MarshalIndent(defaults, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding bootstrap config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Watcher hot-reloads the configuration file on write, queuing the most
// recent successfully parsed ProgramDefaults for Poll. The caller drains
// events from the main loop's idle point, the same way the bridge's
// pending queue is drained (spec.md §5).
type Watcher struct {
	path    string
	fsw     *fsnotify.Watcher
	reloads chan ProgramDefaults
}

// WatchConfig starts watching path for writes. Call Close when done.
func WatchConfig(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("starting config watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	w := &Watcher{path: path, fsw: fsw, reloads: make(chan ProgramDefaults, 1)}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Name != w.path || (ev.Op&(fsnotify.Write|fsnotify.Create) == 0) {
				continue
			}
			defaults, err := Load(w.path)
			if err != nil {
				log.Printf("config: reload of %s failed: %v", w.path, err)
				continue
			}
			select {
			case w.reloads <- defaults:
			default:
				// drop the stale pending reload, keep the freshest
				select {
				case <-w.reloads:
				default:
				}
				w.reloads <- defaults
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("config: watch error: %v", err)
		}
	}
}

// Poll returns a reloaded ProgramDefaults if one arrived since the last
// call, and whether one was available.
func (w *Watcher) Poll() (ProgramDefaults, bool) {
	select {
	case d := <-w.reloads:
		return d, true
	default:
		return ProgramDefaults{}, false
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
