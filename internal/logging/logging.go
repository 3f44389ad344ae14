// Package logging wires github.com/op/go-logging into a single stderr
// backend shared by every engine component, replacing ad hoc fmt.Printf
// calls with structured, leveled logging.
package logging

import (
	"os"
	"sync"

	logging "github.com/op/go-logging"
)

var (
	once    sync.Once
	backend logging.LeveledBackend
)

func initBackend() {
	format := logging.MustStringFormatter(
		`%{time:15:04:05.000} %{module} %{level:.4s} %{message}`,
	)
	raw := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(raw, format)
	backend = logging.AddModuleLevel(formatted)
	backend.SetLevel(logging.INFO, "")
}

// Get returns a logger for the named component (e.g. "search", "root",
// "board"), backed by a process-wide stderr writer. All components share
// one backend so SetLevel below affects every logger at once.
func Get(name string) *logging.Logger {
	once.Do(initBackend)
	logging.SetBackend(backend)
	return logging.MustGetLogger(name)
}

// SetLevel adjusts the verbosity of every logger obtained from Get.
// module "" applies to all modules that have not set a more specific
// level.
func SetLevel(level logging.Level) {
	once.Do(initBackend)
	backend.SetLevel(level, "")
}
