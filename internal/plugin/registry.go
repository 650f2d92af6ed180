// Package plugin defines the signal-plugin capability and a Registry that
// fans one bar history out to every enabled plugin and merges their
// outputs into a single signal map.
package plugin

import (
	"fmt"
	"log/slog"

	"meridian/internal/domain"
	"meridian/internal/util"
)

// Plugin computes zero or more named signals from a bar history. Every
// plugin receives the full history up to and including the current bar
// and slices whatever lookback window it needs. A plugin that lacks
// enough history must return a no-signal map, not an error.
type Plugin interface {
	// Name returns the unique identifier for this plugin.
	Name() string

	// Process computes the plugin's signals for the latest bar in history.
	Process(history []domain.Bar) (domain.SignalMap, error)
}

type entry struct {
	plugin  Plugin
	enabled bool
}

// Registry holds an ordered collection of plugins. Plugins contribute to
// the merged signal map in registration order, so on key collisions the
// last registered plugin wins.
type Registry struct {
	entries []*entry
	log     *slog.Logger
}

// NewRegistry creates an empty plugin Registry.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{log: log.With("component", "plugins")}
}

// Register appends a plugin to the registry, enabled by default.
func (r *Registry) Register(p Plugin) {
	r.entries = append(r.entries, &entry{plugin: p, enabled: true})
}

// SetEnabled toggles a plugin by name. It reports whether the plugin was
// found.
func (r *Registry) SetEnabled(name string, enabled bool) bool {
	for _, e := range r.entries {
		if e.plugin.Name() == name {
			e.enabled = enabled
			return true
		}
	}
	return false
}

// EnableOnly enables exactly the named plugins and disables the rest.
// An empty list leaves all plugins enabled.
func (r *Registry) EnableOnly(names []string) {
	if len(names) == 0 {
		return
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	for _, e := range r.entries {
		e.enabled = want[e.plugin.Name()]
	}
}

// Names returns all registered plugin names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.plugin.Name())
	}
	return names
}

// Process invokes every enabled plugin with the same history and merges
// their outputs last-writer-wins. A plugin that returns an error or
// panics contributes nothing; the failure is logged and the remaining
// plugins still run.
func (r *Registry) Process(history []domain.Bar) domain.SignalMap {
	merged := domain.NewSignalMap()
	for _, e := range r.entries {
		if !e.enabled {
			continue
		}
		out, err := safeProcess(e.plugin, history)
		if err != nil {
			r.log.Error("plugin failed",
				"category", util.CategoryError,
				"plugin", e.plugin.Name(),
				"error", err,
			)
			continue
		}
		merged.Merge(out)
	}
	return merged
}

// safeProcess shields the registry from panicking plugins.
func safeProcess(p Plugin, history []domain.Bar) (out domain.SignalMap, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = domain.SignalMap{}
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return p.Process(history)
}

// Defaults returns the standard plugin set in its canonical order.
func Defaults() []Plugin {
	return []Plugin{
		NewRSI(14, 30, 70),
		NewStochastic(14, 3, 20, 80),
		NewWilliamsR(14, -80, -20),
		NewMACD(12, 26, 9),
		NewADX(14, 25),
		NewMovingAverage(20),
		NewATR(14),
		NewEMACrossover(9, 20, 200),
	}
}
