// Package prefs provides JSON-based application preferences.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const prefsFile = "preferences.json"

// Well-known preference keys.
const (
	KeyLastTool   = "tool.last"
	KeyLastColor  = "tool.color"
	KeyBrushSize  = "tool.brushSize"
	KeyWindowW    = "window.width"
	KeyWindowH    = "window.height"
	KeyServerURL  = "server.url"
	KeyLastCanvas = "canvas.last"
)

// Prefs stores application preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]interface{}
	path   string
}

// Load reads preferences from ~/.config/ink-canvas/preferences.json.
// Returns an empty Prefs if the file doesn't exist or fails to parse.
func Load() *Prefs {
	p := &Prefs{
		values: make(map[string]interface{}),
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	p.path = filepath.Join(configDir, "ink-canvas", prefsFile)

	data, err := os.ReadFile(p.path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, &p.values)
	return p
}

// Save writes preferences to disk, creating the config directory if
// needed.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

func (p *Prefs) get(key string) (interface{}, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	return v, ok
}

func (p *Prefs) set(key string, val interface{}) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// Float returns a float64 preference, or 0 if not set.
func (p *Prefs) Float(key string) float64 {
	if v, ok := p.get(key); ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return 0
}

// SetFloat stores a float64 preference.
func (p *Prefs) SetFloat(key string, val float64) { p.set(key, val) }

// String returns a string preference, or "" if not set.
func (p *Prefs) String(key string) string {
	if v, ok := p.get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// SetString stores a string preference.
func (p *Prefs) SetString(key string, val string) { p.set(key, val) }

// Bool returns a bool preference, or fallback if not set.
func (p *Prefs) Bool(key string, fallback bool) bool {
	if v, ok := p.get(key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return fallback
}

// SetBool stores a bool preference.
func (p *Prefs) SetBool(key string, val bool) { p.set(key, val) }
