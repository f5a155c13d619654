package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config is the editor configuration.
type Config struct {
	PPQ            int     `json:"ppq"`
	TicksPerColumn int     `json:"ticksPerColumn"` // horizontal zoom of the lane view
	LaneHeight     int     `json:"laneHeight"`
	SampleStep     int     `json:"sampleStep"` // MIDI export resolution in ticks
	ValueStep      float64 `json:"valueStep"`  // nudge amount for keyframe values

	MIDIChannel       int `json:"midiChannel"`
	DefaultController int `json:"defaultController"`

	Debug       bool   `json:"debug,omitempty"`
	LogPath     string `json:"logPath,omitempty"`
	PalettePath string `json:"palettePath,omitempty"`

	LastProject  string `json:"lastProject,omitempty"`
	HistoryLimit int    `json:"historyLimit,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		PPQ:               96,
		TicksPerColumn:    12,
		LaneHeight:        8,
		SampleStep:        4,
		ValueStep:         1,
		MIDIChannel:       1,
		DefaultController: 1,
		HistoryLimit:      256,
	}
}

// normalize replaces out-of-range fields with defaults.
func (c *Config) normalize() {
	d := DefaultConfig()
	if c.PPQ <= 0 {
		c.PPQ = d.PPQ
	}
	if c.TicksPerColumn <= 0 {
		c.TicksPerColumn = d.TicksPerColumn
	}
	if c.LaneHeight < 2 {
		c.LaneHeight = d.LaneHeight
	}
	if c.SampleStep <= 0 {
		c.SampleStep = d.SampleStep
	}
	if c.ValueStep <= 0 {
		c.ValueStep = d.ValueStep
	}
	if c.MIDIChannel < 1 || c.MIDIChannel > 16 {
		c.MIDIChannel = d.MIDIChannel
	}
	if c.DefaultController < 0 || c.DefaultController > 127 {
		c.DefaultController = d.DefaultController
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = d.HistoryLimit
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-automate"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.normalize()

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Channel returns MIDIChannel as a track channel (1-16).
func (c *Config) Channel() uint8 {
	return uint8(c.MIDIChannel)
}

// Controller returns DefaultController as a CC number.
func (c *Config) Controller() uint8 {
	return uint8(c.DefaultController)
}
