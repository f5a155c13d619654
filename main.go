package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"go-automate/automation"
	"go-automate/config"
	"go-automate/debug"
	"go-automate/editor"
	"go-automate/project"
	"go-automate/theme"
	"go-automate/timeline"
	"go-automate/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	if cfg.Debug {
		if err := debug.Enable(cfg.LogPath); err != nil {
			fmt.Printf("Debug log disabled: %v\n", err)
		}
		defer debug.Disable()
	}

	palette, err := theme.Load(cfg.PalettePath)
	if err != nil {
		fmt.Printf("Palette %s: %v, using default\n", cfg.PalettePath, err)
		palette = theme.Default()
	}
	th := theme.New(palette)

	// Project named on the command line, else the last one opened
	name := cfg.LastProject
	if len(os.Args) > 1 {
		name = os.Args[1]
	}

	tl, err := open(name, cfg)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if name != "" && name != cfg.LastProject {
		cfg.LastProject = name
		if err := cfg.Save(); err != nil {
			debug.Log("config", "save failed: %v", err)
		}
	}

	ed := editor.New(tl, cfg.HistoryLimit)
	m := tui.NewModel(ed, cfg, th, name)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// open loads the latest save of a project, or builds a starter timeline
// when the project has no saves yet.
func open(name string, cfg *config.Config) (*timeline.Timeline, error) {
	if name != "" {
		saves, err := project.ListSaves(name)
		if err != nil {
			return nil, err
		}
		if len(saves) > 0 {
			tl, _, err := project.Load(name, saves[0].Filename)
			return tl, err
		}
	}

	tl := timeline.New(automation.NewStore())
	tl.AddTrack(timeline.NewTrack("CC "+fmt.Sprint(cfg.DefaultController), cfg.Channel(), cfg.Controller()))
	return tl, nil
}
