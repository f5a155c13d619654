package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"go-automate/config"
	"go-automate/debug"
	"go-automate/midi"
	"go-automate/project"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		cfg = config.DefaultConfig()
	}
	if cfg.Debug {
		if err := debug.Enable(cfg.LogPath); err == nil {
			defer debug.Disable()
		}
	}

	switch {
	case args[0] == "list":
		return list()
	case args[0] == "export" && len(args) == 3:
		return export(args[1], args[2], cfg)
	case args[0] == "sample" && len(args) == 4:
		return sample(args[1], args[2], args[3])
	}
	usage()
	return nil
}

func usage() {
	fmt.Println("Automation project tool")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                           - List projects and their saves")
	fmt.Println("  export <project> <out.mid>     - Render the latest save to a MIDI file")
	fmt.Println("  sample <project> <track> <tick> - Print curve values at a tick")
}

func list() error {
	projects, err := project.ListProjects()
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("no projects")
		return nil
	}
	for _, p := range projects {
		fmt.Println(p)
		saves, err := project.ListSaves(p)
		if err != nil {
			return err
		}
		for _, s := range saves {
			label := s.Name
			if label == "" {
				label = "-"
			}
			fmt.Printf("  %s  %s\n", s.Timestamp.Format("2006-01-02 15:04:05"), label)
		}
	}
	return nil
}

func export(name, out string, cfg *config.Config) error {
	tl, doc, err := project.Load(name, "")
	if err != nil {
		return err
	}
	ppq := doc.PPQ
	if ppq <= 0 {
		ppq = cfg.PPQ
	}
	if err := midi.WriteSMFFile(out, tl, ppq, int64(cfg.SampleStep)); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d tracks, %d ticks)\n", out, len(tl.Tracks), tl.End())
	return nil
}

func sample(name, trackArg, tickArg string) error {
	track, err := strconv.Atoi(trackArg)
	if err != nil {
		return errors.Wrap(err, "track")
	}
	tick, err := strconv.ParseInt(tickArg, 10, 64)
	if err != nil {
		return errors.Wrap(err, "tick")
	}
	tl, _, err := project.Load(name, "")
	if err != nil {
		return err
	}
	// tracks are numbered from 1 on the command line
	t, err := tl.Track(track - 1)
	if err != nil {
		return err
	}
	primary, secondary, ok := tl.Sample(track-1, tick)
	if !ok {
		fmt.Printf("%s @%d: no value\n", t.Name, tick)
		return nil
	}
	fmt.Printf("%s @%d: primary %.4f secondary %.4f (cc%d=%d)\n",
		t.Name, tick, primary, secondary, t.Controller, midi.Quantize(primary))
	return nil
}
