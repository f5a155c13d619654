package project

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"go-automate/debug"
	"go-automate/timeline"
)

const timestampLayout = "2006-01-02_15-04-05"

// SaveInfo describes one saved file of a project.
type SaveInfo struct {
	Filename  string
	Name      string // label after the timestamp, empty if unnamed
	Timestamp time.Time
}

// ProjectsDir returns the projects directory path
func ProjectsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-automate", "projects"), nil
}

// ProjectDir returns the path to a specific project
func ProjectDir(projectName string) (string, error) {
	base, err := ProjectsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, projectName), nil
}

// ListProjects returns all project folder names
func ListProjects() ([]string, error) {
	dir, err := ProjectsDir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var projects []string
	for _, entry := range entries {
		if entry.IsDir() {
			projects = append(projects, entry.Name())
		}
	}

	sort.Strings(projects)
	return projects, nil
}

// parseSave splits 2006-01-02_15-04-05[_name].json.
func parseSave(filename string) (SaveInfo, bool) {
	if !strings.HasSuffix(filename, ".json") {
		return SaveInfo{}, false
	}
	base := strings.TrimSuffix(filename, ".json")
	if len(base) < len(timestampLayout) {
		return SaveInfo{}, false
	}
	ts, err := time.Parse(timestampLayout, base[:len(timestampLayout)])
	if err != nil {
		return SaveInfo{}, false
	}
	info := SaveInfo{Filename: filename, Timestamp: ts}
	if rest := base[len(timestampLayout):]; len(rest) > 1 && rest[0] == '_' {
		info.Name = rest[1:]
	}
	return info, true
}

// ListSaves returns timestamped saves for a project, newest first
func ListSaves(projectName string) ([]SaveInfo, error) {
	dir, err := ProjectDir(projectName)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SaveInfo{}, nil
		}
		return nil, err
	}

	var saves []SaveInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if info, ok := parseSave(entry.Name()); ok {
			saves = append(saves, info)
		}
	}

	sort.Slice(saves, func(i, j int) bool {
		if saves[i].Timestamp.Equal(saves[j].Timestamp) {
			return saves[i].Filename > saves[j].Filename
		}
		return saves[i].Timestamp.After(saves[j].Timestamp)
	})
	return saves, nil
}

func saveFilename(ts time.Time, label string) string {
	name := ts.Format(timestampLayout)
	if label != "" {
		name += "_" + sanitizeFilename(label)
	}
	return name + ".json"
}

// Save writes tl as a new timestamped save and returns its filename.
func Save(projectName, label string, tl *timeline.Timeline, ppq int) (string, error) {
	if projectName == "" {
		projectName = "untitled"
	}
	dir, err := ProjectDir(projectName)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	filename := saveFilename(time.Now(), label)
	if err := WriteFile(filepath.Join(dir, filename), tl, ppq); err != nil {
		return "", err
	}
	debug.Log("project", "saved %s/%s", projectName, filename)
	return filename, nil
}

// Load reads a save, or the most recent one when filename is empty.
func Load(projectName, filename string) (*timeline.Timeline, *Document, error) {
	dir, err := ProjectDir(projectName)
	if err != nil {
		return nil, nil, err
	}
	if filename == "" {
		saves, err := ListSaves(projectName)
		if err != nil {
			return nil, nil, err
		}
		if len(saves) == 0 {
			return nil, nil, errors.Errorf("no saves found in project %s", projectName)
		}
		filename = saves[0].Filename
	}
	return ReadFile(filepath.Join(dir, filename))
}

// WriteFile encodes tl to path in the format its extension names.
func WriteFile(path string, tl *timeline.Timeline, ppq int) error {
	data, err := Marshal(Encode(tl, ppq), FormatFor(path))
	if err != nil {
		return errors.Wrap(err, "encode project")
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile decodes a project file written by WriteFile.
func ReadFile(path string) (*timeline.Timeline, *Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	doc, err := Unmarshal(data, FormatFor(path))
	if err != nil {
		return nil, nil, errors.Wrap(err, path)
	}
	tl, err := Decode(doc)
	if err != nil {
		return nil, nil, errors.Wrap(err, path)
	}
	return tl, doc, nil
}

// CreateProject creates a new empty project folder
func CreateProject(name string) error {
	dir, err := ProjectDir(name)
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// DeleteSave deletes a specific save file
func DeleteSave(projectName, filename string) error {
	dir, err := ProjectDir(projectName)
	if err != nil {
		return err
	}
	return os.Remove(filepath.Join(dir, filename))
}

// RenameSave changes the label of a save and keeps its timestamp.
func RenameSave(projectName, oldFilename, newName string) (string, error) {
	dir, err := ProjectDir(projectName)
	if err != nil {
		return "", err
	}
	info, ok := parseSave(oldFilename)
	if !ok {
		return "", errors.Errorf("invalid save filename %q", oldFilename)
	}
	newFilename := saveFilename(info.Timestamp, newName)
	if err := os.Rename(filepath.Join(dir, oldFilename), filepath.Join(dir, newFilename)); err != nil {
		return "", err
	}
	return newFilename, nil
}

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	r := strings.NewReplacer(
		" ", "-", "/", "-", "\\", "-", ":", "-",
		"*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
	)
	return r.Replace(name)
}

// DeleteProject deletes entire project folder
func DeleteProject(name string) error {
	dir, err := ProjectDir(name)
	if err != nil {
		return err
	}
	return os.RemoveAll(dir)
}

// RenameProject renames a project folder
func RenameProject(oldName, newName string) error {
	oldDir, err := ProjectDir(oldName)
	if err != nil {
		return err
	}
	newDir, err := ProjectDir(sanitizeFilename(newName))
	if err != nil {
		return err
	}
	return os.Rename(oldDir, newDir)
}
