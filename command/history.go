package command

import (
	"github.com/pkg/errors"

	"go-automate/debug"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultLimit is the number of commands kept when no limit is given.
const DefaultLimit = 256

// Command is an edit paired with its inverse. Apply runs again on redo.
type Command struct {
	Name   string
	Apply  func() error
	Invert func() error
}

// History is the undo/redo stack. An edit that fails to apply is not
// recorded; the engine guarantees a failed edit changed nothing.
type History struct {
	undo  []Command
	redo  []Command
	limit int
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit}
}

// Do applies c and records it. Any redo entries are dropped.
func (h *History) Do(c Command) error {
	if err := c.Apply(); err != nil {
		debug.Log("command", "%s rejected: %v", c.Name, err)
		return err
	}
	h.undo = append(h.undo, c)
	if len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.redo = nil
	debug.Log("command", "do %s (undo depth %d)", c.Name, len(h.undo))
	return nil
}

// Undo inverts the last applied command and returns its name.
func (h *History) Undo() (string, error) {
	if len(h.undo) == 0 {
		return "", ErrNothingToUndo
	}
	c := h.undo[len(h.undo)-1]
	if err := c.Invert(); err != nil {
		return c.Name, errors.Wrapf(err, "undo %s", c.Name)
	}
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, c)
	debug.Log("command", "undo %s", c.Name)
	return c.Name, nil
}

// Redo applies the last undone command again.
func (h *History) Redo() (string, error) {
	if len(h.redo) == 0 {
		return "", ErrNothingToRedo
	}
	c := h.redo[len(h.redo)-1]
	if err := c.Apply(); err != nil {
		return c.Name, errors.Wrapf(err, "redo %s", c.Name)
	}
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, c)
	debug.Log("command", "redo %s", c.Name)
	return c.Name, nil
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// UndoName is the name of the command Undo would invert.
func (h *History) UndoName() string {
	if len(h.undo) == 0 {
		return ""
	}
	return h.undo[len(h.undo)-1].Name
}

// RedoName is the name of the command Redo would apply.
func (h *History) RedoName() string {
	if len(h.redo) == 0 {
		return ""
	}
	return h.redo[len(h.redo)-1].Name
}

// Clear drops all history, e.g. after loading a project.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}
