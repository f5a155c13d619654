package editor

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"go-automate/automation"
)

// ErrEmptyClipboard is returned when pasting with nothing copied.
var ErrEmptyClipboard = errors.New("clipboard empty")

type clip struct {
	Keys []automation.Keyframe `yaml:"keys"`
}

// marshalKeys encodes keys with ticks relative to the first one.
func marshalKeys(keys []automation.Keyframe) ([]byte, error) {
	if len(keys) == 0 {
		return nil, errors.New("no keyframes to copy")
	}
	origin := keys[0].Tick
	rel := make([]automation.Keyframe, len(keys))
	for i, k := range keys {
		rel[i] = k.Shifted(-origin)
	}
	data, err := yaml.Marshal(clip{Keys: rel})
	if err != nil {
		return nil, errors.Wrap(err, "marshal keyframes")
	}
	return data, nil
}

func unmarshalKeys(data []byte) ([]automation.Keyframe, error) {
	if len(data) == 0 {
		return nil, ErrEmptyClipboard
	}
	var c clip
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "unmarshal keyframes")
	}
	if len(c.Keys) == 0 {
		return nil, ErrEmptyClipboard
	}
	return c.Keys, nil
}
