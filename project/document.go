package project

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"go-automate/automation"
	"go-automate/timeline"
)

// Version is the document format written by Encode.
const Version = 1

// ErrVersion is returned for documents written by a newer format.
var ErrVersion = errors.New("unsupported document version")

// Document is the serialized form of a timeline. Block IDs are only
// meaningful inside one document; Decode assigns fresh handles.
type Document struct {
	Version int        `json:"version" yaml:"version"`
	PPQ     int        `json:"ppq" yaml:"ppq"`
	Tracks  []TrackDoc `json:"tracks" yaml:"tracks"`
}

type TrackDoc struct {
	Name       string     `json:"name" yaml:"name"`
	Channel    uint8      `json:"channel" yaml:"channel"`
	Controller uint8      `json:"controller" yaml:"controller"`
	HighRes    bool       `json:"highRes,omitempty" yaml:"highRes,omitempty"`
	Muted      bool       `json:"muted,omitempty" yaml:"muted,omitempty"`
	Blocks     []BlockDoc `json:"blocks" yaml:"blocks"`
}

// BlockDoc holds a block's keyframes, or only a Prototype reference for an
// instance.
type BlockDoc struct {
	ID        uint64                `json:"id" yaml:"id"`
	Start     int64                 `json:"start" yaml:"start"`
	Title     string                `json:"title" yaml:"title"`
	Prototype uint64                `json:"prototype,omitempty" yaml:"prototype,omitempty"`
	Primary   []automation.Keyframe `json:"primary,omitempty" yaml:"primary,omitempty"`
	Secondary []automation.Keyframe `json:"secondary,omitempty" yaml:"secondary,omitempty"`
}

// Encode captures tl.
func Encode(tl *timeline.Timeline, ppq int) *Document {
	doc := &Document{Version: Version, PPQ: ppq}
	for _, t := range tl.Tracks {
		td := TrackDoc{
			Name:       t.Name,
			Channel:    t.Channel,
			Controller: t.Controller,
			HighRes:    t.HighRes,
			Muted:      t.Muted,
		}
		for _, b := range t.Blocks() {
			bd := BlockDoc{
				ID:    uint64(b.ID()),
				Start: b.Start(),
				Title: b.Title(),
			}
			if b.IsInstance() {
				bd.Prototype = uint64(b.Prototype())
			} else {
				bd.Primary = b.Primary().Keys()
				bd.Secondary = b.Secondary().Keys()
			}
			td.Blocks = append(td.Blocks, bd)
		}
		doc.Tracks = append(doc.Tracks, td)
	}
	return doc
}

// Decode rebuilds a timeline in a fresh store. Instances are linked in a
// second pass so a prototype may appear after its instances or on another
// track.
func Decode(doc *Document) (*timeline.Timeline, error) {
	if doc.Version > Version {
		return nil, errors.Wrapf(ErrVersion, "version %d", doc.Version)
	}
	tl := timeline.New(nil)
	byID := make(map[uint64]*automation.Block)

	type link struct {
		block *automation.Block
		proto uint64
	}
	var links []link

	for ti, td := range doc.Tracks {
		track := timeline.NewTrack(td.Name, td.Channel, td.Controller)
		track.HighRes = td.HighRes
		track.Muted = td.Muted
		tl.AddTrack(track)

		for _, bd := range td.Blocks {
			b, err := tl.AddBlock(ti, bd.Start, bd.Title)
			if err != nil {
				return nil, errors.Wrapf(err, "track %q block %d", td.Name, bd.ID)
			}
			if _, dup := byID[bd.ID]; dup {
				return nil, errors.Errorf("duplicate block id %d", bd.ID)
			}
			byID[bd.ID] = b
			if bd.Prototype != 0 {
				links = append(links, link{b, bd.Prototype})
				continue
			}
			if err := b.Primary().SetKeys(bd.Primary); err != nil {
				return nil, errors.Wrapf(err, "block %d primary", bd.ID)
			}
			if err := b.Secondary().SetKeys(bd.Secondary); err != nil {
				return nil, errors.Wrapf(err, "block %d secondary", bd.ID)
			}
		}
	}

	for _, l := range links {
		proto, ok := byID[l.proto]
		if !ok {
			return nil, errors.Wrapf(automation.ErrUnknownBlock, "prototype %d", l.proto)
		}
		if err := l.block.SetInstanceOf(proto); err != nil {
			return nil, err
		}
	}
	return tl, nil
}

// Format selects the document encoding.
type Format int

const (
	JSON Format = iota
	YAML
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	}
	return JSON
}

// Marshal encodes doc.
func Marshal(doc *Document, f Format) ([]byte, error) {
	if f == YAML {
		return yaml.Marshal(doc)
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Unmarshal decodes data into a Document.
func Unmarshal(data []byte, f Format) (*Document, error) {
	doc := &Document{}
	var err error
	if f == YAML {
		err = yaml.Unmarshal(data, doc)
	} else {
		err = json.Unmarshal(data, doc)
	}
	if err != nil {
		return nil, errors.Wrap(err, "decode project")
	}
	return doc, nil
}
