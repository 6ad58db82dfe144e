package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the encoding of a registry document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFromPath picks YAML for .yaml/.yml names and JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// document is the on-disk registry layout:
//
//	{"payload": [{"LicenceUserName": "alice", "ValidationTime": 5}]}
type document struct {
	Payload *[]record `json:"payload" yaml:"payload"`
}

type record struct {
	LicenceUserName string `json:"LicenceUserName" yaml:"LicenceUserName"`
	LicenceKey      string `json:"LicenceKey,omitempty" yaml:"LicenceKey,omitempty"`
	ValidationTime  *int64 `json:"ValidationTime" yaml:"ValidationTime"`
}

var errNoPayload = errors.New("missing payload")

// Decode parses a registry document.
func Decode(data []byte, format Format) (*Registry, error) {
	var doc document

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid licenses file format: %w", err)
	}
	if doc.Payload == nil {
		return nil, errNoPayload
	}

	entries := make([]Entry, 0, len(*doc.Payload))
	for i, r := range *doc.Payload {
		if r.ValidationTime == nil {
			return nil, fmt.Errorf("entry %d (%s): missing ValidationTime", i, r.LicenceUserName)
		}
		d, err := DurationFromSeconds(*r.ValidationTime)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, r.LicenceUserName, err)
		}
		entries = append(entries, Entry{
			UserID:        r.LicenceUserName,
			Key:           r.LicenceKey,
			LeaseDuration: d,
		})
	}
	return New(entries)
}
