package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// FileSource reads a registry document from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Load(_ context.Context) (*Registry, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("licenses file not found: %w", err)
		}
		return nil, err
	}
	return Decode(data, FormatFromPath(s.Path))
}
