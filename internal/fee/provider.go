package fee

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// SettingsProvider returns the persisted fee settings blob. An empty blob with
// a nil error means nothing was persisted.
type SettingsProvider interface {
	LoadSettings(ctx context.Context) ([]byte, error)
}

// FileSettings keeps the settings blob in a single JSON file.
type FileSettings struct {
	Path string
}

func NewFileSettings(path string) *FileSettings {
	return &FileSettings{Path: path}
}

func (f *FileSettings) LoadSettings(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fee settings: %w", err)
	}
	return data, nil
}

// Save persists settings, replacing the previous blob.
func (f *FileSettings) Save(s Settings) error {
	data, err := MarshalSettings(s)
	if err != nil {
		return fmt.Errorf("failed to encode fee settings: %w", err)
	}
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write fee settings: %w", err)
	}
	return os.Rename(tmp, f.Path)
}

// StaticSettings serves a fixed blob.
type StaticSettings []byte

func (s StaticSettings) LoadSettings(context.Context) ([]byte, error) {
	return s, nil
}
