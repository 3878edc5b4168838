package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// JSONFile is a JSON document on disk, such as the sensitivity configuration the model
// backend reads at run time.
type JSONFile struct {
	path string
}

// NewJSONFile returns a JSONFile at path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Path returns the file location.
func (f *JSONFile) Path() string {
	return f.path
}

// Load reads and decodes the file.
func (f *JSONFile) Load() (any, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.path, err)
	}
	return v, nil
}

// Save writes v indented by four spaces. The file is replaced through a temporary file
// in the same directory; readers see either the old or the new document.
func (f *JSONFile) Save(v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", f.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", f.path, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", f.path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.path, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.path, err)
	}
	return nil
}
