package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const fileHeader = "# beantag configuration\n# Every key can be overridden with a BEANTAG_<KEY> environment variable.\n\n"

// ErrExists is returned by WriteFile when the target already exists.
var ErrExists = errors.New("config: file already exists")

// Marshal renders cfg as YAML with the file header.
func Marshal(cfg Config) ([]byte, error) {
	body, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return append([]byte(fileHeader), body...), nil
}

// WriteFile writes cfg to path. It never overwrites an existing file.
func WriteFile(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrExists, path)
	}
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write config: %w", err)
	}
	return f.Close()
}
