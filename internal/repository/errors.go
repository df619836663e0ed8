package repository

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrAccess      = errors.New("table not accessible")
	ErrDataCorrupt = errors.New("master table schema mismatch")
)

// classifyOpenErr maps an error from opening a table onto the repository errors.
func classifyOpenErr(name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("open %s: %w", name, ErrNotFound)
	}
	return fmt.Errorf("open %s: %w: %w", name, ErrAccess, err)
}
