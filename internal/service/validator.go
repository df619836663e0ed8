package service

import (
	"strconv"

	"github.com/aliskhannn/lwopan/internal/domain/entities"
)

// ParseCollectionID parses raw as a base-10 collection identifier.
// It reports false for anything that does not parse or lies outside the
// admissible range.
func ParseCollectionID(raw string) (int, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}

	if id < entities.MinCollectionID || id > entities.MaxCollectionID {
		return 0, false
	}

	return id, true
}

// IsValidCollectionID reports whether raw names an admissible collection.
func IsValidCollectionID(raw string) bool {
	_, ok := ParseCollectionID(raw)
	return ok
}
