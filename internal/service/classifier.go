package service

import (
	"strings"

	"github.com/aliskhannn/lwopan/internal/domain/entities"
)

// DefaultOriginPrefix is the site whose collection URLs are recognised.
const DefaultOriginPrefix = "https://happyread.kh.edu.tw/"

const idParam = "id="

// Classifier decides which resolution path applies to a raw query.
type Classifier struct {
	originPrefix string
}

// NewClassifier creates a Classifier recognising collection URLs under originPrefix.
func NewClassifier(originPrefix string) *Classifier {
	if originPrefix == "" {
		originPrefix = DefaultOriginPrefix
	}
	return &Classifier{originPrefix: originPrefix}
}

// Classify returns the intent of q. Collection URLs are checked before bare
// numbers since a URL may itself contain digits.
func (c *Classifier) Classify(q string) entities.Query {
	if strings.HasPrefix(q, c.originPrefix) {
		if _, after, ok := strings.Cut(q, idParam); ok {
			candidate, _, _ := strings.Cut(after, "&")
			return entities.Query{
				Raw:          q,
				Intent:       entities.IntentCollection,
				CollectionID: candidate,
			}
		}
	}

	if isDigits(q) {
		return entities.Query{Raw: q, Intent: entities.IntentNumeric}
	}

	return entities.Query{Raw: q, Intent: entities.IntentText}
}

// isDigits reports whether s is non-empty and made of ASCII digits only.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
