package entities

// Intent is the resolution path chosen for a raw query.
type Intent string

const (
	IntentCollection Intent = "collection" // URL carrying a collection id
	IntentNumeric    Intent = "numeric"    // bare question number
	IntentText       Intent = "text"       // free-text phrase
)

// Query is a classified user query.
type Query struct {
	Raw          string // text as typed by the user
	Intent       Intent
	CollectionID string // candidate id extracted from a collection URL, unvalidated
}

// Collection identifiers are admissible in this closed range.
const (
	MinCollectionID = 1
	MaxCollectionID = 184
)
