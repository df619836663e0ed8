package entities

// NotFoundAnswer is the user-visible answer for every failed lookup.
// Missing data and store failures look the same to the caller.
const NotFoundAnswer = "not found, please check for typos"

// ResultEntry is a single question/answer pair returned for a query.
type ResultEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// NotFound returns the placeholder entry keyed on the given text.
func NotFound(question string) ResultEntry {
	return ResultEntry{Question: question, Answer: NotFoundAnswer}
}

// FromRecord converts a record into a result entry.
func FromRecord(r QuestionRecord) ResultEntry {
	return ResultEntry{Question: r.Question, Answer: r.DisplayAnswer()}
}

// IsNotFound reports whether the entry is the not-found placeholder.
func (e ResultEntry) IsNotFound() bool {
	return e.Answer == NotFoundAnswer
}
