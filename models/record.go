package models

// Record is one input line: a question's text entries and its tags.
type Record struct {
	Texts []string `json:"texts"`
	Tags  []string `json:"tags"`
}
