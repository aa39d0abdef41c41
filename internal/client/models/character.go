package models

// Character is an entry of the public character list shown by the
// portfolio screen.
type Character struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Species string `json:"species"`
	Gender  string `json:"gender"`
	Image   string `json:"image"`
}
