package models

// ContactMessage is a single contact form submission. It is never persisted.
type ContactMessage struct {
	Name    string `json:"name" validate:"nonblank"`
	Email   string `json:"email" validate:"nonblank,basicemail"`
	Message string `json:"message" validate:"nonblank"`
}
