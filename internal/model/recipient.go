// internal/model/recipient.go
package model

// Recipient is one normalized row from an uploaded recipient list.
// Email is caller-supplied and only checked for presence, never for
// RFC-5322 validity. Duplicates are allowed and each is sent independently.
type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
