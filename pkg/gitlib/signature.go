package gitlib

import "time"

// Signature represents a git author signature.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}
