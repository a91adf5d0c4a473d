package types

import (
	"regexp"

	"github.com/rotisserie/eris"
)

var regexAlphanumeric = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// Namespace is a unique identifier for a world. It prefixes every snapshot
// key in storage and tags every log line, so two worlds sharing a redis
// instance never read each other's state.
type Namespace string

func (n Namespace) String() string {
	return string(n)
}

// Validate validates that the namespace is alphanumeric or - (hyphen).
func (n Namespace) Validate() error {
	if !regexAlphanumeric.MatchString(n.String()) {
		return eris.Errorf("invalid namespace %q, must be alphanumeric or hyphen", n)
	}
	return nil
}
