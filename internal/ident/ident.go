package ident

import (
	"github.com/google/uuid"
)

// New returns a prefixed random identifier, e.g. "sale-3f1c...".
func New(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
