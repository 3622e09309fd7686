package core

import (
	"strings"

	"github.com/google/uuid"
)

// NewResourceID returns a unique id for a GPU resource handle, prefixed with
// the resource kind so logs stay readable.
func NewResourceID(kind string) string {
	return kind + ":" + uuid.NewString()
}

// ResourceKind returns the kind prefix of an id created by NewResourceID.
func ResourceKind(id string) string {
	kind, _, found := strings.Cut(id, ":")
	if !found {
		return ""
	}
	return kind
}
