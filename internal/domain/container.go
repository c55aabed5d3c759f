package domain

import "strings"

type ContainerKind string

const (
	KindFolder ContainerKind = "folder"
	KindLabel  ContainerKind = "label"
)

// PathDelimiter separates the segments of a container path.
const PathDelimiter = "/"

// Container is a folder or label belonging to one account. It is identified
// by (AccountID, Path).
type Container struct {
	AccountID string
	Path      string
	Role      Role
	Kind      ContainerKind
	// RemoteID is the provider's identifier, e.g. a Gmail label ID.
	RemoteID string
}

// Name returns the last segment of the container path.
func (c Container) Name() string {
	if i := strings.LastIndex(c.Path, PathDelimiter); i >= 0 {
		return c.Path[i+1:]
	}
	return c.Path
}

func (c Container) IsFolder() bool {
	return c.Kind == KindFolder
}
