package provider

import (
	"context"

	"github.com/lu-zhengda/mailroles/internal/domain"
)

// ContainerProvider lists the folders and labels of one remote account.
// Roles on returned containers are the provider's own hints; they may be
// empty.
type ContainerProvider interface {
	Authenticate(ctx context.Context) error
	ListContainers(ctx context.Context) ([]domain.Container, error)
}
