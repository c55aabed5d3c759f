package gmail

import (
	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/lu-zhengda/mailroles/internal/domain"
)

// systemRoles maps the Gmail system labels that behave like folders to
// their roles. Other system labels (UNREAD, STARRED, CATEGORY_*) are flags
// and never hold a role.
var systemRoles = map[string]domain.Role{
	"INBOX": domain.RoleInbox,
	"SENT":  domain.RoleSent,
	"DRAFT": domain.RoleDrafts,
	"SPAM":  domain.RoleSpam,
	"TRASH": domain.RoleTrash,
}

// mapLabels converts Gmail labels into containers, preserving API order.
func mapLabels(accountID string, labels []*gmailapi.Label) []domain.Container {
	containers := make([]domain.Container, 0, len(labels))
	for _, l := range labels {
		c, ok := mapLabel(accountID, l)
		if !ok {
			continue
		}
		containers = append(containers, c)
	}
	return containers
}

// mapLabel converts a single label. It reports false for labels that cannot
// hold mail on their own.
func mapLabel(accountID string, l *gmailapi.Label) (domain.Container, bool) {
	if l == nil || l.Name == "" {
		return domain.Container{}, false
	}
	if l.Type == "system" {
		role, ok := systemRoles[l.Id]
		if !ok {
			return domain.Container{}, false
		}
		return domain.Container{
			AccountID: accountID,
			Path:      l.Name,
			Role:      role,
			Kind:      domain.KindFolder,
			RemoteID:  l.Id,
		}, true
	}
	return domain.Container{
		AccountID: accountID,
		Path:      l.Name,
		Kind:      domain.KindLabel,
		RemoteID:  l.Id,
	}, true
}
