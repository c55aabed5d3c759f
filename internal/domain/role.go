package domain

// Role is a semantic mailbox purpose. The zero value means no role.
type Role string

const (
	RoleNone    Role = ""
	RoleInbox   Role = "inbox"
	RoleSent    Role = "sent"
	RoleDrafts  Role = "drafts"
	RoleSpam    Role = "spam"
	RoleArchive Role = "archive"
	RoleTrash   Role = "trash"
)

// SelectableRoles lists the roles a user can assign, in display order.
var SelectableRoles = []Role{
	RoleInbox,
	RoleSent,
	RoleDrafts,
	RoleSpam,
	RoleArchive,
	RoleTrash,
}

var roleNames = map[Role]string{
	RoleInbox:   "Inbox",
	RoleSent:    "Sent Mail",
	RoleDrafts:  "Drafts",
	RoleSpam:    "Spam",
	RoleArchive: "Archive",
	RoleTrash:   "Trash",
}

// Valid reports whether r is one of SelectableRoles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// RequiresFolder reports whether the role must be held by a folder even on
// providers that support labels.
func (r Role) RequiresFolder() bool {
	return r == RoleTrash || r == RoleSpam
}

// DisplayName returns the human-friendly name of the role.
func (r Role) DisplayName() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return string(r)
}

// ParseRole returns the selectable role named by s.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	if !r.Valid() {
		return RoleNone, false
	}
	return r, true
}
