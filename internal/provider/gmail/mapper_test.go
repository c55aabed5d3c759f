package gmail

import (
	"testing"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/lu-zhengda/mailroles/internal/domain"
)

func TestMapLabel(t *testing.T) {
	tests := []struct {
		name     string
		label    *gmailapi.Label
		wantOK   bool
		wantRole domain.Role
		wantKind domain.ContainerKind
	}{
		{
			name:     "inbox",
			label:    &gmailapi.Label{Id: "INBOX", Name: "INBOX", Type: "system"},
			wantOK:   true,
			wantRole: domain.RoleInbox,
			wantKind: domain.KindFolder,
		},
		{
			name:     "drafts",
			label:    &gmailapi.Label{Id: "DRAFT", Name: "DRAFT", Type: "system"},
			wantOK:   true,
			wantRole: domain.RoleDrafts,
			wantKind: domain.KindFolder,
		},
		{
			name:     "spam",
			label:    &gmailapi.Label{Id: "SPAM", Name: "SPAM", Type: "system"},
			wantOK:   true,
			wantRole: domain.RoleSpam,
			wantKind: domain.KindFolder,
		},
		{
			name:   "starred flag",
			label:  &gmailapi.Label{Id: "STARRED", Name: "STARRED", Type: "system"},
			wantOK: false,
		},
		{
			name:   "category",
			label:  &gmailapi.Label{Id: "CATEGORY_SOCIAL", Name: "CATEGORY_SOCIAL", Type: "system"},
			wantOK: false,
		},
		{
			name:     "user label",
			label:    &gmailapi.Label{Id: "Label_12", Name: "Work/Clients", Type: "user"},
			wantOK:   true,
			wantRole: domain.RoleNone,
			wantKind: domain.KindLabel,
		},
		{
			name:   "nil",
			label:  nil,
			wantOK: false,
		},
		{
			name:   "unnamed",
			label:  &gmailapi.Label{Id: "Label_1", Type: "user"},
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := mapLabel("acct-1", tt.label)
			if ok != tt.wantOK {
				t.Fatalf("mapLabel() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.AccountID != "acct-1" {
				t.Errorf("AccountID = %q, want %q", got.AccountID, "acct-1")
			}
			if got.Path != tt.label.Name {
				t.Errorf("Path = %q, want %q", got.Path, tt.label.Name)
			}
			if got.RemoteID != tt.label.Id {
				t.Errorf("RemoteID = %q, want %q", got.RemoteID, tt.label.Id)
			}
			if got.Role != tt.wantRole {
				t.Errorf("Role = %q, want %q", got.Role, tt.wantRole)
			}
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", got.Kind, tt.wantKind)
			}
		})
	}
}

func TestMapLabels_PreservesOrder(t *testing.T) {
	labels := []*gmailapi.Label{
		{Id: "Label_3", Name: "Receipts", Type: "user"},
		{Id: "UNREAD", Name: "UNREAD", Type: "system"},
		{Id: "INBOX", Name: "INBOX", Type: "system"},
		{Id: "TRASH", Name: "TRASH", Type: "system"},
	}

	got := mapLabels("acct-1", labels)

	want := []string{"Receipts", "INBOX", "TRASH"}
	if len(got) != len(want) {
		t.Fatalf("mapLabels() returned %d containers, want %d", len(got), len(want))
	}
	for i, c := range got {
		if c.Path != want[i] {
			t.Errorf("container[%d].Path = %q, want %q", i, c.Path, want[i])
		}
	}
}

func TestMapLabels_NoArchiveRole(t *testing.T) {
	labels := []*gmailapi.Label{
		{Id: "INBOX", Name: "INBOX", Type: "system"},
		{Id: "SENT", Name: "SENT", Type: "system"},
		{Id: "DRAFT", Name: "DRAFT", Type: "system"},
		{Id: "SPAM", Name: "SPAM", Type: "system"},
		{Id: "TRASH", Name: "TRASH", Type: "system"},
		{Id: "Label_1", Name: "Archive", Type: "user"},
	}

	for _, c := range mapLabels("acct-1", labels) {
		if c.Role == domain.RoleArchive {
			t.Errorf("container %q mapped to archive", c.Path)
		}
	}
}
