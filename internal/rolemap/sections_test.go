package rolemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lu-zhengda/mailroles/internal/domain"
)

var (
	imapAccount  = domain.Account{ID: "a1", Email: "me@example.com", Provider: domain.ProviderIMAP}
	gmailAccount = domain.Account{ID: "g1", Email: "me@gmail.com", Provider: domain.ProviderGmail}
	protonAcct   = domain.Account{ID: "p1", Email: "me@proton.me", Provider: domain.ProviderProton}
)

func TestSectionVisible_HiddenBeforeSync(t *testing.T) {
	s := Derive([]domain.Container{
		folder("other", "Inbox", domain.RoleInbox),
	})

	for _, role := range domain.SelectableRoles {
		assert.False(t, s.SectionVisible(imapAccount, role), "role %s", role)
	}
	_, ok := s.Assignments[imapAccount.ID]
	assert.False(t, ok)

	sections := s.Sections([]domain.Account{imapAccount})
	require.Len(t, sections, 1)
	assert.Empty(t, sections[0].Roles)
}

func TestSectionVisible_HiddenWithOnlyUnassignedContainers(t *testing.T) {
	s := Derive([]domain.Container{
		folder("a1", "Notes", domain.RoleNone),
	})

	for _, role := range domain.SelectableRoles {
		assert.False(t, s.SectionVisible(imapAccount, role), "role %s", role)
	}
}

func TestSectionVisible_ArchiveHiddenForGmail(t *testing.T) {
	tests := []struct {
		name       string
		containers []domain.Container
	}{
		{
			name: "archive unassigned",
			containers: []domain.Container{
				folder("g1", "INBOX", domain.RoleInbox),
			},
		},
		{
			name: "archive assigned",
			containers: []domain.Container{
				folder("g1", "INBOX", domain.RoleInbox),
				label("g1", "Archive", domain.RoleArchive),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Derive(tt.containers)
			assert.False(t, s.SectionVisible(gmailAccount, domain.RoleArchive))
			assert.True(t, s.SectionVisible(gmailAccount, domain.RoleInbox))

			for _, section := range s.Sections([]domain.Account{gmailAccount}) {
				for _, rs := range section.Roles {
					assert.NotEqual(t, domain.RoleArchive, rs.Role)
				}
			}
		})
	}
}

func TestSectionVisible_ArchiveShownForProton(t *testing.T) {
	s := Derive([]domain.Container{
		folder("p1", "Inbox", domain.RoleInbox),
	})
	assert.True(t, s.SectionVisible(protonAcct, domain.RoleArchive))
}

func TestCandidates_LabelFiltering(t *testing.T) {
	containers := []domain.Container{
		folder("g1", "INBOX", domain.RoleInbox),
		folder("g1", "TRASH", domain.RoleTrash),
		label("g1", "Receipts", domain.RoleNone),
		label("g1", "Work/Clients", domain.RoleNone),
		folder("a1", "Inbox", domain.RoleInbox),
		label("a1", "Tagged", domain.RoleNone),
		folder("a1", "Junk", domain.RoleNone),
	}
	s := Derive(containers)

	tests := []struct {
		name      string
		account   domain.Account
		role      domain.Role
		want      []string
		allowLbls bool
	}{
		{"gmail trash", gmailAccount, domain.RoleTrash, []string{"INBOX", "TRASH"}, false},
		{"gmail spam", gmailAccount, domain.RoleSpam, []string{"INBOX", "TRASH"}, false},
		{"gmail sent", gmailAccount, domain.RoleSent, []string{"INBOX", "TRASH", "Receipts", "Work/Clients"}, true},
		{"imap sent", imapAccount, domain.RoleSent, []string{"Inbox", "Junk"}, false},
		{"imap trash", imapAccount, domain.RoleTrash, []string{"Inbox", "Junk"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Candidates(tt.account, tt.role)
			var paths []string
			for _, c := range got {
				paths = append(paths, c.Path)
				if !tt.allowLbls {
					assert.True(t, c.IsFolder(), "label %s offered", c.Path)
				}
			}
			assert.Equal(t, tt.want, paths)
			assert.Equal(t, tt.allowLbls, AllowLabels(tt.account, tt.role))
		})
	}
}

func TestCandidates_DoesNotAliasSnapshot(t *testing.T) {
	s := Derive([]domain.Container{
		folder("g1", "INBOX", domain.RoleInbox),
		label("g1", "Receipts", domain.RoleNone),
	})

	got := s.Candidates(gmailAccount, domain.RoleSent)
	got[0].Path = "changed"

	assert.Equal(t, "INBOX", s.All["g1"][0].Path)
}

func TestSections_IMAPScenario(t *testing.T) {
	containers := []domain.Container{
		folder("a1", "Inbox", domain.RoleInbox),
		folder("a1", "Sent Items", domain.RoleSent),
	}

	s := Derive(containers)

	assert.Len(t, s.All["a1"], 2)
	require.Len(t, s.Assignments["a1"], 2)
	assert.Equal(t, "Inbox", s.Assignments["a1"][domain.RoleInbox].Path)
	assert.Equal(t, "Sent Items", s.Assignments["a1"][domain.RoleSent].Path)

	sections := s.Sections([]domain.Account{imapAccount})
	require.Len(t, sections, 1)
	roles := sections[0].Roles
	require.Len(t, roles, len(domain.SelectableRoles))

	for i, rs := range roles {
		assert.Equal(t, domain.SelectableRoles[i], rs.Role)
		assert.False(t, rs.AllowLabels)
		assert.Len(t, rs.Candidates, 2)
		switch rs.Role {
		case domain.RoleInbox:
			require.NotNil(t, rs.Current)
			assert.Equal(t, "Inbox", rs.Current.Path)
		case domain.RoleSent:
			require.NotNil(t, rs.Current)
			assert.Equal(t, "Sent Items", rs.Current.Path)
		default:
			assert.Nil(t, rs.Current, "role %s should be unassigned", rs.Role)
		}
	}
}

func TestSections_AccountOrder(t *testing.T) {
	s := Derive([]domain.Container{
		folder("a1", "Inbox", domain.RoleInbox),
		folder("g1", "INBOX", domain.RoleInbox),
	})

	sections := s.Sections([]domain.Account{gmailAccount, imapAccount, protonAcct})

	require.Len(t, sections, 3)
	assert.Equal(t, "g1", sections[0].Account.ID)
	assert.Len(t, sections[0].Roles, len(domain.SelectableRoles)-1)
	assert.Equal(t, "a1", sections[1].Account.ID)
	assert.Len(t, sections[1].Roles, len(domain.SelectableRoles))
	assert.Equal(t, "p1", sections[2].Account.ID)
	assert.Empty(t, sections[2].Roles)
}
