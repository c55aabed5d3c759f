package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lu-zhengda/mailroles/internal/domain"
	"github.com/lu-zhengda/mailroles/internal/rolemap"
	"github.com/lu-zhengda/mailroles/internal/store"
)

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	return fprintJSON(os.Stdout, v)
}

func fprintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Account JSON types (account list)
// ---------------------------------------------------------------------------

type jsonAccount struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Provider    string `json:"provider"`
	DisplayName string `json:"display_name,omitempty"`
	Server      string `json:"server,omitempty"`
	Containers  int    `json:"containers"`
	LastSync    string `json:"last_sync,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// toJSONAccounts pairs each account with its sync state. Accounts missing
// from states are reported as never synced.
func toJSONAccounts(accounts []domain.Account, states map[string]store.SyncState) []jsonAccount {
	out := make([]jsonAccount, 0, len(accounts))
	for _, a := range accounts {
		ja := jsonAccount{
			ID:          a.ID,
			Email:       a.Email,
			Provider:    string(a.Provider),
			DisplayName: a.DisplayName,
			Server:      a.Server,
			CreatedAt:   a.CreatedAt.Format(time.DateOnly),
		}
		if state, ok := states[a.ID]; ok {
			ja.Containers = state.Containers
			if state.LastSync != 0 {
				ja.LastSync = time.Unix(state.LastSync, 0).UTC().Format(time.RFC3339)
			}
		}
		out = append(out, ja)
	}
	return out
}

// ---------------------------------------------------------------------------
// Container JSON type (roles candidates)
// ---------------------------------------------------------------------------

type jsonContainer struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
	Role string `json:"role,omitempty"`
}

func toJSONContainer(c domain.Container) jsonContainer {
	return jsonContainer{Path: c.Path, Kind: string(c.Kind), Role: string(c.Role)}
}

func toJSONContainers(containers []domain.Container) []jsonContainer {
	out := make([]jsonContainer, 0, len(containers))
	for _, c := range containers {
		out = append(out, toJSONContainer(c))
	}
	return out
}

// ---------------------------------------------------------------------------
// Role JSON types (roles show)
// ---------------------------------------------------------------------------

type jsonAccountRoles struct {
	AccountID string     `json:"account_id"`
	Synced    bool       `json:"synced"`
	Roles     []jsonRole `json:"roles"`
}

type jsonRole struct {
	Role        string         `json:"role"`
	Current     *jsonContainer `json:"current,omitempty"`
	AllowLabels bool           `json:"allow_labels"`
	Candidates  int            `json:"candidates"`
}

func toJSONAccountRoles(sections []rolemap.AccountSection) []jsonAccountRoles {
	out := make([]jsonAccountRoles, 0, len(sections))
	for _, s := range sections {
		roles := make([]jsonRole, 0, len(s.Roles))
		for _, rs := range s.Roles {
			r := jsonRole{
				Role:        string(rs.Role),
				AllowLabels: rs.AllowLabels,
				Candidates:  len(rs.Candidates),
			}
			if rs.Current != nil {
				c := toJSONContainer(*rs.Current)
				r.Current = &c
			}
			roles = append(roles, r)
		}
		out = append(out, jsonAccountRoles{
			AccountID: s.Account.ID,
			Synced:    len(s.Roles) > 0,
			Roles:     roles,
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Sync, task and setting JSON types
// ---------------------------------------------------------------------------

type jsonSyncResult struct {
	AccountID  string `json:"account_id"`
	Containers int    `json:"containers"`
}

type jsonRunResult struct {
	Processed int `json:"processed"`
}

type jsonSetting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ---------------------------------------------------------------------------
// Action JSON type (account add/remove, roles set)
// ---------------------------------------------------------------------------

type jsonAction struct {
	OK        bool   `json:"ok"`
	Action    string `json:"action"`
	Email     string `json:"email,omitempty"`
	AccountID string `json:"account_id,omitempty"`
}
