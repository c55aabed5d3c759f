package gmail

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
)

// Listing labels is all mailroles does with a Gmail account, so it asks for
// the narrowest scopes that allow it. Credentials come from the [gmail]
// section of the config file or GMAIL_CLIENT_ID / GMAIL_CLIENT_SECRET.
var scopes = []string{
	gmailapi.GmailLabelsScope,
	gmailapi.GmailMetadataScope,
}

var clientID, clientSecret string

// SetCredentials sets the OAuth client ID and secret.
func SetCredentials(id, secret string) {
	clientID, clientSecret = id, secret
}

// HasCredentials reports whether OAuth credentials have been configured.
func HasCredentials() bool {
	return clientID != "" && clientSecret != ""
}

// EnsureCredentials returns an error with setup instructions when no OAuth
// credentials have been configured.
func EnsureCredentials() error {
	if HasCredentials() {
		return nil
	}
	return fmt.Errorf("gmail OAuth credentials not configured; set them in ~/.config/mailroles/config.toml under [gmail] or via GMAIL_CLIENT_ID / GMAIL_CLIENT_SECRET env vars")
}

func oauthConfig(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
	}
}

type callbackResult struct {
	code string
	err  error
}

// authorize runs the loopback OAuth flow and returns the granted token.
func authorize(ctx context.Context) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	cfg := oauthConfig(fmt.Sprintf("http://127.0.0.1:%d", port))
	state := uuid.NewString()

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res callbackResult
		switch {
		case q.Get("state") != state:
			res.err = fmt.Errorf("oauth callback state mismatch")
		case q.Get("code") == "":
			res.err = fmt.Errorf("no code in callback: %s", q.Get("error"))
		default:
			res.code = q.Get("code")
		}
		if res.err != nil {
			fmt.Fprint(w, "Authorization failed. You can close this tab.")
		} else {
			fmt.Fprint(w, "mailroles is authorized. You can close this tab.")
		}
		select {
		case results <- res:
		default:
		}
	})

	server := &http.Server{Handler: mux}
	go server.Serve(listener)
	defer server.Shutdown(context.Background())

	url := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Printf("\nOpen this URL in your browser to let mailroles read your labels:\n\n  %s\n\nWaiting for authorization...\n", url)

	select {
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		token, err := cfg.Exchange(ctx, res.code)
		if err != nil {
			return nil, fmt.Errorf("failed to exchange auth code: %w", err)
		}
		return token, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
