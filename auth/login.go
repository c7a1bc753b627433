package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/user/deepfocus-cli/config"
)

const callbackPath = "/callback"

// Scopes requested at sign-in: identity, per-file Drive access and read-only YouTube.
var Scopes = []string{
	goauth2.OpenIDScope,
	goauth2.UserinfoEmailScope,
	drive.DriveFileScope,
	youtube.YoutubeReadonlyScope,
}

var ErrMissingClient = errors.New("auth: google.client_id and google.client_secret are required")

// OAuthConfig builds the Google OAuth2 client for cfg. RedirectURL is set by Flow.
func OAuthConfig(cfg config.GoogleConfig) (*oauth2.Config, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrMissingClient
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       Scopes,
	}, nil
}

// Flow runs the installed-app loopback sign-in: a one-shot HTTP listener on 127.0.0.1
// receives the authorization code, which is exchanged with PKCE.
type Flow struct {
	Config *oauth2.Config
	// Open shows the consent page to the user, usually in a browser.
	Open   func(url string) error
	Logger zerolog.Logger
	// UserInfoOptions are passed to the userinfo client.
	UserInfoOptions []option.ClientOption
}

type callbackResult struct {
	code string
	err  error
}

// Run completes sign-in and returns credentials ready for SaveCredentials.
func (f *Flow) Run(ctx context.Context) (*Credentials, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen for callback: %w", err)
	}
	defer ln.Close()

	cfg := *f.Config
	cfg.RedirectURL = fmt.Sprintf("http://%s%s", ln.Addr().String(), callbackPath)

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	results := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		res := readCallback(r, state)
		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Signed in to DeepFocus. You can close this tab.")
		}
		select {
		case results <- res:
		default:
		}
	})
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go srv.Serve(ln)
	defer srv.Close()

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))
	f.Logger.Debug().Str("redirect", cfg.RedirectURL).Msg("waiting for oauth callback")
	if f.Open != nil {
		if err := f.Open(authURL); err != nil {
			f.Logger.Warn().Err(err).Msg("could not open browser")
		}
	}

	var res callbackResult
	select {
	case res = <-results:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.err != nil {
		return nil, res.err
	}

	tok, err := cfg.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	opts := append([]option.ClientOption{option.WithTokenSource(cfg.TokenSource(ctx, tok))}, f.UserInfoOptions...)
	svc, err := goauth2.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create userinfo client: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}

	f.Logger.Info().Str("email", info.Email).Msg("signed in")
	return &Credentials{Token: tok, UserID: info.Id, Email: info.Email}, nil
}

func readCallback(r *http.Request, state string) callbackResult {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		return callbackResult{err: fmt.Errorf("auth: sign-in refused: %s", e)}
	}
	if q.Get("state") != state {
		return callbackResult{err: errors.New("auth: state mismatch")}
	}
	code := q.Get("code")
	if code == "" {
		return callbackResult{err: errors.New("auth: callback without code")}
	}
	return callbackResult{code: code}
}
