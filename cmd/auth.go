package main

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/desertthunder/taskcal/internal/server"
	"github.com/desertthunder/taskcal/internal/services"
	"github.com/desertthunder/taskcal/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthGoogle performs the OAuth2 authorization code flow for Google Calendar.
//
// Starts a local HTTP server, opens browser for user authorization, and saves the token to google.token_file.
func (r *Runner) AuthGoogle(ctx context.Context, cmd *cli.Command) error {
	oauthConfig, err := services.LoadOAuthConfig(r.config.Google.CredentialsFile, r.config.Google.RedirectURI)
	if err != nil {
		return err
	}

	token, err := r.doOAuth(ctx, oauthConfig)
	if err != nil {
		return err
	}

	if err := services.SaveToken(r.config.Google.TokenFile, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	r.logger.Info("google calendar authorized", "token_file", r.config.Google.TokenFile)
	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Token saved to %s\n\n", r.config.Google.TokenFile)
	r.writePlain("You can now use: taskcal sync run\n")
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, oauthConfig *oauth2.Config) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	oauthHandler := server.NewOAuthHandler(oauthConfig, state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	serverAddr := r.config.Server.Addr()
	if u, err := url.Parse(oauthConfig.RedirectURL); err == nil && u.Port() != "" {
		serverAddr = net.JoinHostPort(u.Hostname(), u.Port())
	}

	ln, err := net.Listen("tcp", serverAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server on %s: %w", serverAddr, err)
	}

	serverCtx, stopServer := context.WithCancel(ctx)
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.NewServer(serverAddr, router, r.logger).Serve(serverCtx, ln)
	}()
	defer func() {
		stopServer()
		if err := <-serverErrors; err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	authURL := oauthHandler.AuthCodeURL()
	r.writePlain("→ Opening browser for Google Calendar authorization...\n")
	if err := r.openBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", r.authTimeout)

	waitCtx, cancel := context.WithTimeout(ctx, r.authTimeout)
	defer cancel()

	var result server.OAuthResult
	select {
	case result = <-oauthHandler.Result():
	case <-waitCtx.Done():
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, r.authTimeout)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}
