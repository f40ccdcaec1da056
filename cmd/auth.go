package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/syncx/internal/server"
	"github.com/desertthunder/syncx/internal/services"
	"github.com/desertthunder/syncx/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const authTimeout = 2 * time.Minute

// AuthSpotify runs the authorization code flow for Spotify and saves the refresh token.
func (r *Runner) AuthSpotify(ctx context.Context, cmd *cli.Command) error {
	creds := &r.config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_id and client_secret must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}

	token, err := r.doOAuth(ctx, services.SpotifyOAuthConfig(*creds), "Spotify", cmd.Duration("timeout"), !cmd.Bool("no-browser"))
	if err != nil {
		return err
	}
	if err := creds.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}
	return r.saveTokens("spotify")
}

// AuthYouTube runs the authorization code flow for the YouTube Data API and saves the refresh token.
func (r *Runner) AuthYouTube(ctx context.Context, cmd *cli.Command) error {
	creds := &r.config.Credentials.YouTube
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("%w: youtube client_id and client_secret must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}

	token, err := r.doOAuth(ctx, services.YouTubeOAuthConfig(*creds), "YouTube", cmd.Duration("timeout"), !cmd.Bool("no-browser"))
	if err != nil {
		return err
	}
	if err := creds.Update(token); err != nil {
		return fmt.Errorf("failed to update youtube configuration: %w", err)
	}
	return r.saveTokens("youtube")
}

func (r *Runner) doOAuth(ctx context.Context, config *oauth2.Config, service string, timeout time.Duration, openBrowser bool) (*oauth2.Token, error) {
	if timeout <= 0 {
		timeout = authTimeout
	}
	addr, err := server.CallbackAddr(config.RedirectURL)
	if err != nil {
		return nil, err
	}

	handler := server.NewOAuthHandler(config, shared.GenerateID())
	srv := server.NewCallbackServer(handler, r.logger, server.Logging(r.logger))
	if err := srv.Start(addr); err != nil {
		return nil, err
	}

	authURL := handler.AuthURL()
	if openBrowser {
		r.writePlain("→ Opening browser for %s authorization...\n", service)
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warn("could not open browser", "error", err)
		}
	}
	r.writePlain("→ If the browser did not open, visit:\n%s\n\n", authURL)
	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	token, err := srv.Wait(ctx, timeout)
	if err != nil {
		return nil, err
	}
	if token.RefreshToken == "" {
		r.logger.Warn("no refresh token in the response, keeping the stored one", "service", service)
	}
	return token, nil
}

func (r *Runner) saveTokens(service string) error {
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ %s refresh token saved to %s\n", service, r.configPath)
	return nil
}

// ConfigInit writes the example config to --config.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", r.configPath)
	return r.writePlain("✓ Created %s\n", r.configPath)
}

// ConfigShow prints the effective configuration with secrets masked.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	c := *r.config
	for _, secret := range []*string{
		&c.Credentials.Spotify.ClientSecret,
		&c.Credentials.Spotify.RefreshToken,
		&c.Credentials.YouTube.ClientSecret,
		&c.Credentials.YouTube.RefreshToken,
		&c.Credentials.YouTube.APIKey,
	} {
		if *secret != "" {
			*secret = "********"
		}
	}
	return r.writeJSON(c, true)
}
