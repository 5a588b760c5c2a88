package clinicapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/eyecare-clinic/console/pkg/common/models"
)

// Login authenticates against the API. When the answer carries a token, the
// token and profile are persisted in the session before Login returns.
func (c *Client) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	req := models.LoginRequest{Username: username, Password: password}
	if err := c.Do(ctx, http.MethodPost, "/auth/login", nil, req, &resp); err != nil {
		return nil, err
	}

	if resp.Token != "" {
		if err := c.session.Save(ctx, resp.Token, resp.User); err != nil {
			return nil, fmt.Errorf("saving session: %w", err)
		}
	}
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.MutationResponse, error) {
	var resp models.MutationResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/register", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout forgets the stored credential and profile. The API keeps no server
// side session, so nothing is sent.
func (c *Client) Logout(ctx context.Context) error {
	return c.session.Clear(ctx)
}

func (c *Client) CurrentUser() *models.User {
	return c.session.User()
}

func (c *Client) IsAuthenticated() bool {
	return c.session.Valid()
}
