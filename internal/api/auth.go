package api

import (
	"context"
	"fmt"
	"net/http"

	applog "fintrack/internal/log"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
}

// Login exchanges credentials for a bearer token and stores it in the session.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp loginResponse
	if err := c.Do(ctx, http.MethodPost, "login", nil, loginRequest{Email: email, Password: password}, &resp); err != nil {
		return err
	}
	token := resp.Token
	if token == "" {
		token = resp.AccessToken
	}
	if token == "" {
		return ErrUnauthenticated
	}
	if err := c.session.Set(ctx, token, email); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	c.logger.InfoContext(ctx, "Logged in", applog.FieldOperation, applog.OpLogin)
	return nil
}

// Logout revokes the token server side. The local session is cleared whatever
// the server answers; the server error, if any, is returned.
func (c *Client) Logout(ctx context.Context) error {
	var serverErr error
	if c.session.Token() != "" {
		serverErr = c.Do(ctx, http.MethodPost, "logout", nil, nil, nil)
		if serverErr != nil {
			c.logger.WarnContext(ctx, "Logout request failed, clearing session anyway",
				applog.FieldOperation, applog.OpLogout, applog.FieldError, serverErr.Error())
		}
	}
	if err := c.session.Clear(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return serverErr
}
