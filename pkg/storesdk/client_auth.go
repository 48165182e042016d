package storesdk

import (
	"context"
)

// Login authenticates with email and password. On success the returned
// token pair is persisted and used for subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}

	var resp AuthResponse
	if err := c.post(ctx, "/users/login/", body, &resp); err != nil {
		return nil, err
	}

	if err := c.tokens.save(resp.Tokens); err != nil {
		c.log.Error("failed to persist tokens after login", "error", err)
	}
	return &resp, nil
}

// Register creates a new account and, like Login, persists the issued
// tokens. Password and confirmation are checked client-side first.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if req.Password != req.PasswordConfirm {
		return nil, newValidationError("password confirmation does not match")
	}

	var resp AuthResponse
	if err := c.post(ctx, "/users/register/", req, &resp); err != nil {
		return nil, err
	}

	if resp.Tokens.Access != "" {
		if err := c.tokens.save(resp.Tokens); err != nil {
			c.log.Error("failed to persist tokens after register", "error", err)
		}
	}
	return &resp, nil
}

// Logout revokes the refresh token server-side. Stored tokens are cleared
// even when the revoke call fails.
func (c *Client) Logout(ctx context.Context) error {
	pair, held := c.tokens.current()

	var err error
	if held && pair.Refresh != "" {
		err = c.post(ctx, "/users/logout/", map[string]string{"refresh": pair.Refresh}, nil)
	}

	if clearErr := c.tokens.clear(); clearErr != nil {
		c.log.Error("failed to clear stored tokens on logout", "error", clearErr)
	}
	return err
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "/users/profile/", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile updates the editable profile fields and returns the
// resulting profile.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	var user User
	if err := c.put(ctx, "/users/profile/", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
