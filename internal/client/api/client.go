// Package api is a thin REST client for the authguard server. It keeps the
// current token pair in memory and attaches the access token to
// authenticated calls.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrUnavailable means the server could not be reached at all.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized means the credentials or token were rejected.
	ErrUnauthorized = errors.New("unauthorized")
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Status    string `json:"status"`
}

type Client struct {
	baseURL string
	http    *http.Client

	accessToken  string
	refreshToken string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// IsLoggedIn reports whether the client holds an access token.
func (c *Client) IsLoggedIn() bool {
	return c.accessToken != ""
}

func (c *Client) Register(ctx context.Context, email, password, firstName, lastName string) error {
	body := map[string]string{
		"email": email, "password": password,
		"first_name": firstName, "last_name": lastName,
	}
	return c.do(ctx, http.MethodPost, "/api/register", body, false, nil)
}

// Login authenticates and stores the returned token pair for later calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/api/login", body, false, &pair); err != nil {
		return err
	}
	c.accessToken = pair.AccessToken
	c.refreshToken = pair.RefreshToken
	return nil
}

func (c *Client) VerifyAccount(ctx context.Context, code string) error {
	return c.do(ctx, http.MethodPost, "/api/verify", map[string]string{"otp": code}, false, nil)
}

func (c *Client) ForgottenPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/password/forgot", map[string]string{"email": email}, false, nil)
}

func (c *Client) ResetPassword(ctx context.Context, code, newPassword, confirmPassword string) error {
	body := map[string]string{
		"otp": code, "new_password": newPassword, "confirm_password": confirmPassword,
	}
	return c.do(ctx, http.MethodPost, "/api/password/reset", body, false, nil)
}

func (c *Client) RequestPasswordUpdate(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/password/change/request", nil, true, nil)
}

func (c *Client) ChangePassword(ctx context.Context, code, currentPassword, newPassword, confirmPassword string) error {
	body := map[string]string{
		"otp": code, "current_password": currentPassword,
		"new_password": newPassword, "confirm_password": confirmPassword,
	}
	return c.do(ctx, http.MethodPost, "/api/password/change", body, true, nil)
}

// Refresh rotates the stored token pair.
func (c *Client) Refresh(ctx context.Context) error {
	body := map[string]string{"refresh_token": c.refreshToken}
	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/api/token/refresh", body, false, &pair); err != nil {
		return err
	}
	c.accessToken = pair.AccessToken
	c.refreshToken = pair.RefreshToken
	return nil
}

func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, true, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProfile(ctx context.Context, firstName, lastName string) error {
	body := map[string]string{"first_name": firstName, "last_name": lastName}
	return c.do(ctx, http.MethodPatch, "/api/profile", body, true, nil)
}

// Logout invalidates the access token server-side and drops the pair locally.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/logout", nil, true, nil)
	c.accessToken = ""
	c.refreshToken = ""
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body any, authed bool, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if resp.StatusCode == http.StatusUnauthorized {
			if apiErr.Error != "" {
				return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Error)
			}
			return ErrUnauthorized
		}
		if apiErr.Error != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server error (%d)", resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
