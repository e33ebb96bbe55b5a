package roblox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUserNotFound - No Roblox account matched the requested username
var ErrUserNotFound = errors.New("roblox user not found")

// User - Resolved Roblox account
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Client - Thin client for the two Roblox Users API calls the bot needs
type Client struct {
	HTTP *http.Client
	// UsersURL is overridable for tests
	UsersURL string
}

// NewClient - Build a client with the given per-request timeout
func NewClient(timeout time.Duration) *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: timeout},
		UsersURL: "https://users.roblox.com",
	}
}

// ResolveUsername - Look up the account id for a username
func (c *Client) ResolveUsername(ctx context.Context, username string) (User, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"usernames":          []string{username},
		"excludeBannedUsers": true,
	})
	if err != nil {
		return User{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.UsersURL+"/v1/usernames/users", bytes.NewReader(payload))
	if err != nil {
		return User{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return User{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return User{}, fmt.Errorf("roblox username lookup returned %v", resp.Status)
	}

	var body struct {
		Data []User `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return User{}, err
	}
	if len(body.Data) == 0 {
		return User{}, ErrUserNotFound
	}
	return body.Data[0], nil
}

// Description - Fetch the current profile description for an account
func (c *Client) Description(ctx context.Context, robloxID int64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/users/%d", c.UsersURL, robloxID), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("roblox profile fetch returned %v", resp.Status)
	}

	var body struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.Description, nil
}

// ProfileURL - Public profile link for an account
func ProfileURL(robloxID int64) string {
	return fmt.Sprintf("https://www.roblox.com/users/%d/profile", robloxID)
}

// AvatarURL - Headshot thumbnail for an account
func AvatarURL(robloxID int64) string {
	return fmt.Sprintf("https://thumbnails.roblox.com/v1/users/avatar-headshot?userIds=%d&size=420x420&format=Png&isCircular=false", robloxID)
}
