// Package snipeit is a thin client for the Snipe-IT asset management
// REST API, covering the user, asset, and accessory lookups plus the
// accessory checkin/checkout calls the loan workflows need.
package snipeit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Common errors
var (
	ErrMissingRows  = errors.New("response has no rows key")
	ErrUserNotFound = errors.New("no matching user")
)

// User is one row of GET /users/.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Model is the nested model object of a hardware asset.
type Model struct {
	Name string `json:"name"`
}

// HardwareAsset is one row of GET /users/{id}/assets.
type HardwareAsset struct {
	AssetTag string `json:"asset_tag"`
	Name     string `json:"name"`
	Model    Model  `json:"model"`
	Serial   string `json:"serial"`
}

// Accessory is one row of GET /users/{id}/accessories.
type Accessory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CheckedOutUser is one row of GET /accessories/{id}/checkedout.
type CheckedOutUser struct {
	ID              int64 `json:"id"`
	AssignedPivotID int64 `json:"assigned_pivot_id"`
}

// Client talks to one Snipe-IT instance with a fixed bearer token.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient builds a client for the given endpoint. Trailing slashes
// on baseURL are tolerated.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: http.DefaultClient,
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// rows decodes the standard {"rows": [...]} envelope into out, which
// must be a pointer to a slice. A response without a rows key is
// reported as ErrMissingRows so callers can take their sentinel path.
func (c *Client) rows(ctx context.Context, path string, out any) error {
	var envelope map[string]json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return err
	}
	raw, ok := envelope["rows"]
	if !ok {
		return fmt.Errorf("%s: %w", path, ErrMissingRows)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s rows: %w", path, err)
	}
	return nil
}

// Users lists all users.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.rows(ctx, "/users/", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UserAssets lists the hardware assets checked out to a user.
func (c *Client) UserAssets(ctx context.Context, userID int64) ([]HardwareAsset, error) {
	var assets []HardwareAsset
	if err := c.rows(ctx, fmt.Sprintf("/users/%d/assets", userID), &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// UserAccessories lists the accessories checked out to a user, one
// row per unit.
func (c *Client) UserAccessories(ctx context.Context, userID int64) ([]Accessory, error) {
	var accessories []Accessory
	if err := c.rows(ctx, fmt.Sprintf("/users/%d/accessories", userID), &accessories); err != nil {
		return nil, err
	}
	return accessories, nil
}

// AccessoryCheckedOut lists the users an accessory is checked out to,
// with the pivot ids needed for checkin.
func (c *Client) AccessoryCheckedOut(ctx context.Context, accessoryID int64) ([]CheckedOutUser, error) {
	var users []CheckedOutUser
	if err := c.rows(ctx, fmt.Sprintf("/accessories/%d/checkedout", accessoryID), &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CheckinAccessory returns one checked-out accessory unit identified
// by its assignment pivot id.
func (c *Client) CheckinAccessory(ctx context.Context, pivotID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/accessories/%d/checkin", pivotID), nil, nil)
}

// CheckoutAccessory assigns an accessory to a user.
func (c *Client) CheckoutAccessory(ctx context.Context, accessoryID, assignedTo int64) error {
	payload := map[string]int64{"assigned_to": assignedTo}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/accessories/%d/checkout", accessoryID), payload, nil)
}

// MatchUsers filters users by a free-form query: a numeric query
// matches the id, anything else matches name or email exactly. An
// empty query matches everyone.
func MatchUsers(users []User, query string) []User {
	query = strings.TrimSpace(query)
	if query == "" {
		return users
	}
	id, numeric := parseID(query)
	var matched []User
	for _, u := range users {
		if (numeric && u.ID == id) || u.Name == query || u.Email == query {
			matched = append(matched, u)
		}
	}
	return matched
}

// FindUser is MatchUsers restricted to exactly one result.
func FindUser(users []User, query string) (User, error) {
	matched := MatchUsers(users, query)
	if len(matched) == 0 {
		return User{}, fmt.Errorf("%w: %q", ErrUserNotFound, query)
	}
	return matched[0], nil
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil
}
