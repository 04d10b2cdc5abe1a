// Package client talks to the user service over plain HTTP. Degradation
// policy is chosen by the caller, not here: methods return the raw error.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"orderhub/pkg/principal"
)

type Profile struct {
	ID       uint   `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type CreateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type UserClient struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *UserClient {
	return &UserClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 3 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *UserClient) CreateProfile(ctx context.Context, in CreateProfileRequest) (*Profile, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("userclient: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("userclient: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userclient: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userclient: create profile status %d", resp.StatusCode)
	}

	var out Profile
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("userclient: decode: %w", err)
	}
	return &out, nil
}

func forwardIdentity(ctx context.Context, req *http.Request) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return
	}
	req.Header.Set(principal.HeaderUserID, strconv.FormatUint(uint64(p.UserID), 10))
	req.Header.Set(principal.HeaderUserName, p.Username)
	req.Header.Set(principal.HeaderUserRoles, strings.Join(p.Roles, ","))
}

func (c *UserClient) GetProfile(ctx context.Context, id uint) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/users/%d", c.baseURL, id), nil)
	if err != nil {
		return nil, fmt.Errorf("userclient: create request: %w", err)
	}
	forwardIdentity(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userclient: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userclient: get profile status %d", resp.StatusCode)
	}

	var out Profile
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("userclient: decode: %w", err)
	}
	return &out, nil
}
