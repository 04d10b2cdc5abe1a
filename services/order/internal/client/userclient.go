// Package client talks to the user service over plain HTTP. The caller's
// identity headers are forwarded so the user service sees the same principal
// that reached the order service.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"orderhub/pkg/principal"
)

type User struct {
	ID       uint   `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Status   string `json:"status"`
}

type existsResponse struct {
	Exists bool `json:"exists"`
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

func forwardIdentity(ctx context.Context, req *http.Request) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return
	}
	req.Header.Set(principal.HeaderUserID, strconv.FormatUint(uint64(p.UserID), 10))
	req.Header.Set(principal.HeaderUserName, p.Username)
	req.Header.Set(principal.HeaderUserRoles, strings.Join(p.Roles, ","))
}

func (c *UserClient) Exists(ctx context.Context, id uint) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/users/exists/%d", c.baseURL, id), nil)
	if err != nil {
		return false, fmt.Errorf("userclient: create request: %w", err)
	}
	forwardIdentity(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("userclient: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("userclient: exists status %d", resp.StatusCode)
	}

	var out existsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("userclient: decode: %w", err)
	}
	return out.Exists, nil
}

func (c *UserClient) GetUser(ctx context.Context, id uint) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/users/%d", c.baseURL, id), nil)
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
		return nil, fmt.Errorf("userclient: get user status %d", resp.StatusCode)
	}

	var out User
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("userclient: decode: %w", err)
	}
	return &out, nil
}
