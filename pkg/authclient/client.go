package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrSessionLost signals that the session cannot be recovered: there
// is no refresh token, or the refresh exchange was rejected. Callers
// are expected to navigate to login, not to retry.
var ErrSessionLost = errors.New("session lost")

type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client attaches the current access credential to every request and
// makes token expiry transparent: any number of concurrent 401s
// collapse into a single refresh exchange, after which each request
// retries exactly once with the same fresh credential.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Store      TokenStore

	// OnSessionLost fires when recovery is impossible; the app should
	// redirect to login.
	OnSessionLost func()
	// OnNotify receives the most specific server-provided message for
	// non-401 failures (the toast channel).
	OnNotify func(message string)

	sf singleflight.Group
}

func New(baseURL string, store TokenStore) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		Store: store,
	}
}

// Do performs req with the stored access credential. On a 401 it
// joins the coalesced refresh exchange and retries once.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	pair, err := c.Store.Load()
	if err != nil {
		return nil, err
	}
	if pair.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	fresh, err := c.refresh(req.Context())
	if err != nil {
		return nil, err
	}

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", "Bearer "+fresh.AccessToken)
	return c.HTTPClient.Do(retry)
}

// refresh is the single-flight exchange. Concurrent callers share one
// POST and all observe the same new pair; a rejected exchange clears
// the store and fires OnSessionLost exactly once.
func (c *Client) refresh(ctx context.Context) (TokenPair, error) {
	v, err, _ := c.sf.Do("refresh", func() (any, error) {
		pair, err := c.Store.Load()
		if err != nil {
			return nil, err
		}
		if pair.RefreshToken == "" {
			c.Store.Clear()
			c.sessionLost()
			return nil, ErrSessionLost
		}

		body, err := json.Marshal(map[string]string{"refresh_token": pair.RefreshToken})
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.BaseURL+"/api/v1/auth/refresh", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("refresh exchange: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			c.Store.Clear()
			c.sessionLost()
			return nil, ErrSessionLost
		}

		var fresh TokenPair
		if err := json.NewDecoder(resp.Body).Decode(&fresh); err != nil {
			return nil, fmt.Errorf("decode refresh response: %w", err)
		}
		if err := c.Store.Save(fresh); err != nil {
			return nil, err
		}
		return fresh, nil
	})
	if err != nil {
		return TokenPair{}, err
	}
	return v.(TokenPair), nil
}

func (c *Client) sessionLost() {
	if c.OnSessionLost != nil {
		c.OnSessionLost()
	}
}

func (c *Client) notify(message string) {
	if c.OnNotify != nil {
		c.OnNotify(message)
	}
}

// DoJSON sends in (if non-nil) as a JSON body and decodes the reply
// into out. Non-401 failures are forwarded to OnNotify and returned
// as *APIError.
func (c *Client) DoJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		msg := extractMessage(data, resp.StatusCode)
		c.notify(msg)
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}

// Login stores the returned pair so subsequent calls are
// authenticated.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var res TokenPair
	err := c.DoJSON(ctx, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": email, "password": password}, &res)
	if err != nil {
		return err
	}
	return c.Store.Save(res)
}

// Logout revokes the refresh token server-side (best effort) and
// clears local state.
func (c *Client) Logout(ctx context.Context) error {
	pair, err := c.Store.Load()
	if err != nil {
		return err
	}
	if pair.RefreshToken != "" {
		_ = c.DoJSON(ctx, http.MethodPost, "/api/v1/auth/logout",
			map[string]string{"refresh_token": pair.RefreshToken}, nil)
	}
	return c.Store.Clear()
}
