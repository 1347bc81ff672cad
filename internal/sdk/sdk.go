package sdk

import (
	"fmt"
	"runtime"
	"time"

	"github.com/imroc/req/v3"
	"github.com/sharesync/sharesync/internal/utils"
	"github.com/sharesync/sharesync/internal/version"
)

const (
	HeaderClientVersion = "X-ShareSync-Version"
	HeaderDeviceId      = "X-ShareSync-Device-Id"
)

var userAgent = fmt.Sprintf("ShareSync/%s (%s; %s; %s)", version.Version, version.Revision, runtime.GOOS, runtime.GOARCH)

// Client talks to the backend sync API.
type Client struct {
	http    *req.Client
	baseURL string
	Sync    *SyncAPI
}

// New creates a new API client for the given server URL.
func New(baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, ErrNoServerURL
	}

	client := req.C().
		SetBaseURL(baseURL).
		SetCommonRetryCount(3).
		SetCommonRetryFixedInterval(1*time.Second).
		SetUserAgent(userAgent).
		SetCommonHeader(HeaderClientVersion, version.Version).
		SetCommonHeader(HeaderDeviceId, utils.HWID).
		SetTimeout(30 * time.Second).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)

	return &Client{
		http:    client,
		baseURL: baseURL,
		Sync:    newSyncAPI(client),
	}, nil
}

// SetToken sets the bearer credential sent with every request.
func (c *Client) SetToken(token string) {
	c.http.SetCommonBearerAuthToken(token)
}

// BaseURL returns the configured server URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections held by the underlying transport.
func (c *Client) Close() {
	c.http.GetClient().CloseIdleConnections()
}
