// Client for the Cognite Data Fusion (CDF) REST API. Only the resources the
// uploader needs are implemented: token introspection, data-modeling spaces
// and instances, and the files resource.
package cdf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2/clientcredentials"
)

const defaultCluster = "api"

type Config struct {
	// CDF project to operate on (required)
	Project string
	// CDF cluster, e.g. "api" or "westeurope-1". Determines the base URL and
	// the token scope. Defaults to "api".
	Cluster string
	// Azure AD tenant that issues tokens for this project (required unless
	// HTTPClient is set)
	TenantID string
	// App registration credentials for the client-credentials grant (required
	// unless HTTPClient is set)
	ClientID     string
	ClientSecret string
	// Reported to CDF in the x-cdp-app header
	AppName string
	// BaseURL overrides the cluster-derived API URL. Intended for tests.
	BaseURL string
	// HTTPClient overrides the token-authenticated client. When set, no
	// identity-provider exchange is configured. Intended for tests.
	HTTPClient *http.Client
}

type Client struct {
	project string
	baseURL string
	appName string
	// hc carries the bearer token on every API call. uploadHC is used for
	// signed upload URLs, which must not receive an Authorization header.
	hc       *http.Client
	uploadHC *http.Client
	log      logrus.FieldLogger
}

// NewClient builds an authenticated handle to CDF. No network call is made
// here; the first token exchange happens lazily on the first request. Use
// InspectToken to verify the credentials are accepted.
func NewClient(logger logrus.FieldLogger, cfg Config) (*Client, error) {
	if cfg.Project == "" {
		return nil, errors.New("cdf: no project configured")
	}

	cluster := cfg.Cluster
	if cluster == "" {
		cluster = defaultCluster
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.cognitedata.com", cluster)
	}

	hc := cfg.HTTPClient
	uploadHC := cfg.HTTPClient
	if hc == nil {
		if cfg.TenantID == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
			return nil, errors.New("cdf: incomplete identity-provider credentials")
		}
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID),
			Scopes:       []string{fmt.Sprintf("https://%s.cognitedata.com/.default", cluster)},
		}
		hc = cc.Client(context.Background())
		uploadHC = &http.Client{}
	}

	return &Client{
		project:  cfg.Project,
		baseURL:  baseURL,
		appName:  cfg.AppName,
		hc:       hc,
		uploadHC: uploadHC,
		log:      logger,
	}, nil
}

// Close releases idle transport connections. The client is unusable after.
func (self *Client) Close() {
	self.hc.CloseIdleConnections()
	self.uploadHC.CloseIdleConnections()
}

type TokenProject struct {
	ProjectURLName string  `json:"projectUrlName"`
	Groups         []int64 `json:"groups"`
}

type TokenInspection struct {
	Subject  string         `json:"subject"`
	Projects []TokenProject `json:"projects"`
}

// InspectToken asks CDF to introspect the bearer token. This is the cheapest
// call that proves the token is accepted by the platform, so the manager runs
// it once right after construction.
func (self *Client) InspectToken(ctx context.Context) (*TokenInspection, error) {
	var inspection TokenInspection
	err := self.do(ctx, http.MethodGet, self.baseURL+"/api/v1/token/inspect", nil, &inspection)
	if err != nil {
		return nil, errors.Wrap(err, "token introspection failed")
	}
	return &inspection, nil
}

// projectURL builds a project-scoped API URL, e.g. projectURL("/files").
func (self *Client) projectURL(path string) string {
	return self.baseURL + "/api/v1/projects/" + self.project + path
}

// do runs one JSON request/response exchange. Responses with status >= 400
// are converted to *APIError. respBody may be nil when the response payload
// is irrelevant.
func (self *Client) do(ctx context.Context, method, url string, reqBody, respBody interface{}) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return errors.Wrap(err, "failed to encode request body")
		}
		body = bytes.NewReader(data)
	}

	self.log.Debugf("%s %s", method, url)
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if self.appName != "" {
		req.Header.Set("x-cdp-app", self.appName)
	}

	resp, err := self.hc.Do(req)
	if err != nil {
		return errors.Wrap(err, "request to "+url+" failed")
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response from "+url)
	}

	if resp.StatusCode >= 400 {
		return parseAPIError(resp.StatusCode, resp.Header.Get("X-Request-Id"), data)
	}

	if respBody != nil {
		if err := json.Unmarshal(data, respBody); err != nil {
			return errors.Wrap(err, "failed to decode response from "+url)
		}
	}
	return nil
}
