// Package api is the typed client for the MangoShop REST backend. All
// requests go through one resty client guarded by a circuit breaker;
// responses are decoded into the internal/models types and failures
// mapped onto the Auth/Validation/Server/Network error taxonomy.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/mangoshop/shopctl/internal/metrics"
	"github.com/mangoshop/shopctl/internal/patterns"
	"github.com/mangoshop/shopctl/internal/session"
)

// Client talks to one backend on behalf of one session. Zero value is
// unusable; construct with New.
type Client struct {
	http    *resty.Client
	baseURL string // scheme://host, no trailing slash
	session *session.Store
	breaker *patterns.CircuitBreakerWrapper
}

// New builds a client rooted at baseURL (e.g. "http://127.0.0.1:8000").
// The session store is injected; the client never owns the credential.
// No request timeout and no automatic retries are configured: a hung
// request stays hung until the user gives up, and every re-trigger is
// manual.
func New(baseURL string, sess *session.Store) *Client {
	baseURL = strings.TrimRight(baseURL, "/")

	httpClient := resty.New().
		SetBaseURL(baseURL + "/api").
		SetRetryCount(0)

	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader("X-Request-ID", uuid.New().String())
		return nil
	})

	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		session: sess,
		breaker: patterns.NewCircuitBreaker("shop-api"),
	}
}

// Session exposes the injected credential store.
func (c *Client) Session() *session.Store {
	return c.session
}

// BaseURL returns the backend root, without the /api prefix.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResolveImageURL prefixes server-relative image paths with the API
// host. Absolute URLs pass through untouched.
func (c *Client) ResolveImageURL(image string) string {
	if image == "" {
		return ""
	}
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}
	if !strings.HasPrefix(image, "/") {
		image = "/" + image
	}
	return c.baseURL + image
}

// errorBody is the error envelope the backend uses for failures.
type errorBody struct {
	Error   string `json:"error"`
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// call executes an already-populated request through the breaker and
// maps transport failures. auth attaches the Token header and fails
// fast with an AuthError when no credential is present.
func (c *Client) call(req *resty.Request, method, path string, auth bool) (*resty.Response, error) {
	if auth {
		token := c.session.Token()
		if token == "" {
			return nil, &AuthError{}
		}
		req.SetHeader("Authorization", "Token "+token)
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, httpErr := req.Execute(method, path)
		if httpErr != nil {
			return nil, httpErr
		}
		// Non-2xx responses mean the backend is reachable; they must
		// not trip the breaker.
		return resp, nil
	})
	if err != nil {
		metrics.APITransportFailures.WithLabelValues(method, path).Inc()
		if patterns.Open(err) {
			log.WithFields(log.Fields{
				"method": method,
				"path":   path,
			}).Warn("Request short-circuited, backend considered down")
		} else {
			log.WithFields(log.Fields{
				"method": method,
				"path":   path,
			}).Error("Request failed: ", err)
		}
		return nil, &NetworkError{Err: err}
	}

	resp := result.(*resty.Response)
	metrics.RecordAPIRequest(method, path, resp.StatusCode(), time.Since(start))
	return resp, nil
}

// doJSON runs a JSON request and decodes a 2xx body into out (out may
// be nil). Non-2xx responses become ServerError with the body's error
// field when present, else fallback; 401 clears the stored credential
// and becomes AuthError.
func (c *Client) doJSON(method, path string, auth bool, body, out interface{}, fallback string) error {
	req := c.http.R()
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := c.call(req, method, path, auth)
	if err != nil {
		return err
	}

	if err := c.checkStatus(resp, fallback); err != nil {
		return err
	}

	if out != nil {
		return decodeJSON(resp.Body(), out, resp.StatusCode(), fallback)
	}
	return nil
}

// decodeJSON unmarshals a 2xx body, folding decode failures into the
// same ServerError bucket as a malformed response.
func decodeJSON(body []byte, out interface{}, status int, fallback string) error {
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &ServerError{StatusCode: status, Message: fallback}
	}
	return nil
}

// checkStatus maps a non-2xx response onto the error taxonomy.
func (c *Client) checkStatus(resp *resty.Response, fallback string) error {
	code := resp.StatusCode()
	if code >= 200 && code < 300 {
		return nil
	}

	if code == http.StatusUnauthorized {
		// Token expired or revoked; drop it so the caller lands on login.
		c.session.Clear()
		return &AuthError{}
	}

	msg := fallback
	var eb errorBody
	if err := json.Unmarshal(resp.Body(), &eb); err == nil {
		switch {
		case eb.Error != "":
			msg = eb.Error
		case eb.Detail != "":
			msg = eb.Detail
		case eb.Message != "":
			msg = eb.Message
		}
	}

	log.WithFields(log.Fields{
		"status": code,
		"path":   resp.Request.URL,
	}).Warn("API error: ", msg)

	return &ServerError{StatusCode: code, Message: msg}
}
