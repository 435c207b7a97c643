package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"trade_engine/internal/models"

	"github.com/bytedance/sonic"
)

const recvWindowMs = 5000

// Client is a REST client bound to one venue account. It performs no retries:
// retry policy belongs to the orchestrator, which knows the semantic cost of
// each failure.
type Client struct {
	http      *http.Client
	baseURL   string
	apiKey    string
	apiSecret string
}

func NewClient(baseURL string, creds models.Credentials) *Client {
	return &Client{
		http:      &http.Client{Timeout: 10 * time.Second},
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    creds.APIKey,
		apiSecret: creds.SecretKey,
	}
}

func (c *Client) sign(query string) string {
	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(query))
	return hex.EncodeToString(h.Sum(nil))
}

// signedCall executes an authenticated request. params are sent as query
// string, signed with the account secret.
func (c *Client) signedCall(ctx context.Context, op, method, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	params.Set("recvWindow", strconv.Itoa(recvWindowMs))

	query := params.Encode()
	query += "&signature=" + c.sign(query)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query, nil)
	if err != nil {
		return fmt.Errorf("%s new request: %w", op, err)
	}
	req.Header.Set("X-MBX-APIKEY", c.apiKey)

	return c.do(op, req, out)
}

// publicCall executes an unauthenticated request (market data, metadata).
func (c *Client) publicCall(ctx context.Context, op, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%s new request: %w", op, err)
	}
	return c.do(op, req, out)
}

func (c *Client) do(op string, req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		// network failure or transport timeout: outcome unknown, caller decides
		return &models.VenueError{Op: op, Transient: true, Cause: err}
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return classify(op, resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s decode: %w RAW=%s", op, err, string(data))
	}
	return nil
}

// classify maps a venue error payload onto the transient/permanent split.
func classify(op string, status int, body []byte) error {
	var ve struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	_ = sonic.Unmarshal(body, &ve)

	transient := status == http.StatusRequestTimeout ||
		status == http.StatusTooManyRequests ||
		status == http.StatusServiceUnavailable ||
		status/100 == 5

	switch ve.Code {
	case -1001, -1003, -1021: // disconnected / too many requests / recvWindow
		transient = true
	}

	return &models.VenueError{
		Op:        op,
		Status:    status,
		Code:      ve.Code,
		Msg:       ve.Msg,
		Transient: transient,
	}
}
