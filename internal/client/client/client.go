package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/dmitrijs2005/bioguard/internal/client/models"
)

// tokenExpiredMessage is what the server answers when the access token has
// expired and a refresh is worth trying.
const tokenExpiredMessage = "Token expired"

type Client struct {
	baseURL  string
	http     *http.Client
	sessions SessionStore
}

func New(baseURL string, timeout time.Duration, sessions SessionStore) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		sessions: sessions,
	}
}

// body builds a fresh request body and its content type; it is called again
// when a request is retried after a token refresh.
type body func() (io.Reader, string, error)

func jsonBody(v any) body {
	return func() (io.Reader, string, error) {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

func photoBody(fields map[string]string, photo []byte) body {
	return func() (io.Reader, string, error) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for k, v := range fields {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", err
			}
		}
		part, err := w.CreateFormFile("photo", "photo.jpg")
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(photo); err != nil {
			return nil, "", err
		}
		if err := w.Close(); err != nil {
			return nil, "", err
		}
		return &buf, w.FormDataContentType(), nil
	}
}

func (c *Client) send(ctx context.Context, method, path string, b body, token string) (*http.Response, error) {
	var (
		reader      io.Reader
		contentType string
		err         error
	)
	if b != nil {
		if reader, contentType, err = b(); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

func readAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		Message string `json:"message"`
	}
	if data, err := io.ReadAll(resp.Body); err == nil && json.Unmarshal(data, &payload) == nil {
		apiErr.Message = payload.Message
	}
	return apiErr
}

// do performs an authenticated call. An expired access token is refreshed
// once and the request replayed.
func (c *Client) do(ctx context.Context, method, path string, b body) (*http.Response, error) {
	session, err := c.sessions.Load()
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, method, path, b, session.Token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 300 || resp.StatusCode == http.StatusNotModified {
		return resp, nil
	}

	apiErr := readAPIError(resp)
	resp.Body.Close()

	if apiErr.Status != http.StatusUnauthorized || apiErr.Message != tokenExpiredMessage || session.RefreshToken == "" {
		return nil, apiErr
	}

	if err := c.refresh(ctx, session.RefreshToken); err != nil {
		return nil, err
	}
	session, err = c.sessions.Load()
	if err != nil {
		return nil, err
	}

	resp, err = c.send(ctx, method, path, b, session.Token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, readAPIError(resp)
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, b body, out any) error {
	resp, err := c.do(ctx, method, path, b)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) saveTokens(resp *http.Response) error {
	var s models.Session
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return err
	}
	return c.sessions.Save(&s)
}

func (c *Client) refresh(ctx context.Context, refreshToken string) error {
	resp, err := c.send(ctx, http.MethodPost, "/auth/refresh", jsonBody(map[string]string{"refreshToken": refreshToken}), "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_ = c.sessions.Clear()
		return readAPIError(resp)
	}
	return c.saveTokens(resp)
}

// Login stores the returned token pair on success.
func (c *Client) Login(ctx context.Context, email string, password []byte) error {
	resp, err := c.send(ctx, http.MethodPost, "/auth/login", jsonBody(map[string]string{
		"email":    email,
		"password": string(password),
	}), "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}
	return c.saveTokens(resp)
}

func (c *Client) Logout() error {
	return c.sessions.Clear()
}

func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.send(ctx, http.MethodGet, "/healthz", nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}
	return nil
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ListUsers(ctx context.Context, search, role string) ([]models.User, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if role != "" {
		q.Set("role", role)
	}

	var users []models.User
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/users", q), nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, email string, password []byte, name, role string) (*models.User, error) {
	var u models.User
	err := c.doJSON(ctx, http.MethodPost, "/users", jsonBody(map[string]string{
		"email":    email,
		"password": string(password),
		"name":     name,
		"role":     role,
	}), &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListPeople(ctx context.Context, search, listType string) ([]models.Person, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if listType != "" {
		q.Set("listType", listType)
	}

	var people []models.Person
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/people", q), nil, &people); err != nil {
		return nil, err
	}
	return people, nil
}

// CreatePerson uploads the photo as multipart and returns the new id.
func (c *Client) CreatePerson(ctx context.Context, name, listType string, photo []byte) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/people", photoBody(map[string]string{
		"name":     name,
		"listType": listType,
	}, photo), &out)
	if err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) DeletePerson(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/people/"+url.PathEscape(id), nil, nil)
}

func (c *Client) PersonPhoto(ctx context.Context, id string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, "/people/"+url.PathEscape(id)+"/photo", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (c *Client) Recognize(ctx context.Context, photo []byte) (*models.Recognition, error) {
	var r models.Recognition
	if err := c.doJSON(ctx, http.MethodPost, "/recognize", photoBody(nil, photo), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) ListLogs(ctx context.Context, personID string, limit int) ([]models.AccessLog, error) {
	q := url.Values{}
	if personID != "" {
		q.Set("personId", personID)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var logs []models.AccessLog
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/logs", q), nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
