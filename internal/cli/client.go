package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shaiso/Concert/internal/workflow"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// ManifestSummary — строка списка манифестов.
type ManifestSummary struct {
	DagID     string `json:"dag_id"`
	Announced bool   `json:"announced"`
	BuildID   string `json:"build_id,omitempty"`
	Location  string `json:"location,omitempty"`
	Tasks     int    `json:"tasks,omitempty"`
}

// PreviewResponse — сборка конфигурации сервера.
type PreviewResponse struct {
	DagID    string `json:"dag_id"`
	Schedule string `json:"schedule_interval,omitempty"`
	Nodes    int    `json:"nodes"`
	Tasks    int    `json:"tasks"`
	Edges    int    `json:"edges"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// APIError — ошибка, вернувшаяся от сервера.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// --- Client ---

// Client — HTTP-клиент для API concert serve.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListManifests возвращает опубликованные DAG.
func (c *Client) ListManifests() ([]ManifestSummary, error) {
	var out []ManifestSummary
	err := c.list("/api/v1/manifests", &out)
	return out, err
}

// GetManifest возвращает манифест DAG.
func (c *Client) GetManifest(dagID string) (*workflow.Manifest, error) {
	var m workflow.Manifest
	if err := c.get("/api/v1/manifests/"+url.PathEscape(dagID), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListAnnouncements возвращает объявления, полученные сервером из очереди.
func (c *Client) ListAnnouncements() ([]ManifestSummary, error) {
	var out []ManifestSummary
	err := c.list("/api/v1/announcements", &out)
	return out, err
}

// Preview собирает конфигурацию сервера без публикации.
func (c *Client) Preview() ([]PreviewResponse, error) {
	var out []PreviewResponse
	err := c.list("/api/v1/preview", &out)
	return out, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	body, err := c.do(http.MethodGet, path)
	if err != nil {
		return err
	}
	var resp dataResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if err := json.Unmarshal(resp.Data, result); err != nil {
		return fmt.Errorf("parse data: %w", err)
	}
	return nil
}

func (c *Client) list(path string, result any) error {
	body, err := c.do(http.MethodGet, path)
	if err != nil {
		return err
	}
	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if err := json.Unmarshal(resp.Data, result); err != nil {
		return fmt.Errorf("parse data: %w", err)
	}
	return nil
}

func (c *Client) do(method, path string) ([]byte, error) {
	req, err := http.NewRequest(method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkError(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

func checkError(status int, body []byte) error {
	if status < 400 {
		return nil
	}
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Code == "" {
		return &APIError{Status: status, Code: "HTTP_ERROR", Message: http.StatusText(status)}
	}
	return &APIError{Status: status, Code: errResp.Error.Code, Message: errResp.Error.Message}
}
