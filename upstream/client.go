// Package upstream is the typed client for the Golden Nile backend. The
// backend's schema is a black box beyond the fields named here; every
// durable record (posts, comments, messages, programs, bookings) lives
// behind this boundary.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"goldennile/models"
)

// ErrUnauthorized marks an expired or invalid session. Callers tear the
// session down and signal the auth flow instead of rolling back.
var ErrUnauthorized = errors.New("upstream: unauthorized")

type Client struct {
	baseURL string
	httpc   *http.Client

	mu    sync.Mutex
	token string
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// SetToken swaps the bearer token on a live client. Sessions outlive a
// single login, so a refreshed JWT has to reach the stores already
// holding this client.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// LikeResult is the backend's answer to a like toggle. The backend may
// report an explicit count, a list of liker ids, or neither.
type LikeResult struct {
	Liked   bool     `json:"liked"`
	Count   *int     `json:"likes,omitempty"`
	LikedBy []string `json:"liked_by,omitempty"`
}

// ResolveCount picks the authoritative like count, preferring the
// explicit count field, then the liker-list length, falling back to the
// previously known count when the response carries neither.
func (r LikeResult) ResolveCount(prev int) int {
	if r.Count != nil {
		return *r.Count
	}
	if r.LikedBy != nil {
		return len(r.LikedBy)
	}
	return prev
}

// GenerateRequest describes a trip to plan.
type GenerateRequest struct {
	Destination string   `json:"destination"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	PartySize   int      `json:"party_size"`
	Budget      float64  `json:"budget"`
	Interests   []string `json:"interests"`
}

// GeneratedPlan is the structured result: per-day timed activities plus
// suggested lodging.
type GeneratedPlan struct {
	Destination string                 `json:"destination"`
	Days        []models.Day           `json:"days"`
	Lodging     []models.LodgingOption `json:"lodging"`
}

// --- Posts ---

func (c *Client) CreatePost(ctx context.Context, p models.Post) (models.Post, error) {
	var out models.Post
	err := c.do(ctx, http.MethodPost, "/api/posts", p, &out)
	return out, err
}

func (c *Client) UpdatePost(ctx context.Context, p models.Post) (models.Post, error) {
	var out models.Post
	err := c.do(ctx, http.MethodPut, "/api/posts/"+p.PostID, p, &out)
	return out, err
}

func (c *Client) DeletePost(ctx context.Context, postID string) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+postID, nil, nil)
}

func (c *Client) Posts(ctx context.Context) ([]models.Post, error) {
	var out []models.Post
	err := c.do(ctx, http.MethodGet, "/api/posts", nil, &out)
	return out, err
}

func (c *Client) ToggleLike(ctx context.Context, postID string) (LikeResult, error) {
	var out LikeResult
	err := c.do(ctx, http.MethodPost, "/api/posts/"+postID+"/like", nil, &out)
	return out, err
}

// --- Comments ---

func (c *Client) CreateComment(ctx context.Context, postID string, cm models.Comment) (models.Comment, error) {
	var out models.Comment
	err := c.do(ctx, http.MethodPost, "/api/posts/"+postID+"/comments", cm, &out)
	return out, err
}

func (c *Client) UpdateComment(ctx context.Context, postID string, cm models.Comment) (models.Comment, error) {
	var out models.Comment
	err := c.do(ctx, http.MethodPut, "/api/posts/"+postID+"/comments/"+cm.CommentID, cm, &out)
	return out, err
}

func (c *Client) DeleteComment(ctx context.Context, postID, commentID string) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+postID+"/comments/"+commentID, nil, nil)
}

// --- Chat ---

func (c *Client) Chats(ctx context.Context) ([]models.Chat, error) {
	var out struct {
		Chats []models.Chat `json:"chats"`
	}
	err := c.do(ctx, http.MethodGet, "/api/chats", nil, &out)
	return out.Chats, err
}

func (c *Client) Messages(ctx context.Context, chatID string) ([]models.Message, error) {
	var out struct {
		Messages []models.Message `json:"messages"`
	}
	err := c.do(ctx, http.MethodGet, "/api/chats/"+chatID+"/messages", nil, &out)
	return out.Messages, err
}

func (c *Client) SendMessage(ctx context.Context, chatID, text string) (models.Message, error) {
	var out models.Message
	err := c.do(ctx, http.MethodPost, "/api/chats/"+chatID+"/messages", textBody{Text: text}, &out)
	return out, err
}

func (c *Client) EditMessage(ctx context.Context, chatID, msgID, text string) (models.Message, error) {
	var out models.Message
	err := c.do(ctx, http.MethodPut, "/api/chats/"+chatID+"/messages/"+msgID, textBody{Text: text}, &out)
	return out, err
}

func (c *Client) DeleteMessage(ctx context.Context, chatID, msgID string) error {
	return c.do(ctx, http.MethodDelete, "/api/chats/"+chatID+"/messages/"+msgID, nil, nil)
}

type textBody struct {
	Text string `json:"text"`
}

// --- Trip planning ---

func (c *Client) GenerateTrip(ctx context.Context, req GenerateRequest) (GeneratedPlan, error) {
	var out GeneratedPlan
	err := c.do(ctx, http.MethodPost, "/api/trips/generate", req, &out)
	return out, err
}

func (c *Client) CreateProgram(ctx context.Context, p models.TripProgram) (models.TripProgram, error) {
	var out models.TripProgram
	err := c.do(ctx, http.MethodPost, "/api/programs", p, &out)
	return out, err
}

func (c *Client) Programs(ctx context.Context) ([]models.TripProgram, error) {
	var out []models.TripProgram
	err := c.do(ctx, http.MethodGet, "/api/programs", nil, &out)
	return out, err
}

func (c *Client) DeleteProgram(ctx context.Context, programID string) error {
	return c.do(ctx, http.MethodDelete, "/api/programs/"+programID, nil, nil)
}

// --- Bookings ---

func (c *Client) CreateBooking(ctx context.Context, b models.Booking) (models.Booking, error) {
	var out models.Booking
	err := c.do(ctx, http.MethodPost, "/api/bookings", b, &out)
	return out, err
}

// do runs one JSON round trip against the backend.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		if failure.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, failure.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
