// Package client is a typed Go client for the home services API.
//
// Authentication state lives in an explicit Session value that callers pass
// around, so several identities can be used side by side.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/localkart/homeservices-api/internal/models"
)

// Session holds the bearer token of one signed-in user. The zero value is a
// guest session.
type Session struct {
	mu    sync.RWMutex
	token string
}

func NewSession(token string) *Session {
	return &Session{token: token}
}

func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Clear signs the session out.
func (s *Session) Clear() { s.SetToken("") }

var errNilSession = errors.New("client: nil session")

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Errors     json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
	Token   string          `json:"token"`
	Errors  json.RawMessage `json:"errors"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:5000/api".
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) do(ctx context.Context, s *Session, method, path string, body, out any) (*envelope, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := s.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Message, Errors: env.Errors}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	return &env, nil
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Register creates an account and stores the issued token in s.
func (c *Client) Register(ctx context.Context, s *Session, req RegisterRequest) (*models.PublicUser, error) {
	if s == nil {
		return nil, errNilSession
	}
	var user models.PublicUser
	env, err := c.do(ctx, s, http.MethodPost, "/auth/register", req, &user)
	if err != nil {
		return nil, err
	}
	s.SetToken(env.Token)
	return &user, nil
}

// Login signs in and stores the issued token in s.
func (c *Client) Login(ctx context.Context, s *Session, email, password string) (*models.PublicUser, error) {
	if s == nil {
		return nil, errNilSession
	}
	var user models.PublicUser
	env, err := c.do(ctx, s, http.MethodPost, "/auth/login",
		map[string]string{"email": email, "password": password}, &user)
	if err != nil {
		return nil, err
	}
	s.SetToken(env.Token)
	return &user, nil
}

func (c *Client) Me(ctx context.Context, s *Session) (*models.User, error) {
	var user models.User
	if _, err := c.do(ctx, s, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type ProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

func (c *Client) UpdateDetails(ctx context.Context, s *Session, req ProfileUpdate) (*models.User, error) {
	var user models.User
	if _, err := c.do(ctx, s, http.MethodPut, "/auth/updatedetails", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type AddressRequest struct {
	Label       *string `json:"label,omitempty"`
	AddressLine *string `json:"addressLine,omitempty"`
	IsDefault   *bool   `json:"isDefault,omitempty"`
}

func (c *Client) AddAddress(ctx context.Context, s *Session, req AddressRequest) (*models.User, error) {
	return c.userCall(ctx, s, http.MethodPost, "/auth/addresses", req)
}

func (c *Client) UpdateAddress(ctx context.Context, s *Session, id string, req AddressRequest) (*models.User, error) {
	return c.userCall(ctx, s, http.MethodPut, "/auth/addresses/"+url.PathEscape(id), req)
}

func (c *Client) DeleteAddress(ctx context.Context, s *Session, id string) (*models.User, error) {
	return c.userCall(ctx, s, http.MethodDelete, "/auth/addresses/"+url.PathEscape(id), nil)
}

func (c *Client) SetDefaultAddress(ctx context.Context, s *Session, id string) (*models.User, error) {
	return c.userCall(ctx, s, http.MethodPatch, "/auth/addresses/"+url.PathEscape(id)+"/default", nil)
}

func (c *Client) userCall(ctx context.Context, s *Session, method, path string, body any) (*models.User, error) {
	var user models.User
	if _, err := c.do(ctx, s, method, path, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type BookingRequest struct {
	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	CustomerPhone string  `json:"customerPhone"`
	ServiceType   string  `json:"serviceType"`
	ServiceOption string  `json:"serviceOption"`
	Date          string  `json:"date"`
	Time          string  `json:"time"`
	Address       string  `json:"address"`
	Notes         string  `json:"notes,omitempty"`
	TotalPrice    float64 `json:"totalPrice"`
}

// BookingPatch mirrors the PATCH body. Nil fields are left out.
type BookingPatch struct {
	ServiceOption *string  `json:"serviceOption,omitempty"`
	Date          *string  `json:"date,omitempty"`
	Time          *string  `json:"time,omitempty"`
	Address       *string  `json:"address,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
	CustomerName  *string  `json:"customerName,omitempty"`
	CustomerEmail *string  `json:"customerEmail,omitempty"`
	CustomerPhone *string  `json:"customerPhone,omitempty"`
	TotalPrice    *float64 `json:"totalPrice,omitempty"`
	Status        *string  `json:"status,omitempty"`
}

// CreateBooking books as the session's user, or as a guest for an empty session.
func (c *Client) CreateBooking(ctx context.Context, s *Session, req BookingRequest) (*models.Booking, error) {
	return c.bookingCall(ctx, s, http.MethodPost, "/bookings", req)
}

func (c *Client) GetBooking(ctx context.Context, s *Session, id string) (*models.BookingView, error) {
	var b models.BookingView
	if _, err := c.do(ctx, s, http.MethodGet, "/bookings/"+url.PathEscape(id), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) UpdateBooking(ctx context.Context, s *Session, id string, patch BookingPatch) (*models.Booking, error) {
	return c.bookingCall(ctx, s, http.MethodPatch, "/bookings/"+url.PathEscape(id), patch)
}

func (c *Client) CancelBooking(ctx context.Context, s *Session, id string) (*models.Booking, error) {
	return c.bookingCall(ctx, s, http.MethodDelete, "/bookings/"+url.PathEscape(id), nil)
}

func (c *Client) bookingCall(ctx context.Context, s *Session, method, path string, body any) (*models.Booking, error) {
	var b models.Booking
	if _, err := c.do(ctx, s, method, path, body, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) MyBookings(ctx context.Context, s *Session) ([]models.Booking, error) {
	var list []models.Booking
	if _, err := c.do(ctx, s, http.MethodGet, "/bookings/my-bookings", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// AllBookings requires an admin session.
func (c *Client) AllBookings(ctx context.Context, s *Session) ([]models.BookingView, error) {
	var list []models.BookingView
	if _, err := c.do(ctx, s, http.MethodGet, "/bookings", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Services lists the catalog. Empty arguments are not sent.
func (c *Client) Services(ctx context.Context, category, active string) ([]models.Service, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if active != "" {
		q.Set("active", active)
	}
	path := "/services"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var list []models.Service
	if _, err := c.do(ctx, nil, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) ServicesByCategory(ctx context.Context, category string) ([]models.Service, error) {
	var list []models.Service
	if _, err := c.do(ctx, nil, http.MethodGet, "/services/category/"+url.PathEscape(category), nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) Service(ctx context.Context, id string) (*models.Service, error) {
	var svc models.Service
	if _, err := c.do(ctx, nil, http.MethodGet, "/services/"+url.PathEscape(id), nil, &svc); err != nil {
		return nil, err
	}
	return &svc, nil
}

// ToggleService flips a service's active flag. Admin only.
func (c *Client) ToggleService(ctx context.Context, s *Session, id string) (*models.Service, error) {
	var svc models.Service
	if _, err := c.do(ctx, s, http.MethodPatch, "/services/"+url.PathEscape(id)+"/toggle", nil, &svc); err != nil {
		return nil, err
	}
	return &svc, nil
}
