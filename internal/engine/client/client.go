package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"coursehub/internal/domain"
)

// Client ходит в Course Repository по HTTP/JSON. Токен подставляется
// в каждый запрос из переданного источника (обычно session.Store) —
// аналог axios-интерцептора.
type Client struct {
	baseURL string
	http    *http.Client
	token   func() string
}

func New(baseURL string, token func() string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		token:   token,
	}
}

type courseJSON struct {
	ID              uuid.UUID   `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Content         string      `json:"content"`
	InstructorID    uuid.UUID   `json:"instructor_id"`
	InstructorName  string      `json:"instructor_name"`
	EnrolledUserIDs []uuid.UUID `json:"enrolled_user_ids"`
}

func (c courseJSON) toDomain() domain.Course {
	return domain.Course{
		ID:              c.ID,
		Title:           c.Title,
		Description:     c.Description,
		Content:         c.Content,
		InstructorID:    c.InstructorID,
		InstructorName:  c.InstructorName,
		EnrolledUserIDs: c.EnrolledUserIDs,
	}
}

type fieldsJSON struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

func (c *Client) List(ctx context.Context) ([]domain.Course, error) {
	var out []courseJSON
	if err := c.do(ctx, http.MethodGet, "/api/v1/courses", nil, &out); err != nil {
		return nil, err
	}
	return toDomainList(out), nil
}

func (c *Client) Get(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	var out courseJSON
	if err := c.do(ctx, http.MethodGet, "/api/v1/courses/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	course := out.toDomain()
	return &course, nil
}

func (c *Client) Create(ctx context.Context, fields domain.CourseFields) (*domain.Course, error) {
	var out courseJSON
	body := fieldsJSON{Title: fields.Title, Description: fields.Description, Content: fields.Content}
	if err := c.do(ctx, http.MethodPost, "/api/v1/courses", body, &out); err != nil {
		return nil, err
	}
	course := out.toDomain()
	return &course, nil
}

func (c *Client) Update(ctx context.Context, id uuid.UUID, fields domain.CourseFields) (*domain.Course, error) {
	var out courseJSON
	body := fieldsJSON{Title: fields.Title, Description: fields.Description, Content: fields.Content}
	if err := c.do(ctx, http.MethodPut, "/api/v1/courses/"+id.String(), body, &out); err != nil {
		return nil, err
	}
	course := out.toDomain()
	return &course, nil
}

func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/courses/"+id.String(), nil, nil)
}

func (c *Client) Enroll(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodPut, "/api/v1/courses/enroll/"+id.String(), nil, nil)
}

func (c *Client) ListEnrolled(ctx context.Context) ([]domain.Course, error) {
	var out []courseJSON
	if err := c.do(ctx, http.MethodGet, "/api/v1/courses/enrolled", nil, &out); err != nil {
		return nil, err
	}
	return toDomainList(out), nil
}

func (c *Client) ListOwned(ctx context.Context) ([]domain.Course, error) {
	var out []courseJSON
	if err := c.do(ctx, http.MethodGet, "/api/v1/courses/instructor", nil, &out); err != nil {
		return nil, err
	}
	return toDomainList(out), nil
}

// RosterEntry — строка списка записанных студентов курса.
type RosterEntry struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

func (c *Client) Roster(ctx context.Context, id uuid.UUID) ([]RosterEntry, error) {
	var out []RosterEntry
	if err := c.do(ctx, http.MethodGet, "/api/v1/courses/"+id.String()+"/roster", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func toDomainList(in []courseJSON) []domain.Course {
	out := make([]domain.Course, 0, len(in))
	for _, c := range in {
		out = append(out, c.toDomain())
	}
	return out
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// statusError переводит HTTP-статусы в доменные ошибки. 401 означает
// "сессия истекла": вызывающий разворачивает пользователя на логин.
func statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return domain.ErrUnauthenticated
	case resp.StatusCode == http.StatusForbidden:
		return domain.ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	}

	var apiErr struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
		return fmt.Errorf("server: %s", apiErr.Error)
	}
	return fmt.Errorf("server: unexpected status %d", resp.StatusCode)
}
