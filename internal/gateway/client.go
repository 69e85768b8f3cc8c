package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/gradebook-bot/internal/metrics"
	"github.com/Spok95/gradebook-bot/internal/models"
)

// Client: единственная точка выхода в REST API записей.
// Ответы не кэшируются: каждый вызов отражает состояние сервера на момент вызова.
type Client struct {
	base string
	hc   *http.Client
	log  *zap.Logger
}

func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Timeout: timeout},
		log:  log,
	}
}

func (c *Client) ListStudents(ctx context.Context, f Filter) ([]models.Student, error) {
	var out []models.Student
	if err := c.list(ctx, models.KindStudent, f, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListCourses(ctx context.Context, f Filter) ([]models.Course, error) {
	var out []models.Course
	if err := c.list(ctx, models.KindCourse, f, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListRecords(ctx context.Context, f Filter) ([]models.Record, error) {
	var out []models.Record
	if err := c.list(ctx, models.KindRecord, f, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// List: то же самое, но без привязки к типу сущности.
func (c *Client) List(ctx context.Context, kind models.Kind, f Filter) ([]models.Entity, error) {
	switch kind {
	case models.KindStudent:
		xs, err := c.ListStudents(ctx, f)
		return entities(xs), err
	case models.KindCourse:
		xs, err := c.ListCourses(ctx, f)
		return entities(xs), err
	case models.KindRecord:
		xs, err := c.ListRecords(ctx, f)
		return entities(xs), err
	}
	return nil, fmt.Errorf("gateway: unknown kind %d", kind)
}

func entities[T models.Entity](xs []T) []models.Entity {
	out := make([]models.Entity, 0, len(xs))
	for _, x := range xs {
		out = append(out, x)
	}
	return out
}

func (c *Client) Create(ctx context.Context, kind models.Kind, p models.Payload) error {
	if p.PayloadKind() != kind {
		return fmt.Errorf("gateway: payload for %s sent to %s", p.PayloadKind(), kind)
	}
	return c.do(ctx, kind, "create", http.MethodPost, "/api/"+kind.Collection(), p, nil)
}

func (c *Client) Update(ctx context.Context, kind models.Kind, id int64, p models.Payload) error {
	if p.PayloadKind() != kind {
		return fmt.Errorf("gateway: payload for %s sent to %s", p.PayloadKind(), kind)
	}
	return c.do(ctx, kind, "update", http.MethodPut, itemPath(kind, id), p, nil)
}

func (c *Client) Delete(ctx context.Context, kind models.Kind, id int64) error {
	return c.do(ctx, kind, "delete", http.MethodDelete, itemPath(kind, id), nil, nil)
}

// Ping: дешёвый GET для /healthz и пробы бэкенда.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, models.KindCourse, "ping", http.MethodGet, "/api/courses", nil, nil)
}

func itemPath(kind models.Kind, id int64) string {
	return "/api/" + kind.Collection() + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) list(ctx context.Context, kind models.Kind, f Filter, out any) error {
	path := "/api/" + kind.Collection()
	if q := f.Values().Encode(); q != "" {
		path += "?" + q
	}
	return c.do(ctx, kind, "list", http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, kind models.Kind, op, method, path string, in, out any) (err error) {
	opName := method + " " + path
	t0 := time.Now()
	defer func() {
		metrics.ObserveGateway(kind.String(), op, time.Since(t0), err)
		if err != nil {
			c.log.Warn("gateway call failed", zap.String("op", opName), zap.Error(err))
			return
		}
		c.log.Debug("gateway call", zap.String("op", opName), zap.Duration("took", time.Since(t0)))
	}()

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("gateway: encode %s: %w", opName, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return &Error{Op: opName, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return &Error{Op: opName, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return &Error{Op: opName, Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Op: opName, Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}
