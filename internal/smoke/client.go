package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/okian/convention/internal/domain/model"
)

// client wraps http.Client with the service routes.
type client struct {
	http    *http.Client
	baseURL string
	token   string
}

func newClient(cfg *Config) *client {
	return &client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		token:   cfg.AdminToken,
	}
}

// file is one multipart file part.
type file struct {
	field, name, contentType string
	body                     []byte
}

func (c *client) do(req *http.Request, out any) (int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}
	if out != nil && resp.StatusCode < http.StatusBadRequest && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s: %w", req.URL.Path, err)
		}
	}
	return resp.StatusCode, nil
}

func (c *client) get(ctx context.Context, path string, admin bool, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return 0, err
	}
	if admin {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.do(req, out)
}

func (c *client) postJSON(ctx context.Context, path string, in, out any) (int, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *client) postAdmin(ctx context.Context, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, http.NoBody)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	return c.do(req, out)
}

func (c *client) postMultipart(ctx context.Context, path string, fields map[string]string, files []file, out any) (int, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return 0, err
		}
	}
	for _, f := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name))
		h.Set("Content-Type", f.contentType)
		w, err := mw.CreatePart(h)
		if err != nil {
			return 0, err
		}
		if _, err := w.Write(f.body); err != nil {
			return 0, err
		}
	}
	if err := mw.Close(); err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, out)
}

func (c *client) register(ctx context.Context, d delegate) (int, error) {
	return c.postMultipart(ctx, "/api/registrations", d.fields(), []file{
		{field: "receipt", name: "receipt.png", contentType: "image/png", body: d.receipt},
	}, nil)
}

func (c *client) pendingRegistrations(ctx context.Context) ([]model.Registration, int, error) {
	var regs []model.Registration
	status, err := c.get(ctx, "/api/admin/registrations?status="+string(model.PaymentPending), true, &regs)
	return regs, status, err
}

func (c *client) confirm(ctx context.Context, id string) (model.Registration, int, error) {
	var reg model.Registration
	status, err := c.postAdmin(ctx, "/api/admin/registrations/"+id+"/confirm", &reg)
	return reg, status, err
}

func (c *client) verify(ctx context.Context, uid string) (int, error) {
	return c.postJSON(ctx, "/api/pitches/verify", map[string]string{"uid": uid}, nil)
}

func (c *client) submitPitch(ctx context.Context, uid string) (int, error) {
	return c.postMultipart(ctx, "/api/pitches", map[string]string{"uid": uid, "agree": "true"}, []file{
		{field: "video", name: "pitch.mp4", contentType: "video/mp4", body: []byte("smoke-video")},
		{field: "document", name: "deck.pdf", contentType: "application/pdf", body: []byte("%PDF-1.4 smoke")},
	}, nil)
}

func (c *client) visit(ctx context.Context) (bool, int64, error) {
	var out struct {
		Counted bool  `json:"counted"`
		Count   int64 `json:"count"`
	}
	_, err := c.postJSON(ctx, "/api/visits", struct{}{}, &out)
	return out.Counted, out.Count, err
}

// waitHealthy polls /healthz until it answers 200 or ctx ends.
func (c *client) waitHealthy(ctx context.Context, every time.Duration) error {
	for {
		status, err := c.get(ctx, "/healthz", false, nil)
		if err == nil && status == http.StatusOK {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("service not healthy: %w", ctx.Err())
		case <-time.After(every):
		}
	}
}
