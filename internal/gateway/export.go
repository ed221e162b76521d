package gateway

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"
)

// ExportFormat is a downloadable file type.
type ExportFormat string

const (
	ExportCSV   ExportFormat = "csv"
	ExportExcel ExportFormat = "excel"
	ExportPDF   ExportFormat = "pdf"
)

// Valid reports whether f is a supported format.
func (f ExportFormat) Valid() bool {
	switch f {
	case ExportCSV, ExportExcel, ExportPDF:
		return true
	}
	return false
}

// ExportRequest selects the resource and date range to export.
type ExportRequest struct {
	Resource string
	Format   ExportFormat
	From     time.Time
	To       time.Time
}

// Download is a streamed export. Close must be called to release the connection.
type Download struct {
	Body          io.ReadCloser
	ContentType   string
	FileName      string
	ContentLength int64
}

// Export streams a data export from the backend.
func (c *Client) Export(ctx context.Context, token string, req ExportRequest) (*Download, error) {
	query := url.Values{}
	query.Set("format", string(req.Format))
	if !req.From.IsZero() {
		query.Set("from", req.From.Format("2006-01-02"))
	}
	if !req.To.IsZero() {
		query.Set("to", req.To.Format("2006-01-02"))
	}
	target := c.endpoint("/export/"+url.PathEscape(req.Resource), query)

	resp, cancel, err := c.send(ctx, token, http.MethodGet, target, nil, "", c.exportTimeout)
	if err != nil {
		return nil, mapTransportError(opRead, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer cancel()
		defer resp.Body.Close()
		return nil, mapStatusError(opRead, resp)
	}

	name := fmt.Sprintf("%s-export.%s", req.Resource, extension(req.Format))
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &Download{
		Body:          &cancelOnClose{ReadCloser: resp.Body, cancel: cancel},
		ContentType:   contentType,
		FileName:      name,
		ContentLength: resp.ContentLength,
	}, nil
}

func extension(f ExportFormat) string {
	if f == ExportExcel {
		return "xlsx"
	}
	return string(f)
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
