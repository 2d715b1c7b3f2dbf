package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/md2xlsx/webui/internal/metrics"
	"github.com/md2xlsx/webui/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_Success(t *testing.T) {
	requests := make(chan models.ConvertRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req models.ConvertRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests <- req

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"tables_found":2,"warnings":["row 3 ragged"],"excel_data":"UEsDBA==","processing_time":0.12}`))
	}))
	defer srv.Close()

	m, err := metrics.New(metrics.Config{Registry: prometheus.NewRegistry()})
	require.NoError(t, err)
	c := New(srv.URL, WithMetrics(m))

	resp, err := c.Convert(context.Background(), models.ConvertRequest{
		MarkdownContent: "| a |\n|---|\n| 1 |",
		ApplyFormatting: true,
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.TablesFound)
	assert.Equal(t, []string{"row 3 ragged"}, resp.Warnings)
	got := <-requests
	assert.Equal(t, "| a |\n|---|\n| 1 |", got.MarkdownContent)
	assert.True(t, got.ApplyFormatting)
	assert.False(t, got.AutoAdjustWidth)
}

func TestConvert_ApplicationFailureIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"errors":["no tables found"],"error":"conversion failed"}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL).Convert(context.Background(), models.ConvertRequest{MarkdownContent: "text"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, []string{"no tables found", "conversion failed"}, resp.Failures())
}

func TestConvert_Undecodable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Convert(context.Background(), models.ConvertRequest{})
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.ErrorIs(t, err, ErrUndecodable)
	assert.Equal(t, srv.URL, netErr.Endpoint)
}

func TestConvert_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url).Convert(context.Background(), models.ConvertRequest{})
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.False(t, errors.Is(err, ErrUndecodable))
}

func TestConvert_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.URL).Convert(ctx, models.ConvertRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}
