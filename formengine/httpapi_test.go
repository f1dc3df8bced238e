package formengine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmdatafocus/kvk_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, h http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	s := NewSession()
	require.NoError(t, s.Login(&models.UserSummary{ID: 1}, "tok-1"))
	c := NewHTTPClient(srv.URL+"/api/", s)
	c.HTTP = &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	return c
}

func writeEnvelope(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestHTTPClientCreateAndSubmit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/reports", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		var in models.NewReport
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		writeEnvelope(w, http.StatusCreated, map[string]any{
			"success": true,
			"message": "Report created successfully",
			"data":    map[string]any{"report": map[string]any{"id": 5, "kvkName": in.KvkName, "status": "draft", "version": 1}},
		})
	})
	mux.HandleFunc("/api/reports/5/submit", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"report": map[string]any{"id": 5, "status": "submitted", "version": 2}},
		})
	})
	c := testClient(t, mux)

	in := &models.NewReport{ReportDate: "2024-03-31"}
	in.KvkName = "KVK Alpha"
	created, err := c.CreateReport(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, 5, created.ID)
	require.Equal(t, "KVK Alpha", created.KvkName)

	submitted, err := c.SubmitReport(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, models.ReportStatusSubmitted, submitted.Status)
}

func TestHTTPClientErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/reports/1", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Validation failed",
			"errors":  []map[string]string{{"field": "kvkName", "message": "KVK name is required"}},
		})
	})
	mux.HandleFunc("/api/reports/2", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})
	c := testClient(t, mux)

	_, err := c.UpdateReport(context.Background(), 1, &models.NewReport{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "kvkName", apiErr.Errors[0].Field)
	require.False(t, IsNetworkFailure(err))

	_, err = c.GetReport(context.Background(), 2)
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.Status)
	require.True(t, IsNetworkFailure(err))
}

func TestHTTPClientTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(url+"/api", NewSession())
	c.HTTP = &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	_, err := c.CreateReport(context.Background(), &models.NewReport{})
	require.Error(t, err)
	require.True(t, IsNetworkFailure(err))
}
