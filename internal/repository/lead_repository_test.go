package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func newFakeSheets(t *testing.T, handler http.HandlerFunc) (*sheets.Service, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return svc, srv.Close
}

func TestFetchAllMapsRows(t *testing.T) {
	var gotPath string
	svc, closeSrv := newFakeSheets(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		resp := map[string]interface{}{
			"range":          "Sheet1!A2:R",
			"majorDimension": "ROWS",
			"values": [][]interface{}{
				{"AAAA0001", "2025-03-10T10:00:00+05:30", "Asha", "9876543210", "Pune", "1990-06-15", "34", "Female",
					"Weight loss", "6-12 months", "Moderate", "Consistency", "8", "Dieting", "Yes", "Hindi", "", "NEW"},
				{"AAAA0002", "2025-03-10T11:00:00+05:30", "Ravi", "1111111111"},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	defer closeSrv()

	repo := NewLeadRepository(svc, "sheet-id", "Sheet1")
	rows, err := repo.FetchAll(context.Background())
	require.NoError(t, err)

	assert.Contains(t, gotPath, "sheet-id")
	require.Len(t, rows, 2)

	assert.Equal(t, "AAAA0001", rows[0].LeadID)
	assert.Equal(t, "2025-03-10T10:00:00+05:30", rows[0].SubmittedAt)
	assert.Equal(t, "9876543210", rows[0].Contact)
	assert.Equal(t, "NEW", rows[0].Status)

	// Short rows yield empty cells rather than panics.
	assert.Equal(t, "1111111111", rows[1].Contact)
	assert.Equal(t, "", rows[1].Status)
}

func TestAppendSendsFullRow(t *testing.T) {
	var gotBody string
	var gotQuery string
	svc, closeSrv := newFakeSheets(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{}`))
	})
	defer closeSrv()

	repo := NewLeadRepository(svc, "sheet-id", "Sheet1")

	row := make([]interface{}, 18)
	for i := range row {
		row[i] = ""
	}
	row[0] = "ABCDEF12"
	row[3] = "9876543210"

	require.NoError(t, repo.Append(context.Background(), row))
	assert.Contains(t, gotBody, "ABCDEF12")
	assert.Contains(t, gotBody, "9876543210")
	assert.Contains(t, gotQuery, "valueInputOption=RAW")
	assert.True(t, strings.Contains(gotQuery, "insertDataOption=INSERT_ROWS"))
}

func TestAppendRejectsWrongWidth(t *testing.T) {
	repo := NewLeadRepository(nil, "sheet-id", "")

	err := repo.Append(context.Background(), []interface{}{"only", "five", "cells", "given", "here"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 18 columns")
}
