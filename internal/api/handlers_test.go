package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KaramelBytes/sheetdash-cli/internal/analysis"
	"github.com/KaramelBytes/sheetdash-cli/internal/logging"
	"github.com/KaramelBytes/sheetdash-cli/internal/render"
	"github.com/KaramelBytes/sheetdash-cli/internal/session"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const salesCSV = "Region,Revenue\nNorth,10\nSouth,20\nEast,n/a\n"

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	log := logging.New(io.Discard, logging.LevelError)
	mgr := session.NewManager(4, session.Options{Analysis: analysis.DefaultOptions()}, log)
	return NewServer(Dependencies{Sessions: mgr, Log: log, Version: "test", ImageWidth: 320, ImageHeight: 240})
}

func do(e *echo.Echo, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, e *echo.Echo, name string, data []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	return uploadTo(t, e, http.MethodPost, "/api/sessions", name, data, fields)
}

func uploadTo(t *testing.T, e *echo.Echo, method, path, name string, data []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if name != "" {
		fw, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return do(e, method, path, &body, mw.FormDataContentType())
}

func createSession(t *testing.T, e *echo.Echo) session.View {
	t.Helper()
	rec := upload(t, e, "sales.csv", []byte(salesCSV), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var v session.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func decodeAPIError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var apiErr APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr), rec.Body.String())
	return apiErr
}

func TestHealth(t *testing.T) {
	e := newTestServer(t)
	rec := do(e, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestCreateSession(t *testing.T) {
	e := newTestServer(t)
	v := createSession(t, e)

	assert.NotEmpty(t, v.ID)
	assert.Equal(t, "sales.csv", v.Name)
	require.NotNil(t, v.Analysis)
	assert.Equal(t, 3, v.Analysis.TotalRows)
	assert.Equal(t, []string{"Region", "Revenue"}, v.Analysis.Columns)
	assert.Equal(t, []string{"Revenue"}, v.Analysis.NumericColumns)
	require.Len(t, v.Charts, 1)
	assert.Equal(t, "Region", v.Charts[0].XAxis)
	assert.Equal(t, "Revenue", v.Charts[0].YAxis)

	rec := do(e, http.MethodGet, "/api/sessions/"+v.ID, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/api/sessions/"+v.ID+"/report", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "[DATASET SUMMARY]")
	assert.Contains(t, rec.Body.String(), "File: sales.csv")
}

func TestCreateSessionFromWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("Data")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Data", "A1", &[]any{"Month", "Units"}))
	require.NoError(t, f.SetSheetRow("Data", "A2", &[]any{"Jan", 5}))
	require.NoError(t, f.SetSheetRow("Data", "A3", &[]any{"Feb", 7}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	e := newTestServer(t)
	rec := upload(t, e, "book.xlsx", buf.Bytes(), map[string]string{"sheet": "data"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var v session.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.Equal(t, []string{"Units"}, v.Analysis.NumericColumns)

	rec = do(e, http.MethodGet, "/api/sessions/"+v.ID+"/charts/0/series", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"kind":"bar","xTitle":"Month","yTitle":"Units","labels":["Jan","Feb"],"values":[5,7]}`, rec.Body.String())
}

func TestCreateSessionErrors(t *testing.T) {
	e := newTestServer(t)
	tests := []struct {
		name     string
		file     string
		data     []byte
		wantCode string
	}{
		{"missing file", "", nil, "VALIDATION_ERROR"},
		{"corrupt workbook", "bad.xlsx", []byte("not a zip"), "DECODE_ERROR"},
		{"unsupported type", "notes.txt", []byte("hello"), "DECODE_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := upload(t, e, tt.file, tt.data, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantCode, decodeAPIError(t, rec).Code)
		})
	}
}

func TestUnknownSession(t *testing.T) {
	e := newTestServer(t)
	for _, path := range []string{"/api/sessions/nope", "/api/sessions/nope/analysis", "/api/sessions/nope/charts/0/series"} {
		rec := do(e, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "NOT_FOUND", decodeAPIError(t, rec).Code)
	}
	rec := do(e, http.MethodDelete, "/api/sessions/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChartLifecycle(t *testing.T) {
	e := newTestServer(t)
	v := createSession(t, e)
	base := "/api/sessions/" + v.ID + "/charts"

	rec := do(e, http.MethodPost, base, nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, http.MethodGet, base, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cfgs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfgs))
	assert.Len(t, cfgs, 2)

	rec = do(e, http.MethodPatch, base+"/1", strings.NewReader(`{"chartType":"PIE"}`), echo.MIMEApplicationJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"chartType":"pie"`)

	rec = do(e, http.MethodPatch, base+"/1", strings.NewReader(`{"chartType":"area"}`), echo.MIMEApplicationJSON)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	apiErr := decodeAPIError(t, rec)
	assert.Equal(t, "CHART_CONFIG", apiErr.Code)
	assert.Contains(t, apiErr.Message, "Unknown chart type")

	rec = do(e, http.MethodPatch, base+"/1", strings.NewReader(`{"yAxis":""}`), echo.MIMEApplicationJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(e, http.MethodGet, base+"/1/series", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Please select X and Y axes", decodeAPIError(t, rec).Message)

	rec = do(e, http.MethodDelete, base+"/5", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(e, http.MethodDelete, base+"/x", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(e, http.MethodDelete, base+"/1", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(e, http.MethodGet, base+"/1/series", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReplaceFileResetsCharts(t *testing.T) {
	e := newTestServer(t)
	v := createSession(t, e)
	base := "/api/sessions/" + v.ID

	rec := do(e, http.MethodPost, base+"/charts", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = uploadTo(t, e, http.MethodPut, base+"/file", "weather.csv", []byte("City,Temp\nOslo,4\nRome,18\n"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var replaced session.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &replaced))
	assert.Equal(t, v.ID, replaced.ID)
	assert.Equal(t, "weather.csv", replaced.Name)
	assert.Equal(t, []string{"City", "Temp"}, replaced.Analysis.Columns)
	require.Len(t, replaced.Charts, 1)
	assert.Equal(t, "City", replaced.Charts[0].XAxis)
	assert.Equal(t, "Temp", replaced.Charts[0].YAxis)

	rec = do(e, http.MethodGet, base+"/charts/0/series", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"kind":"bar","xTitle":"City","yTitle":"Temp","labels":["Oslo","Rome"],"values":[4,18]}`, rec.Body.String())

	// A column from the previous upload shapes to an empty series.
	rec = do(e, http.MethodPatch, base+"/charts/0", strings.NewReader(`{"yAxis":"Revenue"}`), echo.MIMEApplicationJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(e, http.MethodGet, base+"/charts/0/series", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"kind":"bar","xTitle":"City","yTitle":"Revenue","labels":[],"values":[]}`, rec.Body.String())

	rec = uploadTo(t, e, http.MethodPut, base+"/file", "notes.txt", []byte("hi"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "DECODE_ERROR", decodeAPIError(t, rec).Code)
	rec = uploadTo(t, e, http.MethodPut, "/api/sessions/nope/file", "weather.csv", []byte("a\n1\n"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodGet, base, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"weather.csv"`)
}

func TestSeriesOutputs(t *testing.T) {
	e := newTestServer(t)
	v := createSession(t, e)
	base := "/api/sessions/" + v.ID + "/charts/0"

	rec := do(e, http.MethodGet, base+"/series", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"kind":"bar","xTitle":"Region","yTitle":"Revenue","labels":["North","South"],"values":[10,20]}`, rec.Body.String())

	rec = do(e, http.MethodGet, base+"/series/msgpack", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/msgpack", rec.Header().Get(echo.HeaderContentType))
	p, err := render.DecodeMsgpack(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20}, p.Values)

	rec = do(e, http.MethodGet, base+"/chartjs", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cj chartJSResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cj))
	assert.Equal(t, "BAR Chart: Region vs Revenue", cj.Title)
	assert.Equal(t, "category", cj.Config.Options.Scales["x"].Type)

	rec = do(e, http.MethodGet, base+"/image", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = do(e, http.MethodGet, base+"/image?format=svg", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = do(e, http.MethodGet, base+"/image?format=gif", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPatch, base, strings.NewReader(`{"chartType":"radar"}`), echo.MIMEApplicationJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(e, http.MethodGet, base+"/image", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "CHART_UNSUPPORTED", decodeAPIError(t, rec).Code)
	rec = do(e, http.MethodGet, base+"/chartjs", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
