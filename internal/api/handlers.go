package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/KaramelBytes/sheetdash-cli/internal/chart"
	"github.com/KaramelBytes/sheetdash-cli/internal/parser"
	"github.com/KaramelBytes/sheetdash-cli/internal/render"
	"github.com/KaramelBytes/sheetdash-cli/internal/session"
	"github.com/KaramelBytes/sheetdash-cli/internal/table"
	"github.com/labstack/echo/v4"
)

// Handlers serves the dashboard endpoints over a session manager.
type Handlers struct {
	sessions    *session.Manager
	version     string
	imageWidth  int
	imageHeight int
}

// HandleHealth returns server health status
func (h *Handlers) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  h.version,
		"sessions": h.sessions.Len(),
	})
}

// HandleCreateSession decodes the uploaded spreadsheet (multipart field "file")
// and starts a session for it. Optional form fields: sheet, sheetIndex, delimiter.
func (h *Handlers) HandleCreateSession(c echo.Context) error {
	name, tbl, err := decodeUpload(c)
	if err != nil {
		return err
	}
	s := h.sessions.Create(name, tbl)
	return c.JSON(http.StatusCreated, s.View())
}

// HandleReplaceFile loads a new upload into an existing session. The analysis is
// recomputed and the charts reset to a single default chart.
func (h *Handlers) HandleReplaceFile(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	name, tbl, err := decodeUpload(c)
	if err != nil {
		return err
	}
	s.Load(name, tbl)
	return c.JSON(http.StatusOK, s.View())
}

// HandleGetSession returns the session snapshot.
func (h *Handlers) HandleGetSession(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.View())
}

// HandleDeleteSession ends a session.
func (h *Handlers) HandleDeleteSession(c echo.Context) error {
	id := c.Param("id")
	if err := h.sessions.Delete(id); err != nil {
		return NewNotFoundError("session", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleAnalysis returns the table analysis as JSON.
func (h *Handlers) HandleAnalysis(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.Analysis())
}

// HandleReport returns the analysis as a Markdown report.
func (h *Handlers) HandleReport(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(s.Analysis().Markdown()))
}

// HandleListCharts returns every chart config in order.
func (h *Handlers) HandleListCharts(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.Charts())
}

// HandleAddChart appends a chart with default axes.
func (h *Handlers) HandleAddChart(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, s.AddChart())
}

// HandleUpdateChart applies a partial {xAxis, yAxis, chartType} update.
func (h *Handlers) HandleUpdateChart(c echo.Context) error {
	s, i, err := h.sessionChart(c)
	if err != nil {
		return err
	}
	var p chart.Patch
	if err := c.Bind(&p); err != nil {
		return NewBadRequestError("invalid chart update", err)
	}
	cfg, err := s.UpdateChart(i, p)
	if err != nil {
		return chartFailure(err, s.ID, c.Param("index"))
	}
	return c.JSON(http.StatusOK, cfg)
}

// HandleDeleteChart removes a chart; later charts shift down by one.
func (h *Handlers) HandleDeleteChart(c echo.Context) error {
	s, i, err := h.sessionChart(c)
	if err != nil {
		return err
	}
	if err := s.RemoveChart(i); err != nil {
		return chartFailure(err, s.ID, c.Param("index"))
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleSeries returns the shaped labels and values as JSON.
func (h *Handlers) HandleSeries(c echo.Context) error {
	series, err := h.series(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, render.NewPayload(series))
}

// HandleSeriesMsgpack returns the shaped series as msgpack.
func (h *Handlers) HandleSeriesMsgpack(c echo.Context) error {
	series, err := h.series(c)
	if err != nil {
		return err
	}
	data, err := render.Msgpack(series)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

type chartJSResponse struct {
	Title  string               `json:"title"`
	Config render.ChartJSConfig `json:"config"`
}

// HandleChartJS returns a Chart.js config and heading for the chart.
func (h *Handlers) HandleChartJS(c echo.Context) error {
	series, err := h.series(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, chartJSResponse{Title: render.Title(series), Config: render.ChartJS(series)})
}

// HandleImage renders the chart as png (default) or svg.
func (h *Handlers) HandleImage(c echo.Context) error {
	format := render.PNG
	if v := c.QueryParam("format"); v != "" {
		f, err := render.ParseFormat(v)
		if err != nil {
			return NewBadRequestError("unsupported image format", err)
		}
		format = f
	}
	w, hgt := h.imageWidth, h.imageHeight
	if v, err := strconv.Atoi(c.QueryParam("width")); err == nil && v > 0 {
		w = v
	}
	if v, err := strconv.Atoi(c.QueryParam("height")); err == nil && v > 0 {
		hgt = v
	}
	series, err := h.series(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := render.Image(series, format, w, hgt, &buf); err != nil {
		return chartFailure(err, c.Param("id"), c.Param("index"))
	}
	return c.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}

func decodeUpload(c echo.Context) (string, table.Table, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", nil, NewValidationError("file")
	}
	opt := parser.Options{SheetName: c.FormValue("sheet")}
	if v := c.FormValue("sheetIndex"); v != "" {
		idx, err := strconv.Atoi(v)
		if err != nil || idx < 1 {
			return "", nil, NewValidationError("sheetIndex")
		}
		opt.SheetIndex = idx
	}
	if v := []rune(c.FormValue("delimiter")); len(v) == 1 {
		opt.Delimiter = v[0]
	}

	f, err := fh.Open()
	if err != nil {
		return "", nil, NewBadRequestError("could not open upload", err)
	}
	defer f.Close()

	tbl, err := parser.Parse(fh.Filename, f, opt)
	if err != nil {
		return "", nil, NewDecodeError(err)
	}
	return fh.Filename, tbl, nil
}

func (h *Handlers) session(c echo.Context) (*session.Session, error) {
	id := c.Param("id")
	s, err := h.sessions.Get(id)
	if err != nil {
		return nil, NewNotFoundError("session", id)
	}
	return s, nil
}

func (h *Handlers) sessionChart(c echo.Context) (*session.Session, int, error) {
	s, err := h.session(c)
	if err != nil {
		return nil, 0, err
	}
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return nil, 0, NewValidationError("index")
	}
	return s, i, nil
}

func (h *Handlers) series(c echo.Context) (chart.Series, error) {
	s, i, err := h.sessionChart(c)
	if err != nil {
		return chart.Series{}, err
	}
	series, err := s.Series(i)
	if err != nil {
		return chart.Series{}, chartFailure(err, s.ID, c.Param("index"))
	}
	return series, nil
}
