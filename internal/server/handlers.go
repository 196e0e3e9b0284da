package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/export"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/history"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/models"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/series"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/session"
)

// sessionView is the JSON shape of an upload session.
type sessionView struct {
	State       string               `json:"state"`
	File        string               `json:"file,omitempty"`
	Headers     []string             `json:"headers"`
	ChartKinds  []models.ChartKind   `json:"chart_kinds"`
	Selection   models.AxisSelection `json:"selection"`
	Result      series.Result        `json:"result"`
	Label       string               `json:"label"`
	Description series.Description   `json:"description"`
	NoData      bool                 `json:"no_data"`
}

// historyItem is a history entry without its payload.
type historyItem struct {
	Index int       `json:"index"`
	Name  string    `json:"name"`
	Date  time.Time `json:"date"`
}

func viewOf(c *session.Controller) sessionView {
	res := c.Result()
	v := sessionView{
		State:       c.State().String(),
		Headers:     c.Table().Headers,
		ChartKinds:  models.ChartKinds,
		Selection:   c.Selection(),
		Result:      res,
		Label:       res.Label(),
		Description: series.Describe(res),
		NoData:      res.Empty(),
	}
	if v.Headers == nil {
		v.Headers = []string{}
	}
	if src, ok := c.SourceFile(); ok {
		v.File = src.Name
	}
	return v
}

// emptyView is the session view of a browser that has not loaded a file.
func emptyView() sessionView {
	return sessionView{
		State:      session.StateEmpty.String(),
		Headers:    []string{},
		ChartKinds: models.ChartKinds,
		NoData:     true,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"history":   s.history.Len(),
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or malformed form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	cl := s.clientFor(w, r)
	if _, err := cl.controller.SubmitNewFile(r.Context(), header.Filename, data); err != nil {
		s.opts.Logger.Warn("server: upload %q rejected: %v", header.Filename, err)
		writePipelineError(w, err)
		return
	}
	s.opts.Logger.Info("server: parsed %q (%d bytes)", header.Filename, len(data))
	writeJSON(w, http.StatusOK, viewOf(cl.controller))
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	cl, ok := s.lookupClient(r)
	if !ok {
		writeJSON(w, http.StatusOK, emptyView())
		return
	}
	if _, ok, err := cl.controller.ConsumeHandoff(r.Context(), cl.handoff); ok && err != nil {
		s.opts.Logger.Warn("server: replay failed: %v", err)
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(cl.controller))
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	var change models.SelectionChange
	if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
		writeError(w, http.StatusBadRequest, "invalid selection body")
		return
	}
	cl, ok := s.lookupClient(r)
	if !ok {
		writeError(w, http.StatusNotFound, "no file loaded")
		return
	}
	if _, err := cl.controller.ChangeSelection(change); err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(cl.controller))
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	cl, ok := s.lookupClient(r)
	if !ok {
		writeError(w, http.StatusNotFound, "no file loaded")
		return
	}
	var buf bytes.Buffer
	if err := export.RenderPNG(cl.controller.Result(), &buf, renderOptions(r)); err != nil {
		writePipelineError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (s *Server) handleChartPDF(w http.ResponseWriter, r *http.Request) {
	cl, ok := s.lookupClient(r)
	if !ok {
		writeError(w, http.StatusNotFound, "no file loaded")
		return
	}
	var buf bytes.Buffer
	if err := export.RenderPDF(cl.controller.Result(), &buf, renderOptions(r), export.DefaultPageLayout); err != nil {
		writePipelineError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="chart.pdf"`)
	w.Write(buf.Bytes())
}

func (s *Server) handleOriginal(w http.ResponseWriter, r *http.Request) {
	cl, ok := s.lookupClient(r)
	if !ok {
		writeError(w, http.StatusNotFound, "no file loaded")
		return
	}
	src, ok := cl.controller.SourceFile()
	if !ok {
		writeError(w, http.StatusNotFound, "no file loaded")
		return
	}
	d, err := export.Original(src.Name, src.Payload)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeDownload(w, d)
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	filter, err := history.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	listed := s.history.List(filter, r.URL.Query().Get("q"))
	items := make([]historyItem, len(listed))
	for i, l := range listed {
		items[i] = historyItem{Index: l.Index, Name: l.Entry.Name, Date: l.Entry.Date}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleHistoryLatest(w http.ResponseWriter, r *http.Request) {
	e, ok := s.history.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "history is empty")
		return
	}
	writeJSON(w, http.StatusOK, historyItem{Index: s.history.Len() - 1, Name: e.Name, Date: e.Date})
}

func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.history.DeleteAt(index); err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"remaining": s.history.Len()})
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if err := s.history.ClearAll(); err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"remaining": 0})
}

// handleHistoryReload queues an entry for the caller's upload view. The
// replay itself happens on the next GET /api/session.
func (s *Server) handleHistoryReload(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entryParam(w, r)
	if !ok {
		return
	}
	if !e.Reloadable() {
		writeError(w, http.StatusUnprocessableEntity, "no reloadable data for this entry")
		return
	}
	cl := s.clientFor(w, r)
	cl.handoff.Offer(session.ReplayRequest{Base64: e.Payload, Name: e.Name})
	writeJSON(w, http.StatusAccepted, map[string]string{"pending": e.Name})
}

func (s *Server) handleHistoryDownload(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entryParam(w, r)
	if !ok {
		return
	}
	d, err := export.Original(e.Name, e.Payload)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeDownload(w, d)
}

func (s *Server) entryParam(w http.ResponseWriter, r *http.Request) (models.HistoryEntry, bool) {
	index, err := indexParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return models.HistoryEntry{}, false
	}
	e, ok := s.history.Get(index)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("history entry %d does not exist", index))
		return models.HistoryEntry{}, false
	}
	return e, true
}

func indexParam(r *http.Request) (int, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, errors.New("history index must be an integer")
	}
	return index, nil
}

func renderOptions(r *http.Request) export.RenderOptions {
	q := r.URL.Query()
	w, _ := strconv.Atoi(q.Get("width"))
	h, _ := strconv.Atoi(q.Get("height"))
	return export.RenderOptions{Width: w, Height: h}
}

func writeDownload(w http.ResponseWriter, d export.Download) {
	w.Header().Set("Content-Type", d.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(d.Data)))
	w.Write(d.Data)
}

