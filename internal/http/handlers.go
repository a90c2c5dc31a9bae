package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"path"
	"time"

	"github.com/goccy/go-json"

	"vacstat/internal/core"
	"vacstat/internal/ingest"
	"vacstat/internal/log"
)

const maxRequestBody = 1 << 20

var segmentTitles = map[core.Segment]string{
	core.SegmentAll: "Все вакансии",
	core.SegmentPHP: "PHP-программист",
}

type chartView struct {
	Title string
	URL   string
}

type segmentView struct {
	Title  string
	Yearly []core.YearlyStat
	Cities []core.CityStat
	Skills []core.SkillCount
	Charts []chartView
}

type pageData struct {
	Title     string
	Active    string
	Segments  []segmentView
	Runs      []core.ProcessingRun
	Vacancies []core.LatestVacancy
	Query     string
	Notice    string
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	ctx := r.Context()
	if s.templates == nil {
		log.FromContext(ctx).ErrorContext(ctx, "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Template execution failed", log.FieldError, err, "template", name)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) reportError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	log.NewStructuredLogger(log.FromContext(ctx)).
		LogError(ctx, "Report query failed", err, log.ComponentStorage, log.OpList, log.NewFields().WithClientIP(extractClientIP(r)))
	http.Error(w, "failed to load report", http.StatusInternalServerError)
}

func (s *Server) chartViews(ctx context.Context, seg core.Segment, topics ...core.ChartTopic) ([]chartView, error) {
	charts, err := s.reports.Charts(ctx, seg)
	if err != nil {
		return nil, err
	}
	var views []chartView
	for _, c := range charts {
		for _, t := range topics {
			if c.Topic == t {
				views = append(views, chartView{Title: c.Title, URL: path.Join("/media", c.Path)})
				break
			}
		}
	}
	return views, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	runs, err := s.reports.LatestRuns(r.Context(), 5)
	if err != nil {
		s.reportError(w, r, err)
		return
	}
	s.render(w, r, "index.html", pageData{Title: "Профессия PHP-программист", Active: "index", Runs: runs})
}

func (s *Server) yearlyPage(w http.ResponseWriter, r *http.Request, seg core.Segment, title, active string) {
	ctx := r.Context()
	yearly, err := s.reports.YearlyStats(ctx, seg)
	if err != nil {
		s.reportError(w, r, err)
		return
	}
	charts, err := s.chartViews(ctx, seg, core.TopicSalary, core.TopicCounts)
	if err != nil {
		s.reportError(w, r, err)
		return
	}
	s.render(w, r, "yearly.html", pageData{
		Title:    title,
		Active:   active,
		Segments: []segmentView{{Title: segmentTitles[seg], Yearly: yearly, Charts: charts}},
	})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	s.yearlyPage(w, r, core.SegmentAll, "Общая статистика", "statistics")
}

func (s *Server) handleDemand(w http.ResponseWriter, r *http.Request) {
	s.yearlyPage(w, r, core.SegmentPHP, "Востребованность", "demand")
}

func (s *Server) handleGeography(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := pageData{Title: "География", Active: "geography"}
	for _, seg := range []core.Segment{core.SegmentAll, core.SegmentPHP} {
		cities, err := s.reports.CityStats(ctx, seg)
		if err != nil {
			s.reportError(w, r, err)
			return
		}
		charts, err := s.chartViews(ctx, seg, core.TopicGeography)
		if err != nil {
			s.reportError(w, r, err)
			return
		}
		data.Segments = append(data.Segments, segmentView{Title: segmentTitles[seg], Cities: cities, Charts: charts})
	}
	s.render(w, r, "geography.html", data)
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := pageData{Title: "Навыки", Active: "skills"}
	for _, seg := range []core.Segment{core.SegmentAll, core.SegmentPHP} {
		skills, err := s.reports.Skills(ctx, seg)
		if err != nil {
			s.reportError(w, r, err)
			return
		}
		charts, err := s.chartViews(ctx, seg, core.TopicSkills)
		if err != nil {
			s.reportError(w, r, err)
			return
		}
		data.Segments = append(data.Segments, segmentView{Title: segmentTitles[seg], Skills: skills, Charts: charts})
	}
	s.render(w, r, "skills.html", data)
}

// handleLatest renders even when hh.ru fails; the page shows a notice instead.
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Последние вакансии", Active: "latest", Query: s.hhQuery}
	if s.latest == nil {
		data.Notice = "Источник вакансий не настроен"
		s.render(w, r, "latest.html", data)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()
	vacancies, err := s.latest.Latest(ctx, s.hhQuery, 10)
	if err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Latest vacancies unavailable", log.FieldError, err)
		data.Notice = "Не удалось загрузить вакансии, попробуйте позже"
	}
	data.Vacancies = vacancies
	s.render(w, r, "latest.html", data)
}

type processRequest struct {
	Path string `json:"path" validate:"required,max=4096"`
}

type summaryResponse struct {
	Records int `json:"records"`
	Yearly  int `json:"yearly"`
	Cities  int `json:"cities"`
	Skills  int `json:"skills"`
	Charts  int `json:"charts"`
}

type processResponse struct {
	Status  string           `json:"status"`
	Path    string           `json:"path"`
	JobID   string           `json:"job_id,omitempty"`
	Summary *summaryResponse `json:"summary,omitempty"`
}

type runResponse struct {
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	Status     string          `json:"status"`
	Error      string          `json:"error,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Summary    summaryResponse `json:"summary"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toSummaryResponse(s core.Summary) summaryResponse {
	return summaryResponse{Records: s.Records, Yearly: s.Yearly, Cities: s.Cities, Skills: s.Skills, Charts: s.Charts}
}

// handleProcess accepts {"path": ...} relative to the data directory.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	var req processRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	req.Path = sanitizeInput(req.Path)
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "path is required"})
		return
	}
	file, err := resolveDataPath(s.dataDir, req.Path)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	switch {
	case s.publisher != nil:
		msg, err := s.publisher.PublishProcessFile(ctx, file)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to enqueue file", log.FieldSource, file, log.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "queue unavailable"})
			return
		}
		logger.InfoContext(ctx, "File enqueued", log.FieldSource, file, "job_id", msg.ID.String())
		writeJSON(w, http.StatusAccepted, processResponse{Status: "queued", Path: file, JobID: msg.ID.String()})

	case s.processor != nil:
		summary, err := s.processor.Process(ctx, file)
		if errors.Is(err, ingest.ErrFatalInput) {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
			return
		}
		if err != nil {
			logger.ErrorContext(ctx, "Processing failed", log.FieldSource, file, log.FieldError, err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "processing failed"})
			return
		}
		sr := toSummaryResponse(summary)
		writeJSON(w, http.StatusOK, processResponse{Status: string(core.RunSucceeded), Path: file, Summary: &sr})

	default:
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "processing is not configured"})
	}
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := clampLimit(r.URL.Query().Get("limit"), 20, 100)
	runs, err := s.reports.LatestRuns(r.Context(), limit)
	if err != nil {
		s.reportError(w, r, err)
		return
	}

	out := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		rr := runResponse{
			ID:        run.ID,
			Source:    run.Source,
			Status:    string(run.Status),
			Error:     run.Error,
			StartedAt: run.StartedAt,
			Summary:   toSummaryResponse(run.Summary),
		}
		if !run.FinishedAt.IsZero() {
			finished := run.FinishedAt
			rr.FinishedAt = &finished
		}
		out = append(out, rr)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	})
}

// handleReady checks templates and the database.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if err := s.reports.Ping(ctx); err != nil {
		checks["database"] = "failed: " + err.Error()
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	checks["rate_limiter"] = map[string]any{"active_clients": s.limiter.activeClients()}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}
