package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gomonte/app"
	apperrors "gomonte/internal/errors"
	"gomonte/internal/report"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var body SimulationBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, apperrors.InvalidInput("malformed JSON body"))
		return
	}

	resp, err := s.runFromBody(r, body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var body CompareBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, apperrors.InvalidInput("malformed JSON body"))
		return
	}

	src, err := SimulationBody{Table: body.Table, Scenario: body.Scenario}.source()
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp, err := s.service.Compare(r.Context(), app.CompareRequest{
		Source:  src,
		Ladder:  body.Ladder,
		Seed:    body.Seed,
		Workers: body.Workers,
		Mode:    app.ProposalMode(body.Mode),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConverge(w http.ResponseWriter, r *http.Request) {
	var body ConvergeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, apperrors.InvalidInput("malformed JSON body"))
		return
	}

	src, err := SimulationBody{Table: body.Table, Scenario: body.Scenario}.source()
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp, err := s.service.Converge(r.Context(), app.ConvergeRequest{
		Source:      src,
		TrialCounts: body.TrialCounts,
		Replicates:  body.Replicates,
		Seed:        body.Seed,
		Workers:     body.Workers,
		Mode:        app.ProposalMode(body.Mode),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var body ReportBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, apperrors.InvalidInput("malformed JSON body"))
		return
	}

	resp, err := s.runFromBody(r, body.SimulationBody)
	if err != nil {
		s.writeError(w, err)
		return
	}

	format := report.Format(body.Format)
	if format == "" {
		format = report.FormatHTML
	}
	truth := resp.Expectation
	rendered, err := s.renderer.RenderRun(report.RunView{
		Record: resp.Record,
		Truth:  &truth,
		Interval: &report.Interval{
			Level: resp.Interval.Level,
			Lower: resp.Interval.Lower,
			Upper: resp.Interval.Upper,
		},
	}, format)
	if err != nil {
		s.writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(rendered)); err != nil {
		s.logger.Error("writing report response: %v", err)
	}
}

func (s *Server) handleScenarioList(w http.ResponseWriter, r *http.Request) {
	names, err := s.service.Scenarios(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"scenarios": names})
}

func (s *Server) handleScenarioRun(w http.ResponseWriter, r *http.Request) {
	var body SimulationBody
	// Overrides are optional; an empty body runs the scenario as filed.
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, apperrors.InvalidInput("malformed JSON body"))
		return
	}
	body.Scenario = chi.URLParam(r, "name")
	body.Table = nil

	resp, err := s.runFromBody(r, body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// runFromBody maps a simulation body onto the service run call.
func (s *Server) runFromBody(r *http.Request, body SimulationBody) (*app.RunResponse, error) {
	src, err := body.source()
	if err != nil {
		return nil, err
	}
	return s.service.Run(r.Context(), app.RunRequest{
		Source:  src,
		Trials:  body.Trials,
		Seed:    body.Seed,
		Workers: body.Workers,
		Mode:    app.ProposalMode(body.Mode),
		Level:   body.Level,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response: %v", err)
	}
}

// writeError maps domain failures onto status codes: invalid tables and
// inputs are the caller's fault, missing scenarios are 404, the rest is
// ours.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	appErr := apperrors.FromDomain(err)

	status := http.StatusInternalServerError
	switch appErr.Code {
	case apperrors.CodeInvalidDistribution, apperrors.CodeInvalidInput:
		status = http.StatusBadRequest
	case apperrors.CodeScenarioNotFound:
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed: %v", err)
	}

	s.writeJSON(w, status, ErrorBody{Error: appErr.Message, Code: appErr.Code})
}

func contentType(f report.Format) string {
	switch f {
	case report.FormatHTML:
		return "text/html; charset=utf-8"
	case report.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}
