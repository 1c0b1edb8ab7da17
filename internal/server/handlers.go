package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/verdict/internal/common"
	"github.com/bobmcallan/verdict/internal/interfaces"
)

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": common.GetVersion(),
		"uptime":  time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleConfig exposes the running config with secrets redacted.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	cfg := s.app.Config
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment": cfg.Environment,
		"server": map[string]interface{}{
			"host": cfg.Server.Host,
			"port": cfg.Server.Port,
		},
		"pipeline": cfg.Pipeline,
		"clients": map[string]interface{}{
			"eodhd":        providerSummary(cfg.Clients.EODHD),
			"fmp":          providerSummary(cfg.Clients.FMP),
			"alphavantage": providerSummary(cfg.Clients.AlphaVantage),
		},
	})
}

func providerSummary(p common.ProviderConfig) map[string]interface{} {
	return map[string]interface{}{
		"base_url":   p.BaseURL,
		"rate_limit": p.RateLimit,
		"configured": p.APIKey != "",
	}
}

// --- Analysis handlers ---

// handleAnalyze handles GET /api/analyze/{symbol}?force=true.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := PathParam(r, "/api/analyze/", "")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}
	force := r.URL.Query().Get("force") == "true"

	report, err := s.app.AnalyzerService.Analyze(r.Context(), symbol, force)
	if err != nil {
		s.writeAnalysisError(w, symbol, err)
		return
	}

	WriteJSON(w, http.StatusOK, report)
}

// handleScan handles POST /api/scan with {"symbols": [...], "force": bool}.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Symbols []string `json:"symbols"`
		Force   bool     `json:"force"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if len(req.Symbols) == 0 {
		WriteError(w, http.StatusBadRequest, "At least one symbol is required")
		return
	}

	result, err := s.app.AnalyzerService.Scan(r.Context(), req.Symbols, req.Force)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Scan error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

func (s *Server) writeAnalysisError(w http.ResponseWriter, symbol string, err error) {
	switch {
	case errors.Is(err, interfaces.ErrSymbolNotFound):
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Symbol not found: %s", symbol))
	case interfaces.IsTransient(err):
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Provider unavailable: %v", err))
	default:
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Analysis error: %v", err))
	}
}

// --- Record handlers ---

func (s *Server) handleRecordList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbols, err := s.app.Storage.RecordStore().ListSymbols(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing records: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"symbols": symbols,
	})
}

// routeRecords dispatches /api/records/{symbol}.
func (s *Server) routeRecords(w http.ResponseWriter, r *http.Request) {
	symbol := PathParam(r, "/api/records/", "")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		record, err := s.app.Storage.RecordStore().GetRecord(r.Context(), symbol)
		if err != nil {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Record not found: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, record)
	case http.MethodDelete:
		if err := s.app.Storage.RecordStore().DeleteRecord(r.Context(), symbol); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Delete error: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"deleted": symbol})
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}

// --- Report handlers ---

// routeReports dispatches /api/reports/{symbol}.
func (s *Server) routeReports(w http.ResponseWriter, r *http.Request) {
	symbol := PathParam(r, "/api/reports/", "")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		report, err := s.app.Storage.ReportStore().GetLatestReport(r.Context(), symbol)
		if err != nil {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Report not found: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, report)
	case http.MethodDelete:
		count, err := s.app.Storage.ReportStore().DeleteReports(r.Context(), symbol)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Delete error: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"deleted": count})
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}

// handleRunReports handles GET /api/runs/{run_id}.
func (s *Server) handleRunReports(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	runID := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if runID == "" || strings.Contains(runID, "/") {
		WriteError(w, http.StatusBadRequest, "Run ID is required")
		return
	}

	reports, err := s.app.Storage.ReportStore().GetReportByRun(r.Context(), runID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error loading run: %v", err))
		return
	}
	if len(reports) == 0 {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("No reports for run: %s", runID))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":  runID,
		"reports": reports,
	})
}
