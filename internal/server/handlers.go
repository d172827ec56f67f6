package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/raysh454/georisk/internal/app"
	"github.com/raysh454/georisk/internal/logging"
	"github.com/raysh454/georisk/internal/lore"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: "georisk",
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	st, err := s.orchestrator.Statistics(r.Context())
	if err != nil {
		s.fail(w, "statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Risk

func (s *Server) handleCalculateRisk(w http.ResponseWriter, r *http.Request) {
	var body app.AssessmentRequest
	if !decodeBody(w, r, &body) {
		return
	}

	a, err := s.orchestrator.Assess(r.Context(), body)
	if err != nil {
		s.fail(w, "calculating risk", err)
		return
	}
	s.logger.Info("calculated risk",
		logging.Field{Key: "r_score", Value: a.Result.R},
		logging.Field{Key: "risk_level", Value: a.Result.Level})
	writeJSON(w, http.StatusOK, CalculateRiskResponse{
		Success: true,
		Message: "Risk calculated successfully",
		Data:    newCalculateRiskData(a),
	})
}

func (s *Server) handleListRisks(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if v, err := strconv.Atoi(ls); err == nil && v > 0 {
			limit = v
		}
	}
	list, err := s.orchestrator.ListAssessments(r.Context(), r.URL.Query().Get("site"), limit)
	if err != nil {
		s.fail(w, "listing risks", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetRisk(w http.ResponseWriter, r *http.Request) {
	a, err := s.orchestrator.GetAssessment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "getting risk", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleCompareRisks(w http.ResponseWriter, r *http.Request) {
	base, head := r.URL.Query().Get("base"), r.URL.Query().Get("head")
	if base == "" || head == "" {
		writeError(w, http.StatusBadRequest, "base and head are required")
		return
	}
	d, err := s.orchestrator.CompareAssessments(r.Context(), base, head)
	if err != nil {
		s.fail(w, "comparing risks", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Sites

func (s *Server) handleCreateSite(w http.ResponseWriter, r *http.Request) {
	var body CreateSiteRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Slug == "" && body.Name == "" {
		writeError(w, http.StatusBadRequest, "slug or name is required")
		return
	}

	site, err := s.orchestrator.CreateSite(r.Context(), body.Slug, body.Name, body.HazardType, body.Latitude, body.Longitude)
	if err != nil {
		s.fail(w, "creating site", err)
		return
	}
	s.logger.Info("created site", logging.Field{Key: "slug", Value: site.Slug})
	writeJSON(w, http.StatusCreated, site)
}

func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := s.orchestrator.ListSites(r.Context())
	if err != nil {
		s.fail(w, "listing sites", err)
		return
	}
	writeJSON(w, http.StatusOK, sites)
}

func (s *Server) handleGetSite(w http.ResponseWriter, r *http.Request) {
	site, err := s.orchestrator.GetSite(r.Context(), chi.URLParam(r, "site"))
	if err != nil {
		s.fail(w, "getting site", err)
		return
	}
	writeJSON(w, http.StatusOK, site)
}

func (s *Server) handleSiteLoreSignal(w http.ResponseWriter, r *http.Request) {
	sig, err := s.orchestrator.SiteLore(r.Context(), chi.URLParam(r, "site"))
	if err != nil {
		s.fail(w, "lore signal", err)
		return
	}
	writeJSON(w, http.StatusOK, sig)
}

// Lore

func (s *Server) handleAddLore(w http.ResponseWriter, r *http.Request) {
	var rec lore.Record
	if !decodeBody(w, r, &rec) {
		return
	}
	saved, err := s.orchestrator.ScoreLore(r.Context(), chi.URLParam(r, "site"), rec)
	if err != nil {
		s.fail(w, "adding lore", err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListLore(w http.ResponseWriter, r *http.Request) {
	records, err := s.orchestrator.ListLore(r.Context(), chi.URLParam(r, "site"))
	if err != nil {
		s.fail(w, "listing lore", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleScoreLore(w http.ResponseWriter, r *http.Request) {
	var body LoreScoreRequest
	if !decodeBody(w, r, &body) {
		return
	}
	scored, score, err := s.orchestrator.ScoreRecordWith(body.Record, body.Weights)
	if err != nil {
		s.fail(w, "scoring lore", err)
		return
	}
	writeJSON(w, http.StatusOK, LoreScoreResponse{Record: scored, Score: score})
}

func (s *Server) handleGetLore(w http.ResponseWriter, r *http.Request) {
	rec, err := s.orchestrator.GetLore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "getting lore", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateLore(w http.ResponseWriter, r *http.Request) {
	var rec lore.Record
	if !decodeBody(w, r, &rec) {
		return
	}
	saved, err := s.orchestrator.UpdateLore(r.Context(), chi.URLParam(r, "id"), rec)
	if err != nil {
		s.fail(w, "updating lore", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteLore(w http.ResponseWriter, r *http.Request) {
	if err := s.orchestrator.DeleteLore(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, "deleting lore", err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleLoreRevisions(w http.ResponseWriter, r *http.Request) {
	hist, err := s.orchestrator.LoreHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "lore revisions", err)
		return
	}
	writeJSON(w, http.StatusOK, hist)
}
