package httpapi

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/BthnIsler/finoria/internal/usecase/advisor"
)

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q parameter is required")
		return
	}

	articles := s.svc.News.Top(r.Context(), query)
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleStockSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q parameter is required")
		return
	}

	matches, err := s.svc.Search.SearchEquities(r.Context(), query)
	if err != nil {
		mapError(w, err)
		return
	}

	if market := r.URL.Query().Get("market"); market != "" {
		filtered := matches[:0]
		for _, m := range matches {
			if strings.EqualFold(m.Market, market) {
				filtered = append(filtered, m)
			}
		}
		matches = filtered
	}
	writeJSON(w, http.StatusOK, matches)
}

type analysisRequest struct {
	HoldingID uuid.UUID `json:"holdingId"`
}

type advisorResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if !s.svc.Advisor.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "AI advisor is not configured")
		return
	}

	var req analysisRequest
	if !decodeBody(w, r, &req) {
		return
	}

	h, err := s.svc.Holdings.Get(r.Context(), req.HoldingID)
	if err != nil {
		mapError(w, err)
		return
	}

	reply, err := s.svc.Advisor.Analyze(r.Context(), h)
	if err != nil {
		writeError(w, http.StatusBadGateway, "analysis failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, advisorResponse{Reply: reply})
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Message string        `json:"message"`
	History []chatMessage `json:"history"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !s.svc.Advisor.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "AI advisor is not configured")
		return
	}

	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	hs, err := s.svc.Holdings.List(r.Context(), userFrom(r))
	if err != nil {
		mapError(w, err)
		return
	}

	history := make([]advisor.Message, 0, len(req.History))
	for _, m := range req.History {
		history = append(history, advisor.Message{Role: m.Role, Content: m.Content})
	}

	reply, err := s.svc.Advisor.Chat(r.Context(), history, req.Message, advisor.PortfolioContext(hs, s.currency))
	if err != nil {
		writeError(w, http.StatusBadGateway, "chat failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, advisorResponse{Reply: reply})
}
