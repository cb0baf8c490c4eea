package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/clientintel/internal/briefing"
	"github.com/wonny/clientintel/internal/contracts"
	"github.com/wonny/clientintel/pkg/logger"
)

// IntelHandler serves ticker, quote, news and briefing endpoints
// ⭐ SSOT: REST handlers for briefing data live on this struct
type IntelHandler struct {
	svc    Services
	logger *logger.Logger
}

// NewIntelHandler creates a new intel handler
func NewIntelHandler(svc Services, log *logger.Logger) *IntelHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &IntelHandler{
		svc:    svc,
		logger: log.WithComponent("api"),
	}
}

// SearchTicker resolves a company name to a symbol
// GET /api/tickers/search?q=Microsoft
func (h *IntelHandler) SearchTicker(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondError(w, http.StatusBadRequest, "q is required")
		return
	}

	result, err := h.svc.Tickers.SearchTicker(r.Context(), q)
	if err != nil {
		h.fail(w, err, "Ticker search failed", map[string]interface{}{"query": q})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetPerformance returns the current quote with derived metrics
// GET /api/stocks/{ticker}/performance
func (h *IntelHandler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])

	rec, err := h.svc.Quotes.FetchQuote(r.Context(), ticker)
	if err != nil {
		h.fail(w, err, "Quote fetch failed", map[string]interface{}{"ticker": ticker})
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// GetNews runs a single news mode
// GET /api/news?company=Microsoft&ticker=MSFT&mode=curated|broad|syndication
func (h *IntelHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	company := strings.TrimSpace(q.Get("company"))
	ticker := strings.ToUpper(strings.TrimSpace(q.Get("ticker")))
	if company == "" {
		respondError(w, http.StatusBadRequest, "company is required")
		return
	}

	mode, ok := contracts.ParseNewsMode(q.Get("mode"))
	if !ok {
		respondError(w, http.StatusBadRequest, "mode must be curated, broad or syndication")
		return
	}

	query := company
	if mode == contracts.ModeSyndication && ticker != "" {
		query = company + " " + ticker
	}

	articles, err := h.svc.News.Fetch(r.Context(), query, mode)
	if err != nil {
		h.fail(w, err, "News fetch failed", map[string]interface{}{"query": query, "mode": mode})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"mode":     mode,
		"query":    query,
		"count":    len(articles),
		"articles": articles,
	})
}

// BriefingResponse wraps a briefing with its rendered markdown
type BriefingResponse struct {
	*contracts.Briefing
	FormattedBriefing string `json:"formatted_briefing,omitempty"`
}

// GenerateBriefing builds a fresh briefing and archives it when an archive is configured
// GET /api/briefings/{ticker}?company=Microsoft&format=json|markdown
func (h *IntelHandler) GenerateBriefing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])
	company := strings.TrimSpace(r.URL.Query().Get("company"))
	format := r.URL.Query().Get("format")

	b, err := h.svc.Briefings.GenerateBriefing(ctx, company, ticker)
	if err != nil {
		h.fail(w, err, "Briefing failed", map[string]interface{}{"ticker": ticker, "company": company})
		return
	}

	if h.svc.Archive != nil {
		if err := h.svc.Archive.Save(ctx, b); err != nil {
			h.logger.WithError(err).WithField("briefing_id", b.ID).Warn("Failed to archive briefing")
		}
	}

	markdown := briefing.RenderMarkdown(b)
	if format == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(markdown))
		return
	}

	respondJSON(w, http.StatusOK, BriefingResponse{Briefing: b, FormattedBriefing: markdown})
}

// ListBriefings returns the newest archived briefings
// GET /api/briefings?ticker=MSFT&limit=20
func (h *IntelHandler) ListBriefings(w http.ResponseWriter, r *http.Request) {
	if h.svc.Archive == nil {
		respondError(w, http.StatusServiceUnavailable, "briefing archive is not configured")
		return
	}

	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}
	ticker := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("ticker")))

	summaries, err := h.svc.Archive.Recent(r.Context(), ticker, limit)
	if err != nil {
		h.fail(w, err, "Failed to list briefings", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(summaries),
		"briefings": summaries,
	})
}

// GetArchivedBriefing returns one stored briefing
// GET /api/briefings/id/{id}
func (h *IntelHandler) GetArchivedBriefing(w http.ResponseWriter, r *http.Request) {
	if h.svc.Archive == nil {
		respondError(w, http.StatusServiceUnavailable, "briefing archive is not configured")
		return
	}

	id := mux.Vars(r)["id"]
	b, err := h.svc.Archive.Get(r.Context(), id)
	if err != nil {
		h.fail(w, err, "Failed to load briefing", map[string]interface{}{"briefing_id": id})
		return
	}

	respondJSON(w, http.StatusOK, BriefingResponse{Briefing: b, FormattedBriefing: briefing.RenderMarkdown(b)})
}

// fail logs err and writes the mapped status
func (h *IntelHandler) fail(w http.ResponseWriter, err error, msg string, fields map[string]interface{}) {
	status := statusFor(err)
	log := h.logger.WithError(err)
	if fields != nil {
		log = log.WithFields(fields)
	}
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		log.Error(msg)
	} else {
		log.Warn(msg)
	}
	respondError(w, status, err.Error())
}
