package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"codeberg.org/snonux/lingochain/internal/analytics"
	"codeberg.org/snonux/lingochain/internal/locale"
	"codeberg.org/snonux/lingochain/internal/translator"
	"codeberg.org/snonux/lingochain/internal/tree"
)

type translateRequest struct {
	Text    string `json:"text"`
	Target  string `json:"target"`
	Source  string `json:"source"`
	Service string `json:"service"`
}

type translateResponse struct {
	Translation string `json:"translation"`
	Target      string `json:"target"`
	Service     string `json:"service,omitempty"`
	Cached      bool   `json:"cached"`
	Error       string `json:"error,omitempty"`
}

type batchRequest struct {
	Texts   []string `json:"texts"`
	Target  string   `json:"target"`
	Source  string   `json:"source"`
	Service string   `json:"service"`
}

type batchResponse struct {
	Translations []string `json:"translations"`
	Target       string   `json:"target"`
}

type treeRequest struct {
	Tree    *tree.Tree `json:"tree"`
	Target  string     `json:"target"`
	Source  string     `json:"source"`
	Service string     `json:"service"`
}

type treeResponse struct {
	Tree   *tree.Tree `json:"tree"`
	Target string     `json:"target"`
}

type detectRequest struct {
	Text string `json:"text"`
}

type analyticsResponse struct {
	analytics.Snapshot
	TotalRequests int64   `json:"total_requests"`
	HitRate       float64 `json:"hit_rate"`
}

type serviceInfo struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	InChain bool   `json:"in_chain"`
}

// handleTranslate handles POST /api/translate
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Text == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}
	orch, ok := s.chain(w, req.Service)
	if !ok {
		return
	}

	target := s.target(r, req.Target)
	res := orch.TranslateDetailed(r.Context(), req.Text, target, req.Source)

	resp := translateResponse{
		Translation: res.Text,
		Target:      target,
		Service:     res.Backend,
		Cached:      res.Cached,
	}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleTranslateBatch handles POST /api/translate/batch
func (s *Server) handleTranslateBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Texts) == 0 {
		respondError(w, http.StatusBadRequest, "texts must not be empty")
		return
	}
	orch, ok := s.chain(w, req.Service)
	if !ok {
		return
	}

	target := s.target(r, req.Target)
	translations := orch.TranslateBatch(r.Context(), req.Texts, target, req.Source, nil)
	respondJSON(w, http.StatusOK, batchResponse{Translations: translations, Target: target})
}

// handleTranslateTree handles POST /api/translate/tree
func (s *Server) handleTranslateTree(w http.ResponseWriter, r *http.Request) {
	var req treeRequest
	if !s.decode(w, r, &req) {
		return
	}
	orch, ok := s.chain(w, req.Service)
	if !ok {
		return
	}

	target := s.target(r, req.Target)
	translated, err := tree.NewTranslator(orch).TranslateTree(r.Context(), req.Tree, target, req.Source, nil)
	if err != nil {
		var invalid *tree.InvalidInputError
		if errors.As(err, &invalid) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, treeResponse{Tree: translated, Target: target})
}

// handleDetect handles POST /api/detect
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Text == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"language": s.orch.DetectLanguage(r.Context(), req.Text)})
}

// handleClearCache handles DELETE /api/cache. ?analytics=true clears the
// analytics as well.
func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if err := s.orch.ClearCache(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to clear cache: %v", err))
		return
	}

	if r.URL.Query().Get("analytics") == "true" {
		if err := s.orch.ResetAnalytics(r.Context()); err != nil {
			respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to clear analytics: %v", err))
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Cache cleared"})
}

// handleAnalytics handles GET /api/analytics
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	snap := s.orch.Analytics()
	respondJSON(w, http.StatusOK, analyticsResponse{
		Snapshot:      snap,
		TotalRequests: snap.TotalRequests(),
		HitRate:       snap.HitRate(),
	})
}

// handleServices handles GET /api/services
func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	inChain := make(map[string]bool)
	for _, name := range s.orch.Chain() {
		inChain[name] = true
	}

	var services []serviceInfo
	for _, name := range s.orch.Names() {
		b, _ := s.orch.Backend(name)
		services = append(services, serviceInfo{Name: name, Enabled: b.Enabled(), InChain: inChain[name]})
	}
	sort.Slice(services, func(i, j int) bool { return services[i].Name < services[j].Name })
	respondJSON(w, http.StatusOK, map[string]any{"services": services, "chain": s.orch.Chain()})
}

// decode reads a JSON body, answering 400 itself when that fails
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := io.Reader(r.Body)
	if s.cfg.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}

	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (s *Server) chain(w http.ResponseWriter, service string) (*translator.Orchestrator, bool) {
	if service == "" {
		return s.orch, true
	}
	if _, ok := s.orch.Backend(service); !ok {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown service: %s", service))
		return nil, false
	}
	return s.orch.WithChain(service), true
}

// target prefers the body, then the request locale, then the configured default
func (s *Server) target(r *http.Request, requested string) string {
	if requested != "" {
		return requested
	}
	if code := locale.FromContext(r.Context()); code != "" {
		return code
	}
	return s.orch.Config().TargetLang
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
