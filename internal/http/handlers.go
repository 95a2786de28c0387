package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pursetto/internal/core"
	"pursetto/internal/log"
	"pursetto/internal/notify"
)

const maxBodyBytes = 1 << 16

// errorStatus maps the engine's sentinel errors onto HTTP statuses.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrInvalidPeriodKey):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound),
		errors.Is(err, core.ErrUnknownGoal):
		return http.StatusNotFound
	case errors.Is(err, core.ErrAlreadyMarked),
		errors.Is(err, core.ErrGoalCompleted):
		return http.StatusConflict
	case errors.Is(err, core.ErrConfirmRequired):
		return http.StatusPreconditionRequired
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldError, err, log.FieldPath, r.URL.Path)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// decodeJSON reads a bounded JSON body into dst, answering 400 itself
// when the body is unusable.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 {
			return -1
		}
		return r
	}, s)
}

func (s *Server) handlePeriod(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	key := strings.TrimSpace(r.URL.Query().Get("key"))
	sum, err := s.engine.Summary(key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// handleCurrentPeriod resolves today's period key under the configured
// keyspace, so clients need no calendar logic of their own.
func (s *Server) handleCurrentPeriod(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	pk, err := core.KeyForDate(s.periodMode, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": pk.String()})
}

type expenseRequest struct {
	PeriodKey string `json:"periodKey"`
	ID        int64  `json:"id,omitempty"`
	Amount    string `json:"amount,omitempty"`
	Category  string `json:"category,omitempty"`
}

func (s *Server) handleExpense(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createExpense(w, r)
	case http.MethodPut:
		s.editExpense(w, r)
	case http.MethodDelete:
		s.deleteExpense(w, r)
	default:
		methodNotAllowed(w, "POST, PUT, DELETE")
	}
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, category, err := parseExpenseFields(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	exp, err := s.engine.AddExpense(r.Context(), req.PeriodKey, amount, category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, exp)
}

func (s *Server) editExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, category, err := parseExpenseFields(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	exp, err := s.engine.EditExpense(r.Context(), req.PeriodKey, req.ID, amount, category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	deleted, err := s.engine.DeleteExpense(r.Context(), req.PeriodKey, req.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func parseExpenseFields(req expenseRequest) (core.Money, core.Category, error) {
	cents, err := core.ParseDecimalToCents(strings.TrimSpace(req.Amount))
	if err != nil {
		return core.Money{}, "", err
	}
	category, err := core.ParseCategory(sanitizeInput(req.Category))
	if err != nil {
		return core.Money{}, "", err
	}
	return core.Money{Cents: cents}, category, nil
}

func (s *Server) handleNoSpend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var req struct {
		PeriodKey string `json:"periodKey"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.engine.MarkNoSpend(r.Context(), req.PeriodKey); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearPeriod(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var req struct {
		PeriodKey string `json:"periodKey"`
		Confirm   bool   `json:"confirm"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.engine.ClearPeriod(r.Context(), req.PeriodKey, req.Confirm); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var req struct {
		From         string `json:"from"`
		Direction    string `json:"direction"`
		ConfirmBreak bool   `json:"confirmBreak"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	var forward bool
	switch req.Direction {
	case "forward":
		forward = true
	case "backward":
		forward = false
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "direction must be forward or backward"})
		return
	}
	key, err := s.engine.Navigate(r.Context(), req.From, forward, req.ConfirmBreak)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	prof, level := s.engine.Profile()
	writeJSON(w, http.StatusOK, map[string]any{
		"profile": prof,
		"level":   level,
	})
}

func (s *Server) handleAllowance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, "PUT")
		return
	}
	var req struct {
		Amount string `json:"amount"`
		Mode   string `json:"mode"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	cents, err := core.ParseNonNegativeToCents(strings.TrimSpace(req.Amount))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.engine.SetAllowance(r.Context(), core.Money{Cents: cents}, core.AllowanceMode(req.Mode)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActivateGoal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var req struct {
		Preset string `json:"preset"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.engine.ActivateGoal(r.Context(), core.GoalRef(req.Preset)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	type goalView struct {
		Preset      string `json:"preset"`
		Name        string `json:"name"`
		Description string `json:"description"`
		RewardXP    int64  `json:"rewardXp"`
		Active      bool   `json:"active"`
		Completed   bool   `json:"completed"`
	}
	goals := s.engine.Goals()
	out := make([]goalView, len(goals))
	for i, g := range goals {
		out[i] = goalView{
			Preset:      string(g.Preset.Ref),
			Name:        g.Preset.Name,
			Description: g.Preset.Description,
			RewardXP:    g.Preset.RewardXP,
			Active:      g.Active,
			Completed:   g.Completed,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFavourite(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.saveFavourite(w, r)
	case http.MethodDelete:
		s.removeFavourite(w, r)
	default:
		methodNotAllowed(w, "POST, DELETE")
	}
}

func (s *Server) saveFavourite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PeriodKey string `json:"periodKey"`
		ID        int64  `json:"id"`
		Name      string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	fav, err := s.engine.SaveFavourite(r.Context(), req.PeriodKey, req.ID, sanitizeInput(req.Name))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, fav)
}

func (s *Server) removeFavourite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	removed := s.engine.RemoveFavourite(r.Context(), req.Key)
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

func (s *Server) handleFavourites(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	favs := s.engine.Favourites()
	type favView struct {
		Key string `json:"key"`
		core.Favourite
	}
	out := make([]favView, len(favs))
	for i, f := range favs {
		out[i] = favView{Key: f.Key(), Favourite: f}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleReifyFavourite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var req struct {
		Key       string `json:"key"`
		ActiveKey string `json:"activeKey"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	exp, err := s.engine.ReifyFavourite(r.Context(), req.Key, req.ActiveKey)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, exp)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	drained := s.feed.Drain()
	if drained == nil {
		drained = []notify.Announcement{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"announcements": drained,
		"pending":       s.engine.PendingAnnouncements(),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.engine.Reset(r.Context(), req.Confirm); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
