package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tactical-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tactical-tictactoe/internal/entity"
)

type Handlers interface {
	Briefing(w http.ResponseWriter, r *http.Request)

	CreateSession(w http.ResponseWriter, r *http.Request)
	GetSession(w http.ResponseWriter, r *http.Request)
	DeleteSession(w http.ResponseWriter, r *http.Request)
	Events(w http.ResponseWriter, r *http.Request)

	MakeTurn(w http.ResponseWriter, r *http.Request)
	Reset(w http.ResponseWriter, r *http.Request)
	SelectMode(w http.ResponseWriter, r *http.Request)
	ChangeMode(w http.ResponseWriter, r *http.Request)

	Results(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
}

type gameUseCase interface {
	CreateSession(ctx context.Context, mode entity.Mode) (*entity.Snapshot, error)
	GetSession(ctx context.Context, id string) (*entity.Snapshot, error)
	DeleteSession(ctx context.Context, id string) error
	SessionUpdates(ctx context.Context, id string) (<-chan *entity.Snapshot, error)

	MakeTurn(ctx context.Context, id string, cell int) (*entity.Snapshot, bool, error)
	Reset(ctx context.Context, id string) (*entity.Snapshot, error)
	SelectMode(ctx context.Context, id string, mode entity.Mode) (*entity.Snapshot, error)
	ChangeMode(ctx context.Context, id string) (*entity.Snapshot, error)

	Results(ctx context.Context, limit int) ([]*entity.Result, error)
	Stats(ctx context.Context) (*entity.Stats, error)
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type moveRequest struct {
	Cell *int `json:"cell"`
}

type moveResponse struct {
	Accepted bool             `json:"accepted"`
	Session  *entity.Snapshot `json:"session"`
}

type briefingResponse struct {
	Lines          []string `json:"lines"`
	StepIntervalMS int64    `json:"step_interval_ms"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handlers struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
}

func NewHandlers(logger *slog.Logger, gameUseCase gameUseCase) Handlers {
	return &handlers{
		logger:      logger.With("component", "rest-handlers"),
		gameUseCase: gameUseCase,
	}
}

func (that *handlers) Briefing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, briefingResponse{
		Lines:          entity.Briefing,
		StepIntervalMS: entity.BriefingStepInterval.Milliseconds(),
	})
}

func (that *handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	mode, ok := that.decodeMode(w, r)
	if !ok {
		return
	}

	snapshot, err := that.gameUseCase.CreateSession(r.Context(), mode)
	if err != nil {
		that.writeError(w, "CreateSession", err)
		return
	}

	writeJSON(w, http.StatusCreated, snapshot)
}

func (that *handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.gameUseCase.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "GetSession", err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (that *handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := that.gameUseCase.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, "DeleteSession", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) MakeTurn(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Cell == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body must be {\"cell\": <0-8>}"})
		return
	}

	snapshot, accepted, err := that.gameUseCase.MakeTurn(r.Context(), chi.URLParam(r, "id"), *req.Cell)
	if err != nil {
		that.writeError(w, "MakeTurn", err)
		return
	}

	writeJSON(w, http.StatusOK, moveResponse{Accepted: accepted, Session: snapshot})
}

func (that *handlers) Reset(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.gameUseCase.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "Reset", err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (that *handlers) SelectMode(w http.ResponseWriter, r *http.Request) {
	mode, ok := that.decodeMode(w, r)
	if !ok {
		return
	}

	snapshot, err := that.gameUseCase.SelectMode(r.Context(), chi.URLParam(r, "id"), mode)
	if err != nil {
		that.writeError(w, "SelectMode", err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (that *handlers) ChangeMode(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.gameUseCase.ChangeMode(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "ChangeMode", err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (that *handlers) Results(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a number"})
			return
		}

		limit = parsed
	}

	results, err := that.gameUseCase.Results(r.Context(), limit)
	if err != nil {
		that.writeError(w, "Results", err)
		return
	}

	if results == nil {
		results = []*entity.Result{}
	}

	writeJSON(w, http.StatusOK, results)
}

func (that *handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := that.gameUseCase.Stats(r.Context())
	if err != nil {
		that.writeError(w, "Stats", err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (that *handlers) decodeMode(w http.ResponseWriter, r *http.Request) (entity.Mode, bool) {
	var req modeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return "", false
	}

	mode, err := entity.ParseMode(req.Mode)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return "", false
	}

	return mode, true
}

func (that *handlers) writeError(w http.ResponseWriter, method string, err error) {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound), errors.Is(err, apperror.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: apperror.ErrSessionNotFound.Error()})
	case errors.Is(err, entity.ErrUnknownMode):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		that.logger.Error("request failed", "method", method, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
