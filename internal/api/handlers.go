package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/slok/blendeval/internal/app/list"
	"github.com/slok/blendeval/internal/app/progress"
	"github.com/slok/blendeval/internal/app/start"
	"github.com/slok/blendeval/internal/app/stop"
	"github.com/slok/blendeval/internal/model"
	"github.com/slok/blendeval/internal/resultview"
)

const (
	startStatusStarted = "started"
	startStatusNone    = "none"
)

type startRequest struct {
	Module string `json:"module"`
}

type startedTask struct {
	TaskID string `json:"taskId"`
	Name   string `json:"name"`
}

type startResponse struct {
	Tasks  []startedTask `json:"tasks"`
	Status string        `json:"status"`
}

type stopRequest struct {
	TaskIDs []string `json:"taskIds"`
}

type stopResponse struct {
	Stopped []string `json:"stopped"`
}

type progressResponse struct {
	TaskID       string       `json:"taskId"`
	Name         string       `json:"name"`
	Status       string       `json:"status"`
	Progress     model.Value  `json:"progress"`
	Total        model.Value  `json:"total"`
	Results      []*model.Row `json:"results"`
	Page         int          `json:"page"`
	PageSize     int          `json:"pageSize"`
	TotalResults int          `json:"totalResults"`
	TotalPages   int          `json:"totalPages"`
}

type task struct {
	TaskID    string    `json:"taskId"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type tasksResponse struct {
	Tasks []task `json:"tasks"`
}

type apiError struct {
	Error string `json:"error"`
}

func (h handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %s", err))
		return
	}

	started, err := h.startSvc.Run(r.Context(), start.Request{User: userFromCtx(r.Context()), Module: req.Module})
	if err != nil {
		h.writeAppErr(w, r, err)
		return
	}

	resp := startResponse{Tasks: []startedTask{}, Status: startStatusNone}
	for _, t := range started {
		resp.Tasks = append(resp.Tasks, startedTask{TaskID: t.TaskID, Name: t.Method})
	}
	if len(resp.Tasks) > 0 {
		resp.Status = startStatusStarted
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h handler) handleStop(w http.ResponseWriter, r *http.Request) {
	var req stopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %s", err))
		return
	}

	stopped, err := h.stopSvc.Run(r.Context(), stop.Request{TaskIDs: req.TaskIDs, User: userFromCtx(r.Context())})
	if err != nil {
		h.writeAppErr(w, r, err)
		return
	}
	if stopped == nil {
		stopped = []string{}
	}

	writeJSON(w, http.StatusOK, stopResponse{Stopped: stopped})
}

func (h handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := parseIntParam(q.Get("page"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Sprintf("invalid page: %s", err))
		return
	}
	pageSize, err := parseIntParam(q.Get("pageSize"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Sprintf("invalid pageSize: %s", err))
		return
	}

	p, err := h.progressSvc.Run(r.Context(), progress.Request{
		TaskID:   chi.URLParam(r, "taskID"),
		User:     userFromCtx(r.Context()),
		Sort:     q.Get("sort"),
		Order:    resultview.Order(q.Get("order")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		h.writeAppErr(w, r, err)
		return
	}

	results := p.Results
	if results == nil {
		results = []*model.Row{}
	}

	writeJSON(w, http.StatusOK, progressResponse{
		TaskID:       p.TaskID,
		Name:         p.Method,
		Status:       p.Status,
		Progress:     p.Progress,
		Total:        p.Total,
		Results:      results,
		Page:         p.Page,
		PageSize:     p.PageSize,
		TotalResults: p.TotalResults,
		TotalPages:   p.TotalPages,
	})
}

func (h handler) handleTasks(w http.ResponseWriter, r *http.Request) {
	req := list.Request{User: userFromCtx(r.Context())}
	if s := r.URL.Query().Get("status"); s != "" {
		status, err := model.ParseTaskStatus(s)
		if err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		req.StatusFilter = &status
	}

	ts, err := h.listSvc.Run(r.Context(), req)
	if err != nil {
		h.writeAppErr(w, r, err)
		return
	}

	resp := tasksResponse{Tasks: []task{}}
	for _, t := range ts {
		resp.Tasks = append(resp.Tasks, task{
			TaskID:    t.ID,
			Name:      t.Method,
			Status:    string(t.Status),
			CreatedAt: t.CreatedAt,
			UpdatedAt: t.UpdatedAt,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h handler) writeAppErr(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrNotValid):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrRemoteUnreachable):
		status = http.StatusBadGateway
	}

	if status >= 500 {
		h.logger.WithCtxValues(r.Context()).Errorf("request failed: %s", err)
	}
	writeErr(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiError{Error: msg})
}

// parseIntParam returns 0 for empty values so the defaults are used.
func parseIntParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("must be >= 1")
	}
	return n, nil
}
