package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	apperr "github.com/Dan9191/money-marathon/internal/errors"
	"github.com/Dan9191/money-marathon/internal/export"
	"github.com/Dan9191/money-marathon/internal/httpx"
	"github.com/Dan9191/money-marathon/internal/models"
	"github.com/Dan9191/money-marathon/internal/service"
)

type createPlanRequest struct {
	Name       string          `json:"name"`
	StartWager decimal.Decimal `json:"start_wager"`
	Odds       decimal.Decimal `json:"odds"`
	Days       int             `json:"days"`
}

type dayResultRequest struct {
	Result models.DayResult `json:"result"`
}

type restartRequest struct {
	Day int `json:"day"`
}

// CreatePlan creates a plan and its progression
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req createPlanRequest
	if !h.decode(w, r, &req) {
		return
	}
	d, err := h.svc.CreatePlan(r.Context(), p, service.PlanInput{
		Name:       req.Name,
		StartWager: req.StartWager,
		Odds:       req.Odds,
		Days:       req.Days,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, d)
}

// ListPlans lists the caller's plans
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	plans, err := h.svc.ListPlans(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, plans)
}

// GetPlan returns one plan with day entries and statistics
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	d, err := h.svc.GetPlan(r.Context(), p, mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

// DeletePlan deletes a plan
func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeletePlan(r.Context(), p, mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportPlan downloads a plan as XML
func (h *Handler) ExportPlan(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	d, err := h.svc.GetPlan(r.Context(), p, mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="plan-%s.xml"`, d.Plan.ID))
	if err := export.WritePlanXML(w, d); err != nil {
		h.log.WithError(err).Warnf("Failed to stream export of plan %s", d.Plan.ID)
	}
}

// UpdateDayResult records a win or loss for one day
func (h *Handler) UpdateDayResult(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	day, err := pathDay(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req dayResultRequest
	if !h.decode(w, r, &req) {
		return
	}
	d, err := h.svc.UpdateDayResult(r.Context(), p, mux.Vars(r)["id"], day, req.Result)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

// RestartPlan regenerates the progression from the requested day
func (h *Handler) RestartPlan(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req restartRequest
	if !h.decode(w, r, &req) {
		return
	}
	d, err := h.svc.RestartPlan(r.Context(), p, mux.Vars(r)["id"], req.Day)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

// Dashboard returns the caller's plan summary
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	sum, err := h.svc.Dashboard(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sum)
}

func pathDay(r *http.Request) (int, error) {
	day, err := strconv.Atoi(mux.Vars(r)["day"])
	if err != nil {
		return 0, apperr.Invalid("day", "must be an integer")
	}
	return day, nil
}
