package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/money-marathon/internal/auth"
	apperr "github.com/Dan9191/money-marathon/internal/errors"
	"github.com/Dan9191/money-marathon/internal/httpx"
	"github.com/Dan9191/money-marathon/internal/models"
	"github.com/Dan9191/money-marathon/internal/service"
)

const maxBodyBytes = 1 << 16

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// NewRouter registers every route. authenticate guards the /api routes that
// need a signed-in user.
func NewRouter(h *Handler, authenticate mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	// Public routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)

	// Protected routes
	protected := api.NewRoute().Subrouter()
	protected.Use(authenticate)
	protected.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/auth/user", h.CurrentUser).Methods(http.MethodGet)
	protected.HandleFunc("/dashboard", h.Dashboard).Methods(http.MethodGet)
	protected.HandleFunc("/plans", h.CreatePlan).Methods(http.MethodPost)
	protected.HandleFunc("/plans", h.ListPlans).Methods(http.MethodGet)
	protected.HandleFunc("/plans/{id}", h.GetPlan).Methods(http.MethodGet)
	protected.HandleFunc("/plans/{id}", h.DeletePlan).Methods(http.MethodDelete)
	protected.HandleFunc("/plans/{id}/export.xml", h.ExportPlan).Methods(http.MethodGet)
	protected.HandleFunc("/plans/{id}/days/{day}", h.UpdateDayResult).Methods(http.MethodPatch)
	protected.HandleFunc("/plans/{id}/restart", h.RestartPlan).Methods(http.MethodPost)

	return r
}

// Health reports that the process is serving requests
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, sess)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sess)
}

// Logout revokes the token the request was made with
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing token")
		return
	}
	if err := h.svc.Logout(r.Context(), claims); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// CurrentUser returns the signed-in user
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing token")
	}
	return p, ok
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.ReadJSON(r, dst, maxBodyBytes); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := httpx.StatusFor(err)
	if status == http.StatusInternalServerError {
		entry := h.log.WithError(err).WithField("path", r.URL.Path)
		if errors.Is(err, apperr.ErrInconsistentState) {
			entry.Error("Plan data is inconsistent")
		} else {
			entry.Error("Request failed")
		}
	}
	httpx.WriteErr(w, err)
}
