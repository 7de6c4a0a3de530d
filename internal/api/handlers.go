// Package api exposes HTTP handlers for the exercise tracker.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"example.com/exercisetracker/internal/auth"
	"example.com/exercisetracker/internal/domain"
)

// Plain-text failure bodies. Clients tell failures apart from successes by the
// body not being JSON.
const (
	msgUserNotFound    = "Could not find user"
	msgSaveExercise    = "There was an error saving the exercise"
	msgSaveUser        = "There was an error saving the user"
	msgListUsers       = "There was an error listing users"
	msgLoadExerciseLog = "There was an error loading the exercise log"
	msgEncodeResponse  = "There was an error encoding the response"
	msgStoreDown       = "store unavailable"
)

// StoreHealth reports the outcome of the latest store health check.
type StoreHealth interface {
	Up() bool
}

// Options tunes handler behaviour.
type Options struct {
	// StrictStatusCodes answers not-found with 404 and store failures with 500.
	// By default every logical failure is answered with 200.
	StrictStatusCodes bool
	// RequireScopes enforces token scopes on every API route. Requests must
	// already carry claims from auth.Middleware.
	RequireScopes bool
	// StoreHealth, when set, makes /healthz fail while the store is down.
	StoreHealth StoreHealth
	Logger      logrus.FieldLogger
}

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service       *domain.Service
	strict        bool
	requireScopes bool
	storeHealth   StoreHealth
	log           logrus.FieldLogger
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, opts Options) *Handler {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		service:       service,
		strict:        opts.StrictStatusCodes,
		requireScopes: opts.RequireScopes,
		storeHealth:   opts.StoreHealth,
		log:           log,
	}
}

// RegisterRoutes wires endpoints to the router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	read := h.guard(auth.ScopeLogsRead, auth.ScopeLogsWrite)
	write := h.guard(auth.ScopeLogsWrite)

	r.Handle("/api/users", read(http.HandlerFunc(h.listUsers))).Methods(http.MethodGet)
	r.Handle("/api/users", write(http.HandlerFunc(h.createUser))).Methods(http.MethodPost)
	r.Handle("/api/users/{id}/logs", read(http.HandlerFunc(h.exerciseLog))).Methods(http.MethodGet)
	r.Handle("/api/users/{id}/exercises", write(http.HandlerFunc(h.createExercise))).Methods(http.MethodPost)
	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
}

func (h *Handler) guard(scopes ...string) func(http.Handler) http.Handler {
	if !h.requireScopes {
		return func(next http.Handler) http.Handler { return next }
	}
	return auth.RequireScope(scopes...)
}

// healthz reports OK unless the last store health check failed.
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if h.storeHealth != nil && !h.storeHealth.Up() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(msgStoreDown))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.log.WithError(err).Error("list users failed")
		h.fail(w, http.StatusInternalServerError, msgListUsers)
		return
	}

	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	h.writeJSON(w, http.StatusOK, views)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(r)
	if err != nil {
		h.log.WithError(err).Warn("unreadable create user body")
		h.fail(w, http.StatusBadRequest, msgSaveUser)
		return
	}

	user, err := h.service.CreateUser(r.Context(), form.Get("username"))
	if err != nil {
		h.log.WithError(err).Error("create user failed")
		h.fail(w, http.StatusInternalServerError, msgSaveUser)
		return
	}
	h.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user created")
	h.writeJSON(w, http.StatusOK, toUserView(user))
}

func (h *Handler) exerciseLog(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	query := parseLogQuery(r.URL.Query())

	user, exercises, err := h.service.ExerciseLog(r.Context(), id, query)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			h.fail(w, http.StatusNotFound, msgUserNotFound)
			return
		}
		h.log.WithError(err).WithField("user_id", id).Error("exercise log query failed")
		h.fail(w, http.StatusInternalServerError, msgLoadExerciseLog)
		return
	}

	resp := ExerciseLogResponse{
		ID:       user.ID,
		Username: user.Username,
		Count:    len(exercises),
		Log:      make([]LogEntryView, 0, len(exercises)),
	}
	for _, e := range exercises {
		resp.Log = append(resp.Log, toLogEntryView(e))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) createExercise(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	form, err := readForm(r)
	if err != nil {
		h.log.WithError(err).Warn("unreadable create exercise body")
		h.fail(w, http.StatusBadRequest, msgSaveExercise)
		return
	}

	input, err := parseExerciseInput(id, form)
	if err != nil {
		// An unknown user is reported ahead of invalid input.
		if _, findErr := h.service.FindUser(r.Context(), id); errors.Is(findErr, domain.ErrUserNotFound) {
			h.fail(w, http.StatusNotFound, msgUserNotFound)
			return
		}
		h.log.WithError(err).WithField("user_id", id).Warn("invalid exercise")
		h.fail(w, http.StatusBadRequest, msgSaveExercise)
		return
	}

	user, exercise, err := h.service.CreateExercise(r.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			h.fail(w, http.StatusNotFound, msgUserNotFound)
			return
		}
		if errors.Is(err, domain.ErrInvalidExercise) {
			h.log.WithError(err).WithField("user_id", id).Warn("invalid exercise")
			h.fail(w, http.StatusBadRequest, msgSaveExercise)
			return
		}
		h.log.WithError(err).WithField("user_id", id).Error("create exercise failed")
		h.fail(w, http.StatusInternalServerError, msgSaveExercise)
		return
	}

	h.writeJSON(w, http.StatusOK, ExerciseView{
		ID:          user.ID,
		Username:    user.Username,
		Description: exercise.Description,
		Duration:    exercise.Duration,
		Date:        domain.FormatDate(exercise.Date),
	})
}

// fail writes a plain-text failure. The status is only used in strict mode.
func (h *Handler) fail(w http.ResponseWriter, status int, message string) {
	if !h.strict {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

// writeJSON encodes before writing headers so a payload that cannot be
// encoded never produces a half-written response.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.log.WithError(err).Error("encode response")
		h.fail(w, http.StatusInternalServerError, msgEncodeResponse)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
