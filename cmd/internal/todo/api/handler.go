package todoapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tasktrack/cmd/internal/auth/api"
	"tasktrack/cmd/internal/httpjson"
	"tasktrack/cmd/internal/todo"

	"github.com/gorilla/mux"
)

const (
	msgNotFound  = "Todo not found"
	msgForbidden = "Not authorized"
	msgDeleted   = "Todo deleted"
)

// Handler wires HTTP task endpoints to todo.Service.
type Handler struct {
	log   *slog.Logger
	cfg   Config
	tasks *todo.Service
	now   func() time.Time
}

// NewHandler constructs a task Handler.
func NewHandler(log *slog.Logger, cfg Config, tasks *todo.Service) (*Handler, error) {
	if tasks == nil {
		return nil, errors.New("todoapi: nil service")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		log:   log,
		cfg:   cfg.normalized(),
		tasks: tasks,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// Register wires task routes onto r under prefix. Every route runs behind
// requireIdentity.
func (h *Handler) Register(r *mux.Router, prefix string, requireIdentity func(http.Handler) http.Handler) {
	if h == nil || r == nil || requireIdentity == nil {
		return
	}
	r.Handle(prefix+"/todos", requireIdentity(http.HandlerFunc(h.handleList))).Methods(http.MethodGet)
	r.Handle(prefix+"/todos", requireIdentity(http.HandlerFunc(h.handleCreate))).Methods(http.MethodPost)
	r.Handle(prefix+"/todos/{id}", requireIdentity(http.HandlerFunc(h.handleUpdate))).Methods(http.MethodPut, http.MethodPatch)
	r.Handle(prefix+"/todos/{id}", requireIdentity(http.HandlerFunc(h.handleDelete))).Methods(http.MethodDelete)
}

// ---- handlers ----

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	f, err := parseListFilter(r)
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	tasks, err := h.tasks.List(r.Context(), owner, f)
	if err != nil {
		h.writeTaskError(w, "todo.list", err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, toTaskResponses(tasks))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req createRequest
	if err := httpjson.DecodeLenient(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	in, err := req.toInput()
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	in.Now = h.now()

	t, err := h.tasks.Create(r.Context(), owner, in)
	if err != nil {
		h.writeTaskError(w, "todo.create", err)
		return
	}
	h.log.Info("todo.create.ok", "user_id", owner, "task_id", t.ID)
	httpjson.WriteJSON(w, http.StatusCreated, toTaskResponse(t))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]

	var (
		raw   map[string]json.RawMessage
		patch todo.Patch
	)
	err := httpjson.DecodeLenient(w, r, h.cfg.MaxBodyBytes, &raw)
	if err != nil {
		err = errors.New("invalid request body")
	} else {
		patch, err = parsePatch(raw)
	}
	if err != nil {
		// Ownership is reported before body problems so a bad body on a
		// foreign task still yields Forbidden.
		if gerr := h.tasks.Authorize(r.Context(), id, owner); gerr != nil {
			h.writeTaskError(w, "todo.update", gerr)
			return
		}
		httpjson.WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	patch.Now = h.now()

	t, err := h.tasks.Update(r.Context(), id, owner, patch)
	if err != nil {
		h.writeTaskError(w, "todo.update", err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, toTaskResponse(t))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.tasks.Delete(r.Context(), id, owner); err != nil {
		h.writeTaskError(w, "todo.delete", err)
		return
	}
	h.log.Info("todo.delete.ok", "user_id", owner, "task_id", id)
	httpjson.WriteJSON(w, http.StatusOK, httpjson.MessageBody{Message: msgDeleted})
}

// ---- helpers ----

func (h *Handler) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	u, ok := authapi.UserFromContext(r.Context())
	if !ok || strings.TrimSpace(u.ID) == "" {
		httpjson.WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
		return "", false
	}
	return u.ID, true
}

func (h *Handler) writeTaskError(w http.ResponseWriter, event string, err error) {
	switch {
	case todo.IsNotFound(err):
		httpjson.WriteError(w, http.StatusNotFound, "not_found", msgNotFound)
	case todo.IsForbidden(err):
		httpjson.WriteError(w, h.cfg.ForbiddenStatus, "forbidden", msgForbidden)
	case todo.IsInvalidInput(err):
		httpjson.WriteError(w, http.StatusBadRequest, "validation_error", validationMessage(err))
	default:
		h.log.Error(event+".fail", "err", err)
		httpjson.WriteError(w, http.StatusInternalServerError, "store_error", "internal error")
	}
}

func validationMessage(err error) string {
	var oe todo.OpError
	if errors.As(err, &oe) && oe.Msg != "" {
		return oe.Msg
	}
	return "invalid input"
}

func parseListFilter(r *http.Request) (todo.ListFilter, error) {
	var f todo.ListFilter
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("completed")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return todo.ListFilter{}, errors.New("completed must be true or false")
		}
		f.Completed = &b
	}
	if v := strings.TrimSpace(q.Get("priority")); v != "" {
		p, ok := todo.ParsePriority(v)
		if !ok {
			return todo.ListFilter{}, errors.New("priority must be one of low, medium, high")
		}
		f.Priority = &p
	}
	return f, nil
}
