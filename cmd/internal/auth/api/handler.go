package authapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"tasktrack/cmd/identity"
	"tasktrack/cmd/internal/auth/session"
	"tasktrack/cmd/internal/httpjson"
	"tasktrack/cmd/security/token"

	"github.com/gorilla/mux"
)

const (
	msgRegisterConflict   = "User with this email or username already exists"
	msgInvalidCredentials = "Invalid email or password"
)

// Handler wires HTTP auth endpoints to the identity and session services.
type Handler struct {
	log *slog.Logger
	cfg Config

	users    *identity.Service
	sessions *session.Service

	now func() time.Time
}

// HandlerOption configures optional handler behavior.
type HandlerOption func(*Handler)

// WithClock overrides the time source used for issuing and verifying tokens.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		if h == nil || now == nil {
			return
		}
		h.now = now
	}
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, cfg Config, users *identity.Service, sessions *session.Service, opts ...HandlerOption) (*Handler, error) {
	if users == nil || sessions == nil {
		return nil, errors.New("authapi: nil service")
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = httpjson.DefaultMaxBodyBytes
	}

	h := &Handler{
		log:      log,
		cfg:      cfg,
		users:    users,
		sessions: sessions,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}
	return h, nil
}

// Register wires auth routes onto r, each path prefixed with prefix.
// Routes live on r itself so a wrong method under any prefix still
// reaches r's MethodNotAllowedHandler.
func (h *Handler) Register(r *mux.Router, prefix string) {
	if h == nil || r == nil {
		return
	}
	r.HandleFunc(prefix+"/auth/register", h.handleRegister).Methods(http.MethodPost)
	r.HandleFunc(prefix+"/auth/login", h.handleLogin).Methods(http.MethodPost)
	r.Handle(prefix+"/auth/me", h.RequireIdentity(http.HandlerFunc(h.handleMe))).Methods(http.MethodGet)
}

// ---- handlers ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpjson.Decode(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}

	ctx := r.Context()
	now := h.now()

	u, err := h.users.Register(ctx, identity.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Now:      now,
	})
	if err != nil {
		switch {
		case identity.IsConflict(err):
			h.log.Info("auth.register.conflict", "err", err)
			httpjson.WriteError(w, http.StatusBadRequest, "conflict", msgRegisterConflict)
		case identity.IsInvalidInput(err):
			httpjson.WriteError(w, http.StatusBadRequest, "validation_error", validationMessage(err))
		default:
			h.log.Error("auth.register.fail", "err", err)
			httpjson.WriteError(w, http.StatusInternalServerError, "store_error", "internal error")
		}
		return
	}

	issued, err := h.sessions.Issue(u.ID, now)
	if err != nil {
		h.log.Error("auth.register.issue_token.fail", "err", err, "user_id", u.ID)
		httpjson.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.log.Info("auth.register.ok", "user_id", u.ID, "token_fp", token.Fingerprint(issued.Token))
	httpjson.WriteJSON(w, http.StatusCreated, toAuthResponse(u, issued.Token))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}

	ctx := r.Context()
	now := h.now()

	u, err := h.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if identity.IsInvalidCredentials(err) {
			h.log.Info("auth.login.fail", "reason", "invalid_credentials")
			httpjson.WriteError(w, http.StatusUnauthorized, "invalid_credentials", msgInvalidCredentials)
			return
		}
		h.log.Error("auth.login.fail", "err", err)
		httpjson.WriteError(w, http.StatusInternalServerError, "store_error", "internal error")
		return
	}

	issued, err := h.sessions.Issue(u.ID, now)
	if err != nil {
		h.log.Error("auth.login.issue_token.fail", "err", err, "user_id", u.ID)
		httpjson.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.log.Info("auth.login.ok", "user_id", u.ID, "token_fp", token.Fingerprint(issued.Token))
	httpjson.WriteJSON(w, http.StatusOK, toAuthResponse(u, issued.Token))
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		httpjson.WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// ---- identity middleware ----

type userCtxKey struct{}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u identity.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext returns the user attached by RequireIdentity.
func UserFromContext(ctx context.Context) (identity.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(identity.User)
	return u, ok
}

// RequireIdentity resolves the bearer token to a user and attaches it to the
// request context. Missing, malformed, expired or orphaned tokens get 401.
func (h *Handler) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := httpjson.BearerToken(r)
		if raw == "" {
			httpjson.WriteError(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
			return
		}

		claims, err := h.sessions.Verify(raw, h.now())
		if err != nil {
			h.log.Debug("auth.token.reject", "token_fp", token.Fingerprint(raw), "err", err)
			httpjson.WriteError(w, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
			return
		}

		u, err := h.users.GetUser(r.Context(), claims.UserID)
		if err != nil {
			if identity.IsNotFound(err) {
				h.log.Info("auth.token.orphan", "user_id", claims.UserID, "token_fp", token.Fingerprint(raw))
				httpjson.WriteError(w, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
				return
			}
			h.log.Error("auth.identity.lookup.fail", "err", err, "user_id", claims.UserID)
			httpjson.WriteError(w, http.StatusInternalServerError, "store_error", "internal error")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

func validationMessage(err error) string {
	var oe identity.OpError
	if errors.As(err, &oe) && oe.Msg != "" {
		return oe.Msg
	}
	return "invalid input"
}
