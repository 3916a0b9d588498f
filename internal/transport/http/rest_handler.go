package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"weapon-quiz-service/internal/app"
	"weapon-quiz-service/internal/domain"
)

// RESTHandler exposes quiz sessions as plain JSON resources.
type RESTHandler struct {
	service *app.QuizService
	log     *zap.Logger
}

func NewRESTHandler(service *app.QuizService, log *zap.Logger) *RESTHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RESTHandler{service: service, log: log}
}

type sessionResponse struct {
	SessionID string             `json:"sessionId"`
	Item      *domain.PublicItem `json:"item"`
	Progress  domain.Progress    `json:"progress"`
}

type guessRequest struct {
	Answer  *string  `json:"answer"`
	Answers []string `json:"answers"`
}

// Routes mounts the session endpoints.
func (h *RESTHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.start)
	r.Route("/{sessionID}", func(r chi.Router) {
		r.Get("/item", h.currentItem)
		r.Post("/guess", h.guess)
		r.Get("/results", h.results)
		r.Post("/restart", h.restart)
		r.Delete("/", h.abandon)
	})
	return r
}

func (h *RESTHandler) start(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Start(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, describe(session))
}

func (h *RESTHandler) restart(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Restart(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, describe(session))
}

func (h *RESTHandler) currentItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	item, progress, err := h.service.CurrentItem(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	public := item.Public()
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: id, Item: &public, Progress: progress})
}

func (h *RESTHandler) guess(w http.ResponseWriter, r *http.Request) {
	var req guessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid guess payload"})
		return
	}
	answers := req.Answers
	if len(answers) == 0 && req.Answer != nil {
		answers = []string{*req.Answer}
	}

	res, err := h.service.SubmitGuesses(r.Context(), chi.URLParam(r, "sessionID"), answers)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *RESTHandler) results(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Results(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *RESTHandler) abandon(w http.ResponseWriter, r *http.Request) {
	h.service.Abandon(r.Context(), chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *RESTHandler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError || errors.Is(err, domain.ErrSourceUnavailable) {
		h.log.Warn("request failed", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, errorBody(err))
}

func describe(session *app.Session) sessionResponse {
	resp := sessionResponse{SessionID: session.ID(), Progress: session.Progress()}
	if item, err := session.CurrentItem(); err == nil {
		public := item.Public()
		resp.Item = &public
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
