package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/nicholas-fedor/backupnotify/pkg/notifications"
	"github.com/nicholas-fedor/backupnotify/pkg/types"
)

// maxRequestBytes caps the accepted request body.
const maxRequestBytes = 64 << 10

// Request is the JSON body of a notify call.
type Request struct {
	Status  string `json:"status"`
	Trigger string `json:"trigger"`
	Label   string `json:"label"`
}

// Response is the JSON body returned by a notify call.
type Response struct {
	Delivered bool   `json:"delivered"`
	Status    string `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Handler serves the /v1/notify endpoint.
type Handler struct {
	Path    string
	notify  func(context.Context, types.Outcome) error
	enabled func(types.Status) bool
	limiter *rate.Limiter
}

// New creates a notify handler.
//
// Parameters:
//   - notifyFn: Delivers one outcome, typically actions.Notify bound to the configured notifier.
//   - enabled: Reports whether a status is delivered at all; nil treats every status as enabled.
//   - rps: Accepted requests per second, with a burst of the same size; 0 or less disables limiting.
//
// Returns:
//   - *Handler: Handler for the /v1/notify endpoint.
func New(notifyFn func(context.Context, types.Outcome) error, enabled func(types.Status) bool, rps int) *Handler {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), rps)
	}

	logrus.WithField("rate", rps).Debug("Initialized notify handler")

	return &Handler{
		Path:    "/v1/notify",
		notify:  notifyFn,
		enabled: enabled,
		limiter: limiter,
	}
}

// Handle processes a notify request and blocks until delivery reaches a terminal result.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	clog := logrus.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	})
	clog.Debug("Received HTTP API notify request")

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, Response{Error: "method not allowed"})

		return
	}

	if !h.limiter.Allow() {
		clog.Warn("Notify request rate limit exceeded")
		writeJSON(w, http.StatusTooManyRequests, Response{Error: "rate limit exceeded"})

		return
	}

	outcome, err := decodeOutcome(w, r)
	if err != nil {
		clog.WithError(err).Debug("Rejected notify request")
		writeJSON(w, http.StatusBadRequest, Response{Error: err.Error()})

		return
	}

	clog = clog.WithFields(logrus.Fields{
		"status":  outcome.Status.String(),
		"trigger": outcome.Trigger,
	})

	if err := h.notify(r.Context(), outcome); err != nil {
		code := statusCodeFor(err)
		clog.WithError(err).WithField("code", code).Warn("Notify request failed")
		writeJSON(w, code, Response{Status: outcome.Status.String(), Error: err.Error()})

		return
	}

	delivered := h.enabled == nil || h.enabled(outcome.Status)
	writeJSON(w, http.StatusOK, Response{Delivered: delivered, Status: outcome.Status.String()})
}

// decodeOutcome parses and validates the request body.
func decodeOutcome(w http.ResponseWriter, r *http.Request) (types.Outcome, error) {
	var req Request

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		return types.Outcome{}, err
	}

	status, err := types.ParseStatus(req.Status)
	if err != nil {
		return types.Outcome{}, err
	}

	return types.Outcome{Status: status, Trigger: req.Trigger, Label: req.Label}, nil
}

// statusCodeFor maps a terminal delivery error to an HTTP status code.
func statusCodeFor(err error) int {
	switch {
	case errors.Is(err, notifications.ErrDeliveryExhausted):
		return http.StatusBadGateway
	case errors.Is(err, notifications.ErrCancelled):
		return http.StatusServiceUnavailable
	case errors.Is(err, types.ErrInvalidStatus):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("Failed to encode notify response")
	}
}
