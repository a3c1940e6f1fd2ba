package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"mindmap/internal/domain"
	"mindmap/internal/editor"
	"mindmap/internal/repository"
	"mindmap/internal/service"
	"mindmap/internal/session"
)

// MsgSuccess is the msg of every successful envelope
const MsgSuccess = "success"

// Result is the response envelope
type Result struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// handle accepts the empty handle, meaning the renderer default
	_ = v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return domain.Handle(fl.Field().String()).Valid()
	})
	return v
}

// maxBodyBytes bounds request bodies; map content is the largest payload
const maxBodyBytes = 8 << 20

func respondJSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	writeResult(w, logger, status, Result{Code: status, Msg: MsgSuccess, Data: data})
}

func respondError(w http.ResponseWriter, logger *zap.Logger, status int, msg string) {
	writeResult(w, logger, status, Result{Code: status, Msg: msg})
}

func writeResult(w http.ResponseWriter, logger *zap.Logger, status int, res Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		logger.Warn("failed to encode response", zap.Error(err))
	}
}

// fail responds with the status matching err. Server-side failures are
// logged; client errors are not.
func fail(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error, msg string) {
	status := statusFor(err)
	if status >= 500 {
		logger.Error(msg,
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		respondError(w, logger, status, msg)
		return
	}
	respondError(w, logger, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrValidation), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, editor.ErrNotLoaded):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

// decode reads a JSON body into dst and validates its tags
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %s", errBadRequest, formatValidationError(err))
	}
	return nil
}

func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required", "required_without":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", field, e.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, e.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, e.Param()))
		case "handle":
			msgs = append(msgs, fmt.Sprintf("%s is not a known handle", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}
