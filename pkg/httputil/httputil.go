// Package httputil provides the thin, shared HTTP response plumbing used by
// every transport handler in the funding-discovery core: structured JSON
// envelopes, error translation from fderrors.Error, and a generic
// decode-validate helper so handlers never hand-roll json.NewDecoder calls.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fundingdiscovery/pkg/fderrors"
)

// Validatable is implemented by request DTOs that can validate and parse
// themselves after JSON decoding.
type Validatable interface {
	Validate() error
}

// WriteJSON writes v as a JSON body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var codeToStatus = map[fderrors.Code]int{
	fderrors.CodeInvalidInput:   http.StatusBadRequest,
	fderrors.CodeNotFound:       http.StatusNotFound,
	fderrors.CodeConflict:       http.StatusConflict,
	fderrors.CodeAlreadyInState: http.StatusBadRequest,
	fderrors.CodeAuth:           http.StatusUnauthorized,
	fderrors.CodeRateLimited:    http.StatusTooManyRequests,
	fderrors.CodeUnavailable:    http.StatusServiceUnavailable,
	fderrors.CodeTimeout:        http.StatusGatewayTimeout,
	fderrors.CodeCircuitOpen:    http.StatusServiceUnavailable,
	fderrors.CodeParse:          http.StatusBadRequest,
	fderrors.CodeInternal:       http.StatusInternalServerError,
}

// WriteError translates err into a JSON error envelope. Internal errors
// never leak their message to the client; every other classified code
// includes its message as error_description.
func WriteError(w http.ResponseWriter, err error) {
	var fe *fderrors.Error
	code := fderrors.CodeInternal
	if errors.As(err, &fe) {
		code = fe.Code
	}

	status, ok := codeToStatus[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	body := map[string]string{"error": lowerSnake(code)}
	if code != fderrors.CodeInternal && fe != nil {
		body["error_description"] = fe.Message
	}
	WriteJSON(w, status, body)
}

func lowerSnake(c fderrors.Code) string {
	out := make([]byte, 0, len(c))
	for _, r := range string(c) {
		if r == ' ' {
			out = append(out, '_')
			continue
		}
		if r >= 'A' && r <= 'Z' {
			out = append(out, byte(r-'A'+'a'))
			continue
		}
		out = append(out, byte(r))
	}
	return string(out)
}

// DecodeAndPrepare decodes the request body into a *T, calls Validate on
// it, and on any failure writes the appropriate error response and returns
// ok=false. Handlers should return immediately when ok is false.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "failed to decode request body", "request_id", requestID, "error", err)
		}
		WriteError(w, fderrors.Wrap(fderrors.CodeInvalidInput, "malformed request body", err))
		var zero T
		return zero, false
	}

	if v, ok := any(&req).(Validatable); ok {
		if err := v.Validate(); err != nil {
			WriteError(w, err)
			var zero T
			return zero, false
		}
	}

	return req, true
}
