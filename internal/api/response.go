package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/mechatrack/internal/errs"
	"github.com/erazemk/mechatrack/internal/logger"
)

// MsgInvalidBody is returned when a request body is not valid JSON.
const MsgInvalidBody = "Invalid JSON body"

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		// The client may have gone away; there is nobody left to tell.
		_ = json.NewEncoder(w).Encode(data)
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// jsonMessage writes a {"message": ...} response.
func jsonMessage(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"message": message})
}

// writeError maps err to its status and message. Server-side failures are logged.
func writeError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	status, message := errs.Public(err)
	if status >= http.StatusInternalServerError && logg != nil {
		logg.Error(ctx, "request.failed", err)
	}
	jsonError(w, status, message)
}

// decodeJSON decodes a JSON request body into the given target. An empty
// body leaves target untouched.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	err := json.NewDecoder(r.Body).Decode(target)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return errs.Wrap(errs.CodeValidation, err, MsgInvalidBody)
	}
	return nil
}

// pathID parses the {id} URL parameter. Anything that is not an integer
// cannot name a row, so it is reported with notFound.
func pathID(r *http.Request, notFound string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errs.NotFound(notFound)
	}
	return id, nil
}
