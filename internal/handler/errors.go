package handler

import (
	"errors"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ShewonGun/Aeroholder/internal/domain"
	"github.com/ShewonGun/Aeroholder/internal/middleware"
)

// errBadRequest marks input rejected before it reaches a service: an
// unreadable body, a malformed id or query parameter.
var errBadRequest = errors.New("bad request")

// statusFor maps an error kind onto an HTTP status.
func statusFor(k domain.Kind) int {
	switch k {
	case domain.KindValidation:
		return http.StatusUnprocessableEntity
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError turns err into an error Notice. notFound is the message shown
// when err is domain.ErrNotFound, because only the handler knows what was
// being looked up. Persistence failures are logged and never shown verbatim.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op, notFound string, err error) {
	s.writeErrorWith(w, r, op, notFound, "A shareholder with this Folio ID already exists.", err)
}

// writeErrorWith is writeError with the conflict message supplied by the caller.
func (s *Server) writeErrorWith(w http.ResponseWriter, r *http.Request, op, notFound, conflict string, err error) {
	kind := domain.KindOf(err)
	if errors.Is(err, errBadRequest) {
		kind = domain.KindValidation
	}

	var msg string
	switch kind {
	case domain.KindValidation:
		msg = unwrapMessage(err)
	case domain.KindConflict:
		msg = conflict
	case domain.KindNotFound:
		msg = notFound
	case domain.KindUnauthorized:
		msg = "The " + middleware.ActorHeader + " header is required for this operation."
	default:
		s.log.ErrorContext(r.Context(), "request failed",
			"op", op,
			"request_id", chimiddleware.GetReqID(r.Context()),
			"error", err.Error(),
		)
		msg = "An internal error occurred. Please try again later."
	}

	writeJSON(w, statusFor(kind), Notice{
		Success:  false,
		Severity: SeverityError,
		Message:  msg,
		Code:     kind.String(),
	})
}

// unwrapMessage extracts the human-readable tail of a wrapped validation
// error, e.g.
// "service.ShareholderService.CreateShareholder: validation error: first name is required"
// becomes "first name is required".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, sentinel := range []error{domain.ErrValidation, errBadRequest} {
		marker := sentinel.Error() + ": "
		if i := strings.LastIndex(msg, marker); i >= 0 {
			return msg[i+len(marker):]
		}
	}
	return msg
}
