package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ShewonGun/Aeroholder/internal/domain"
	"github.com/ShewonGun/Aeroholder/internal/middleware"
)

const shareholderNotFound = "Shareholder not found."

// ValidateFolioID handles GET /folio-ids/{folioID}/validity.
func (s *Server) ValidateFolioID(w http.ResponseWriter, r *http.Request) {
	folioID := chi.URLParam(r, "folioID")
	valid := s.shareholders.ValidateFolioID(folioID)

	n := Notice{Success: true, Severity: SeverityInfo, Data: map[string]any{"folio_id": folioID, "valid": valid}}
	if !valid {
		n.Message = fmt.Sprintf("Invalid Folio ID format. Must start with %q followed by numbers.", domain.FolioPrefix)
	}
	writeJSON(w, http.StatusOK, n)
}

// ListShareholders handles GET /shareholders.
// Supports ?q= (matched against folio id and names), ?page= and ?limit=
// (defaults: page=1, limit=20, max=100).
func (s *Server) ListShareholders(w http.ResponseWriter, r *http.Request) {
	const op = "ListShareholders"
	page, err := queryInt(r, "page")
	if err != nil {
		s.writeError(w, r, op, "", err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, r, op, "", err)
		return
	}

	list, pg, err := s.shareholders.ListShareholders(r.Context(), r.URL.Query().Get("q"), domain.NewPaginationParams(page, limit))
	if err != nil {
		s.writeError(w, r, op, "", err)
		return
	}
	writeJSON(w, http.StatusOK, Notice{Success: true, Severity: SeveritySuccess, Data: list, Pagination: &pg})
}

// GetShareholder handles GET /shareholders/{folioID}.
func (s *Server) GetShareholder(w http.ResponseWriter, r *http.Request) {
	details, err := s.shareholders.GetShareholderDetails(r.Context(), chi.URLParam(r, "folioID"))
	if err != nil {
		s.writeError(w, r, "GetShareholder", shareholderNotFound, err)
		return
	}
	writeData(w, http.StatusOK, detailsToResponse(details))
}

// CreateShareholder handles POST /shareholders. The folio id comes from the body.
func (s *Server) CreateShareholder(w http.ResponseWriter, r *http.Request) {
	const op = "CreateShareholder"
	var body shareholderRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, op, "", err)
		return
	}

	result, err := s.shareholders.CreateShareholderWithDetails(r.Context(), middleware.ActorFrom(r.Context()), body.toDomain(body.FolioID))
	if err != nil {
		s.writeError(w, r, op, "", err)
		return
	}
	writeJSON(w, http.StatusCreated, saveNotice("created", result))
}

// UpdateShareholder handles PUT /shareholders/{folioID}. The path folio id
// wins over any folio id in the body; folio ids are immutable.
func (s *Server) UpdateShareholder(w http.ResponseWriter, r *http.Request) {
	const op = "UpdateShareholder"
	folioID := chi.URLParam(r, "folioID")
	var body shareholderRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, op, "", err)
		return
	}
	if body.FolioID != "" && strings.TrimSpace(body.FolioID) != folioID {
		s.writeError(w, r, op, "", fmt.Errorf("%w: folio id cannot be changed", errBadRequest))
		return
	}

	result, err := s.shareholders.UpdateShareholderWithDetails(r.Context(), middleware.ActorFrom(r.Context()), body.toDomain(folioID))
	if err != nil {
		s.writeError(w, r, op, shareholderNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, saveNotice("updated", result))
}

// DeleteShareholder handles DELETE /shareholders/{folioID}.
func (s *Server) DeleteShareholder(w http.ResponseWriter, r *http.Request) {
	folioID := chi.URLParam(r, "folioID")
	if err := s.shareholders.DeleteShareholder(r.Context(), middleware.ActorFrom(r.Context()), folioID); err != nil {
		s.writeError(w, r, "DeleteShareholder", shareholderNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, Notice{
		Success:  true,
		Severity: SeveritySuccess,
		Message:  fmt.Sprintf("Shareholder %s deleted successfully.", folioID),
	})
}
