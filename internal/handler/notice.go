package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ShewonGun/Aeroholder/internal/domain"
)

// Severity tells the client how to present a Notice.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Notice is the envelope every API response is wrapped in.
type Notice struct {
	Success    bool               `json:"success"`
	Severity   Severity           `json:"severity"`
	Message    string             `json:"message,omitempty"`
	Code       string             `json:"code,omitempty"`
	Data       any                `json:"data,omitempty"`
	Counts     *Counts            `json:"counts,omitempty"`
	Pagination *domain.Pagination `json:"pagination,omitempty"`
}

// Counts reports what an aggregate write stored and skipped.
type Counts struct {
	PassportsSaved    int `json:"passports_saved"`
	PassportsSkipped  int `json:"passports_skipped"`
	DependentsSaved   int `json:"dependents_saved"`
	DependentsSkipped int `json:"dependents_skipped"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeData answers with a successful Notice carrying data.
func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Notice{Success: true, Severity: SeveritySuccess, Data: data})
}

// saveNotice describes an aggregate write. Skipped children downgrade the
// notice to a warning so the client can tell the user what was dropped.
func saveNotice(verb string, r domain.SaveResult) Notice {
	n := Notice{
		Success:  true,
		Severity: SeveritySuccess,
		Message:  fmt.Sprintf("Shareholder %s %s successfully.", r.Shareholder.FolioID, verb),
		Data:     r.Shareholder,
		Counts: &Counts{
			PassportsSaved:    r.PassportsSaved,
			PassportsSkipped:  r.PassportsSkipped,
			DependentsSaved:   r.DependentsSaved,
			DependentsSkipped: r.DependentsSkipped,
		},
	}
	if r.PassportsSkipped > 0 || r.DependentsSkipped > 0 {
		n.Severity = SeverityWarning
		n.Message = fmt.Sprintf("Shareholder %s %s; skipped %d passport(s) without a number and %d dependent(s) without a name.",
			r.Shareholder.FolioID, verb, r.PassportsSkipped, r.DependentsSkipped)
	}
	return n
}
