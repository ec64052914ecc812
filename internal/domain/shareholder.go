// Package domain contains the core data types for the Aeroholder backend.
// This package has no database or transport dependencies and is imported by
// every other internal package (repo, service, handler).
package domain

import (
	"regexp"
	"strings"
	"time"
)

// FolioPrefix is the literal prefix every folio id starts with.
const FolioPrefix = "FLN"

var folioPattern = regexp.MustCompile(`^` + FolioPrefix + `[0-9]+$`)

// ValidFolioID reports whether id is "FLN" followed by one or more ASCII digits
// and nothing else.
func ValidFolioID(id string) bool {
	return folioPattern.MatchString(id)
}

// Shareholder is the aggregate root: it owns zero or more passports and
// dependents. FolioID is the immutable business key; ID is the surrogate key
// assigned by the database.
type Shareholder struct {
	ID                int64     `json:"id"`
	FolioID           string    `json:"folio_id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	FullName          string    `json:"full_name"`
	Country           string    `json:"country,omitempty"`
	Address1          string    `json:"address1,omitempty"`
	Address2          string    `json:"address2,omitempty"`
	City              string    `json:"city,omitempty"`
	CompanyIndividual string    `json:"company_individual,omitempty"`
	NoOfShares        int       `json:"no_of_shares"`
	NoOfTicketsIssued int       `json:"no_of_tickets_issued"`
	Entitlement       int       `json:"entitlement"`
	NoOfPassports     int       `json:"no_of_passports"` // read-only, counted at query time
	CreatedAt         time.Time `json:"created_at"`
	ModifiedAt        time.Time `json:"modified_at"`
}

// Passport is a travel document owned by a shareholder.
// Rows with a blank PassportNumber are never persisted.
type Passport struct {
	ID             int64      `json:"id"`
	ShareholderID  int64      `json:"shareholder_id"`
	PassportNumber string     `json:"passport_number"`
	IssuedCountry  string     `json:"issued_country,omitempty"`
	IssuedDate     *time.Time `json:"issued_date,omitempty"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// HasData reports whether the passport carries enough data to be stored.
func (p Passport) HasData() bool {
	return strings.TrimSpace(p.PassportNumber) != ""
}

// Dependent is a person travelling on a shareholder's entitlement.
// Rows with a blank FullName are never persisted.
type Dependent struct {
	ID             int64     `json:"id"`
	ShareholderID  int64     `json:"shareholder_id"`
	FullName       string    `json:"full_name"`
	Relationship   string    `json:"relationship,omitempty"`
	PassportNumber string    `json:"passport_number,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// HasData reports whether the dependent carries enough data to be stored.
func (d Dependent) HasData() bool {
	return strings.TrimSpace(d.FullName) != ""
}

// ShareholderDetails is a shareholder together with its owned collections.
// On writes, Passports and Dependents are the complete replacement sets.
type ShareholderDetails struct {
	Shareholder Shareholder `json:"shareholder"`
	Passports   []Passport  `json:"passports"`
	Dependents  []Dependent `json:"dependents"`
}

// SaveResult reports the outcome of an aggregate write so the caller can tell
// the user how many children were actually stored.
type SaveResult struct {
	Shareholder       Shareholder `json:"shareholder"`
	PassportsSaved    int         `json:"passports_saved"`
	PassportsSkipped  int         `json:"passports_skipped"`
	DependentsSaved   int         `json:"dependents_saved"`
	DependentsSkipped int         `json:"dependents_skipped"`
}
