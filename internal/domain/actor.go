package domain

import "strings"

// Actor identifies who is performing a mutating operation. It is supplied
// explicitly by the caller on every write; the service layer never reads it
// from ambient state.
type Actor struct {
	// Name is recorded in created_by / updated_by columns.
	Name string
	// Authorized is the verdict of the caller's session layer.
	Authorized bool
}

// NewActor returns an authorized Actor for name. A blank name yields an
// unauthorized Actor.
func NewActor(name string) Actor {
	name = strings.TrimSpace(name)
	return Actor{Name: name, Authorized: name != ""}
}
