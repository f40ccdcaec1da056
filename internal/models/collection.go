package models

import "fmt"

// Collection is a playlist, or a catalog's saved-items pseudo-collection.
//
// Synthetic collections (Spotify saved tracks) have no ID.
type Collection struct {
	ID        string
	Name      string
	Backend   Backend
	Synthetic bool
	Count     int // Item count as reported by the catalog listing, 0 when unknown
}

// Matches reports whether the collection is identified by nameOrID.
func (c Collection) Matches(nameOrID string) bool {
	return (c.ID != "" && c.ID == nameOrID) || c.Name == nameOrID
}

func (c Collection) String() string {
	if c.ID == "" {
		return fmt.Sprintf("%s(name=%s)", c.Backend, c.Name)
	}
	return fmt.Sprintf("%s(name=%s, id=%s)", c.Backend, c.Name, c.ID)
}
