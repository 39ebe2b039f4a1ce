package agents

import (
	"time"

	"claims-review/internal/ports/auth"
)

// Agent es el perfil de un usuario de la aplicación. El ID coincide con el user id
// del Identity Provider.
type Agent struct {
	ID        string
	Name      string
	Email     string
	Role      auth.Role
	CreatedAt time.Time
}

func (a Agent) Principal() auth.Principal {
	return auth.Principal{ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role}
}
