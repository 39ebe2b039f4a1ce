package auth

import "time"

// Identity representa la información extraída del token (la da el Identity Provider).
type Identity struct {
	UserID string
	Email  string
}

// Role del agente. Es inmutable una vez creado el perfil.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleAgent
}

// Principal es el usuario autenticado ya resuelto contra su perfil (rol + nombre).
type Principal struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

func (p Principal) Authenticated() bool {
	return p.ID != "" && p.Role.Valid()
}

func (p Principal) IsAdmin() bool {
	return p.Authenticated() && p.Role == RoleAdmin
}

// Action es una acción que la política de acceso puede permitir o denegar.
type Action string

const (
	ActionCreateClaim      Action = "createClaim"
	ActionManageAgents     Action = "manageAgents"
	ActionViewAllClaims    Action = "viewAllClaims"
	ActionShareClaim       Action = "shareClaim"
	ActionViewClaim        Action = "viewClaim"
	ActionChangeStatus     Action = "changeStatus"
	ActionBulkUpdateStatus Action = "bulkUpdateStatus"
	ActionViewDashboard    Action = "viewDashboard"
)

// Session es la sesión emitida por el Identity Provider.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         Identity
}
