package agents

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"claims-review/internal/platform/apperr"
	"claims-review/internal/platform/logger"
	"claims-review/internal/ports/auth"
	"claims-review/internal/ports/recordstore"
)

var (
	ErrInvalidInput     = apperr.New(apperr.CodeInvalidInput, "invalid agent input")
	ErrInvalidRole      = apperr.New(apperr.CodeInvalidInput, "role must be admin or agent")
	ErrNotFound         = apperr.New(apperr.CodeNotFound, "agent not found")
	ErrAlreadyExists    = apperr.New(apperr.CodeConflict, "agent already exists")
	ErrUnknownProfile   = apperr.New(apperr.CodeUnauthorized, "no profile for this identity")
	ErrStoreUnavailable = apperr.New(apperr.CodeStoreUnavailable, "record store unavailable")
)

type Service struct {
	repo Repository
	now  func() time.Time
	log  logger.Logger
}

func NewService(repo Repository, log logger.Logger) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		log:  logger.OrDiscard(log),
	}
}

type CreateInput struct {
	ID    string // opcional: el user id del Identity Provider
	Name  string
	Email string
	Role  auth.Role // vacío => agent
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Agent, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" {
		return Agent{}, ErrInvalidInput
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Agent{}, apperr.Wrap(apperr.CodeInvalidInput, "invalid email", err)
	}

	role := in.Role
	if role == "" {
		role = auth.RoleAgent
	}
	if !role.Valid() {
		return Agent{}, ErrInvalidRole
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}

	a := Agent{
		ID:        id,
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return Agent{}, mapErr(err)
	}
	s.log.Info("agent profile created", map[string]any{"agent_id": a.ID, "role": string(a.Role)})
	return a, nil
}

func (s *Service) Get(ctx context.Context, id string) (Agent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Agent{}, ErrNotFound
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Agent{}, mapErr(err)
	}
	return a, nil
}

// ListFilter: Role vacío => todos los roles. ExcludeID saca un perfil (p.ej. el dueño
// del claim en el diálogo de compartir).
type ListFilter struct {
	Role      auth.Role
	ExcludeID string
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Agent, error) {
	if f.Role != "" && !f.Role.Valid() {
		return nil, ErrInvalidRole
	}
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, mapErr(err)
	}

	out := make([]Agent, 0, len(items))
	for _, a := range items {
		if f.Role != "" && a.Role != f.Role {
			continue
		}
		if f.ExcludeID != "" && a.ID == f.ExcludeID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// NameOf devuelve el nombre para mostrar del agente.
func (s *Service) NameOf(ctx context.Context, id string) (string, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return a.Name, nil
}

// Resolve completa la identidad del token con el perfil. Sin perfil => Unauthorized.
func (s *Service) Resolve(ctx context.Context, id auth.Identity) (auth.Principal, error) {
	a, err := s.Get(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return auth.Principal{}, ErrUnknownProfile
		}
		return auth.Principal{}, err
	}
	p := a.Principal()
	if p.Email == "" {
		p.Email = id.Email
	}
	return p, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, recordstore.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, recordstore.ErrConflict):
		return ErrAlreadyExists
	case errors.Is(err, recordstore.ErrUnavailable):
		return apperr.Wrap(apperr.CodeStoreUnavailable, ErrStoreUnavailable.Message, err)
	default:
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return err
		}
		return apperr.Wrap(apperr.CodeInternal, "agents store error", err)
	}
}
