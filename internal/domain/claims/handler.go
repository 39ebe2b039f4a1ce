package claims

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"claims-review/internal/middleware"
	"claims-review/internal/platform/apperr"
	"claims-review/internal/platform/httpx"
	"claims-review/internal/platform/logger"
	"claims-review/internal/ports/auth"
)

// AccessPolicy evita importar el paquete access (rompe ciclos).
type AccessPolicy interface {
	Require(p auth.Principal, a auth.Action) error
	CanView(ctx context.Context, p auth.Principal, c Claim) (bool, error)
	ScopeClaims(ctx context.Context, p auth.Principal, items []Claim) ([]Claim, error)
}

var ErrNotVisible = apperr.New(apperr.CodeForbidden, "claim is not visible to the caller")

// EnsureVisible devuelve ErrNotVisible si p no puede ver c.
func EnsureVisible(ctx context.Context, pol AccessPolicy, p auth.Principal, c Claim) error {
	ok, err := pol.CanView(ctx, p, c)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotVisible
	}
	return nil
}

func RegisterRoutes(r chi.Router, svc *Service, pol AccessPolicy, log logger.Logger) {
	h := &handler{svc: svc, pol: pol, log: logger.OrDiscard(log)}

	r.Get("/claims", h.list)
	r.Post("/claims", h.create)
	r.Get("/claims/{claimID}", h.get)
	r.Patch("/claims/{claimID}", h.update)
}

type handler struct {
	svc *Service
	pol AccessPolicy
	log logger.Logger
}

type createClaimRequest struct {
	PolicyNumber  string           `json:"policy_number"`
	ClaimantName  string           `json:"claimant_name"`
	ClaimantEmail string           `json:"claimant_email"`
	ClaimantPhone string           `json:"claimant_phone"`
	IncidentDate  string           `json:"incident_date"` // YYYY-MM-DD o RFC3339, opcional
	Description   string           `json:"description"`
	Amount        *decimal.Decimal `json:"amount"`
	Status        string           `json:"status"` // opcional, default pending
}

// ClaimResponse es la representación JSON de un claim; la reutilizan otros módulos.
type ClaimResponse struct {
	ID            string              `json:"id"`
	PolicyNumber  string              `json:"policy_number"`
	ClaimantName  string              `json:"claimant_name"`
	ClaimantEmail string              `json:"claimant_email,omitempty"`
	ClaimantPhone string              `json:"claimant_phone,omitempty"`
	IncidentDate  *time.Time          `json:"incident_date,omitempty"`
	Description   string              `json:"description"`
	Amount        decimal.NullDecimal `json:"amount" swaggertype:"string"`
	Status        Status              `json:"status"`
	OwnerID       string              `json:"owner_id"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func ToResponse(c Claim) ClaimResponse {
	return ClaimResponse{
		ID:            c.ID,
		PolicyNumber:  c.PolicyNumber,
		ClaimantName:  c.ClaimantName,
		ClaimantEmail: c.ClaimantEmail,
		ClaimantPhone: c.ClaimantPhone,
		IncidentDate:  c.IncidentDate,
		Description:   c.Description,
		Amount:        c.Amount,
		Status:        c.Status,
		OwnerID:       c.OwnerID,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func ToResponses(items []Claim) []ClaimResponse {
	out := make([]ClaimResponse, 0, len(items))
	for _, c := range items {
		out = append(out, ToResponse(c))
	}
	return out
}

// list godoc
// @Summary List claims
// @Description Claims visible to the caller (admins: all; agents: owned + shared with them), ordered by updated_at desc unless `order` says otherwise.
// @Tags claims
// @Produce json
// @Param status query string false "pending|inReview|approved|denied|archived"
// @Param q query string false "case-insensitive search over claimant, policy number and description"
// @Param order query string false "updated_desc|updated_asc|created_desc"
// @Success 200 {array} ClaimResponse
// @Failure 400 {object} object "invalid status/order"
// @Failure 401 {object} object "unauthorized"
// @Router /claims [get]
func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.RequirePrincipal(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	f := ListFilter{Search: q.Get("q")}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" && raw != "all" {
		st, err := ParseStatus(raw)
		if err != nil {
			httpx.WriteError(w, r, h.log, err)
			return
		}
		f.Status = st
	}
	order, err := ParseOrder(q.Get("order"))
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	f.Order = order

	items, err := h.svc.List(r.Context(), f)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	items, err = h.pol.ScopeClaims(r.Context(), p, items)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ToResponses(items))
}

// create godoc
// @Summary Create claim
// @Description Admin only. Status defaults to pending.
// @Tags claims
// @Accept json
// @Produce json
// @Param payload body createClaimRequest true "claim fields"
// @Success 201 {object} ClaimResponse
// @Failure 400 {object} object "invalid input"
// @Failure 403 {object} object "forbidden"
// @Router /claims [post]
func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.RequirePrincipal(w, r)
	if !ok {
		return
	}
	if err := h.pol.Require(p, auth.ActionCreateClaim); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	var req createClaimRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	incident, err := parseDate(req.IncidentDate)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	var status Status
	if strings.TrimSpace(req.Status) != "" {
		if status, err = ParseStatus(req.Status); err != nil {
			httpx.WriteError(w, r, h.log, err)
			return
		}
	}

	c, err := h.svc.Create(r.Context(), p.ID, CreateInput{
		PolicyNumber:  req.PolicyNumber,
		ClaimantName:  req.ClaimantName,
		ClaimantEmail: req.ClaimantEmail,
		ClaimantPhone: req.ClaimantPhone,
		IncidentDate:  incident,
		Description:   req.Description,
		Amount:        req.Amount,
		Status:        status,
	})
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	h.log.Info("claim created", map[string]any{"claim_id": c.ID, "owner_id": c.OwnerID})
	httpx.WriteJSON(w, http.StatusCreated, ToResponse(c))
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.RequirePrincipal(w, r)
	if !ok {
		return
	}

	c, err := h.svc.Get(r.Context(), chi.URLParam(r, "claimID"))
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	if err := EnsureVisible(r.Context(), h.pol, p, c); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ToResponse(c))
}

// patchableFields: cualquier otra key en el PATCH es 400.
var patchableFields = map[string]struct{}{
	"policy_number":  {},
	"claimant_name":  {},
	"claimant_email": {},
	"claimant_phone": {},
	"description":    {},
	"incident_date":  {},
	"amount":         {},
}

// update aplica un PATCH real: campo ausente = no tocar; incident_date/amount en null = limpiar.
// El status no se edita acá, va por /claims/{id}/status.
func (h *handler) update(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.RequirePrincipal(w, r)
	if !ok {
		return
	}

	var raw map[string]json.RawMessage
	if err := httpx.DecodeJSON(r, &raw); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	in, err := parsePatch(raw)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	c, err := h.svc.UpdateDetails(r.Context(), chi.URLParam(r, "claimID"), p.ID, in)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ToResponse(c))
}

func parsePatch(raw map[string]json.RawMessage) (UpdateInput, error) {
	var in UpdateInput
	for k := range raw {
		if _, ok := patchableFields[k]; !ok {
			return UpdateInput{}, apperr.New(apperr.CodeInvalidInput, "unknown field: "+k)
		}
	}

	strField := func(key string) (*string, error) {
		v, ok := raw[key]
		if !ok {
			return nil, nil
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, apperr.Wrap(apperr.CodeInvalidInput, key+" must be a string", err)
		}
		return &s, nil
	}

	var err error
	if in.PolicyNumber, err = strField("policy_number"); err != nil {
		return UpdateInput{}, err
	}
	if in.ClaimantName, err = strField("claimant_name"); err != nil {
		return UpdateInput{}, err
	}
	if in.ClaimantEmail, err = strField("claimant_email"); err != nil {
		return UpdateInput{}, err
	}
	if in.ClaimantPhone, err = strField("claimant_phone"); err != nil {
		return UpdateInput{}, err
	}
	if in.Description, err = strField("description"); err != nil {
		return UpdateInput{}, err
	}

	if v, ok := raw["incident_date"]; ok {
		in.IncidentDate.Present = true
		if string(v) != "null" {
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return UpdateInput{}, apperr.Wrap(apperr.CodeInvalidInput, "incident_date must be YYYY-MM-DD or null", err)
			}
			d, err := parseDate(s)
			if err != nil {
				return UpdateInput{}, err
			}
			in.IncidentDate.Value = d
		}
	}

	if v, ok := raw["amount"]; ok {
		in.Amount.Present = true
		if string(v) != "null" {
			var d decimal.Decimal
			if err := json.Unmarshal(v, &d); err != nil {
				return UpdateInput{}, apperr.Wrap(apperr.CodeInvalidInput, "amount must be a number or null", err)
			}
			in.Amount.Value = &d
		}
	}

	return in, nil
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidInput, "incident_date must be YYYY-MM-DD or RFC3339", err)
	}
	t = t.UTC()
	return &t, nil
}
