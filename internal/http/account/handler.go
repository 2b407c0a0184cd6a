package account

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/account"
	"github.com/MrJamesThe3rd/pennywise/internal/http/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/http/response"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
)

type Handler struct {
	svc *account.Service
}

func NewHandler(svc *account.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/summary", h.summary)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type Response struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Type        account.Type `json:"type"`
	Balance     string       `json:"balance"`
	Display     string       `json:"display"`
	Currency    string       `json:"currency"`
	Description string       `json:"description,omitempty"`
	Active      bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   *time.Time   `json:"updated_at,omitempty"`
}

// ToResponse is shared with the transaction handler, which returns touched accounts.
func ToResponse(a *account.Account) Response {
	return Response{
		ID:          a.ID,
		Name:        a.Name,
		Type:        a.Type,
		Balance:     a.Balance.StringFixed(money.Places),
		Display:     money.Format(a.Balance, a.Currency),
		Currency:    a.Currency,
		Description: a.Description,
		Active:      a.Active,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func ToResponseList(accounts []*account.Account) []Response {
	resp := make([]Response, len(accounts))
	for i, a := range accounts {
		resp[i] = ToResponse(a)
	}

	return resp
}

type createAccountRequest struct {
	Name        string          `json:"name"`
	Type        account.Type    `json:"type"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency"`
	Description string          `json:"description"`
	Active      *bool           `json:"is_active"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	owner, _ := auth.OwnerID(r.Context())

	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	a, err := h.svc.Create(r.Context(), owner, account.CreateParams{
		Name:        req.Name,
		Type:        req.Type,
		Balance:     req.Balance,
		Currency:    req.Currency,
		Description: req.Description,
		Active:      active,
	})
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, ToResponse(a))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	owner, _ := auth.OwnerID(r.Context())

	accounts, err := h.svc.List(r.Context(), owner)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, ToResponseList(accounts))
}

type totalResponse struct {
	Currency string `json:"currency"`
	Balance  string `json:"balance"`
	Display  string `json:"display"`
	Accounts int    `json:"accounts"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	owner, _ := auth.OwnerID(r.Context())

	totals, err := h.svc.Totals(r.Context(), owner)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	resp := make([]totalResponse, len(totals))
	for i, t := range totals {
		resp[i] = totalResponse{
			Currency: t.Currency,
			Balance:  t.Balance.StringFixed(money.Places),
			Display:  money.Format(t.Balance, t.Currency),
			Accounts: t.Accounts,
		}
	}

	response.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	owner, _ := auth.OwnerID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}

	a, err := h.svc.Get(r.Context(), owner, id)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, ToResponse(a))
}

type updateAccountRequest struct {
	Name        *string       `json:"name,omitempty"`
	Type        *account.Type `json:"type,omitempty"`
	Currency    *string       `json:"currency,omitempty"`
	Description *string       `json:"description,omitempty"`
	Active      *bool         `json:"is_active,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	owner, _ := auth.OwnerID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	a, err := h.svc.Update(r.Context(), owner, id, account.UpdateParams{
		Name:        req.Name,
		Type:        req.Type,
		Currency:    req.Currency,
		Description: req.Description,
		Active:      req.Active,
	})
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, ToResponse(a))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	owner, _ := auth.OwnerID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}

	if err := h.svc.Delete(r.Context(), owner, id); err != nil {
		response.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
