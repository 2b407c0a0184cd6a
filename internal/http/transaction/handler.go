package transaction

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/http/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/http/response"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createTransactionRequest struct {
	Type        transaction.Type `json:"type"`
	Amount      decimal.Decimal  `json:"amount"`
	Description string           `json:"description"`
	Date        string           `json:"date"`
	AccountID   uuid.UUID        `json:"account_id"`
	ToAccountID *uuid.UUID       `json:"to_account_id"`
	CategoryID  *uuid.UUID       `json:"category_id"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	owner, _ := auth.OwnerID(r.Context())

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		response.BadRequest(w, "date must be YYYY-MM-DD")
		return
	}

	res, err := h.svc.Create(r.Context(), owner, transaction.CreateParams{
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
		AccountID:   req.AccountID,
		ToAccountID: req.ToAccountID,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, toResultResponse(res))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	owner, _ := auth.OwnerID(r.Context())

	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	txs, err := h.svc.List(r.Context(), owner, filter)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, ToResponseList(txs))
}

func parseFilter(q url.Values) (transaction.ListFilter, error) {
	var filter transaction.ListFilter

	if s := q.Get("type"); s != "" {
		filter.Type = new(transaction.Type(s))
	}

	for key, dst := range map[string]**uuid.UUID{
		"account_id":  &filter.AccountID,
		"category_id": &filter.CategoryID,
	} {
		s := q.Get(key)
		if s == "" {
			continue
		}

		id, err := uuid.Parse(s)
		if err != nil {
			return filter, fmt.Errorf("invalid %s", key)
		}

		*dst = &id
	}

	for key, dst := range map[string]**time.Time{
		"start_date": &filter.StartDate,
		"end_date":   &filter.EndDate,
	} {
		s := q.Get(key)
		if s == "" {
			continue
		}

		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return filter, fmt.Errorf("invalid %s: want YYYY-MM-DD", key)
		}

		*dst = &t
	}

	return filter, nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	owner, _ := auth.OwnerID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}

	tx, err := h.svc.Get(r.Context(), owner, id)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, ToResponse(tx))
}

type updateTransactionRequest struct {
	Type          *transaction.Type `json:"type,omitempty"`
	Amount        *decimal.Decimal  `json:"amount,omitempty"`
	Description   *string           `json:"description,omitempty"`
	Date          *string           `json:"date,omitempty"`
	AccountID     *uuid.UUID        `json:"account_id,omitempty"`
	ToAccountID   *uuid.UUID        `json:"to_account_id,omitempty"`
	CategoryID    *uuid.UUID        `json:"category_id,omitempty"`
	ClearCategory bool              `json:"clear_category,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	owner, _ := auth.OwnerID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}

	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	params := transaction.UpdateParams{
		Type:          req.Type,
		Amount:        req.Amount,
		Description:   req.Description,
		AccountID:     req.AccountID,
		ToAccountID:   req.ToAccountID,
		CategoryID:    req.CategoryID,
		ClearCategory: req.ClearCategory,
	}

	if req.Date != nil {
		date, err := time.Parse(time.DateOnly, *req.Date)
		if err != nil {
			response.BadRequest(w, "date must be YYYY-MM-DD")
			return
		}

		params.Date = &date
	}

	res, err := h.svc.Update(r.Context(), owner, id, params)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, toResultResponse(res))
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
