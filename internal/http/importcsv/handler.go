package importcsv

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	accounthttp "github.com/MrJamesThe3rd/pennywise/internal/http/account"
	"github.com/MrJamesThe3rd/pennywise/internal/http/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/http/response"
	transactionhttp "github.com/MrJamesThe3rd/pennywise/internal/http/transaction"
	"github.com/MrJamesThe3rd/pennywise/internal/importer"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

const maxUpload = 10 << 20

type Handler struct {
	importSvc *importer.Service
	txSvc     *transaction.Service
}

func NewHandler(importSvc *importer.Service, txSvc *transaction.Service) *Handler {
	return &Handler{
		importSvc: importSvc,
		txSvc:     txSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/banks", h.banks)
	r.Post("/", h.importCSV)
	r.Post("/confirm", h.confirmImport)
}

type importSuccessResponse struct {
	Imported     int                        `json:"imported"`
	Transactions []transactionhttp.Response `json:"transactions"`
	Accounts     []accounthttp.Response     `json:"accounts"`
}

type paramsDTO struct {
	Type        transaction.Type `json:"type"`
	Amount      decimal.Decimal  `json:"amount"`
	Description string           `json:"description"`
	Date        string           `json:"date"`
}

type conflictDTO struct {
	Incoming paramsDTO                `json:"incoming"`
	Existing transactionhttp.Response `json:"existing"`
}

type importConflictResponse struct {
	New       []paramsDTO   `json:"new"`
	Conflicts []conflictDTO `json:"conflicts"`
}

type confirmRequest struct {
	AccountID uuid.UUID   `json:"account_id"`
	Params    []paramsDTO `json:"params"`
}

func (h *Handler) banks(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, h.importSvc.Banks())
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	owner, _ := auth.OwnerID(r.Context())

	if err := r.ParseMultipartForm(maxUpload); err != nil {
		response.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	bank := importer.Bank(r.FormValue("bank"))
	if bank == "" {
		response.BadRequest(w, "bank field is required")
		return
	}

	accountID, err := uuid.Parse(r.FormValue("account_id"))
	if err != nil {
		response.BadRequest(w, "account_id field is required")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(bank, file)
	if err != nil {
		// A statement that fails to parse is bad input, not a server fault.
		if response.Status(err) == http.StatusInternalServerError {
			response.BadRequest(w, err.Error())
			return
		}

		response.Error(w, r, err)

		return
	}

	result, err := h.txSvc.ImportBatch(r.Context(), owner, accountID, params)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       make([]paramsDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}
		for _, p := range result.New {
			resp.New = append(resp.New, toParamsDTO(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toParamsDTO(c.Incoming),
				Existing: transactionhttp.ToResponse(c.Existing),
			})
		}

		response.JSON(w, http.StatusConflict, resp)

		return
	}

	response.JSON(w, http.StatusCreated, toSuccessResponse(result))
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	owner, _ := auth.OwnerID(r.Context())

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	params := make([]transaction.CreateParams, 0, len(req.Params))

	for _, p := range req.Params {
		date, err := time.Parse(time.DateOnly, p.Date)
		if err != nil {
			response.BadRequest(w, "date must be YYYY-MM-DD")
			return
		}

		params = append(params, transaction.CreateParams{
			Type:        p.Type,
			Amount:      p.Amount,
			Description: p.Description,
			Date:        date,
		})
	}

	result, err := h.txSvc.CreateBatch(r.Context(), owner, req.AccountID, params)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, toSuccessResponse(result))
}

func toSuccessResponse(result *transaction.ImportResult) importSuccessResponse {
	return importSuccessResponse{
		Imported:     len(result.Imported),
		Transactions: transactionhttp.ToResponseList(result.Imported),
		Accounts:     accounthttp.ToResponseList(result.Accounts),
	}
}

func toParamsDTO(p transaction.CreateParams) paramsDTO {
	return paramsDTO{
		Type:        p.Type,
		Amount:      p.Amount.Round(money.Places),
		Description: p.Description,
		Date:        p.Date.Format(time.DateOnly),
	}
}
