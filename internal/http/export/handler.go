package export

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/export"
	"github.com/MrJamesThe3rd/pennywise/internal/http/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/http/response"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{accountID}", h.statement)
}

// statement streams the account's statement as CSV, or as plain text with ?format=text.
func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	owner, _ := auth.OwnerID(r.Context())

	accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		response.BadRequest(w, "invalid account id")
		return
	}

	from, err := optionalDate(r, "start_date")
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	to, err := optionalDate(r, "end_date")
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	st, err := h.svc.Statement(r.Context(), owner, accountID, from, to)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(st.Summary()))

		return
	}

	filename := fmt.Sprintf("statement_%s_%s.csv", accountID, time.Now().Format("20060102"))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := st.WriteCSV(w); err != nil {
		slog.Error("failed to write statement", "error", err)
	}
}

func optionalDate(r *http.Request, key string) (*time.Time, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: want YYYY-MM-DD", key)
	}

	return &t, nil
}
