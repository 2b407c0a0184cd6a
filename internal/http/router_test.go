package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pennywise/internal/app"
	"github.com/MrJamesThe3rd/pennywise/internal/config"
	pennyhttp "github.com/MrJamesThe3rd/pennywise/internal/http"
	"github.com/MrJamesThe3rd/pennywise/internal/http/auth"
)

var secret = []byte("router-test")

type client struct {
	t     *testing.T
	srv   http.Handler
	token string
}

func newServer(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.Storage.Driver = config.DriverMemory

	svc, closeFn, err := app.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(closeFn)

	return pennyhttp.New(svc, pennyhttp.Options{Secret: secret, AllowedOrigins: []string{"*"}})
}

func newClient(t *testing.T, srv http.Handler, owner uuid.UUID) *client {
	t.Helper()

	token, err := auth.IssueToken(secret, owner, time.Hour)
	require.NoError(t, err)

	return &client{t: t, srv: srv, token: token}
}

func (c *client) send(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()

	req.Header.Set("Authorization", "Bearer "+c.token)

	rec := httptest.NewRecorder()
	c.srv.ServeHTTP(rec, req)

	return rec
}

// do sends body as JSON and decodes the reply into out when out is non-nil.
func (c *client) do(method, path string, body any, wantStatus int, out any) {
	c.t.Helper()

	var r io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)

		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := c.send(req)
	require.Equal(c.t, wantStatus, rec.Code, rec.Body.String())

	if out != nil {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), out))
	}
}

type accountBody struct {
	ID      uuid.UUID `json:"id"`
	Balance string    `json:"balance"`
	Display string    `json:"display"`
}

type txBody struct {
	ID     uuid.UUID `json:"id"`
	Amount string    `json:"amount"`
	Date   string    `json:"date"`
}

type resultBody struct {
	Transaction txBody        `json:"transaction"`
	Accounts    []accountBody `json:"accounts"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *client) account(balance string) uuid.UUID {
	c.t.Helper()

	var a accountBody
	c.do(http.MethodPost, "/api/v1/accounts", map[string]any{
		"name":     "acc-" + balance,
		"type":     "bank",
		"balance":  balance,
		"currency": "EUR",
	}, http.StatusCreated, &a)

	return a.ID
}

func (c *client) balance(id uuid.UUID) string {
	c.t.Helper()

	var a accountBody
	c.do(http.MethodGet, "/api/v1/accounts/"+id.String(), nil, http.StatusOK, &a)

	return a.Balance
}

func balances(accounts []accountBody) map[uuid.UUID]string {
	out := make(map[uuid.UUID]string, len(accounts))
	for _, a := range accounts {
		out[a.ID] = a.Balance
	}

	return out
}

func TestRouter_Unauthenticated(t *testing.T) {
	srv := newServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_TransferEditDelete(t *testing.T) {
	c := newClient(t, newServer(t), uuid.New())

	a := c.account("1000")
	b := c.account("200")

	var created resultBody
	c.do(http.MethodPost, "/api/v1/transactions", map[string]any{
		"type":          "transfer",
		"amount":        "50",
		"description":   "savings",
		"date":          "2024-05-01",
		"account_id":    a,
		"to_account_id": b,
	}, http.StatusCreated, &created)

	assert.Equal(t, "50.00", created.Transaction.Amount)
	assert.Equal(t, "2024-05-01", created.Transaction.Date)
	assert.Equal(t, map[uuid.UUID]string{a: "950.00", b: "250.00"}, balances(created.Accounts))

	path := "/api/v1/transactions/" + created.Transaction.ID.String()

	var updated resultBody
	c.do(http.MethodPatch, path, map[string]any{"amount": "80"}, http.StatusOK, &updated)
	assert.Equal(t, map[uuid.UUID]string{a: "920.00", b: "280.00"}, balances(updated.Accounts))

	c.do(http.MethodDelete, path, nil, http.StatusNoContent, nil)
	c.do(http.MethodGet, path, nil, http.StatusNotFound, nil)

	assert.Equal(t, "1000.00", c.balance(a))
	assert.Equal(t, "200.00", c.balance(b))
}

func TestRouter_ErrorStatuses(t *testing.T) {
	srv := newServer(t)
	owner := newClient(t, srv, uuid.New())
	stranger := newClient(t, srv, uuid.New())

	a := owner.account("100")
	b := owner.account("0")

	var created resultBody
	owner.do(http.MethodPost, "/api/v1/transactions", map[string]any{
		"type":        "expense",
		"amount":      "10",
		"description": "lunch",
		"date":        "2024-05-02",
		"account_id":  a,
	}, http.StatusCreated, &created)

	txPath := "/api/v1/transactions/" + created.Transaction.ID.String()

	type testCase struct {
		name       string
		client     *client
		method     string
		path       string
		body       any
		wantStatus int
		wantError  string
	}

	tests := []testCase{
		{
			name:       "ForeignTransactionLooksMissing",
			client:     stranger,
			method:     http.MethodGet,
			path:       txPath,
			wantStatus: http.StatusNotFound,
			wantError:  "not found",
		},
		{
			name:       "ForeignDeleteLooksMissing",
			client:     stranger,
			method:     http.MethodDelete,
			path:       txPath,
			wantStatus: http.StatusNotFound,
			wantError:  "not found",
		},
		{
			name:   "ForeignAccount",
			client: stranger,
			method: http.MethodPost,
			path:   "/api/v1/transactions",
			body: map[string]any{
				"type": "income", "amount": "5", "description": "x", "date": "2024-05-02", "account_id": a,
			},
			wantStatus: http.StatusNotFound,
			wantError:  "not found",
		},
		{
			name:   "TransferToSelf",
			client: owner,
			method: http.MethodPost,
			path:   "/api/v1/transactions",
			body: map[string]any{
				"type": "transfer", "amount": "5", "description": "x", "date": "2024-05-02", "account_id": a, "to_account_id": a,
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:   "NegativeAmount",
			client: owner,
			method: http.MethodPost,
			path:   "/api/v1/transactions",
			body: map[string]any{
				"type": "income", "amount": "-5", "description": "x", "date": "2024-05-02", "account_id": a,
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:   "BadDate",
			client: owner,
			method: http.MethodPost,
			path:   "/api/v1/transactions",
			body: map[string]any{
				"type": "income", "amount": "5", "description": "x", "date": "02/05/2024", "account_id": a,
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "BadFilter",
			client:     owner,
			method:     http.MethodGet,
			path:       "/api/v1/transactions?start_date=yesterday",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "AccountInUse",
			client:     owner,
			method:     http.MethodDelete,
			path:       "/api/v1/accounts/" + a.String(),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "UnusedAccount",
			client:     owner,
			method:     http.MethodDelete,
			path:       "/api/v1/accounts/" + b.String(),
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.client.t = t

			if tt.wantError == "" {
				tt.client.do(tt.method, tt.path, tt.body, tt.wantStatus, nil)
				return
			}

			var body errorBody
			tt.client.do(tt.method, tt.path, tt.body, tt.wantStatus, &body)
			assert.Equal(t, tt.wantError, body.Error)
		})
	}

	owner.t = t
	assert.Equal(t, "90.00", owner.balance(a))
}

func TestRouter_ListFilters(t *testing.T) {
	c := newClient(t, newServer(t), uuid.New())

	a := c.account("0")
	b := c.account("0")

	for _, row := range []struct {
		account uuid.UUID
		date    string
	}{
		{a, "2024-01-10"},
		{a, "2024-02-10"},
		{b, "2024-02-11"},
	} {
		c.do(http.MethodPost, "/api/v1/transactions", map[string]any{
			"type": "income", "amount": "1", "description": "row", "date": row.date, "account_id": row.account,
		}, http.StatusCreated, nil)
	}

	var all []txBody
	c.do(http.MethodGet, "/api/v1/transactions", nil, http.StatusOK, &all)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-02-11", all[0].Date)

	var filtered []txBody
	c.do(http.MethodGet, "/api/v1/transactions?account_id="+a.String()+"&start_date=2024-02-01", nil, http.StatusOK, &filtered)
	require.Len(t, filtered, 1)
	assert.Equal(t, "2024-02-10", filtered[0].Date)
}

func TestRouter_Import(t *testing.T) {
	srv := newServer(t)
	c := newClient(t, srv, uuid.New())
	stranger := newClient(t, srv, uuid.New())

	a := c.account("100")

	statement := "Date,Description,Amount\n2024-03-01,Coffee,-3.50\n2024-03-02,Refund,12\n"

	upload := func(by *client) *httptest.ResponseRecorder {
		var buf bytes.Buffer

		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("bank", "generic"))
		require.NoError(t, mw.WriteField("account_id", a.String()))

		fw, err := mw.CreateFormFile("file", "statement.csv")
		require.NoError(t, err)

		_, err = io.WriteString(fw, statement)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/import", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		return by.send(req)
	}

	rec := upload(c)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var imported struct {
		Imported int           `json:"imported"`
		Accounts []accountBody `json:"accounts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &imported))
	assert.Equal(t, 2, imported.Imported)
	assert.Equal(t, map[uuid.UUID]string{a: "108.50"}, balances(imported.Accounts))

	rec = upload(stranger)
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "Coffee")
	assert.Equal(t, "108.50", c.balance(a))

	rec = upload(c)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	var conflict struct {
		New       []map[string]any `json:"new"`
		Conflicts []struct {
			Incoming map[string]any `json:"incoming"`
			Existing txBody         `json:"existing"`
		} `json:"conflicts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflict))
	assert.Empty(t, conflict.New)
	assert.Len(t, conflict.Conflicts, 2)
	assert.Equal(t, "108.50", c.balance(a))

	var confirmed struct {
		Imported int `json:"imported"`
	}
	c.do(http.MethodPost, "/api/v1/import/confirm", map[string]any{
		"account_id": a,
		"params": []map[string]any{
			{"type": "expense", "amount": "3.50", "description": "Coffee", "date": "2024-03-01"},
		},
	}, http.StatusCreated, &confirmed)
	assert.Equal(t, 1, confirmed.Imported)
	assert.Equal(t, "105.00", c.balance(a))

	var banks []string
	c.do(http.MethodGet, "/api/v1/import/banks", nil, http.StatusOK, &banks)
	assert.Equal(t, []string{"cgd", "generic"}, banks)
}

func TestRouter_Export(t *testing.T) {
	srv := newServer(t)
	c := newClient(t, srv, uuid.New())

	a := c.account("10")

	c.do(http.MethodPost, "/api/v1/transactions", map[string]any{
		"type": "expense", "amount": "2.5", "description": "Bus, return", "date": "2024-06-01", "account_id": a,
	}, http.StatusCreated, nil)

	rec := c.send(httptest.NewRequest(http.MethodGet, "/api/v1/export/"+a.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Date,Description,Amount,Type,Counterparty\n2024-06-01,\"Bus, return\",-2.50,expense,\n", rec.Body.String())

	rec = c.send(httptest.NewRequest(http.MethodGet, "/api/v1/export/"+a.String()+"?format=text", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "acc-10 (EUR)")

	stranger := newClient(t, srv, uuid.New())
	rec = stranger.send(httptest.NewRequest(http.MethodGet, "/api/v1/export/"+a.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
