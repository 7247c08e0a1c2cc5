package ez

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweet-shop/internal/domain"
)

func TestFromDomain(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.NewValidationError("name", "required"), http.StatusBadRequest},
		{fmt.Errorf("ledger.Purchase: %w", domain.ErrInsufficientStock), http.StatusBadRequest},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("sweet x: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrAlreadyExists, http.StatusConflict},
		{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
		{fmt.Errorf("tx: %w", domain.ErrStorageUnavailable), http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("db exploded"), http.StatusInternalServerError},
		{NotFound("nope"), http.StatusNotFound},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, FromDomain(tc.err).Code, tc.err.Error())
	}
}

func TestFromDomain_HidesInternalDetail(t *testing.T) {
	ae := FromDomain(errors.New("pq: password authentication failed"))
	assert.Equal(t, "internal error", ae.Msg)
}

func TestFromDomain_ValidationCarriesFields(t *testing.T) {
	ae := FromDomain(domain.NewValidationError("price", "must be >= 0"))
	data, ok := ae.Data.(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, []domain.FieldError{{Field: "price", Message: "must be >= 0"}}, data["errors"])
}

type qtyBody struct {
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

func bindJSON(body string) error {
	var in qtyBody
	return json.Unmarshal([]byte(body), &in)
}

func TestBindError_TypeMismatchBecomesFieldError(t *testing.T) {
	err := BindError(bindJSON(`{"quantity": 1.5}`))

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []domain.FieldError{{Field: "quantity", Message: "must be an integer"}}, ve.Errors)

	ae := FromDomain(err)
	assert.Equal(t, http.StatusBadRequest, ae.Code)
	assert.NotContains(t, fmt.Sprint(ae.Data), "Go struct")

	require.ErrorAs(t, BindError(bindJSON(`{"name": 3}`)), &ve)
	assert.Equal(t, "must be a string", ve.Errors[0].Message)
}

func TestBindError_MalformedJSON(t *testing.T) {
	ae := FromDomain(BindError(bindJSON(`{"quantity":`)))
	assert.Equal(t, http.StatusBadRequest, ae.Code)
	assert.Equal(t, "malformed JSON body", ae.Msg)
}
