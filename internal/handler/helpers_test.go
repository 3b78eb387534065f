package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mentora-api/internal/dto"
)

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func validatorError(t *testing.T) error {
	t.Helper()
	status := "archived"
	err := validator.New().Struct(dto.ReviewSessionUpdate{Status: &status})
	require.Error(t, err)
	return err
}
