package utils_test

import (
	"encoding/json"
	"testing"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponseCarriesTypedKind(t *testing.T) {
	resp := utils.ErrorResponse("GetOrder failed", apperr.KindForbidden)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "forbidden", resp.Error.Kind)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"error":{"kind":"forbidden"}`)
}

func TestSuccessResponseOmitsError(t *testing.T) {
	resp := utils.SuccessResponse("stock replenished", nil)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"error"`)
}
