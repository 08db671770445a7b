package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		code int
		want int
	}{
		{apperrors.ErrCodeCartNotFound, http.StatusNotFound},
		{apperrors.ErrCodeCartAccessDenied, http.StatusForbidden},
		{apperrors.ErrCodeInvalidTotalPrice, http.StatusBadRequest},
		{apperrors.ErrCodeInvalidParams, http.StatusBadRequest},
		{apperrors.ErrCodeUnauthorized, http.StatusUnauthorized},
		{apperrors.ErrCodeTransactionStart, http.StatusInternalServerError},
		{123, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusOf(tt.code), "code=%d", tt.code)
	}
}

func TestError_WritesDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, apperrors.New(apperrors.ErrCodeLineItemNotFound, "购物车明细不存在").With("line_item_id", 9))

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.ErrCodeLineItemNotFound, resp.Code)
	assert.Equal(t, float64(9), resp.Details["line_item_id"])
	assert.Nil(t, resp.Data)
}
