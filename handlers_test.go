package main

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"bitbucket.org/mmdatafocus/cafepos_backend/models"
	"bitbucket.org/mmdatafocus/cafepos_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindSaleBody(t *testing.T, body string) (recordSaleRequest, error) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/bills/7/sales", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req recordSaleRequest
	err := c.ShouldBindJSON(&req)
	return req, err
}

// The sale body carries only the lines; the bill id comes from the path.
func TestSaleBodyWithoutBillIdBinds(t *testing.T) {
	req, err := bindSaleBody(t, `{"lines":[{"product_id":1,"quantity":"2"}]}`)
	require.NoError(t, err)
	require.Len(t, req.Lines, 1)
	assert.Equal(t, 1, req.Lines[0].ProductId)
	assert.Equal(t, "2", req.Lines[0].Quantity.String())

	// The assembled input passes model validation once the path id is set.
	sale := models.NewSale{BillId: 7, Lines: req.Lines}
	assert.NoError(t, utils.ValidateInput(&sale))
}

func TestSaleBodyBillIdIsIgnored(t *testing.T) {
	req, err := bindSaleBody(t, `{"bill_id":99,"lines":[{"product_id":1,"quantity":"1"}]}`)
	require.NoError(t, err)
	require.Len(t, req.Lines, 1)
}

func TestSaleBodyRequiresLines(t *testing.T) {
	for name, body := range map[string]string{
		"missing": `{}`,
		"empty":   `{"lines":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := bindSaleBody(t, body)
			assert.Error(t, err)
		})
	}
}

func TestSaleBodyLineFieldsRequired(t *testing.T) {
	_, err := bindSaleBody(t, `{"lines":[{"quantity":"1"}]}`)
	assert.Error(t, err)
}
