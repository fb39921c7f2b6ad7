package service

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taxops/fbrgate/internal/gateway/domain"
)

func TestDecodeWrappedSuccess(t *testing.T) {
	body := []byte(`{
		"invoiceNumber": "7000007DI1747119701593",
		"dated": "2025-05-13 14:21:41",
		"validationResponse": {
			"statusCode": "00",
			"status": "Valid",
			"error": ""
		}
	}`)

	decoded := DecodeResponse(http.StatusOK, body)
	assert.Equal(t, domain.KindSuccess, decoded.Kind)
	assert.Equal(t, "7000007DI1747119701593", decoded.InvoiceNumber)
	assert.False(t, decoded.EmptyBody)
}

func TestDecodeWrappedValidationFailure(t *testing.T) {
	body := []byte(`{
		"validationResponse": {
			"statusCode": "01",
			"status": "Invalid",
			"invoiceStatuses": [
				{"itemSNo": "1", "statusCode": "00", "status": "Valid"},
				{"itemSNo": "2", "statusCode": "01", "errorCode": "0052", "error": "Buyer NTN/CNIC is invalid"}
			]
		}
	}`)

	decoded := DecodeResponse(http.StatusOK, body)
	require.Equal(t, domain.KindValidationFailure, decoded.Kind)
	require.Len(t, decoded.ItemErrors, 1)
	assert.Equal(t, "2", decoded.ItemErrors[0].ItemSNo)
	assert.Equal(t, "0052", decoded.ItemErrors[0].ErrorCode)
	assert.Equal(t, "Buyer NTN/CNIC is invalid", decoded.ItemErrors[0].Message)
}

func TestDecodeWrappedFailureWithoutItemDetail(t *testing.T) {
	body := []byte(`{"validationResponse": {"statusCode": "01", "error": "Seller not registered for DI"}}`)

	decoded := DecodeResponse(http.StatusOK, body)
	require.Equal(t, domain.KindValidationFailure, decoded.Kind)
	require.Len(t, decoded.ItemErrors, 1)
	assert.Equal(t, "Seller not registered for DI", decoded.ItemErrors[0].Message)
}

func TestDecodeFlatSuccess(t *testing.T) {
	decoded := DecodeResponse(http.StatusOK, []byte(`{"invoiceNumber": "7000007DI1747119701593"}`))
	assert.Equal(t, domain.KindSuccess, decoded.Kind)
	assert.Equal(t, "7000007DI1747119701593", decoded.InvoiceNumber)
}

func TestDecodeFlatError(t *testing.T) {
	decoded := DecodeResponse(http.StatusUnauthorized, []byte(`{"statusCode": "401", "error": "token expired"}`))
	require.Equal(t, domain.KindValidationFailure, decoded.Kind)
	require.Len(t, decoded.ItemErrors, 1)
	assert.Equal(t, "token expired", decoded.ItemErrors[0].Message)
}

func TestDecodeEmptyBodyQuirk(t *testing.T) {
	decoded := DecodeResponse(http.StatusOK, nil)
	assert.Equal(t, domain.KindSuccess, decoded.Kind)
	assert.True(t, decoded.EmptyBody)
	assert.Empty(t, decoded.InvoiceNumber)

	decoded = DecodeResponse(http.StatusOK, []byte("  \n"))
	assert.True(t, decoded.EmptyBody)
}

func TestDecodeEmptyBodyOnErrorStatusIsUnknown(t *testing.T) {
	decoded := DecodeResponse(http.StatusBadGateway, nil)
	assert.Equal(t, domain.KindUnknown, decoded.Kind)
}

func TestDecodeUnknownShape(t *testing.T) {
	body := []byte(`<html>Bad Gateway</html>`)
	decoded := DecodeResponse(http.StatusBadGateway, body)
	assert.Equal(t, domain.KindUnknown, decoded.Kind)
	assert.Equal(t, string(body), string(decoded.Raw))

	decoded = DecodeResponse(http.StatusOK, []byte(`{"something": "else"}`))
	assert.Equal(t, domain.KindUnknown, decoded.Kind)
}
