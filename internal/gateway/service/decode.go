package service

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/taxops/fbrgate/internal/gateway/domain"
)

const statusAccepted = "00"

// responseEnvelope is the superset of the body shapes the gateway has
// been observed to return. All fields are optional; probing happens here
// and nowhere else.
type responseEnvelope struct {
	InvoiceNumber      string `json:"invoiceNumber"`
	Dated              string `json:"dated"`
	StatusCode         string `json:"statusCode"`
	Status             string `json:"status"`
	ErrorMessage       string `json:"error"`
	ErrorCode          string `json:"errorCode"`
	ValidationResponse *struct {
		StatusCode      string `json:"statusCode"`
		Status          string `json:"status"`
		ErrorMessage    string `json:"error"`
		ErrorCode       string `json:"errorCode"`
		InvoiceStatuses []struct {
			ItemSNo      string `json:"itemSNo"`
			StatusCode   string `json:"statusCode"`
			InvoiceNo    string `json:"invoiceNo"`
			Status       string `json:"status"`
			ErrorCode    string `json:"errorCode"`
			ErrorMessage string `json:"error"`
		} `json:"invoiceStatuses"`
	} `json:"validationResponse"`
}

// DecodeResponse normalizes a raw gateway response into the tagged union.
// It recognizes, in order: the empty-body-as-success quirk, the
// validation-wrapped shape, and the flat shape. Anything else is
// KindUnknown with the raw body preserved.
func DecodeResponse(httpStatus int, body []byte) domain.DecodedResponse {
	trimmed := strings.TrimSpace(string(body))
	if httpStatus == http.StatusOK && trimmed == "" {
		return domain.DecodedResponse{Kind: domain.KindSuccess, EmptyBody: true}
	}

	var env responseEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return domain.DecodedResponse{Kind: domain.KindUnknown, Raw: json.RawMessage(body)}
	}

	if vr := env.ValidationResponse; vr != nil {
		if vr.StatusCode == statusAccepted {
			return domain.DecodedResponse{
				Kind:          domain.KindSuccess,
				InvoiceNumber: strings.TrimSpace(env.InvoiceNumber),
				Raw:           json.RawMessage(body),
			}
		}
		failure := domain.DecodedResponse{
			Kind: domain.KindValidationFailure,
			Raw:  json.RawMessage(body),
		}
		for _, st := range vr.InvoiceStatuses {
			if st.StatusCode == statusAccepted {
				continue
			}
			failure.ItemErrors = append(failure.ItemErrors, domain.ItemError{
				ItemSNo:    st.ItemSNo,
				StatusCode: st.StatusCode,
				ErrorCode:  st.ErrorCode,
				Message:    firstNonEmpty(st.ErrorMessage, st.Status),
			})
		}
		if len(failure.ItemErrors) == 0 {
			failure.ItemErrors = append(failure.ItemErrors, domain.ItemError{
				StatusCode: vr.StatusCode,
				ErrorCode:  vr.ErrorCode,
				Message:    firstNonEmpty(vr.ErrorMessage, vr.Status, "gateway rejected the payload"),
			})
		}
		return failure
	}

	// Flat success: an invoice number with no failure status.
	if env.InvoiceNumber != "" && (env.StatusCode == "" || env.StatusCode == statusAccepted) {
		return domain.DecodedResponse{
			Kind:          domain.KindSuccess,
			InvoiceNumber: strings.TrimSpace(env.InvoiceNumber),
			Raw:           json.RawMessage(body),
		}
	}

	// Flat rejection: a failure status or a bare error message.
	if (env.StatusCode != "" && env.StatusCode != statusAccepted) || env.ErrorMessage != "" {
		return domain.DecodedResponse{
			Kind: domain.KindValidationFailure,
			ItemErrors: []domain.ItemError{{
				StatusCode: env.StatusCode,
				ErrorCode:  env.ErrorCode,
				Message:    firstNonEmpty(env.ErrorMessage, env.Status, "gateway rejected the payload"),
			}},
			Raw: json.RawMessage(body),
		}
	}

	if env.StatusCode == statusAccepted {
		return domain.DecodedResponse{
			Kind: domain.KindSuccess,
			Raw:  json.RawMessage(body),
		}
	}

	return domain.DecodedResponse{Kind: domain.KindUnknown, Raw: json.RawMessage(body)}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
