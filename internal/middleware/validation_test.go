package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
)

type orderPayload struct {
	Items []orderLinePayload `json:"items" validate:"required,min=1,dive"`
}

type orderLinePayload struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

type statusPayload struct {
	Status string `json:"status" validate:"required,oneof=Pending Shipped Cancelled"`
}

func TestDecodeAndValidate_ValidPayload(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/",
		bytes.NewBufferString(`{"items":[{"product_id":1,"quantity":2}]}`))

	var payload orderPayload
	if err := DecodeAndValidate(req, &payload); err != nil {
		t.Fatalf("expected valid payload to pass, got %v", err)
	}
	if payload.Items[0].ProductID != 1 || payload.Items[0].Quantity != 2 {
		t.Errorf("unexpected decoded payload: %+v", payload)
	}
}

func TestDecodeAndValidate_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{`))

	var payload orderPayload
	err := DecodeAndValidate(req, &payload)
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	if len(FormatValidationErrors(err)) != 0 {
		t.Error("decode errors must not be formatted as field errors")
	}
}

func TestDecodeAndValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing items", `{}`, "Items"},
		{"empty items", `{"items":[]}`, "Items"},
		{"zero quantity", `{"items":[{"product_id":1,"quantity":0}]}`, "Quantity"},
		{"negative product ID", `{"items":[{"product_id":-1,"quantity":1}]}`, "ProductID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tt.body))

			var payload orderPayload
			err := DecodeAndValidate(req, &payload)
			if err == nil {
				t.Fatal("expected validation error")
			}

			fieldErrors := FormatValidationErrors(err)
			if len(fieldErrors) == 0 {
				t.Fatal("expected formatted field errors")
			}

			found := false
			for _, fe := range fieldErrors {
				if fe.Field == tt.wantField {
					found = true
					if fe.Message == "" {
						t.Errorf("field %s has empty message", fe.Field)
					}
				}
			}
			if !found {
				t.Errorf("expected error on field %s, got %+v", tt.wantField, fieldErrors)
			}
		})
	}
}

func TestValidateRequest_OneOf(t *testing.T) {
	if err := ValidateRequest(&statusPayload{Status: "Shipped"}); err != nil {
		t.Errorf("expected Shipped to validate, got %v", err)
	}

	err := ValidateRequest(&statusPayload{Status: "Delivered"})
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
	fieldErrors := FormatValidationErrors(err)
	if len(fieldErrors) != 1 || fieldErrors[0].Field != "Status" {
		t.Errorf("unexpected field errors: %+v", fieldErrors)
	}
}

func TestRespondWithValidationErrors_Body(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithValidationErrors(rec, []ValidationError{
		{Field: "Quantity", Message: "Value must be greater than or equal to 1"},
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	resp := decodeError(t, rec)
	if resp.Error.Message != "validation failed" {
		t.Errorf("unexpected message %q", resp.Error.Message)
	}
	if _, ok := resp.Error.Details["validation_errors"]; !ok {
		t.Error("expected validation_errors in details")
	}
}
