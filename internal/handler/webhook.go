package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ourxmas/payment-service/internal/metrics"
	"github.com/ourxmas/payment-service/internal/models"
	"github.com/ourxmas/payment-service/internal/service"
)

// transactionDateLayout is the format Sepay uses for transactionDate.
const transactionDateLayout = "2006-01-02 15:04:05"

// sepayWebhookPayload mirrors the Sepay callback body. Pointers distinguish
// absent fields from zero values during validation.
type sepayWebhookPayload struct {
	ID              *int64  `json:"id"`
	Gateway         *string `json:"gateway"`
	TransactionDate *string `json:"transactionDate"`
	AccountNumber   *string `json:"accountNumber"`
	Code            *string `json:"code"`
	Content         *string `json:"content"`
	TransferType    *string `json:"transferType"`
	TransferAmount  *int64  `json:"transferAmount"`
	Accumulated     *int64  `json:"accumulated"`
	SubAccount      *string `json:"subAccount"`
	ReferenceCode   *string `json:"referenceCode"`
	Description     *string `json:"description"`
}

func (p *sepayWebhookPayload) validate() (service.IngestInput, []fieldError) {
	var errs []fieldError
	required := func(field string, value *string) string {
		if value == nil || *value == "" {
			errs = append(errs, fieldError{Field: field, Message: "field required"})
			return ""
		}
		return *value
	}

	if p.ID == nil {
		errs = append(errs, fieldError{Field: "id", Message: "field required"})
	}
	gateway := required("gateway", p.Gateway)
	accountNumber := required("accountNumber", p.AccountNumber)
	content := required("content", p.Content)
	referenceCode := required("referenceCode", p.ReferenceCode)
	required("description", p.Description)

	var transactionDate time.Time
	if raw := required("transactionDate", p.TransactionDate); raw != "" {
		parsed, err := time.Parse(transactionDateLayout, raw)
		if err != nil {
			errs = append(errs, fieldError{Field: "transactionDate", Message: "expected format YYYY-MM-DD HH:MM:SS"})
		} else {
			transactionDate = parsed
		}
	}

	transferType := required("transferType", p.TransferType)
	if transferType != "" && transferType != models.TransferIn && transferType != models.TransferOut {
		errs = append(errs, fieldError{Field: "transferType", Message: "must be 'in' or 'out'"})
	}

	if p.TransferAmount == nil {
		errs = append(errs, fieldError{Field: "transferAmount", Message: "field required"})
	} else if *p.TransferAmount < 0 {
		errs = append(errs, fieldError{Field: "transferAmount", Message: "must be non-negative"})
	}
	if p.Accumulated == nil {
		errs = append(errs, fieldError{Field: "accumulated", Message: "field required"})
	}

	if len(errs) > 0 {
		return service.IngestInput{}, errs
	}
	return service.IngestInput{
		SepayID:         *p.ID,
		Gateway:         gateway,
		TransactionDate: transactionDate,
		AccountNumber:   accountNumber,
		Content:         content,
		TransferType:    transferType,
		Amount:          *p.TransferAmount,
		ReferenceCode:   referenceCode,
		Description:     p.Description,
	}, nil
}

// Webhook receives a transaction notification from Sepay. Duplicate
// deliveries return the same success response as the first one; the gateway
// only needs to know the event landed.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	var payload sepayWebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		metrics.WebhookEvents.WithLabelValues(metrics.OutcomeInvalid).Inc()
		respondValidationError(w, []fieldError{{Field: "body", Message: "invalid JSON payload"}})
		return
	}

	input, errs := payload.validate()
	if len(errs) > 0 {
		metrics.WebhookEvents.WithLabelValues(metrics.OutcomeInvalid).Inc()
		respondValidationError(w, errs)
		return
	}

	_, created, err := h.svc.IngestTransaction(input)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(metrics.OutcomeError).Inc()
		h.log.Errorf("Failed to ingest transaction %d: %v", input.SepayID, err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	message := fmt.Sprintf("Transaction %d processed successfully", input.SepayID)
	outcome := metrics.OutcomeCreated
	if !created {
		message = fmt.Sprintf("Transaction %d already processed", input.SepayID)
		outcome = metrics.OutcomeDuplicate
	}
	metrics.WebhookEvents.WithLabelValues(outcome).Inc()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": message,
	})
}
