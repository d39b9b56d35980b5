package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/xuri/excelize/v2"

	"github.com/ourxmas/payment-service/internal/models"
	"github.com/ourxmas/payment-service/internal/service"
)

var listDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseListDate(value string) (time.Time, error) {
	for _, layout := range listDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func (h *Handler) listParams(r *http.Request) (service.ListParams, []fieldError) {
	var errs []fieldError
	query := r.URL.Query()

	params := service.ListParams{
		Content: query.Get("content"),
		Skip:    0,
		Limit:   100,
	}

	if v := query.Get("start_date"); v != "" {
		t, err := parseListDate(v)
		if err != nil {
			errs = append(errs, fieldError{Field: "start_date", Message: "invalid date"})
		} else {
			params.StartDate = &t
		}
	}
	if v := query.Get("end_date"); v != "" {
		t, err := parseListDate(v)
		if err != nil {
			errs = append(errs, fieldError{Field: "end_date", Message: "invalid date"})
		} else {
			params.EndDate = &t
		}
	}
	if v := query.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = append(errs, fieldError{Field: "skip", Message: "must be a non-negative integer"})
		} else {
			params.Skip = n
		}
	}
	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			errs = append(errs, fieldError{Field: "limit", Message: "must be a positive integer"})
		} else {
			params.Limit = n
		}
	}
	return params, errs
}

// ListTransactions returns stored transactions matching the optional
// start_date, end_date and content filters.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	params, errs := h.listParams(r)
	if len(errs) > 0 {
		respondValidationError(w, errs)
		return
	}

	transactions, total, err := h.svc.ListTransactions(params)
	if err != nil {
		h.log.Errorf("Failed to list transactions: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    transactions,
		"total":   total,
	})
}

// GetTransaction returns one transaction by internal identifier
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondValidationError(w, []fieldError{{Field: "id", Message: "must be an integer"}})
		return
	}

	tx, err := h.svc.GetTransaction(id)
	if errors.Is(err, service.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	if err != nil {
		h.log.Errorf("Failed to get transaction %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondJSON(w, http.StatusOK, tx)
}

// ExportTransactions streams the filtered transaction listing as an xlsx file
func (h *Handler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	params, errs := h.listParams(r)
	if len(errs) > 0 {
		respondValidationError(w, errs)
		return
	}

	transactions, _, err := h.svc.ListTransactions(params)
	if err != nil {
		h.log.Errorf("Failed to export transactions: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	f := excelize.NewFile()
	sheet := "Transactions"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Sepay ID", "Gateway", "Date", "Account", "Content", "Type", "Amount", "Reference", "Description"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}
	for i, tx := range transactions {
		row := i + 2
		description := ""
		if tx.Description != nil {
			description = *tx.Description
		}
		values := []interface{}{
			tx.ID, tx.SepayID, tx.Gateway,
			tx.TransactionDate.Format("2006-01-02 15:04:05"),
			tx.AccountNumber, tx.Content, tx.TransferType,
			tx.Amount, tx.ReferenceCode, description,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, value)
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.xlsx"`)
	if err := f.Write(w); err != nil {
		h.log.Errorf("Failed to write xlsx export: %v", err)
	}
}
