package handler

import (
	"errors"
	"fmt"
	"net/http"

	preferencesdomain "expense-tracker-go/internal/domain/preferences"
	recordsdomain "expense-tracker-go/internal/domain/records"
	"expense-tracker-go/internal/export"
	"expense-tracker-go/internal/transport/httpserver/middleware"
	"expense-tracker-go/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// recordNames carries the wording that differs between the expenses and
// income endpoints: URL area, the JSON key for the grouping label, the
// export column header and the exported file prefix.
type recordNames struct {
	area        string
	labelKey    string
	labelHeader string
	summaryKey  string
	filePrefix  string
}

type RecordHandlers struct {
	service     *recordsdomain.Service
	preferences *preferencesdomain.Service
	log         logger.Logger
	names       recordNames
}

type recordRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Source      string  `json:"source"`
	Date        string  `json:"date"`
}

func (req recordRequest) label() string {
	if req.Category != "" {
		return req.Category
	}
	return req.Source
}

func (h *RecordHandlers) toResponse(record recordsdomain.Record) map[string]interface{} {
	return map[string]interface{}{
		"id":          record.ID,
		"amount":      record.Amount,
		"description": record.Description,
		h.names.labelKey: record.Label,
		"date":        record.Date.Format("2006-01-02"),
	}
}

func (h *RecordHandlers) toResponseList(items []recordsdomain.Record) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(items))
	for _, record := range items {
		out = append(out, h.toResponse(record))
	}
	return out
}

func (h *RecordHandlers) List(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	page, err := parsePageParam(r.URL.Query().Get("page"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_page", "page must be a positive integer")
		return
	}

	result, err := h.service.ListPage(r.Context(), user.ID, page)
	if err != nil {
		h.log.InternalError(h.names.area+".list failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	currency, err := h.preferences.CurrencyFor(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError(h.names.area+".list: currency lookup failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items":      h.toResponseList(result.Items),
		"total":      result.Total,
		"page":       result.Page,
		"page_count": result.PageCount,
		"currency":   currency,
	})
}

func (h *RecordHandlers) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req recordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	record, err := h.service.Create(r.Context(), recordsdomain.RecordInput{
		OwnerID:     user.ID,
		Amount:      req.Amount,
		Description: req.Description,
		Label:       req.label(),
		Date:        req.Date,
	})
	if err != nil {
		h.writeRecordError(w, "create", user.ID, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.toResponse(*record))
}

func (h *RecordHandlers) GetOne(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	recordID := chi.URLParam(r, "id")

	record, err := h.service.Get(r.Context(), user.ID, recordID)
	if err != nil {
		h.writeRecordError(w, "get", user.ID, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toResponse(*record))
}

func (h *RecordHandlers) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	recordID := chi.URLParam(r, "id")

	var req recordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	record, err := h.service.Update(r.Context(), user.ID, recordID, recordsdomain.RecordInput{
		OwnerID:     user.ID,
		Amount:      req.Amount,
		Description: req.Description,
		Label:       req.label(),
		Date:        req.Date,
	})
	if err != nil {
		h.writeRecordError(w, "update", user.ID, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toResponse(*record))
}

func (h *RecordHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	recordID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), user.ID, recordID); err != nil {
		h.writeRecordError(w, "delete", user.ID, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "record removed"})
}

func (h *RecordHandlers) Search(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req struct {
		SearchText string `json:"searchText"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	items, err := h.service.Search(r.Context(), user.ID, req.SearchText)
	if err != nil {
		h.log.InternalError(h.names.area+".search failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, h.toResponseList(items))
}

// Summary reports per-label totals over the trailing six months, keyed the
// way the dashboard chart expects (expense_category_data / income_source_data).
func (h *RecordHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	summary, err := h.service.Summary(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError(h.names.area+".summary failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{h.names.summaryKey: summary})
}

func (h *RecordHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	stats, err := h.service.Stats(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError(h.names.area+".stats failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": stats.Count,
		"total": stats.Total,
	})
}

func (h *RecordHandlers) Labels(w http.ResponseWriter, r *http.Request) {
	labels, err := h.service.Labels(r.Context())
	if err != nil {
		h.log.InternalError(h.names.area+".labels failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{h.names.labelKey + "s": labels})
}

func (h *RecordHandlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "csv", func(items []recordsdomain.Record, total float64) (export.Document, error) {
		return export.CSV(h.names.filePrefix, h.names.labelHeader, items, h.service.Now())
	})
}

func (h *RecordHandlers) ExportExcel(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "excel", func(items []recordsdomain.Record, total float64) (export.Document, error) {
		return export.Excel(h.names.filePrefix, h.names.labelHeader, items, h.service.Now())
	})
}

func (h *RecordHandlers) ExportPDF(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "pdf", func(items []recordsdomain.Record, total float64) (export.Document, error) {
		return export.PDF(h.names.filePrefix, h.names.labelHeader, items, total, h.service.Now())
	})
}

func (h *RecordHandlers) export(w http.ResponseWriter, r *http.Request, format string, build func([]recordsdomain.Record, float64) (export.Document, error)) {
	user, _ := middleware.UserFromContext(r.Context())

	items, total, err := h.service.Export(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError(h.names.area+".export_"+format+" failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	doc, err := build(items, total)
	if err != nil {
		h.log.InternalError(h.names.area+".export_"+format+": document build failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Data); err != nil {
		h.log.Error(h.names.area+".export_"+format+": write failed", "error", err)
	}
}

func (h *RecordHandlers) writeRecordError(w http.ResponseWriter, op, userID string, err error) {
	switch {
	case errors.Is(err, recordsdomain.ErrRecordNotFound):
		h.log.BusinessError(h.names.area+"."+op+": not found", err, "user_id", userID)
		writeError(w, http.StatusNotFound, "not_found", "record not found")
	case errors.Is(err, recordsdomain.ErrAmountRequired),
		errors.Is(err, recordsdomain.ErrDescriptionRequired),
		errors.Is(err, recordsdomain.ErrInvalidDate):
		h.log.BusinessError(h.names.area+"."+op+": invalid input", err, "user_id", userID)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		h.log.InternalError(h.names.area+"."+op+" failed", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
