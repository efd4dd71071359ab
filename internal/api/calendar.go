package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/atelierhq/atelier-admin/internal/schedule"
)

// DayAppointments answers "what falls on date X" for the day view.
// Query: date=YYYY-MM-DD, filter=all|first|second|collection.
func (h *Handler) DayAppointments(w http.ResponseWriter, r *http.Request) {
	day, err := time.ParseInLocation("2006-01-02", r.URL.Query().Get("date"), time.Local)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid or missing date, expected YYYY-MM-DD")
		return
	}
	filter := schedule.ParseFilter(r.URL.Query().Get("filter"))

	orders, err := h.store.ListOrdersInWindow(r.Context(), day, day.AddDate(0, 0, 1))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get orders for day view")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get appointments")
		return
	}

	h.respondWithData(w, http.StatusOK, "", map[string]interface{}{
		"date":         day.Format("2006-01-02"),
		"past":         schedule.IsPastDate(day, time.Now()),
		"appointments": schedule.OrdersForDate(day, orders, filter),
	})
}

// MonthAppointments renders the month grid. Query: year=, month= (1-12).
func (h *Handler) MonthAppointments(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 1 {
		h.respondWithError(w, http.StatusBadRequest, "Invalid or missing year")
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		h.respondWithError(w, http.StatusBadRequest, "Invalid or missing month, expected 1-12")
		return
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	orders, err := h.store.ListOrdersInWindow(r.Context(), from, from.AddDate(0, 1, 0))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get orders for month view")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get appointments")
		return
	}

	h.respondWithData(w, http.StatusOK, "", map[string]interface{}{
		"year":  year,
		"month": month,
		"cells": schedule.BuildMonthGrid(year, time.Month(month), orders),
	})
}

// WeekAppointments renders the Sunday-start week containing the anchor.
// Query: anchor=YYYY-MM-DD, defaulting to today.
func (h *Handler) WeekAppointments(w http.ResponseWriter, r *http.Request) {
	anchor := time.Now()
	if raw := r.URL.Query().Get("anchor"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			h.respondWithError(w, http.StatusBadRequest, "Invalid anchor date, expected YYYY-MM-DD")
			return
		}
		anchor = parsed
	}

	y, m, d := anchor.Date()
	sunday := time.Date(y, m, d, 0, 0, 0, 0, time.Local).AddDate(0, 0, -int(anchor.Weekday()))
	orders, err := h.store.ListOrdersInWindow(r.Context(), sunday, sunday.AddDate(0, 0, 7))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get orders for week view")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get appointments")
		return
	}

	h.respondWithData(w, http.StatusOK, "", map[string]interface{}{
		"anchor": anchor.Format("2006-01-02"),
		"cells":  schedule.BuildWeekGrid(anchor, orders),
	})
}
