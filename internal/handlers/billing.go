package handlers

import (
	"net/http"

	"github.com/vaughan-dsouza/freelancehub/internal/models"
	"github.com/vaughan-dsouza/freelancehub/internal/utils"
)

type BillingHandler struct {
	base
}

func (h *BillingHandler) Charges(w http.ResponseWriter, r *http.Request) {
	f, ok := h.billingScope(w, r)
	if !ok {
		return
	}

	charges, err := h.store.ListCharges(r.Context(), f)
	if err != nil {
		h.dbError(w, r, "list charges", err, "")
		return
	}
	utils.JSON(w, http.StatusOK, charges)
}

func (h *BillingHandler) PurchaseHours(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProjectID      int64   `json:"project_id"`
		HoursPurchased float64 `json:"hours_purchased"`
		Amount         float64 `json:"amount"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}
	if body.ProjectID <= 0 || body.HoursPurchased <= 0 || body.Amount < 0 {
		utils.JSONError(w, http.StatusBadRequest, "project_id, positive hours_purchased and amount are required")
		return
	}

	p, ok := h.ownedProject(w, r, body.ProjectID)
	if !ok {
		return
	}

	ph := models.PurchasedHours{
		ProjectID:      p.ID,
		ClientID:       p.ClientID,
		HoursPurchased: body.HoursPurchased,
		Amount:         body.Amount,
	}
	if err := h.store.CreatePurchase(r.Context(), &ph); err != nil {
		h.dbError(w, r, "record purchase", err, "")
		return
	}
	utils.JSON(w, http.StatusCreated, ph)
}

func (h *BillingHandler) PurchasedHours(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.QueryID(r, "project_id")
	if !ok {
		utils.JSONError(w, http.StatusBadRequest, "project_id is required")
		return
	}
	if _, ok := h.project(w, r, id); !ok {
		return
	}

	rows, err := h.store.ListPurchases(r.Context(), id)
	if err != nil {
		h.dbError(w, r, "list purchases", err, "")
		return
	}
	utils.JSON(w, http.StatusOK, rows)
}

func (h *BillingHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.QueryID(r, "project_id")
	if !ok {
		utils.JSONError(w, http.StatusBadRequest, "project_id is required")
		return
	}
	if _, ok := h.project(w, r, id); !ok {
		return
	}

	sum, err := h.store.BillingSummary(r.Context(), id)
	if err != nil {
		h.dbError(w, r, "load billing summary", err, "")
		return
	}
	utils.JSON(w, http.StatusOK, sum)
}
