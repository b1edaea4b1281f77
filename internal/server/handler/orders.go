package handler

import (
	"net/http"

	"github.com/mmeshcher/gestior/internal/model"
)

// ListOrders возвращает страницу заказов с фильтрами status, date_from и date_to.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := model.OrderFilter{
		Status:   model.OrderStatus(q.Get("status")),
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
	}

	page, err := h.service.ListOrders(r.Context(), userID(r), listParams(r), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writePage(w, page)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	o, err := h.service.GetOrder(r.Context(), userID(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

// CreateOrder создаёт заказ со всеми позициями одним запросом.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req model.CreateOrderRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := h.service.CreateOrder(r.Context(), userID(r), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, o)
}

func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req model.CreateOrderRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := h.service.UpdateOrder(r.Context(), userID(r), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteOrder(r.Context(), userID(r), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddOrderItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req model.CreateOrderItemRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := h.service.AddItem(r.Context(), userID(r), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, o)
}

func (h *Handler) RemoveOrderItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := idParam(w, r, "itemID")
	if !ok {
		return
	}
	o, err := h.service.RemoveItem(r.Context(), userID(r), id, itemID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

// FinalizeOrder завершает черновик. Тело запроса необязательно.
func (h *Handler) FinalizeOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req model.FinalizeOrderRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	o, err := h.service.Finalize(r.Context(), userID(r), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req model.CancelOrderRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	o, err := h.service.Cancel(r.Context(), userID(r), id, req.Reason)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, o)
}
