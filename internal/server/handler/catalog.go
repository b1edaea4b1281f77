package handler

import (
	"net/http"
	"strconv"

	"github.com/mmeshcher/gestior/internal/model"
)

// ListProducts возвращает страницу товаров с фильтрами search, category и is_active.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := model.ProductFilter{Search: q.Get("search"), Category: q.Get("category")}
	if v, err := strconv.ParseBool(q.Get("is_active")); err == nil {
		f.IsActive = &v
	}

	page, err := h.service.ListProducts(r.Context(), userID(r), listParams(r), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writePage(w, page)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	p, err := h.service.GetProduct(r.Context(), userID(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req model.CreateProductRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.service.CreateProduct(r.Context(), userID(r), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req model.CreateProductRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.service.UpdateProduct(r.Context(), userID(r), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteProduct(r.Context(), userID(r), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateStock устанавливает остаток товара.
func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req model.StockUpdateRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.service.UpdateStock(r.Context(), userID(r), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	f := model.ClientFilter{Search: r.URL.Query().Get("search")}
	page, err := h.service.ListClients(r.Context(), userID(r), listParams(r), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writePage(w, page)
}

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	c, err := h.service.GetClient(r.Context(), userID(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req model.CreateClientRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.service.CreateClient(r.Context(), userID(r), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, c)
}

func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req model.CreateClientRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.service.UpdateClient(r.Context(), userID(r), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteClient(r.Context(), userID(r), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPaymentMethods возвращает способы оплаты.
func (h *Handler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.service.ListPaymentMethods(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if methods == nil {
		methods = []model.PaymentMethod{}
	}
	writeData(w, http.StatusOK, &methods)
}
