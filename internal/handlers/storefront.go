package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/shopdesk/internal/models"
	"github.com/lehigh-university-libraries/shopdesk/internal/validation"
)

type cartRequest struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type orderResponse struct {
	Order *models.OrderResult `json:"order"`
	Cart  *models.Cart        `json:"cart,omitempty"`
}

// HandleProducts lists storefront products, optionally filtered by ?category=
func (h *Handler) HandleProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.writeFailure(w, err, http.StatusBadGateway)
		return
	}

	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		filtered := make([]models.Product, 0, len(products))
		for _, p := range products {
			if strings.EqualFold(p.Category, category) {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}
	h.writeJSON(w, http.StatusOK, products)
}

func (h *Handler) HandleProductDetail(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeFailure(w, err, http.StatusBadGateway)
		return
	}
	h.writeJSON(w, http.StatusOK, product)
}

func (h *Handler) HandleCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, r)
}

// writeCart responds with the current cart
func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.catalog.GetCart(r.Context())
	if err != nil {
		h.writeFailure(w, err, http.StatusBadGateway)
		return
	}
	h.writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) decodeCartRequest(w http.ResponseWriter, r *http.Request) (cartRequest, bool) {
	req := cartRequest{Qty: 1}
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return req, false
	}
	if req.ProductID == "" {
		h.writeError(w, "product_id is required", http.StatusBadRequest)
		return req, false
	}
	if req.Qty < 1 {
		h.writeError(w, "qty must be at least 1", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (h *Handler) HandleAddToCart(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCartRequest(w, r)
	if !ok {
		return
	}
	if err := h.catalog.AddToCart(r.Context(), req.ProductID, req.Qty); err != nil {
		h.writeFailure(w, err, http.StatusBadGateway)
		return
	}
	slog.Info("Added to cart", "product_id", req.ProductID, "qty", req.Qty)
	h.writeCart(w, r)
}

func (h *Handler) HandleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCartRequest(w, r)
	if !ok {
		return
	}
	cartID := r.PathValue("id")
	if err := h.catalog.UpdateCartItem(r.Context(), cartID, req.ProductID, req.Qty); err != nil {
		h.writeFailure(w, err, http.StatusBadGateway)
		return
	}
	slog.Info("Updated cart item", "cart_id", cartID, "qty", req.Qty)
	h.writeCart(w, r)
}

func (h *Handler) HandleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	cartID := r.PathValue("id")
	if err := h.catalog.RemoveCartItem(r.Context(), cartID); err != nil {
		h.writeFailure(w, err, http.StatusBadGateway)
		return
	}
	slog.Info("Removed cart item", "cart_id", cartID)
	h.writeCart(w, r)
}

func (h *Handler) HandleClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.ClearCart(r.Context()); err != nil {
		h.writeFailure(w, err, http.StatusBadGateway)
		return
	}
	slog.Info("Cleared cart")
	h.writeCart(w, r)
}

// HandleOrder validates the recipient, submits the order and returns it with
// the refreshed (normally empty) cart
func (h *Handler) HandleOrder(w http.ResponseWriter, r *http.Request) {
	var form validation.CheckoutForm
	if err := decodeJSON(w, r, &form); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.Validate(form); err != nil {
		h.writeFailure(w, err, http.StatusBadRequest)
		return
	}

	order := models.Order{
		User: models.Recipient{
			Email:   form.Email,
			Name:    form.Name,
			Tel:     form.Tel,
			Address: form.Address,
		},
		Message: form.Message,
	}

	result, err := h.catalog.SubmitOrder(r.Context(), order)
	if err != nil {
		h.writeFailure(w, err, http.StatusBadGateway)
		return
	}
	slog.Info("Order submitted", "order_id", result.OrderID, "total", result.Total)

	resp := orderResponse{Order: result}
	if cart, err := h.catalog.GetCart(r.Context()); err != nil {
		slog.Warn("Unable to refresh cart after order", "err", err)
	} else {
		resp.Cart = cart
	}
	h.writeJSON(w, http.StatusCreated, resp)
}
