package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/shopdesk/internal/catalog"
	"github.com/lehigh-university-libraries/shopdesk/internal/imagelist"
	"github.com/lehigh-university-libraries/shopdesk/internal/images"
	"github.com/lehigh-university-libraries/shopdesk/internal/models"
	"github.com/lehigh-university-libraries/shopdesk/internal/productform"
	"github.com/lehigh-university-libraries/shopdesk/internal/storage"
	"github.com/lehigh-university-libraries/shopdesk/internal/validation"
)

// TokenCookie is the cookie the login endpoint sets and later requests may send
const TokenCookie = "hexToken"

const maxBodyBytes = 1 << 20

var (
	errNoToken  = errors.New("missing admin token")
	errCapacity = fmt.Errorf("image list already holds %d slots", imagelist.MaxSlots)
)

// Catalog is the part of the catalog API the handlers call
type Catalog interface {
	SignIn(ctx context.Context, username, password string) (*models.Credential, error)
	CheckUser(ctx context.Context, token string) error
	ListAdminProducts(ctx context.Context, token string, page int) (*models.ProductPage, error)
	CreateProduct(ctx context.Context, token string, product models.Product) error
	UpdateProduct(ctx context.Context, token, id string, product models.Product) error
	DeleteProduct(ctx context.Context, token, id string) error
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	GetCart(ctx context.Context) (*models.Cart, error)
	AddToCart(ctx context.Context, productID string, qty int) error
	UpdateCartItem(ctx context.Context, cartID, productID string, qty int) error
	RemoveCartItem(ctx context.Context, cartID string) error
	ClearCart(ctx context.Context) error
	SubmitOrder(ctx context.Context, order models.Order) (*models.OrderResult, error)
}

type Handler struct {
	sessionStore *storage.SessionStore
	catalog      Catalog
	prober       *images.Prober
}

func New(c Catalog) *Handler {
	return &Handler{
		sessionStore: storage.New(),
		catalog:      c,
		prober:       images.NewProber(),
	}
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message, "status", code)
	} else {
		slog.Debug(message, "status", code)
	}
	h.writeJSON(w, code, errorResponse{Error: message})
}

// writeFailure maps err to a status code. fallback is used for errors with
// no known mapping: 502 after a catalog call, 500 otherwise.
func (h *Handler) writeFailure(w http.ResponseWriter, err error, fallback int) {
	var fieldErrs validation.FieldErrors
	if errors.As(err, &fieldErrs) {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Fields: fieldErrs})
		return
	}

	var apiErr *catalog.APIError
	switch {
	case errors.As(err, &apiErr):
		h.writeError(w, apiErr.Error(), upstreamStatus(apiErr.StatusCode))
	case errors.Is(err, errNoToken):
		h.writeError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, storage.ErrSessionNotFound):
		h.writeError(w, "Session not found", http.StatusNotFound)
	case errors.Is(err, errCapacity):
		h.writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, imagelist.ErrIndexOutOfRange),
		errors.Is(err, productform.ErrUnknownField),
		errors.Is(err, productform.ErrUnknownMode),
		errors.Is(err, productform.ErrInvalidPrice),
		errors.Is(err, productform.ErrMissingID):
		h.writeError(w, err.Error(), http.StatusBadRequest)
	default:
		h.writeError(w, err.Error(), fallback)
	}
}

// upstreamStatus keeps 4xx answers from the catalog API, reports 5xx as a bad
// gateway and treats a 2xx "success": false as a rejected request.
func upstreamStatus(code int) int {
	switch {
	case code >= 500:
		return http.StatusBadGateway
	case code >= 400:
		return code
	default:
		return http.StatusBadRequest
	}
}

// tokenFrom reads the admin token from the Authorization header or the token cookie
func tokenFrom(r *http.Request) (string, error) {
	if auth := strings.TrimSpace(r.Header.Get("Authorization")); auth != "" {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")), nil
	}
	if cookie, err := r.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", errNoToken
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// Register adds the API routes to mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/login", h.HandleLogin)
	mux.HandleFunc("POST /api/user/check", h.HandleUserCheck)
	mux.HandleFunc("GET /api/admin/products", h.HandleAdminProducts)

	mux.HandleFunc("GET /api/sessions", h.HandleSessions)
	mux.HandleFunc("POST /api/sessions", h.HandleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.HandleSessionDetail)
	mux.HandleFunc("PATCH /api/sessions/{id}", h.HandleSessionFields)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.HandleCloseSession)
	mux.HandleFunc("PUT /api/sessions/{id}/images/{index}", h.HandleSetImage)
	mux.HandleFunc("POST /api/sessions/{id}/images", h.HandleAppendImage)
	mux.HandleFunc("DELETE /api/sessions/{id}/images", h.HandleRemoveLastImage)
	mux.HandleFunc("POST /api/sessions/{id}/images/probe", h.HandleProbeImages)
	mux.HandleFunc("POST /api/sessions/{id}/submit", h.HandleSubmitSession)

	mux.HandleFunc("GET /api/products", h.HandleProducts)
	mux.HandleFunc("GET /api/products/{id}", h.HandleProductDetail)
	mux.HandleFunc("GET /api/cart", h.HandleCart)
	mux.HandleFunc("POST /api/cart", h.HandleAddToCart)
	mux.HandleFunc("DELETE /api/cart", h.HandleClearCart)
	mux.HandleFunc("PUT /api/cart/{id}", h.HandleUpdateCartItem)
	mux.HandleFunc("DELETE /api/cart/{id}", h.HandleRemoveCartItem)
	mux.HandleFunc("POST /api/orders", h.HandleOrder)
}
