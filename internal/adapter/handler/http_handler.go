package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/storefront-cart/internal/core/domain"
	"github.com/rl1809/storefront-cart/internal/core/service"
)

const sessionCookie = "cart_session"

type sessionKey struct{}

type HTTPHandler struct {
	cartService  *service.CartService
	logger       *zap.Logger
	secureCookie bool
}

type AddItemHTTPRequest struct {
	ProductID int64 `json:"product_id"`
}

type SetAmountHTTPRequest struct {
	Amount *int `json:"amount"`
}

type Toast struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type CartHTTPResponse struct {
	Success bool              `json:"success"`
	Toast   *Toast            `json:"toast,omitempty"`
	Ignored bool              `json:"ignored,omitempty"`
	Items   []domain.CartItem `json:"items"`
}

func NewHTTPHandler(cartService *service.CartService, logger *zap.Logger, secureCookie bool) *HTTPHandler {
	return &HTTPHandler{cartService: cartService, logger: logger, secureCookie: secureCookie}
}

func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HealthCheck)

	r.Route("/api/cart", func(r chi.Router) {
		r.Use(h.withSession)
		r.Get("/", h.GetCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{id}", h.SetAmount)
		r.Delete("/items/{id}", h.RemoveItem)
	})

	return r
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartService.Cart(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		h.writeError(w, err, http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, CartHTTPResponse{Success: true, Items: cart})
}

func (h *HTTPHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID <= 0 {
		writeBadRequest(w, "invalid request body")
		return
	}

	res, err := h.cartService.AddItem(r.Context(), sessionFrom(r.Context()), req.ProductID)
	if err != nil {
		h.writeError(w, err, http.StatusBadGateway)
		return
	}

	writeResult(w, res)
}

func (h *HTTPHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(r)
	if !ok {
		writeBadRequest(w, "invalid product id")
		return
	}

	res, err := h.cartService.RemoveItem(r.Context(), sessionFrom(r.Context()), productID)
	if err != nil {
		h.writeError(w, err, http.StatusUnprocessableEntity)
		return
	}

	writeResult(w, res)
}

func (h *HTTPHandler) SetAmount(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(r)
	if !ok {
		writeBadRequest(w, "invalid product id")
		return
	}

	var req SetAmountHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	res, err := h.cartService.SetAmount(r.Context(), sessionFrom(r.Context()), productID, *req.Amount)
	if err != nil {
		h.writeError(w, err, http.StatusBadGateway)
		return
	}

	writeResult(w, res)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withSession attaches the browser's cart session, issuing a new one when the
// cookie is missing or not a UUID.
func (h *HTTPHandler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(sessionCookie); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				id = parsed.String()
			}
		}

		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   h.secureCookie,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
	})
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error, fallback int) {
	status := fallback
	switch {
	case errors.Is(err, service.ErrStockExceeded):
		status = http.StatusConflict
	case errors.Is(err, service.ErrProductNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrCartUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("cart request failed", zap.Int("status", status), zap.Error(err))
	}

	writeJSON(w, status, CartHTTPResponse{
		Success: false,
		Toast:   &Toast{Type: "error", Message: service.UserMessage(err)},
	})
}

func writeResult(w http.ResponseWriter, res service.Result) {
	resp := CartHTTPResponse{
		Success: true,
		Ignored: res.Ignored,
		Items:   res.Cart,
	}
	if !res.Ignored {
		resp.Toast = &Toast{Type: "success", Message: res.Message}
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, CartHTTPResponse{
		Success: false,
		Toast:   &Toast{Type: "error", Message: message},
	})
}

func productIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func sessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
