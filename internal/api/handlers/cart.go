package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/petalcart/petalcart/internal/api/middleware"
	appErrors "github.com/petalcart/petalcart/internal/errors"
	"github.com/petalcart/petalcart/internal/models"
	service "github.com/petalcart/petalcart/internal/services"
	"github.com/petalcart/petalcart/internal/utils"
	"github.com/petalcart/petalcart/internal/utils/response"
)

// CartHandler serves both authenticated and guest carts: when the request
// carries valid claims it works on the persisted cart, otherwise on the
// guest-session mapping.
type CartHandler struct {
	cartService *service.CartService
	validator   *validator.Validate
}

func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validator:   validator.New(),
	}
}

func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			cart *models.CartView
			err  error
		)

		if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
			cart, err = h.cartService.GetCart(r.Context(), claims.UserID)
		} else {
			cart, err = h.cartService.GetGuestCart(r.Context(), middleware.GuestSessionFromContext(r.Context()))
		}

		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		var req models.AddItemRequest

		if !decodeAndValidate(w, r, h.validator, &req) {
			return
		}

		var (
			cart *models.CartView
			err  error
		)

		if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
			cart, err = h.cartService.AddItem(r.Context(), claims.UserID, &req)
		} else {
			cart, err = h.cartService.AddGuestItem(r.Context(), middleware.GuestSessionFromContext(r.Context()), &req)
		}

		if err != nil {
			logger.Error("Failed to add cart item", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		logger.Info("Item added to cart", slog.String("name", req.Name))
		response.Success(w, http.StatusOK, cart)
	}
}

// UpdateQuantity targets a line by id: a UUID for persisted carts, the
// name-derived slug for guest carts. Quantity zero or below deletes the
// line; otherwise it is set verbatim.
func (h *CartHandler) UpdateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID := r.PathValue("id")
		if lineID == "" {
			response.Error(w, appErrors.BadRequestError("Cart line id is required"))

			return
		}

		var req models.UpdateQuantityRequest

		if err := utils.DecodeJSONBody(r, &req); err != nil {
			response.Error(w, appErrors.BadRequestError(err.Error()))

			return
		}

		var (
			cart *models.CartView
			err  error
		)

		if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
			itemID, parseErr := uuid.Parse(lineID)
			if parseErr != nil {
				response.Error(w, appErrors.BadRequestError("Invalid cart line id"))

				return
			}

			cart, err = h.cartService.UpdateQuantity(r.Context(), claims.UserID, itemID, req.Quantity)
		} else {
			cart, err = h.cartService.UpdateGuestQuantity(r.Context(), middleware.GuestSessionFromContext(r.Context()), lineID, req.Quantity)
		}

		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) Clear() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
			err = h.cartService.Clear(r.Context(), claims.UserID)
		} else {
			err = h.cartService.ClearGuestCart(r.Context(), middleware.GuestSessionFromContext(r.Context()))
		}

		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, map[string]string{"status": "cleared"})
	}
}
