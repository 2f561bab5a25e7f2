package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/petalcart/petalcart/internal/api/middleware"
	"github.com/petalcart/petalcart/internal/content"
	appErrors "github.com/petalcart/petalcart/internal/errors"
	"github.com/petalcart/petalcart/internal/models"
	service "github.com/petalcart/petalcart/internal/services"
	"github.com/petalcart/petalcart/internal/utils"
	"github.com/petalcart/petalcart/internal/utils/response"
)

// AdminHandler is the back-office surface. Every route sits behind the
// RequireAdmin middleware; the handler itself only does the work.
type AdminHandler struct {
	userService  *service.UserService
	orderService *service.OrderService
	contentStore *content.Store
	validator    *validator.Validate
}

func NewAdminHandler(userService *service.UserService, orderService *service.OrderService, contentStore *content.Store) *AdminHandler {
	return &AdminHandler{
		userService:  userService,
		orderService: orderService,
		contentStore: contentStore,
		validator:    validator.New(),
	}
}

func (h *AdminHandler) ListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := h.userService.ListUsers(r.Context())
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, users)
	}
}

func (h *AdminHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := h.orderService.ListAllOrders(r.Context())
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, orders)
	}
}

func (h *AdminHandler) UpdateOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		orderID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			response.Error(w, appErrors.BadRequestError("Invalid order id"))

			return
		}

		var req models.UpdateOrderStatusRequest

		if !decodeAndValidate(w, r, h.validator, &req) {
			return
		}

		if err := h.orderService.UpdateStatus(r.Context(), orderID, req.Status); err != nil {
			logger.Warn("Order status update rejected",
				slog.String("order_id", orderID.String()),
				slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		logger.Info("Order status updated",
			slog.String("order_id", orderID.String()),
			slog.String("status", string(req.Status)))
		response.Success(w, http.StatusOK, map[string]string{"status": string(req.Status)})
	}
}

func (h *AdminHandler) ListContent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := h.contentStore.List()
		if err != nil {
			response.Error(w, appErrors.InternalError("Failed to list content").WithError(err))

			return
		}

		response.Success(w, http.StatusOK, names)
	}
}

func (h *AdminHandler) GetContent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := h.contentStore.Load(r.PathValue("name"))
		if err != nil {
			response.Error(w, appErrors.BadRequestError("Failed to load content").WithError(err))

			return
		}

		response.Success(w, http.StatusOK, data)
	}
}

// UpdateContent applies a shallow key/value edit to a content document.
// Values are sanitized before hitting disk.
func (h *AdminHandler) UpdateContent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())
		name := r.PathValue("name")

		var updates map[string]string

		if err := utils.DecodeJSONBody(r, &updates); err != nil {
			response.Error(w, appErrors.BadRequestError(err.Error()))

			return
		}

		if err := h.contentStore.UpdateStrings(name, updates); err != nil {
			response.Error(w, appErrors.BadRequestError("Failed to save content").WithError(err))

			return
		}

		logger.Info("Content updated", slog.String("name", name))
		response.Success(w, http.StatusOK, map[string]string{"status": "saved"})
	}
}
