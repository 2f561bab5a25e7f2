package handlers

import (
	"net/http"

	appErrors "github.com/petalcart/petalcart/internal/errors"
	service "github.com/petalcart/petalcart/internal/services"
	"github.com/petalcart/petalcart/internal/utils/response"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h.catalogService.ListProducts(r.URL.Query().Get("cat"))
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, result)
	}
}

func (h *CatalogHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.PathValue("slug")
		if slug == "" {
			response.Error(w, appErrors.BadRequestError("Product slug is required"))

			return
		}

		product, err := h.catalogService.GetProduct(slug)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *CatalogHandler) Home() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := h.catalogService.Home()
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, data)
	}
}

func (h *CatalogHandler) About() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := h.catalogService.About()
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, data)
	}
}
