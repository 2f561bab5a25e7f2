package service

import (
	"strings"

	"github.com/petalcart/petalcart/internal/content"
	"github.com/petalcart/petalcart/internal/errors"
	"github.com/petalcart/petalcart/internal/models"
	"github.com/petalcart/petalcart/internal/utils"
)

// CatalogService serves the content-file-driven storefront pages. All data
// comes from the content store; the catalog never writes product data.
type CatalogService struct {
	store *content.Store
}

func NewCatalogService(store *content.Store) *CatalogService {
	return &CatalogService{store: store}
}

// ListProducts returns the product list filtered by category tag, plus all
// categories annotated with their product counts. "all" always exists and
// counts every product; untagged products fall under "uncategorized".
func (s *CatalogService) ListProducts(cat string) (*models.ProductListResponse, error) {
	doc, err := s.store.LoadProducts()
	if err != nil {
		return nil, errors.InternalError("Failed to load products").WithError(err)
	}

	cat = strings.ToLower(strings.TrimSpace(cat))
	if cat == "" {
		cat = "all"
	}

	counts := map[string]int{}

	for _, p := range doc.Products {
		tags := lowerTags(p.Tags)
		if len(tags) == 0 {
			tags = []string{"uncategorized"}
		}

		for _, t := range tags {
			counts[t]++
		}

		counts["all"]++
	}

	view := doc.Products

	if cat != "all" {
		view = nil

		for _, p := range doc.Products {
			for _, t := range lowerTags(p.Tags) {
				if t == cat {
					view = append(view, p)

					break
				}
			}
		}
	}

	categories := doc.Categories

	hasAll := false

	for _, c := range categories {
		if c.Key == "all" {
			hasAll = true

			break
		}
	}

	if !hasAll {
		categories = append([]models.Category{{Key: "all", Name: "All products"}}, categories...)
	}

	for i := range categories {
		categories[i].Count = counts[categories[i].Key]
	}

	return &models.ProductListResponse{
		Categories: categories,
		CurrentCat: cat,
		Products:   view,
	}, nil
}

// GetProduct matches the stored slug, falling back to the slugified name.
func (s *CatalogService) GetProduct(slug string) (*models.Product, error) {
	doc, err := s.store.LoadProducts()
	if err != nil {
		return nil, errors.InternalError("Failed to load products").WithError(err)
	}

	for _, p := range doc.Products {
		key := p.Slug
		if key == "" {
			key = utils.Slugify(p.Name)
		}

		if key == slug {
			product := p
			product.Slug = key

			return &product, nil
		}
	}

	return nil, errors.NotFoundError("Product not found")
}

// Home returns the home document with product_grid sections resolved: each
// slug in from_products is replaced by the full product object. Unknown
// slugs are skipped.
func (s *CatalogService) Home() (map[string]any, error) {
	data, err := s.store.Load("home")
	if err != nil {
		return nil, errors.InternalError("Failed to load home content").WithError(err)
	}

	doc, err := s.store.LoadProducts()
	if err != nil {
		return nil, errors.InternalError("Failed to load products").WithError(err)
	}

	lookup := map[string]models.Product{}

	for _, p := range doc.Products {
		slug := p.Slug
		if slug == "" {
			slug = utils.Slugify(p.Name)
		}

		product := p
		product.Slug = slug
		lookup[slug] = product
	}

	sections, _ := data["sections"].([]any)

	for _, raw := range sections {
		sec, ok := raw.(map[string]any)
		if !ok || sec["type"] != "product_grid" {
			continue
		}

		slugs, ok := sec["from_products"].([]any)
		if !ok {
			continue
		}

		var resolved []models.Product

		for _, rawSlug := range slugs {
			slug, ok := rawSlug.(string)
			if !ok {
				continue
			}

			if product, found := lookup[slug]; found {
				resolved = append(resolved, product)
			}
		}

		sec["products"] = resolved
	}

	return data, nil
}

func (s *CatalogService) About() (map[string]any, error) {
	data, err := s.store.Load("about")
	if err != nil {
		return nil, errors.InternalError("Failed to load about content").WithError(err)
	}

	return data, nil
}

func lowerTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, strings.ToLower(t))
	}

	return out
}
