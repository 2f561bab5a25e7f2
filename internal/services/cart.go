package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/petalcart/petalcart/internal/errors"
	"github.com/petalcart/petalcart/internal/models"
	"github.com/petalcart/petalcart/internal/money"
	repository "github.com/petalcart/petalcart/internal/repositories"
	"github.com/petalcart/petalcart/internal/session"
	"github.com/petalcart/petalcart/internal/utils"
)

// CartService covers both cart flavors: the persisted per-user cart and
// the guest-session mapping. Both merge added items by (name, price in
// cents) and both parse price text leniently, degrading to zero cents.
type CartService struct {
	repo     repository.CartRepository
	sessions session.Store
}

func NewCartService(repo repository.CartRepository, sessions session.Store) *CartService {
	return &CartService{repo: repo, sessions: sessions}
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.CartView, error) {
	cart, err := s.repo.GetOrCreateOpenCart(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load cart").WithError(err)
	}

	return cartToView(cart), nil
}

func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.CartView, error) {
	line := models.CartItem{
		Name:       req.Name,
		Image:      req.Image,
		PriceCents: money.ParseCents(req.Price),
		Quantity:   normalizeQty(req.Quantity),
	}

	cart, err := s.repo.AddItem(ctx, userID, line)
	if err != nil {
		return nil, errors.DatabaseError("Failed to add item to cart").WithError(err)
	}

	return cartToView(cart), nil
}

// UpdateQuantity sets the quantity verbatim, or deletes the line for
// qty <= 0. A mismatched owner or a closed cart changes nothing and is not
// reported as an error.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, qty int) (*models.CartView, error) {
	if err := s.repo.UpdateItemQuantity(ctx, userID, itemID, qty); err != nil {
		return nil, errors.DatabaseError("Failed to update cart").WithError(err)
	}

	return s.GetCart(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.ClearItems(ctx, userID); err != nil {
		return errors.DatabaseError("Failed to clear cart").WithError(err)
	}

	return nil
}

func (s *CartService) GetGuestCart(ctx context.Context, sessionID string) (*models.CartView, error) {
	cart, err := s.sessions.GetGuestCart(ctx, sessionID)
	if err != nil {
		return nil, errors.ThirdPartyError("Failed to load guest cart").WithError(err)
	}

	return guestCartToView(cart), nil
}

func (s *CartService) AddGuestItem(ctx context.Context, sessionID string, req *models.AddItemRequest) (*models.CartView, error) {
	cart, err := s.sessions.GetGuestCart(ctx, sessionID)
	if err != nil {
		return nil, errors.ThirdPartyError("Failed to load guest cart").WithError(err)
	}

	qty := normalizeQty(req.Quantity)
	slug := utils.Slugify(req.Name)

	if item, ok := cart[slug]; ok {
		item.Quantity += qty
		cart[slug] = item
	} else {
		cart[slug] = models.GuestItem{
			Name:     req.Name,
			Price:    req.Price,
			Image:    req.Image,
			Quantity: qty,
		}
	}

	if err := s.sessions.SaveGuestCart(ctx, sessionID, cart); err != nil {
		return nil, errors.ThirdPartyError("Failed to save guest cart").WithError(err)
	}

	return guestCartToView(cart), nil
}

func (s *CartService) UpdateGuestQuantity(ctx context.Context, sessionID, slug string, qty int) (*models.CartView, error) {
	cart, err := s.sessions.GetGuestCart(ctx, sessionID)
	if err != nil {
		return nil, errors.ThirdPartyError("Failed to load guest cart").WithError(err)
	}

	if item, ok := cart[slug]; ok {
		if qty <= 0 {
			delete(cart, slug)
		} else {
			item.Quantity = qty
			cart[slug] = item
		}

		if err := s.sessions.SaveGuestCart(ctx, sessionID, cart); err != nil {
			return nil, errors.ThirdPartyError("Failed to save guest cart").WithError(err)
		}
	}

	return guestCartToView(cart), nil
}

func (s *CartService) ClearGuestCart(ctx context.Context, sessionID string) error {
	if err := s.sessions.ClearGuestCart(ctx, sessionID); err != nil {
		return errors.ThirdPartyError("Failed to clear guest cart").WithError(err)
	}

	return nil
}

// MergeGuestCart folds the guest-session cart into the user's persisted
// open cart at login. The session mapping is cleared unconditionally once
// the merge transaction commits, so no stale guest data survives the login.
func (s *CartService) MergeGuestCart(ctx context.Context, userID uuid.UUID, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	guest, err := s.sessions.GetGuestCart(ctx, sessionID)
	if err != nil {
		return errors.ThirdPartyError("Failed to load guest cart").WithError(err)
	}

	if len(guest) > 0 {
		lines := make([]models.CartItem, 0, len(guest))

		for _, item := range guest {
			lines = append(lines, models.CartItem{
				Name:       item.Name,
				Image:      item.Image,
				PriceCents: money.ParseCents(item.Price),
				Quantity:   normalizeQty(item.Quantity),
			})
		}

		if err := s.repo.MergeLines(ctx, userID, lines); err != nil {
			return errors.DatabaseError("Failed to merge guest cart").WithError(err)
		}
	}

	if err := s.sessions.ClearGuestCart(ctx, sessionID); err != nil {
		// merged state is already committed; losing the clear only risks a
		// re-merge, which the logs should surface
		slog.Warn("Failed to clear guest cart after merge",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
	}

	return nil
}

func normalizeQty(qty int) int {
	if qty < 1 {
		return 1
	}

	return qty
}

func cartToView(cart *models.Cart) *models.CartView {
	view := &models.CartView{
		Items: make([]models.CartLineView, 0, len(cart.Items)),
	}

	for _, item := range cart.Items {
		view.Items = append(view.Items, models.CartLineView{
			ID:       item.ID.String(),
			Name:     item.Name,
			Image:    item.Image,
			Price:    money.FormatNTD(item.PriceCents),
			Quantity: item.Quantity,
		})
		view.Count += item.Quantity
	}

	view.TotalCents = cart.TotalCents()
	view.Total = money.FormatNTD(view.TotalCents)

	return view
}

func guestCartToView(cart models.GuestCart) *models.CartView {
	view := &models.CartView{
		Items: make([]models.CartLineView, 0, len(cart)),
	}

	for slug, item := range cart {
		view.Items = append(view.Items, models.CartLineView{
			ID:       slug,
			Name:     item.Name,
			Image:    item.Image,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
		view.Count += item.Quantity
		view.TotalCents += int64(item.Quantity) * money.ParseCents(item.Price)
	}

	view.Total = money.FormatNTD(view.TotalCents)

	return view
}
