package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/petalcart/petalcart/internal/models"
	"github.com/petalcart/petalcart/internal/utils"
)

// CartRepository owns the carts and cart_items tables. A partial unique
// index on carts(user_id) WHERE status = 'open' backs the one-open-cart
// invariant; every multi-step mutation runs in a single transaction with
// the open cart row locked, so concurrent requests serialize per user.
type CartRepository interface {
	GetOrCreateOpenCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, line models.CartItem) (*models.Cart, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	ClearItems(ctx context.Context, userID uuid.UUID) error
	MergeLines(ctx context.Context, userID uuid.UUID, lines []models.CartItem) error
}

type cartRepository struct {
	DB *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db}
}

const selectOpenCartForUpdate = `
		SELECT id, user_id, status, created_at
		FROM carts
		WHERE user_id = $1 AND status = 'open'
		FOR UPDATE
	`

func (r *cartRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// getOrCreateOpenCartTx returns the user's open cart with its row locked,
// creating one when absent. ON CONFLICT over the partial unique index keeps
// a concurrent creator from producing a duplicate; the loser of that race
// re-reads and locks the winner's row.
func getOrCreateOpenCartTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (*models.Cart, error) {
	cart := &models.Cart{}

	scan := func() error {
		return tx.QueryRowContext(ctx, selectOpenCartForUpdate, userID).
			Scan(&cart.ID, &cart.UserID, &cart.Status, &cart.CreatedAt)
	}

	err := scan()
	if err == sql.ErrNoRows {
		insert := `
		INSERT INTO carts (id, user_id, status, created_at)
		VALUES ($1, $2, 'open', NOW())
		ON CONFLICT (user_id) WHERE status = 'open' DO NOTHING
	`

		if _, err := tx.ExecContext(ctx, insert, uuid.New(), userID); err != nil {
			return nil, fmt.Errorf("creating open cart: %w", err)
		}

		err = scan()
	}

	if err != nil {
		return nil, fmt.Errorf("locking open cart: %w", err)
	}

	return cart, nil
}

func loadCartItemsTx(ctx context.Context, tx *sql.Tx, cartID uuid.UUID) ([]models.CartItem, error) {
	query := `
		SELECT id, cart_id, name, COALESCE(image, ''), price_cents, quantity
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY id
	`

	rows, err := tx.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("loading cart items: %w", err)
	}
	defer rows.Close()

	var items []models.CartItem

	for rows.Next() {
		var item models.CartItem

		if err := rows.Scan(&item.ID, &item.CartID, &item.Name, &item.Image, &item.PriceCents, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scanning cart item: %w", err)
		}

		items = append(items, item)
	}

	return items, rows.Err()
}

// upsertLineTx merges by (name, price_cents): an existing line gains the
// quantity, otherwise a new line is appended.
func upsertLineTx(ctx context.Context, tx *sql.Tx, cartID uuid.UUID, line models.CartItem) error {
	update := `
		UPDATE cart_items
		SET quantity = quantity + $1
		WHERE cart_id = $2 AND name = $3 AND price_cents = $4
	`

	result, err := tx.ExecContext(ctx, update, line.Quantity, cartID, line.Name, line.PriceCents)
	if err != nil {
		return fmt.Errorf("incrementing cart line: %w", err)
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if updated > 0 {
		return nil
	}

	insert := `
		INSERT INTO cart_items (id, cart_id, name, image, price_cents, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if _, err := tx.ExecContext(ctx, insert, uuid.New(), cartID, line.Name, line.Image, line.PriceCents, line.Quantity); err != nil {
		return fmt.Errorf("inserting cart line: %w", err)
	}

	return nil
}

func (r *cartRepository) GetOrCreateOpenCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart *models.Cart

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		c, err := getOrCreateOpenCartTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		items, err := loadCartItemsTx(ctx, tx, c.ID)
		if err != nil {
			return err
		}

		c.Items = items
		cart = c

		return nil
	})
	if err != nil {
		return nil, err
	}

	return cart, nil
}

func (r *cartRepository) AddItem(ctx context.Context, userID uuid.UUID, line models.CartItem) (*models.Cart, error) {
	var cart *models.Cart

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		c, err := getOrCreateOpenCartTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		if err := upsertLineTx(ctx, tx, c.ID, line); err != nil {
			return err
		}

		items, err := loadCartItemsTx(ctx, tx, c.ID)
		if err != nil {
			return err
		}

		c.Items = items
		cart = c

		return nil
	})
	if err != nil {
		return nil, err
	}

	return cart, nil
}

// UpdateItemQuantity deletes the line when quantity drops to zero or below,
// otherwise sets it verbatim. The open-cart ownership predicate makes
// updates against a closed cart or another user's cart affect zero rows;
// that outcome is deliberately indistinguishable from "nothing to do".
func (r *cartRepository) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if quantity <= 0 {
		query := `
		DELETE FROM cart_items
		WHERE id = $1 AND cart_id IN (
			SELECT id FROM carts WHERE user_id = $2 AND status = 'open'
		)
	`

		if _, err := r.DB.ExecContext(dbCtx, query, itemID, userID); err != nil {
			return fmt.Errorf("deleting cart line: %w", err)
		}

		return nil
	}

	query := `
		UPDATE cart_items
		SET quantity = $1
		WHERE id = $2 AND cart_id IN (
			SELECT id FROM carts WHERE user_id = $3 AND status = 'open'
		)
	`

	if _, err := r.DB.ExecContext(dbCtx, query, quantity, itemID, userID); err != nil {
		return fmt.Errorf("updating cart line: %w", err)
	}

	return nil
}

// ClearItems empties the open cart; the cart itself stays open.
func (r *cartRepository) ClearItems(ctx context.Context, userID uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		DELETE FROM cart_items
		WHERE cart_id IN (
			SELECT id FROM carts WHERE user_id = $1 AND status = 'open'
		)
	`

	if _, err := r.DB.ExecContext(dbCtx, query, userID); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}

	return nil
}

// MergeLines folds guest-session lines into the persisted open cart in one
// transaction, matching by (name, price_cents).
func (r *cartRepository) MergeLines(ctx context.Context, userID uuid.UUID, lines []models.CartItem) error {
	if len(lines) == 0 {
		return nil
	}

	return r.withTx(ctx, func(tx *sql.Tx) error {
		cart, err := getOrCreateOpenCartTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		for _, line := range lines {
			if err := upsertLineTx(ctx, tx, cart.ID, line); err != nil {
				return err
			}
		}

		return nil
	})
}
