package guest

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-core/internal/cart"
	"github.com/angelmondragon/storefront-core/pkg/db"
	"github.com/angelmondragon/storefront-core/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-core/pkg/errors"
	"github.com/angelmondragon/storefront-core/pkg/logger"
	"gorm.io/gorm"
)

// SQLiteStore persists guest cart lines as rows in the embedded database.
// Business invariants are not validated here; that lives in the engine.
type SQLiteStore struct {
	client    *db.Client
	sessionID string
	logg      *logger.Logger
}

// NewSQLiteStore migrates the guest cart table and scopes the store to one
// session.
func NewSQLiteStore(client *db.Client, sessionID string, logg *logger.Logger) (*SQLiteStore, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if sessionID == "" {
		return nil, fmt.Errorf("session id required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if err := client.DB().AutoMigrate(&models.GuestCartItem{}); err != nil {
		return nil, fmt.Errorf("migrating guest cart table: %w", err)
	}
	return &SQLiteStore{client: client, sessionID: sessionID, logg: logg}, nil
}

// Load returns the persisted lines in insertion order. Rows that fail the
// minimal shape check are dropped and logged, never surfaced.
func (s *SQLiteStore) Load(ctx context.Context) ([]cart.LineItem, error) {
	var rows []models.GuestCartItem
	err := s.client.DB().WithContext(ctx).
		Where("session_id = ?", s.sessionID).
		Order("position asc").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load guest cart")
	}

	items := make([]cart.LineItem, 0, len(rows))
	for _, row := range rows {
		item, ok := rowToLineItem(row)
		if !ok {
			s.logg.Warn(s.logg.WithLineItemID(ctx, row.ID), "dropping corrupt guest cart row")
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// Save overwrites the persisted cart with the provided snapshot.
func (s *SQLiteStore) Save(ctx context.Context, items []cart.LineItem) error {
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", s.sessionID).Delete(&models.GuestCartItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		rows := make([]models.GuestCartItem, 0, len(items))
		for i, item := range items {
			rows = append(rows, lineItemToRow(item, s.sessionID, i))
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "save guest cart")
	}
	return nil
}

// Clear removes all persisted lines for the session.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	err := s.client.DB().WithContext(ctx).
		Where("session_id = ?", s.sessionID).
		Delete(&models.GuestCartItem{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "clear guest cart")
	}
	return nil
}

func rowToLineItem(row models.GuestCartItem) (cart.LineItem, bool) {
	if row.ID == "" || row.Quantity < 1 || row.PriceCents < 0 {
		return cart.LineItem{}, false
	}
	return cart.LineItem{
		ID:               row.ID,
		ProductVariantID: row.ProductVariantID,
		SizeID:           row.SizeID,
		Name:             row.Name,
		Color:            row.Color,
		Size:             row.Size,
		Image:            row.Image,
		Quantity:         row.Quantity,
		PriceCents:       row.PriceCents,
		Stock:            row.Stock,
	}, true
}

func lineItemToRow(item cart.LineItem, sessionID string, position int) models.GuestCartItem {
	return models.GuestCartItem{
		ID:               item.ID,
		SessionID:        sessionID,
		ProductVariantID: item.ProductVariantID,
		SizeID:           item.SizeID,
		Name:             item.Name,
		Color:            item.Color,
		Size:             item.Size,
		Image:            item.Image,
		Quantity:         item.Quantity,
		PriceCents:       item.PriceCents,
		Stock:            item.Stock,
		Position:         position,
	}
}
