package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storefront-core/pkg/db"
	"github.com/angelmondragon/storefront-core/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-core/pkg/errors"
	"github.com/angelmondragon/storefront-core/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the guest wishlist surface. Like the guest cart, the wishlist is
// discarded on login; the server-side account wishlist takes over from there.
type Service interface {
	Toggle(ctx context.Context, variantID uuid.UUID) (bool, error)
	Contains(ctx context.Context, variantID uuid.UUID) (bool, error)
	List(ctx context.Context) ([]uuid.UUID, error)
	Clear(ctx context.Context) error
}

// SQLiteService persists the wishlist as variant id rows scoped to one session.
type SQLiteService struct {
	client    *db.Client
	sessionID string
	logg      *logger.Logger
}

var _ Service = (*SQLiteService)(nil)

// NewSQLiteService migrates the wishlist table and scopes the service to a
// session.
func NewSQLiteService(client *db.Client, sessionID string, logg *logger.Logger) (*SQLiteService, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if sessionID == "" {
		return nil, fmt.Errorf("session id required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if err := client.DB().AutoMigrate(&models.WishlistItem{}); err != nil {
		return nil, fmt.Errorf("migrating wishlist table: %w", err)
	}
	return &SQLiteService{client: client, sessionID: sessionID, logg: logg}, nil
}

// Toggle flips wishlist membership for a variant and reports the new state.
func (s *SQLiteService) Toggle(ctx context.Context, variantID uuid.UUID) (bool, error) {
	ctx = s.logg.WithVariantID(ctx, variantID.String())

	var existing models.WishlistItem
	err := s.client.DB().WithContext(ctx).
		Where("session_id = ? AND product_variant_id = ?", s.sessionID, variantID).
		First(&existing).Error

	switch {
	case err == nil:
		if err := s.client.DB().WithContext(ctx).Delete(&existing).Error; err != nil {
			return true, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "remove wishlist item")
		}
		s.logg.Debug(ctx, "wishlist item removed")
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		row := models.WishlistItem{SessionID: s.sessionID, ProductVariantID: variantID}
		if err := s.client.DB().WithContext(ctx).Create(&row).Error; err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "add wishlist item")
		}
		s.logg.Debug(ctx, "wishlist item added")
		return true, nil
	default:
		return false, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "look up wishlist item")
	}
}

// Contains reports whether the variant is currently wishlisted.
func (s *SQLiteService) Contains(ctx context.Context, variantID uuid.UUID) (bool, error) {
	var count int64
	err := s.client.DB().WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("session_id = ? AND product_variant_id = ?", s.sessionID, variantID).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "look up wishlist item")
	}
	return count > 0, nil
}

// List returns the wishlisted variant ids in the order they were saved.
func (s *SQLiteService) List(ctx context.Context) ([]uuid.UUID, error) {
	var rows []models.WishlistItem
	err := s.client.DB().WithContext(ctx).
		Where("session_id = ?", s.sessionID).
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load wishlist")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ProductVariantID)
	}
	return ids, nil
}

// Clear removes all wishlist rows for the session.
func (s *SQLiteService) Clear(ctx context.Context) error {
	err := s.client.DB().WithContext(ctx).
		Where("session_id = ?", s.sessionID).
		Delete(&models.WishlistItem{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "clear wishlist")
	}
	return nil
}
