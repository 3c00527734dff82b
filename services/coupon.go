package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"couponHub/backend/models"
	"couponHub/backend/validators"
)

var hundred = decimal.NewFromInt(100)

type CouponService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCouponService(db *gorm.DB) *CouponService {
	return &CouponService{db: db, now: time.Now}
}

// SetClock overrides the time source used for liveness checks.
func (s *CouponService) SetClock(now func() time.Time) { s.now = now }

func (s *CouponService) Create(ctx context.Context, in validators.CouponInput) (*models.Coupon, error) {
	c := &models.Coupon{IsActive: true}
	if err := applyCouponInput(c, in); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, c); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("create coupon: %w", err)
	}
	return s.Get(ctx, c.ID)
}

func (s *CouponService) Get(ctx context.Context, id uint) (*models.Coupon, error) {
	var c models.Coupon
	if err := s.db.WithContext(ctx).Preload("Category").Preload("Platform").First(&c, id).Error; err != nil {
		return nil, notFoundOr(err, "coupon")
	}
	return &c, nil
}

func (s *CouponService) List(ctx context.Context, q validators.CouponQuery) ([]models.Coupon, int64, error) {
	q.Normalize()
	query := s.db.WithContext(ctx).Model(&models.Coupon{})
	if q.CategoryID != 0 {
		query = query.Where("category_id = ?", q.CategoryID)
	}
	if q.PlatformID != 0 {
		query = query.Where("platform_id = ?", q.PlatformID)
	}
	if q.Featured {
		query = query.Where("is_featured = ?", true)
	}
	if q.Search != "" {
		term := likeTerm(q.Search)
		query = query.Where("LOWER(title) LIKE ? OR LOWER(code) LIKE ?", term, term)
	}
	if q.Active {
		query = liveScope(query, s.now().UTC())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count coupons: %w", err)
	}

	var coupons []models.Coupon
	err := query.Preload("Category").Preload("Platform").
		Order(couponOrder(q.Sort)).
		Offset(q.Offset()).Limit(q.Limit).
		Find(&coupons).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list coupons: %w", err)
	}
	return coupons, total, nil
}

func (s *CouponService) Update(ctx context.Context, id uint, in validators.CouponInput) (*models.Coupon, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyCouponInput(c, in); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, c); err != nil {
		return nil, err
	}
	// Associations are reloaded below; saving them would upsert stale copies.
	c.Category, c.Platform = nil, nil
	if err := s.db.WithContext(ctx).Omit("ClickCount").Save(c).Error; err != nil {
		return nil, fmt.Errorf("update coupon: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete removes the coupon permanently. Its click history is kept for reporting.
func (s *CouponService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Unscoped().Delete(&models.Coupon{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete coupon: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: coupon", ErrNotFound)
	}
	return nil
}

func (s *CouponService) checkRefs(ctx context.Context, c *models.Coupon) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", c.CategoryID).Count(&n).Error; err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: category %d does not exist", ErrInvalid, c.CategoryID)
	}
	if err := s.db.WithContext(ctx).Model(&models.Platform{}).Where("id = ?", c.PlatformID).Count(&n).Error; err != nil {
		return fmt.Errorf("check platform: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: platform %d does not exist", ErrInvalid, c.PlatformID)
	}
	return nil
}

func applyCouponInput(c *models.Coupon, in validators.CouponInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if strings.TrimSpace(in.AffiliateURL) == "" {
		return fmt.Errorf("%w: affiliate_url is required", ErrInvalid)
	}

	value := in.DiscountValue
	switch in.DiscountType {
	case models.DiscountPercentage:
		if !value.IsPositive() || value.GreaterThan(hundred) {
			return fmt.Errorf("%w: percentage discount must be in (0, 100]", ErrInvalid)
		}
	case models.DiscountFlat:
		if !value.IsPositive() {
			return fmt.Errorf("%w: flat discount must be positive", ErrInvalid)
		}
	case models.DiscountDeal:
		value = decimal.Zero
	default:
		return fmt.Errorf("%w: unknown discount_type %q", ErrInvalid, in.DiscountType)
	}
	if in.MinPurchase.IsNegative() {
		return fmt.Errorf("%w: min_purchase cannot be negative", ErrInvalid)
	}
	if in.StartsAt != nil && in.ExpiresAt != nil && !in.ExpiresAt.After(*in.StartsAt) {
		return fmt.Errorf("%w: expires_at must be after starts_at", ErrInvalid)
	}

	c.Title = title
	c.Description = in.Description
	c.Code = strings.TrimSpace(in.Code)
	c.DiscountType = in.DiscountType
	c.DiscountValue = value
	c.MinPurchase = in.MinPurchase
	c.AffiliateURL = strings.TrimSpace(in.AffiliateURL)
	c.CategoryID = in.CategoryID
	c.PlatformID = in.PlatformID
	c.StartsAt = utcPtr(in.StartsAt)
	c.ExpiresAt = utcPtr(in.ExpiresAt)
	c.IsFeatured = in.IsFeatured
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	return nil
}

// liveScope keeps coupons that are active and inside their validity window at now.
func liveScope(db *gorm.DB, now time.Time) *gorm.DB {
	return db.Where("is_active = ?", true).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("expires_at IS NULL OR expires_at > ?", now)
}

func couponOrder(sort string) string {
	switch sort {
	case validators.SortPopular:
		return "click_count DESC, id DESC"
	case validators.SortExpiring:
		return "expires_at IS NULL, expires_at ASC, id DESC"
	default:
		return "created_at DESC, id DESC"
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
