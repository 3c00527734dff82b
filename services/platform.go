package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"couponHub/backend/models"
	"couponHub/backend/validators"
)

type PlatformService struct{ db *gorm.DB }

func NewPlatformService(db *gorm.DB) *PlatformService { return &PlatformService{db: db} }

func (s *PlatformService) Create(ctx context.Context, in validators.PlatformInput) (*models.Platform, error) {
	p := &models.Platform{IsActive: true}
	if err := applyPlatformInput(p, in); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, p, 0); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, fmt.Errorf("create platform: %w", err)
	}
	return p, nil
}

func (s *PlatformService) Get(ctx context.Context, id uint) (*models.Platform, error) {
	var p models.Platform
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFoundOr(err, "platform")
	}
	return &p, nil
}

func (s *PlatformService) GetBySlug(ctx context.Context, slug string) (*models.Platform, error) {
	var p models.Platform
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error; err != nil {
		return nil, notFoundOr(err, "platform")
	}
	return &p, nil
}

func (s *PlatformService) List(ctx context.Context, q validators.ListQuery) ([]models.Platform, int64, error) {
	q.Normalize()
	query := s.db.WithContext(ctx).Model(&models.Platform{})
	if q.Search != "" {
		term := likeTerm(q.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(website_url) LIKE ?", term, term)
	}
	if q.Active {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count platforms: %w", err)
	}
	var platforms []models.Platform
	if err := query.Order("name ASC").Offset(q.Offset()).Limit(q.Limit).Find(&platforms).Error; err != nil {
		return nil, 0, fmt.Errorf("list platforms: %w", err)
	}
	return platforms, total, nil
}

func (s *PlatformService) Update(ctx context.Context, id uint, in validators.PlatformInput) (*models.Platform, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyPlatformInput(p, in); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, p, p.ID); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, fmt.Errorf("update platform: %w", err)
	}
	return p, nil
}

// Delete removes the platform permanently; it refuses while coupons reference it.
func (s *PlatformService) Delete(ctx context.Context, id uint) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	var refs int64
	if err := s.db.WithContext(ctx).Model(&models.Coupon{}).Where("platform_id = ?", id).Count(&refs).Error; err != nil {
		return fmt.Errorf("count coupons: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: platform has %d coupons", ErrConflict, refs)
	}
	if err := s.db.WithContext(ctx).Unscoped().Delete(p).Error; err != nil {
		return fmt.Errorf("delete platform: %w", err)
	}
	return nil
}

func (s *PlatformService) ensureUnique(ctx context.Context, p *models.Platform, selfID uint) error {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Platform{}).
		Where("(LOWER(name) = ? OR slug = ?) AND id <> ?", strings.ToLower(p.Name), p.Slug, selfID).
		Count(&n).Error
	if err != nil {
		return fmt.Errorf("check platform uniqueness: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: platform %q already exists", ErrConflict, p.Name)
	}
	return nil
}

func applyPlatformInput(p *models.Platform, in validators.PlatformInput) error {
	name := strings.TrimSpace(in.Name)
	slug, err := resolveSlug(in.Slug, name)
	if err != nil {
		return err
	}
	if strings.TrimSpace(in.WebsiteURL) == "" {
		return fmt.Errorf("%w: website_url is required", ErrInvalid)
	}
	p.Name = name
	p.Slug = slug
	p.WebsiteURL = strings.TrimSpace(in.WebsiteURL)
	p.LogoURL = in.LogoURL
	p.Description = in.Description
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	return nil
}
