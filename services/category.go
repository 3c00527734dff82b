package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"couponHub/backend/models"
	"couponHub/backend/utils"
	"couponHub/backend/validators"
)

type CategoryService struct{ db *gorm.DB }

func NewCategoryService(db *gorm.DB) *CategoryService { return &CategoryService{db: db} }

func (s *CategoryService) Create(ctx context.Context, in validators.CategoryInput) (*models.Category, error) {
	cat := &models.Category{IsActive: true}
	if err := applyCategoryInput(cat, in); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, cat, 0); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(cat).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return cat, nil
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	var cat models.Category
	if err := s.db.WithContext(ctx).First(&cat, id).Error; err != nil {
		return nil, notFoundOr(err, "category")
	}
	return &cat, nil
}

func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var cat models.Category
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&cat).Error; err != nil {
		return nil, notFoundOr(err, "category")
	}
	return &cat, nil
}

// List returns one page of categories ordered by sort order then name, plus the total match count.
func (s *CategoryService) List(ctx context.Context, q validators.ListQuery) ([]models.Category, int64, error) {
	q.Normalize()
	query := s.db.WithContext(ctx).Model(&models.Category{})
	if q.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", likeTerm(q.Search))
	}
	if q.Active {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}
	var cats []models.Category
	if err := query.Order("sort_order ASC, name ASC").Offset(q.Offset()).Limit(q.Limit).Find(&cats).Error; err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	return cats, total, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, in validators.CategoryInput) (*models.Category, error) {
	cat, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyCategoryInput(cat, in); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, cat, cat.ID); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(cat).Error; err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return cat, nil
}

// Delete removes the category permanently, so its name and slug can be reused.
// It refuses while coupons still point at the category.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	cat, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	var refs int64
	if err := s.db.WithContext(ctx).Model(&models.Coupon{}).Where("category_id = ?", id).Count(&refs).Error; err != nil {
		return fmt.Errorf("count coupons: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: category has %d coupons", ErrConflict, refs)
	}
	if err := s.db.WithContext(ctx).Unscoped().Delete(cat).Error; err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *CategoryService) ensureUnique(ctx context.Context, cat *models.Category, selfID uint) error {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Category{}).
		Where("(LOWER(name) = ? OR slug = ?) AND id <> ?", strings.ToLower(cat.Name), cat.Slug, selfID).
		Count(&n).Error
	if err != nil {
		return fmt.Errorf("check category uniqueness: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: category %q already exists", ErrConflict, cat.Name)
	}
	return nil
}

func applyCategoryInput(cat *models.Category, in validators.CategoryInput) error {
	name := strings.TrimSpace(in.Name)
	slug, err := resolveSlug(in.Slug, name)
	if err != nil {
		return err
	}
	cat.Name = name
	cat.Slug = slug
	cat.Description = in.Description
	cat.Icon = in.Icon
	cat.SortOrder = in.SortOrder
	if in.IsActive != nil {
		cat.IsActive = *in.IsActive
	}
	return nil
}

// resolveSlug takes an explicit slug as is, otherwise derives one from name.
func resolveSlug(explicit, name string) (string, error) {
	if explicit != "" {
		if !utils.IsSlug(explicit) {
			return "", fmt.Errorf("%w: slug %q", ErrInvalid, explicit)
		}
		return explicit, nil
	}
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalid)
	}
	slug := utils.Slugify(name)
	if slug == "" {
		return "", fmt.Errorf("%w: cannot derive slug from %q", ErrInvalid, name)
	}
	return slug, nil
}

func likeTerm(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}
