package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couponHub/backend/models"
	"couponHub/backend/validators"
)

func TestCouponCreateAndGet(t *testing.T) {
	db, _ := newTestDB(t)
	c := seedCatalog(t, db)
	svc := NewCouponService(db)

	coupon, err := svc.Create(context.Background(), couponInput(c, "Ten off"))
	require.NoError(t, err)
	require.NotNil(t, coupon.Category)
	require.NotNil(t, coupon.Platform)
	assert.Equal(t, "Electronics", coupon.Category.Name)
	assert.Equal(t, "mega-store", coupon.Platform.Slug)
	assert.True(t, coupon.IsActive)
	assert.True(t, decimal.NewFromInt(10).Equal(coupon.DiscountValue))
	assert.Zero(t, coupon.ClickCount)
}

func TestCouponInvariants(t *testing.T) {
	db, _ := newTestDB(t)
	c := seedCatalog(t, db)
	svc := NewCouponService(db)
	ctx := context.Background()

	cases := map[string]func(in *validators.CouponInput){
		"percentage above 100": func(in *validators.CouponInput) { in.DiscountValue = decimal.NewFromInt(150) },
		"percentage zero":      func(in *validators.CouponInput) { in.DiscountValue = decimal.Zero },
		"flat zero": func(in *validators.CouponInput) {
			in.DiscountType = models.DiscountFlat
			in.DiscountValue = decimal.Zero
		},
		"unknown type":     func(in *validators.CouponInput) { in.DiscountType = "bogo" },
		"negative min":     func(in *validators.CouponInput) { in.MinPurchase = decimal.NewFromInt(-1) },
		"missing category": func(in *validators.CouponInput) { in.CategoryID = 999 },
		"missing platform": func(in *validators.CouponInput) { in.PlatformID = 999 },
		"blank title":      func(in *validators.CouponInput) { in.Title = "  " },
		"expiry before start": func(in *validators.CouponInput) {
			in.StartsAt = timePtr(testNow)
			in.ExpiresAt = timePtr(testNow.Add(-time.Hour))
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := couponInput(c, "Broken")
			mutate(&in)
			_, err := svc.Create(ctx, in)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	deal := couponInput(c, "Clearance")
	deal.DiscountType = models.DiscountDeal
	deal.DiscountValue = decimal.NewFromInt(77)
	coupon, err := svc.Create(ctx, deal)
	require.NoError(t, err)
	assert.True(t, coupon.DiscountValue.IsZero())
}

func TestCouponUpdateKeepsClickCount(t *testing.T) {
	db, _ := newTestDB(t)
	c := seedCatalog(t, db)
	svc := NewCouponService(db)
	ctx := context.Background()

	coupon, err := svc.Create(ctx, couponInput(c, "Ten off"))
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Coupon{}).Where("id = ?", coupon.ID).Update("click_count", 7).Error)

	in := couponInput(c, "Fifteen off")
	in.DiscountValue = decimal.NewFromInt(15)
	in.IsActive = validators.BoolPtr(false)
	updated, err := svc.Update(ctx, coupon.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Fifteen off", updated.Title)
	assert.False(t, updated.IsActive)
	assert.EqualValues(t, 7, updated.ClickCount)

	_, err = svc.Update(ctx, 999, in)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, coupon.ID))
	assert.ErrorIs(t, svc.Delete(ctx, coupon.ID), ErrNotFound)
}

func TestCouponListFiltersAndSort(t *testing.T) {
	db, _ := newTestDB(t)
	c := seedCatalog(t, db)
	other, err := NewPlatformService(db).Create(context.Background(), validators.PlatformInput{Name: "Tiny Shop", WebsiteURL: "https://tiny.example.com"})
	require.NoError(t, err)

	svc := NewCouponService(db)
	svc.SetClock(fixedClock)
	ctx := context.Background()

	mk := func(title string, mutate func(in *validators.CouponInput)) *models.Coupon {
		in := couponInput(c, title)
		if mutate != nil {
			mutate(&in)
		}
		coupon, err := svc.Create(ctx, in)
		require.NoError(t, err)
		return coupon
	}

	soon := mk("Soon", func(in *validators.CouponInput) { in.ExpiresAt = timePtr(testNow.Add(24 * time.Hour)) })
	later := mk("Later", func(in *validators.CouponInput) { in.ExpiresAt = timePtr(testNow.Add(72 * time.Hour)) })
	mk("Expired", func(in *validators.CouponInput) { in.ExpiresAt = timePtr(testNow.Add(-time.Hour)) })
	mk("Future", func(in *validators.CouponInput) { in.StartsAt = timePtr(testNow.Add(time.Hour)) })
	mk("Paused", func(in *validators.CouponInput) { in.IsActive = validators.BoolPtr(false) })
	featured := mk("Featured", func(in *validators.CouponInput) {
		in.IsFeatured = true
		in.PlatformID = other.ID
	})
	require.NoError(t, db.Model(&models.Coupon{}).Where("id = ?", later.ID).Update("click_count", 50).Error)

	all, total, err := svc.List(ctx, validators.CouponQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 6, total)
	assert.Equal(t, featured.ID, all[0].ID, "newest first by default")

	live, total, err := svc.List(ctx, validators.CouponQuery{ListQuery: validators.ListQuery{Active: true}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	for _, cp := range live {
		assert.NotContains(t, []string{"Expired", "Future", "Paused"}, cp.Title)
	}

	popular, _, err := svc.List(ctx, validators.CouponQuery{Sort: validators.SortPopular})
	require.NoError(t, err)
	assert.Equal(t, later.ID, popular[0].ID)

	expiring, _, err := svc.List(ctx, validators.CouponQuery{ListQuery: validators.ListQuery{Active: true}, Sort: validators.SortExpiring})
	require.NoError(t, err)
	require.Len(t, expiring, 3)
	assert.Equal(t, soon.ID, expiring[0].ID)
	assert.Equal(t, later.ID, expiring[1].ID)
	assert.Equal(t, featured.ID, expiring[2].ID, "no expiry sorts last")

	onlyFeatured, total, err := svc.List(ctx, validators.CouponQuery{Featured: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Tiny Shop", onlyFeatured[0].Platform.Name)

	_, total, err = svc.List(ctx, validators.CouponQuery{PlatformID: c.Platform.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)

	searched, total, err := svc.List(ctx, validators.CouponQuery{ListQuery: validators.ListQuery{Search: "pause"}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Paused", searched[0].Title)
}
