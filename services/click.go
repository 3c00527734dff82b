package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"couponHub/backend/events"
	"couponHub/backend/metrics"
	"couponHub/backend/models"
	"couponHub/backend/validators"
)

// ClickPublisher forwards recorded clicks to downstream consumers.
type ClickPublisher interface {
	PublishClick(ctx context.Context, ev events.ClickEvent) error
}

// Archiver stores exported click snapshots.
type Archiver interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

type ClickService struct {
	db        *gorm.DB
	deduper   ClickDeduper
	publisher ClickPublisher
	archiver  Archiver
	now       func() time.Time
}

// ClickOption wires an optional backend into the ClickService.
type ClickOption func(*ClickService)

func WithDeduper(d ClickDeduper) ClickOption     { return func(s *ClickService) { s.deduper = d } }
func WithPublisher(p ClickPublisher) ClickOption { return func(s *ClickService) { s.publisher = p } }
func WithArchiver(a Archiver) ClickOption        { return func(s *ClickService) { s.archiver = a } }

func NewClickService(db *gorm.DB, opts ...ClickOption) *ClickService {
	s := &ClickService{db: db, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *ClickService) SetClock(now func() time.Time) { s.now = now }

// ClickResult tells the caller where to send the visitor and whether the click was counted.
type ClickResult struct {
	RedirectURL string
	Counted     bool
	Click       *models.Click
}

// Record registers one affiliate click on a live coupon and returns its redirect target.
func (s *ClickService) Record(ctx context.Context, in validators.ClickInput) (*ClickResult, error) {
	var coupon models.Coupon
	if err := s.db.WithContext(ctx).Preload("Platform").First(&coupon, in.CouponID).Error; err != nil {
		return nil, notFoundOr(err, "coupon")
	}
	now := s.now().UTC()
	if !coupon.Live(now) {
		return nil, fmt.Errorf("%w: coupon %d is not live", ErrInvalid, coupon.ID)
	}
	res := &ClickResult{RedirectURL: coupon.AffiliateURL}

	dedupeKey := ""
	if s.deduper != nil && in.IPAddress != "" {
		key := fmt.Sprintf("%d:%s", coupon.ID, in.IPAddress)
		dup, err := s.deduper.Seen(ctx, key)
		if err != nil {
			log.WithError(err).Warn("click dedupe unavailable, counting click")
		} else if dup {
			return res, nil
		} else {
			dedupeKey = key
		}
	}

	click := &models.Click{
		EventID:    uuid.NewString(),
		CouponID:   coupon.ID,
		PlatformID: coupon.PlatformID,
		IPAddress:  in.IPAddress,
		Referrer:   in.Referrer,
		UserAgent:  in.UserAgent,
	}
	click.CreatedAt = now
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(click).Error; err != nil {
			return fmt.Errorf("insert click: %w", err)
		}
		// Increment click count
		return tx.Model(&models.Coupon{}).Where("id = ?", coupon.ID).
			UpdateColumn("click_count", gorm.Expr("click_count + ?", 1)).Error
	})
	if err != nil {
		// release the key so a retry is counted
		if dedupeKey != "" {
			if ferr := s.deduper.Forget(ctx, dedupeKey); ferr != nil {
				log.WithError(ferr).Warn("release click dedupe key")
			}
		}
		return nil, err
	}
	res.Counted = true
	res.Click = click

	platform := "unknown"
	if coupon.Platform != nil {
		platform = coupon.Platform.Slug
	}
	metrics.CouponClicks.WithLabelValues(platform).Inc()

	if s.publisher != nil {
		ev := events.NewClickEvent(click, &coupon)
		if err := s.publisher.PublishClick(ctx, ev); err != nil {
			metrics.ClickEventsPublished.WithLabelValues("error").Inc()
			log.WithError(err).WithField("event_id", click.EventID).Warn("publish click event")
		} else {
			metrics.ClickEventsPublished.WithLabelValues("ok").Inc()
		}
	}
	return res, nil
}

// List returns one page of the click log, newest first.
func (s *ClickService) List(ctx context.Context, q validators.ClickQuery) ([]models.Click, int64, error) {
	q.Normalize()
	query := s.filtered(ctx, q)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count clicks: %w", err)
	}
	var clicks []models.Click
	if err := query.Order("created_at DESC, id DESC").Offset(q.Offset()).Limit(q.Limit).Find(&clicks).Error; err != nil {
		return nil, 0, fmt.Errorf("list clicks: %w", err)
	}
	return clicks, total, nil
}

// WriteCSV streams every click matching q (ignoring paging) to w and returns the row count.
func (s *ClickService) WriteCSV(ctx context.Context, q validators.ClickQuery, w io.Writer) (int, error) {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"ID", "Event ID", "Coupon ID", "Platform ID", "IP Address", "Referrer", "User Agent", "Created At"}); err != nil {
		return 0, err
	}

	rows := 0
	var batch []models.Click
	res := s.filtered(ctx, q).FindInBatches(&batch, 500, func(tx *gorm.DB, _ int) error {
		for _, c := range batch {
			err := writer.Write([]string{
				strconv.FormatUint(uint64(c.ID), 10),
				c.EventID,
				strconv.FormatUint(uint64(c.CouponID), 10),
				strconv.FormatUint(uint64(c.PlatformID), 10),
				c.IPAddress,
				c.Referrer,
				c.UserAgent,
				c.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			})
			if err != nil {
				return err
			}
			rows++
		}
		return nil
	})
	if res.Error != nil {
		return rows, fmt.Errorf("export clicks: %w", res.Error)
	}
	writer.Flush()
	return rows, writer.Error()
}

// Archive uploads a CSV snapshot of the matching clicks and returns its object key.
func (s *ClickService) Archive(ctx context.Context, q validators.ClickQuery) (string, int, error) {
	if s.archiver == nil {
		return "", 0, fmt.Errorf("%w: click archive storage is not configured", ErrUnavailable)
	}
	var buf bytes.Buffer
	rows, err := s.WriteCSV(ctx, q, &buf)
	if err != nil {
		return "", 0, err
	}
	key := ArchiveKey(s.now().UTC())
	if err := s.archiver.Put(ctx, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "text/csv"); err != nil {
		return "", 0, fmt.Errorf("upload archive: %w", err)
	}
	return key, rows, nil
}

// ArchiveKey lays snapshots out as clicks/yyyy/mm/dd/clicks-<unix>.csv.
func ArchiveKey(t time.Time) string {
	return fmt.Sprintf("clicks/%d/%02d/%02d/clicks-%d.csv", t.Year(), t.Month(), t.Day(), t.Unix())
}

func (s *ClickService) filtered(ctx context.Context, q validators.ClickQuery) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Click{})
	if q.CouponID != 0 {
		query = query.Where("coupon_id = ?", q.CouponID)
	}
	if q.PlatformID != 0 {
		query = query.Where("platform_id = ?", q.PlatformID)
	}
	if !q.From.IsZero() {
		query = query.Where("created_at >= ?", dayStart(q.From))
	}
	if !q.To.IsZero() {
		// "to" is inclusive of the whole day
		query = query.Where("created_at < ?", dayStart(q.To).AddDate(0, 0, 1))
	}
	return query
}

// dayStart keeps t's calendar date and pins it to midnight UTC.
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
