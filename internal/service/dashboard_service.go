package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/campushub/portal-api/internal/models"
	"github.com/campushub/portal-api/pkg/config"
	appErrors "github.com/campushub/portal-api/pkg/errors"
)

const dashboardSummaryKey = "dashboard:summary"

type dashboardUserSource interface {
	CountByRole(ctx context.Context, role models.UserRole) (int, error)
}

type dashboardCourseSource interface {
	Count(ctx context.Context) (int, error)
}

type dashboardSessionSource interface {
	CountOnDate(ctx context.Context, date time.Time) (int, error)
}

type dashboardPaymentSource interface {
	CountUnpaid(ctx context.Context) (int, error)
}

// DashboardService aggregates headline counts for the admin landing page.
// The summary is cached; a cold cache rebuilds it from the repositories.
type DashboardService struct {
	cfg      config.DashboardConfig
	users    dashboardUserSource
	courses  dashboardCourseSource
	sessions dashboardSessionSource
	payments dashboardPaymentSource
	cache    *CacheService
	logger   *zap.Logger
	location *time.Location
}

// NewDashboardService constructs DashboardService. cache may be nil.
func NewDashboardService(
	cfg config.DashboardConfig,
	users dashboardUserSource,
	courses dashboardCourseSource,
	sessions dashboardSessionSource,
	payments dashboardPaymentSource,
	cache *CacheService,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		cfg:      cfg,
		users:    users,
		courses:  courses,
		sessions: sessions,
		payments: payments,
		cache:    cache,
		logger:   logger,
		location: resolveLocation(cfg.Timezone, logger),
	}
}

// Summary returns the dashboard counts, serving from cache when warm.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "dashboard is disabled")
	}

	if s.cache != nil {
		var cached models.DashboardSummary
		if s.cache.Get(ctx, dashboardSummaryKey, &cached) {
			return &cached, nil
		}
	}

	summary, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, dashboardSummaryKey, summary, s.cfg.CacheTTL)
	}
	return summary, nil
}

// Invalidate drops the cached summary so the next read rebuilds it.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, dashboardSummaryKey)
	}
}

func (s *DashboardService) build(ctx context.Context) (*models.DashboardSummary, error) {
	students, err := s.users.CountByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	teachers, err := s.users.CountByRole(ctx, models.RoleTeacher)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count teachers")
	}
	courses, err := s.courses.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count courses")
	}
	// The sessions table stores a DATE, so the count needs the calendar date
	// at UTC midnight, not a wall-clock timestamp.
	sessionsToday, err := s.sessions.CountOnDate(ctx, dateOnly(time.Now().In(s.location)))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count today's sessions")
	}
	unpaid, err := s.payments.CountUnpaid(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unpaid invoices")
	}

	return &models.DashboardSummary{
		Students:      students,
		Teachers:      teachers,
		Courses:       courses,
		SessionsToday: sessionsToday,
		UnpaidCount:   unpaid,
	}, nil
}
