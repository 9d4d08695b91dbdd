package service

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/campushub/portal-api/internal/models"
	"github.com/campushub/portal-api/pkg/config"
	appErrors "github.com/campushub/portal-api/pkg/errors"
)

type detectorScheduleSource interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduleBlock, error)
}

type detectorSessionStore interface {
	ListByTeacherOnDate(ctx context.Context, teacherID string, date time.Time) ([]models.ClassSession, error)
	Create(ctx context.Context, session *models.ClassSession) error
}

// DetectorService decides whether a scheduled class is in session at the
// moment of invocation and, if so, guarantees exactly one ClassSession exists
// for it today. Detection is a convenience for the attendance page: any
// failure along the way degrades to "no active class" so the caller can fall
// back to manual session selection.
type DetectorService struct {
	schedules detectorScheduleSource
	sessions  detectorSessionStore
	logger    *zap.Logger

	location       *time.Location
	gracePeriod    time.Duration
	matchTolerance time.Duration
	createTimeout  time.Duration

	// creating guards the single session-creation call so that overlapping
	// invocations cannot double-create while one is in flight.
	creating atomic.Bool
}

// NewDetectorService constructs the auto detector.
func NewDetectorService(schedules detectorScheduleSource, sessions detectorSessionStore, cfg config.DetectionConfig, logger *zap.Logger) *DetectorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := resolveLocation(cfg.Timezone, logger)
	grace := cfg.GracePeriod
	if grace <= 0 {
		grace = 30 * time.Minute
	}
	tolerance := cfg.MatchTolerance
	if tolerance <= 0 {
		tolerance = 15 * time.Minute
	}
	createTimeout := cfg.CreateTimeout
	if createTimeout <= 0 {
		createTimeout = 10 * time.Second
	}
	return &DetectorService{
		schedules:      schedules,
		sessions:       sessions,
		logger:         logger,
		location:       loc,
		gracePeriod:    grace,
		matchTolerance: tolerance,
		createTimeout:  createTimeout,
	}
}

// Detect loads the teacher's weekly schedule and today's sessions, then runs
// the detection algorithm against the current clock.
func (s *DetectorService) Detect(ctx context.Context, teacherID string) (*models.ResolvedSession, error) {
	now := time.Now()

	blocks, err := s.schedules.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	sessions, err := s.sessions.ListByTeacherOnDate(ctx, teacherID, dateOnly(now.In(s.location)))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}

	return s.DetectAt(ctx, now, blocks, sessions), nil
}

// DetectAt runs the detection algorithm for the given instant against the
// supplied schedule blocks and known sessions. It returns nil when no class
// is active. At most one session-creation call is issued per invocation;
// repeated invocations within the same matching window resolve the existing
// session instead of creating a duplicate.
func (s *DetectorService) DetectAt(ctx context.Context, now time.Time, blocks []models.ScheduleBlock, sessions []models.ClassSession) *models.ResolvedSession {
	local := now.In(s.location)

	active := s.matchActiveBlock(local, blocks)
	if active == nil {
		return nil
	}

	if existing := s.findExistingSession(local, *active, sessions); existing != nil {
		return &models.ResolvedSession{CourseID: active.CourseID, SessionID: existing.ID, IsAutoDetected: true}
	}

	if !s.creating.CompareAndSwap(false, true) {
		s.logger.Debug("session creation already in flight, skipping", zap.String("course_id", active.CourseID))
		return nil
	}
	defer s.creating.Store(false)

	session := &models.ClassSession{
		CourseID:  active.CourseID,
		Date:      dateOnly(local),
		StartTime: active.StartTime,
		EndTime:   active.EndTime,
		Room:      active.Room,
	}

	createCtx, cancel := context.WithTimeout(ctx, s.createTimeout)
	defer cancel()

	if err := s.sessions.Create(createCtx, session); err != nil {
		// Deliberately silent towards the caller: detection is best effort
		// and the user can still pick a session manually.
		s.logger.Warn("auto session creation failed",
			zap.String("course_id", active.CourseID),
			zap.String("schedule_block_id", active.ID),
			zap.Error(err))
		return nil
	}

	s.logger.Info("auto-created class session",
		zap.String("session_id", session.ID),
		zap.String("course_id", session.CourseID),
		zap.String("start_time", session.StartTime))

	return &models.ResolvedSession{CourseID: active.CourseID, SessionID: session.ID, IsAutoDetected: true}
}

// matchActiveBlock returns the first block whose weekday matches and whose
// window [start - grace, end] contains the current minute. Overlapping
// matches indicate a schedule data problem; they are logged but first in
// input order still wins.
func (s *DetectorService) matchActiveBlock(local time.Time, blocks []models.ScheduleBlock) *models.ScheduleBlock {
	dayName := local.Weekday().String()
	currentMinutes := local.Hour()*60 + local.Minute()
	graceMinutes := int(s.gracePeriod / time.Minute)

	var matches []int
	for i, block := range blocks {
		if !strings.EqualFold(block.DayOfWeek, dayName) {
			continue
		}
		start := toMinutes(block.StartTime)
		end := toMinutes(block.EndTime)
		if currentMinutes >= start-graceMinutes && currentMinutes <= end {
			matches = append(matches, i)
		}
	}

	if len(matches) == 0 {
		return nil
	}
	if len(matches) > 1 {
		ids := make([]string, len(matches))
		for i, idx := range matches {
			ids[i] = blocks[idx].ID
		}
		s.logger.Warn("multiple schedule blocks active simultaneously, using first",
			zap.Strings("block_ids", ids),
			zap.String("day", dayName))
	}
	return &blocks[matches[0]]
}

// findExistingSession looks for a session of the same course on the same
// local calendar date whose start time is within the match tolerance of the
// block's start time.
func (s *DetectorService) findExistingSession(local time.Time, block models.ScheduleBlock, sessions []models.ClassSession) *models.ClassSession {
	today := local.Format("2006-01-02")
	blockStart := toMinutes(block.StartTime)
	toleranceMinutes := int(s.matchTolerance / time.Minute)

	for i, session := range sessions {
		if session.CourseID != block.CourseID {
			continue
		}
		if session.Date.Format("2006-01-02") != today {
			continue
		}
		diff := toMinutes(session.StartTime) - blockStart
		if diff < 0 {
			diff = -diff
		}
		if diff <= toleranceMinutes {
			return &sessions[i]
		}
	}
	return nil
}

// toMinutes converts an "HH:MM" clock time to minutes since midnight.
// Malformed or missing input yields 0 rather than an error; schedule data is
// not trusted to be well formed.
func toMinutes(hhmm string) int {
	parts := strings.SplitN(strings.TrimSpace(hhmm), ":", 2)
	if len(parts) != 2 {
		return 0
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0
	}
	return hours*60 + minutes
}

// dateOnly truncates a local time to its calendar date. The result carries
// UTC midnight so it round-trips cleanly through a DATE column without the
// timezone shifting it to a neighbouring day.
func dateOnly(local time.Time) time.Time {
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// resolveLocation loads the named timezone, falling back to the server's
// local one when the name is empty or unknown.
func resolveLocation(name string, logger *zap.Logger) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn("invalid timezone, using local", zap.String("timezone", name), zap.Error(err))
		return time.Local
	}
	return loc
}
