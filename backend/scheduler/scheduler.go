package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"gorm.io/gorm"

	"studytrack/backend/models"
	"studytrack/backend/progress"
)

// Scheduler runs the nightly progress rollup: recompute every user's
// snapshot, persist a history row, refresh the live cache and award
// any badges earned since the last run.
type Scheduler struct {
	scheduler *gocron.Scheduler
	db        *gorm.DB
	agg       *progress.Aggregator
	logger    *log.Logger
}

func New(db *gorm.DB, agg *progress.Aggregator, logger *log.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		db:        db,
		agg:       agg,
		logger:    logger,
	}
}

// Start schedules the rollup at the given local time of day (HH:MM)
// and begins running in the background.
func (s *Scheduler) Start(rollupAt string) error {
	if _, err := s.scheduler.Every(1).Day().At(rollupAt).Do(s.rollup); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) rollup() {
	now := time.Now()

	var users []models.User
	if err := s.db.Find(&users).Error; err != nil {
		s.logger.Printf("rollup: could not list users: %v", err)
		return
	}

	for _, u := range users {
		s.rollupUser(u.ID, now)
	}

	s.logger.Printf("rollup: processed %d users", len(users))
}

func (s *Scheduler) rollupUser(userID uint, now time.Time) {
	var subjects []models.Subject
	s.db.Preload("Topics").Where("user_id = ?", userID).Find(&subjects)

	snap := progress.Overall(subjects)
	snap.Timestamp = now

	s.db.Create(&models.ProgressSnapshot{
		UserID:      userID,
		Physics:     snap.Physics,
		Chemistry:   snap.Chemistry,
		Mathematics: snap.Mathematics,
		Overall:     snap.Overall,
		TakenAt:     now,
	})
	s.agg.Refresh(userID, snap)

	var settings models.Settings
	s.db.Where("user_id = ?", userID).First(&settings)

	var sessions []models.StudySession
	s.db.Where("user_id = ?", userID).Find(&sessions)

	state := progress.CalculateStreak(sessions, progress.ThresholdSeconds(settings), now)

	var existing []models.Badge
	s.db.Where("user_id = ?", userID).Find(&existing)
	have := make(map[string]bool, len(existing))
	for _, b := range existing {
		have[b.Code] = true
	}

	for _, code := range progress.EarnedBadges(state) {
		if have[code] {
			continue
		}
		s.db.Create(&models.Badge{UserID: userID, Code: code, EarnedAt: now})
		s.logger.Printf("rollup: user %d earned badge %s", userID, code)
	}
}
