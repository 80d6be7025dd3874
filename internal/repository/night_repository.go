package repository

import (
	"context"
	"time"

	"github.com/blaisecz/zepp-sleep-report/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArchivedNight is the persisted form of one populated night record. Absence
// markers are not archived; a missing row means the same thing the marker
// does, and re-running a window must be able to fill days that failed before.
type ArchivedNight struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_archived_nights_user_date"`
	Date   string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_archived_nights_user_date"`

	DeepSleepMinutes    int `gorm:"not null"`
	ShallowSleepMinutes int `gorm:"not null"`
	WakeMinutes         int `gorm:"not null"`
	REMMinutes          int `gorm:"not null"`
	NapMinutes          int `gorm:"not null"`

	StartTime *time.Time
	StopTime  *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ArchivedNight) TableName() string {
	return "archived_nights"
}

type NightRepository interface {
	// UpsertWeek archives every populated night in the dataset, keyed by
	// (user, date) so re-runs are idempotent.
	UpsertWeek(ctx context.Context, userID string, dataset *domain.WeeklyDataset) error
	// ListRange returns archived nights for the user in [from, to], in
	// ascending date order.
	ListRange(ctx context.Context, userID, from, to string) ([]ArchivedNight, error)
}

type nightRepository struct {
	db *gorm.DB
}

func NewNightRepository(db *gorm.DB) NightRepository {
	return &nightRepository{db: db}
}

func (r *nightRepository) UpsertWeek(ctx context.Context, userID string, dataset *domain.WeeklyDataset) error {
	nights := dataset.Nights()
	if len(nights) == 0 {
		return nil
	}

	rows := make([]ArchivedNight, 0, len(nights))
	for _, night := range nights {
		rows = append(rows, toArchived(userID, night))
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"deep_sleep_minutes",
				"shallow_sleep_minutes",
				"wake_minutes",
				"rem_minutes",
				"nap_minutes",
				"start_time",
				"stop_time",
				"updated_at",
			}),
		}).
		Create(&rows).Error
}

func (r *nightRepository) ListRange(ctx context.Context, userID, from, to string) ([]ArchivedNight, error) {
	var nights []ArchivedNight
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date ASC").
		Find(&nights).Error
	if err != nil {
		return nil, err
	}
	return nights, nil
}

func toArchived(userID string, night domain.NightRecord) ArchivedNight {
	row := ArchivedNight{
		UserID:              userID,
		Date:                night.Date.String(),
		DeepSleepMinutes:    night.DeepSleepMinutes,
		ShallowSleepMinutes: night.ShallowSleepMinutes,
		WakeMinutes:         night.WakeMinutes,
		REMMinutes:          night.REMMinutes,
		NapMinutes:          night.NapMinutes,
	}
	if !night.StartTime.IsZero() {
		t := night.StartTime
		row.StartTime = &t
	}
	if !night.StopTime.IsZero() {
		t := night.StopTime
		row.StopTime = &t
	}
	return row
}
