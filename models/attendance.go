package models

import (
	"context"
	"errors"
	"time"

	"github.com/boost-jp/ops_backend/config"
	"github.com/boost-jp/ops_backend/utils"
	"gorm.io/gorm"
)

// Attendance is a member's daily clock record. It is informational only and
// feeds no financial calculation; billable effort comes from work
// allocations.
type Attendance struct {
	ID        int              `gorm:"primary_key" json:"id"`
	MemberId  int              `gorm:"uniqueIndex:idx_attendance_member_date,priority:1;not null" json:"member_id"`
	WorkDate  string           `gorm:"size:10;uniqueIndex:idx_attendance_member_date,priority:2;not null" json:"work_date"`
	ClockIn   *time.Time       `json:"clock_in"`
	ClockOut  *time.Time       `json:"clock_out"`
	Status    AttendanceStatus `gorm:"size:16;not null;default:'working'" json:"status"`
	Note      string           `gorm:"size:512" json:"note"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

const workDateLayout = "2006-01-02"

// ClockIn opens today's attendance row for the member. Clocking in twice on
// the same date returns the existing row untouched.
func ClockIn(ctx context.Context, memberId int, at time.Time) (*Attendance, error) {
	if err := utils.ValidateResourceId[Member](ctx, memberId); err != nil {
		return nil, errors.New("member not found")
	}

	db := config.GetDB()
	workDate := at.Format(workDateLayout)

	var existing Attendance
	err := db.WithContext(ctx).
		Where("member_id = ? AND work_date = ?", memberId, workDate).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	attendance := Attendance{
		MemberId: memberId,
		WorkDate: workDate,
		ClockIn:  &at,
		Status:   AttendanceStatusWorking,
	}
	if err := db.WithContext(ctx).Create(&attendance).Error; err != nil {
		return nil, err
	}
	return &attendance, nil
}

// ClockOut closes the member's open attendance row for the date.
func ClockOut(ctx context.Context, memberId int, at time.Time) (*Attendance, error) {
	db := config.GetDB()
	workDate := at.Format(workDateLayout)

	var attendance Attendance
	err := db.WithContext(ctx).
		Where("member_id = ? AND work_date = ?", memberId, workDate).
		First(&attendance).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if attendance.Status == AttendanceStatusDone {
		return nil, errors.New("already clocked out")
	}

	attendance.ClockOut = &at
	attendance.Status = AttendanceStatusDone
	if err := db.WithContext(ctx).Save(&attendance).Error; err != nil {
		return nil, err
	}
	return &attendance, nil
}

type NewAttendance struct {
	MemberId int              `json:"member_id" binding:"required"`
	WorkDate string           `json:"work_date" binding:"required"`
	ClockIn  *time.Time       `json:"clock_in"`
	ClockOut *time.Time       `json:"clock_out"`
	Status   AttendanceStatus `json:"status"`
	Note     string           `json:"note"`
}

// UpsertAttendance lets an admin correct a day's record after the fact.
func UpsertAttendance(ctx context.Context, input *NewAttendance) (*Attendance, error) {
	if err := utils.ValidateResourceId[Member](ctx, input.MemberId); err != nil {
		return nil, errors.New("member not found")
	}
	if _, err := time.Parse(workDateLayout, input.WorkDate); err != nil {
		return nil, errors.New("work date must be in YYYY-MM-DD format")
	}
	if input.Status == "" {
		input.Status = AttendanceStatusWorking
	}
	if !input.Status.IsValid() {
		return nil, errors.New("invalid attendance status")
	}

	db := config.GetDB()
	var attendance Attendance
	err := db.WithContext(ctx).
		Where("member_id = ? AND work_date = ?", input.MemberId, input.WorkDate).
		First(&attendance).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	attendance.MemberId = input.MemberId
	attendance.WorkDate = input.WorkDate
	attendance.ClockIn = input.ClockIn
	attendance.ClockOut = input.ClockOut
	attendance.Status = input.Status
	attendance.Note = input.Note
	if err := db.WithContext(ctx).Save(&attendance).Error; err != nil {
		return nil, err
	}
	return &attendance, nil
}

func ListAttendances(ctx context.Context, memberId int, from string, to string) ([]*Attendance, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if memberId > 0 {
		dbCtx = dbCtx.Where("member_id = ?", memberId)
	}
	if from != "" {
		dbCtx = dbCtx.Where("work_date >= ?", from)
	}
	if to != "" {
		dbCtx = dbCtx.Where("work_date <= ?", to)
	}
	var attendances []*Attendance
	if err := dbCtx.Order("work_date DESC, member_id").Find(&attendances).Error; err != nil {
		return nil, err
	}
	return attendances, nil
}
