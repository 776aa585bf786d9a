package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/carelink/carelink-api/internal/domain/appointment"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appointment.ErrAppointmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AppointmentRepository) List(ctx context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	query := r.db.WithContext(ctx).Model(&appointment.Appointment{})

	if q.PatientID != nil {
		query = query.Where("patient_id = ?", *q.PatientID)
	}
	if q.DoctorID != nil {
		query = query.Where("doctor_id = ?", *q.DoctorID)
	}
	if q.Status != nil {
		query = query.Where("status = ?", *q.Status)
	}
	if q.DateFrom != nil {
		query = query.Where("scheduled_at >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		query = query.Where("scheduled_at < ?", *q.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var appointments []*appointment.Appointment
	err := query.
		Order("scheduled_at DESC").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(q.PageSize) - 1) / int64(q.PageSize))
	return &appointment.PagedAppointments{
		Appointments: appointments,
		TotalCount:   total,
		Page:         q.Page,
		PageSize:     q.PageSize,
		TotalPages:   totalPages,
	}, nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, a *appointment.Appointment) error {
	return r.db.WithContext(ctx).Model(a).
		Select("status", "cancelled_at", "cancellation_reason", "cancelled_by", "completed_at", "notes").
		Updates(a).Error
}

func (r *AppointmentRepository) HasConflict(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where("doctor_id = ?", doctorID).
		Where("status NOT IN ?", []appointment.Status{appointment.StatusCancelled}).
		Where("scheduled_at < ? AND (scheduled_at + duration_mins * INTERVAL '1 minute') > ?", end, start)

	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AppointmentRepository) CountByStatus(ctx context.Context) (*appointment.StatusCounts, error) {
	type row struct {
		Status appointment.Status
		Count  int64
	}

	var rows []row
	err := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := &appointment.StatusCounts{}
	for _, row := range rows {
		counts.Total += row.Count
		switch row.Status {
		case appointment.StatusPending:
			counts.Pending = row.Count
		case appointment.StatusConfirmed:
			counts.Confirmed = row.Count
		case appointment.StatusCompleted:
			counts.Completed = row.Count
		case appointment.StatusCancelled:
			counts.Cancelled = row.Count
		}
	}
	return counts, nil
}

func (r *AppointmentRepository) CountByDoctor(ctx context.Context) ([]*appointment.PartyCount, error) {
	var rows []*appointment.PartyCount
	err := r.db.WithContext(ctx).
		Table("clinical.appointments AS a").
		Select("a.doctor_id AS party_id, CONCAT(u.first_name, ' ', u.last_name) AS name, COUNT(*) AS count").
		Joins("JOIN clinical.doctor_profiles dp ON dp.id = a.doctor_id").
		Joins("JOIN auth.users u ON u.id = dp.user_id").
		Where("a.deleted_at IS NULL").
		Group("a.doctor_id, u.first_name, u.last_name").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepository) CountByPatient(ctx context.Context) ([]*appointment.PartyCount, error) {
	var rows []*appointment.PartyCount
	err := r.db.WithContext(ctx).
		Table("clinical.appointments AS a").
		Select("a.patient_id AS party_id, CONCAT(u.first_name, ' ', u.last_name) AS name, COUNT(*) AS count").
		Joins("JOIN clinical.patient_profiles pp ON pp.id = a.patient_id").
		Joins("JOIN auth.users u ON u.id = pp.user_id").
		Where("a.deleted_at IS NULL").
		Group("a.patient_id, u.first_name, u.last_name").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepository) GetRecent(ctx context.Context, limit int) ([]*appointment.Appointment, error) {
	var appointments []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}
