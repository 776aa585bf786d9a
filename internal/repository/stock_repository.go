package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/carelink/carelink-api/internal/domain/pharmacy"
)

type StockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{db: db}
}

// CreateBatch inserts the batch and recomputes the derived stock flag from
// live batch totals in the same transaction, so the flag can never drift
// from the quantities that back it.
func (r *StockRepository) CreateBatch(ctx context.Context, b *pharmacy.Batch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(b).Error; err != nil {
			return err
		}

		var total int64
		err := tx.Model(&pharmacy.Batch{}).
			Where("pharmacy_id = ? AND medicine_id = ?", b.PharmacyID, b.MedicineID).
			Select("COALESCE(SUM(quantity), 0)").
			Scan(&total).Error
		if err != nil {
			return err
		}

		stock := pharmacy.Stock{
			PharmacyID: b.PharmacyID,
			MedicineID: b.MedicineID,
			Status:     pharmacy.StatusForQuantity(int(total)),
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pharmacy_id"}, {Name: "medicine_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
		}).Create(&stock).Error
	})
}

func (r *StockRepository) GetStock(ctx context.Context, stockID uuid.UUID) (*pharmacy.Stock, error) {
	var s pharmacy.Stock
	err := r.db.WithContext(ctx).First(&s, "id = ?", stockID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pharmacy.ErrStockNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StockRepository) ListStock(ctx context.Context, pharmacyID uuid.UUID) ([]*pharmacy.Stock, error) {
	var stocks []*pharmacy.Stock
	err := r.db.WithContext(ctx).
		Where("pharmacy_id = ?", pharmacyID).
		Order("created_at").
		Find(&stocks).Error
	if err != nil {
		return nil, err
	}
	return stocks, nil
}

func (r *StockRepository) SetStockStatus(ctx context.Context, stockID uuid.UUID, status pharmacy.StockStatus) error {
	res := r.db.WithContext(ctx).Model(&pharmacy.Stock{}).
		Where("id = ?", stockID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pharmacy.ErrStockNotFound
	}
	return nil
}

func (r *StockRepository) ListBatches(ctx context.Context, pharmacyID uuid.UUID, medicineIDs []uuid.UUID) ([]*pharmacy.Batch, error) {
	q := r.db.WithContext(ctx).Where("pharmacy_id = ?", pharmacyID)
	if len(medicineIDs) > 0 {
		q = q.Where("medicine_id IN ?", medicineIDs)
	}

	var batches []*pharmacy.Batch
	if err := q.Order("expiry_date").Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *StockRepository) ListExpiringBatches(ctx context.Context, pharmacyID uuid.UUID, before time.Time) ([]*pharmacy.Batch, error) {
	var batches []*pharmacy.Batch
	err := r.db.WithContext(ctx).
		Where("pharmacy_id = ? AND expiry_date >= ? AND expiry_date < ?", pharmacyID, time.Now(), before).
		Order("expiry_date").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *StockRepository) ListLowStock(ctx context.Context, pharmacyID uuid.UUID) ([]*pharmacy.Stock, error) {
	var stocks []*pharmacy.Stock
	err := r.db.WithContext(ctx).
		Where("pharmacy_id = ? AND status IN ?", pharmacyID,
			[]pharmacy.StockStatus{pharmacy.StatusLowStock, pharmacy.StatusOutOfStock}).
		Order("created_at").
		Find(&stocks).Error
	if err != nil {
		return nil, err
	}
	return stocks, nil
}
