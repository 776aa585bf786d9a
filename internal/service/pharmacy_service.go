package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carelink/carelink-api/internal/domain"
	"github.com/carelink/carelink-api/internal/domain/pharmacy"
	"github.com/carelink/carelink-api/internal/domain/prescription"
	"github.com/carelink/carelink-api/pkg/geo"
	"github.com/carelink/carelink-api/pkg/metrics"
)

const (
	// defaultSearchRadiusKm bounds proximity results when the client sends
	// no radius.
	defaultSearchRadiusKm = 10.0

	// expiryAlertWindow is how far ahead the alerts view looks for
	// expiring batches.
	expiryAlertWindow = 30 * 24 * time.Hour
)

type PharmacyService struct {
	userRepo    UserRepository
	profileRepo pharmacy.ProfileRepository
	pharmRepo   pharmacy.Repository
	medRepo     pharmacy.MedicineRepository
	stockRepo   pharmacy.StockRepository
	rxRepo      prescription.Repository
	auditSvc    *AuditService
	collector   *metrics.Collector
	log         *zap.Logger
}

func NewPharmacyService(
	userRepo UserRepository,
	profileRepo pharmacy.ProfileRepository,
	pharmRepo pharmacy.Repository,
	medRepo pharmacy.MedicineRepository,
	stockRepo pharmacy.StockRepository,
	rxRepo prescription.Repository,
	auditSvc *AuditService,
	collector *metrics.Collector,
	log *zap.Logger,
) *PharmacyService {
	return &PharmacyService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		pharmRepo:   pharmRepo,
		medRepo:     medRepo,
		stockRepo:   stockRepo,
		rxRepo:      rxRepo,
		auditSvc:    auditSvc,
		collector:   collector,
		log:         log,
	}
}

// ResolvePharmacy returns the pharmacy owned by the given pharmacist user,
// provisioning a placeholder one on first access. The placeholder is named
// after the pharmacist and carries sentinel coordinates until the pharmacist
// fills in real details. Provisioning is idempotent under concurrency: the
// unique constraint on pharmacist_id makes the loser of a racing insert adopt
// the winner's row.
func (s *PharmacyService) ResolvePharmacy(ctx context.Context, userID uuid.UUID) (*pharmacy.Pharmacy, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if profile.PharmacyID != nil {
		p, err := s.pharmRepo.GetByID(ctx, *profile.PharmacyID)
		if err == nil {
			return p, nil
		}
		if err != pharmacy.ErrPharmacyNotFound {
			return nil, err
		}
		// Stale link; fall through and re-provision.
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	placeholder := &pharmacy.Pharmacy{
		Name:         placeholderPharmacyName(u),
		Address:      "N/A",
		IsActive:     true,
		PharmacistID: profile.ID,
	}

	p, err := s.pharmRepo.CreateForPharmacist(ctx, placeholder, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("provisioning pharmacy for pharmacist %s: %w", profile.ID, err)
	}
	if p.ID == placeholder.ID {
		s.collector.PharmaciesProvisioned.Inc()
		s.log.Info("pharmacy auto-provisioned",
			zap.String("pharmacy_id", p.ID.String()),
			zap.String("pharmacist_profile_id", profile.ID.String()))
	}
	return p, nil
}

func placeholderPharmacyName(u *domain.User) string {
	name := strings.TrimSpace(u.FullName())
	if name == "" {
		return "New Pharmacist Pharmacy"
	}
	return name + " Pharmacy"
}

// UpdatePharmacy applies a partial update to the caller's own pharmacy.
func (s *PharmacyService) UpdatePharmacy(ctx context.Context, userID uuid.UUID, cmd *pharmacy.UpdatePharmacyCommand) (*pharmacy.Pharmacy, error) {
	p, err := s.ResolvePharmacy(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := validatePharmacyUpdate(cmd); err != nil {
		return nil, err
	}

	updated, err := s.pharmRepo.Update(ctx, p.ID, cmd)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       userID,
		UserRole:     string(domain.RolePharmacist),
		Action:       string(domain.ActionUpdate),
		ResourceType: "pharmacy",
		ResourceID:   p.ID.String(),
	})
	return updated, nil
}

func validatePharmacyUpdate(cmd *pharmacy.UpdatePharmacyCommand) error {
	var fields []string
	if cmd.Name != nil && strings.TrimSpace(*cmd.Name) == "" {
		fields = append(fields, "name must not be empty")
	}
	if cmd.Latitude != nil && (*cmd.Latitude < -90 || *cmd.Latitude > 90) {
		fields = append(fields, "latitude must be between -90 and 90")
	}
	if cmd.Longitude != nil && (*cmd.Longitude < -180 || *cmd.Longitude > 180) {
		fields = append(fields, "longitude must be between -180 and 180")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Inventory returns the caller's full inventory: one row per stocked
// medicine, combining the persisted availability flag with live batch totals
// and the soonest expiry date.
func (s *PharmacyService) Inventory(ctx context.Context, userID uuid.UUID) ([]*pharmacy.InventoryItem, error) {
	p, err := s.ResolvePharmacy(ctx, userID)
	if err != nil {
		return nil, err
	}

	stocks, err := s.stockRepo.ListStock(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if len(stocks) == 0 {
		return []*pharmacy.InventoryItem{}, nil
	}

	medicineIDs := make([]uuid.UUID, 0, len(stocks))
	for _, st := range stocks {
		medicineIDs = append(medicineIDs, st.MedicineID)
	}

	medicines, err := s.medRepo.GetByIDs(ctx, medicineIDs)
	if err != nil {
		return nil, err
	}
	batches, err := s.stockRepo.ListBatches(ctx, p.ID, medicineIDs)
	if err != nil {
		return nil, err
	}

	totals := make(map[uuid.UUID]int, len(stocks))
	soonest := make(map[uuid.UUID]time.Time, len(stocks))
	for _, b := range batches {
		totals[b.MedicineID] += b.Quantity
		if cur, ok := soonest[b.MedicineID]; !ok || b.ExpiryDate.Before(cur) {
			soonest[b.MedicineID] = b.ExpiryDate
		}
	}

	items := make([]*pharmacy.InventoryItem, 0, len(stocks))
	for _, st := range stocks {
		item := &pharmacy.InventoryItem{
			StockID:       st.ID,
			MedicineID:    st.MedicineID,
			Status:        st.Status,
			TotalQuantity: totals[st.MedicineID],
		}
		if m, ok := medicines[st.MedicineID]; ok {
			item.Name = m.Name
			item.GenericName = m.GenericName
		}
		if exp, ok := soonest[st.MedicineID]; ok {
			expiry := exp
			item.SoonestExpiry = &expiry
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

// RecordBatch registers a new physical lot of a medicine for the caller's
// pharmacy. The stock availability flag is recomputed from batch totals
// inside the same transaction as the insert.
func (s *PharmacyService) RecordBatch(ctx context.Context, userID uuid.UUID, cmd *pharmacy.CreateBatchCommand) (*pharmacy.Batch, error) {
	if err := validateBatchCommand(cmd); err != nil {
		return nil, err
	}

	p, err := s.ResolvePharmacy(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.medRepo.GetByID(ctx, cmd.MedicineID); err != nil {
		return nil, err
	}

	b := &pharmacy.Batch{
		PharmacyID:  p.ID,
		MedicineID:  cmd.MedicineID,
		BatchNumber: strings.TrimSpace(cmd.BatchNumber),
		Quantity:    cmd.Quantity,
		ExpiryDate:  cmd.ExpiryDate,
	}
	if err := s.stockRepo.CreateBatch(ctx, b); err != nil {
		return nil, fmt.Errorf("recording batch: %w", err)
	}

	s.collector.BatchesRecorded.Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       userID,
		UserRole:     string(domain.RolePharmacist),
		Action:       string(domain.ActionCreate),
		ResourceType: "medicine_batch",
		ResourceID:   b.ID.String(),
	})
	return b, nil
}

func validateBatchCommand(cmd *pharmacy.CreateBatchCommand) error {
	if cmd.Quantity <= 0 {
		return pharmacy.ErrInvalidQuantity
	}
	if cmd.ExpiryDate.IsZero() {
		return pharmacy.ErrExpiryRequired
	}
	if strings.TrimSpace(cmd.BatchNumber) == "" {
		return pharmacy.ErrBatchNumberEmpty
	}
	return nil
}

// SetStockStatus lets the pharmacist override the availability flag of one
// stock entry. The entry must belong to the caller's pharmacy.
func (s *PharmacyService) SetStockStatus(ctx context.Context, userID uuid.UUID, stockID uuid.UUID, rawStatus string) error {
	status, err := pharmacy.ParseStockStatus(rawStatus)
	if err != nil {
		return err
	}

	p, err := s.ResolvePharmacy(ctx, userID)
	if err != nil {
		return err
	}

	st, err := s.stockRepo.GetStock(ctx, stockID)
	if err != nil {
		return err
	}
	if st.PharmacyID != p.ID {
		return ErrForbidden
	}

	if err := s.stockRepo.SetStockStatus(ctx, stockID, status); err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       userID,
		UserRole:     string(domain.RolePharmacist),
		Action:       string(domain.ActionUpdate),
		ResourceType: "stock",
		ResourceID:   stockID.String(),
		Changes:      fmt.Sprintf(`{"status":%q}`, status),
	})
	return nil
}

// Alerts builds the pharmacist dashboard view: stock entries flagged low or
// out of stock, plus batches expiring within the next thirty days ordered
// soonest first.
func (s *PharmacyService) Alerts(ctx context.Context, userID uuid.UUID) (*pharmacy.StockAlerts, error) {
	p, err := s.ResolvePharmacy(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	deadline := now.Add(expiryAlertWindow)

	lowStocks, err := s.stockRepo.ListLowStock(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	expiring, err := s.stockRepo.ListExpiringBatches(ctx, p.ID, deadline)
	if err != nil {
		return nil, err
	}

	medicineIDs := make([]uuid.UUID, 0, len(lowStocks)+len(expiring))
	for _, st := range lowStocks {
		medicineIDs = append(medicineIDs, st.MedicineID)
	}
	for _, b := range expiring {
		medicineIDs = append(medicineIDs, b.MedicineID)
	}

	medicines := map[uuid.UUID]*pharmacy.Medicine{}
	if len(medicineIDs) > 0 {
		medicines, err = s.medRepo.GetByIDs(ctx, medicineIDs)
		if err != nil {
			return nil, err
		}
	}

	alerts := &pharmacy.StockAlerts{
		LowStock:     make([]*pharmacy.InventoryItem, 0, len(lowStocks)),
		ExpiringSoon: make([]*pharmacy.ExpiringBatch, 0, len(expiring)),
		WindowEndsAt: deadline,
		GeneratedAt:  now,
	}
	for _, st := range lowStocks {
		item := &pharmacy.InventoryItem{
			StockID:    st.ID,
			MedicineID: st.MedicineID,
			Status:     st.Status,
		}
		if m, ok := medicines[st.MedicineID]; ok {
			item.Name = m.Name
			item.GenericName = m.GenericName
		}
		alerts.LowStock = append(alerts.LowStock, item)
	}
	for _, b := range expiring {
		eb := &pharmacy.ExpiringBatch{
			BatchID:     b.ID,
			MedicineID:  b.MedicineID,
			BatchNumber: b.BatchNumber,
			Quantity:    b.Quantity,
			ExpiryDate:  b.ExpiryDate,
		}
		if m, ok := medicines[b.MedicineID]; ok {
			eb.MedicineName = m.Name
		}
		alerts.ExpiringSoon = append(alerts.ExpiringSoon, eb)
	}
	return alerts, nil
}

// ListPrescriptions returns prescriptions addressed to the caller's
// pharmacy, newest first, optionally filtered by status.
func (s *PharmacyService) ListPrescriptions(ctx context.Context, userID uuid.UUID, rawStatus string, page, pageSize int) (*prescription.PagedPrescriptions, error) {
	p, err := s.ResolvePharmacy(ctx, userID)
	if err != nil {
		return nil, err
	}

	q := &prescription.ListPrescriptionsQuery{
		PharmacyID: &p.ID,
		Page:       page,
		PageSize:   pageSize,
	}
	if rawStatus != "" {
		status, err := prescription.ParseStatus(rawStatus)
		if err != nil {
			return nil, err
		}
		q.Status = &status
	}
	return s.rxRepo.List(ctx, q)
}

// DispensePrescription marks a prescription addressed to the caller's
// pharmacy as dispensed. Only the PENDING to DISPENSED transition is legal;
// dispensing twice or touching another pharmacy's prescription fails.
func (s *PharmacyService) DispensePrescription(ctx context.Context, userID uuid.UUID, prescriptionID uuid.UUID, rawStatus string) (*prescription.Prescription, error) {
	status, err := prescription.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	p, err := s.ResolvePharmacy(ctx, userID)
	if err != nil {
		return nil, err
	}

	rx, err := s.rxRepo.GetByID(ctx, prescriptionID)
	if err != nil {
		return nil, err
	}
	if rx.PharmacyID != p.ID {
		return nil, ErrForbidden
	}
	if !rx.CanTransitionTo(status) {
		return nil, prescription.ErrInvalidStatusTransition
	}

	if err := s.rxRepo.UpdateStatus(ctx, prescriptionID, status); err != nil {
		return nil, err
	}
	rx.Status = status

	s.collector.PrescriptionsDispensed.Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       userID,
		UserRole:     string(domain.RolePharmacist),
		Action:       string(domain.ActionUpdate),
		ResourceType: "prescription",
		ResourceID:   prescriptionID.String(),
		Changes:      fmt.Sprintf(`{"status":%q}`, status),
	})
	return rx, nil
}

// SearchNearby is the patient-facing pharmacy search. Pharmacies without
// configured coordinates never appear. When the caller supplies a location,
// results are limited to the radius (default 10 km) and sorted nearest
// first; otherwise all located active pharmacies are returned. A storage
// failure is reported as an error, never papered over with canned results.
func (s *PharmacyService) SearchNearby(ctx context.Context, q *pharmacy.NearbyQuery) ([]*pharmacy.NearbyPharmacy, error) {
	if (q.Latitude == nil) != (q.Longitude == nil) {
		return nil, &ValidationError{Fields: []string{"latitude and longitude must be supplied together"}}
	}

	rows, err := s.pharmRepo.ListActiveWithPharmacist(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing pharmacies: %w", err)
	}

	s.collector.ProximitySearches.Inc()

	radius := q.RadiusKm
	if radius <= 0 {
		radius = defaultSearchRadiusKm
	}

	results := make([]*pharmacy.NearbyPharmacy, 0, len(rows))
	for _, row := range rows {
		if row.Latitude == 0 && row.Longitude == 0 {
			continue
		}
		if q.Service != "" && !containsService(row.Services, q.Service) {
			continue
		}
		if q.Latitude != nil {
			d := geo.RoundKm(geo.HaversineKm(*q.Latitude, *q.Longitude, row.Latitude, row.Longitude))
			if d > radius {
				continue
			}
			dist := d
			row.DistanceKm = &dist
		}
		results = append(results, row)
	}

	if q.Latitude != nil {
		sort.Slice(results, func(i, j int) bool {
			return *results[i].DistanceKm < *results[j].DistanceKm
		})
	}
	return results, nil
}

func containsService(services []string, want string) bool {
	for _, s := range services {
		if strings.EqualFold(s, want) {
			return true
		}
	}
	return false
}
