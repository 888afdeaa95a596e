package repositories

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"asikh-oms/models"

	"gorm.io/gorm"
)

type BatchRepository struct {
	DB *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{DB: db}
}

// NextBatchCode produces the next BATCH-YYYYMMDD-NNN code for the given day.
// The sequence restarts at 001 each day.
func (r *BatchRepository) NextBatchCode(now time.Time) (string, error) {
	dateStr := now.UTC().Format("20060102")
	prefix := fmt.Sprintf("BATCH-%s-", dateStr)

	var latest models.Batch
	err := r.DB.Where("batch_code LIKE ?", prefix+"%").
		Order("batch_code DESC").
		First(&latest).Error

	num := 1
	if err == nil {
		parts := strings.Split(latest.BatchCode, "-")
		if n, convErr := strconv.Atoi(parts[len(parts)-1]); convErr == nil {
			num = n + 1
		}
	} else if err != gorm.ErrRecordNotFound {
		return "", err
	}

	return fmt.Sprintf("%s%03d", prefix, num), nil
}

type ReconciliationStats struct {
	TotalCrates              int64   `json:"total_crates"`
	ReconciledCrates         int64   `json:"reconciled_crates"`
	MissingCrates            int64   `json:"missing_crates"`
	ReconciliationPercentage float64 `json:"reconciliation_percentage"`
	IsReconciliationComplete bool    `json:"is_reconciliation_complete"`
	TotalOriginalWeight      float64 `json:"total_original_weight"`
	TotalReconciledWeight    float64 `json:"total_reconciled_weight"`
	TotalWeightDifferential  float64 `json:"total_weight_differential"`
	WeightLossPercentage     float64 `json:"weight_loss_percentage"`
}

// GetReconciliationStats aggregates the packhouse-side scan results for a
// batch.
func (r *BatchRepository) GetReconciliationStats(batchID uint) (*ReconciliationStats, error) {
	stats := &ReconciliationStats{}

	if err := r.DB.Model(&models.Crate{}).
		Where("batch_id = ?", batchID).
		Count(&stats.TotalCrates).Error; err != nil {
		return nil, err
	}

	if err := r.DB.Model(&models.CrateReconciliation{}).
		Where("batch_id = ? AND is_reconciled = ?", batchID, true).
		Count(&stats.ReconciledCrates).Error; err != nil {
		return nil, err
	}

	var originalWeight, reconciledWeight, differential float64
	r.DB.Model(&models.Crate{}).
		Where("batch_id = ?", batchID).
		Select("COALESCE(SUM(weight), 0)").Scan(&originalWeight)
	r.DB.Model(&models.CrateReconciliation{}).
		Where("batch_id = ? AND is_reconciled = ?", batchID, true).
		Select("COALESCE(SUM(weight), 0)").Scan(&reconciledWeight)
	r.DB.Model(&models.CrateReconciliation{}).
		Where("batch_id = ? AND is_reconciled = ?", batchID, true).
		Select("COALESCE(SUM(weight_differential), 0)").Scan(&differential)

	stats.MissingCrates = stats.TotalCrates - stats.ReconciledCrates
	if stats.TotalCrates > 0 {
		stats.ReconciliationPercentage = round2(float64(stats.ReconciledCrates) / float64(stats.TotalCrates) * 100)
	}
	stats.IsReconciliationComplete = stats.TotalCrates > 0 && stats.ReconciledCrates == stats.TotalCrates
	stats.TotalOriginalWeight = round2(originalWeight)
	stats.TotalReconciledWeight = round2(reconciledWeight)
	stats.TotalWeightDifferential = round2(differential)
	if originalWeight > 0 {
		stats.WeightLossPercentage = round2(differential / originalWeight * 100)
	}

	return stats, nil
}

type CrateWeightDetail struct {
	CrateID            uint     `json:"crate_id"`
	QRCode             string   `json:"qr_code"`
	OriginalWeight     float64  `json:"original_weight"`
	ReconciledWeight   *float64 `json:"reconciled_weight"`
	WeightDifferential *float64 `json:"weight_differential"`
	IsReconciled       bool     `json:"is_reconciled"`
}

type BatchWeightDetails struct {
	BatchID                 uint                `json:"batch_id"`
	BatchCode               string              `json:"batch_code"`
	TotalOriginalWeight     float64             `json:"total_original_weight"`
	TotalReconciledWeight   float64             `json:"total_reconciled_weight"`
	TotalWeightDifferential float64             `json:"total_weight_differential"`
	WeightLossPercentage    float64             `json:"weight_loss_percentage"`
	CrateDetails            []CrateWeightDetail `json:"crate_details"`
}

// GetWeightDetails lists per-crate original vs reconciled weights for a
// batch.
func (r *BatchRepository) GetWeightDetails(batch *models.Batch) (*BatchWeightDetails, error) {
	var crates []models.Crate
	if err := r.DB.Where("batch_id = ?", batch.ID).Find(&crates).Error; err != nil {
		return nil, err
	}

	details := &BatchWeightDetails{
		BatchID:      batch.ID,
		BatchCode:    batch.BatchCode,
		CrateDetails: make([]CrateWeightDetail, 0, len(crates)),
	}

	for _, crate := range crates {
		detail := CrateWeightDetail{
			CrateID:        crate.ID,
			QRCode:         crate.QRCode,
			OriginalWeight: crate.Weight,
		}

		var rec models.CrateReconciliation
		err := r.DB.Where("batch_id = ? AND crate_id = ?", batch.ID, crate.ID).First(&rec).Error
		if err == nil {
			w := rec.Weight
			d := rec.WeightDifferential
			detail.ReconciledWeight = &w
			detail.WeightDifferential = &d
			detail.IsReconciled = true
			details.TotalReconciledWeight += w
			details.TotalWeightDifferential += d
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		}

		details.TotalOriginalWeight += crate.Weight
		details.CrateDetails = append(details.CrateDetails, detail)
	}

	if details.TotalOriginalWeight > 0 {
		details.WeightLossPercentage = round2(details.TotalWeightDifferential / details.TotalOriginalWeight * 100)
	}
	details.TotalOriginalWeight = round2(details.TotalOriginalWeight)
	details.TotalReconciledWeight = round2(details.TotalReconciledWeight)
	details.TotalWeightDifferential = round2(details.TotalWeightDifferential)

	return details, nil
}

type BatchStats struct {
	BatchID                  uint           `json:"batch_id"`
	BatchCode                string         `json:"batch_code"`
	Status                   string         `json:"status"`
	CreatedAt                time.Time      `json:"created_at"`
	DepartureTime            *time.Time     `json:"departure_time"`
	ArrivalTime              *time.Time     `json:"arrival_time"`
	TransitTimeMinutes       *float64       `json:"transit_time_minutes"`
	TotalCrates              int64          `json:"total_crates"`
	TotalWeight              float64        `json:"total_weight"`
	ReconciledCrates         int64          `json:"reconciled_crates"`
	ReconciliationPercentage float64        `json:"reconciliation_percentage"`
	IsFullyReconciled        bool           `json:"is_fully_reconciled"`
	VarietyDistribution      map[string]int `json:"variety_distribution"`
	GradeDistribution        map[string]int `json:"grade_distribution"`
}

// GetBatchStats reports crate counts, variety and grade distribution and
// transit timing for a batch.
func (r *BatchRepository) GetBatchStats(batch *models.Batch) (*BatchStats, error) {
	stats := &BatchStats{
		BatchID:             batch.ID,
		BatchCode:           batch.BatchCode,
		Status:              batch.Status,
		CreatedAt:           batch.CreatedAt,
		DepartureTime:       batch.DepartureTime,
		ArrivalTime:         batch.ArrivalTime,
		TotalWeight:         batch.TotalWeight,
		VarietyDistribution: map[string]int{},
		GradeDistribution:   map[string]int{},
	}

	if err := r.DB.Model(&models.Crate{}).
		Where("batch_id = ?", batch.ID).
		Count(&stats.TotalCrates).Error; err != nil {
		return nil, err
	}

	if err := r.DB.Model(&models.CrateReconciliation{}).
		Where("batch_id = ? AND is_reconciled = ?", batch.ID, true).
		Count(&stats.ReconciledCrates).Error; err != nil {
		return nil, err
	}

	if stats.TotalCrates > 0 {
		stats.ReconciliationPercentage = round2(float64(stats.ReconciledCrates) / float64(stats.TotalCrates) * 100)
		stats.IsFullyReconciled = stats.ReconciledCrates == stats.TotalCrates
	}

	if batch.DepartureTime != nil && batch.ArrivalTime != nil {
		minutes := batch.ArrivalTime.Sub(*batch.DepartureTime).Minutes()
		stats.TransitTimeMinutes = &minutes
	}

	type distRow struct {
		Key   string
		Count int
	}

	var varietyRows []distRow
	if err := r.DB.Model(&models.Crate{}).
		Select("varieties.name AS key, COUNT(crates.id) AS count").
		Joins("JOIN varieties ON varieties.id = crates.variety_id").
		Where("crates.batch_id = ?", batch.ID).
		Group("varieties.name").
		Scan(&varietyRows).Error; err != nil {
		return nil, err
	}
	for _, row := range varietyRows {
		stats.VarietyDistribution[row.Key] = row.Count
	}

	var gradeRows []distRow
	if err := r.DB.Model(&models.Crate{}).
		Select("quality_grade AS key, COUNT(id) AS count").
		Where("batch_id = ?", batch.ID).
		Group("quality_grade").
		Scan(&gradeRows).Error; err != nil {
		return nil, err
	}
	for _, row := range gradeRows {
		key := row.Key
		if key == "" {
			key = "Ungraded"
		}
		stats.GradeDistribution[key] = row.Count
	}

	return stats, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
