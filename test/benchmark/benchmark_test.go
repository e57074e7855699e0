package benchmark

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fieldservice-timesheet-api/internal/csvio"
	"github.com/fieldservice-timesheet-api/internal/mocks"
	"github.com/fieldservice-timesheet-api/internal/models"
	"github.com/fieldservice-timesheet-api/internal/reconcile"
)

// buildMissionCSV renders a realistic upload with n data rows
func buildMissionCSV(n int) string {
	var b strings.Builder
	b.WriteString("Date;Affaire;Technicien;Heures Travail;Route;Description\n")
	for i := 0; i < n; i++ {
		day := i%28 + 1
		fmt.Fprintf(&b, "%02d/03/2024;AG A25-%04d;tech%03d;7,5;1;Intervention site %d\n",
			day, i, i%50, i)
	}
	return b.String()
}

// BenchmarkParse benchmarks the delimiter-sensitive tokenizer
func BenchmarkParse(b *testing.B) {
	text := buildMissionCSV(1000)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		rows := csvio.Parse(text)
		if len(rows) != 1001 {
			b.Fatalf("expected 1001 rows, got %d", len(rows))
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkReconcileMissions benchmarks row-to-record conversion
func BenchmarkReconcileMissions(b *testing.B) {
	rows := csvio.Parse(buildMissionCSV(1000))
	cols, err := reconcile.ResolveMissionColumns(rows[0])
	if err != nil {
		b.Fatalf("column resolution failed: %v", err)
	}
	data := rows[1:]

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		result := reconcile.Missions(data, cols)
		if len(result.Missions) != 1000 {
			b.Fatalf("expected 1000 missions, got %d", len(result.Missions))
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkStreamMissions benchmarks streaming reads for export
func BenchmarkStreamMissions(b *testing.B) {
	mockRepo := mocks.NewMockMissionRepository()
	for i := 0; i < 1000; i++ {
		mockRepo.Upsert(context.Background(), &models.Mission{
			ID:           fmt.Sprintf("m-%04d", i),
			Date:         time.Date(2024, 3, i%28+1, 0, 0, 0, 0, time.UTC),
			JobCode:      fmt.Sprintf("AG A25-%04d", i),
			WorkHours:    7.5,
			Status:       models.StatusSubmitted,
			TechnicianID: fmt.Sprintf("tech%03d", i%50),
		})
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		count := 0
		mockRepo.StreamAll(context.Background(), func(m *models.Mission) error {
			count++
			return nil
		})
		if count != 1000 {
			b.Fatalf("expected 1000 streamed, got %d", count)
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkUpsertBatch benchmarks batch writes
func BenchmarkUpsertBatch(b *testing.B) {
	missions := make([]*models.Mission, 1000)
	for i := range missions {
		missions[i] = &models.Mission{
			ID:           fmt.Sprintf("m-%04d", i),
			Date:         time.Date(2024, 3, i%28+1, 0, 0, 0, 0, time.UTC),
			JobCode:      fmt.Sprintf("AG A25-%04d", i),
			WorkHours:    7.5,
			Status:       models.StatusSubmitted,
			TechnicianID: fmt.Sprintf("tech%03d", i%50),
		}
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		mockRepo := mocks.NewMockMissionRepository()
		inserted, err := mockRepo.UpsertBatch(context.Background(), missions)
		if err != nil || inserted != 1000 {
			b.Fatalf("batch insert: inserted=%d err=%v", inserted, err)
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}
