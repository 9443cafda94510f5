package services

import (
	"context"
	"sync"
	"testing"

	"github.com/epeers/portfolio-optimizer/internal/models"
)

func TestWarningCollector_BasicUsage(t *testing.T) {
	ctx, wc := NewWarningContext(context.Background())

	AddWarning(ctx, models.Warning{
		Code:    models.WarnPartialDataDropped,
		Message: "test warning 1",
	})
	AddWarningf(ctx, models.WarnPeriodTruncated, "test warning %d", 2)

	warnings := wc.GetWarnings()
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(warnings))
	}

	if warnings[0].Code != models.WarnPartialDataDropped {
		t.Errorf("expected code %s, got %s", models.WarnPartialDataDropped, warnings[0].Code)
	}
	if warnings[1].Code != models.WarnPeriodTruncated {
		t.Errorf("expected code %s, got %s", models.WarnPeriodTruncated, warnings[1].Code)
	}
	if warnings[1].Message != "test warning 2" {
		t.Errorf("expected formatted message, got %q", warnings[1].Message)
	}
}

func TestWarningCollector_NoCollectorNoPanic(t *testing.T) {
	// AddWarning with a plain context should not panic
	AddWarning(context.Background(), models.Warning{
		Code:    models.WarnPartialDataDropped,
		Message: "this should be silently dropped",
	})
}

func TestWarningCollector_EmptyByDefault(t *testing.T) {
	_, wc := NewWarningContext(context.Background())
	warnings := wc.GetWarnings()
	if len(warnings) != 0 {
		t.Errorf("expected 0 warnings, got %d", len(warnings))
	}
}

func TestWarningCollector_ConcurrentSafe(t *testing.T) {
	ctx, wc := NewWarningContext(context.Background())

	var wg sync.WaitGroup
	n := 100
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			AddWarning(ctx, models.Warning{
				Code:    models.WarnPeriodTruncated,
				Message: "concurrent warning",
			})
		}()
	}
	wg.Wait()

	warnings := wc.GetWarnings()
	if len(warnings) != n {
		t.Errorf("expected %d warnings, got %d", n, len(warnings))
	}
}

func hasWarning(warnings []models.Warning, code models.WarningCode) bool {
	for _, w := range warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
