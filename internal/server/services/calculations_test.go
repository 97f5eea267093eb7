package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"

	"github.com/calcpay/server/internal/common"
	"github.com/calcpay/server/internal/server/models"
)

// fakeCalculationsRepo keeps saved calculations in insertion order and
// returns them newest first, like the real repository does.
type fakeCalculationsRepo struct {
	saved     []*models.Calculation
	createErr error
	listErr   error
	nextID    int
}

func (f *fakeCalculationsRepo) Create(ctx context.Context, calc *models.Calculation) (*models.Calculation, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	calc.ID = "calc-" + string(rune('0'+f.nextID))
	calc.CreatedAt = time.Now().Add(time.Duration(f.nextID) * time.Millisecond)
	f.saved = append(f.saved, calc)
	return calc, nil
}

func (f *fakeCalculationsRepo) ListByAccount(ctx context.Context, accountID string) ([]*models.Calculation, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.Calculation
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].AccountID == accountID {
			out = append(out, f.saved[i])
		}
	}
	return out, nil
}

func newCalculationServiceFixture(t *testing.T) (*CalculationService, *fakeCalculationsRepo) {
	t.Helper()

	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := &fakeCalculationsRepo{}
	svc := NewCalculationService(db, &fakeRepoManager{calculations: repo})
	return svc, repo
}

func TestCalculationSave_Success(t *testing.T) {
	svc, repo := newCalculationServiceFixture(t)

	details := json.RawMessage(`{"gross":5000,"rate":0.2}`)
	calc, err := svc.Save(context.Background(), "acc-1", decimal.NewFromInt(4000), details)
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}

	if calc.ID == "" || calc.CreatedAt.IsZero() {
		t.Fatalf("expected repository-assigned id and timestamp: %+v", calc)
	}
	if len(repo.saved) != 1 || repo.saved[0].AccountID != "acc-1" {
		t.Fatalf("calculation not persisted: %+v", repo.saved)
	}
	if !repo.saved[0].Total.Equal(decimal.NewFromInt(4000)) {
		t.Fatalf("unexpected total: %s", repo.saved[0].Total)
	}
}

func TestCalculationSave_RequiresAccount(t *testing.T) {
	svc, _ := newCalculationServiceFixture(t)

	_, err := svc.Save(context.Background(), "", decimal.NewFromInt(1), json.RawMessage(`{}`))
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want common.ErrorUnauthorized, got %v", err)
	}
}

func TestCalculationSave_Validation(t *testing.T) {
	svc, repo := newCalculationServiceFixture(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		total   decimal.Decimal
		details json.RawMessage
	}{
		{"zero total", decimal.Zero, json.RawMessage(`{"gross":0}`)},
		{"missing details", decimal.NewFromInt(100), nil},
		{"malformed details", decimal.NewFromInt(100), json.RawMessage(`{"gross":`)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Save(ctx, "acc-1", tc.total, tc.details)
			if !errors.Is(err, common.ErrorValidation) {
				t.Fatalf("want common.ErrorValidation, got %v", err)
			}
		})
	}

	if len(repo.saved) != 0 {
		t.Fatal("invalid calculations must not be persisted")
	}
}

func TestCalculationSave_RepositoryError(t *testing.T) {
	svc, repo := newCalculationServiceFixture(t)
	repo.createErr = errors.New("db down")

	_, err := svc.Save(context.Background(), "acc-1", decimal.NewFromInt(1), json.RawMessage(`{}`))
	if !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("want common.ErrorInternal, got %v", err)
	}
}

func TestCalculationList_NewestFirstPerAccount(t *testing.T) {
	svc, _ := newCalculationServiceFixture(t)
	ctx := context.Background()

	for i, accountID := range []string{"acc-1", "acc-2", "acc-1"} {
		details := json.RawMessage(`{"n":` + string(rune('0'+i)) + `}`)
		if _, err := svc.Save(ctx, accountID, decimal.NewFromInt(int64(i+1)), details); err != nil {
			t.Fatalf("Save error: %v", err)
		}
	}

	list, err := svc.List(ctx, "acc-1")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 calculations for acc-1, got %d", len(list))
	}
	if !list[0].CreatedAt.After(list[1].CreatedAt) {
		t.Fatal("calculations must be ordered newest first")
	}
}

func TestCalculationList_EmptyHistory(t *testing.T) {
	svc, _ := newCalculationServiceFixture(t)

	list, err := svc.List(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty history, got %d", len(list))
	}
}

func TestCalculationList_RequiresAccount(t *testing.T) {
	svc, _ := newCalculationServiceFixture(t)

	_, err := svc.List(context.Background(), "")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want common.ErrorUnauthorized, got %v", err)
	}
}
