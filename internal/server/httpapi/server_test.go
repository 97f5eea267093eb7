package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"

	"github.com/calcpay/server/internal/common"
	"github.com/calcpay/server/internal/dbx"
	"github.com/calcpay/server/internal/logging"
	"github.com/calcpay/server/internal/server/config"
	"github.com/calcpay/server/internal/server/models"
	accountsrepo "github.com/calcpay/server/internal/server/repositories/accounts"
	calculationsrepo "github.com/calcpay/server/internal/server/repositories/calculations"
	"github.com/calcpay/server/internal/server/password"
	"github.com/calcpay/server/internal/server/services"
)

const testSecret = "test-secret"

// in-memory repository fakes

type memAccountsRepo struct {
	byEmail map[string]*models.Account
	nextID  int
}

func (f *memAccountsRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if _, ok := f.byEmail[a.Email]; ok {
		return nil, common.ErrorDuplicateEmail
	}
	f.nextID++
	a.ID = "acc-" + string(rune('0'+f.nextID))
	a.CreatedAt = time.Now()
	f.byEmail[a.Email] = a
	return a, nil
}

func (f *memAccountsRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	a, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (f *memAccountsRepo) GetByResetToken(ctx context.Context, token string, now time.Time) (*models.Account, error) {
	for _, a := range f.byEmail {
		if a.ResetToken != nil && *a.ResetToken == token &&
			a.ResetTokenExpiresAt != nil && a.ResetTokenExpiresAt.After(now) {
			return a, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *memAccountsRepo) MarkVerified(ctx context.Context, id string) error {
	for _, a := range f.byEmail {
		if a.ID == id {
			a.IsVerified = true
			a.VerificationCode = nil
			a.VerificationCodeExpiresAt = nil
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *memAccountsRepo) SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	for _, a := range f.byEmail {
		if a.ID == id {
			a.ResetToken = &token
			a.ResetTokenExpiresAt = &expiresAt
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *memAccountsRepo) ClearResetToken(ctx context.Context, id string) error {
	for _, a := range f.byEmail {
		if a.ID == id {
			a.ResetToken = nil
			a.ResetTokenExpiresAt = nil
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *memAccountsRepo) UpdatePassword(ctx context.Context, id, newHash string) error {
	for _, a := range f.byEmail {
		if a.ID == id {
			a.PasswordHash = newHash
			a.ResetToken = nil
			a.ResetTokenExpiresAt = nil
			return nil
		}
	}
	return common.ErrorNotFound
}

type memCalculationsRepo struct {
	saved  []*models.Calculation
	nextID int
}

func (f *memCalculationsRepo) Create(ctx context.Context, calc *models.Calculation) (*models.Calculation, error) {
	f.nextID++
	calc.ID = "calc-" + string(rune('0'+f.nextID))
	calc.CreatedAt = time.Now().Add(time.Duration(f.nextID) * time.Millisecond)
	f.saved = append(f.saved, calc)
	return calc, nil
}

func (f *memCalculationsRepo) ListByAccount(ctx context.Context, accountID string) ([]*models.Calculation, error) {
	var out []*models.Calculation
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].AccountID == accountID {
			out = append(out, f.saved[i])
		}
	}
	return out, nil
}

type memRepoManager struct {
	accounts     *memAccountsRepo
	calculations *memCalculationsRepo
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepoManager) Accounts(db dbx.DBTX) accountsrepo.Repository { return m.accounts }
func (m *memRepoManager) Calculations(db dbx.DBTX) calculationsrepo.Repository {
	return m.calculations
}

type recordingNotifier struct {
	sent []string // message bodies
}

func (n *recordingNotifier) Send(ctx context.Context, to, subject, body string) (string, error) {
	n.sent = append(n.sent, body)
	return "msg-1", nil
}

type apiFixture struct {
	handler  http.Handler
	accounts *memAccountsRepo
	notifier *recordingNotifier
	mock     sqlmock.Sqlmock
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		SecretKey:            testSecret,
		SessionTokenValidity: time.Hour,
		ResetTokenValidity:   time.Hour,
		PublicBaseURL:        "http://localhost:3000",
	}

	accounts := &memAccountsRepo{byEmail: map[string]*models.Account{}}
	calculations := &memCalculationsRepo{}
	m := &memRepoManager{accounts: accounts, calculations: calculations}
	notifier := &recordingNotifier{}
	logger := logging.NewZapLogger(zap.NewNop())
	hasher := password.NewBcryptHasher(4)

	as := services.NewAccountService(db, m, hasher, notifier, logger, cfg)
	cs := services.NewCalculationService(db, m)

	srv, err := NewHTTPServer(":0", logger, as, cs, testSecret, "")
	if err != nil {
		t.Fatalf("NewHTTPServer error: %v", err)
	}

	return &apiFixture{handler: srv.routes(), accounts: accounts, notifier: notifier, mock: mock}
}

// postJSON performs a request against the router and decodes the standard
// message response.
func (f *apiFixture) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, messageResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var resp messageResponse
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	}
	return rec, resp
}

func (f *apiFixture) registerVerified(t *testing.T, email, pw string) {
	t.Helper()

	rec, _ := f.do(t, http.MethodPost, "/api/register", "", registerRequest{
		FirstName: "Ana", LastName: "Borges", Email: email, Password: pw, ConfirmPassword: pw,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body)
	}

	code := *f.accounts.byEmail[email].VerificationCode
	rec, _ = f.do(t, http.MethodPost, "/api/verify", "", verifyRequest{Email: email, Code: code})
	if rec.Code != http.StatusOK {
		t.Fatalf("verify status = %d, body %s", rec.Code, rec.Body)
	}
}

func (f *apiFixture) login(t *testing.T, email, pw string) string {
	t.Helper()

	rec, resp := f.do(t, http.MethodPost, "/api/login", "", loginRequest{Email: email, Password: pw})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body)
	}
	if resp.Token == "" {
		t.Fatal("login response carries no token")
	}
	return resp.Token
}
