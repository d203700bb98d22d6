package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront/internal/db/dbtest"
	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/session"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testAdminPassword = "Password123"

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderPlaced
	err    error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, e events.OrderPlaced) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) published() []events.OrderPlaced {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.OrderPlaced(nil), p.events...)
}

type fixture struct {
	db       *gorm.DB
	mr       *miniredis.Miniredis
	rdb      *redis.Client
	sessions *session.Store
	admin    AdminAccount
	auth     *AuthService
	catalog  *CatalogService
	carts    *CartService
	checkout *CheckoutService
	pub      *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := dbtest.Open(t, true)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log, _ := logrustest.NewNullLogger()
	admin, err := NewAdminAccount(testAdminPassword)
	require.NoError(t, err)

	sessions := session.NewStore(rdb, time.Hour)
	catalog := NewCatalogService(gdb, rdb, time.Minute, log)
	carts := NewCartService(gdb, sessions, catalog, log)
	pub := &recordingPublisher{}
	return &fixture{
		db:       gdb,
		mr:       mr,
		rdb:      rdb,
		sessions: sessions,
		admin:    admin,
		auth:     NewAuthService(gdb, admin, log),
		catalog:  catalog,
		carts:    carts,
		checkout: NewCheckoutService(gdb, carts, rdb, pub, log),
		pub:      pub,
	}
}

func (f *fixture) startSession(t *testing.T, p domain.Principal) session.Session {
	t.Helper()
	sid, err := f.sessions.Create(context.Background(), p)
	require.NoError(t, err)
	return session.Session{ID: sid, Principal: p}
}

func (f *fixture) adminSession(t *testing.T) session.Session {
	t.Helper()
	p, err := f.auth.Login(context.Background(), AdminEmail, testAdminPassword)
	require.NoError(t, err)
	return f.startSession(t, p)
}

func (f *fixture) userSession(t *testing.T, email string) session.Session {
	t.Helper()
	ctx := context.Background()
	_, err := f.auth.Register(ctx, RegisterInput{Email: email, Password: "secret-pass", Name: "Test User"})
	require.NoError(t, err)
	p, err := f.auth.Login(ctx, email, "secret-pass")
	require.NoError(t, err)
	return f.startSession(t, p)
}

// brokenDB returns a MySQL-dialect gorm handle whose first query fails with
// a driver error. Any further statement is unexpected and fails as well.
func brokenDB(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection refused"))

	gdb, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gdb
}
