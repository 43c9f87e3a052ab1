//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"mikvah-scheduler/cmd/bootstrap"
	"mikvah-scheduler/cmd/bootstrap/components"
	"mikvah-scheduler/internal/pkg/config"
	"mikvah-scheduler/tests/common/dbtest"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/fx"
)

// FakeGateway answers the two payment endpoints the booking engine calls.
type FakeGateway struct {
	URL     string
	Charges atomic.Int32
	Refunds atomic.Int32
	Decline atomic.Bool
}

func newFakeGateway(t *testing.T) *FakeGateway {
	t.Helper()
	g := &FakeGateway{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/charges", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if g.Decline.Load() {
			w.WriteHeader(http.StatusPaymentRequired)
			_, _ = w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
			return
		}
		_, _ = fmt.Fprintf(w, `{"id":"ch_e2e_%d"}`, g.Charges.Add(1))
	})
	mux.HandleFunc("POST /v1/refunds", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"id":"re_e2e_%d"}`, g.Refunds.Add(1))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	g.URL = srv.URL
	return g
}

func (g *FakeGateway) Reset() {
	g.Charges.Store(0)
	g.Refunds.Store(0)
	g.Decline.Store(false)
}

// Env is one fully wired application over a private database, an in-memory
// Redis and the fake gateway. The background scheduler stays disabled; tests
// seed hours and slots themselves.
type Env struct {
	Router  *gin.Engine
	DB      *pgxpool.Pool
	Redis   *miniredis.Miniredis
	Config  config.Config
	Gateway *FakeGateway
}

func newEnv(t *testing.T) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pool, dbCfg := freshDatabase(t)
	env := &Env{
		DB:      pool,
		Redis:   miniredis.RunT(t),
		Gateway: newFakeGateway(t),
	}

	cfg := config.NewTestConfig()
	cfg.DB = dbCfg
	cfg.Payment.BaseURL = env.Gateway.URL
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = env.Redis.Addr()
	cfg.Metrics.Enabled = true

	app := fx.New(
		fx.Supply(cfg, pool),
		fx.Provide(bootstrap.NewLocation),
		fx.Provide(func() *gin.Engine { return gin.New() }),
		bootstrap.LoggerModule,
		bootstrap.JWTModule,
		components.PersistenceModule,
		components.InfraModule,
		components.UseCaseModule,
		components.HandlerModule,
		bootstrap.SchedulerModule,
		fx.Populate(&env.Router, &env.Config),
		fx.NopLogger,
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, app.Start(startCtx), "fxアプリケーションの起動に失敗")
	t.Cleanup(func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		_ = app.Stop(stopCtx)
	})
	return env
}

// SharedSuite gives every subtest an empty schema, an empty cache and a
// gateway that approves charges.
type SharedSuite struct {
	suite.Suite
	*Env
}

func (s *SharedSuite) SetupSuite() {
	s.Env = newEnv(s.T())
}

func (s *SharedSuite) SetupSubTest() {
	require.NoError(s.T(), dbtest.ResetDB(s.DB), "Failed to reset database state")
	s.Redis.FlushAll()
	s.Gateway.Reset()
}
