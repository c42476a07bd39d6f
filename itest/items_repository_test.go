//go:build integration

package itest

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/architeacher/items/internal/adapters/repos"
	"github.com/architeacher/items/internal/config"
	"github.com/architeacher/items/internal/domain/model"
	infraPostgres "github.com/architeacher/items/internal/infrastructure/postgres"
	"github.com/architeacher/items/pkg/logger"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage    = "postgres:18-alpine"
	postgresDatabase = "items_test"
	postgresUsername = "test"
	postgresPassword = "test"
)

type ItemsRepositoryIntegrationTestSuite struct {
	suite.Suite
	suiteCtx    context.Context
	suiteCancel context.CancelFunc
	container   *postgres.PostgresContainer
	connector   *infraPostgres.Connector
	pool        infraPostgres.Pool
	repo        *repos.ItemsRepository
}

func TestItemsRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	suite.Run(t, new(ItemsRepositoryIntegrationTestSuite))
}

func (s *ItemsRepositoryIntegrationTestSuite) SetupSuite() {
	s.suiteCtx, s.suiteCancel = context.WithTimeout(context.Background(), 5*time.Minute)

	container, err := postgres.Run(s.suiteCtx,
		postgresImage,
		postgres.WithDatabase(postgresDatabase),
		postgres.WithUsername(postgresUsername),
		postgres.WithPassword(postgresPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	host, err := container.Host(s.suiteCtx)
	s.Require().NoError(err)

	port, err := container.MappedPort(s.suiteCtx, "5432/tcp")
	s.Require().NoError(err)

	portNumber, err := strconv.ParseUint(port.Port(), 10, 64)
	s.Require().NoError(err)

	log := logger.NewTestLogger()

	s.connector = infraPostgres.NewConnector(config.Database{
		Host:            host,
		Port:            uint(portNumber),
		Database:        postgresDatabase,
		Username:        postgresUsername,
		Password:        postgresPassword,
		SSLMode:         "disable",
		MaxConnections:  4,
		ConnectTimeout:  5 * time.Second,
		ProbeTimeout:    time.Second,
		ConnectAttempts: 5,
		ConnectDelay:    time.Second,
	}, log)

	s.pool, err = s.connector.Connect(s.suiteCtx)
	s.Require().NoError(err)

	s.repo = repos.NewItemsRepository(repos.StaticPool(s.pool), repos.NewPgxScanner(), log)
	s.Require().NoError(s.repo.EnsureSchema(s.suiteCtx))

	// A second run must be a no-op.
	s.Require().NoError(s.repo.EnsureSchema(s.suiteCtx))
}

func (s *ItemsRepositoryIntegrationTestSuite) TearDownSuite() {
	if s.connector != nil {
		s.connector.Close()
	}

	if s.container != nil {
		_ = s.container.Terminate(s.suiteCtx)
	}

	if s.suiteCancel != nil {
		s.suiteCancel()
	}
}

func (s *ItemsRepositoryIntegrationTestSuite) SetupTest() {
	_, err := s.pool.Exec(s.T().Context(), "TRUNCATE TABLE items RESTART IDENTITY")
	s.Require().NoError(err)
}

func (s *ItemsRepositoryIntegrationTestSuite) create(name string, description *string) *model.Item {
	fields, err := model.NewItemFields(name, description)
	s.Require().NoError(err)

	item, err := s.repo.Create(s.T().Context(), fields)
	s.Require().NoError(err)

	return item
}

func (s *ItemsRepositoryIntegrationTestSuite) TestCreateAndFetch() {
	description := "14 inch"
	created := s.create("Laptop", &description)

	s.Require().Equal(model.ItemID(1), created.ID)
	s.Require().False(created.CreatedAt.IsZero())

	fetched, err := s.repo.FetchByID(s.T().Context(), created.ID)
	s.Require().NoError(err)
	s.Require().Equal("Laptop", fetched.Name)
	s.Require().Equal(&description, fetched.Description)
}

func (s *ItemsRepositoryIntegrationTestSuite) TestEmptyDescriptionIsStoredAsNull() {
	empty := ""
	created := s.create("Mouse", &empty)

	fetched, err := s.repo.FetchByID(s.T().Context(), created.ID)
	s.Require().NoError(err)
	s.Require().Nil(fetched.Description)
}

func (s *ItemsRepositoryIntegrationTestSuite) TestListNewestFirst() {
	s.create("first", nil)
	s.create("second", nil)
	s.create("third", nil)

	items, err := s.repo.List(s.T().Context())
	s.Require().NoError(err)
	s.Require().Len(items, 3)
	s.Require().Equal("third", items[0].Name)
	s.Require().Equal("first", items[2].Name)
}

func (s *ItemsRepositoryIntegrationTestSuite) TestUpdateTouchesUpdatedAt() {
	created := s.create("Laptop", nil)

	name := "Laptop Pro"
	fields, err := model.NewItemFields(name, nil)
	s.Require().NoError(err)

	updated, err := s.repo.Update(s.T().Context(), created.ID, fields)
	s.Require().NoError(err)
	s.Require().Equal("Laptop Pro", updated.Name)
	s.Require().True(!updated.UpdatedAt.Before(created.UpdatedAt))
	s.Require().Equal(created.CreatedAt.Unix(), updated.CreatedAt.Unix())

	missing, err := s.repo.Update(s.T().Context(), 999, fields)
	s.Require().NoError(err)
	s.Require().Nil(missing)
}

func (s *ItemsRepositoryIntegrationTestSuite) TestDelete() {
	created := s.create("Laptop", nil)

	deleted, err := s.repo.Delete(s.T().Context(), created.ID)
	s.Require().NoError(err)
	s.Require().True(deleted)

	deleted, err = s.repo.Delete(s.T().Context(), created.ID)
	s.Require().NoError(err)
	s.Require().False(deleted)

	fetched, err := s.repo.FetchByID(s.T().Context(), created.ID)
	s.Require().NoError(err)
	s.Require().Nil(fetched)
}

func (s *ItemsRepositoryIntegrationTestSuite) TestProbeFollowsLivePool() {
	s.Require().True(s.connector.Probe(s.T().Context()))
	s.Require().Equal(model.ConnectionStatusConnected, s.connector.Status())
}
