package persistence

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/suite"

	"github.com/petrijr/intakeflow/internal/testutil"
)

type PostgresStoreSuite struct {
	suite.Suite
	db    *sql.DB
	store *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	db, err := sql.Open("pgx", testutil.PostgresDSN(s.T()))
	s.Require().NoError(err)
	s.db = db

	s.store, err = NewPostgresStore(db)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.db.Exec(`TRUNCATE intake_state`)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestContract() {
	runStorageContract(s.T(), s.store)
}

func (s *PostgresStoreSuite) TestSchemaInitIsIdempotent() {
	_, err := NewPostgresStore(s.db)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestAdapterCompletion() {
	ctx := context.Background()
	a := NewAdapter(s.store, "intake:")

	_, err := a.Load(ctx, "weight-loss")
	s.Require().NoError(err)
	s.Require().NoError(a.SaveCompletion(ctx, "weight-loss", true, "sub-42"))

	loaded, err := a.Load(ctx, "weight-loss")
	s.Require().NoError(err)
	s.True(loaded.State.IsSurveyCompleted)
	s.Equal("sub-42", loaded.State.SubmissionID)
}
