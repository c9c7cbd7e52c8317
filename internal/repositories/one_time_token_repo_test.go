package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"bizgate/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type OneTimeTokenRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    OneTimeTokenRepository
	userID  uuid.UUID
	context context.Context
}

func (suite *OneTimeTokenRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewOneTimeTokenRepo(mock)
	suite.userID = uuid.New()
	suite.context = context.Background()
}

func (suite *OneTimeTokenRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestOneTimeTokenRepoTestSuite(t *testing.T) {
	suite.Run(t, new(OneTimeTokenRepoTestSuite))
}

func (suite *OneTimeTokenRepoTestSuite) TestCreate_Success() {
	token := &models.OneTimeToken{
		ID:        uuid.New(),
		UserID:    suite.userID,
		Purpose:   models.OneTimeTokenPurposeReset,
		TokenHash: "abc123",
		ExpiresAt: time.Now().Add(2 * time.Hour),
	}

	suite.mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO one_time_tokens (id, user_id, purpose, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`)).WithArgs(token.ID, token.UserID, token.Purpose, token.TokenHash, token.ExpiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, token)
	assert.NoError(suite.T(), err)
}

func (suite *OneTimeTokenRepoTestSuite) TestConsume_Success() {
	id := uuid.New()
	expiresAt := time.Now().Add(time.Hour)
	usedAt := time.Now()
	createdAt := time.Now().Add(-time.Hour)

	rows := pgxmock.NewRows([]string{"id", "user_id", "purpose", "token_hash", "expires_at", "used_at", "created_at"}).
		AddRow(id, suite.userID, models.OneTimeTokenPurposeReset, "abc123", expiresAt, &usedAt, createdAt)

	suite.mock.ExpectQuery(regexp.QuoteMeta(`
		UPDATE one_time_tokens
		SET used_at = NOW()
		WHERE token_hash = $1 AND purpose = $2 AND used_at IS NULL AND expires_at > NOW()
		RETURNING id, user_id, purpose, token_hash, expires_at, used_at, created_at
	`)).WithArgs("abc123", models.OneTimeTokenPurposeReset).WillReturnRows(rows)

	token, err := suite.repo.Consume(suite.context, "abc123", models.OneTimeTokenPurposeReset)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), token)
	assert.Equal(suite.T(), suite.userID, token.UserID)
	assert.NotNil(suite.T(), token.UsedAt)
}

func (suite *OneTimeTokenRepoTestSuite) TestConsume_AlreadyUsedReturnsNil() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`
		UPDATE one_time_tokens
		SET used_at = NOW()
		WHERE token_hash = $1 AND purpose = $2 AND used_at IS NULL AND expires_at > NOW()
		RETURNING id, user_id, purpose, token_hash, expires_at, used_at, created_at
	`)).WithArgs("abc123", models.OneTimeTokenPurposeReset).WillReturnError(pgx.ErrNoRows)

	token, err := suite.repo.Consume(suite.context, "abc123", models.OneTimeTokenPurposeReset)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), token)
}

func (suite *OneTimeTokenRepoTestSuite) TestConsume_WrongPurposeReturnsNil() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`
		UPDATE one_time_tokens
		SET used_at = NOW()
		WHERE token_hash = $1 AND purpose = $2 AND used_at IS NULL AND expires_at > NOW()
		RETURNING id, user_id, purpose, token_hash, expires_at, used_at, created_at
	`)).WithArgs("abc123", models.OneTimeTokenPurposeVerification).WillReturnError(pgx.ErrNoRows)

	token, err := suite.repo.Consume(suite.context, "abc123", models.OneTimeTokenPurposeVerification)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), token)
}

func (suite *OneTimeTokenRepoTestSuite) TestDeleteExpired() {
	cutoff := time.Now().Add(-24 * time.Hour)

	suite.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM one_time_tokens WHERE expires_at < $1`)).
		WithArgs(cutoff).WillReturnResult(pgxmock.NewResult("DELETE", 2))

	deleted, err := suite.repo.DeleteExpired(suite.context, cutoff)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), deleted)
}
