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

type RefreshTokenRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    RefreshTokenRepository
	userID  uuid.UUID
	context context.Context
}

func (suite *RefreshTokenRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewRefreshTokenRepo(mock)
	suite.userID = uuid.New()
	suite.context = context.Background()
}

func (suite *RefreshTokenRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestRefreshTokenRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RefreshTokenRepoTestSuite))
}

func (suite *RefreshTokenRepoTestSuite) TestCreate_Success() {
	tenantID := uuid.New()
	deviceID := "device-1"
	token := &models.RefreshToken{
		ID:        uuid.New(),
		UserID:    suite.userID,
		TenantID:  &tenantID,
		DeviceID:  &deviceID,
		TokenHash: "abc123",
		ExpiresAt: time.Now().Add(720 * time.Hour),
	}

	suite.mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO refresh_tokens (id, user_id, tenant_id, device_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`)).WithArgs(token.ID, token.UserID, token.TenantID, token.DeviceID, token.TokenHash, token.ExpiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, token)
	assert.NoError(suite.T(), err)
}

func (suite *RefreshTokenRepoTestSuite) TestGetByUserAndHash_Found() {
	id := uuid.New()
	tenantID := uuid.New()
	deviceID := "device-1"
	expiresAt := time.Now().Add(time.Hour)
	createdAt := time.Now().Add(-time.Hour)

	rows := pgxmock.NewRows([]string{"id", "user_id", "tenant_id", "device_id", "token_hash", "expires_at", "revoked_at", "replaced_by_hash", "created_at"}).
		AddRow(id, suite.userID, &tenantID, &deviceID, "abc123", expiresAt, (*time.Time)(nil), (*string)(nil), createdAt)

	suite.mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, user_id, tenant_id, device_id, token_hash, expires_at, revoked_at, replaced_by_hash, created_at
		FROM refresh_tokens
		WHERE user_id = $1 AND token_hash = $2
	`)).WithArgs(suite.userID, "abc123").WillReturnRows(rows)

	token, err := suite.repo.GetByUserAndHash(suite.context, suite.userID, "abc123")
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), token)
	assert.Equal(suite.T(), id, token.ID)
	assert.False(suite.T(), token.IsRevoked())
	assert.False(suite.T(), token.IsExpired(time.Now()))
}

func (suite *RefreshTokenRepoTestSuite) TestGetByUserAndHash_NotFound() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, user_id, tenant_id, device_id, token_hash, expires_at, revoked_at, replaced_by_hash, created_at
		FROM refresh_tokens
		WHERE user_id = $1 AND token_hash = $2
	`)).WithArgs(suite.userID, "missing").WillReturnError(pgx.ErrNoRows)

	token, err := suite.repo.GetByUserAndHash(suite.context, suite.userID, "missing")
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), token)
}

func (suite *RefreshTokenRepoTestSuite) TestRevoke_Claimed() {
	id := uuid.New()
	newHash := "next456"

	suite.mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE refresh_tokens
		SET revoked_at = NOW(), replaced_by_hash = $2
		WHERE id = $1 AND revoked_at IS NULL
	`)).WithArgs(id, &newHash).WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	claimed, err := suite.repo.Revoke(suite.context, id, &newHash)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), claimed)
}

func (suite *RefreshTokenRepoTestSuite) TestRevoke_AlreadyRevoked() {
	id := uuid.New()
	newHash := "next456"

	suite.mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE refresh_tokens
		SET revoked_at = NOW(), replaced_by_hash = $2
		WHERE id = $1 AND revoked_at IS NULL
	`)).WithArgs(id, &newHash).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	claimed, err := suite.repo.Revoke(suite.context, id, &newHash)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), claimed)
}

func (suite *RefreshTokenRepoTestSuite) TestRevokeByUserAndHash_UnknownTokenIsNoError() {
	suite.mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE user_id = $1 AND token_hash = $2 AND revoked_at IS NULL
	`)).WithArgs(suite.userID, "unknown").WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.repo.RevokeByUserAndHash(suite.context, suite.userID, "unknown")
	assert.NoError(suite.T(), err)
}

func (suite *RefreshTokenRepoTestSuite) TestRevokeAllForUser() {
	suite.mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE user_id = $1 AND revoked_at IS NULL
	`)).WithArgs(suite.userID).WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	err := suite.repo.RevokeAllForUser(suite.context, suite.userID)
	assert.NoError(suite.T(), err)
}

func (suite *RefreshTokenRepoTestSuite) TestRevokeAllForUserExcept() {
	keepID := uuid.New()

	suite.mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE user_id = $1 AND id <> $2 AND revoked_at IS NULL
	`)).WithArgs(suite.userID, keepID).WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	err := suite.repo.RevokeAllForUserExcept(suite.context, suite.userID, keepID)
	assert.NoError(suite.T(), err)
}
