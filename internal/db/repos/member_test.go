package repos

import (
	"errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/celestiaorg/memberenv/internal/db/models"
)

func (s *RepositoryTestSuite) TestGetMemberByEmail() {
	id := uuid.New()
	s.mock.ExpectQuery(`SELECT \* FROM "member"."member" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(id.String(), "a@example.com"))
	s.mock.ExpectQuery(`SELECT \* FROM "auth"."password"`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "password"}).AddRow(id.String(), "$2a$10$hash"))
	s.mock.ExpectQuery(`SELECT \* FROM "auth"."provider"`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "provider"}).AddRow(id.String(), models.ProviderLocal))

	member, err := s.memberRepo.GetMemberByEmail(s.ctx, "a@example.com")
	s.Require().NoError(err)
	s.Equal(id, member.ID)
	s.Equal("a@example.com", member.Email)
	s.Require().NotNil(member.Password)
	s.Equal("$2a$10$hash", member.Password.Password)
	s.Require().NotNil(member.Provider)
	s.True(member.Provider.IsLocal())
}

func (s *RepositoryTestSuite) TestGetMemberByEmail_NotFound() {
	s.mock.ExpectQuery(`SELECT \* FROM "member"."member" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	member, err := s.memberRepo.GetMemberByEmail(s.ctx, "missing@example.com")
	s.Nil(member)
	s.True(errors.Is(err, gorm.ErrRecordNotFound))
	s.Contains(err.Error(), "member not found")
}

func (s *RepositoryTestSuite) TestGetMemberByEmail_QueryError() {
	s.mock.ExpectQuery(`SELECT \* FROM "member"."member"`).WillReturnError(errors.New("connection reset"))

	member, err := s.memberRepo.GetMemberByEmail(s.ctx, "a@example.com")
	s.Nil(member)
	s.Error(err)
	s.Contains(err.Error(), "failed to get member")
}

func (s *RepositoryTestSuite) TestCountMembersByEmail() {
	s.mock.ExpectQuery(`SELECT count\(\*\) FROM "member"."member" WHERE email = \$1`).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	n, err := s.memberRepo.CountMembersByEmail(s.ctx, "a@example.com")
	s.NoError(err)
	s.EqualValues(1, n)
}

func (s *RepositoryTestSuite) TestCountPasswordsAndProviders() {
	id := uuid.New()
	s.mock.ExpectQuery(`SELECT count\(\*\) FROM "auth"."password" WHERE user_id = \$1`).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.mock.ExpectQuery(`SELECT count\(\*\) FROM "auth"."provider" WHERE user_id = \$1 AND provider = \$2`).
		WithArgs(id.String(), models.ProviderLocal).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	n, err := s.memberRepo.CountPasswords(s.ctx, id)
	s.NoError(err)
	s.EqualValues(1, n)

	n, err = s.memberRepo.CountProviders(s.ctx, id, models.ProviderLocal)
	s.NoError(err)
	s.EqualValues(1, n)
}
