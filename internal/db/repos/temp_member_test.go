package repos

import (
	"errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *RepositoryTestSuite) TestGetTempMemberByCode() {
	id := uuid.New()
	s.mock.ExpectQuery(`SELECT \* FROM "temp_member"."temp_member" WHERE code = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code"}).AddRow(id.String(), "123456"))
	s.mock.ExpectQuery(`SELECT \* FROM "temp_member"."temp_member_info"`).
		WillReturnRows(sqlmock.NewRows([]string{"temp_member_id", "nickname", "email", "password"}).
			AddRow(id.String(), "nick", "t@example.com", "$2a$10$hash"))

	tm, err := s.tempMemberRepo.GetTempMemberByCode(s.ctx, "123456")
	s.Require().NoError(err)
	s.Equal(id, tm.ID)
	s.Equal("123456", tm.Code)
	s.Require().NotNil(tm.Info)
	s.Equal("nick", tm.Info.Nickname)
	s.Equal("t@example.com", tm.Info.Email)
	s.Equal(id, tm.Info.TempMemberID)
}

func (s *RepositoryTestSuite) TestGetTempMemberByCode_NotFound() {
	s.mock.ExpectQuery(`SELECT \* FROM "temp_member"."temp_member" WHERE code = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code"}))

	tm, err := s.tempMemberRepo.GetTempMemberByCode(s.ctx, "000000")
	s.Nil(tm)
	s.True(errors.Is(err, gorm.ErrRecordNotFound))
}

func (s *RepositoryTestSuite) TestCountTempMembersByCode() {
	s.mock.ExpectQuery(`SELECT count\(\*\) FROM "temp_member"."temp_member" WHERE code = \$1`).
		WithArgs("123456").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	n, err := s.tempMemberRepo.CountTempMembersByCode(s.ctx, "123456")
	s.NoError(err)
	s.Zero(n)
}
