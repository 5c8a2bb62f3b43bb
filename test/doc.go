// Package test manages the environment end-to-end tests of the member backend run in.
//
// An Environment starts an ephemeral PostgreSQL and an ephemeral Redis
// container, migrates the database, opens one long-lived connection to each
// store plus an ORM client, and tears all of it down again once the run is
// over. Between cases it purges the member, auth and temporary registration
// tables so every case starts from an empty store.
//
// The lifecycle is an explicit state machine:
//
//	Uninitialized -> Starting -> Ready -> TornDown
//	                    |          |
//	                    +--------> Failed -> TornDown
//
// Seeding and resetting are only accepted while the environment is Ready.
//
// Example Usage:
//
//	type MemberSuite struct {
//	    test.Suite
//	}
//
//	func (s *MemberSuite) TestLogin() {
//	    member, err := s.Env.SeedMember(s.Context(), "a@example.com", "secret")
//	    s.Require().NoError(err)
//	    // drive the application under test against s.Env.Endpoint()
//	}
//
//	func TestMemberSuite(t *testing.T) {
//	    suite.Run(t, new(MemberSuite))
//	}
//
// Cases must not run in parallel: they share one database connection and
// every case begins by deleting the rows of the previous one.
package test
