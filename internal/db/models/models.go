// Package models holds the ORM view of the tables the fixtures write to
package models

// Schema-qualified names of every table the environment manages
const (
	TableMember         = "member.member"
	TableProfile        = "member.profile"
	TablePassword       = "auth.password"
	TableProvider       = "auth.provider"
	TableTempMember     = "temp_member.temp_member"
	TableTempMemberInfo = "temp_member.temp_member_info"
)

// ManagedTables lists the tables purged before every test case, in deletion
// order: rows that reference another table come before the table they reference.
var ManagedTables = []string{
	TablePassword,
	TableProvider,
	TableProfile,
	TableMember,
	TableTempMemberInfo,
	TableTempMember,
}
