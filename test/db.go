package test

import (
	"context"

	"github.com/celestiaorg/memberenv/internal/db/repos"
)

// Members returns a repository for asserting on seeded members
func (e *Environment) Members() *repos.MemberRepository {
	return repos.NewMemberRepository(e.ORM())
}

// TempMembers returns a repository for asserting on seeded registrations
func (e *Environment) TempMembers() *repos.TempMemberRepository {
	return repos.NewTempMemberRepository(e.ORM())
}

// CountRows returns the number of rows in a managed table
func (e *Environment) CountRows(ctx context.Context, table string) (int64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	return repos.NewTableCounter(e.ORM()).Count(ctx, table)
}

// CountAllRows returns the row count of every managed table
func (e *Environment) CountAllRows(ctx context.Context) (map[string]int64, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return repos.NewTableCounter(e.ORM()).CountAll(ctx)
}

// FlushCache removes every key from the cache
func (e *Environment) FlushCache(ctx context.Context) error {
	if err := e.ready(); err != nil {
		return err
	}
	return e.Cache().FlushAll(ctx)
}

func (e *Environment) ready() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.requireReady()
}
