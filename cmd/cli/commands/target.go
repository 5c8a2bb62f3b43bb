package commands

import (
	"context"
	"fmt"

	"github.com/celestiaorg/memberenv/internal/api"
	"github.com/celestiaorg/memberenv/internal/api/client"
	"github.com/celestiaorg/memberenv/internal/db"
	"github.com/celestiaorg/memberenv/internal/fixtures"
	"github.com/celestiaorg/memberenv/internal/security"
)

// openFixtures returns the fixture target selected by the persistent flags:
// a running fixture server when serverAddress is set, otherwise the database
// at databaseURL. The returned func releases the target.
func openFixtures() (api.Fixtures, func(), error) {
	if serverAddress != "" {
		c, err := client.NewClient(&client.Options{BaseURL: serverAddress})
		if err != nil {
			return nil, nil, err
		}
		return remoteFixtures{client: c}, func() {}, nil
	}

	if databaseURL == "" {
		return nil, nil, fmt.Errorf("either --%s or --%s is required", flagServerAddress, flagDatabaseURL)
	}
	conn, err := db.Open(databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	cost := security.FixtureCost
	if cfg != nil {
		cost = cfg.BcryptCost
	}
	seeder := fixtures.NewSeeder(conn, security.NewHasher(cost))
	return seeder, func() { _ = conn.Close() }, nil
}

// remoteFixtures forwards fixture operations to a fixture server
type remoteFixtures struct {
	client *client.Client
}

func (r remoteFixtures) Reset(ctx context.Context) error {
	return r.client.Reset(ctx)
}

func (r remoteFixtures) SeedMember(ctx context.Context, email, password string) (*fixtures.SeededMember, error) {
	resp, err := r.client.SeedMember(ctx, api.SeedMemberRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return &fixtures.SeededMember{ID: resp.ID, Email: email}, nil
}

func (r remoteFixtures) SeedTemporaryMember(ctx context.Context, code, nickname, email, password string) (*fixtures.SeededTempMember, error) {
	resp, err := r.client.SeedTemporaryMember(ctx, api.SeedTempMemberRequest{
		Code:     code,
		Nickname: nickname,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	return &fixtures.SeededTempMember{ID: resp.ID, Code: code, Nickname: nickname, Email: email}, nil
}
