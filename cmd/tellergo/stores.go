package main

import (
	"context"
	"fmt"

	"github.com/tellergo-dev/tellergo/pkg/checkpoint"
	"github.com/tellergo-dev/tellergo/pkg/config"
	"github.com/tellergo-dev/tellergo/pkg/session"
)

func buildSessionStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	sc := cfg.Session
	switch sc.Provider {
	case "memory":
		return session.NewMemoryStore(), nil
	case "file":
		return session.NewFileStore(sc.Path)
	case "redis":
		return session.NewRedisStore(session.RedisConfig{
			Addr:   sc.RedisAddr,
			DB:     sc.RedisDB,
			Prefix: sc.KeyPrefix,
			TTL:    sc.TTL.Std(),
		})
	case "firestore":
		return session.NewFirestoreStore(ctx, session.FirestoreConfig{
			ProjectID:       cfg.GCPProject,
			CredentialsFile: cfg.GCPCredentials,
		})
	default:
		return nil, fmt.Errorf("unknown session provider: %s", sc.Provider)
	}
}

func buildCheckpointStore(cfg *config.Config) (checkpoint.Store, error) {
	cc := cfg.Checkpoint
	switch cc.Provider {
	case "memory":
		return checkpoint.NewMemoryStore(), nil
	case "file":
		return checkpoint.NewFileStore(cc.Path)
	case "redis":
		return checkpoint.NewRedisStore(checkpoint.RedisConfig{
			Addr:   cc.RedisAddr,
			DB:     cc.RedisDB,
			Prefix: cc.KeyPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown checkpoint provider: %s", cc.Provider)
	}
}
