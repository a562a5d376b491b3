package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/saasbase-io/accounts/config"
	"github.com/saasbase-io/accounts/internal/application"
	"github.com/saasbase-io/accounts/internal/domain/policy"
	repo "github.com/saasbase-io/accounts/internal/domain/repository"
	pginfra "github.com/saasbase-io/accounts/internal/infrastructure/postgres"
	"github.com/saasbase-io/accounts/pkg/helpers"
)

// Seeds a demo user's personal account plus a demo team, mirroring what the
// registration worker and API would do in a live deployment.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	accountsRepo := pginfra.NewAccountRepository(pool)
	membersRepo := pginfra.NewMembershipRepository(pool)

	roles := application.NewRoleService(membersRepo, nil, logger)
	lifecycle := application.NewLifecycleService(accountsRepo, logger, nil, "")
	accounts := application.NewAccountService(accountsRepo, membersRepo, roles, lifecycle, logger, nil, "", nil, "")

	userID := uuid.NewString()
	email := "demo@example.com"

	personal, err := lifecycle.OnUserRegistered(ctx, userID, email)
	if err != nil {
		log.Fatalf("failed to seed personal account: %v", err)
	}
	fmt.Printf("seeded personal account: id=%s name=%s\n", personal.ID, personal.Name)

	actor := policy.Actor{UserID: userID}
	team, err := accounts.Create(ctx, actor, application.CreateAccountInput{
		Name: "Demo Team",
		Slug: "demo-team",
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateSlug) {
			fmt.Println("demo team already seeded")
			return
		}
		log.Fatalf("failed to seed team account: %v", err)
	}
	fmt.Printf("seeded team account: id=%s slug=%s owner=%s\n", team.ID, team.Slug, team.PrimaryOwnerUserID)

	// a ready-to-use bearer token for poking the API as the demo user; the
	// auth middleware expects a session hash, so write one like the identity
	// service would
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()
	if err := rdb.HSet(ctx, "user:session:"+userID, "email", email).Err(); err != nil {
		log.Fatalf("failed to seed session: %v", err)
	}

	jwtManager := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.AccessTTL)
	token, exp, err := jwtManager.GenerateAccessToken(userID, false)
	if err != nil {
		log.Fatalf("failed to mint demo token: %v", err)
	}
	fmt.Printf("demo access token (expires %s):\n%s\n", exp.Format("15:04:05"), token)
}
