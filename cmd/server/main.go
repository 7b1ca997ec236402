package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/soniahiltner/finance-tracker-sub001/internal/ai"
	"github.com/soniahiltner/finance-tracker-sub001/internal/auth"
	"github.com/soniahiltner/finance-tracker-sub001/internal/config"
	"github.com/soniahiltner/finance-tracker-sub001/internal/database"
	"github.com/soniahiltner/finance-tracker-sub001/internal/handler"
	"github.com/soniahiltner/finance-tracker-sub001/internal/queue"
	"github.com/soniahiltner/finance-tracker-sub001/internal/ratelimit"
	"github.com/soniahiltner/finance-tracker-sub001/internal/repository"
	"github.com/soniahiltner/finance-tracker-sub001/internal/router"
)

func main() {
	cfg := config.Load()
	rlCfg := config.LoadRateLimitConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := database.New(ctx, cfg.MongoURI)
	cancel()
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Close(ctx)
	}()

	codec := auth.NewCodec(cfg.JWTSecret, time.Duration(cfg.TokenTTLDays)*24*time.Hour)

	users := repository.NewUserRepo(db.Users)
	transactions := repository.NewTransactionRepo(db.Transactions)
	categories := repository.NewCategoryRepo(db.Categories)
	goals := repository.NewSavingsGoalRepo(db.SavingsGoals)

	events := queue.NewPublisher(cfg.AMQPURL)

	var extractor ai.Extractor
	if cfg.AIServiceURL != "" {
		extractor = ai.NewHTTPExtractor(cfg.AIServiceURL, cfg.AIServiceKey)
	}

	general, authLim, aiLim := buildLimiters(rlCfg)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Cfg:            cfg,
		Auth:           handler.NewAuthHandler(cfg, codec, users, events),
		Tx:             handler.NewTransactionHandler(transactions),
		Cats:           handler.NewCategoryHandler(categories),
		Goals:          handler.NewSavingsGoalHandler(goals, events),
		Docs:           handler.NewDocumentHandler(extractor),
		Users:          users,
		GeneralLimiter: general,
		AuthLimiter:    authLim,
		AILimiter:      aiLim,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// buildLimiters constructs the three policy limiters. Window state lives in
// process memory by default; with RATE_LIMIT_REDIS=true and a reachable
// Redis, the counters move to the shared store without any change to the
// middleware.
func buildLimiters(rl config.RateLimitConfig) (general, authLim, aiLim *ratelimit.Limiter) {
	if !rl.Enabled {
		log.Printf("ratelimit: disabled by configuration")
		return nil, nil, nil
	}
	newStore := func(name string) ratelimit.Store {
		if rl.UseRedis {
			if rdb := config.NewRedisClient(); rdb != nil {
				return ratelimit.NewRedisStore(rdb, rl.Prefix+":"+name, 2*rl.AIWindow)
			}
			log.Printf("ratelimit: redis unavailable, falling back to memory store")
		}
		s := ratelimit.NewMemoryStore()
		s.StartJanitor(context.Background(), 5*time.Minute, 2*rl.AIWindow)
		return s
	}

	general = ratelimit.NewLimiter(newStore("general"), rl.GeneralWindow, rl.GeneralMax)
	authLim = ratelimit.NewLimiter(newStore("auth"), rl.AuthWindow, rl.AuthMax)
	aiLim = ratelimit.NewLimiter(newStore("ai"), rl.AIWindow, rl.AIMax)
	return general, authLim, aiLim
}
