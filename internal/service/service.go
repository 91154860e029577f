package service

import (
	"log"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"

	"github.com/ashwinyue/procure-ai/internal/config"
	"github.com/ashwinyue/procure-ai/internal/repository"
	"github.com/ashwinyue/procure-ai/internal/service/agent"
	"github.com/ashwinyue/procure-ai/internal/service/auth"
	"github.com/ashwinyue/procure-ai/internal/service/cart"
	"github.com/ashwinyue/procure-ai/internal/service/catalog"
	"github.com/ashwinyue/procure-ai/internal/service/checkout"
	"github.com/ashwinyue/procure-ai/internal/service/session"
	"github.com/ashwinyue/procure-ai/internal/service/settings"
)

// Services 服务集合
type Services struct {
	Auth     *auth.Service
	Catalog  *catalog.Service
	Cart     *cart.Service
	Checkout *checkout.Service
	Agent    *agent.Service
	Settings *settings.Service

	Config  *config.Config
	History *session.Cache
}

// NewServices 创建所有服务
func NewServices(repo *repository.Repositories, cfg *config.Config, redisClient *redis.Client) (*Services, error) {
	history := session.NewCache(redisClient)

	esClient := newESClient(cfg)

	catalogSvc := catalog.NewService(repo.Item, esClient, cfg.Elastic.IndexPrefix)
	cartSvc := cart.NewService(repo.Cart, repo.Item)
	checkoutSvc := checkout.NewService(repo.Cart, repo.Purchase)
	authSvc := auth.NewService(repo.Auth, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTL)*time.Hour)
	agentSvc := agent.NewService(repo.Conversation, repo.Usage, history, catalogSvc, cartSvc, checkoutSvc, cfg)
	settingsSvc := settings.NewService(repo.Conversation, repo.Usage, history)

	return &Services{
		Auth:     authSvc,
		Catalog:  catalogSvc,
		Cart:     cartSvc,
		Checkout: checkoutSvc,
		Agent:    agentSvc,
		Settings: settingsSvc,

		Config:  cfg,
		History: history,
	}, nil
}

// newESClient 创建 Elasticsearch 客户端，未配置时返回 nil，目录检索退回 SQL
func newESClient(cfg *config.Config) *elasticsearch.Client {
	if cfg.Elastic.Host == "" {
		return nil
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Elastic.Host},
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		log.Printf("Warning: failed to create es client: %v", err)
		return nil
	}
	return client
}
