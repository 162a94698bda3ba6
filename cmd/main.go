package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	auctionapp "github.com/cristianortiz/numismaticMarket/internal/auction/application"
	auctionpg "github.com/cristianortiz/numismaticMarket/internal/auction/infra/repository/postgres"
	auctionrest "github.com/cristianortiz/numismaticMarket/internal/auction/infra/rest"
	auctionws "github.com/cristianortiz/numismaticMarket/internal/auction/infra/websocket"
	extractionapp "github.com/cristianortiz/numismaticMarket/internal/extraction/application"
	extractiondomain "github.com/cristianortiz/numismaticMarket/internal/extraction/domain"
	"github.com/cristianortiz/numismaticMarket/internal/extraction/infra/cache"
	"github.com/cristianortiz/numismaticMarket/internal/extraction/infra/fetch"
	extractiongemini "github.com/cristianortiz/numismaticMarket/internal/extraction/infra/gemini"
	extractionrest "github.com/cristianortiz/numismaticMarket/internal/extraction/infra/rest"
	paymentapp "github.com/cristianortiz/numismaticMarket/internal/payment/application"
	paymentbolt "github.com/cristianortiz/numismaticMarket/internal/payment/infra/bolt"
	"github.com/cristianortiz/numismaticMarket/internal/payment/infra/gateway"
	paymentrest "github.com/cristianortiz/numismaticMarket/internal/payment/infra/rest"
	recognitionapp "github.com/cristianortiz/numismaticMarket/internal/recognition/application"
	recognitionrest "github.com/cristianortiz/numismaticMarket/internal/recognition/infra/rest"
	"github.com/cristianortiz/numismaticMarket/internal/shared/config"
	"github.com/cristianortiz/numismaticMarket/internal/shared/db"
	"github.com/cristianortiz/numismaticMarket/internal/shared/db/migrations"
	"github.com/cristianortiz/numismaticMarket/internal/shared/events"
	"github.com/cristianortiz/numismaticMarket/internal/shared/gemini"
	"github.com/cristianortiz/numismaticMarket/internal/shared/httpserver"
	"github.com/cristianortiz/numismaticMarket/internal/shared/logger"
	"github.com/cristianortiz/numismaticMarket/internal/shared/websocket"
	userpg "github.com/cristianortiz/numismaticMarket/internal/user/infra/repository/postgres"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	log := logger.GetLogger()
	defer log.Sync()

	cfg := config.Load()
	log.Info("Starting numismaticMarket server...", zap.String("env", cfg.AppEnv))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Running database migrations...")
	if err := migrations.RunMigrations(cfg.MigrationsPath, cfg.PostgresDSN()); err != nil {
		log.Fatal("Database migration failed", zap.Error(err))
	}
	log.Info("Database migrations completed successfully.")

	pool, err := db.GetPostgresDBPool(ctx, cfg.PostgresDSN())
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()

	listingRepo := auctionpg.NewListingRepository(pool)
	bidRepo := auctionpg.NewBidRepository(pool)
	watchlistRepo := auctionpg.NewWatchlistRepository(pool)
	userRepo := userpg.NewUserRepository(pool)
	transactor := db.NewTransactor(pool)

	hub := websocket.NewHub()
	go hub.Run(ctx)

	// wsHandler is assigned below; the service and the handler need each other
	var wsHandler *auctionws.AuctionWSHandler
	localRelay := events.PublisherFunc(func(_ context.Context, evt events.Event) error {
		wsHandler.RelayEvent(evt)
		return nil
	})

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = events.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer rdb.Close()
	}

	publishers := []events.Publisher{}
	if rdb != nil {
		publishers = append(publishers, events.NewRedisPublisher(rdb))
	} else {
		log.Warn("REDIS_ADDR not set, auction events reach this instance's websocket clients only")
		publishers = append(publishers, localRelay)
	}
	if cfg.NatsURL != "" {
		nc, err := events.ConnectNATS(cfg.NatsURL)
		if err != nil {
			log.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer nc.Drain()
		publishers = append(publishers, events.NewNATSPublisher(nc))
	}
	publisher := events.Multi(publishers...)

	placeBidUC := auctionapp.NewPlaceBidUseCase(listingRepo, bidRepo, transactor, publisher, nil)
	createUC := auctionapp.NewCreateAuctionUseCase(listingRepo, userRepo, cfg.AuctionExtensionWindow, nil)
	cancelUC := auctionapp.NewCancelAuctionUseCase(listingRepo, transactor, publisher, nil)
	closeUC := auctionapp.NewCloseAuctionsUseCase(listingRepo, bidRepo, transactor, publisher, nil)
	queries := auctionapp.NewAuctionQueries(listingRepo, bidRepo, nil)
	watchlistUC := auctionapp.NewWatchlistUseCase(watchlistRepo, nil)
	auctionService := auctionapp.NewAuctionService(placeBidUC, createUC, cancelUC, queries, watchlistUC)

	wsHandler = auctionws.NewAuctionWSHandler(ctx, auctionService, hub)
	go wsHandler.ListenForMessages(ctx)
	if rdb != nil {
		relay := events.NewRedisRelay(rdb, wsHandler.RelayEvent)
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Redis relay stopped", zap.Error(err))
			}
		}()
	}
	go closeUC.RunCloser(ctx, cfg.AuctionCloseInterval)

	var (
		analyzer    extractiondomain.Analyzer
		visionModel recognitionapp.VisionModel
		recordCache extractiondomain.RecordCache
	)
	if cfg.GeminiAPIKey != "" {
		gc, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatal("Failed to create Gemini client", zap.Error(err))
		}
		defer gc.Close()
		analyzer = extractiongemini.NewAnalyzer(gc)
		visionModel = gc
	} else {
		log.Warn("GEMINI_API_KEY not set, extraction and recognition run on heuristics only")
	}
	if rdb != nil {
		recordCache = cache.NewRedisCache(rdb, cfg.ExtractionCacheTTL)
	}
	extractor := extractionapp.NewExtractor(fetch.NewPageFetcher(cfg.FetchTimeout), analyzer, recordCache, nil)
	recognizer := recognitionapp.NewRecognizer(visionModel, nil)

	orderStore, err := paymentbolt.Open(cfg.PaymentStorePath)
	if err != nil {
		log.Fatal("Failed to open payment store", zap.Error(err), zap.String("path", cfg.PaymentStorePath))
	}
	defer orderStore.Close()
	paymentService := paymentapp.NewPaymentService(
		orderStore,
		gateway.NewClient(cfg.PaymentGatewayURL, cfg.PaymentGatewayKey, 20*time.Second),
		nil, nil,
	)

	server := httpserver.NewServer()
	server.Mount("/api/v1",
		auctionrest.NewAuctionHandler(auctionService),
		extractionrest.NewExtractionHandler(extractor),
		recognitionrest.NewRecognitionHandler(recognizer),
		paymentrest.NewPaymentHandler(paymentService),
	)
	server.Mount("/ws", wsHandler)

	if err := server.Start(ctx, cfg.HTTPAddr); err != nil {
		log.Fatal("HTTP server failed", zap.Error(err))
	}
	log.Info("Server stopped")
}
