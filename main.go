package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"cinetrack/config"
	"cinetrack/handlers"
	"cinetrack/internal/database"
	"cinetrack/services/catalog"
	"cinetrack/services/collections"
	"cinetrack/services/mailer"
	"cinetrack/services/tmdb"
	"cinetrack/services/users"
	"cinetrack/services/watchlist"
	"cinetrack/services/watchstate"
	"cinetrack/utils"
)

func main() {
	settings := config.Load()

	if settings.LogFile != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   settings.LogFile,
			MaxSize:    50, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}

	sessionKey := settings.SessionKey
	if sessionKey == "" {
		generated, err := utils.GenerateAPIKey()
		if err != nil {
			log.Fatalf("[main] failed to generate session key: %v", err)
		}
		sessionKey = generated
		log.Println("[main] CINETRACK_SESSION_KEY not set, sessions will not survive a restart")
	}

	db, err := database.NewDB(database.Config{DatabasePath: settings.DatabasePath})
	if err != nil {
		log.Fatalf("[main] failed to open database: %v", err)
	}
	defer db.Close()

	if settings.TMDBAPIKey == "" {
		log.Println("[main] warning: TMDB_API_KEY not set, catalog endpoints will fail")
	}
	provider := tmdb.NewClient(settings.TMDBAPIKey)

	notifier := mailer.New(mailer.Config{
		Host:     settings.SMTPHost,
		Port:     settings.SMTPPort,
		Username: settings.SMTPUsername,
		Password: settings.SMTPPassword,
		From:     settings.SMTPFrom,
	})

	watchlistService := watchlist.NewService(db.Watchlist)
	usersService := users.NewService(db.Users, notifier)
	stateManager := watchstate.NewManager(watchlistService, provider)
	collectionManager := collections.NewManager()
	calendarService := catalog.NewService(provider, settings.CalendarWorkers)

	sessions := handlers.NewSessionManager(sessionKey)
	authHandler := handlers.NewAuthHandler(usersService, sessions, stateManager)
	watchlistHandler := handlers.NewWatchlistHandler(watchlistService, stateManager)
	collectionsHandler := handlers.NewCollectionsHandler(collectionManager)
	catalogHandler := handlers.NewCatalogHandler(provider, calendarService, watchlistService)

	router := utils.NewRouter()
	handlers.RegisterRoutes(router, sessions, authHandler, watchlistHandler, collectionsHandler, catalogHandler)

	server := &http.Server{
		Addr:         settings.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", settings.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("[main] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[main] shutdown error: %v", err)
	}
}
