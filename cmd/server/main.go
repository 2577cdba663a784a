package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"fitnesstime/internal/api"
	"fitnesstime/internal/auth"
	"fitnesstime/internal/bus"
	"fitnesstime/internal/repository"
	"fitnesstime/internal/service"
)

func main() {
	godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	database, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := database.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	eventBus := bus.NewBus()
	defer eventBus.Close()

	userRepo := repository.NewUserRepository(database)
	eventRepo := repository.NewEventRepository(database)
	groupRepo := repository.NewGroupRepository(database)
	commentRepo := repository.NewCommentRepository(database)
	ratingRepo := repository.NewRatingRepository(database)
	chatRepo := repository.NewChatRepository(database)
	jobRepo := repository.NewJobRepository(database)

	sender := service.NewSenderService()
	authSvc := service.NewAuthService(userRepo)
	userSvc := service.NewUserService(userRepo, eventBus)
	eventSvc := service.NewEventService(eventRepo, sender, eventBus)
	groupSvc := service.NewGroupService(groupRepo, eventBus)
	availabilitySvc := service.NewAvailabilityService(groupRepo)
	commentSvc := service.NewCommentService(commentRepo, eventBus)
	ratingSvc := service.NewRatingService(ratingRepo, eventBus)
	chatSvc := service.NewChatService(chatRepo, groupRepo, eventBus)
	jobSvc := service.NewJobService(jobRepo, eventBus)

	authHandler := api.NewAuthHandler(authSvc)
	userHandler := api.NewUserHandler(userSvc)
	eventHandler := api.NewEventHandler(eventSvc)
	groupHandler := api.NewGroupHandler(groupSvc, availabilitySvc)
	commentHandler := api.NewCommentHandler(commentSvc, ratingSvc)
	chatHandler := api.NewChatHandler(chatSvc)
	streamHandler := api.NewStreamHandler(eventBus)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/events", eventHandler.ListEvents).Methods("GET")
	r.HandleFunc("/api/events/feed", eventHandler.Feed).Methods("GET")
	r.HandleFunc("/api/events/{id:[0-9]+}", eventHandler.GetEvent).Methods("GET")
	r.HandleFunc("/api/events/{id:[0-9]+}/participants", eventHandler.GetParticipants).Methods("GET")
	r.HandleFunc("/api/events/{id:[0-9]+}/comments", commentHandler.ListForEvent).Methods("GET")
	r.HandleFunc("/api/events/{id:[0-9]+}/rating", commentHandler.GetRating).Methods("GET")
	r.HandleFunc("/api/groups", groupHandler.ListGroups).Methods("GET")
	r.HandleFunc("/api/groups/{id:[0-9]+}", groupHandler.GetGroup).Methods("GET")
	r.HandleFunc("/api/groups/{id:[0-9]+}/members", groupHandler.GetMembers).Methods("GET")
	r.HandleFunc("/api/stream", streamHandler.Stream).Methods("GET")

	// Authenticated endpoints
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(auth.AuthMiddleware)
	protected.HandleFunc("/me", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/me", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/events", eventHandler.CreateEvent).Methods("POST")
	protected.HandleFunc("/events/{id:[0-9]+}", eventHandler.UpdateEvent).Methods("PUT")
	protected.HandleFunc("/events/{id:[0-9]+}", eventHandler.CancelEvent).Methods("DELETE")
	protected.HandleFunc("/events/{id:[0-9]+}/join", eventHandler.JoinEvent).Methods("POST")
	protected.HandleFunc("/events/{id:[0-9]+}/join", eventHandler.LeaveEvent).Methods("DELETE")
	protected.HandleFunc("/events/{id:[0-9]+}/comments", commentHandler.CreateComment).Methods("POST")
	protected.HandleFunc("/events/{id:[0-9]+}/rating", commentHandler.RateEvent).Methods("PUT")
	protected.HandleFunc("/comments/{id:[0-9]+}", commentHandler.DeleteComment).Methods("DELETE")
	protected.HandleFunc("/groups", groupHandler.CreateGroup).Methods("POST")
	protected.HandleFunc("/groups/{id:[0-9]+}", groupHandler.UpdateGroup).Methods("PUT")
	protected.HandleFunc("/groups/{id:[0-9]+}/join", groupHandler.JoinGroup).Methods("POST")
	protected.HandleFunc("/groups/{id:[0-9]+}/join", groupHandler.LeaveGroup).Methods("DELETE")
	protected.HandleFunc("/groups/{id:[0-9]+}/free-intervals", groupHandler.FreeIntervals).Methods("GET")
	protected.HandleFunc("/groups/{id:[0-9]+}/chat", chatHandler.ListMessages).Methods("GET")
	protected.HandleFunc("/groups/{id:[0-9]+}/chat", chatHandler.SendMessage).Methods("POST")

	c := cron.New()
	c.AddFunc("@every 10m", func() {
		if err := jobSvc.UpdateFinishedEvents(); err != nil {
			log.Printf("Cron job error: %v", err)
		}
	})
	c.AddFunc("@daily", func() {
		deleted, err := jobSvc.PurgeOldCanceledEvents(time.Now().UTC().AddDate(0, 0, -30))
		if err != nil {
			log.Printf("Cron job error: %v", err)
			return
		}
		if deleted > 0 {
			log.Printf("Cron Job: Purged %d old canceled events", deleted)
		}
	})
	c.Start()
	defer c.Stop()

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: handlers.LoggingHandler(os.Stdout, cors(r)),
	}

	go func() {
		log.Printf("Server running on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	server.Close()
}
