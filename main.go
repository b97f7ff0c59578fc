package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"koshoku_server/routes"
	"koshoku_server/services"
	"koshoku_server/socket"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Pick the store: DynamoDB in deployment, in-memory for local runs.
	var store services.Store
	var bgm services.BgmResolver
	if os.Getenv("ENV") == "LOCAL" {
		log.Println("ENV=LOCAL: using in-memory store")
		store = services.NewMemoryStore()
	} else {
		log.Println("Initializing DynamoDB client...")
		dynamoClient := services.InitializeDynamoDBClient()
		store = services.NewDynamoStore(&services.DynamoService{Client: dynamoClient})
		log.Println("DynamoDB client initialized.")

		if bucket := os.Getenv("S3_BUCKET_NAME"); bucket != "" {
			awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(os.Getenv("AWS_REGION")))
			if err != nil {
				log.Fatalf("Failed to load AWS config: %v", err)
			}
			bgm = services.NewBgmService(s3.NewFromConfig(awsCfg), bucket)
		}
	}

	tokenService := services.NewTokenService(getEnvDefault("ROOM_TOKEN_SECRET", "koshoku-dev-secret"), 0)

	// Realtime server: match pushes and room presence.
	socketServer := socket.NewSocketServer(tokenService)
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Printf("Socket server stopped: %v", err)
		}
	}()
	defer socketServer.Close()

	// Initialize Services
	matchmaker := services.NewMatchmakerService(store, &socket.MatchAnnouncer{Server: socketServer})
	poolService := &services.PoolService{Store: store, Matchmaker: matchmaker}
	roomService := &services.RoomService{Store: store, Tokens: tokenService, Bgm: bgm}
	profileService := &services.ProfileService{Store: store}
	sweeper := services.NewSweeperService(store,
		getEnvDuration("SWEEP_INTERVAL", services.DefaultSweepInterval),
		getEnvDuration("POOL_STALE_AFTER", services.DefaultStaleThreshold),
	)

	go matchmaker.Run(ctx)
	go sweeper.Run(ctx)

	// Initialize the router
	r := mux.NewRouter()

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to Koshoku")
	}).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}).Methods("GET")

	r.Handle("/socket.io/", socketServer)

	// Register routes
	routes.RegisterPoolRoutes(r, poolService)
	routes.RegisterMatchRoutes(r, poolService)
	routes.RegisterRoomRoutes(r, roomService)
	routes.RegisterProfileRoutes(r, profileService)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-User-Id"},
		AllowCredentials: true,
	}).Handler(r)

	port := getEnvDefault("PORT", "8080")
	srv := &http.Server{Addr: ":" + port, Handler: corsHandler}

	go func() {
		log.Printf("Starting server on port %s...\n", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid %s %q, using default %s", key, v, def)
		return def
	}
	return d
}
