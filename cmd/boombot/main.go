package main

import (
	"log"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"

	"boombot/internal/config"
	"boombot/internal/logger"
	"boombot/internal/mongo"
	"boombot/internal/mysql"
	"boombot/internal/routing"
	"boombot/pkg/account"
	"boombot/pkg/audit"
	"boombot/pkg/dispatch"
	"boombot/pkg/enroll"
	"boombot/pkg/reply"
	"boombot/pkg/riot"
)

func main() {
	config.Load() // load env var from .env

	db := mysql.LoadDB()
	defer db.Close()

	mongoDB := mongo.LoadDB()

	logger := logger.Load()

	dg, err := discordgo.New("Bot " + os.Getenv("DISCORD_TOKEN"))
	if err != nil {
		log.Fatal("Cannot create Discord session:", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsDirectMessageReactions

	channel := reply.NewDiscord(dg)
	registry := enroll.NewRegistry()

	orch := enroll.NewOrchestrator(
		registry,
		channel,
		riot.NewClient(config.AuthURL()),
		account.NewMySQLRepo(db),
		audit.NewMongoRepo(mongoDB),
		logger,
		enroll.Options{
			Timeout:     config.EnrollTimeout(),
			MaxAttempts: config.MaxAttempts(),
		},
	)

	dispatcher := dispatch.New(orch, channel, logger)

	dg.AddHandler(func(s *discordgo.Session, _ *discordgo.Ready) {
		logger.Info("bot ready")
		dispatcher.RegisterCommands(s, os.Getenv("APP_ID"))
	})
	dg.AddHandler(dispatcher.HandleInteraction)

	if err := dg.Open(); err != nil {
		log.Fatal("Cannot connect to Discord gateway:", err)
	}
	defer dg.Close()

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	routing.InitRoutes(api, registry, logger)
	routing.StartServer(r, config.OpsAddr()) // blocks, keeps the bot alive
}
