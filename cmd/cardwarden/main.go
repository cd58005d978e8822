package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/shiroyume/cardwarden/internal/biz/domain"
	"github.com/shiroyume/cardwarden/internal/biz/usecase"
	"github.com/shiroyume/cardwarden/internal/conf"
	"github.com/shiroyume/cardwarden/internal/data"
	"github.com/shiroyume/cardwarden/internal/infra/discord"
	"github.com/shiroyume/cardwarden/internal/service"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := conf.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize gateway client
	client, err := discord.NewClient(cfg.Discord.Token)
	if err != nil {
		log.Fatalf("Failed to create Discord client: %v", err)
	}

	// Initialize state store
	stateRepo, err := data.NewStateRepo()
	if err != nil {
		log.Fatalf("Failed to create state store: %v", err)
	}
	defer stateRepo.Close()

	// Initialize usecase layer
	fingerprints := cfg.FingerprintTiers()

	corr := usecase.NewCorrelator(client, usecase.CorrelationConfig{
		WaitTimeout:  cfg.Correlation.WaitTimeout(),
		PollInterval: cfg.Correlation.PollInterval(),
		PollAttempts: cfg.Correlation.PollAttempts,
	})

	collectionUC := usecase.NewCollectionUsecase(stateRepo, client, corr, usecase.CollectionConfig{
		CompanionID: cfg.Discord.CompanionID,
		ReportEmoji: cfg.Tracker.ReportEmoji,
		TTL:         cfg.Tracker.TTL(),
	})
	defer collectionUC.Close()

	enforcementUC := usecase.NewEnforcementUsecase(client, corr, usecase.EnforcementConfig{
		CompanionID:         cfg.Discord.CompanionID,
		ModerationChannelID: cfg.Discord.ModerationChannelID,
		Rules:               cfg.PolicyRules(),
		Fingerprints:        fingerprints,
	})

	auctionUC := usecase.NewAuctionUsecase(client, usecase.AuctionConfig{
		CompanionID:       cfg.Discord.CompanionID,
		GuideChannelID:    cfg.Discord.GuideChannelID,
		DefaultPreference: cfg.Auction.DefaultPreference,
		PreferenceAliases: cfg.Auction.PreferenceAliases,
		Fingerprints:      fingerprints,
	})

	whitelist := make(map[string]bool, len(cfg.Threads.Whitelist))
	for _, id := range cfg.Threads.Whitelist {
		whitelist[id] = true
	}
	threadsUC := usecase.NewThreadsUsecase(client, usecase.ThreadsConfig{
		Whitelist:     whitelist,
		RetryAttempts: cfg.Threads.RetryAttempts,
	})

	deletionUC := usecase.NewDeletionUsecase(client, usecase.DeletionConfig{
		CompanionID: cfg.Discord.CompanionID,
	})

	// Initialize service layer
	dispatcher := service.NewDispatcher(
		cfg.Discord.CompanionID,
		corr,
		collectionUC,
		enforcementUC,
		auctionUC,
		threadsUC,
		deletionUC,
	)

	var groups []*service.ArchiveGroup
	for _, g := range cfg.ArchiveGroups {
		channels := make(map[string]bool, len(g.ChannelIDs))
		for _, id := range g.ChannelIDs {
			channels[id] = true
		}
		groups = append(groups, &service.ArchiveGroup{
			Name:       g.Name,
			GuildID:    cfg.Discord.GuildID,
			ChannelIDs: channels,
			Trigger:    domain.NewDailyTrigger(g.Hour, g.Minute, g.UTCOffsetHours),
			MinAge:     g.MinAge(),
		})
	}
	archiver := service.NewArchiver(client, groups)

	// Wire gateway events
	client.OnMessage(dispatcher.HandleMessage)
	client.OnMessageEdit(dispatcher.HandleMessageEdit)
	client.OnReaction(dispatcher.HandleReaction)

	// Start
	ctx := context.Background()
	if err := client.Start(); err != nil {
		log.Fatalf("Failed to start Discord client: %v", err)
	}
	archiver.Start(ctx)

	fmt.Println("Cardwarden is running. Press Ctrl+C to exit.")

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down...")
	archiver.Stop()
	client.Stop()
}
