package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/Necroforger/dgrouter/exrouter"
	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	"github.com/Swagman-cyber/hell/config"
	"github.com/Swagman-cyber/hell/database"
	"github.com/Swagman-cyber/hell/handlers"
	"github.com/Swagman-cyber/hell/logging"
	"github.com/Swagman-cyber/hell/roblox"
	"github.com/Swagman-cyber/hell/verify"
)

func main() {
	godotenv.Load()
	cfg := config.Load()
	if cfg.Token == "" {
		logging.Fatal("DISCORD_TOKEN is not set")
	}

	// Open db
	store, err := database.Open(cfg.DBPath)
	if err != nil {
		logging.Fatal("failed to open database: %v", err)
	}
	defer store.Close()

	// Build the verification flow
	gen := &verify.Generator{Secret: []byte(cfg.CodeSecret)}
	flow := &verify.Flow{
		Dir:     roblox.NewClient(cfg.UpstreamTimeout),
		Ledger:  store,
		Pending: verify.NewPendingStore(gen, cfg.PendingTTL),
		Gen:     gen,
		Timeout: cfg.UpstreamTimeout,
	}
	handlers.Init(flow, store)

	// Discord session
	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		logging.Fatal("failed to create a Discord session: %v", err)
	}

	// Command routing
	router := exrouter.New()
	router.On("verify", handlers.VerifyHandler).Desc("Start Roblox verification: verify <username>")
	router.On("confirm", handlers.ConfirmHandler).Desc("Finish verification after editing your About Me")
	router.On("verification", handlers.ToggleHandler).Desc("Enable or disable verification (admin)")
	router.On("addrole", handlers.RoleAddHandler).Desc("Add a verified role (admin)")
	router.On("removerole", handlers.RoleRemoveHandler).Desc("Remove a verified role (admin)")
	router.On("listroles", handlers.RoleListHandler).Desc("List verified roles")
	router.On("verifymsg", handlers.MsgHandler).Desc("Set the success message (admin)")
	router.On("unburn", handlers.UnburnHandler).Desc("Delete a used-code record (admin)")

	dg.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		router.FindAndExecute(s, config.Prefix, s.State.User.ID, m.Message)
	})

	if err := dg.Open(); err != nil {
		logging.Fatal("failed to open the gateway connection: %v", err)
	}
	defer dg.Close()
	logging.Info("bot is running, press ctrl+c to exit")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
	logging.Info("shutting down")
}
