package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"HomeDesk/bot"
	"HomeDesk/bot/chat"
	"HomeDesk/bot/chat/booking"
	"HomeDesk/bot/chat/devicesetup"
	"HomeDesk/bot/chat/maintenance"
	"HomeDesk/bot/chat/visitorpass"
	"HomeDesk/bot/messenger"
	"HomeDesk/internal/config"
	repository "HomeDesk/internal/database"
	"HomeDesk/internal/http-server/api"
	"HomeDesk/internal/lib/logger"
	"HomeDesk/internal/lib/sl"
	"HomeDesk/internal/service/catalog"
	"HomeDesk/internal/service/devices"
	"HomeDesk/internal/service/passes"
	"HomeDesk/internal/ws"
)

// intakeRepository is the storage surface the wizards and services
// commit through. Both the Mongo client and the in-memory fallback
// satisfy it.
type intakeRepository interface {
	maintenance.TicketGateway
	booking.BookingGateway
	devicesetup.BridgeGateway
	passes.Repository
}

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	var tgBot *bot.TgBot
	if conf.Telegram.Enabled {
		var err error
		tgBot, err = bot.NewTgBot(conf.Telegram.ApiKey, conf.Telegram.AdminId, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", sl.Err(err))
		} else {
			lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelWarn)
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")
		}
	}

	lg.Info("starting homedesk", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	loc, err := time.LoadLocation(conf.Property.Timezone)
	if err != nil {
		lg.With(sl.Err(err)).Error("load property timezone, falling back to UTC")
		loc = time.UTC
	}

	var repo intakeRepository
	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.With(sl.Err(err)).Error("mongo client")
	}
	if db != nil {
		repo = db
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("port", conf.Mongo.Port),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
	} else {
		repo = repository.NewMemory()
		lg.Warn("mongo disabled, using in-memory storage")
	}

	cat := catalog.NewService()
	passService := passes.NewService(repo, loc, lg)
	deviceClient := devices.NewClient(time.Duration(conf.Timeouts.DeviceSeconds)*time.Second, lg)

	commitTimeout := time.Duration(conf.Timeouts.CommitSeconds) * time.Second
	deviceTimeout := time.Duration(conf.Timeouts.DeviceSeconds) * time.Second

	store := chat.NewMemorySessionStore(time.Duration(conf.Session.IdleMinutes)*time.Minute, lg)
	go store.RunSweeper(context.Background(), time.Duration(conf.Session.SweepMinutes)*time.Minute)

	hub := ws.NewHub(lg)
	go hub.Run()

	var escalation maintenance.Notifier
	if tgBot != nil {
		escalation = tgBot
	}

	engine := chat.NewEngine(store, lg)
	engine.RegisterWorkflow(maintenance.New(cat, repo, escalation, commitTimeout, lg))
	engine.RegisterWorkflow(booking.New(cat, repo, loc, commitTimeout, lg))
	engine.RegisterWorkflow(visitorpass.New(passService, loc, commitTimeout, lg))
	engine.RegisterWorkflow(devicesetup.New(deviceClient, repo, devices.ValidURL, devices.SanitizeToken, deviceTimeout, commitTimeout, lg))
	engine.SetCommitListener(hub)
	engine.SetMenu("Hi! I can help you with requests around "+conf.Property.Name+". What do you need?", []chat.Option{
		{Text: "Report an issue", Payload: maintenance.EntryPayload},
		{Text: "Book an amenity", Payload: booking.EntryPayload},
		{Text: "Visitor pass", Payload: visitorpass.EntryPayload},
		{Text: "Connect smart home", Payload: devicesetup.EntryPayload},
	})

	var msgBot *messenger.Bot
	if conf.Messenger.Enabled {
		msgBot = messenger.NewBot(conf.Messenger.AccessToken, conf.Messenger.VerifyToken, conf.Messenger.AppSecret, lg)
		msgBot.SetHandler(engine)
		lg.With(
			sl.Secret("access_token", conf.Messenger.AccessToken),
		).Info("messenger bot initialized")
	} else {
		lg.Warn("messenger disabled, webhook routes not mounted")
	}

	// *** blocking start with http server ***
	err = api.New(conf, lg, msgBot, passService, hub)
	if err != nil {
		lg.With(sl.Err(err)).Error("api server stopped")
	}
}
