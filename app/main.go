package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mikotobay/inkwell/internal/blogservice"
	"github.com/mikotobay/inkwell/internal/commentservice"
	"github.com/mikotobay/inkwell/internal/common"
	"github.com/mikotobay/inkwell/internal/mailservice"
	"github.com/mikotobay/inkwell/internal/notificationservice"
	"github.com/mikotobay/inkwell/internal/reactionservice"
	"github.com/mikotobay/inkwell/internal/userservice"
)

type application struct {
	config              *Config
	logger              *slog.Logger
	userService         *userservice.UserService
	blogService         *blogservice.BlogService
	commentService      *commentservice.CommentService
	reactionService     *reactionservice.ReactionService
	notificationService *notificationservice.NotificationService
	mailService         *mailservice.MailService
	broker              *common.MessageBroker
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := common.NewDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, 10, 5, 15*time.Minute)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.MQUser, cfg.MQPassword, cfg.MQHost, cfg.MQPort)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	err = common.SetupUserExchange(broker)
	if err != nil {
		logger.Error("failed to setup the user exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cache := common.NewCache(5*time.Minute, 10*time.Minute)
	emitter := notificationservice.NewEmitter(notificationservice.DefaultPolicy())

	app := &application{
		config:              cfg,
		logger:              logger,
		userService:         userservice.NewUserService(db, broker, emitter),
		blogService:         blogservice.NewBlogService(db, cache),
		commentService:      commentservice.NewCommentService(db, emitter),
		reactionService:     reactionservice.NewReactionService(db, emitter),
		notificationService: notificationservice.NewNotificationService(db),
		mailService:         mailservice.NewMailService(broker, cfg.MailHost, cfg.MailUser, cfg.MailPassword, cfg.MailSender, cfg.MailPort, logger),
		broker:              broker,
	}

	go app.mailService.SendActivationEmail()

	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
