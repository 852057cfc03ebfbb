package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ukydev/carwise/internal/config"
	"github.com/ukydev/carwise/internal/convo"
	"github.com/ukydev/carwise/internal/db"
	"github.com/ukydev/carwise/internal/reminder"
)

// app holds the shared process dependencies the subcommands build on.
type app struct {
	cfg    *config.Config
	log    *logrus.Entry
	client *mongo.Client
	stores *db.Stores

	dispatcher reminder.Dispatcher
	closers    []func()
}

func newApp(ctx context.Context, needDispatcher bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	log := logrus.NewEntry(logger)

	client, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		log:    log,
		client: client,
		stores: db.NewStores(client.Database(cfg.Database)),
	}
	a.closers = append(a.closers, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(shutdownCtx); err != nil {
			log.WithError(err).Warn("mongo disconnect failed")
		}
	})

	if needDispatcher {
		if cfg.MQTTBroker != "" {
			mqttDisp, err := reminder.NewMQTTDispatcher(cfg.MQTTBroker, cfg.MQTTClientID)
			if err != nil {
				a.Close()
				return nil, err
			}
			a.dispatcher = mqttDisp
			a.closers = append(a.closers, mqttDisp.Close)
		} else {
			log.Warn("no MQTT broker configured, notifications are logged only")
			a.dispatcher = &logDispatcher{log: log}
		}
	}

	return a, nil
}

// sessionStore picks Redis when configured, in-process memory otherwise.
func (a *app) sessionStore() convo.SessionStore {
	if a.cfg.RedisAddr == "" {
		a.log.Warn("no Redis configured, sessions are kept in process memory")
		return convo.NewMemorySessionStore(a.cfg.SessionTTL)
	}
	client := redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr})
	a.closers = append(a.closers, func() {
		if err := client.Close(); err != nil {
			a.log.WithError(err).Warn("redis close failed")
		}
	})
	return convo.NewRedisSessionStore(client, a.cfg.SessionTTL)
}

func (a *app) reminderEngine() *reminder.Engine {
	return reminder.New(a.stores.Vehicles, a.stores.Insurance, a.stores.Parts, a.dispatcher, a.log)
}

// Close releases resources in reverse acquisition order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// logDispatcher is the dispatcher fallback for broker-less runs.
type logDispatcher struct {
	log *logrus.Entry
}

func (d *logDispatcher) Notify(ctx context.Context, chatID int64, text string) error {
	d.log.WithField("chat_id", chatID).WithField("text", text).Info("notification")
	return nil
}
