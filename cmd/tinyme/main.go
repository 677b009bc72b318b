package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	matching "github.com/mmd-nemati/SE1-TinyMe"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	matching.SetLogger(log)

	cfg, err := matching.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	securities := matching.NewSecurityRepository()
	brokers := matching.NewBrokerRepository()
	shareholders := matching.NewShareholderRepository()
	if err := bootstrap(cfg, securities, brokers, shareholders); err != nil {
		log.Fatal("failed to bootstrap reference data", zap.Error(err))
	}

	publisher := matching.NewKafkaEventPublisher(cfg.Kafka.Brokers, cfg.Kafka.EventTopic)
	defer func() { _ = publisher.Close() }()

	handlers := matching.NewHandlers(securities, brokers, shareholders, publisher)
	engine := matching.NewEngine(handlers)
	for _, security := range securities.All() {
		if err := engine.AddSecurity(security); err != nil {
			log.Fatal("failed to register security", zap.String("isin", security.ISIN), zap.Error(err))
		}
	}

	reader := matching.NewKafkaRequestReader(cfg.Kafka.Brokers, cfg.Kafka.RequestTopic, cfg.Kafka.ConsumerGroup)
	defer func() { _ = reader.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("engine started",
		zap.String("version", matching.EngineVersion),
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("request_topic", cfg.Kafka.RequestTopic),
		zap.String("event_topic", cfg.Kafka.EventTopic))

	for {
		req, err := reader.ReadRequest(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Error("failed to read request", zap.Error(err))
			continue
		}

		if err := engine.EnqueueRequest(ctx, req); err != nil {
			if errors.Is(err, matching.ErrShutdown) {
				break
			}
			log.Warn("request not routed",
				zap.String("isin", req.SecurityISIN), zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := engine.Shutdown(shutdownCtx); err != nil {
		log.Error("engine shutdown incomplete", zap.Error(err))
		os.Exit(1)
	}
	log.Info("engine stopped")
}

// bootstrap seeds the repositories from the colon-separated config entries.
func bootstrap(cfg *matching.Config, securities *matching.SecurityRepository,
	brokers *matching.BrokerRepository, shareholders *matching.ShareholderRepository) error {
	for _, entry := range cfg.Bootstrap.Securities {
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return errors.New("malformed security entry: " + entry)
		}
		tick, err := decimal.NewFromString(parts[1])
		if err != nil {
			return err
		}
		lot, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return err
		}
		securities.Add(matching.NewSecurity(parts[0], tick, lot))
	}

	for _, entry := range cfg.Bootstrap.Brokers {
		parts := strings.Split(entry, ":")
		if len(parts) != 2 {
			return errors.New("malformed broker entry: " + entry)
		}
		id, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return err
		}
		credit, err := decimal.NewFromString(parts[1])
		if err != nil {
			return err
		}
		brokers.Add(matching.NewBroker(id, credit))
	}

	for _, entry := range cfg.Bootstrap.Shareholders {
		id, err := strconv.ParseUint(entry, 10, 64)
		if err != nil {
			return err
		}
		shareholders.Add(matching.NewShareholder(id))
	}

	for _, entry := range cfg.Bootstrap.Positions {
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return errors.New("malformed position entry: " + entry)
		}
		id, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return err
		}
		quantity, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return err
		}
		shareholder := shareholders.FindByID(id)
		security := securities.FindByISIN(parts[1])
		if shareholder == nil || security == nil {
			return errors.New("position references unknown shareholder or security: " + entry)
		}
		shareholder.IncPosition(security, quantity)
	}

	return nil
}
