// Package bootstrap builds the chat engine and its adapters from config.
// Both the API server and the CLI start from here.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/PabloGalante/vibe-agent/internal/adapters/classifier"
	"github.com/PabloGalante/vibe-agent/internal/adapters/notify"
	firestorestore "github.com/PabloGalante/vibe-agent/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/vibe-agent/internal/adapters/storage/memory"
	redisstore "github.com/PabloGalante/vibe-agent/internal/adapters/storage/redis"
	"github.com/PabloGalante/vibe-agent/internal/adapters/storage/sqlstore"
	"github.com/PabloGalante/vibe-agent/internal/app/analysis"
	"github.com/PabloGalante/vibe-agent/internal/app/chat"
	"github.com/PabloGalante/vibe-agent/internal/app/questions"
	"github.com/PabloGalante/vibe-agent/internal/app/report"
	"github.com/PabloGalante/vibe-agent/internal/app/schedule"
	"github.com/PabloGalante/vibe-agent/internal/app/sentiment"
	"github.com/PabloGalante/vibe-agent/internal/config"
	"github.com/PabloGalante/vibe-agent/internal/domain"
	"github.com/PabloGalante/vibe-agent/internal/observability"
)

type App struct {
	Analyzer  *sentiment.Analyzer
	Chat      *chat.Service
	Reports   *report.Service
	Scheduler *schedule.Scheduler
	Sessions  domain.SessionStore
	Sink      domain.Sink

	closers []func() error
}

// New wires every component selected by cfg. On error, whatever was already
// opened is closed again.
func New(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	app := &App{}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	log := observability.Logger()

	lex := sentiment.DefaultLexicon()
	if cfg.LexiconFile != "" {
		lex, err = sentiment.LoadLexicon(cfg.LexiconFile)
		if err != nil {
			return nil, err
		}
		log.Info("[LEXICON] loaded", "file", cfg.LexiconFile)
	}

	model, err := newModel(ctx, cfg, lex)
	if err != nil {
		return nil, err
	}
	log.Info("[CLASSIFIER] selected", "model", model.Name())
	app.Analyzer = sentiment.NewAnalyzer(model, lex, cfg.ClassifierTimeout)

	if err := app.openSink(ctx, cfg); err != nil {
		return nil, err
	}
	if err := app.openSessions(ctx, cfg); err != nil {
		return nil, err
	}

	// Left as a nil interface when Kafka is off; a typed nil would be called.
	var notifier domain.EscalationNotifier
	if len(cfg.KafkaBrokers) > 0 {
		kn, err := notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, kn.Close)
		notifier = kn
		log.Info("[NOTIFY] publishing escalations to kafka", "topic", cfg.KafkaTopic)
	}

	builder := analysis.NewBuilder(app.Sink, notifier, lex.CriticalTopics)
	app.Chat = chat.NewService(
		app.Analyzer,
		questions.NewSelector(questions.Bank, nil),
		builder,
		app.Sessions,
		app.Sink,
	)
	app.Reports = report.NewService(app.Sink)
	app.Scheduler = schedule.NewScheduler(app.Sessions, app.Reports, cfg.SessionTTL)

	return app, nil
}

func newModel(ctx context.Context, cfg *config.Config, lex *sentiment.Lexicon) (domain.SentimentModel, error) {
	switch cfg.Classifier {
	case "gemini":
		return classifier.NewGeminiModel(ctx, classifier.GeminiConfig{
			ProjectID: cfg.GCPProjectID,
			Location:  cfg.GCPLocation,
			ModelName: cfg.ModelName,
			RPS:       cfg.ClassifierRPS,
		})
	case "openai":
		return classifier.NewOpenAIModel(cfg.OpenAIKey, cfg.OpenAIModel, cfg.ClassifierRPS)
	case "", "rules":
		return sentiment.NewRuleModel(lex), nil
	default:
		return nil, fmt.Errorf("unknown classifier %q", cfg.Classifier)
	}
}

func (a *App) openSink(ctx context.Context, cfg *config.Config) error {
	log := observability.Logger()

	switch cfg.StorageBackend {
	case "firestore":
		fs, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return fmt.Errorf("error initializing Firestore store: %w", err)
		}
		a.closers = append(a.closers, fs.Close)
		a.Sink = fs
		log.Info("[STORE] Using Firestore storage", "project", cfg.GCPProjectID)
	case "sql":
		st, err := sqlstore.Open(ctx, cfg.SQLDriver, cfg.SQLDSN)
		if err != nil {
			return fmt.Errorf("error initializing SQL store: %w", err)
		}
		a.closers = append(a.closers, st.Close)
		a.Sink = st
		log.Info("[STORE] Using SQL storage", "driver", cfg.SQLDriver)
	case "", "memory":
		a.Sink = memstore.NewSink()
		log.Info("[STORE] Using in-memory storage")
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
	return nil
}

func (a *App) openSessions(ctx context.Context, cfg *config.Config) error {
	log := observability.Logger()

	switch cfg.SessionBackend {
	case "redis":
		rs, err := redisstore.NewSessionStore(ctx, redisstore.Config{
			Addr:       cfg.RedisAddr,
			Password:   cfg.RedisPassword,
			DB:         cfg.RedisDB,
			SessionTTL: cfg.SessionTTL,
		})
		if err != nil {
			return fmt.Errorf("error initializing Redis session store: %w", err)
		}
		a.closers = append(a.closers, rs.Close)
		a.Sessions = rs
		log.Info("[SESSIONS] Using Redis session store", "addr", cfg.RedisAddr)
	case "", "memory":
		a.Sessions = memstore.NewSessionStore()
		log.Info("[SESSIONS] Using in-memory session store")
	default:
		return fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
	return nil
}

// Close releases backend connections in reverse opening order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
