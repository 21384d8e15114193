package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"github.com/Alexislovesarchitecture/contact-bubbles/application/commands/bus"
	commandhandlers "github.com/Alexislovesarchitecture/contact-bubbles/application/commands/handlers"
	"github.com/Alexislovesarchitecture/contact-bubbles/application/ports"
	querybus "github.com/Alexislovesarchitecture/contact-bubbles/application/queries/bus"
	queryhandlers "github.com/Alexislovesarchitecture/contact-bubbles/application/queries/handlers"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/services"
	"github.com/Alexislovesarchitecture/contact-bubbles/infrastructure/config"
	"github.com/Alexislovesarchitecture/contact-bubbles/infrastructure/messaging"
	"github.com/Alexislovesarchitecture/contact-bubbles/infrastructure/observability"
	"github.com/Alexislovesarchitecture/contact-bubbles/infrastructure/persistence"
	"github.com/Alexislovesarchitecture/contact-bubbles/infrastructure/persistence/dynamodb"
	"github.com/Alexislovesarchitecture/contact-bubbles/infrastructure/persistence/memory"
	"github.com/Alexislovesarchitecture/contact-bubbles/infrastructure/persistence/sqlite"
	"github.com/Alexislovesarchitecture/contact-bubbles/interfaces/http/rest"
	"github.com/Alexislovesarchitecture/contact-bubbles/pkg/auth"
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

const (
	metricsNamespace = "contacts"
	serviceName      = "contact-bubbles"
	tokenTTL         = 24 * time.Hour
)

// Logging pairs the root logger with its runtime-adjustable level
type Logging struct {
	Logger *zap.Logger
	Level  zap.AtomicLevel
}

// Store is the repository pair selected by STORE_DRIVER
type Store struct {
	Contacts      ports.ContactRepository
	Relationships ports.RelationshipRepository
	Health        ports.HealthChecker
}

// ProvideLogging builds the logger from configuration
func ProvideLogging(cfg *config.Config) (*Logging, func(), error) {
	logger, level, err := config.NewLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	cleanup := func() {
		_ = logger.Sync()
	}
	return &Logging{Logger: logger, Level: level}, cleanup, nil
}

// ProvideLogger extracts the logger
func ProvideLogger(l *Logging) *zap.Logger {
	return l.Logger
}

// ProvideLogLevel extracts the adjustable level
func ProvideLogLevel(l *Logging) zap.AtomicLevel {
	return l.Level
}

// ProvideMetrics creates the Prometheus collector, or nil when metrics are off
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector(metricsNamespace)
}

// ProvideTracing installs the OTLP tracer provider when tracing is enabled
func ProvideTracing(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	if !cfg.EnableTracing {
		return nil, func() {}, nil
	}
	tp, err := observability.InitTracing(ctx, serviceName, cfg.Environment, cfg.OTLPEndpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideAWSConfig creates AWS configuration. Loading does not contact AWS.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideStore opens the configured backing store
func ProvideStore(
	ctx context.Context,
	cfg *config.Config,
	awsCfg aws.Config,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		cleanup := func() {
			if err := db.Close(); err != nil {
				logger.Warn("Failed to close database", zap.Error(err))
			}
		}
		return &Store{
			Contacts:      sqlite.NewContactRepository(db),
			Relationships: sqlite.NewRelationshipRepository(db),
			Health:        db,
		}, cleanup, nil

	case config.DriverDynamoDB:
		client := awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
			if cfg.DynamoDBEndpoint != "" {
				o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
			}
		})
		store := dynamodb.NewStore(client, dynamodb.Config{
			TableName:       cfg.DynamoDBTable,
			EdgeIndexName:   cfg.EdgeIndexName,
			TargetIndexName: cfg.TargetIndexName,
		}, logger)

		breakerCfg := persistence.DefaultCircuitBreakerConfig("dynamodb")
		if metrics != nil {
			breakerCfg.OnTransition = metrics.ObserveBreaker
		}
		cb := persistence.NewCircuitBreaker(breakerCfg, logger)
		return &Store{
			Contacts:      persistence.NewCircuitBreakerContactRepository(store.Contacts(), cb),
			Relationships: persistence.NewCircuitBreakerRelationshipRepository(store.Relationships(), cb),
			Health:        store,
		}, func() {}, nil

	case config.DriverMemory:
		store := memory.NewStore()
		return &Store{
			Contacts:      store.Contacts(),
			Relationships: store.Relationships(),
			Health:        store,
		}, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// ProvideContactRepository extracts the contact repository
func ProvideContactRepository(s *Store) ports.ContactRepository {
	return s.Contacts
}

// ProvideRelationshipRepository extracts the relationship repository
func ProvideRelationshipRepository(s *Store) ports.RelationshipRepository {
	return s.Relationships
}

// ProvideHealthChecker extracts the store health check
func ProvideHealthChecker(s *Store) ports.HealthChecker {
	return s.Health
}

// ProvideEventPublisher publishes to EventBridge when events are enabled and
// to the log otherwise.
func ProvideEventPublisher(
	cfg *config.Config,
	awsCfg aws.Config,
	metrics *observability.Collector,
	logger *zap.Logger,
) ports.EventPublisher {
	var publisher ports.EventPublisher
	if cfg.EnableEvents {
		publisher = messaging.NewEventBridgePublisher(awseventbridge.NewFromConfig(awsCfg), cfg.EventBusName, logger)
	} else {
		publisher = messaging.NewLogPublisher(logger)
	}
	if metrics != nil {
		publisher = messaging.NewInstrumentedPublisher(publisher, metrics)
	}
	return publisher
}

// ProvideLocalGraphExpander builds the expander over the repositories
func ProvideLocalGraphExpander(contacts ports.ContactRepository, relationships ports.RelationshipRepository) *services.LocalGraphExpander {
	lookup := persistence.NewGraphLookup(contacts, relationships)
	return services.NewLocalGraphExpander(lookup, lookup)
}

// ProvideCommandBus creates the command bus with every handler registered
func ProvideCommandBus(
	contacts ports.ContactRepository,
	relationships ports.RelationshipRepository,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(bus.LoggingMiddleware(logger))
	if err := commandhandlers.Register(commandBus, contacts, relationships, publisher, logger); err != nil {
		return nil, fmt.Errorf("failed to register command handlers: %w", err)
	}
	return commandBus, nil
}

// ProvideQueryBus creates the query bus with every handler registered
func ProvideQueryBus(
	contacts ports.ContactRepository,
	relationships ports.RelationshipRepository,
	expander *services.LocalGraphExpander,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	var middleware []querybus.Middleware
	if metrics != nil {
		middleware = append(middleware, querybus.MetricsMiddleware(metrics))
	}
	queryBus := querybus.NewQueryBus(middleware...)
	if err := queryhandlers.Register(queryBus, contacts, relationships, expander, logger); err != nil {
		return nil, fmt.Errorf("failed to register query handlers: %w", err)
	}
	return queryBus, nil
}

// ProvideJWTService returns nil when authentication is disabled
func ProvideJWTService(cfg *config.Config) (*auth.JWTService, error) {
	if !cfg.EnableAuth {
		return nil, nil
	}
	return auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, tokenTTL)
}

// ProvideErrorHandler creates the HTTP error renderer
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	health ports.HealthChecker,
	metrics *observability.Collector,
	jwtService *auth.JWTService,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(commandBus, queryBus, health, metrics, errorHandler, rest.RouterConfig{
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		JWT:            jwtService,
		EnableTracing:  cfg.EnableTracing,
		ServiceName:    serviceName,
	}, logger)
}
