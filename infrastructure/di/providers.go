package di

import (
	"context"
	"fmt"
	"time"

	"familytree-backend/application/commands"
	"familytree-backend/application/commands/bus"
	"familytree-backend/application/ports"
	"familytree-backend/application/queries"
	querybus "familytree-backend/application/queries/bus"
	queries_handlers "familytree-backend/application/queries/handlers"
	"familytree-backend/application/services"
	domainconfig "familytree-backend/domain/config"
	"familytree-backend/domain/events"
	"familytree-backend/infrastructure/config"
	"familytree-backend/infrastructure/messaging/eventbridge"
	"familytree-backend/infrastructure/persistence/dynamodb"
	"familytree-backend/pkg/auth"
	"familytree-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
}

// ProvideAWSConfig creates AWS configuration. With tracing enabled
// every AWS call shows up as a subsegment of the request trace.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, err
	}

	if cfg.EnableTracing {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}

	return awsCfg, nil
}

// ProvideTracer creates the request tracer. Disabled tracing yields a
// nil tracer and the router skips the tracing middleware.
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	if !cfg.EnableTracing {
		return nil
	}
	return observability.NewTracer("familytree-backend")
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideDomainConfig selects the business rule set for the environment
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return domainconfig.LoadDomainConfig(cfg.Environment)
}

// ProvideAccountRepository creates an account repository
func ProvideAccountRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.AccountRepository {
	return dynamodb.NewAccountRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideManualMemberRepository creates a manual member repository
func ProvideManualMemberRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ManualMemberRepository {
	return dynamodb.NewManualMemberRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideRelationshipRepository creates a relationship edge repository
func ProvideRelationshipRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.RelationshipRepository {
	return dynamodb.NewRelationshipRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideEventBus creates an event bus
func ProvideEventBus(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	return eventbridge.NewEventBridgePublisher(
		client,
		cfg.EventBusName,
		logger,
	)
}

// ProvideEventPublisher creates an event publisher (adapter for EventBus)
func ProvideEventPublisher(eventBus ports.EventBus) ports.EventPublisher {
	return &eventPublisherAdapter{eventBus: eventBus}
}

// eventPublisherAdapter adapts EventBus to EventPublisher interface
type eventPublisherAdapter struct {
	eventBus ports.EventBus
}

func (a *eventPublisherAdapter) Publish(ctx context.Context, event events.DomainEvent) error {
	return a.eventBus.Publish(ctx, event)
}

func (a *eventPublisherAdapter) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	return a.eventBus.PublishBatch(ctx, batch)
}

// ProvideDynamoDBEventStore creates the concrete event store. The outbox
// processor needs the concrete type for its pending-event scan.
func ProvideDynamoDBEventStore(client *awsdynamodb.Client, cfg *config.Config) *dynamodb.DynamoDBEventStore {
	return dynamodb.NewDynamoDBEventStore(client, cfg.DynamoDBTable)
}

// ProvideEventStore exposes the event store through its port
func ProvideEventStore(store *dynamodb.DynamoDBEventStore) ports.EventStore {
	return store
}

// ProvideOutboxProcessor creates the pending-event republisher
func ProvideOutboxProcessor(
	store *dynamodb.DynamoDBEventStore,
	eventPublisher ports.EventPublisher,
	logger *zap.Logger,
) *dynamodb.OutboxProcessor {
	return dynamodb.NewOutboxProcessor(store, eventPublisher, logger)
}

// ProvideMetrics creates metrics instance. With metrics disabled the
// instance still exists but drops everything.
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config) *observability.Metrics {
	namespace := fmt.Sprintf("FamilyTree/%s", cfg.Environment)
	if !cfg.EnableMetrics {
		return observability.NewMetrics(namespace, nil)
	}
	return observability.NewMetrics(namespace, client)
}

// ProvideDistributedRateLimiter creates a distributed rate limiter
func ProvideDistributedRateLimiter(client *awsdynamodb.Client, cfg *config.Config) *auth.DistributedRateLimiter {
	return auth.NewDistributedRateLimiter(
		client,
		cfg.DynamoDBTable,
		100,           // 100 requests
		1*time.Minute, // per minute
		"API",         // key prefix for API rate limiting
	)
}

// ProvideDistributedLock creates a distributed lock instance
func ProvideDistributedLock(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) *dynamodb.DistributedLock {
	return dynamodb.NewDistributedLock(client, cfg.DynamoDBTable, logger)
}

// ProvideResourceLocker adapts the distributed lock to the command layer
func ProvideResourceLocker(lock *dynamodb.DistributedLock) commands.ResourceLocker {
	return &resourceLockerAdapter{lock: lock}
}

// resourceLockerAdapter narrows *dynamodb.Lock to the ResourceLock interface
type resourceLockerAdapter struct {
	lock *dynamodb.DistributedLock
}

func (a *resourceLockerAdapter) TryAcquireLock(ctx context.Context, resource, owner string, duration, timeout time.Duration) (commands.ResourceLock, error) {
	held, err := a.lock.TryAcquireLock(ctx, resource, owner, duration, timeout)
	if err != nil {
		return nil, err
	}
	return held, nil
}

// ProvideJWTValidator creates the token validator used by the auth middleware
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" && !cfg.IsProduction() {
		secret = "local-development-secret"
	}

	return auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     secret,
		Issuer:        cfg.JWTIssuer,
	})
}

// ProvideJWTGenerator creates the token issuer used on registration
func ProvideJWTGenerator(cfg *config.Config) (*auth.JWTGenerator, error) {
	secret := cfg.JWTSecret
	if secret == "" && !cfg.IsProduction() {
		secret = "local-development-secret"
	}

	return auth.NewJWTGenerator(auth.JWTGeneratorConfig{
		SigningMethod: "HS256",
		SecretKey:     secret,
		Issuer:        cfg.JWTIssuer,
		ExpiryTime:    24 * time.Hour,
	})
}

// ProvidePlaceholderAugmenter creates the placeholder parent service
func ProvidePlaceholderAugmenter(logger *zap.Logger) *services.PlaceholderAugmenter {
	return services.NewPlaceholderAugmenter(logger)
}

// Handlers groups the concrete command and query handlers. Mutation
// endpoints that need the created entity in the response call these
// directly; everything else goes through the buses.
type Handlers struct {
	RegisterAccount    *commands.RegisterAccountHandler
	CreateRelationship *commands.CreateRelationshipHandler
	DeleteRelationship *commands.DeleteRelationshipHandler
	AddManualMember    *commands.AddManualMemberHandler
	LinkManualMember   *commands.LinkManualMemberHandler
	ReconcileEdges     *commands.ReconcileEdgesHandler
	GetFamilyTree      *queries_handlers.GetFamilyTreeHandler
	GetAccount         *queries_handlers.GetAccountHandler
	SearchAccounts     *queries_handlers.SearchAccountsHandler
	ListRelationships  *queries_handlers.ListRelationshipsHandler
	ListManualMembers  *queries_handlers.ListManualMembersHandler
}

// ProvideHandlers wires all application handlers
func ProvideHandlers(
	accountRepo ports.AccountRepository,
	memberRepo ports.ManualMemberRepository,
	relationshipRepo ports.RelationshipRepository,
	eventStore ports.EventStore,
	eventPublisher ports.EventPublisher,
	cache ports.Cache,
	locker commands.ResourceLocker,
	augmenter *services.PlaceholderAugmenter,
	domainCfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		RegisterAccount:    commands.NewRegisterAccountHandler(accountRepo, eventStore, eventPublisher, logger),
		CreateRelationship: commands.NewCreateRelationshipHandler(accountRepo, relationshipRepo, eventStore, eventPublisher, cache, logger),
		DeleteRelationship: commands.NewDeleteRelationshipHandler(relationshipRepo, eventStore, eventPublisher, cache, logger),
		AddManualMember:    commands.NewAddManualMemberHandler(memberRepo, eventStore, eventPublisher, cache, logger),
		LinkManualMember:   commands.NewLinkManualMemberHandler(accountRepo, memberRepo, relationshipRepo, eventStore, eventPublisher, cache, locker, logger),
		ReconcileEdges:     commands.NewReconcileEdgesHandler(accountRepo, relationshipRepo, eventStore, eventPublisher, cache, logger),
		GetFamilyTree:      queries_handlers.NewGetFamilyTreeHandler(accountRepo, memberRepo, relationshipRepo, augmenter, cache, domainCfg, logger),
		GetAccount:         queries_handlers.NewGetAccountHandler(accountRepo, logger),
		SearchAccounts:     queries_handlers.NewSearchAccountsHandler(accountRepo, logger),
		ListRelationships:  queries_handlers.NewListRelationshipsHandler(accountRepo, relationshipRepo, logger),
		ListManualMembers:  queries_handlers.NewListManualMembersHandler(memberRepo, logger),
	}
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(h *Handlers) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus()

	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.RegisterAccountCommand{}, &CommandHandlerAdapter{
			handler: func(ctx context.Context, cmd bus.Command) error {
				typed, ok := cmd.(commands.RegisterAccountCommand)
				if !ok {
					return fmt.Errorf("invalid command type %T", cmd)
				}
				_, err := h.RegisterAccount.Handle(ctx, typed)
				return err
			},
		}},
		{commands.CreateRelationshipCommand{}, &CommandHandlerAdapter{
			handler: func(ctx context.Context, cmd bus.Command) error {
				typed, ok := cmd.(commands.CreateRelationshipCommand)
				if !ok {
					return fmt.Errorf("invalid command type %T", cmd)
				}
				_, err := h.CreateRelationship.Handle(ctx, typed)
				return err
			},
		}},
		{commands.DeleteRelationshipCommand{}, &CommandHandlerAdapter{
			handler: func(ctx context.Context, cmd bus.Command) error {
				typed, ok := cmd.(commands.DeleteRelationshipCommand)
				if !ok {
					return fmt.Errorf("invalid command type %T", cmd)
				}
				return h.DeleteRelationship.Handle(ctx, typed)
			},
		}},
		{commands.AddManualMemberCommand{}, &CommandHandlerAdapter{
			handler: func(ctx context.Context, cmd bus.Command) error {
				typed, ok := cmd.(commands.AddManualMemberCommand)
				if !ok {
					return fmt.Errorf("invalid command type %T", cmd)
				}
				_, err := h.AddManualMember.Handle(ctx, typed)
				return err
			},
		}},
		{commands.LinkManualMemberCommand{}, &CommandHandlerAdapter{
			handler: func(ctx context.Context, cmd bus.Command) error {
				typed, ok := cmd.(commands.LinkManualMemberCommand)
				if !ok {
					return fmt.Errorf("invalid command type %T", cmd)
				}
				_, err := h.LinkManualMember.Handle(ctx, typed)
				return err
			},
		}},
		{commands.ReconcileEdgesCommand{}, &CommandHandlerAdapter{
			handler: func(ctx context.Context, cmd bus.Command) error {
				typed, ok := cmd.(commands.ReconcileEdgesCommand)
				if !ok {
					return fmt.Errorf("invalid command type %T", cmd)
				}
				_, err := h.ReconcileEdges.Handle(ctx, typed)
				return err
			},
		}},
	}

	for _, r := range registrations {
		if err := commandBus.Register(r.cmd, r.handler); err != nil {
			return nil, err
		}
	}

	return commandBus, nil
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// metricsAdapter narrows *observability.Metrics to the query bus interface
type metricsAdapter struct {
	metrics *observability.Metrics
}

func (a *metricsAdapter) StartTimer(metric, label string) querybus.Timer {
	return a.metrics.StartTimer(metric, label)
}

func (a *metricsAdapter) Increment(metric, label string) {
	a.metrics.Increment(metric, label)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(h *Handlers, metrics *observability.Metrics) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()
	instrument := querybus.NewMetricsMiddleware(&metricsAdapter{metrics: metrics})

	// The tree query does the heavy traversal, so it carries metrics
	treeHandler := instrument.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			typed, ok := query.(queries.GetFamilyTreeQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return h.GetFamilyTree.Handle(ctx, typed)
		},
	})
	if err := queryBus.Register(queries.GetFamilyTreeQuery{}, treeHandler); err != nil {
		return nil, err
	}

	if err := queryBus.Register(queries.GetAccountQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			typed, ok := query.(queries.GetAccountQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return h.GetAccount.Handle(ctx, typed)
		},
	}); err != nil {
		return nil, err
	}

	if err := queryBus.Register(queries.SearchAccountsQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			typed, ok := query.(queries.SearchAccountsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return h.SearchAccounts.Handle(ctx, typed)
		},
	}); err != nil {
		return nil, err
	}

	if err := queryBus.Register(queries.ListRelationshipsQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			typed, ok := query.(queries.ListRelationshipsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return h.ListRelationships.Handle(ctx, typed)
		},
	}); err != nil {
		return nil, err
	}

	if err := queryBus.Register(queries.ListManualMembersQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			typed, ok := query.(queries.ListManualMembersQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return h.ListManualMembers.Handle(ctx, typed)
		},
	}); err != nil {
		return nil, err
	}

	return queryBus, nil
}

// ProvideInMemoryCache creates a simple in-memory cache
// In production, this would be Redis or similar
func ProvideInMemoryCache() ports.Cache {
	return NewInMemoryCache()
}
