package di

import (
	"familytree-backend/application/commands/bus"
	"familytree-backend/application/ports"
	querybus "familytree-backend/application/queries/bus"
	domainconfig "familytree-backend/domain/config"
	"familytree-backend/infrastructure/config"
	"familytree-backend/infrastructure/persistence/dynamodb"
	"familytree-backend/pkg/auth"
	"familytree-backend/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	DomainConfig     *domainconfig.DomainConfig
	Logger           *zap.Logger
	AccountRepo      ports.AccountRepository
	MemberRepo       ports.ManualMemberRepository
	RelationshipRepo ports.RelationshipRepository
	EventBus         ports.EventBus
	EventStore       ports.EventStore
	OutboxProcessor  *dynamodb.OutboxProcessor
	Handlers         *Handlers
	CommandBus       *bus.CommandBus
	QueryBus         *querybus.QueryBus
	Cache            ports.Cache
	Metrics          *observability.Metrics
	Tracer           *observability.Tracer
	RateLimiter      *auth.DistributedRateLimiter
	JWTValidator     *auth.JWTValidator
	JWTGenerator     *auth.JWTGenerator
}
