package di

import (
	"go.uber.org/zap"

	"github.com/Alexislovesarchitecture/contact-bubbles/application/commands/bus"
	"github.com/Alexislovesarchitecture/contact-bubbles/application/ports"
	querybus "github.com/Alexislovesarchitecture/contact-bubbles/application/queries/bus"
	"github.com/Alexislovesarchitecture/contact-bubbles/infrastructure/config"
	"github.com/Alexislovesarchitecture/contact-bubbles/infrastructure/observability"
	"github.com/Alexislovesarchitecture/contact-bubbles/interfaces/http/rest"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	LogLevel      zap.AtomicLevel
	Contacts      ports.ContactRepository
	Relationships ports.RelationshipRepository
	Health        ports.HealthChecker
	Publisher     ports.EventPublisher
	CommandBus    *bus.CommandBus
	QueryBus      *querybus.QueryBus
	Metrics       *observability.Collector
	Tracing       *observability.TracerProvider
	Router        *rest.Router
}
