package handlers

import (
	"go.uber.org/zap"

	"github.com/Alexislovesarchitecture/contact-bubbles/application/commands"
	"github.com/Alexislovesarchitecture/contact-bubbles/application/commands/bus"
	"github.com/Alexislovesarchitecture/contact-bubbles/application/ports"
)

// Register binds every command handler to the bus
func Register(
	commandBus *bus.CommandBus,
	contacts ports.ContactRepository,
	relationships ports.RelationshipRepository,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) error {
	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.CreateContactCommand{}, bus.Typed(NewCreateContactHandler(contacts, publisher, logger).Handle)},
		{commands.UpdateContactCommand{}, bus.Typed(NewUpdateContactHandler(contacts, publisher, logger).Handle)},
		{commands.DeleteContactCommand{}, bus.Typed(NewDeleteContactHandler(contacts, relationships, publisher, logger).Handle)},
		{commands.CreateRelationshipCommand{}, bus.Typed(NewCreateRelationshipHandler(contacts, relationships, publisher, logger).Handle)},
		{commands.DeleteRelationshipCommand{}, bus.Typed(NewDeleteRelationshipHandler(relationships, publisher, logger).Handle)},
	}

	for _, reg := range registrations {
		if err := commandBus.Register(reg.cmd, reg.handler); err != nil {
			return err
		}
	}
	return nil
}
