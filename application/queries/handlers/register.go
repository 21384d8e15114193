package handlers

import (
	"go.uber.org/zap"

	"github.com/Alexislovesarchitecture/contact-bubbles/application/ports"
	"github.com/Alexislovesarchitecture/contact-bubbles/application/queries"
	querybus "github.com/Alexislovesarchitecture/contact-bubbles/application/queries/bus"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/services"
)

// Register binds every query handler to the bus
func Register(
	queryBus *querybus.QueryBus,
	contacts ports.ContactRepository,
	relationships ports.RelationshipRepository,
	expander *services.LocalGraphExpander,
	logger *zap.Logger,
) error {
	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandler
	}{
		{queries.GetContactQuery{}, querybus.Typed(NewGetContactHandler(contacts, logger).Handle)},
		{queries.SearchContactsQuery{}, querybus.Typed(NewSearchContactsHandler(contacts, logger).Handle)},
		{queries.GetRelationshipQuery{}, querybus.Typed(NewGetRelationshipHandler(contacts, relationships, logger).Handle)},
		{queries.ListContactRelationshipsQuery{}, querybus.Typed(NewListContactRelationshipsHandler(contacts, relationships, logger).Handle)},
		{queries.GetLocalGraphQuery{}, querybus.Typed(NewGetLocalGraphHandler(expander, logger).Handle)},
	}

	for _, reg := range registrations {
		if err := queryBus.Register(reg.query, reg.handler); err != nil {
			return err
		}
	}
	return nil
}
