package app

import (
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/mrlynn/securehealth-sub006/internal/config"
	cryptoService "github.com/mrlynn/securehealth-sub006/internal/crypto/service"
	"github.com/mrlynn/securehealth-sub006/internal/records/access"
	"github.com/mrlynn/securehealth-sub006/internal/records/codec"
	"github.com/mrlynn/securehealth-sub006/internal/records/policy"
	recordsRepository "github.com/mrlynn/securehealth-sub006/internal/records/repository"
	recordsUsecase "github.com/mrlynn/securehealth-sub006/internal/records/usecase"
)

// PolicyRegistry returns the validated field policy registry.
func (c *Container) PolicyRegistry() (*policy.Registry, error) {
	c.policyRegistryInit.Do(func() {
		registry, err := policy.NewRegistry(policy.DefaultPatientPolicy())
		if err != nil {
			c.initErrors["policyRegistry"] = fmt.Errorf("invalid field policy: %w", err)
			return
		}
		c.policyRegistry = registry
	})
	if storedErr, exists := c.initErrors["policyRegistry"]; exists {
		return nil, storedErr
	}
	return c.policyRegistry, nil
}

// RecordCodec returns the codec for the configured encryption mode.
func (c *Container) RecordCodec() (codec.Codec, error) {
	c.recordCodecInit.Do(func() {
		recordCodec, err := c.initRecordCodec()
		if err != nil {
			c.initErrors["recordCodec"] = err
			return
		}
		c.recordCodec = recordCodec
	})
	if storedErr, exists := c.initErrors["recordCodec"]; exists {
		return nil, storedErr
	}
	return c.recordCodec, nil
}

// Projector returns the role projector with the default patient grants.
func (c *Container) Projector() (*access.Projector, error) {
	c.projectorInit.Do(func() {
		projector, err := access.NewProjector(access.DefaultPatientGrants(), access.BaselineFields())
		if err != nil {
			c.initErrors["projector"] = fmt.Errorf("invalid role grants: %w", err)
			return
		}
		c.projector = projector
	})
	if storedErr, exists := c.initErrors["projector"]; exists {
		return nil, storedErr
	}
	return c.projector, nil
}

// DocumentStore returns the patient document store instance.
func (c *Container) DocumentStore() (recordsUsecase.DocumentStore, error) {
	c.documentStoreInit.Do(func() {
		store, err := c.initDocumentStore()
		if err != nil {
			c.initErrors["documentStore"] = err
			return
		}
		c.documentStore = store
	})
	if storedErr, exists := c.initErrors["documentStore"]; exists {
		return nil, storedErr
	}
	return c.documentStore, nil
}

// RecordUseCase returns the patient record façade, metrics-decorated when
// metrics are enabled.
func (c *Container) RecordUseCase() (recordsUsecase.RecordUseCase, error) {
	c.recordUseCaseInit.Do(func() {
		useCase, err := c.initRecordUseCase()
		if err != nil {
			c.initErrors["recordUseCase"] = err
			return
		}
		c.recordUseCase = useCase
	})
	if storedErr, exists := c.initErrors["recordUseCase"]; exists {
		return nil, storedErr
	}
	return c.recordUseCase, nil
}

// initRecordCodec creates the codec for the configured encryption mode.
func (c *Container) initRecordCodec() (codec.Codec, error) {
	switch c.config.EncryptionMode {
	case config.EncryptionEnforced:
		registry, err := c.PolicyRegistry()
		if err != nil {
			return nil, err
		}
		vault, err := c.KeyVault()
		if err != nil {
			return nil, err
		}
		algorithm, err := c.dekAlgorithm()
		if err != nil {
			return nil, err
		}
		return codec.NewEncryptingCodec(
			registry,
			vault,
			cryptoService.NewAEADManager(),
			algorithm,
			c.Logger(),
		), nil
	case config.EncryptionDisabledForTesting:
		return codec.NewPlaintextCodec(c.Logger()), nil
	default:
		return nil, fmt.Errorf("unsupported encryption mode: %s", c.config.EncryptionMode)
	}
}

// initDocumentStore creates the document store for the configured driver.
func (c *Container) initDocumentStore() (recordsUsecase.DocumentStore, error) {
	switch c.config.DocumentStoreDriver {
	case "mongodb":
		c.mongoClientInit.Do(func() {
			client, err := mongo.Connect(options.Client().ApplyURI(c.config.MongoURI))
			if err != nil {
				c.initErrors["mongoClient"] = fmt.Errorf("failed to connect to mongodb: %w", err)
				return
			}
			c.mongoClient = client
		})
		if storedErr, exists := c.initErrors["mongoClient"]; exists {
			return nil, storedErr
		}
		return recordsRepository.NewMongoDocumentStore(c.mongoClient.Database(c.config.MongoDatabase)), nil
	case "memory":
		return recordsRepository.NewMemoryDocumentStore(), nil
	default:
		return nil, fmt.Errorf("unsupported document store driver: %s", c.config.DocumentStoreDriver)
	}
}

// initRecordUseCase creates the record façade with all its dependencies.
func (c *Container) initRecordUseCase() (recordsUsecase.RecordUseCase, error) {
	store, err := c.DocumentStore()
	if err != nil {
		return nil, err
	}
	recordCodec, err := c.RecordCodec()
	if err != nil {
		return nil, err
	}
	projector, err := c.Projector()
	if err != nil {
		return nil, err
	}
	audit, err := c.AuditUseCase()
	if err != nil {
		return nil, err
	}

	useCase := recordsUsecase.NewRecordUseCase(store, recordCodec, projector, audit, c.Logger())

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, err
	}
	return recordsUsecase.NewRecordUseCaseWithMetrics(useCase, businessMetrics), nil
}
