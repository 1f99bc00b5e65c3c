package app

import (
	"encoding/base64"
	"fmt"

	auditDomain "github.com/mrlynn/securehealth-sub006/internal/audit/domain"
	auditRepository "github.com/mrlynn/securehealth-sub006/internal/audit/repository"
	auditUsecase "github.com/mrlynn/securehealth-sub006/internal/audit/usecase"
)

// AuditSigner returns the HMAC signer for audit entries.
func (c *Container) AuditSigner() (*auditDomain.Signer, error) {
	c.auditSignerInit.Do(func() {
		signer, err := c.initAuditSigner()
		if err != nil {
			c.initErrors["auditSigner"] = err
			return
		}
		c.auditSigner = signer
	})
	if storedErr, exists := c.initErrors["auditSigner"]; exists {
		return nil, storedErr
	}
	return c.auditSigner, nil
}

// AuditLogRepository returns the audit log repository instance.
func (c *Container) AuditLogRepository() (auditUsecase.AuditLogRepository, error) {
	c.auditRepoInit.Do(func() {
		repo, err := c.initAuditLogRepository()
		if err != nil {
			c.initErrors["auditRepo"] = err
			return
		}
		c.auditRepo = repo
	})
	if storedErr, exists := c.initErrors["auditRepo"]; exists {
		return nil, storedErr
	}
	return c.auditRepo, nil
}

// AuditUseCase returns the audit recorder / verifier / cleaner.
func (c *Container) AuditUseCase() (auditUsecase.AuditUseCase, error) {
	c.auditUseCaseInit.Do(func() {
		useCase, err := c.initAuditUseCase()
		if err != nil {
			c.initErrors["auditUseCase"] = err
			return
		}
		c.auditUseCase = useCase
	})
	if storedErr, exists := c.initErrors["auditUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditUseCase, nil
}

// initAuditSigner decodes AUDIT_SIGNING_KEY and creates the signer.
func (c *Container) initAuditSigner() (*auditDomain.Signer, error) {
	if c.config.AuditSigningKey == "" {
		return nil, fmt.Errorf("AUDIT_SIGNING_KEY is required")
	}
	secret, err := base64.StdEncoding.DecodeString(c.config.AuditSigningKey)
	if err != nil {
		return nil, fmt.Errorf("AUDIT_SIGNING_KEY must be base64: %w", err)
	}
	signer, err := auditDomain.NewSigner(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit signer: %w", err)
	}
	return signer, nil
}

// initAuditLogRepository creates the audit log repository instance.
func (c *Container) initAuditLogRepository() (auditUsecase.AuditLogRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit log repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return auditRepository.NewMySQLAuditLogRepository(db), nil
	case "postgres":
		return auditRepository.NewPostgreSQLAuditLogRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAuditUseCase creates the audit use case with all its dependencies.
func (c *Container) initAuditUseCase() (auditUsecase.AuditUseCase, error) {
	repo, err := c.AuditLogRepository()
	if err != nil {
		return nil, err
	}
	signer, err := c.AuditSigner()
	if err != nil {
		return nil, err
	}
	return auditUsecase.NewAuditUseCase(repo, signer, c.Logger()), nil
}
