package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/mrlynn/securehealth-sub006/internal/crypto/domain"
	cryptoRepository "github.com/mrlynn/securehealth-sub006/internal/crypto/repository"
	cryptoService "github.com/mrlynn/securehealth-sub006/internal/crypto/service"
	cryptoUsecase "github.com/mrlynn/securehealth-sub006/internal/crypto/usecase"
)

// MasterKeyChain returns the master key chain loaded from environment variables.
func (c *Container) MasterKeyChain() (*cryptoDomain.MasterKeyChain, error) {
	c.masterKeyChainInit.Do(func() {
		chain, err := cryptoDomain.LoadMasterKeyChainFromEnv()
		if err != nil {
			c.initErrors["masterKeyChain"] = fmt.Errorf("failed to load master key chain: %w", err)
			return
		}
		c.masterKeyChain = chain
	})
	if storedErr, exists := c.initErrors["masterKeyChain"]; exists {
		return nil, storedErr
	}
	return c.masterKeyChain, nil
}

// KeyWrapper returns the DEK wrapper. When KMS_KEY_URI is configured a
// gocloud.dev keeper wraps DEKs; otherwise the local master key chain does.
func (c *Container) KeyWrapper() (cryptoService.KeyWrapper, error) {
	c.keyWrapperInit.Do(func() {
		wrapper, err := c.initKeyWrapper()
		if err != nil {
			c.initErrors["keyWrapper"] = err
			return
		}
		c.keyWrapper = wrapper
	})
	if storedErr, exists := c.initErrors["keyWrapper"]; exists {
		return nil, storedErr
	}
	return c.keyWrapper, nil
}

// DekRepository returns the DEK repository instance.
func (c *Container) DekRepository() (cryptoUsecase.DekRepository, error) {
	c.dekRepoInit.Do(func() {
		repo, err := c.initDekRepository()
		if err != nil {
			c.initErrors["dekRepo"] = err
			return
		}
		c.dekRepo = repo
	})
	if storedErr, exists := c.initErrors["dekRepo"]; exists {
		return nil, storedErr
	}
	return c.dekRepo, nil
}

// KeyVault returns the key vault client used by the record codec.
func (c *Container) KeyVault() (cryptoUsecase.KeyVault, error) {
	c.keyVaultInit.Do(func() {
		vault, err := c.initKeyVault()
		if err != nil {
			c.initErrors["keyVault"] = err
			return
		}
		c.keyVault = vault
	})
	if storedErr, exists := c.initErrors["keyVault"]; exists {
		return nil, storedErr
	}
	return c.keyVault, nil
}

// dekAlgorithm parses the configured AEAD algorithm.
func (c *Container) dekAlgorithm() (cryptoDomain.Algorithm, error) {
	algorithm, err := cryptoDomain.ParseAlgorithm(c.config.DekAlgorithm)
	if err != nil {
		return "", fmt.Errorf("invalid DEK_ALGORITHM: %w", err)
	}
	return algorithm, nil
}

// initKeyWrapper creates the DEK wrapper for the configured wrap mode.
func (c *Container) initKeyWrapper() (cryptoService.KeyWrapper, error) {
	if c.config.KMSKeyURI != "" {
		keeper, err := cryptoService.NewKMSService().OpenKeeper(context.Background(), c.config.KMSKeyURI)
		if err != nil {
			return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
		}
		return cryptoService.NewKeeperWrapper(keeper, c.config.KMSKeyURI), nil
	}

	chain, err := c.MasterKeyChain()
	if err != nil {
		return nil, err
	}
	algorithm, err := c.dekAlgorithm()
	if err != nil {
		return nil, err
	}
	return cryptoService.NewMasterKeyWrapper(chain, cryptoService.NewAEADManager(), algorithm), nil
}

// initDekRepository creates the DEK repository instance.
func (c *Container) initDekRepository() (cryptoUsecase.DekRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for dek repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return cryptoRepository.NewMySQLDekRepository(db), nil
	case "postgres":
		return cryptoRepository.NewPostgreSQLDekRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initKeyVault creates the key vault with all its dependencies.
func (c *Container) initKeyVault() (cryptoUsecase.KeyVault, error) {
	dekRepo, err := c.DekRepository()
	if err != nil {
		return nil, err
	}
	wrapper, err := c.KeyWrapper()
	if err != nil {
		return nil, err
	}
	algorithm, err := c.dekAlgorithm()
	if err != nil {
		return nil, err
	}
	return cryptoUsecase.NewKeyVault(dekRepo, wrapper, algorithm), nil
}
