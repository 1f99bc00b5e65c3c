package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/mrlynn/securehealth-sub006/internal/crypto/domain"
	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
)

// fakeKeyWrapper round-trips key material without real encryption.
type fakeKeyWrapper struct {
	wrapErr   error
	unwrapErr error
}

func (f *fakeKeyWrapper) Wrap(_ context.Context, key []byte) ([]byte, []byte, string, error) {
	if f.wrapErr != nil {
		return nil, nil, "", f.wrapErr
	}
	encrypted := make([]byte, len(key))
	copy(encrypted, key)
	return encrypted, []byte("nonce"), "test-master", nil
}

func (f *fakeKeyWrapper) Unwrap(_ context.Context, dek *cryptoDomain.Dek) ([]byte, error) {
	if f.unwrapErr != nil {
		return nil, f.unwrapErr
	}
	key := make([]byte, len(dek.EncryptedKey))
	copy(key, dek.EncryptedKey)
	return key, nil
}

// fakeDekRepository is an in-memory DekRepository with call counters.
type fakeDekRepository struct {
	mu           sync.Mutex
	deks         map[string]*cryptoDomain.Dek
	createErr    error
	getErr       error
	missOnce     bool
	createCnt    atomic.Int64
	getByNameCnt atomic.Int64
}

func newFakeDekRepository() *fakeDekRepository {
	return &fakeDekRepository{deks: make(map[string]*cryptoDomain.Dek)}
}

func (f *fakeDekRepository) Create(_ context.Context, dek *cryptoDomain.Dek) error {
	f.createCnt.Add(1)
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.deks[dek.Name]; exists {
		return apperrors.Wrap(apperrors.ErrConflict, "dek already exists")
	}
	f.deks[dek.Name] = dek
	return nil
}

func (f *fakeDekRepository) GetByName(_ context.Context, name string) (*cryptoDomain.Dek, error) {
	f.getByNameCnt.Add(1)
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missOnce {
		f.missOnce = false
		return nil, cryptoDomain.ErrKeyNotFound
	}
	dek, ok := f.deks[name]
	if !ok {
		return nil, cryptoDomain.ErrKeyNotFound
	}
	return dek, nil
}

func (f *fakeDekRepository) List(_ context.Context, _, _ int) ([]*cryptoDomain.Dek, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	deks := make([]*cryptoDomain.Dek, 0, len(f.deks))
	for _, dek := range f.deks {
		deks = append(deks, dek)
	}
	return deks, nil
}

func TestKeyVault_GetOrCreateKey(t *testing.T) {
	ctx := context.Background()

	t.Run("creates key on first use", func(t *testing.T) {
		repo := newFakeDekRepository()
		vault := NewKeyVault(repo, &fakeKeyWrapper{}, cryptoDomain.AESGCM)
		defer vault.Close()

		handle, err := vault.GetOrCreateKey(ctx, "patient_ssn_key")
		require.NoError(t, err)
		assert.Equal(t, "patient_ssn_key", handle.Name)
		assert.Len(t, handle.Key, cryptoDomain.KeySize)
		assert.Equal(t, int64(1), repo.createCnt.Load())

		stored, ok := repo.deks["patient_ssn_key"]
		require.True(t, ok)
		assert.Equal(t, "test-master", stored.MasterKeyID)
		assert.Equal(t, cryptoDomain.AESGCM, stored.Algorithm)
	})

	t.Run("returns cached key on repeat calls", func(t *testing.T) {
		repo := newFakeDekRepository()
		vault := NewKeyVault(repo, &fakeKeyWrapper{}, cryptoDomain.AESGCM)
		defer vault.Close()

		first, err := vault.GetOrCreateKey(ctx, "patient_email_key")
		require.NoError(t, err)
		second, err := vault.GetOrCreateKey(ctx, "patient_email_key")
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, int64(1), repo.getByNameCnt.Load(), "cache hit must not touch the repository")
	})

	t.Run("loads existing key from repository", func(t *testing.T) {
		repo := newFakeDekRepository()
		repo.deks["patient_insurance_key"] = &cryptoDomain.Dek{
			Name:         "patient_insurance_key",
			MasterKeyID:  "test-master",
			Algorithm:    cryptoDomain.AESGCM,
			EncryptedKey: make([]byte, cryptoDomain.KeySize),
		}
		vault := NewKeyVault(repo, &fakeKeyWrapper{}, cryptoDomain.AESGCM)
		defer vault.Close()

		handle, err := vault.GetOrCreateKey(ctx, "patient_insurance_key")
		require.NoError(t, err)
		assert.Len(t, handle.Key, cryptoDomain.KeySize)
		assert.Equal(t, int64(0), repo.createCnt.Load())
	})

	t.Run("converges after losing creation race", func(t *testing.T) {
		repo := newFakeDekRepository()
		winner := &cryptoDomain.Dek{
			Name:         "patient_last_name_key",
			EncryptedKey: []byte("winner-key-material-32-bytes!!!!"),
		}
		// First lookup misses, Create conflicts with the winner's row, and the
		// follow-up lookup converges on the winner's key.
		repo.deks["patient_last_name_key"] = winner
		repo.missOnce = true
		vault := NewKeyVault(repo, &fakeKeyWrapper{}, cryptoDomain.AESGCM)
		defer vault.Close()

		handle, err := vault.GetOrCreateKey(ctx, "patient_last_name_key")
		require.NoError(t, err)
		assert.Equal(t, winner.EncryptedKey, handle.Key)
		assert.Equal(t, int64(1), repo.createCnt.Load())
	})

	t.Run("collapses concurrent callers onto one creation", func(t *testing.T) {
		repo := newFakeDekRepository()
		vault := NewKeyVault(repo, &fakeKeyWrapper{}, cryptoDomain.AESGCM)
		defer vault.Close()

		const callers = 16
		handles := make([]*cryptoDomain.KeyHandle, callers)
		var wg sync.WaitGroup
		for i := range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				handle, err := vault.GetOrCreateKey(ctx, "patient_phone_key")
				assert.NoError(t, err)
				handles[i] = handle
			}()
		}
		wg.Wait()

		for i := 1; i < callers; i++ {
			assert.Equal(t, handles[0].Key, handles[i].Key)
		}
		assert.LessOrEqual(t, repo.createCnt.Load(), int64(1))
	})

	t.Run("propagates wrap failure", func(t *testing.T) {
		repo := newFakeDekRepository()
		wrapper := &fakeKeyWrapper{wrapErr: cryptoDomain.ErrKeyStoreUnavailable}
		vault := NewKeyVault(repo, wrapper, cryptoDomain.AESGCM)
		defer vault.Close()

		_, err := vault.GetOrCreateKey(ctx, "patient_ssn_key")
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	})

	t.Run("propagates repository failure", func(t *testing.T) {
		repo := newFakeDekRepository()
		repo.getErr = apperrors.Wrap(apperrors.ErrUnavailable, "connection refused")
		vault := NewKeyVault(repo, &fakeKeyWrapper{}, cryptoDomain.AESGCM)
		defer vault.Close()

		_, err := vault.GetOrCreateKey(ctx, "patient_ssn_key")
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	})
}

func TestKeyVault_Close(t *testing.T) {
	ctx := context.Background()
	repo := newFakeDekRepository()
	vault := NewKeyVault(repo, &fakeKeyWrapper{}, cryptoDomain.AESGCM)

	handle, err := vault.GetOrCreateKey(ctx, "patient_ssn_key")
	require.NoError(t, err)

	vault.Close()
	assert.Equal(t, make([]byte, cryptoDomain.KeySize), handle.Key, "cached key material must be zeroed")

	_, err = vault.GetOrCreateKey(ctx, "patient_ssn_key")
	assert.Error(t, err)

	// Close is idempotent.
	vault.Close()
}
