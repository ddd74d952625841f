package app

import (
	"context"
	"fmt"
	nethttp "net/http"

	"golang.org/x/time/rate"

	"github.com/allisson/delta/internal/client"
	"github.com/allisson/delta/internal/config"
	"github.com/allisson/delta/internal/delta"
	"github.com/allisson/delta/internal/keystore"
	"github.com/allisson/delta/internal/keystore/kms"
	"github.com/allisson/delta/internal/signer"
)

// KeyStore returns the private key store selected by KEYSTORE_PROVIDER.
func (c *Container) KeyStore() (keystore.Store, error) {
	c.keyStoreInit.Do(func() {
		store, err := c.initKeyStore()
		if err != nil {
			c.setInitError("keyStore", err)
			return
		}
		c.keyStore = store
	})
	if err := c.initError("keyStore"); err != nil {
		return nil, err
	}
	return c.keyStore, nil
}

// Signer returns the request signer backed by the key store.
func (c *Container) Signer() (*signer.Signer, error) {
	c.signerInit.Do(func() {
		store, err := c.KeyStore()
		if err != nil {
			c.setInitError("signer", fmt.Errorf("failed to get key store for signer: %w", err))
			return
		}
		c.signer = signer.New(store)
	})
	if err := c.initError("signer"); err != nil {
		return nil, err
	}
	return c.signer, nil
}

// APIClient returns the Delta API client, instrumented when metrics are enabled.
func (c *Container) APIClient() (client.APIClient, error) {
	c.apiClientInit.Do(func() {
		apiClient, err := c.initAPIClient()
		if err != nil {
			c.setInitError("apiClient", err)
			return
		}
		c.apiClient = apiClient
	})
	if err := c.initError("apiClient"); err != nil {
		return nil, err
	}
	return c.apiClient, nil
}

// DeltaClient returns the identity-oriented client used to create and load identities.
func (c *Container) DeltaClient() (*delta.Client, error) {
	c.deltaClientInit.Do(func() {
		apiClient, err := c.APIClient()
		if err != nil {
			c.setInitError("deltaClient", fmt.Errorf("failed to get api client for delta client: %w", err))
			return
		}
		store, err := c.KeyStore()
		if err != nil {
			c.setInitError("deltaClient", fmt.Errorf("failed to get key store for delta client: %w", err))
			return
		}
		c.deltaClient = delta.NewClient(apiClient, store, delta.WithKeyBits(c.config.KeySizeBits))
	})
	if err := c.initError("deltaClient"); err != nil {
		return nil, err
	}
	return c.deltaClient, nil
}

// initKeyStore builds the key store. File stores are sealed through KMS when a key URI is
// configured, otherwise with the passphrase when one is set.
func (c *Container) initKeyStore() (keystore.Store, error) {
	switch c.config.KeyStoreProvider {
	case config.KeyStoreMemory:
		return keystore.NewMemoryStore(), nil
	case config.KeyStoreFile, "":
	default:
		return nil, fmt.Errorf("unsupported key store provider: %s", c.config.KeyStoreProvider)
	}

	var sealer keystore.Sealer
	switch {
	case c.config.KeyStoreKMSKeyURI != "":
		keeper, err := kms.OpenKeeper(context.Background(), c.config.KeyStoreKMSKeyURI)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.kmsKeeper = keeper
		c.mu.Unlock()
		sealer = kms.NewSealer(keeper)
	case c.config.KeyStorePassphrase != "":
		sealer = keystore.NewPassphraseSealer(c.config.KeyStorePassphrase, keystore.DefaultKDFParams)
	}

	return keystore.NewFileStore(c.config.KeyStorePath, sealer), nil
}

// initAPIClient creates the HTTP client for the configured Delta URL.
func (c *Container) initAPIClient() (client.APIClient, error) {
	s, err := c.Signer()
	if err != nil {
		return nil, fmt.Errorf("failed to get signer for api client: %w", err)
	}

	opts := []client.Option{
		client.WithHTTPClient(&nethttp.Client{Timeout: c.config.HTTPTimeout}),
		client.WithLogger(c.Logger()),
	}
	if c.config.RateLimitEnabled {
		opts = append(opts, client.WithRateLimiter(
			rate.NewLimiter(rate.Limit(c.config.RateLimitRequestsPerSec), c.config.RateLimitBurst),
		))
	}

	apiClient, err := client.New(c.config.DeltaURL, s, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	if !c.config.MetricsEnabled {
		return apiClient, nil
	}
	cm, err := c.ClientMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get client metrics for api client: %w", err)
	}
	return client.NewAPIClientWithMetrics(apiClient, cm), nil
}
