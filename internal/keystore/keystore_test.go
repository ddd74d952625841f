package keystore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	testKeysOnce sync.Once
	testKeys     *KeyPair
	testKeysErr  error
)

// sharedKeyPair returns one 2048-bit key pair per test binary; generation is slow.
func sharedKeyPair(t *testing.T) *KeyPair {
	t.Helper()
	testKeysOnce.Do(func() {
		testKeys, testKeysErr = GenerateKeyPair(2048)
	})
	require.NoError(t, testKeysErr)
	return testKeys
}

// fastKDF keeps argon2id cheap in tests.
var fastKDF = KDFParams{Time: 1, Memory: 1024, Threads: 1}
