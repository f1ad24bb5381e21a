// =============================================================================
// pkg/nameservers/providers_test.go - Provider catalog tests
// =============================================================================
package nameservers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvidersWellFormed(t *testing.T) {
	for provider, servers := range Providers {
		require.NotEmpty(t, servers, provider)
		for _, s := range servers {
			assert.NotNil(t, s.IP, "%s/%s", provider, s.Name)
			assert.Equal(t, 53, s.Port, "%s/%s", provider, s.Name)
			assert.NotEmpty(t, s.Provider, "%s/%s", provider, s.Name)
		}
	}
}

func TestForProvider(t *testing.T) {
	assert.Len(t, ForProvider("cloudflare"), 2)
	assert.Nil(t, ForProvider("unknown"))
}

func TestDefaultResolverIPs(t *testing.T) {
	assert.Equal(t, []string{"1.1.1.1", "8.8.8.8", "9.9.9.9"}, DefaultResolverIPs())
}
