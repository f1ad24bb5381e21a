// =============================================================================
// pkg/nameservers/providers.go - Well-known public resolver sets
// =============================================================================
package nameservers

import "net"

// Nameserver is one public recursive resolver.
type Nameserver struct {
	Name     string `json:"name"`
	IP       net.IP `json:"ip"`
	Port     int    `json:"port"`
	Provider string `json:"provider"`
}

// Providers maps provider keys to their public resolvers.
var Providers = map[string][]Nameserver{
	"cloudflare": {
		{Name: "cloudflare-dns1", IP: net.ParseIP("1.1.1.1"), Port: 53, Provider: "Cloudflare"},
		{Name: "cloudflare-dns2", IP: net.ParseIP("1.0.0.1"), Port: 53, Provider: "Cloudflare"},
	},
	"google": {
		{Name: "google-dns1", IP: net.ParseIP("8.8.8.8"), Port: 53, Provider: "Google"},
		{Name: "google-dns2", IP: net.ParseIP("8.8.4.4"), Port: 53, Provider: "Google"},
	},
	"quad9": {
		{Name: "quad9-dns1", IP: net.ParseIP("9.9.9.9"), Port: 53, Provider: "Quad9"},
		{Name: "quad9-dns2", IP: net.ParseIP("149.112.112.112"), Port: 53, Provider: "Quad9"},
	},
	"opendns": {
		{Name: "opendns1", IP: net.ParseIP("208.67.222.222"), Port: 53, Provider: "OpenDNS"},
		{Name: "opendns2", IP: net.ParseIP("208.67.220.220"), Port: 53, Provider: "OpenDNS"},
	},
}

// ForProvider returns the resolvers of one provider key, or nil.
func ForProvider(provider string) []Nameserver {
	return Providers[provider]
}

// DefaultResolvers returns the reference comparison set: one resolver each
// from Cloudflare, Google and Quad9.
func DefaultResolvers() []Nameserver {
	return []Nameserver{
		Providers["cloudflare"][0],
		Providers["google"][0],
		Providers["quad9"][0],
	}
}

// DefaultResolverIPs returns the default comparison set as IP strings.
func DefaultResolverIPs() []string {
	servers := DefaultResolvers()
	ips := make([]string, len(servers))
	for i, s := range servers {
		ips[i] = s.IP.String()
	}
	return ips
}
