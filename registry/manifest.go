package registry

import (
	"encoding/json"
	"fmt"

	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/ruteri/luw-coordination-registry/ledger"
)

const manifestKey = "manifest"

// Manifest names the deployed contract addresses.
type Manifest struct {
	Certifier         interfaces.Address `json:"certifier"`
	ProviderStore     interfaces.Address `json:"provider_store"`
	ProviderRegistry  interfaces.Address `json:"provider_registry"`
	TwinStore         interfaces.Address `json:"twin_store"`
	TwinRegistry      interfaces.Address `json:"twin_registry"`
	LUWStore          interfaces.Address `json:"luw_store"`
	Coordinator       interfaces.Address `json:"coordinator"`
	StrictTransitions bool               `json:"strict_transitions"`
	// Retired lists coordinators replaced by Upgrade, oldest first.
	Retired []interfaces.Address `json:"retired,omitempty"`
}

// LoadManifest reads the manifest kept in l. It reports false on a fresh ledger.
func LoadManifest(l *ledger.Ledger) (*Manifest, bool, error) {
	raw, ok, err := l.Meta(manifestKey)
	if err != nil || !ok {
		return nil, false, err
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false, fmt.Errorf("decoding manifest: %w", err)
	}
	return &m, true, nil
}

func saveManifest(l *ledger.Ledger, m *Manifest) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return l.SetMeta(manifestKey, raw)
}
