package plugin

import (
	"fmt"
	"sort"
	"sync"
)

// FactoryInfo describes the vendor shown by hosts for every registered plugin.
type FactoryInfo struct {
	Vendor string
	URL    string
	Email  string
}

var (
	registryMu  sync.RWMutex
	factoryInfo = FactoryInfo{Vendor: "FaderVST"}
	registered  = make(map[string]Plugin)
)

// SetFactoryInfo sets the factory information
func SetFactoryInfo(info FactoryInfo) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factoryInfo = info
}

// Factory returns the factory information
func Factory() FactoryInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return factoryInfo
}

// Register makes a plugin available to hosts. It is usually called from
// init and panics on invalid metadata or a duplicate ID.
func Register(p Plugin) {
	info := p.GetInfo()
	if err := info.Validate(); err != nil {
		panic(fmt.Sprintf("plugin: register: %v", err))
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registered[info.ID]; exists {
		panic(fmt.Sprintf("plugin: register: duplicate id %q", info.ID))
	}
	registered[info.ID] = p
}

// Lookup returns the plugin registered under id.
func Lookup(id string) (Plugin, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registered[id]
	return p, ok
}

// Registered returns the IDs of all registered plugins, sorted.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	ids := make([]string, 0, len(registered))
	for id := range registered {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
