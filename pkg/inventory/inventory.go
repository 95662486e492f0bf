package inventory

import (
	"github.com/oldmonad/cloudinv/pkg/cloud"
	config "github.com/oldmonad/cloudinv/pkg/config/cloud"
)

const fileSuffix = "_inventory.ini"

// Inventory maps group names to private addresses. Groups keep the order in
// which they were first seen and so do the addresses inside a group. The
// empty group name is valid and holds untagged hosts.
type Inventory struct {
	order  []string
	groups map[string]*group
}

type group struct {
	hosts []string
	seen  map[string]struct{}
}

func New() *Inventory {
	return &Inventory{groups: make(map[string]*group)}
}

// Add records ip under name. Adding an address twice to the same group is a
// no-op.
func (inv *Inventory) Add(name, ip string) {
	g := inv.ensure(name)
	if _, dup := g.seen[ip]; dup {
		return
	}
	g.seen[ip] = struct{}{}
	g.hosts = append(g.hosts, ip)
}

// ensure returns the group called name, creating an empty one at the end of
// the order if it does not exist yet.
func (inv *Inventory) ensure(name string) *group {
	g, ok := inv.groups[name]
	if !ok {
		g = &group{seen: make(map[string]struct{})}
		inv.groups[name] = g
		inv.order = append(inv.order, name)
	}
	return g
}

func (inv *Inventory) Groups() []string {
	out := make([]string, len(inv.order))
	copy(out, inv.order)
	return out
}

func (inv *Inventory) Hosts(name string) []string {
	g, ok := inv.groups[name]
	if !ok {
		return nil
	}
	out := make([]string, len(g.hosts))
	copy(out, g.hosts)
	return out
}

// Len is the number of groups.
func (inv *Inventory) Len() int {
	return len(inv.order)
}

// HostCount is the number of group/address entries.
func (inv *Inventory) HostCount() int {
	n := 0
	for _, g := range inv.groups {
		n += len(g.hosts)
	}
	return n
}

// Build groups every private address of instances by the value of tagKey.
// Instances lacking the tag land in the empty group. The group of an
// instance without addresses is still created, empty.
func Build(instances []cloud.Instance, tagKey string) *Inventory {
	inv := New()
	for _, instance := range instances {
		name := instance.Tags[tagKey]
		inv.ensure(name)
		for _, ip := range instance.PrivateIPs {
			if ip == "" {
				continue
			}
			inv.Add(name, ip)
		}
	}
	return inv
}

// FileName returns the inventory file name for provider, e.g.
// aws_inventory.ini.
func FileName(provider config.ProviderType) string {
	return string(provider) + fileSuffix
}
