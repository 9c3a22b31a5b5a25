package objtype

import (
	"sort"
	"strings"

	"github.com/dbsmedya/intersync/internal/logger"
)

// Catalog is the static table of supported object types. It replaces
// load-order-dependent self-registration: every supported type is
// declared here and instantiated once at startup.
var Catalog = []Metadata{
	{
		ID:          "organization.Organization",
		DisplayName: "Organization",
		RestPath:    "organization/Organizations",
		FolderPath:  "organizations",
		Description: "Logical container that owns policies, pools and profiles.",
		Aliases:     []string{"organization", "org"},
	},

	// Policies.
	{
		ID:           "access.Policy",
		DisplayName:  "Access Policy",
		RestPath:     "access/Policies",
		FolderPath:   "policies",
		Description:  "Controls management endpoint access, including addresses drawn from an IP pool.",
		Dependencies: []string{"organization.Organization", "ippool.Pool"},
		Aliases:      []string{"access"},
	},
	{
		ID:           "bios.Policy",
		DisplayName:  "BIOS Policy",
		RestPath:     "bios/Policies",
		FolderPath:   "policies",
		Description:  "Configures BIOS token settings.",
		Dependencies: []string{"organization.Organization"},
		Aliases:      []string{"bios"},
	},
	{
		ID:           "boot.PrecisionPolicy",
		DisplayName:  "Boot Order Policy",
		RestPath:     "boot/PrecisionPolicies",
		FolderPath:   "policies",
		Description:  "Configures the device boot order.",
		Dependencies: []string{"organization.Organization"},
		Aliases:      []string{"boot"},
	},
	{
		ID:           "firmware.Policy",
		DisplayName:  "Firmware Policy",
		RestPath:     "firmware/Policies",
		FolderPath:   "policies",
		Description:  "Pins firmware versions for managed endpoints.",
		Dependencies: []string{"organization.Organization"},
		Aliases:      []string{"firmware"},
	},
	{
		ID:           "kvm.Policy",
		DisplayName:  "Virtual KVM Policy",
		RestPath:     "kvm/Policies",
		FolderPath:   "policies",
		Description:  "Configures virtual KVM console access.",
		Dependencies: []string{"organization.Organization"},
		Aliases:      []string{"kvm"},
	},
	{
		ID:           "networkconfig.Policy",
		DisplayName:  "Network Connectivity Policy",
		RestPath:     "networkconfig/Policies",
		FolderPath:   "policies",
		Description:  "Configures DNS and network connectivity settings.",
		Dependencies: []string{"organization.Organization"},
		Aliases:      []string{"network"},
	},
	{
		ID:           "ntp.Policy",
		DisplayName:  "NTP Policy",
		RestPath:     "ntp/Policies",
		FolderPath:   "policies",
		Description:  "Configures NTP servers and time zone.",
		Dependencies: []string{"organization.Organization"},
		Aliases:      []string{"ntp"},
	},
	{
		ID:           "power.Policy",
		DisplayName:  "Power Policy",
		RestPath:     "power/Policies",
		FolderPath:   "policies",
		Description:  "Configures power redundancy and capping.",
		Dependencies: []string{"organization.Organization"},
		Aliases:      []string{"power"},
	},
	{
		ID:           "smtp.Policy",
		DisplayName:  "SMTP Policy",
		RestPath:     "smtp/Policies",
		FolderPath:   "policies",
		Description:  "Configures outbound mail relay for alerts.",
		Dependencies: []string{"organization.Organization"},
		Aliases:      []string{"smtp"},
	},
	{
		ID:           "snmp.Policy",
		DisplayName:  "SNMP Policy",
		RestPath:     "snmp/Policies",
		FolderPath:   "policies",
		Description:  "Configures SNMP agents and trap destinations.",
		Dependencies: []string{"organization.Organization"},
		Aliases:      []string{"snmp"},
	},
	{
		ID:           "sol.Policy",
		DisplayName:  "Serial over LAN Policy",
		RestPath:     "sol/Policies",
		FolderPath:   "policies",
		Description:  "Configures serial console redirection over LAN.",
		Dependencies: []string{"organization.Organization"},
		Aliases:      []string{"sol"},
	},
	{
		ID:           "ssh.Policy",
		DisplayName:  "SSH Policy",
		RestPath:     "ssh/Policies",
		FolderPath:   "policies",
		Description:  "Configures SSH access to managed endpoints.",
		Dependencies: []string{"organization.Organization"},
		Aliases:      []string{"ssh"},
	},
	{
		ID:           "syslog.Policy",
		DisplayName:  "Syslog Policy",
		RestPath:     "syslog/Policies",
		FolderPath:   "policies",
		Description:  "Configures local and remote syslog destinations.",
		Dependencies: []string{"organization.Organization"},
		Aliases:      []string{"syslog"},
	},
	{
		ID:           "thermal.Policy",
		DisplayName:  "Thermal Policy",
		RestPath:     "thermal/Policies",
		FolderPath:   "policies",
		Description:  "Configures fan control modes.",
		Dependencies: []string{"organization.Organization"},
		Aliases:      []string{"thermal"},
	},
	{
		ID:           "vmedia.Policy",
		DisplayName:  "Virtual Media Policy",
		RestPath:     "vmedia/Policies",
		FolderPath:   "policies",
		Description:  "Configures virtual media mounts.",
		Dependencies: []string{"organization.Organization"},
		Aliases:      []string{"vmedia"},
	},

	// Pools.
	{
		ID:           "fcpool.Pool",
		DisplayName:  "Fibre Channel Pool",
		RestPath:     "fcpool/Pools",
		FolderPath:   "pools",
		Description:  "WWN address pool for Fibre Channel interfaces.",
		Dependencies: []string{"organization.Organization"},
		Aliases:      []string{"fc", "fcpool"},
	},
	{
		ID:           "ippool.Pool",
		DisplayName:  "IP Pool",
		RestPath:     "ippool/Pools",
		FolderPath:   "pools",
		Description:  "IPv4/IPv6 address pool.",
		Dependencies: []string{"organization.Organization"},
		Aliases:      []string{"ip", "ippool"},
	},
	{
		ID:           "iqnpool.Pool",
		DisplayName:  "IQN Pool",
		RestPath:     "iqnpool/Pools",
		FolderPath:   "pools",
		Description:  "iSCSI qualified name pool.",
		Dependencies: []string{"organization.Organization"},
		Aliases:      []string{"iqn", "iqnpool"},
	},
	{
		ID:           "macpool.Pool",
		DisplayName:  "MAC Pool",
		RestPath:     "macpool/Pools",
		FolderPath:   "pools",
		Description:  "MAC address pool for virtual interfaces.",
		Dependencies: []string{"organization.Organization"},
		Aliases:      []string{"mac", "macpool"},
	},
	{
		ID:           "resourcepool.Pool",
		DisplayName:  "Resource Pool",
		RestPath:     "resourcepool/Pools",
		FolderPath:   "pools",
		Description:  "Pool of assignable server resources.",
		Dependencies: []string{"organization.Organization"},
		Aliases:      []string{"resource", "resourcepool"},
	},
	{
		ID:           "uuidpool.Pool",
		DisplayName:  "UUID Pool",
		RestPath:     "uuidpool/Pools",
		FolderPath:   "pools",
		Description:  "UUID suffix pool for server identity.",
		Dependencies: []string{"organization.Organization"},
		Aliases:      []string{"uuid", "uuidpool"},
	},

	// Profiles.
	{
		ID:          "chassis.Profile",
		DisplayName: "Chassis Profile",
		RestPath:    "chassis/Profiles",
		FolderPath:  "profiles",
		Description: "Binds chassis-scoped policies to a chassis.",
		Dependencies: []string{
			"organization.Organization",
			"power.Policy",
			"thermal.Policy",
		},
		Aliases: []string{"chassis"},
	},
	{
		ID:          "server.Profile",
		DisplayName: "Server Profile",
		RestPath:    "server/Profiles",
		FolderPath:  "profiles",
		Description: "Binds server-scoped policies and pool identities to a server.",
		Dependencies: []string{
			"organization.Organization",
			"bios.Policy",
			"boot.PrecisionPolicy",
			"uuidpool.Pool",
		},
		Aliases: []string{"server"},
	},
}

// aliasIndex maps every alias (and canonical id, lowercased) to its
// canonical type id. Built once from the catalog.
var aliasIndex = buildAliasIndex()

func buildAliasIndex() map[string]string {
	index := make(map[string]string)
	for _, meta := range Catalog {
		index[strings.ToLower(meta.ID)] = meta.ID
		for _, alias := range meta.Aliases {
			index[strings.ToLower(alias)] = meta.ID
		}
	}
	return index
}

// ResolveAlias resolves a user-supplied type filter to a canonical type
// id. It accepts canonical ids, short aliases, and folder-qualified
// aliases such as "policies/bios".
func ResolveAlias(filter string) (string, bool) {
	s := strings.TrimSpace(filter)
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	id, ok := aliasIndex[strings.ToLower(s)]
	return id, ok
}

// Aliases returns a copy of the alias table. Used by help output and
// documentation.
func Aliases() map[string]string {
	out := make(map[string]string, len(aliasIndex))
	for alias, id := range aliasIndex {
		out[alias] = id
	}
	return out
}

// CatalogIDs returns all canonical type ids, sorted.
func CatalogIDs() []string {
	ids := make([]string, 0, len(Catalog))
	for _, meta := range Catalog {
		ids = append(ids, meta.ID)
	}
	sort.Strings(ids)
	return ids
}

// NewCatalogDescriptors instantiates one descriptor per catalog entry.
func NewCatalogDescriptors(api API, log *logger.Logger) []Descriptor {
	descriptors := make([]Descriptor, 0, len(Catalog))
	for _, meta := range Catalog {
		descriptors = append(descriptors, NewDescriptor(meta, api, log))
	}
	return descriptors
}
