package endpoints

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-fmc/core"
	"github.com/google/uuid"
)

const domainPlaceholder = "{domain}"

const (
	configDomainPrefix   = "/api/fmc_config/v1/domain/" + domainPlaceholder
	platformDomainPrefix = "/api/fmc_platform/v1/domain/" + domainPlaceholder
	tidDomainPrefix      = "/api/fmc_tid/v1/domain/" + domainPlaceholder
)

var defaultTable = []core.Descriptor{
	{Operation: core.OperationGenerateToken, Template: "/api/fmc_platform/v1/auth/generatetoken", Exchange: true},
	{Operation: core.OperationDevices, Template: configDomainPrefix + "/devices/devicerecords", RequiresTenantScope: true},
	{Operation: core.OperationPolicyAssignments, Template: configDomainPrefix + "/assignments/policyassignments", RequiresTenantScope: true},
	{Operation: core.OperationDeviceHAPairs, Template: configDomainPrefix + "/devicehapairs/ftddevicehapairs", RequiresTenantScope: true},
	{Operation: core.OperationIntegration, Template: configDomainPrefix + "/integration", RequiresTenantScope: true},
	{Operation: core.OperationDeviceGroups, Template: configDomainPrefix + "/devicegroups/devicegrouprecords", RequiresTenantScope: true},
	{Operation: core.OperationTaskStatuses, Template: configDomainPrefix + "/taskstatuses", RequiresTenantScope: true},
	{Operation: core.OperationDeviceClusters, Template: configDomainPrefix + "/devices", RequiresTenantScope: true},
	{Operation: core.OperationObject, Template: configDomainPrefix + "/object", RequiresTenantScope: true},
	{Operation: core.OperationPolicy, Template: configDomainPrefix + "/policy", RequiresTenantScope: true},
	{Operation: core.OperationDeployment, Template: configDomainPrefix + "/deployment", RequiresTenantScope: true},
	{Operation: core.OperationUpdates, Template: "/api/fmc_config/v1/domain/"},
	{Operation: core.OperationAudit, Template: platformDomainPrefix + "/audit/auditrecords", RequiresTenantScope: true},
	{Operation: core.OperationInfo, Template: "/api/fmc_platform/v1/info"},
	{Operation: core.OperationTaxiiConfig, Template: tidDomainPrefix + "/taxiiconfig", RequiresTenantScope: true},
	{Operation: core.OperationTid, Template: tidDomainPrefix + "/tid", RequiresTenantScope: true},
}

// Resolver maps operations to fully qualified URLs. The table is static after
// construction apart from explicit Register calls.
type Resolver struct {
	mu     sync.RWMutex
	scheme string
	port   int
	table  map[core.OperationID]core.Descriptor
}

type Option func(*Resolver)

func WithScheme(scheme string) Option {
	return func(r *Resolver) {
		scheme = strings.ToLower(strings.TrimSpace(scheme))
		if scheme != "" {
			r.scheme = scheme
		}
	}
}

func WithPort(port int) Option {
	return func(r *Resolver) {
		if port > 0 {
			r.port = port
		}
	}
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		scheme: core.DefaultScheme,
		port:   core.DefaultPort,
		table:  make(map[core.OperationID]core.Descriptor, len(defaultTable)),
	}
	for _, descriptor := range defaultTable {
		r.table[descriptor.Operation] = descriptor
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// FromConfig builds a resolver honouring the configured scheme and port.
func FromConfig(cfg core.Config) *Resolver {
	return NewResolver(WithScheme(cfg.Scheme), WithPort(cfg.Port))
}

// Register adds or replaces an operation. Tenant-scoped templates must carry
// the {domain} placeholder.
func (r *Resolver) Register(descriptor core.Descriptor) error {
	if r == nil {
		return fmt.Errorf("endpoints: resolver is nil")
	}
	descriptor.Operation = core.OperationID(strings.TrimSpace(string(descriptor.Operation)))
	descriptor.Template = strings.TrimSpace(descriptor.Template)
	if descriptor.Operation == "" {
		return fmt.Errorf("endpoints: operation id is required")
	}
	if !strings.HasPrefix(descriptor.Template, "/") {
		return fmt.Errorf("endpoints: template for %q must be an absolute path", descriptor.Operation)
	}
	if descriptor.RequiresTenantScope != strings.Contains(descriptor.Template, domainPlaceholder) {
		return fmt.Errorf("endpoints: template for %q must contain %s exactly when tenant scoped", descriptor.Operation, domainPlaceholder)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.table[descriptor.Operation] = descriptor
	return nil
}

func (r *Resolver) Describe(op core.OperationID) (core.Descriptor, error) {
	if r == nil {
		return core.Descriptor{}, core.NewUnknownOperationError(op)
	}
	r.mu.RLock()
	descriptor, ok := r.table[op]
	r.mu.RUnlock()
	if !ok {
		return core.Descriptor{}, core.NewUnknownOperationError(op)
	}
	return descriptor, nil
}

func (r *Resolver) Resolve(op core.OperationID, host string, tenantID *uuid.UUID) (string, error) {
	descriptor, err := r.Describe(op)
	if err != nil {
		return "", err
	}
	host = strings.TrimSpace(host)
	if host == "" {
		return "", core.NewUnresolvedHostError(op)
	}

	path := descriptor.Template
	if descriptor.RequiresTenantScope {
		if tenantID == nil {
			return "", core.NewMissingTenantScopeError(op)
		}
		path = strings.ReplaceAll(path, domainPlaceholder, tenantID.String())
	}
	return fmt.Sprintf("%s://%s:%d%s", r.scheme, host, r.port, path), nil
}

// Operations lists the registered descriptors ordered by operation id.
func (r *Resolver) Operations() []core.Descriptor {
	if r == nil {
		return []core.Descriptor{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Descriptor, 0, len(r.table))
	for _, descriptor := range r.table {
		out = append(out, descriptor)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}

var _ core.EndpointResolver = (*Resolver)(nil)
