package endpoints

import (
	"testing"

	"github.com/goliatone/go-fmc/core"
	"github.com/google/uuid"
)

const testDomain = "f3b4958c-52a1-11e7-802a-010203040506"

func TestResolver_ResolveTable(t *testing.T) {
	domain := uuid.MustParse(testDomain)
	resolver := NewResolver()

	cases := []struct {
		op   core.OperationID
		host string
		want string
	}{
		{core.OperationDevices, "ciscofmc.local", "https://ciscofmc.local:443/api/fmc_config/v1/domain/" + testDomain + "/devices/devicerecords"},
		{core.OperationObject, "cisco_fmc.xyz", "https://cisco_fmc.xyz:443/api/fmc_config/v1/domain/" + testDomain + "/object"},
		{core.OperationPolicyAssignments, "fmc.abc", "https://fmc.abc:443/api/fmc_config/v1/domain/" + testDomain + "/assignments/policyassignments"},
		{core.OperationDeviceHAPairs, "1.1.1.1", "https://1.1.1.1:443/api/fmc_config/v1/domain/" + testDomain + "/devicehapairs/ftddevicehapairs"},
		{core.OperationIntegration, "10.0.0.5", "https://10.0.0.5:443/api/fmc_config/v1/domain/" + testDomain + "/integration"},
		{core.OperationDeviceGroups, "fmc.test.domain", "https://fmc.test.domain:443/api/fmc_config/v1/domain/" + testDomain + "/devicegroups/devicegrouprecords"},
		{core.OperationTaskStatuses, "lily123.cx", "https://lily123.cx:443/api/fmc_config/v1/domain/" + testDomain + "/taskstatuses"},
		{core.OperationDeviceClusters, "AaBbCc.zzz", "https://AaBbCc.zzz:443/api/fmc_config/v1/domain/" + testDomain + "/devices"},
		{core.OperationPolicy, "blah.blah", "https://blah.blah:443/api/fmc_config/v1/domain/" + testDomain + "/policy"},
		{core.OperationDeployment, "a-b-c-d.local", "https://a-b-c-d.local:443/api/fmc_config/v1/domain/" + testDomain + "/deployment"},
		{core.OperationUpdates, "123.23.3.1", "https://123.23.3.1:443/api/fmc_config/v1/domain/"},
		{core.OperationAudit, "voodooCat.co.uk", "https://voodooCat.co.uk:443/api/fmc_platform/v1/domain/" + testDomain + "/audit/auditrecords"},
		{core.OperationInfo, "doctor.who", "https://doctor.who:443/api/fmc_platform/v1/info"},
		{core.OperationTaxiiConfig, "murica.usa", "https://murica.usa:443/api/fmc_tid/v1/domain/" + testDomain + "/taxiiconfig"},
		{core.OperationTid, "8.8.8.8", "https://8.8.8.8:443/api/fmc_tid/v1/domain/" + testDomain + "/tid"},
		{core.OperationGenerateToken, "10.17.11.151", "https://10.17.11.151:443/api/fmc_platform/v1/auth/generatetoken"},
	}

	for _, tc := range cases {
		t.Run(tc.op.String(), func(t *testing.T) {
			got, err := resolver.Resolve(tc.op, tc.host, &domain)
			if err != nil {
				t.Fatalf("resolve %s: %v", tc.op, err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestResolver_HostIsNotNormalised(t *testing.T) {
	domain := uuid.MustParse(testDomain)
	got, err := NewResolver().Resolve(core.OperationObject, "fmc-01.Sw.local", &domain)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "https://fmc-01.Sw.local:443/api/fmc_config/v1/domain/"+testDomain+"/object" {
		t.Fatalf("expected host to be used verbatim, got %q", got)
	}
}

func TestResolver_Failures(t *testing.T) {
	resolver := NewResolver()
	domain := uuid.MustParse(testDomain)

	if _, err := resolver.Resolve(core.OperationID("bogus"), "fmc.local", &domain); !core.HasTextCode(err, core.ErrorUnknownOperation) {
		t.Fatalf("expected unknown operation, got %v", err)
	}
	if _, err := resolver.Resolve(core.OperationDevices, "  ", &domain); !core.HasTextCode(err, core.ErrorUnresolvedHost) {
		t.Fatalf("expected unresolved host, got %v", err)
	}
	if _, err := resolver.Resolve(core.OperationDevices, "fmc.local", nil); !core.HasTextCode(err, core.ErrorMissingTenantScope) {
		t.Fatalf("expected missing tenant scope, got %v", err)
	}
	if _, err := resolver.Resolve(core.OperationInfo, "fmc.local", nil); err != nil {
		t.Fatalf("expected unscoped operation to resolve without tenant: %v", err)
	}
	if !core.IsConfigurationError(func() error {
		_, err := resolver.Describe("bogus")
		return err
	}()) {
		t.Fatalf("expected unknown operation to be a configuration error")
	}
}

func TestResolver_SchemeAndPortOptions(t *testing.T) {
	resolver := FromConfig(core.Config{Scheme: "HTTP", Port: 8443})
	got, err := resolver.Resolve(core.OperationInfo, "fmc.lab", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "http://fmc.lab:8443/api/fmc_platform/v1/info" {
		t.Fatalf("unexpected url %q", got)
	}

	defaults := FromConfig(core.Config{})
	got, err = defaults.Resolve(core.OperationInfo, "fmc.lab", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "https://fmc.lab:443/api/fmc_platform/v1/info" {
		t.Fatalf("expected defaults to apply, got %q", got)
	}
}

func TestResolver_Register(t *testing.T) {
	resolver := NewResolver()
	err := resolver.Register(core.Descriptor{
		Operation:           "access_policies",
		Template:            "/api/fmc_config/v1/domain/{domain}/policy/accesspolicies",
		RequiresTenantScope: true,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	domain := uuid.MustParse(testDomain)
	got, err := resolver.Resolve("access_policies", "fmc.local", &domain)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "https://fmc.local:443/api/fmc_config/v1/domain/"+testDomain+"/policy/accesspolicies" {
		t.Fatalf("unexpected url %q", got)
	}

	if err := resolver.Register(core.Descriptor{Operation: "broken", Template: "/no/placeholder", RequiresTenantScope: true}); err == nil {
		t.Fatalf("expected placeholder mismatch error")
	}
	if err := resolver.Register(core.Descriptor{Template: "/x"}); err == nil {
		t.Fatalf("expected missing operation error")
	}
}

func TestResolver_OperationsSorted(t *testing.T) {
	ops := NewResolver().Operations()
	if len(ops) != len(defaultTable) {
		t.Fatalf("expected %d operations, got %d", len(defaultTable), len(ops))
	}
	for i := 1; i < len(ops); i++ {
		if ops[i-1].Operation > ops[i].Operation {
			t.Fatalf("operations not sorted at %d: %q > %q", i, ops[i-1].Operation, ops[i].Operation)
		}
	}
}
