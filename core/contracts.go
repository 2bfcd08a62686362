package core

import (
	"context"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// OperationID names a logical management center operation. The endpoint
// resolver maps it to a URL template.
type OperationID string

const (
	OperationGenerateToken     OperationID = "auth.generate_token"
	OperationDevices           OperationID = "devices"
	OperationPolicyAssignments OperationID = "policy_assignments"
	OperationDeviceHAPairs     OperationID = "device_ha_pairs"
	OperationIntegration       OperationID = "integration"
	OperationDeviceGroups      OperationID = "device_groups"
	OperationTaskStatuses      OperationID = "task_statuses"
	OperationDeviceClusters    OperationID = "device_clusters"
	OperationObject            OperationID = "object"
	OperationPolicy            OperationID = "policy"
	OperationDeployment        OperationID = "deployment"
	OperationUpdates           OperationID = "updates"
	OperationAudit             OperationID = "audit"
	OperationInfo              OperationID = "info"
	OperationTaxiiConfig       OperationID = "taxii_config"
	OperationTid               OperationID = "tid"
)

func (o OperationID) String() string { return string(o) }

// Descriptor is the static description of one operation.
type Descriptor struct {
	Operation           OperationID
	Template            string
	RequiresTenantScope bool
	Exchange            bool
}

type EndpointResolver interface {
	Describe(op OperationID) (Descriptor, error)
	Resolve(op OperationID, host string, tenantID *uuid.UUID) (string, error)
}

// HeaderLookup is the only capability the credential store needs from a
// response.
type HeaderLookup interface {
	Lookup(key string) (string, bool)
}

// Headers is a flattened header map with case-insensitive lookup.
type Headers map[string]string

func (h Headers) Lookup(key string) (string, bool) {
	key = strings.TrimSpace(key)
	if key == "" || len(h) == 0 {
		return "", false
	}
	if value, ok := h[key]; ok {
		return value, true
	}
	for candidate, value := range h {
		if strings.EqualFold(candidate, key) {
			return value, true
		}
	}
	return "", false
}

func (h Headers) Clone() Headers {
	if len(h) == 0 {
		return Headers{}
	}
	out := make(Headers, len(h))
	for key, value := range h {
		out[key] = value
	}
	return out
}

type TransportRequest struct {
	Method   string
	URL      string
	Headers  map[string]string
	Query    map[string]string
	Body     []byte
	Metadata map[string]any
	Timeout  time.Duration

	// MaxResponseBodyBytes overrides the adapter limit when positive.
	MaxResponseBodyBytes int64
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

// TransportAdapter issues the network call. Connection setup, TLS and
// cancellation are its concern.
type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}
