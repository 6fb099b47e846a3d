package domain

import "context"

// ServicePort is the interface implemented by the schedule service
type ServicePort interface {
	Generate(ctx context.Context, in GenerateRequest) (ScheduleResponse, error)
	Preview(ctx context.Context, in GenerateRequest) (ScheduleResponse, error)
	Reoptimize(ctx context.Context, date string, in ReoptimizeRequest) (ScheduleResponse, error)
	Capacity(ctx context.Context, date string) (CapacityResponse, error)
	InsertEmergency(ctx context.Context, in EmergencyInsertRequest) (EmergencyInsertResponse, error)
	Clear(ctx context.Context, in ClearRequest) (ClearResponse, error)
	Restore(ctx context.Context, auditID string) (RestoreResponse, error)
	RecentAudits(ctx context.Context, hours int) ([]AuditSummary, error)
	AuditByID(ctx context.Context, auditID string) (AuditDetail, error)
}
