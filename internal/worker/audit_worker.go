package worker

import (
	"github.com/insurecare/feedback-portal/internal/service"
)

// StartAuditWorker registers the audit and cache invalidation handlers.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}
