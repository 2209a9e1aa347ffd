package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/audit"
	auditrepo "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/entities"
)

type AuditController struct {
	auditService *audit.Service
}

func NewAuditController(auditService *audit.Service) *AuditController {
	return &AuditController{
		auditService: auditService,
	}
}

// GetAuditEvents returns the requester's audit events, newest first.
// GET /api/audit?page=1&limit=25&type=membership&collectionId=5
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	page, limit := parsePagination(c, 25, 100)

	filter := auditrepo.Filter{
		UserID:    GetUserID(c),
		EventType: entities.AuditEventType(c.Query("type")),
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}
	if c.Query("collectionId") != "" {
		id, ok := parseQueryID(c, "collectionId")
		if !ok {
			return
		}
		filter.CollectionID = id
	}

	events, total, err := ac.auditService.GetEvents(c.Request.Context(), filter)
	if err != nil {
		respondInternalError(c, err, "load audit events")
		return
	}

	c.JSON(http.StatusOK, newPaginatedResponse(events, total, page, limit))
}
