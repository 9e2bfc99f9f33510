package delivery

import (
	"net/http"
	"strconv"

	activityrepository "replyhub-backend/internal/activity/repository"
	"replyhub-backend/internal/ticket/usecase"

	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	ticketUsecase usecase.TicketUsecase
	activity      activityrepository.ActivityLogRepository
}

func NewTicketHandler(ticketUsecase usecase.TicketUsecase, activity activityrepository.ActivityLogRepository) *TicketHandler {
	return &TicketHandler{
		ticketUsecase: ticketUsecase,
		activity:      activity,
	}
}

// ListThreads handles GET /api/threads?status=&limit=&offset=
func (h *TicketHandler) ListThreads(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	threads, total, err := h.ticketUsecase.ListThreads(c.GetString("workspaceID"), c.Query("status"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"threads": threads,
		"total":   total,
	})
}

// GetThread handles GET /api/threads/:id
func (h *TicketHandler) GetThread(c *gin.Context) {
	thread, messages, err := h.ticketUsecase.GetThread(c.GetString("workspaceID"), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"thread":   thread,
		"messages": messages,
	})
}

// GenerateDraft handles POST /api/threads/:id/draft
func (h *TicketHandler) GenerateDraft(c *gin.Context) {
	draft, err := h.ticketUsecase.GenerateDraft(c.Request.Context(), c.GetString("workspaceID"), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

// ListActivity handles GET /api/threads/:id/activity
func (h *TicketHandler) ListActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.activity.ListByThread(c.GetString("workspaceID"), c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity": entries})
}
