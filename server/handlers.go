package server

import (
	"net/http"
	"strconv"

	"lotto/domain/entities"

	"github.com/gin-gonic/gin"
)

type handler struct {
	api LotteryAPI
}

func newHandler(api LotteryAPI) *handler {
	return &handler{api: api}
}

// RegisterRoutes mounts the public and admin routes on router
func (h *handler) RegisterRoutes(router *gin.RouterGroup, adminToken string) {
	router.GET("/draws/current", h.getCurrentDraw)
	router.POST("/tickets", h.purchase)
	router.POST("/tickets/:id/claim", h.claim)
	router.POST("/quick-pick", h.quickPick)
	router.POST("/users", h.createUser)
	router.GET("/users/:id", h.getUser)
	router.GET("/users/:id/tickets", h.listTickets)

	admin := router.Group("/admin")
	admin.Use(RequireAdmin(adminToken))
	{
		admin.POST("/draws/trigger", h.triggerDraw)
		admin.POST("/draws/next", h.createNextDraw)
		admin.POST("/users/:id/deposit", h.deposit)
	}
}

func (h *handler) getCurrentDraw(c *gin.Context) {
	status, err := h.api.GetCurrentDraw(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDrawStatusResponse(status))
}

func (h *handler) purchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	result, err := h.api.Purchase(c.Request.Context(), req.UserID, req.Numbers)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ticket":      toTicketResponse(result.Ticket),
		"new_balance": result.NewBalance,
		"draw":        toDrawResponse(result.Draw),
	})
}

func (h *handler) claim(c *gin.Context) {
	ticketID, ok := pathID(c)
	if !ok {
		return
	}

	var req claimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	result, err := h.api.ClaimPrize(c.Request.Context(), ticketID, req.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ticket":          toTicketResponse(result.Ticket),
		"already_claimed": result.AlreadyClaimed,
	})
}

func (h *handler) quickPick(c *gin.Context) {
	numbers, err := h.api.QuickPick()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"numbers": numbers})
}

func (h *handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	result, err := h.api.EnsureUser(c.Request.Context(), req.ExternalID, req.Username)
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"user":    toUserResponse(result.User),
		"created": result.Created,
	})
}

func (h *handler) getUser(c *gin.Context) {
	userID, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.api.GetUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *handler) listTickets(c *gin.Context) {
	userID, ok := pathID(c)
	if !ok {
		return
	}

	page, err := queryInt(c, "page", 1)
	if err != nil {
		badRequest(c, "page", "must be an integer")
		return
	}
	pageSize, err := queryInt(c, "page_size", 0)
	if err != nil {
		badRequest(c, "page_size", "must be an integer")
		return
	}

	result, err := h.api.ListTickets(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}

	tickets := make([]ticketResponse, 0, len(result.Tickets))
	for _, t := range result.Tickets {
		tickets = append(tickets, toTicketResponse(t))
	}
	counts := make(map[string]int64, len(entities.AllTicketStatuses))
	for _, status := range entities.AllTicketStatuses {
		counts[string(status)] = result.Counts[status]
	}

	c.JSON(http.StatusOK, gin.H{
		"tickets":   tickets,
		"page":      result.Page,
		"page_size": result.PageSize,
		"total":     result.Total,
		"counts":    counts,
	})
}

func (h *handler) triggerDraw(c *gin.Context) {
	result, err := h.api.TriggerDraw(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSettlementResponse(result))
}

func (h *handler) createNextDraw(c *gin.Context) {
	draw, created, err := h.api.CreateNextDraw(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"draw":    toDrawResponse(draw),
		"created": created,
	})
}

func (h *handler) deposit(c *gin.Context) {
	userID, ok := pathID(c)
	if !ok {
		return
	}

	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	user, err := h.api.Deposit(c.Request.Context(), userID, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// pathID parses the :id parameter, writing a 400 when it is malformed
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "id", "must be a positive integer")
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
