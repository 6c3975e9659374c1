package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campusbuddy/internal/app/matching"
	"github.com/yigit/campusbuddy/internal/app/models/dto"
	"github.com/yigit/campusbuddy/internal/app/services"
	"github.com/yigit/campusbuddy/internal/middleware"
)

// BuddyController handles buddy program endpoints
type BuddyController struct {
	buddyService services.BuddyService
}

// NewBuddyController creates a new BuddyController
func NewBuddyController(buddyService services.BuddyService) *BuddyController {
	return &BuddyController{
		buddyService: buddyService,
	}
}

// OptIn joins the buddy program in the requested role
// @Summary Opt in to the buddy program
// @Tags buddy
// @Param request body dto.OptInRequest true "Role to join"
// @Success 200 {object} dto.APIResponse{data=models.OptIn}
// @Router /buddy/optin [post]
func (c *BuddyController) OptIn(ctx *gin.Context) {
	var req dto.OptInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	optIn, err := c.buddyService.OptIn(ctx.Request.Context(), middleware.UserID(ctx), req.Type)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(optIn, "Opted in successfully"))
}

// OptOut leaves the buddy program role. Existing matches are kept.
// @Summary Opt out of the buddy program
// @Tags buddy
// @Param request body dto.OptInRequest true "Role to leave"
// @Success 200 {object} dto.APIResponse{data=models.OptIn}
// @Failure 404 {object} dto.ErrorResponse "No opt-in for this role"
// @Router /buddy/optout [post]
func (c *BuddyController) OptOut(ctx *gin.Context) {
	var req dto.OptInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	optIn, err := c.buddyService.OptOut(ctx.Request.Context(), middleware.UserID(ctx), req.Type)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(optIn, "Opted out successfully"))
}

// GetCurrentMatch returns the caller's ACTIVE match; data is null when there is none
// @Summary Get current buddy match
// @Tags buddy
// @Success 200 {object} dto.APIResponse{data=models.MatchDetails}
// @Router /buddy/match [get]
func (c *BuddyController) GetCurrentMatch(ctx *gin.Context) {
	details, err := c.buddyService.GetCurrentMatch(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if details == nil {
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "No active match"))
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(details, ""))
}

// CreateMeeting schedules a meeting on a match
// @Summary Schedule a buddy meeting
// @Tags buddy
// @Param id path string true "Match ID"
// @Param request body dto.CreateMeetingRequest true "Planned time"
// @Success 201 {object} dto.APIResponse{data=models.Meeting}
// @Failure 403 {object} dto.ErrorResponse "Caller is not part of the match"
// @Failure 404 {object} dto.ErrorResponse "Match not found"
// @Router /buddy/match/{id}/meeting [post]
func (c *BuddyController) CreateMeeting(ctx *gin.Context) {
	var req dto.CreateMeetingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	meeting, err := c.buddyService.CreateMeeting(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("id"), req.PlannedTime)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(meeting, "Meeting scheduled"))
}

// ListMeetings returns the meetings of a match
// @Summary List buddy meetings
// @Tags buddy
// @Param id path string true "Match ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Meeting}
// @Router /buddy/match/{id}/meetings [get]
func (c *BuddyController) ListMeetings(ctx *gin.Context) {
	meetings, err := c.buddyService.ListMeetings(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(meetings, ""))
}

// UpdateMeetingStatus changes a meeting's status
// @Summary Update buddy meeting status
// @Tags buddy
// @Param id path string true "Meeting ID"
// @Param request body dto.UpdateMeetingStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.Meeting}
// @Router /buddy/meeting/{id}/status [post]
func (c *BuddyController) UpdateMeetingStatus(ctx *gin.Context) {
	var req dto.UpdateMeetingStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	meeting, err := c.buddyService.UpdateMeetingStatus(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("id"), req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(meeting, "Meeting status updated"))
}

// RunMatching triggers a matching run for a campus
// @Summary Run buddy matching for a campus
// @Tags buddy-admin
// @Param campus query string true "Campus"
// @Success 200 {object} dto.APIResponse{data=dto.MatchRunResponse}
// @Failure 503 {object} dto.ErrorResponse "Store unavailable; error.details lists matches created before the failure"
// @Router /buddy/admin/match [post]
func (c *BuddyController) RunMatching(ctx *gin.Context) {
	var query dto.RunMatchingQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	result, err := c.buddyService.RunMatching(ctx.Request.Context(), query.Campus)
	if err != nil {
		// Matches committed before an abort stay in place; report them
		if result != nil {
			middleware.HandleAPIErrorWithDetails(ctx, err, runResponse(result))
			return
		}
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(runResponse(result), "Matching run complete"))
}

func runResponse(result *matching.Result) dto.MatchRunResponse {
	return dto.MatchRunResponse{
		RunID:        result.RunID,
		Campus:       result.Campus,
		CreatedCount: result.CreatedCount,
		Matches:      result.Matches,
		Proposed:     result.Proposed,
		Unmatched:    result.Unmatched,
		DurationMS:   result.Duration.Milliseconds(),
	}
}
