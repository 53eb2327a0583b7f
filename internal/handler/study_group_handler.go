package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/studygroups-backend/internal/model"
	"github.com/stemsi/studygroups-backend/internal/response"
	"github.com/stemsi/studygroups-backend/internal/service"
	"github.com/stemsi/studygroups-backend/internal/validator"
)

// StudyGroupHandler exposes study group creation, lookup and membership.
type StudyGroupHandler struct {
	service *service.StudyGroupService
	log     zerolog.Logger
}

// NewStudyGroupHandler creates a new StudyGroupHandler.
func NewStudyGroupHandler(svc *service.StudyGroupService, log zerolog.Logger) *StudyGroupHandler {
	return &StudyGroupHandler{
		service: svc,
		log:     log.With().Str("component", "study_group_handler").Logger(),
	}
}

// CreateStudyGroup godoc
// POST /studygroup/create
// Creates a study group and returns its id.
func (h *StudyGroupHandler) CreateStudyGroup(c *gin.Context) {
	var req model.CreateStudyGroupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	// Already validated by the subject tag.
	subject, err := model.ParseSubject(req.Subject)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"subject": err.Error()})
		return
	}

	group, err := h.service.CreateStudyGroup(c.Request.Context(), req.Name, subject)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.CreatedStudyGroupResponse{ID: group.ID})
}

// ListStudyGroups godoc
// GET /studygroup
// Lists every study group with its members.
func (h *StudyGroupHandler) ListStudyGroups(c *gin.Context) {
	groups, err := h.service.ListStudyGroups(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	response.List(c, model.ToStudyGroupResponses(groups))
}

// SearchStudyGroups godoc
// GET /studygroup/search?subject=Math
func (h *StudyGroupHandler) SearchStudyGroups(c *gin.Context) {
	var req model.SearchStudyGroupsRequest
	if fields := validator.BindQuery(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	subject, err := model.ParseSubject(req.Subject)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"subject": err.Error()})
		return
	}

	groups, err := h.service.SearchStudyGroups(c.Request.Context(), subject)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.List(c, model.ToStudyGroupResponses(groups))
}

// GetStudyGroup godoc
// GET /studygroup/:id
func (h *StudyGroupHandler) GetStudyGroup(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	group, err := h.service.GetStudyGroup(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, group.ToResponse())
}

// JoinStudyGroup godoc
// PUT /studygroup/join?studyGroupId=1&userId=2
func (h *StudyGroupHandler) JoinStudyGroup(c *gin.Context) {
	h.membership(c, validator.BindQuery, h.service.JoinStudyGroup)
}

// JoinStudyGroupByPath godoc
// PUT /studygroup/join/1/2
func (h *StudyGroupHandler) JoinStudyGroupByPath(c *gin.Context) {
	h.membership(c, validator.BindURI, h.service.JoinStudyGroup)
}

// LeaveStudyGroup godoc
// PUT /studygroup/leave?studyGroupId=1&userId=2
func (h *StudyGroupHandler) LeaveStudyGroup(c *gin.Context) {
	h.membership(c, validator.BindQuery, h.service.LeaveStudyGroup)
}

// LeaveStudyGroupByPath godoc
// PUT /studygroup/leave/1/2
func (h *StudyGroupHandler) LeaveStudyGroupByPath(c *gin.Context) {
	h.membership(c, validator.BindURI, h.service.LeaveStudyGroup)
}

func (h *StudyGroupHandler) membership(
	c *gin.Context,
	bind func(*gin.Context, interface{}) map[string]string,
	apply func(ctx context.Context, studyGroupID, userID int) error,
) {
	var req model.MembershipRequest
	if fields := bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := apply(c.Request.Context(), req.StudyGroupID, req.UserID); err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, req)
}

// ListUsers godoc
// GET /users
// Lists users with the ids of the groups they belong to.
func (h *StudyGroupHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	out := make([]model.UserResponse, len(users))
	for i, u := range users {
		out[i] = u.ToResponse()
	}
	response.List(c, out)
}

// fail maps service errors to status codes. Anything unrecognized is logged
// and reported as an internal error.
func (h *StudyGroupHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNameTaken):
		response.Fail(c, http.StatusConflict, response.ErrNameTaken)
	case errors.Is(err, service.ErrSubjectTaken):
		response.Fail(c, http.StatusConflict, response.ErrSubjectTaken)
	case errors.Is(err, service.ErrAlreadyMember):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyMember)
	case errors.Is(err, service.ErrGroupNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrGroupNotFound)
	case errors.Is(err, service.ErrUserNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrUserNotFound)
	case errors.Is(err, service.ErrNotAMember):
		response.Fail(c, http.StatusNotFound, response.ErrNotAMember)
	default:
		h.log.Error().Err(err).
			Str("route", c.FullPath()).
			Str("correlation_id", response.CorrelationID(c)).
			Msg("Request failed")
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
