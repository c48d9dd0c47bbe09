package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobcard_portal/internal/responses"
	"jobcard_portal/internal/services"
)

type HseHandler struct {
	hseService *services.HseService
}

func NewHseHandler(hseService *services.HseService) *HseHandler {
	return &HseHandler{hseService: hseService}
}

// GetChecklist handles GET /api/v1/projects/:number/jobcards/:slug/hse
func (h *HseHandler) GetChecklist(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}

	checklist, err := h.hseService.Checklist(c.Request.Context(), user, c.Param("number"), c.Param("slug"))
	if err != nil {
		responses.Error(c, err, "Failed to retrieve HSE checklist")
		return
	}
	responses.Success(c, http.StatusOK, checklist, "HSE checklist retrieved successfully")
}

// SaveAnswers handles PUT /api/v1/projects/:number/jobcards/:slug/hse
func (h *HseHandler) SaveAnswers(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}

	var req services.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	checklist, err := h.hseService.Answer(c.Request.Context(), user, c.Param("number"), c.Param("slug"), req)
	if err != nil {
		responses.Error(c, err, "Failed to save HSE answers")
		return
	}
	responses.Success(c, http.StatusOK, checklist, "HSE answers saved successfully")
}

// ListTopics handles GET /api/v1/admin/hse/topics
func (h *HseHandler) ListTopics(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}

	topics, err := h.hseService.ListTopics(c.Request.Context(), user)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve HSE topics")
		return
	}
	responses.Success(c, http.StatusOK, topics, "HSE topics retrieved successfully")
}

// CreateTopic handles POST /api/v1/admin/hse/topics
func (h *HseHandler) CreateTopic(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}

	var req services.TopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	topic, err := h.hseService.CreateTopic(c.Request.Context(), user, req)
	if err != nil {
		responses.Error(c, err, "Failed to create HSE topic")
		return
	}
	responses.Success(c, http.StatusCreated, topic, "HSE topic created successfully")
}

// CreateQuestion handles POST /api/v1/admin/hse/topics/:topic_id/questions
func (h *HseHandler) CreateQuestion(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}
	topicID, err := uuidParam(c, "topic_id")
	if err != nil {
		responses.Error(c, err, "Invalid topic")
		return
	}

	var req services.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	question, err := h.hseService.CreateQuestion(c.Request.Context(), user, topicID, req)
	if err != nil {
		responses.Error(c, err, "Failed to create HSE question")
		return
	}
	responses.Success(c, http.StatusCreated, question, "HSE question created successfully")
}

// UpdateQuestion handles PATCH /api/v1/admin/hse/questions/:question_id
func (h *HseHandler) UpdateQuestion(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}
	questionID, err := uuidParam(c, "question_id")
	if err != nil {
		responses.Error(c, err, "Invalid question")
		return
	}

	var req services.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	question, err := h.hseService.UpdateQuestion(c.Request.Context(), user, questionID, req)
	if err != nil {
		responses.Error(c, err, "Failed to update HSE question")
		return
	}
	responses.Success(c, http.StatusOK, question, "HSE question updated successfully")
}
