package handlers

import (
	"net/http"

	"databank/internal/models"
	"databank/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	service services.ProjectService
	log     *zap.Logger
}

func NewProjectHandler(service services.ProjectService, log *zap.Logger) *ProjectHandler {
	return &ProjectHandler{service: service, log: log}
}

// @Summary      Create a project
// @Description  The caller must own a dataset and be listed in userIds.
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Param        request  body      models.CreateProjectRequest  true  "Project"
// @Success      201      {object}  models.Project
// @Failure      403      {object}  map[string]string
// @Security     BearerAuth
// @Router       /projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	project, err := h.service.CreateProject(c.Request.Context(), claims.ID, req)
	if err != nil {
		writeError(c, h.log, "[projects][create]", err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// @Summary      List my projects
// @Tags         Projects
// @Produce      json
// @Success      200  {array}  models.Project
// @Security     BearerAuth
// @Router       /projects [get]
func (h *ProjectHandler) GetAllProjects(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	projects, err := h.service.GetAllProjects(c.Request.Context(), claims.ID)
	if err != nil {
		writeError(c, h.log, "[projects][list]", err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// @Summary      Get a project
// @Tags         Projects
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  models.Project
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /projects/{id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	project, err := h.service.GetProject(c.Request.Context(), claims.ID, c.Param("id"))
	if err != nil {
		writeError(c, h.log, "[projects][get]", err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// @Summary      Update a project
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Project ID"
// @Param        request  body      models.UpdateProjectRequest  true  "Fields to change"
// @Success      200      {object}  models.Project
// @Failure      403      {object}  map[string]string
// @Security     BearerAuth
// @Router       /projects/{id} [patch]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	var req models.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	project, err := h.service.UpdateProject(c.Request.Context(), claims.ID, c.Param("id"), req)
	if err != nil {
		writeError(c, h.log, "[projects][update]", err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// @Summary      Delete a project
// @Tags         Projects
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  models.Project
// @Security     BearerAuth
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	project, err := h.service.DeleteProject(c.Request.Context(), claims.ID, c.Param("id"))
	if err != nil {
		writeError(c, h.log, "[projects][delete]", err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// @Summary      Add a project member
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Project ID"
// @Param        request  body      models.ProjectUserRequest  true  "Member"
// @Success      200      {object}  models.Project
// @Security     BearerAuth
// @Router       /projects/{id}/users [post]
func (h *ProjectHandler) AddUser(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	var req models.ProjectUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	project, err := h.service.AddUser(c.Request.Context(), claims.ID, c.Param("id"), req.UserID)
	if err != nil {
		writeError(c, h.log, "[projects][add_user]", err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// @Summary      Remove a project member
// @Tags         Projects
// @Produce      json
// @Param        id      path      string  true  "Project ID"
// @Param        userId  path      string  true  "User ID"
// @Success      200     {object}  models.Project
// @Security     BearerAuth
// @Router       /projects/{id}/users/{userId} [delete]
func (h *ProjectHandler) RemoveUser(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	project, err := h.service.RemoveUser(c.Request.Context(), claims.ID, c.Param("id"), c.Param("userId"))
	if err != nil {
		writeError(c, h.log, "[projects][remove_user]", err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// @Summary      List project datasets
// @Tags         Projects
// @Produce      json
// @Param        id   path     string  true  "Project ID"
// @Success      200  {array}  models.ProjectDataset
// @Security     BearerAuth
// @Router       /projects/{id}/datasets [get]
func (h *ProjectHandler) GetProjectDatasets(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	datasets, err := h.service.GetProjectDatasets(c.Request.Context(), claims.ID, c.Param("id"))
	if err != nil {
		writeError(c, h.log, "[projects][datasets]", err)
		return
	}
	c.JSON(http.StatusOK, datasets)
}

// @Summary      Attach a dataset to a project
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "Project ID"
// @Param        request  body      models.ProjectDataset  true  "Dataset"
// @Success      200      {object}  models.Project
// @Security     BearerAuth
// @Router       /projects/{id}/datasets [post]
func (h *ProjectHandler) AddDataset(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	var req models.ProjectDataset
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	project, err := h.service.AddDataset(c.Request.Context(), claims.ID, c.Param("id"), req.DatasetID)
	if err != nil {
		writeError(c, h.log, "[projects][add_dataset]", err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// @Summary      Detach a dataset from a project
// @Tags         Projects
// @Produce      json
// @Param        id         path      string  true  "Project ID"
// @Param        datasetId  path      string  true  "Dataset ID"
// @Success      200        {object}  models.Project
// @Security     BearerAuth
// @Router       /projects/{id}/datasets/{datasetId} [delete]
func (h *ProjectHandler) RemoveDataset(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	project, err := h.service.RemoveDataset(c.Request.Context(), claims.ID, c.Param("id"), c.Param("datasetId"))
	if err != nil {
		writeError(c, h.log, "[projects][remove_dataset]", err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// @Summary      Grant dataset ownership
// @Description  Records that the user owns the dataset, which lets them create and manage projects with it.
// @Tags         Projects
// @Accept       json
// @Param        id       path  string                          true  "User ID"
// @Param        request  body  models.DatasetOwnershipRequest  true  "Dataset"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /admin/users/{id}/datasets [post]
func (h *ProjectHandler) GrantDatasetOwnership(c *gin.Context) {
	var req models.DatasetOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.service.GrantDatasetOwnership(c.Request.Context(), c.Param("id"), req.DatasetID); err != nil {
		writeError(c, h.log, "[projects][grant_dataset]", err)
		return
	}
	c.Status(http.StatusNoContent)
}
