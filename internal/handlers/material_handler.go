package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/masterproject/course-platform/internal/services"
	"github.com/masterproject/course-platform/internal/utils"
)

type MaterialHandler struct {
	BaseHandler
	materialService services.MaterialService
}

func NewMaterialHandler(materialService services.MaterialService, logger utils.Logger) *MaterialHandler {
	return &MaterialHandler{
		BaseHandler:     NewBaseHandler(logger),
		materialService: materialService,
	}
}

// ListCourseMaterials lists a course's materials for an enrolled user
// @Summary Course materials
// @Tags materials
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {array} models.CourseMaterial
// @Failure 403 {object} ErrorResponse
// @Router /courses/{id}/materials [get]
func (h *MaterialHandler) ListCourseMaterials(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	materials, err := h.materialService.ListByCourse(c.Request.Context(), courseID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, materials)
}

// DownloadMaterial proxies the file from storage as an attachment
// @Summary Download material
// @Tags materials
// @Produce octet-stream
// @Param id path uint true "Material ID"
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Router /materials/{id}/download [get]
func (h *MaterialHandler) DownloadMaterial(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	materialID := h.parseIDParam(c, "id")
	if materialID == 0 {
		return
	}

	h.LogRequest(c, "Proxying material download", "material_id", materialID)

	result, err := h.materialService.FetchForDownload(c.Request.Context(), materialID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer result.Body.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("Content-Type", result.ContentType)
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, result.Body); err != nil {
		// Headers are already sent; all we can do is log the broken stream.
		utils.FromContext(c.Request.Context()).Error("Material download stream interrupted",
			"error", err,
			"material_id", materialID)
	}
}

// CreateMaterial attaches a file pointer to a course
// @Summary Create material
// @Tags admin
// @Accept json
// @Produce json
// @Success 201 {object} models.CourseMaterial
// @Failure 404 {object} ErrorResponse
// @Router /admin/materials [post]
func (h *MaterialHandler) CreateMaterial(c *gin.Context) {
	var req services.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "invalid request payload",
			Details: err.Error(),
		})
		return
	}

	material, err := h.materialService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, material)
}

// DeleteMaterial removes a material pointer
// @Summary Delete material
// @Tags admin
// @Param id path uint true "Material ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /admin/materials/{id} [delete]
func (h *MaterialHandler) DeleteMaterial(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.materialService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
