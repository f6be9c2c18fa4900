package controllers

import (
	"net/http"

	"workshop_tool_tracker/app"
	"workshop_tool_tracker/services"

	"github.com/gin-gonic/gin"
)

type ToolController struct{ *Srv }

func NewToolController(s *Srv) *ToolController { return &ToolController{Srv: s} }

func (tc *ToolController) ListTools(c *gin.Context) {
	tools, err := tc.Tools.List(c.Request.Context())
	if err != nil {
		tc.fail(c, err, "Failed to fetch tools")
		return
	}
	ok(c, http.StatusOK, "Tools retrieved successfully", app.H{"tools": tools})
}

func (tc *ToolController) CreateTool(c *gin.Context) {
	var in services.CreateToolInput
	if !tc.bindJSON(c, &in) {
		return
	}
	tool, err := tc.Tools.Create(c.Request.Context(), in)
	if err != nil {
		tc.fail(c, err, "Failed to create tool")
		return
	}
	ok(c, http.StatusCreated, "Tool created successfully", app.H{"tool": tool})
}

func (tc *ToolController) GetTool(c *gin.Context) {
	tool, err := tc.Tools.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		tc.fail(c, err, "Failed to fetch tool")
		return
	}
	ok(c, http.StatusOK, "Tool retrieved successfully", app.H{"tool": tool})
}

// 扫码查询：code 就是工具 id
func (tc *ToolController) GetToolByCode(c *gin.Context) {
	tool, err := tc.Tools.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		tc.fail(c, err, "Failed to fetch tool")
		return
	}
	ok(c, http.StatusOK, "Tool found", app.H{"tool": tool})
}

func (tc *ToolController) UpdateTool(c *gin.Context) {
	var in services.UpdateToolInput
	if !tc.bindJSON(c, &in) {
		return
	}
	tool, err := tc.Tools.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		tc.fail(c, err, "Failed to update tool")
		return
	}
	ok(c, http.StatusOK, "Tool updated successfully", app.H{"tool": tool})
}

func (tc *ToolController) DeleteTool(c *gin.Context) {
	if err := tc.Tools.Delete(c.Request.Context(), c.Param("id")); err != nil {
		tc.fail(c, err, "Failed to delete tool")
		return
	}
	ok(c, http.StatusOK, "Tool deleted successfully", nil)
}

func (tc *ToolController) ForceDeleteTool(c *gin.Context) {
	if err := tc.Tools.ForceDelete(c.Request.Context(), c.Param("id")); err != nil {
		tc.fail(c, err, "Failed to delete tool")
		return
	}
	ok(c, http.StatusOK, "Tool and its history deleted successfully", nil)
}
