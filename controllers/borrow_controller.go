// controllers/borrow_controller.go
package controllers

import (
	"errors"
	"io"
	"math"
	"net/http"
	"time"

	"workshop_tool_tracker/app"
	"workshop_tool_tracker/apperr"
	"workshop_tool_tracker/services"

	"github.com/gin-gonic/gin"
)

type BorrowController struct{ *Srv }

func NewBorrowController(s *Srv) *BorrowController { return &BorrowController{Srv: s} }

// 借出
func (bc *BorrowController) Borrow(c *gin.Context) {
	var in services.BorrowInput
	if !bc.bindJSON(c, &in) {
		return
	}
	rec, err := bc.Borrows.Borrow(c.Request.Context(), in)
	if err != nil {
		bc.fail(c, err, "Failed to borrow tool")
		return
	}
	ok(c, http.StatusOK, "Tool borrowed successfully", app.H{"borrowRecord": rec})
}

// 归还
func (bc *BorrowController) Return(c *gin.Context) {
	var in struct {
		BorrowRecordID string `json:"borrowRecordId"`
	}
	if !bc.bindJSON(c, &in) {
		return
	}
	rec, err := bc.Borrows.Return(c.Request.Context(), in.BorrowRecordID)
	if err != nil {
		bc.fail(c, err, "Failed to return tool")
		return
	}
	ok(c, http.StatusOK, "Tool returned successfully", app.H{"borrowRecord": rec})
}

// 借还记录
func (bc *BorrowController) ListRecords(c *gin.Context) {
	recs, err := bc.Borrows.List(c.Request.Context())
	if err != nil {
		bc.fail(c, err, "Failed to fetch borrow records")
		return
	}
	ok(c, http.StatusOK, "Borrow records retrieved successfully", app.H{"records": recs})
}

func (bc *BorrowController) ListActiveRecords(c *gin.Context) {
	recs, err := bc.Borrows.ListActive(c.Request.Context())
	if err != nil {
		bc.fail(c, err, "Failed to fetch active borrow records")
		return
	}
	ok(c, http.StatusOK, "Active borrow records retrieved successfully", app.H{"records": recs})
}

// 超过该值 time.Duration 会溢出
const maxOlderThanHours = float64(math.MaxInt64) / float64(time.Hour)

// 逾期检查，body 可为空
func (bc *BorrowController) NotifyOverdue(c *gin.Context) {
	var in struct {
		OlderThanHours *float64 `json:"olderThanHours"`
	}
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		bc.fail(c, apperr.Wrap(apperr.CodeValidation, err, "Invalid JSON body"), "Invalid JSON body")
		return
	}
	var olderThan time.Duration
	if in.OlderThanHours != nil {
		if *in.OlderThanHours <= 0 {
			bc.fail(c, apperr.New(apperr.CodeValidation, "olderThanHours must be positive"), "")
			return
		}
		if *in.OlderThanHours >= maxOlderThanHours {
			bc.fail(c, apperr.New(apperr.CodeValidation, "olderThanHours is too large"), "")
			return
		}
		olderThan = time.Duration(*in.OlderThanHours * float64(time.Hour))
	}
	n, err := bc.Borrows.NotifyOverdue(c.Request.Context(), olderThan)
	if err != nil {
		bc.fail(c, err, "Failed to check overdue borrows")
		return
	}
	ok(c, http.StatusOK, "Overdue check completed", app.H{"count": n})
}
