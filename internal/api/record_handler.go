package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/card-slot/internal/repository"
	"go.uber.org/zap"
)

// RecordHandler 对局记录处理器
type RecordHandler struct {
	records repository.GameRecordRepository
	logger  *zap.Logger
}

// NewRecordHandler 创建对局记录处理器
func NewRecordHandler(records repository.GameRecordRepository, logger *zap.Logger) *RecordHandler {
	return &RecordHandler{
		records: records,
		logger:  logger,
	}
}

// ListResponse 记录列表响应
type ListResponse struct {
	Records  interface{} `json:"records"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// List 查询最近对局记录
func (h *RecordHandler) List(c *gin.Context) {
	var query struct {
		Page     int    `form:"page"`
		PageSize int    `form:"page_size"`
		Mode     string `form:"mode" binding:"omitempty,oneof=solo cpu"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	pagination := repository.NewPagination(query.Page, query.PageSize)

	var (
		records interface{}
		err     error
	)
	if query.Mode != "" {
		records, err = h.records.ListByMode(c.Request.Context(), query.Mode, pagination)
	} else {
		records, err = h.records.ListRecent(c.Request.Context(), pagination)
	}
	if err != nil {
		h.logger.Error("查询对局记录失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Records:  records,
		Total:    pagination.Total,
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	})
}

// GetBySession 查询单局记录
func (h *RecordHandler) GetBySession(c *gin.Context) {
	sessionID := c.Param("id")

	record, err := h.records.FindBySessionID(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "RECORD_NOT_FOUND",
			"message": "对局记录不存在",
		})
		return
	}

	c.JSON(http.StatusOK, record)
}

// Stats 查询对局统计
func (h *RecordHandler) Stats(c *gin.Context) {
	var query struct {
		Days int `form:"days" binding:"omitempty,min=1,max=365"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}
	if query.Days == 0 {
		query.Days = 7
	}

	end := time.Now()
	start := end.AddDate(0, 0, -query.Days)

	stats, err := h.records.GetStatistics(c.Request.Context(), start, end)
	if err != nil {
		h.logger.Error("查询对局统计失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
