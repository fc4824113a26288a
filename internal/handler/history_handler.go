package handler

import (
	"net/http"
	"strconv"

	"docsynth/internal/db"

	"github.com/gin-gonic/gin"
)

const (
	defaultHistoryPageSize = 100
	maxHistoryPageSize     = 500
	maxHistoryOffset       = 1<<31 - 1
)

type HistoryHandler struct {
}

func NewHistoryHandler() *HistoryHandler {
	return &HistoryHandler{}
}

// ListHistory 返回历史记录数组（前端整体替换本地列表）。
// 不带 page 参数时返回全部。
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	offset, limit := 0, 0
	if c.Query("page") != "" || c.Query("page_size") != "" {
		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}
		pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultHistoryPageSize)))
		if err != nil || pageSize <= 0 {
			pageSize = defaultHistoryPageSize
		}
		if pageSize > maxHistoryPageSize {
			pageSize = maxHistoryPageSize
		}
		if page-1 > maxHistoryOffset/pageSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page 超出范围"})
			return
		}
		offset, limit = (page-1)*pageSize, pageSize
	}

	records, err := db.ListHistory(c.Request.Context(), offset, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, records)
}

// Stats 各项目类型的生成次数
func (h *HistoryHandler) Stats(c *gin.Context) {
	counts, err := db.CountHistoryByProjectType(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	total := 0
	for _, n := range counts {
		total += n
	}

	c.JSON(http.StatusOK, gin.H{
		"counts": counts,
		"total":  total,
	})
}
