package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hubly/helpdesk/internal/api/dto"
	"github.com/hubly/helpdesk/internal/service"
	apperrors "github.com/hubly/helpdesk/pkg/util"
)

// AnalyticsHandler serves dashboard metrics.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Overview GET /analytics — all four metrics computed concurrently.
func (h *AnalyticsHandler) Overview(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	weeks, _ := strconv.Atoi(c.Query("weeks"))
	startDate, endDate, err := dateRange(c)
	if err != nil {
		return err
	}

	overview, err := h.analytics.Overview(c.Context(), caller, weeks, startDate, endDate)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": dto.AnalyticsOverviewResponse{
			AvgReplyTime:       overview.AvgReplyTimeSeconds,
			MissedChats:        weekBuckets(overview.MissedChats),
			ResolvedPercentage: overview.ResolvedPercentage,
			TotalChats:         overview.TotalChats,
		},
	})
}

// MissedChats GET /analytics/missed-chats — weekly trend series.
func (h *AnalyticsHandler) MissedChats(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	weeks, _ := strconv.Atoi(c.Query("weeks"))

	trend, err := h.analytics.MissedChatsOverTime(c.Context(), caller, weeks)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    weekBuckets(trend),
	})
}

// ReplyTime GET /analytics/reply-time.
func (h *AnalyticsHandler) ReplyTime(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	stats, err := h.analytics.AverageReplyTime(c.Context(), caller)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"avgReplyTime": stats.AverageReplyTimeSeconds,
			"replyCount":   stats.ReplyCount,
		},
	})
}

// ResolvedTickets GET /analytics/resolved-tickets.
func (h *AnalyticsHandler) ResolvedTickets(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	stats, err := h.analytics.ResolvedTickets(c.Context(), caller)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"resolved":           stats.Resolved,
			"unresolved":         stats.Unresolved,
			"resolvedPercentage": stats.Percentage,
		},
	})
}

// TotalChats GET /analytics/total-chats — optionally date-bounded.
func (h *AnalyticsHandler) TotalChats(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	startDate, endDate, err := dateRange(c)
	if err != nil {
		return err
	}

	stats, err := h.analytics.TotalChats(c.Context(), caller, startDate, endDate)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"totalChats": stats.TotalChats,
		},
	})
}

// dateRange parses optional startDate/endDate query params. The end
// date is pushed to the end of its day so the range is inclusive.
func dateRange(c *fiber.Ctx) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if raw := c.Query("startDate"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("startDate must be YYYY-MM-DD", nil)
		}
		start = &t
	}
	if raw := c.Query("endDate"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("endDate must be YYYY-MM-DD", nil)
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		end = &t
	}
	return start, end, nil
}

func weekBuckets(buckets []service.WeekBucket) []dto.WeekBucketResponse {
	result := make([]dto.WeekBucketResponse, 0, len(buckets))
	for _, b := range buckets {
		result = append(result, dto.WeekBucketResponse{Week: b.Week, Chats: b.Chats})
	}
	return result
}
