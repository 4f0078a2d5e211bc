package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/hubly/helpdesk/internal/domain"
	"github.com/hubly/helpdesk/internal/repository"
)

const defaultTrendWeeks = 10

// ReplyTimeStats reports the average first-reply gap in whole seconds.
type ReplyTimeStats struct {
	AverageReplyTimeSeconds int
	ReplyCount              int
}

// ResolvedStats reports resolution counts and percentage.
type ResolvedStats struct {
	Resolved   int
	Unresolved int
	Percentage int
}

// WeekBucket is one point of the missed-chat trend series.
type WeekBucket struct {
	Week  string
	Chats int
}

// TotalChatsStats reports the (optionally date-bounded) ticket count.
type TotalChatsStats struct {
	TotalChats int
}

// AnalyticsOverview bundles all four metrics for the dashboard.
type AnalyticsOverview struct {
	AvgReplyTimeSeconds int
	MissedChats         []WeekBucket
	ResolvedPercentage  int
	TotalChats          int
}

// AnalyticsService derives dashboard metrics from the raw
// ticket/message timeline, respecting the caller's visibility scope.
type AnalyticsService struct {
	tickets   repository.TicketRepository
	messages  repository.MessageRepository
	evaluator *MissedChatEvaluator
	now       func() time.Time
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(tickets repository.TicketRepository, messages repository.MessageRepository, evaluator *MissedChatEvaluator) *AnalyticsService {
	return &AnalyticsService{
		tickets:   tickets,
		messages:  messages,
		evaluator: evaluator,
		now:       time.Now,
	}
}

// AverageReplyTime averages the gap between the first and second
// message of every in-scope ticket that has at least two messages,
// regardless of sender. Zero samples yield zero.
func (s *AnalyticsService) AverageReplyTime(ctx context.Context, caller Caller) (*ReplyTimeStats, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{AssignedTo: ScopeTickets(caller)})
	if err != nil {
		return nil, err
	}

	var total time.Duration
	var samples int
	for i := range tickets {
		messages, err := s.messages.ListByTicket(ctx, tickets[i].ID)
		if err != nil {
			return nil, err
		}
		if len(messages) < 2 {
			continue
		}
		total += messages[1].Timestamp.Sub(messages[0].Timestamp)
		samples++
	}

	stats := &ReplyTimeStats{ReplyCount: samples}
	if samples > 0 {
		avg := total / time.Duration(samples)
		stats.AverageReplyTimeSeconds = int(math.Round(avg.Seconds()))
	}
	return stats, nil
}

// ResolvedTickets reports resolved vs unresolved counts and the
// resolution percentage rounded to the nearest integer.
func (s *AnalyticsService) ResolvedTickets(ctx context.Context, caller Caller) (*ResolvedStats, error) {
	scope := ScopeTickets(caller)
	resolved := domain.TicketStatusResolved

	resolvedCount, err := s.tickets.Count(ctx, repository.TicketFilter{AssignedTo: scope, Status: &resolved})
	if err != nil {
		return nil, err
	}
	unresolvedCount, err := s.tickets.Count(ctx, repository.TicketFilter{AssignedTo: scope, StatusNot: &resolved})
	if err != nil {
		return nil, err
	}

	stats := &ResolvedStats{Resolved: resolvedCount, Unresolved: unresolvedCount}
	if total := resolvedCount + unresolvedCount; total > 0 {
		stats.Percentage = int(math.Round(float64(resolvedCount) / float64(total) * 100))
	}
	return stats, nil
}

// MissedChatsOverTime returns a fixed-length series of the trailing N
// ISO weeks (oldest first), counting currently-missed tickets by
// creation week. The sweep runs first so the trend reflects current
// state rather than stale flags.
func (s *AnalyticsService) MissedChatsOverTime(ctx context.Context, caller Caller, weeks int) ([]WeekBucket, error) {
	if weeks <= 0 {
		weeks = defaultTrendWeeks
	}

	if err := s.evaluator.Sweep(ctx); err != nil {
		return nil, err
	}

	now := s.now()
	start := now.AddDate(0, 0, -weeks*7)
	missed := true
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{
		AssignedTo:  ScopeTickets(caller),
		IsMissed:    &missed,
		CreatedFrom: &start,
	})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(tickets))
	for i := range tickets {
		counts[isoWeekKey(tickets[i].CreatedAt)]++
	}

	series := make([]WeekBucket, 0, weeks)
	for i := weeks - 1; i >= 0; i-- {
		weekDate := now.AddDate(0, 0, -i*7)
		series = append(series, WeekBucket{
			Week:  fmt.Sprintf("Week %d", weeks-i),
			Chats: counts[isoWeekKey(weekDate)],
		})
	}
	return series, nil
}

// TotalChats counts in-scope tickets, optionally bounded by an
// inclusive creation-time range.
func (s *AnalyticsService) TotalChats(ctx context.Context, caller Caller, startDate, endDate *time.Time) (*TotalChatsStats, error) {
	filter := repository.TicketFilter{AssignedTo: ScopeTickets(caller)}
	if startDate != nil && endDate != nil {
		filter.CreatedFrom = startDate
		filter.CreatedTo = endDate
	}
	count, err := s.tickets.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &TotalChatsStats{TotalChats: count}, nil
}

// Overview computes all four metrics concurrently; they are
// independent of one another.
func (s *AnalyticsService) Overview(ctx context.Context, caller Caller, weeks int, startDate, endDate *time.Time) (*AnalyticsOverview, error) {
	var (
		wg       sync.WaitGroup
		reply    *ReplyTimeStats
		trend    []WeekBucket
		resolved *ResolvedStats
		totals   *TotalChatsStats
		errs     [4]error
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		reply, errs[0] = s.AverageReplyTime(ctx, caller)
	}()
	go func() {
		defer wg.Done()
		trend, errs[1] = s.MissedChatsOverTime(ctx, caller, weeks)
	}()
	go func() {
		defer wg.Done()
		resolved, errs[2] = s.ResolvedTickets(ctx, caller)
	}()
	go func() {
		defer wg.Done()
		totals, errs[3] = s.TotalChats(ctx, caller, startDate, endDate)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return &AnalyticsOverview{
		AvgReplyTimeSeconds: reply.AverageReplyTimeSeconds,
		MissedChats:         trend,
		ResolvedPercentage:  resolved.Percentage,
		TotalChats:          totals.TotalChats,
	}, nil
}

// isoWeekKey buckets a time by its ISO week-numbering year and week.
func isoWeekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-%d", year, week)
}
