// Package stats aggregates ticket counts for the dashboard and the report
// pages. Everything is recomputed from the store on each call.
package stats

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Alijeyrad/helpdesk_backend/internal/domain"
	"github.com/Alijeyrad/helpdesk_backend/internal/store"
)

const ExportSheet = "Tickets"

var exportHeader = []any{
	"ID", "Subject", "Status", "Priority", "Category",
	"Created By", "Assigned To", "Created At", "Updated At",
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type VolumePoint struct {
	Name     string `json:"name"`
	Created  int    `json:"created"`
	Resolved int    `json:"resolved"`
}

type CategoryCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type ResponseTimePoint struct {
	Name string  `json:"name"`
	Time float64 `json:"time"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Stats(ctx context.Context) (domain.Stats, error)
	Volume(ctx context.Context, tf Timeframe) ([]VolumePoint, error)
	Categories(ctx context.Context, tf Timeframe) ([]CategoryCount, error)
	ResponseTime(ctx context.Context, tf Timeframe) ([]ResponseTimePoint, error)
	// Export renders the tickets created within tf as an XLSX workbook.
	Export(ctx context.Context, tf Timeframe) ([]byte, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type statsService struct {
	store store.Store
	now   func() time.Time
}

// New builds the aggregator. now defaults to time.Now; its location decides
// where "today" starts.
func New(s store.Store, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &statsService{store: s, now: now}
}

func (s *statsService) Stats(ctx context.Context) (domain.Stats, error) {
	tickets, err := s.store.ListTickets(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("list tickets: %w", err)
	}

	today := midnight(s.now())
	st := domain.Stats{Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case domain.StatusOpen:
			st.OpenCount++
		case domain.StatusInProgress:
			st.InProgressCount++
		case domain.StatusResolved:
			st.ResolvedCount++
			if !t.UpdatedAt.Before(today) {
				st.ResolvedToday++
			}
		case domain.StatusClosed:
			st.ClosedCount++
		}
		if t.Priority == domain.PriorityHigh {
			st.HighPriorityCount++
		}
	}
	return st, nil
}

func (s *statsService) Volume(ctx context.Context, tf Timeframe) ([]VolumePoint, error) {
	bs, err := s.buckets(tf)
	if err != nil {
		return nil, err
	}
	tickets, err := s.store.ListTickets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	acts, err := s.store.ListRecentActivities(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	out := make([]VolumePoint, len(bs))
	for i, b := range bs {
		out[i].Name = b.Name
		for _, t := range tickets {
			if b.contains(t.CreatedAt) {
				out[i].Created++
			}
		}
		for _, a := range acts {
			if a.Type == domain.ActivityResolved && b.contains(a.CreatedAt) {
				out[i].Resolved++
			}
		}
	}
	return out, nil
}

func (s *statsService) Categories(ctx context.Context, tf Timeframe) ([]CategoryCount, error) {
	tickets, err := s.ticketsIn(ctx, tf)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, t := range tickets {
		counts[t.Category]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, CategoryCount{Name: name, Value: n})
	}
	slices.SortFunc(out, func(a, b CategoryCount) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out, nil
}

// ResponseTime averages the hours from ticket creation to the first comment
// written by someone other than the creator. Unanswered tickets are skipped.
func (s *statsService) ResponseTime(ctx context.Context, tf Timeframe) ([]ResponseTimePoint, error) {
	bs, err := s.buckets(tf)
	if err != nil {
		return nil, err
	}
	tickets, err := s.store.ListTickets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	out := make([]ResponseTimePoint, len(bs))
	sums := make([]float64, len(bs))
	counts := make([]int, len(bs))
	for _, t := range tickets {
		i := slices.IndexFunc(bs, func(b bucket) bool { return b.contains(t.CreatedAt) })
		if i < 0 {
			continue
		}
		reply, ok, err := s.firstReply(ctx, t)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		sums[i] += reply.Sub(t.CreatedAt).Hours()
		counts[i]++
	}
	for i, b := range bs {
		out[i].Name = b.Name
		if counts[i] > 0 {
			out[i].Time = math.Round(sums[i]/float64(counts[i])*10) / 10
		}
	}
	return out, nil
}

func (s *statsService) firstReply(ctx context.Context, t domain.Ticket) (time.Time, bool, error) {
	comments, err := s.store.ListComments(ctx, t.ID)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("list comments for ticket %d: %w", t.ID, err)
	}
	for _, c := range comments {
		if c.UserID != t.CreatedByID {
			return c.CreatedAt, true, nil
		}
	}
	return time.Time{}, false, nil
}

func (s *statsService) Export(ctx context.Context, tf Timeframe) ([]byte, error) {
	tickets, err := s.ticketsIn(ctx, tf)
	if err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	names := make(map[int]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ExportSheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, t := range tickets {
		assignee := ""
		if t.AssignedToID != nil {
			assignee = names[*t.AssignedToID]
		}
		row := []any{
			t.ID, t.Subject, string(t.Status), string(t.Priority), t.Category,
			names[t.CreatedByID], assignee,
			t.CreatedAt.Format(time.RFC3339), t.UpdatedAt.Format(time.RFC3339),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write ticket %d: %w", t.ID, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *statsService) buckets(tf Timeframe) ([]bucket, error) {
	bs := buckets(tf, s.now())
	if bs == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimeframe, tf)
	}
	return bs, nil
}

func (s *statsService) ticketsIn(ctx context.Context, tf Timeframe) ([]domain.Ticket, error) {
	bs, err := s.buckets(tf)
	if err != nil {
		return nil, err
	}
	tickets, err := s.store.ListTickets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	w := window(bs)
	return slices.DeleteFunc(tickets, func(t domain.Ticket) bool { return !w.contains(t.CreatedAt) }), nil
}
