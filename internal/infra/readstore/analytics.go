package readstore

import (
	"context"
	"time"

	"tablebook/internal/domain/customer"
	"tablebook/internal/infra"
	"tablebook/internal/infra/db"
	"tablebook/internal/usecase/queries"

	"github.com/google/uuid"
)

type AnalyticsReadStore struct {
	db db.DBTX
}

func NewAnalyticsReadStore(dbtx db.DBTX) *AnalyticsReadStore {
	return &AnalyticsReadStore{db: dbtx}
}

var _ queries.AnalyticsQueries = (*AnalyticsReadStore)(nil)

// Summary aggregates reservations starting within [from, to), plus the
// current customer segmentation. Rates are fractions of the range total;
// a range with no reservations reports zero rates rather than NaN.
func (s *AnalyticsReadStore) Summary(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) (*queries.AnalyticsSummary, error) {
	out := &queries.AnalyticsSummary{From: from, To: to}

	if err := s.statusCounts(ctx, restaurantID, from, to, out); err != nil {
		return nil, err
	}
	if err := s.utilization(ctx, restaurantID, from, to, out); err != nil {
		return nil, err
	}
	if err := s.segments(ctx, restaurantID, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AnalyticsReadStore) statusCounts(ctx context.Context, restaurantID uuid.UUID, from, to time.Time, out *queries.AnalyticsSummary) error {
	query := `
		SELECT status, COUNT(*), COALESCE(AVG(party_size), 0)
		FROM reservations
		WHERE restaurant_id = $1 AND start_time >= $2 AND start_time < $3
		GROUP BY status
		ORDER BY status`

	rows, err := s.db.Query(ctx, query, restaurantID, from, to)
	if err != nil {
		return infra.WrapRepoErr("failed to aggregate reservation statuses", err)
	}
	defer rows.Close()

	var partySizeSum float64
	counts := []queries.StatusCount{}
	byStatus := map[string]int{}
	for rows.Next() {
		var (
			status  string
			count   int
			avgSize float64
		)
		if err := rows.Scan(&status, &count, &avgSize); err != nil {
			return infra.WrapRepoErr("failed to scan status count", err)
		}
		counts = append(counts, queries.StatusCount{Status: status, Count: count})
		byStatus[status] = count
		out.TotalReservations += count
		partySizeSum += avgSize * float64(count)
	}
	if err := rows.Err(); err != nil {
		return infra.WrapRepoErr("failed to iterate status counts", err)
	}

	out.StatusCounts = counts
	if out.TotalReservations > 0 {
		total := float64(out.TotalReservations)
		out.CompletionRate = float64(byStatus["finished"]) / total
		out.NoShowRate = float64(byStatus["no_show"]) / total
		out.CancellationRate = float64(byStatus["cancelled"]) / total
		out.AvgPartySize = partySizeSum / total
	}
	return nil
}

// utilization is reserved table-seconds (seated or finished) over the range's
// available table-seconds across all current tables.
func (s *AnalyticsReadStore) utilization(ctx context.Context, restaurantID uuid.UUID, from, to time.Time, out *queries.AnalyticsSummary) error {
	query := `
		SELECT
			COALESCE(SUM(EXTRACT(EPOCH FROM (end_time - start_time)))
				FILTER (WHERE status IN ('seated', 'finished')), 0),
			(SELECT COUNT(*) FROM tables WHERE restaurant_id = $1)
		FROM reservations
		WHERE restaurant_id = $1 AND start_time >= $2 AND start_time < $3`

	var reservedSeconds float64
	var tableCount int
	if err := s.db.QueryRow(ctx, query, restaurantID, from, to).Scan(&reservedSeconds, &tableCount); err != nil {
		return infra.WrapRepoErr("failed to compute utilization", err)
	}

	available := to.Sub(from).Seconds() * float64(tableCount)
	if available > 0 {
		out.UtilizationRate = reservedSeconds / available
	}
	return nil
}

func (s *AnalyticsReadStore) segments(ctx context.Context, restaurantID uuid.UUID, out *queries.AnalyticsSummary) error {
	query := `
		SELECT total_visits, no_show_count
		FROM customers
		WHERE restaurant_id = $1`

	rows, err := s.db.Query(ctx, query, restaurantID)
	if err != nil {
		return infra.WrapRepoErr("failed to list customer counters", err)
	}
	defer rows.Close()

	buckets := map[string]int{}
	for rows.Next() {
		var visits, noShows int
		if err := rows.Scan(&visits, &noShows); err != nil {
			return infra.WrapRepoErr("failed to scan customer counters", err)
		}
		buckets[customer.SegmentOf(visits, noShows)]++
	}
	if err := rows.Err(); err != nil {
		return infra.WrapRepoErr("failed to iterate customer counters", err)
	}

	segments := []queries.SegmentCount{}
	for _, name := range []string{"new", "returning", "frequent", "at_risk"} {
		if n, ok := buckets[name]; ok {
			segments = append(segments, queries.SegmentCount{Segment: name, Count: n})
		}
	}
	out.Segments = segments
	return nil
}
