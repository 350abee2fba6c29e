// Package digest renders a KPI snapshot as a short text report and delivers it
// over WhatsApp.
package digest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/ganadero/internal/domain/models"
	"github.com/mamadbah2/ganadero/pkg/clients/whatsapp"
)

const dateLayout = "2006-01-02"

// ErrNoRecipient is returned when neither the request nor the configuration names a recipient.
var ErrNoRecipient = errors.New("digest recipient not configured")

// SnapshotSource computes the snapshot to report.
type SnapshotSource interface {
	ComputeSnapshot(ctx context.Context) (*models.KpiSnapshot, error)
}

// Service builds and sends digests.
type Service struct {
	snapshots SnapshotSource
	sender    whatsapp.Client
	recipient string
	loc       *time.Location
	logger    *zap.Logger
}

// NewService wires a new digest service instance. A nil location renders dates in UTC.
func NewService(snapshots SnapshotSource, sender whatsapp.Client, recipient string, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{snapshots: snapshots, sender: sender, recipient: recipient, loc: loc, logger: logger}
}

// Send computes a fresh snapshot and delivers it to `to`, or to the configured recipient.
func (s *Service) Send(ctx context.Context, to string) (*models.DigestReceipt, error) {
	if to == "" {
		to = s.recipient
	}
	if to == "" {
		return nil, ErrNoRecipient
	}

	snapshot, err := s.snapshots.ComputeSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("compute snapshot: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := s.sender.SendTextMessage(sendCtx, whatsapp.SendTextMessageRequest{To: to, Body: Format(snapshot, s.loc)})
	if err != nil {
		return nil, fmt.Errorf("deliver digest: %w", err)
	}

	receipt := &models.DigestReceipt{To: to, Partial: snapshot.Partial}
	if resp != nil && len(resp.Messages) > 0 {
		receipt.MessageID = resp.Messages[0].ID
	}
	s.logger.Info("digest delivered", zap.String("to", to), zap.Bool("partial", snapshot.Partial))
	return receipt, nil
}

// Format renders the snapshot as WhatsApp-friendly text.
func Format(snap *models.KpiSnapshot, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	var b strings.Builder

	fmt.Fprintf(&b, "*Herd digest* (%s)\n", snap.GeneratedAt.In(loc).Format(dateLayout))
	fmt.Fprintf(&b, "In field: %d (critical: %d)\n", snap.AnimalsInField, snap.AnimalsCritical)
	fmt.Fprintf(&b, "Sold: %d\n", snap.AnimalsSold)
	fmt.Fprintf(&b, "Avg field residency: %s\n", optional(snap.AvgFieldResidencyDays, "%.2f days"))
	fmt.Fprintf(&b, "Avg price differential: %s\n", optional(snap.AvgPriceDifferential, "$%.2f/kg"))

	if len(snap.CategoryDistribution) > 0 {
		categories := make([]string, 0, len(snap.CategoryDistribution))
		for c := range snap.CategoryDistribution {
			categories = append(categories, string(c))
		}
		sort.Strings(categories)
		parts := make([]string, 0, len(categories))
		for _, c := range categories {
			parts = append(parts, fmt.Sprintf("%s %d", c, snap.CategoryDistribution[models.Category(c)]))
		}
		fmt.Fprintf(&b, "Categories: %s\n", strings.Join(parts, ", "))
	}

	if len(snap.RecentActivity) > 0 {
		b.WriteString("\n*Recent activity*\n")
		for _, item := range snap.RecentActivity {
			fmt.Fprintf(&b, "- %s %s (%s)\n", item.Date.In(loc).Format(dateLayout), item.Description, item.Counterparty)
		}
	}

	if snap.Partial {
		fmt.Fprintf(&b, "\n_Partial data: %s unavailable_\n", strings.Join(snap.FailedSources, ", "))
	}

	return strings.TrimRight(b.String(), "\n")
}

func optional(v *float64, format string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf(format, *v)
}
