package digest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/ganadero/internal/domain/models"
	"github.com/mamadbah2/ganadero/pkg/clients/whatsapp"
)

func sampleSnapshot() *models.KpiSnapshot {
	residency := 20.0
	return &models.KpiSnapshot{
		AnimalsInField:        12,
		AnimalsSold:           30,
		AnimalsCritical:       2,
		AvgFieldResidencyDays: &residency,
		CategoryDistribution:  map[models.Category]int{models.CategoryVaca: 5, models.CategoryNovillo: 7},
		RecentActivity: []models.ActivityItem{
			{Kind: models.ActivitySale, Date: time.Date(2024, 6, 14, 2, 0, 0, 0, time.UTC), Counterparty: "Frigorifico Sur", Description: "Sale of 3 head"},
		},
		Partial:       true,
		FailedSources: []string{"eventos_sanitarios"},
		GeneratedAt:   time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestFormat(t *testing.T) {
	loc := time.FixedZone("ART", -3*3600)

	want := "*Herd digest* (2024-06-15)\n" +
		"In field: 12 (critical: 2)\n" +
		"Sold: 30\n" +
		"Avg field residency: 20.00 days\n" +
		"Avg price differential: n/a\n" +
		"Categories: novillo 7, vaca 5\n" +
		"\n*Recent activity*\n" +
		"- 2024-06-13 Sale of 3 head (Frigorifico Sur)\n" +
		"\n_Partial data: eventos_sanitarios unavailable_"
	assert.Equal(t, want, Format(sampleSnapshot(), loc))
}

type stubSnapshots struct {
	snap *models.KpiSnapshot
	err  error
}

func (s stubSnapshots) ComputeSnapshot(context.Context) (*models.KpiSnapshot, error) {
	return s.snap, s.err
}

type recordingSender struct {
	sent []whatsapp.SendTextMessageRequest
	err  error
}

func (r *recordingSender) SendTextMessage(_ context.Context, req whatsapp.SendTextMessageRequest) (*whatsapp.SendTextMessageResponse, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.sent = append(r.sent, req)
	resp := &whatsapp.SendTextMessageResponse{}
	resp.Messages = append(resp.Messages, struct {
		ID string `json:"id"`
	}{ID: "wamid.9"})
	return resp, nil
}

func TestSendUsesConfiguredRecipient(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(stubSnapshots{snap: sampleSnapshot()}, sender, "5491100000000", nil, nil)

	receipt, err := svc.Send(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "5491100000000", receipt.To)
	assert.Equal(t, "wamid.9", receipt.MessageID)
	assert.True(t, receipt.Partial)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Body, "In field: 12")
}

func TestSendErrors(t *testing.T) {
	svc := NewService(stubSnapshots{snap: sampleSnapshot()}, &recordingSender{}, "", nil, nil)
	_, err := svc.Send(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoRecipient)

	boom := errors.New("animals down")
	svc = NewService(stubSnapshots{err: boom}, &recordingSender{}, "1", nil, nil)
	_, err = svc.Send(context.Background(), "")
	assert.ErrorIs(t, err, boom)

	svc = NewService(stubSnapshots{snap: sampleSnapshot()}, &recordingSender{err: errors.New("rejected")}, "1", nil, nil)
	_, err = svc.Send(context.Background(), "")
	assert.Error(t, err)
}
