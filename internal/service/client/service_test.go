package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-crm/internal/model"
	"github.com/jwalitptl/clinic-crm/internal/repository/memory"
	"github.com/jwalitptl/clinic-crm/pkg/clock"
	apperrors "github.com/jwalitptl/clinic-crm/pkg/errors"
)

var today = time.Date(2023, 10, 25, 9, 30, 0, 0, time.UTC)

func newService() *Service {
	return NewService(memory.NewClientRepository(), nil, clock.Fixed(today))
}

func request(name, email, phone string) *model.CreateClientRequest {
	return &model.CreateClientRequest{Name: name, Email: email, Phone: phone}
}

func TestCreateClientDefaults(t *testing.T) {
	svc := newService()

	c, err := svc.CreateClient(context.Background(), &model.CreateClientRequest{
		Name:           "John Smith",
		Email:          "john@example.com",
		Phone:          "+1 234 567 8900",
		DateOfBirth:    "1980-05-15",
		Address:        "123 Main St, City, Country",
		MedicalHistory: "No major health issues",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)
	assert.Equal(t, model.ClientStatusActive, c.Status)
	assert.Nil(t, c.LastVisit)
	assert.Nil(t, c.LastVisitType)
	assert.Equal(t, "2023-10-25", c.CreatedAt)
}

func TestCreateClientValidation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	for name, req := range map[string]*model.CreateClientRequest{
		"missing name":  request("", "a@example.com", "1"),
		"missing email": request("A", "", "1"),
		"missing phone": request("A", "a@example.com", ""),
		"bad email":     request("A", "not-an-email", "1"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateClient(ctx, req)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
		})
	}
}

func TestCreateClientDuplicateEmail(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.CreateClient(ctx, request("John Smith", "john@example.com", "555-0100"))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = svc.CreateClient(ctx, request("Someone Else", "john@example.com", "555-0199"))
		assert.Equal(t, apperrors.KindDuplicateEmail, apperrors.KindOf(err))
	}

	list, _ := svc.ListClients(ctx)
	assert.Len(t, list, 1)
}

func TestUpdateClientEmailUniqueness(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	john, _ := svc.CreateClient(ctx, request("John Smith", "john@example.com", "1"))
	jane, _ := svc.CreateClient(ctx, request("Jane Doe", "jane@example.com", "2"))

	taken := "john@example.com"
	_, err := svc.UpdateClient(ctx, jane.ID, &model.UpdateClientRequest{Email: &taken})
	assert.Equal(t, apperrors.KindDuplicateEmail, apperrors.KindOf(err))

	// Re-submitting the client's own email is fine.
	name := "John A. Smith"
	updated, err := svc.UpdateClient(ctx, john.ID, &model.UpdateClientRequest{Name: &name, Email: &taken})
	require.NoError(t, err)
	assert.Equal(t, john.ID, updated.ID)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, john.CreatedAt, updated.CreatedAt)
	assert.Equal(t, john.Phone, updated.Phone)
}

func TestUpdateClientStatusAndVisit(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	c, _ := svc.CreateClient(ctx, request("John Smith", "john@example.com", "1"))

	inactive := model.ClientStatusInactive
	visit, visitType := "2023-10-20", "Regular Checkup"
	updated, err := svc.UpdateClient(ctx, c.ID, &model.UpdateClientRequest{
		Status: &inactive, LastVisit: &visit, LastVisitType: &visitType,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ClientStatusInactive, updated.Status)
	require.NotNil(t, updated.LastVisit)
	assert.Equal(t, visit, *updated.LastVisit)

	bogus := model.ClientStatus("archived")
	_, err = svc.UpdateClient(ctx, c.ID, &model.UpdateClientRequest{Status: &bogus})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestDeleteClient(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	c, _ := svc.CreateClient(ctx, request("John Smith", "john@example.com", "1"))

	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(svc.DeleteClient(ctx, 9999)))
	require.NoError(t, svc.DeleteClient(ctx, c.ID))

	_, err := svc.GetClient(ctx, c.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	// The email is free again once its owner is gone.
	_, err = svc.CreateClient(ctx, request("John Smith", "john@example.com", "1"))
	assert.NoError(t, err)
}

func TestSearchClients(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	john, _ := svc.CreateClient(ctx, request("John Smith", "smith@example.com", "+1 234 567 8900"))
	big, _ := svc.CreateClient(ctx, request("Bob Big", "bigjohn@x.com", "555-0101"))
	_, _ = svc.CreateClient(ctx, request("Alice Jones", "alice@example.com", "555-0102"))

	names := func(clients []*model.Client) []string {
		out := make([]string, 0, len(clients))
		for _, c := range clients {
			out = append(out, c.Name)
		}
		return out
	}

	got, err := svc.SearchClients(ctx, "john", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"John Smith", "Bob Big"}, names(got))

	got, _ = svc.SearchClients(ctx, "JOHN", "")
	assert.Len(t, got, 2)

	// Phone matches the raw text as typed.
	got, _ = svc.SearchClients(ctx, "+1 234", "")
	assert.Equal(t, []string{"John Smith"}, names(got))
	got, _ = svc.SearchClients(ctx, "12345678900", "")
	assert.Empty(t, got)

	got, _ = svc.SearchClients(ctx, "john", model.ClientStatusInactive)
	assert.Empty(t, got)
	assert.NotNil(t, got)

	inactive := model.ClientStatusInactive
	_, err = svc.UpdateClient(ctx, big.ID, &model.UpdateClientRequest{Status: &inactive})
	require.NoError(t, err)

	got, _ = svc.SearchClients(ctx, "john", model.ClientStatusInactive)
	assert.Equal(t, []string{"Bob Big"}, names(got))

	got, _ = svc.SearchClients(ctx, "", "")
	assert.Len(t, got, 3)

	got, _ = svc.SearchClients(ctx, "", model.ClientStatusActive)
	assert.Len(t, got, 2)
	assert.Equal(t, john.ID, got[0].ID)

	_, err = svc.SearchClients(ctx, "john", "archived")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}
