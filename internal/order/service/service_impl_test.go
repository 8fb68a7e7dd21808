package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/foodcourtlabs/foodcourt/internal/clock"
	"github.com/foodcourtlabs/foodcourt/internal/config"
	customerrepo "github.com/foodcourtlabs/foodcourt/internal/customer/repository"
	"github.com/foodcourtlabs/foodcourt/internal/migration"
	"github.com/foodcourtlabs/foodcourt/internal/order/domain"
	orderrepo "github.com/foodcourtlabs/foodcourt/internal/order/repository"
	"github.com/foodcourtlabs/foodcourt/pkg/validate"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(gdb))
	return gdb
}

func newService(t *testing.T, gdb *gorm.DB, now time.Time) domain.Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return New(Params{
		DB:           gdb,
		Log:          zap.NewNop(),
		Cfg:          config.Config{Delivery: config.DeliveryConfig{EstimateMinutes: 45}},
		Clock:        clock.NewFake(now),
		GenID:        node,
		Repo:         orderrepo.Provide(gdb),
		CustomerRepo: customerrepo.Provide(gdb),
	})
}

func submitRequest() domain.SubmitOrderRequest {
	return domain.SubmitOrderRequest{
		Customer: domain.CustomerInput{
			Email:   "Maria@Example.com",
			Name:    "Maria Perez",
			Phone:   "04121234567",
			Address: "Av. Libertador, Caracas",
		},
		Items: []domain.Item{
			{ID: "arepa-reina", Name: "Arepa Reina Pepiada", Price: 4.50, Quantity: 2},
			{ID: "malta", Name: "Malta", Price: 1.75, Quantity: 2},
		},
		Total:           12.50,
		Currency:        "USD",
		DeliveryAddress: "Av. Libertador, Caracas",
	}
}

func TestSubmit(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	gdb := newTestDB(t)
	svc := newService(t, gdb, now)

	order, err := svc.Submit(context.Background(), submitRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, int64(1250), order.TotalCents)
	assert.Equal(t, "USD", order.Currency)
	require.NotNil(t, order.EstimatedDeliveryAt)
	assert.Equal(t, now.Add(45*time.Minute), *order.EstimatedDeliveryAt)
	require.NotNil(t, order.Customer)
	assert.Equal(t, "maria@example.com", order.Customer.Email)

	stored, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.TotalCents, stored.TotalCents)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestSubmitDefaultsCurrency(t *testing.T) {
	gdb := newTestDB(t)
	svc := newService(t, gdb, time.Now().UTC())

	req := submitRequest()
	req.Currency = ""
	order, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "USD", order.Currency)
}

func TestSubmitReusesCustomerByEmail(t *testing.T) {
	gdb := newTestDB(t)
	svc := newService(t, gdb, time.Now().UTC())

	first, err := svc.Submit(context.Background(), submitRequest())
	require.NoError(t, err)

	req := submitRequest()
	req.Customer.Email = "MARIA@example.com"
	second, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.CustomerID, second.CustomerID)

	var count int64
	require.NoError(t, gdb.Table("customers").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSubmitValidation(t *testing.T) {
	gdb := newTestDB(t)
	svc := newService(t, gdb, time.Now().UTC())

	cases := []struct {
		name   string
		mutate func(*domain.SubmitOrderRequest)
		field  string
	}{
		{"bad email", func(r *domain.SubmitOrderRequest) { r.Customer.Email = "not-an-email" }, "customer.email"},
		{"bad phone", func(r *domain.SubmitOrderRequest) { r.Customer.Phone = "04991234567" }, "customer.phone"},
		{"no items", func(r *domain.SubmitOrderRequest) { r.Items = nil }, "items"},
		{"zero quantity", func(r *domain.SubmitOrderRequest) { r.Items[0].Quantity = 0 }, "items"},
		{"zero total", func(r *domain.SubmitOrderRequest) { r.Total = 0 }, "total"},
		{"bad currency", func(r *domain.SubmitOrderRequest) { r.Currency = "EUR" }, "currency"},
		{"no address", func(r *domain.SubmitOrderRequest) { r.DeliveryAddress = "  " }, "delivery_address"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := submitRequest()
			tc.mutate(&req)
			_, err := svc.Submit(context.Background(), req)
			require.Error(t, err)
			var fields validate.FieldErrors
			require.ErrorAs(t, err, &fields)
			assert.Contains(t, fields, tc.field)

			var count int64
			require.NoError(t, gdb.Table("orders").Count(&count).Error)
			assert.Zero(t, count, "no order row on validation failure")
		})
	}
}

func TestListByEmail(t *testing.T) {
	gdb := newTestDB(t)
	svc := newService(t, gdb, time.Now().UTC())

	_, err := svc.Submit(context.Background(), submitRequest())
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), submitRequest())
	require.NoError(t, err)

	orders, err := svc.ListByEmail(context.Background(), "maria@example.com")
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	// unknown email is an empty list, not an error
	orders, err = svc.ListByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestGetNotFound(t *testing.T) {
	gdb := newTestDB(t)
	svc := newService(t, gdb, time.Now().UTC())

	_, err := svc.Get(context.Background(), snowflake.ID(424242))
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestUpdateStatus(t *testing.T) {
	gdb := newTestDB(t)
	svc := newService(t, gdb, time.Now().UTC())

	order, err := svc.Submit(context.Background(), submitRequest())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), order.ID, domain.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, updated.Status)

	// skipping ahead is rejected and leaves the row untouched
	_, err = svc.UpdateStatus(context.Background(), order.ID, domain.StatusDelivered)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	stored, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)

	// unknown status value
	_, err = svc.UpdateStatus(context.Background(), order.ID, domain.Status("shipped"))
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	// repeating the current status is a no-op, not an error
	updated, err = svc.UpdateStatus(context.Background(), order.ID, domain.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, updated.Status)
}

func TestUpdateStatusCancelled(t *testing.T) {
	gdb := newTestDB(t)
	svc := newService(t, gdb, time.Now().UTC())

	order, err := svc.Submit(context.Background(), submitRequest())
	require.NoError(t, err)

	for _, status := range []domain.Status{domain.StatusConfirmed, domain.StatusPreparing} {
		_, err = svc.UpdateStatus(context.Background(), order.ID, status)
		require.NoError(t, err)
	}

	cancelled, err := svc.UpdateStatus(context.Background(), order.ID, domain.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)

	// terminal states accept no further transitions
	_, err = svc.UpdateStatus(context.Background(), order.ID, domain.StatusOnWay)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}
