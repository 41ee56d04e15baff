package orders_test

import (
	"context"
	"testing"

	"dinehub/internal/logger"
	"dinehub/internal/models"
	"dinehub/internal/orders"
	"dinehub/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDB struct {
	mock.Mock
}

func (m *MockDB) CreateOrder(order models.Order, items []models.OrderItem) error {
	args := m.Called(order, items)
	return args.Error(0)
}

func (m *MockDB) GetOrderByID(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockDB) GetOrderWithItems(id string) (*models.OrderWithItems, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderWithItems), args.Error(1)
}

func (m *MockDB) UpdateOrder(order models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockDB) ListOrdersByTenant(tenantID string, limit int) ([]models.Order, error) {
	args := m.Called(tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockDB) ListOrdersBySession(sessionID string) ([]models.Order, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishEvent(ctx context.Context, evt models.DomainEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

var testRates = pricing.Rates{TaxBps: 1000, ServiceChargeBps: 500}

func newTestService(db *MockDB, pub *MockPublisher) *orders.Service {
	return orders.NewService(db, pub, testRates, logger.NewLogger())
}

func sampleCart() *models.Cart {
	return &models.Cart{
		TenantID:  "t1",
		SessionID: "s1",
		TableID:   "tbl-1",
		Items: []models.LineItem{
			{MenuItemID: "item-1", Name: "Margherita", BasePrice: 1000, Quantity: 2},
		},
	}
}

func TestPlaceOrder_PersistsRecomputedTotalsAndPublishes(t *testing.T) {
	db := new(MockDB)
	pub := new(MockPublisher)
	svc := newTestService(db, pub)

	db.On("CreateOrder", mock.AnythingOfType("models.Order"), mock.AnythingOfType("[]models.OrderItem")).Return(nil)
	pub.On("PublishEvent", mock.Anything, mock.MatchedBy(func(evt models.DomainEvent) bool {
		return evt.Kind == models.OrderCreated && evt.TenantID == "t1"
	})).Return(nil)

	placed, err := svc.PlaceOrder(context.Background(), sampleCart())
	require.NoError(t, err)

	assert.Equal(t, models.OrderPending, placed.Order.Status)
	assert.Equal(t, int64(2000), placed.Order.Subtotal)
	assert.Equal(t, int64(200), placed.Order.Tax)
	assert.Equal(t, int64(100), placed.Order.ServiceCharge)
	assert.Equal(t, int64(2300), placed.Order.Total)
	require.Len(t, placed.Items, 1)
	assert.Equal(t, int64(1000), placed.Items[0].UnitPrice)
	assert.Equal(t, int64(2000), placed.Items[0].LineTotal)

	db.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestPlaceOrder_EmptyCartRejected(t *testing.T) {
	db := new(MockDB)
	pub := new(MockPublisher)
	svc := newTestService(db, pub)

	_, err := svc.PlaceOrder(context.Background(), &models.Cart{TenantID: "t1", SessionID: "s1"})
	assert.Error(t, err)
	db.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestPlaceOrder_PublishFailureDoesNotFailOrder(t *testing.T) {
	db := new(MockDB)
	pub := new(MockPublisher)
	svc := newTestService(db, pub)

	db.On("CreateOrder", mock.Anything, mock.Anything).Return(nil)
	pub.On("PublishEvent", mock.Anything, mock.Anything).Return(assert.AnError)

	placed, err := svc.PlaceOrder(context.Background(), sampleCart())
	require.NoError(t, err)
	assert.NotEmpty(t, placed.Order.OrderID)
}

func TestUpdateStatus_AllowedTransition(t *testing.T) {
	db := new(MockDB)
	pub := new(MockPublisher)
	svc := newTestService(db, pub)

	db.On("GetOrderByID", "o1").Return(&models.Order{OrderID: "o1", TenantID: "t1", Status: models.OrderPending}, nil)
	db.On("UpdateOrder", mock.MatchedBy(func(o models.Order) bool {
		return o.Status == models.OrderPreparing
	})).Return(nil)
	pub.On("PublishEvent", mock.Anything, mock.MatchedBy(func(evt models.DomainEvent) bool {
		return evt.Kind == models.OrderStatusChanged && evt.Status == models.OrderPreparing
	})).Return(nil)

	order, err := svc.UpdateStatus(context.Background(), "o1", models.OrderPreparing)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPreparing, order.Status)
	pub.AssertExpectations(t)
}

func TestUpdateStatus_InvalidTransitionsRejected(t *testing.T) {
	cases := []struct {
		from string
		to   string
	}{
		{models.OrderPending, models.OrderReady},
		{models.OrderPending, models.OrderServed},
		{models.OrderServed, models.OrderCancelled},
		{models.OrderCancelled, models.OrderPreparing},
		{models.OrderReady, models.OrderPreparing},
	}

	for _, tc := range cases {
		db := new(MockDB)
		pub := new(MockPublisher)
		svc := newTestService(db, pub)

		db.On("GetOrderByID", "o1").Return(&models.Order{OrderID: "o1", Status: tc.from}, nil)

		_, err := svc.UpdateStatus(context.Background(), "o1", tc.to)
		assert.Error(t, err, "%s -> %s should be rejected", tc.from, tc.to)
		db.AssertNotCalled(t, "UpdateOrder", mock.Anything)
	}
}

func TestMarkPaid_PublishesPaymentCompleted(t *testing.T) {
	db := new(MockDB)
	pub := new(MockPublisher)
	svc := newTestService(db, pub)

	db.On("GetOrderByID", "o1").Return(&models.Order{OrderID: "o1", TenantID: "t1", Status: models.OrderReady}, nil)
	db.On("UpdateOrder", mock.MatchedBy(func(o models.Order) bool { return o.Paid })).Return(nil)
	pub.On("PublishEvent", mock.Anything, mock.MatchedBy(func(evt models.DomainEvent) bool {
		return evt.Kind == models.PaymentCompleted && evt.OrderID == "o1"
	})).Return(nil)

	order, err := svc.MarkPaid(context.Background(), "o1")
	require.NoError(t, err)
	assert.True(t, order.Paid)
	pub.AssertExpectations(t)
}

func TestMarkPaid_AlreadyPaidIsIdempotent(t *testing.T) {
	db := new(MockDB)
	pub := new(MockPublisher)
	svc := newTestService(db, pub)

	db.On("GetOrderByID", "o1").Return(&models.Order{OrderID: "o1", Paid: true}, nil)

	order, err := svc.MarkPaid(context.Background(), "o1")
	require.NoError(t, err)
	assert.True(t, order.Paid)
	db.AssertNotCalled(t, "UpdateOrder", mock.Anything)
	pub.AssertNotCalled(t, "PublishEvent", mock.Anything, mock.Anything)
}

func TestListOrders_ClampsLimit(t *testing.T) {
	db := new(MockDB)
	pub := new(MockPublisher)
	svc := newTestService(db, pub)

	db.On("ListOrdersByTenant", "t1", 50).Return([]models.Order{}, nil)

	_, err := svc.ListOrders("t1", 0)
	require.NoError(t, err)
	_, err = svc.ListOrders("t1", 500)
	require.NoError(t, err)
	db.AssertNumberOfCalls(t, "ListOrdersByTenant", 2)
}
