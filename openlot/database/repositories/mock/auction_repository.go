package mock

import (
	context "context"
	reflect "reflect"
	time "time"

	models "github.com/openlot/openlot/openlot/database/models"
	bun "github.com/uptrace/bun"
	gomock "go.uber.org/mock/gomock"
)

// MockAuctionRepository is a mock of AuctionRepository interface.
type MockAuctionRepository struct {
	ctrl     *gomock.Controller
	recorder *MockAuctionRepositoryMockRecorder
	isgomock struct{}
}

// MockAuctionRepositoryMockRecorder is the mock recorder for MockAuctionRepository.
type MockAuctionRepositoryMockRecorder struct {
	mock *MockAuctionRepository
}

// NewMockAuctionRepository creates a new mock instance.
func NewMockAuctionRepository(ctrl *gomock.Controller) *MockAuctionRepository {
	mock := &MockAuctionRepository{ctrl: ctrl}
	mock.recorder = &MockAuctionRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockAuctionRepository) EXPECT() *MockAuctionRepositoryMockRecorder {
	return m.recorder
}

// Activate mocks base method.
func (m *MockAuctionRepository) Activate(ctx context.Context, auctionID int64) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Activate", ctx, auctionID)
	ret0, _ := ret[0].(error)
	return ret0
}

// Activate indicates an expected call of Activate.
func (mr *MockAuctionRepositoryMockRecorder) Activate(ctx, auctionID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Activate", reflect.TypeOf((*MockAuctionRepository)(nil).Activate), ctx, auctionID)
}

// Cancel mocks base method.
func (m *MockAuctionRepository) Cancel(ctx context.Context, auctionID int64) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Cancel", ctx, auctionID)
	ret0, _ := ret[0].(error)
	return ret0
}

// Cancel indicates an expected call of Cancel.
func (mr *MockAuctionRepositoryMockRecorder) Cancel(ctx, auctionID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Cancel", reflect.TypeOf((*MockAuctionRepository)(nil).Cancel), ctx, auctionID)
}

// Create mocks base method.
func (m *MockAuctionRepository) Create(ctx context.Context, auction *models.Auction) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, auction)
	ret0, _ := ret[0].(error)
	return ret0
}

// Create indicates an expected call of Create.
func (mr *MockAuctionRepositoryMockRecorder) Create(ctx, auction any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockAuctionRepository)(nil).Create), ctx, auction)
}

// DB mocks base method.
func (m *MockAuctionRepository) DB() *bun.DB {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DB")
	ret0, _ := ret[0].(*bun.DB)
	return ret0
}

// DB indicates an expected call of DB.
func (mr *MockAuctionRepositoryMockRecorder) DB() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DB", reflect.TypeOf((*MockAuctionRepository)(nil).DB))
}

// GetAuctionBids mocks base method.
func (m *MockAuctionRepository) GetAuctionBids(ctx context.Context, auctionID int64) ([]*models.Bid, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetAuctionBids", ctx, auctionID)
	ret0, _ := ret[0].([]*models.Bid)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetAuctionBids indicates an expected call of GetAuctionBids.
func (mr *MockAuctionRepositoryMockRecorder) GetAuctionBids(ctx, auctionID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetAuctionBids", reflect.TypeOf((*MockAuctionRepository)(nil).GetAuctionBids), ctx, auctionID)
}

// GetByCode mocks base method.
func (m *MockAuctionRepository) GetByCode(ctx context.Context, code string) (*models.Auction, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByCode", ctx, code)
	ret0, _ := ret[0].(*models.Auction)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByCode indicates an expected call of GetByCode.
func (mr *MockAuctionRepositoryMockRecorder) GetByCode(ctx, code any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByCode", reflect.TypeOf((*MockAuctionRepository)(nil).GetByCode), ctx, code)
}

// GetByID mocks base method.
func (m *MockAuctionRepository) GetByID(ctx context.Context, id int64) (*models.Auction, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByID", ctx, id)
	ret0, _ := ret[0].(*models.Auction)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByID indicates an expected call of GetByID.
func (mr *MockAuctionRepositoryMockRecorder) GetByID(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByID", reflect.TypeOf((*MockAuctionRepository)(nil).GetByID), ctx, id)
}

// GetExpired mocks base method.
func (m *MockAuctionRepository) GetExpired(ctx context.Context) ([]*models.Auction, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetExpired", ctx)
	ret0, _ := ret[0].([]*models.Auction)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetExpired indicates an expected call of GetExpired.
func (mr *MockAuctionRepositoryMockRecorder) GetExpired(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetExpired", reflect.TypeOf((*MockAuctionRepository)(nil).GetExpired), ctx)
}

// GetLive mocks base method.
func (m *MockAuctionRepository) GetLive(ctx context.Context, limit, offset int) ([]*models.Auction, int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetLive", ctx, limit, offset)
	ret0, _ := ret[0].([]*models.Auction)
	ret1, _ := ret[1].(int)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// GetLive indicates an expected call of GetLive.
func (mr *MockAuctionRepositoryMockRecorder) GetLive(ctx, limit, offset any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetLive", reflect.TypeOf((*MockAuctionRepository)(nil).GetLive), ctx, limit, offset)
}

// GetLiveByProperty mocks base method.
func (m *MockAuctionRepository) GetLiveByProperty(ctx context.Context, propertyID int64) (*models.Auction, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetLiveByProperty", ctx, propertyID)
	ret0, _ := ret[0].(*models.Auction)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetLiveByProperty indicates an expected call of GetLiveByProperty.
func (mr *MockAuctionRepositoryMockRecorder) GetLiveByProperty(ctx, propertyID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetLiveByProperty", reflect.TypeOf((*MockAuctionRepository)(nil).GetLiveByProperty), ctx, propertyID)
}

// GetSoldComparables mocks base method.
func (m *MockAuctionRepository) GetSoldComparables(ctx context.Context, kind models.PropertyKind, city string, since time.Time) ([]*models.Auction, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetSoldComparables", ctx, kind, city, since)
	ret0, _ := ret[0].([]*models.Auction)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetSoldComparables indicates an expected call of GetSoldComparables.
func (mr *MockAuctionRepositoryMockRecorder) GetSoldComparables(ctx, kind, city, since any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetSoldComparables", reflect.TypeOf((*MockAuctionRepository)(nil).GetSoldComparables), ctx, kind, city, since)
}

// GetUserBids mocks base method.
func (m *MockAuctionRepository) GetUserBids(ctx context.Context, userID int64) ([]*models.Bid, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetUserBids", ctx, userID)
	ret0, _ := ret[0].([]*models.Bid)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetUserBids indicates an expected call of GetUserBids.
func (mr *MockAuctionRepositoryMockRecorder) GetUserBids(ctx, userID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetUserBids", reflect.TypeOf((*MockAuctionRepository)(nil).GetUserBids), ctx, userID)
}

// InviteBidder mocks base method.
func (m *MockAuctionRepository) InviteBidder(ctx context.Context, auctionID, userID int64) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "InviteBidder", ctx, auctionID, userID)
	ret0, _ := ret[0].(error)
	return ret0
}

// InviteBidder indicates an expected call of InviteBidder.
func (mr *MockAuctionRepositoryMockRecorder) InviteBidder(ctx, auctionID, userID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "InviteBidder", reflect.TypeOf((*MockAuctionRepository)(nil).InviteBidder), ctx, auctionID, userID)
}
