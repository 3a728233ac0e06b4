package mock

import (
	context "context"
	reflect "reflect"

	models "github.com/openlot/openlot/openlot/database/models"
	repositories "github.com/openlot/openlot/openlot/database/repositories"
	gomock "go.uber.org/mock/gomock"
)

// MockPropertyRepository is a mock of PropertyRepository interface.
type MockPropertyRepository struct {
	ctrl     *gomock.Controller
	recorder *MockPropertyRepositoryMockRecorder
	isgomock struct{}
}

// MockPropertyRepositoryMockRecorder is the mock recorder for MockPropertyRepository.
type MockPropertyRepositoryMockRecorder struct {
	mock *MockPropertyRepository
}

// NewMockPropertyRepository creates a new mock instance.
func NewMockPropertyRepository(ctrl *gomock.Controller) *MockPropertyRepository {
	mock := &MockPropertyRepository{ctrl: ctrl}
	mock.recorder = &MockPropertyRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockPropertyRepository) EXPECT() *MockPropertyRepositoryMockRecorder {
	return m.recorder
}

// AddPhotoKey mocks base method.
func (m *MockPropertyRepository) AddPhotoKey(ctx context.Context, id int64, key string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AddPhotoKey", ctx, id, key)
	ret0, _ := ret[0].(error)
	return ret0
}

// AddPhotoKey indicates an expected call of AddPhotoKey.
func (mr *MockPropertyRepositoryMockRecorder) AddPhotoKey(ctx, id, key any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AddPhotoKey", reflect.TypeOf((*MockPropertyRepository)(nil).AddPhotoKey), ctx, id, key)
}

// Archive mocks base method.
func (m *MockPropertyRepository) Archive(ctx context.Context, id int64) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Archive", ctx, id)
	ret0, _ := ret[0].(error)
	return ret0
}

// Archive indicates an expected call of Archive.
func (mr *MockPropertyRepositoryMockRecorder) Archive(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Archive", reflect.TypeOf((*MockPropertyRepository)(nil).Archive), ctx, id)
}

// Create mocks base method.
func (m *MockPropertyRepository) Create(ctx context.Context, property *models.Property) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, property)
	ret0, _ := ret[0].(error)
	return ret0
}

// Create indicates an expected call of Create.
func (mr *MockPropertyRepositoryMockRecorder) Create(ctx, property any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockPropertyRepository)(nil).Create), ctx, property)
}

// GetByID mocks base method.
func (m *MockPropertyRepository) GetByID(ctx context.Context, id int64) (*models.Property, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByID", ctx, id)
	ret0, _ := ret[0].(*models.Property)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByID indicates an expected call of GetByID.
func (mr *MockPropertyRepositoryMockRecorder) GetByID(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByID", reflect.TypeOf((*MockPropertyRepository)(nil).GetByID), ctx, id)
}

// ListByOwner mocks base method.
func (m *MockPropertyRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Property, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListByOwner", ctx, ownerID)
	ret0, _ := ret[0].([]*models.Property)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListByOwner indicates an expected call of ListByOwner.
func (mr *MockPropertyRepositoryMockRecorder) ListByOwner(ctx, ownerID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListByOwner", reflect.TypeOf((*MockPropertyRepository)(nil).ListByOwner), ctx, ownerID)
}

// Search mocks base method.
func (m *MockPropertyRepository) Search(ctx context.Context, filters repositories.PropertyFilters) ([]*models.Property, int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Search", ctx, filters)
	ret0, _ := ret[0].([]*models.Property)
	ret1, _ := ret[1].(int)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// Search indicates an expected call of Search.
func (mr *MockPropertyRepositoryMockRecorder) Search(ctx, filters any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Search", reflect.TypeOf((*MockPropertyRepository)(nil).Search), ctx, filters)
}

// SearchIndex mocks base method.
func (m *MockPropertyRepository) SearchIndex(ctx context.Context) ([]*models.Property, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SearchIndex", ctx)
	ret0, _ := ret[0].([]*models.Property)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// SearchIndex indicates an expected call of SearchIndex.
func (mr *MockPropertyRepositoryMockRecorder) SearchIndex(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SearchIndex", reflect.TypeOf((*MockPropertyRepository)(nil).SearchIndex), ctx)
}

// Update mocks base method.
func (m *MockPropertyRepository) Update(ctx context.Context, property *models.Property) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Update", ctx, property)
	ret0, _ := ret[0].(error)
	return ret0
}

// Update indicates an expected call of Update.
func (mr *MockPropertyRepositoryMockRecorder) Update(ctx, property any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Update", reflect.TypeOf((*MockPropertyRepository)(nil).Update), ctx, property)
}
