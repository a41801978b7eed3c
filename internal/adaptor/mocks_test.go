package adaptor_test

import (
	"context"

	"tour-marketplace/internal/dto/request"
	"tour-marketplace/internal/dto/response"
	"tour-marketplace/pkg/utils"

	"github.com/stretchr/testify/mock"
)

type tourServiceMock struct{ mock.Mock }

func (m *tourServiceMock) Create(ctx context.Context, actor utils.Actor, req *request.TourRequest) (*response.TourResponse, error) {
	args := m.Called(ctx, actor, req)
	resp, _ := args.Get(0).(*response.TourResponse)
	return resp, args.Error(1)
}

func (m *tourServiceMock) Update(ctx context.Context, tourID string, req *request.TourRequest) (*response.TourResponse, error) {
	args := m.Called(ctx, tourID, req)
	resp, _ := args.Get(0).(*response.TourResponse)
	return resp, args.Error(1)
}

func (m *tourServiceMock) GetByID(ctx context.Context, tourID string) (*response.TourResponse, error) {
	args := m.Called(ctx, tourID)
	resp, _ := args.Get(0).(*response.TourResponse)
	return resp, args.Error(1)
}

func (m *tourServiceMock) ListPublished(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TourResponse], error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*response.PaginatedResponse[response.TourResponse])
	return resp, args.Error(1)
}

type bookingServiceMock struct{ mock.Mock }

func (m *bookingServiceMock) Quote(ctx context.Context, req *request.QuoteRequest) (*response.QuoteResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*response.QuoteResponse)
	return resp, args.Error(1)
}

func (m *bookingServiceMock) Create(ctx context.Context, actor utils.Actor, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	args := m.Called(ctx, actor, req)
	resp, _ := args.Get(0).(*response.BookingResponse)
	return resp, args.Error(1)
}

func (m *bookingServiceMock) GetByID(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	args := m.Called(ctx, bookingID)
	resp, _ := args.Get(0).(*response.BookingResponse)
	return resp, args.Error(1)
}

func (m *bookingServiceMock) GetByCode(ctx context.Context, code string) (*response.BookingResponse, error) {
	args := m.Called(ctx, code)
	resp, _ := args.Get(0).(*response.BookingResponse)
	return resp, args.Error(1)
}

func (m *bookingServiceMock) Verify(ctx context.Context, code, email string) (*response.VerifyResponse, error) {
	args := m.Called(ctx, code, email)
	resp, _ := args.Get(0).(*response.VerifyResponse)
	return resp, args.Error(1)
}

func (m *bookingServiceMock) History(ctx context.Context, bookingID string) ([]response.StatusHistoryResponse, error) {
	args := m.Called(ctx, bookingID)
	resp, _ := args.Get(0).([]response.StatusHistoryResponse)
	return resp, args.Error(1)
}

func (m *bookingServiceMock) Trips(ctx context.Context, actor utils.Actor, status string) (*response.TripsResponse, error) {
	args := m.Called(ctx, actor, status)
	resp, _ := args.Get(0).(*response.TripsResponse)
	return resp, args.Error(1)
}

func (m *bookingServiceMock) Incoming(ctx context.Context, actor utils.Actor, req *request.BookingListRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	args := m.Called(ctx, actor, req)
	resp, _ := args.Get(0).(*response.PaginatedResponse[response.BookingResponse])
	return resp, args.Error(1)
}

func (m *bookingServiceMock) Stats(ctx context.Context, actor utils.Actor) (*response.BookingStatsResponse, error) {
	args := m.Called(ctx, actor)
	resp, _ := args.Get(0).(*response.BookingStatsResponse)
	return resp, args.Error(1)
}

func (m *bookingServiceMock) ConfirmPayment(ctx context.Context, actor utils.Actor, bookingID string, req *request.ConfirmPaymentRequest) (*response.BookingResponse, error) {
	args := m.Called(ctx, actor, bookingID, req)
	resp, _ := args.Get(0).(*response.BookingResponse)
	return resp, args.Error(1)
}

func (m *bookingServiceMock) Cancel(ctx context.Context, actor utils.Actor, bookingID string, req *request.CancelBookingRequest) (*response.BookingResponse, error) {
	args := m.Called(ctx, actor, bookingID, req)
	resp, _ := args.Get(0).(*response.BookingResponse)
	return resp, args.Error(1)
}

func (m *bookingServiceMock) Complete(ctx context.Context, actor utils.Actor, bookingID string) (*response.BookingResponse, error) {
	args := m.Called(ctx, actor, bookingID)
	resp, _ := args.Get(0).(*response.BookingResponse)
	return resp, args.Error(1)
}

func (m *bookingServiceMock) Refund(ctx context.Context, actor utils.Actor, bookingID string, req *request.RefundBookingRequest) (*response.BookingResponse, error) {
	args := m.Called(ctx, actor, bookingID, req)
	resp, _ := args.Get(0).(*response.BookingResponse)
	return resp, args.Error(1)
}

func (m *bookingServiceMock) AdjustCapacity(ctx context.Context, tourID string, req *request.AdjustCapacityRequest) (*response.CapacityResponse, error) {
	args := m.Called(ctx, tourID, req)
	resp, _ := args.Get(0).(*response.CapacityResponse)
	return resp, args.Error(1)
}

func (m *bookingServiceMock) CompleteDue(ctx context.Context, batch int) (int, error) {
	args := m.Called(ctx, batch)
	return args.Int(0), args.Error(1)
}
