package devserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"fieldline/internal/domain"
	"fieldline/internal/events"
)

func (s *server) registerRepeats(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-repeat-requests",
		Method:      http.MethodGet,
		Path:        "/repeat-requests",
		Summary:     "List repeat requests",
	}, func(ctx context.Context, input *struct {
		Status string `query:"status"`
	}) (*struct {
		Body []domain.RepeatRequest `json:"body"`
	}, error) {
		reqs, err := s.repo.ListRepeatRequests(ctx, input.Status)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.RepeatRequest `json:"body"`
		}{Body: reqs}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "confirm-repeat-request",
		Method:        http.MethodPost,
		Path:          "/repeat-requests/{id}/confirm",
		Summary:       "Confirm repeat request",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		ID   int64                     `path:"id"`
		Body domain.CreateOrderRequest `json:"body"`
	}) (*struct {
		Body domain.Order `json:"body"`
	}, error) {
		order, err := s.confirmRepeatRequest(ctx, input.ID, input.Body)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Order `json:"body"`
		}{Body: order}, nil
	})
}

// confirmRepeatRequest creates the follow-up order from the dispatcher's
// form and links it back to the originating one.
func (s *server) confirmRepeatRequest(ctx context.Context, id int64, req domain.CreateOrderRequest) (domain.Order, error) {
	rr, err := s.repo.GetRepeatRequest(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if rr.Confirmed {
		return domain.Order{}, fmt.Errorf("repeat request %d already confirmed", id)
	}
	source, err := s.repo.GetOrderByID(ctx, rr.OrderID)
	if err != nil {
		return domain.Order{}, err
	}
	req.RepeatID = &source.ID
	req.RepeatErpNumber = &source.ErpNumber
	order, err := s.createOrder(ctx, req)
	if err != nil {
		return domain.Order{}, err
	}
	if _, err := s.repo.ConfirmRepeatRequest(ctx, id, order.ID); err != nil {
		return domain.Order{}, err
	}
	s.record(ctx, "repeat_request.confirmed", "repeat_request", id, events.EventPayload{"order_id": order.ID})
	return order, nil
}
