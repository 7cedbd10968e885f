package devserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fieldline/internal/domain"
	"fieldline/internal/events"
	"fieldline/internal/status"
)

// scheduledLayout is the wire format for order scheduling: local date and
// hour, no zone.
const scheduledLayout = "2006-01-02T15:04"

func parseScheduled(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(scheduledLayout, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduled_at %q", s)
	}
	return &t, nil
}

func validateOrderRequest(req domain.CreateOrderRequest) error {
	if req.AggregatorID <= 0 {
		return fmt.Errorf("aggregator_id is required")
	}
	if req.ProblemID <= 0 {
		return fmt.Errorf("problem_id is required")
	}
	if req.ClientName == "" {
		return fmt.Errorf("client_name is required")
	}
	if len(req.Phones) == 0 {
		return fmt.Errorf("phones are required")
	}
	if req.Address == "" {
		return fmt.Errorf("address is required")
	}
	if req.OurPercent < 0 || req.OurPercent > 100 {
		return fmt.Errorf("our_percent must be within 0..100")
	}
	return nil
}

type reportTokenBody struct {
	Token string `json:"token"`
}

func (s *server) registerOrders(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-orders",
		Method:      http.MethodGet,
		Path:        "/orders",
		Summary:     "List orders",
	}, func(ctx context.Context, input *struct {
		Date string `query:"date"`
	}) (*struct {
		Body []domain.Order `json:"body"`
	}, error) {
		orders, err := s.repo.ListOrders(ctx, input.Date)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Order `json:"body"`
		}{Body: orders}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-order",
		Method:        http.MethodPost,
		Path:          "/orders",
		Summary:       "Create order",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		Body domain.CreateOrderRequest `json:"body"`
	}) (*struct {
		Body domain.Order `json:"body"`
	}, error) {
		order, err := s.createOrder(ctx, input.Body)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Order `json:"body"`
		}{Body: order}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-order",
		Method:      http.MethodPut,
		Path:        "/orders/{erp_number}",
		Summary:     "Update order",
	}, func(ctx context.Context, input *struct {
		ErpNumber int64                     `path:"erp_number"`
		Body      domain.CreateOrderRequest `json:"body"`
	}) (*struct {
		Body domain.Order `json:"body"`
	}, error) {
		var (
			order domain.Order
			err   error
		)
		// A body carrying only a status is a lifecycle move, not an edit.
		if input.Body.ClientName == "" && input.Body.AggregatorID == 0 && input.Body.Status != "" {
			order, err = s.moveOrderStatus(ctx, input.ErpNumber, input.Body.Status)
		} else {
			order, err = s.updateOrder(ctx, input.ErpNumber, input.Body)
		}
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Order `json:"body"`
		}{Body: order}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "order-report-link",
		Method:      http.MethodGet,
		Path:        "/orders/{erp_number}/report-link",
		Summary:     "Report link token for an order",
	}, func(ctx context.Context, input *struct {
		ErpNumber int64 `path:"erp_number"`
	}) (*struct {
		Body dataEnvelope[reportTokenBody] `json:"body"`
	}, error) {
		token, err := s.repo.ReportToken(ctx, input.ErpNumber)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body dataEnvelope[reportTokenBody] `json:"body"`
		}{Body: dataEnvelope[reportTokenBody]{Data: reportTokenBody{Token: token}}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "assign-order",
		Method:      http.MethodPost,
		Path:        "/orders/assign",
		Summary:     "Assign order to engineer",
	}, func(ctx context.Context, input *struct {
		Body struct {
			EngineerID int64 `json:"engineer_id"`
			ErpNumber  int64 `json:"erp_number"`
		} `json:"body"`
	}) (*struct {
		Body domain.Order `json:"body"`
	}, error) {
		order, err := s.assignOrder(ctx, input.Body.ErpNumber, input.Body.EngineerID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Order `json:"body"`
		}{Body: order}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "unassign-order",
		Method:      http.MethodPost,
		Path:        "/orders/unassign",
		Summary:     "Return order to the pool",
	}, func(ctx context.Context, input *struct {
		Body struct {
			ErpNumber int64 `json:"erp_number"`
		} `json:"body"`
	}) (*struct {
		Body domain.Order `json:"body"`
	}, error) {
		order, err := s.unassignOrder(ctx, input.Body.ErpNumber)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Order `json:"body"`
		}{Body: order}, nil
	})
}

func (s *server) createOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	if err := validateOrderRequest(req); err != nil {
		return domain.Order{}, err
	}
	scheduled, err := parseScheduled(req.ScheduledAt)
	if err != nil {
		return domain.Order{}, err
	}
	if req.Status == "" {
		req.Status = status.New
	}
	if !status.Known(req.Status) {
		return domain.Order{}, fmt.Errorf("invalid status %q", req.Status)
	}
	erp, err := s.repo.NextErpNumber(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	order, err := s.repo.CreateOrder(ctx, req, erp, uuid.NewString(), scheduled, s.now())
	if err != nil {
		return domain.Order{}, err
	}
	s.record(ctx, "order.created", "order", order.ErpNumber, events.EventPayload{"status": order.Status})
	s.log.Info("order created", zap.Int64("erp_number", order.ErpNumber))
	return order, nil
}

func (s *server) updateOrder(ctx context.Context, erpNumber int64, req domain.CreateOrderRequest) (domain.Order, error) {
	if err := validateOrderRequest(req); err != nil {
		return domain.Order{}, err
	}
	current, err := s.repo.GetOrderByErp(ctx, erpNumber)
	if err != nil {
		return domain.Order{}, err
	}
	scheduled, err := parseScheduled(req.ScheduledAt)
	if err != nil {
		return domain.Order{}, err
	}
	if req.Status == "" {
		req.Status = current.Status
	}
	order, err := s.repo.UpdateOrder(ctx, erpNumber, req, scheduled)
	if err != nil {
		return domain.Order{}, err
	}
	s.record(ctx, "order.updated", "order", order.ErpNumber, nil)
	return order, nil
}

func (s *server) moveOrderStatus(ctx context.Context, erpNumber int64, to string) (domain.Order, error) {
	if !status.Known(to) {
		return domain.Order{}, fmt.Errorf("invalid status %q", to)
	}
	current, err := s.repo.GetOrderByErp(ctx, erpNumber)
	if err != nil {
		return domain.Order{}, err
	}
	if !status.CanTransition(current.Status, to) {
		return domain.Order{}, fmt.Errorf("invalid transition %s -> %s", current.Status, to)
	}
	order, err := s.repo.SetOrderStatus(ctx, erpNumber, to)
	if err != nil {
		return domain.Order{}, err
	}
	s.record(ctx, "order.status_changed", "order", order.ErpNumber, events.EventPayload{"from": current.Status, "to": to})
	return order, nil
}

func (s *server) assignOrder(ctx context.Context, erpNumber, engineerID int64) (domain.Order, error) {
	eng, err := s.repo.GetEngineer(ctx, engineerID)
	if err != nil {
		return domain.Order{}, err
	}
	if !eng.IsApproved {
		return domain.Order{}, fmt.Errorf("engineer %d is required to be approved", engineerID)
	}
	current, err := s.repo.GetOrderByErp(ctx, erpNumber)
	if err != nil {
		return domain.Order{}, err
	}
	if current.Status != status.New && current.Status != status.InProccess {
		return domain.Order{}, fmt.Errorf("invalid transition %s -> %s", current.Status, status.InProccess)
	}
	order, err := s.repo.SetOrderAssignment(ctx, erpNumber, &engineerID, status.InProccess)
	if err != nil {
		return domain.Order{}, err
	}
	s.record(ctx, "order.assigned", "order", order.ErpNumber, events.EventPayload{"engineer_id": engineerID})
	s.log.Info("order assigned", zap.Int64("erp_number", erpNumber), zap.Int64("engineer_id", engineerID))
	return order, nil
}

func (s *server) unassignOrder(ctx context.Context, erpNumber int64) (domain.Order, error) {
	if _, err := s.repo.GetOrderByErp(ctx, erpNumber); err != nil {
		return domain.Order{}, err
	}
	order, err := s.repo.SetOrderAssignment(ctx, erpNumber, nil, status.New)
	if err != nil {
		return domain.Order{}, err
	}
	s.record(ctx, "order.unassigned", "order", order.ErpNumber, nil)
	return order, nil
}
