package devserver

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"fieldline/internal/domain"
	"fieldline/internal/events"
	"fieldline/internal/status"
)

const repeatDateLayout = "2006-01-02"

func (s *server) registerReports(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "report-link",
		Method:      http.MethodGet,
		Path:        "/reports/link/{token}",
		Summary:     "Resolve report link",
	}, func(ctx context.Context, input *struct {
		Token string `path:"token"`
	}) (*struct {
		Body dataEnvelope[domain.ReportLinkInfo] `json:"body"`
	}, error) {
		order, err := s.repo.GetOrderByReportToken(ctx, input.Token)
		if err != nil {
			return nil, handleError(err)
		}
		info := domain.ReportLinkInfo{
			ErpNumber:  order.ErpNumber,
			ClientName: order.ClientName,
			Address:    order.Address,
			Price:      order.Price,
			Status:     order.Status,
		}
		return &struct {
			Body dataEnvelope[domain.ReportLinkInfo] `json:"body"`
		}{Body: dataEnvelope[domain.ReportLinkInfo]{Data: info}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "submit-report",
		Method:      http.MethodPost,
		Path:        "/reports/submit",
		Summary:     "Submit field report",
	}, func(ctx context.Context, input *struct {
		Body domain.ReportPayload `json:"body"`
	}) (*struct {
		Body domain.ReportResponse `json:"body"`
	}, error) {
		resp, err := s.submitReport(ctx, input.Body)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.ReportResponse `json:"body"`
		}{Body: resp}, nil
	})
}

func (s *server) submitReport(ctx context.Context, payload domain.ReportPayload) (domain.ReportResponse, error) {
	order, err := s.repo.GetOrderByReportToken(ctx, payload.Token)
	if err != nil {
		return domain.ReportResponse{}, err
	}
	if order.Status != status.Working {
		return domain.ReportResponse{
			Success: false,
			Message: "Отчёт по этому заказу уже отправлен.",
			Status:  order.Status,
		}, nil
	}
	order, err = s.repo.SetOrderReport(ctx, order.ErpNumber, payload.FinishPrice, status.ClosedWithoutRepeat)
	if err != nil {
		return domain.ReportResponse{}, err
	}
	s.record(ctx, "report.submitted", "order", order.ErpNumber, events.EventPayload{"finish_price": payload.FinishPrice})
	if payload.HasRepeat {
		var scheduled *time.Time
		if payload.RepeatDate != "" {
			if t, perr := time.ParseInLocation(repeatDateLayout, payload.RepeatDate, time.Local); perr == nil {
				scheduled = &t
			}
		}
		var engineerID int64
		if order.EngineerID != nil {
			engineerID = *order.EngineerID
		}
		rr, rerr := s.repo.CreateRepeatRequest(ctx, order.ID, engineerID, payload.RepeatNote, scheduled, s.now())
		if rerr != nil {
			return domain.ReportResponse{}, rerr
		}
		s.record(ctx, "repeat_request.created", "repeat_request", rr.ID, events.EventPayload{"order_id": order.ID})
	}
	s.log.Info("report submitted", zap.Int64("erp_number", order.ErpNumber), zap.Bool("has_repeat", payload.HasRepeat))
	return domain.ReportResponse{
		Success: true,
		Message: "Отчёт принят.",
		Status:  order.Status,
	}, nil
}
