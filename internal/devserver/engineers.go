package devserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"fieldline/internal/domain"
	"fieldline/internal/events"
)

func (s *server) registerEngineers(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-engineers",
		Method:      http.MethodGet,
		Path:        "/engineers",
		Summary:     "List engineers",
	}, func(ctx context.Context, _ *struct {
		Date string `query:"date"`
	}) (*struct {
		Body []domain.Engineer `json:"body"`
	}, error) {
		engineers, err := s.repo.ListEngineers(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Engineer `json:"body"`
		}{Body: engineers}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-engineer",
		Method:        http.MethodPost,
		Path:          "/engineers",
		Summary:       "Register engineer",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		Body domain.CreateEngineerRequest `json:"body"`
	}) (*struct {
		Body domain.Engineer `json:"body"`
	}, error) {
		if input.Body.FirstName == "" {
			return nil, newAPIError(http.StatusBadRequest, "first_name is required")
		}
		if input.Body.Username == "" {
			return nil, newAPIError(http.StatusBadRequest, "username is required")
		}
		eng, err := s.repo.CreateEngineer(ctx, input.Body, s.now())
		if err != nil {
			return nil, handleError(err)
		}
		s.record(ctx, "engineer.created", "engineer", eng.ID, events.EventPayload{"username": eng.Username})
		s.log.Info("engineer created", zap.Int64("id", eng.ID), zap.String("username", eng.Username))
		return &struct {
			Body domain.Engineer `json:"body"`
		}{Body: eng}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "accept-engineer",
		Method:      http.MethodPost,
		Path:        "/engineers/accept-engineer",
		Summary:     "Approve engineer",
	}, func(ctx context.Context, input *struct {
		Body struct {
			EngineerID int64 `json:"engineer_id"`
		} `json:"body"`
	}) (*struct {
		Body domain.Engineer `json:"body"`
	}, error) {
		eng, err := s.repo.ApproveEngineer(ctx, input.Body.EngineerID)
		if err != nil {
			return nil, handleError(err)
		}
		s.record(ctx, "engineer.approved", "engineer", eng.ID, nil)
		return &struct {
			Body domain.Engineer `json:"body"`
		}{Body: eng}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "toggle-working",
		Method:      http.MethodPost,
		Path:        "/engineers/toggle-working",
		Summary:     "Toggle engineer on-duty flag",
	}, func(ctx context.Context, input *struct {
		Body struct {
			EngineerID int64 `json:"engineer_id"`
		} `json:"body"`
	}) (*struct {
		Body domain.Engineer `json:"body"`
	}, error) {
		eng, err := s.repo.GetEngineer(ctx, input.Body.EngineerID)
		if err != nil {
			return nil, handleError(err)
		}
		if !eng.IsApproved {
			return nil, handleError(fmt.Errorf("engineer %d is required to be approved", eng.ID))
		}
		eng, err = s.repo.ToggleEngineerWorking(ctx, input.Body.EngineerID)
		if err != nil {
			return nil, handleError(err)
		}
		s.record(ctx, "engineer.working_toggled", "engineer", eng.ID, events.EventPayload{"is_working": eng.IsWorking})
		return &struct {
			Body domain.Engineer `json:"body"`
		}{Body: eng}, nil
	})
}
