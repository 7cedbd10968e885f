package devserver

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"fieldline/internal/domain"
	"fieldline/internal/repo"
)

// Dictionary endpoints answer wrapped in the data envelope, unlike the
// list endpoints above. The client normalizes both shapes.
func (s *server) registerDictionaries(api huma.API) {
	s.registerDictionary(api, "aggregators", repo.TableAggregators)
	s.registerDictionary(api, "problems", repo.TableProblems)
}

func (s *server) registerDictionary(api huma.API, name, table string) {
	huma.Register(api, huma.Operation{
		OperationID: "list-" + name,
		Method:      http.MethodGet,
		Path:        "/dictionaries/" + name,
		Summary:     "List " + name,
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body dataEnvelope[[]domain.DictionaryItem] `json:"body"`
	}, error) {
		items, err := s.repo.ListDictionary(ctx, table)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body dataEnvelope[[]domain.DictionaryItem] `json:"body"`
		}{Body: dataEnvelope[[]domain.DictionaryItem]{Data: items}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-" + name,
		Method:        http.MethodPost,
		Path:          "/dictionaries/" + name,
		Summary:       "Add " + name + " entry",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		Body struct {
			Name string `json:"name"`
		} `json:"body"`
	}) (*struct {
		Body dataEnvelope[domain.DictionaryItem] `json:"body"`
	}, error) {
		if input.Body.Name == "" {
			return nil, newAPIError(http.StatusBadRequest, "name is required")
		}
		item, err := s.repo.CreateDictionaryItem(ctx, table, input.Body.Name, s.now())
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body dataEnvelope[domain.DictionaryItem] `json:"body"`
		}{Body: dataEnvelope[domain.DictionaryItem]{Data: item}}, nil
	})
}
