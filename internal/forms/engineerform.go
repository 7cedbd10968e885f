package forms

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fieldline/internal/domain"
)

// EngineerForm collects the fields for registering a new engineer.
type EngineerForm struct {
	FirstName  string
	SecondName string
	Username   string
	Phone      string
	TelegramID string
}

// Validate checks the required fields. Telegram id, when given, must be
// numeric.
func (f *EngineerForm) Validate() error {
	var missing []string
	if strings.TrimSpace(f.FirstName) == "" {
		missing = append(missing, "имя")
	}
	if strings.TrimSpace(f.Username) == "" {
		missing = append(missing, "username")
	}
	if len(missing) > 0 {
		return fmt.Errorf("не заполнено: %s", strings.Join(missing, ", "))
	}
	if strings.TrimSpace(f.TelegramID) != "" {
		if _, err := strconv.ParseInt(strings.TrimSpace(f.TelegramID), 10, 64); err != nil {
			return errors.New("telegram id должен быть числом")
		}
	}
	return nil
}

// BuildRequest validates and composes the creation payload.
func (f *EngineerForm) BuildRequest() (domain.CreateEngineerRequest, error) {
	if err := f.Validate(); err != nil {
		return domain.CreateEngineerRequest{}, err
	}
	req := domain.CreateEngineerRequest{
		FirstName:  strings.TrimSpace(f.FirstName),
		SecondName: strings.TrimSpace(f.SecondName),
		Username:   strings.TrimSpace(f.Username),
		Phone:      strings.TrimSpace(f.Phone),
	}
	if tg := strings.TrimSpace(f.TelegramID); tg != "" {
		id, _ := strconv.ParseInt(tg, 10, 64)
		req.TelegramID = id
	}
	return req, nil
}
