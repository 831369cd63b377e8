package services

import (
	"errors"
	"strings"

	"cafe_pos_backend/internal/models"
	"cafe_pos_backend/internal/repositories"
	"cafe_pos_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPinIncorrect       = errors.New("incorrect pin")
	ErrPinTooShort        = errors.New("pin must be at least 4 digits")
	ErrAnswerIncorrect    = errors.New("incorrect security answer")
	ErrNoRescueConfigured = errors.New("no security question configured")
)

// AdminStatus tells the client whether the admin area is protected and
// which rescue question to show.
type AdminStatus struct {
	PinRequired      bool    `json:"pin_required"`
	SecurityQuestion *string `json:"security_question,omitempty"`
}

type SetPinRequest struct {
	CurrentPin       string  `json:"current_pin"`
	NewPin           string  `json:"new_pin"`
	SecurityQuestion *string `json:"security_question"`
	SecurityAnswer   *string `json:"security_answer"`
}

// AdminService guards the management screens with an optional PIN. An
// installation without a PIN hash is open; unlocking always returns a
// short-lived token so handlers have a single auth path.
type AdminService interface {
	GetStatus() (*AdminStatus, error)
	Unlock(pin string) (string, error)
	SetPin(req SetPinRequest) error
	ResetPinWithAnswer(answer, newPin string) (string, error)
}

type adminService struct {
	settingsRepo repositories.SettingsRepository
	logService   ActivityLogService
}

func NewAdminService(settingsRepo repositories.SettingsRepository, logService ActivityLogService) AdminService {
	return &adminService{settingsRepo: settingsRepo, logService: logService}
}

func (s *adminService) loadSettings() (*models.AppSettings, error) {
	settings, err := s.settingsRepo.GetSettings()
	if errors.Is(err, repositories.ErrNotFound) {
		return &models.AppSettings{}, nil
	}
	return settings, err
}

func (s *adminService) GetStatus() (*AdminStatus, error) {
	settings, err := s.loadSettings()
	if err != nil {
		return nil, err
	}
	status := &AdminStatus{PinRequired: settings.AdminPinHash != ""}
	if status.PinRequired {
		status.SecurityQuestion = settings.SecurityQuestion
	}
	return status, nil
}

func (s *adminService) Unlock(pin string) (string, error) {
	settings, err := s.loadSettings()
	if err != nil {
		return "", err
	}
	if settings.AdminPinHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(settings.AdminPinHash), []byte(pin)); err != nil {
			return "", ErrPinIncorrect
		}
	}
	token, err := utils.GenerateAdminToken()
	if err != nil {
		return "", err
	}
	s.logService.Record(ActionAdminUnlock, "")
	return token, nil
}

// SetPin changes or clears the PIN. The current PIN must be presented
// when one is set. An empty new PIN removes the protection.
func (s *adminService) SetPin(req SetPinRequest) error {
	settings, err := s.loadSettings()
	if err != nil {
		return err
	}
	if settings.AdminPinHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(settings.AdminPinHash), []byte(req.CurrentPin)); err != nil {
			return ErrPinIncorrect
		}
	}

	newPin := strings.TrimSpace(req.NewPin)
	if newPin == "" {
		settings.AdminPinHash = ""
	} else {
		if len(newPin) < 4 {
			return ErrPinTooShort
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(newPin), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		settings.AdminPinHash = string(hash)
	}

	if req.SecurityQuestion != nil {
		settings.SecurityQuestion = req.SecurityQuestion
	}
	if req.SecurityAnswer != nil {
		answer := normalizeAnswer(*req.SecurityAnswer)
		hash, err := bcrypt.GenerateFromPassword([]byte(answer), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		hashed := string(hash)
		settings.SecurityAnswer = &hashed
	}

	if _, err := s.settingsRepo.SaveSettings(nil, settings); err != nil {
		return err
	}
	s.logService.Record(ActionPinChanged, "")
	return nil
}

// ResetPinWithAnswer is the rescue path when the PIN is forgotten: a
// correct security answer sets a new PIN and returns a session token.
func (s *adminService) ResetPinWithAnswer(answer, newPin string) (string, error) {
	settings, err := s.loadSettings()
	if err != nil {
		return "", err
	}
	if settings.SecurityAnswer == nil || *settings.SecurityAnswer == "" {
		return "", ErrNoRescueConfigured
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*settings.SecurityAnswer), []byte(normalizeAnswer(answer))); err != nil {
		return "", ErrAnswerIncorrect
	}

	newPin = strings.TrimSpace(newPin)
	if len(newPin) < 4 {
		return "", ErrPinTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	settings.AdminPinHash = string(hash)
	if _, err := s.settingsRepo.SaveSettings(nil, settings); err != nil {
		return "", err
	}

	s.logService.Record(ActionPinChanged, "reset via security question")
	return utils.GenerateAdminToken()
}

// normalizeAnswer makes the rescue answer forgiving about case and
// stray whitespace.
func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}
