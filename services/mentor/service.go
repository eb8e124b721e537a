package mentor

import (
	"context"
	"errors"
	"fmt"
	"time"

	availabilityRepo "superbryn/database/repository/availability"
	mentorRepo "superbryn/database/repository/mentor"
	"superbryn/models"
	"superbryn/services/scheduling"
	"superbryn/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers both unknown email and wrong password; login
// responses never distinguish the two.
var ErrInvalidCredentials = errors.New("invalid email or password")

const tokenTTL = 24 * time.Hour

// CreateMentorRequest carries the admin-side mentor onboarding payload.
type CreateMentorRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Specialty string `json:"specialty"`
	Bio       string `json:"bio"`
	Phone     string `json:"phone"`
}

// Service manages mentor accounts, authentication and open windows.
type Service interface {
	Authenticate(ctx context.Context, email, password string) (string, *models.Mentor, error)
	Create(ctx context.Context, req CreateMentorRequest) (*models.Mentor, error)
	Get(ctx context.Context, id string) (*models.Mentor, error)
	List(ctx context.Context, activeOnly bool) ([]models.Mentor, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Mentor, error)
	Deactivate(ctx context.Context, id string) error

	SetAvailability(ctx context.Context, mentorID, date, start, end string, slotDuration int) (*models.AvailabilityWindow, error)
	ListAvailability(ctx context.Context, mentorID, fromDate, toDate string) ([]models.AvailabilityWindow, error)
	RemoveAvailability(ctx context.Context, windowID string) error
}

// DefaultMentorService implements Service over the mentor and availability repositories.
type DefaultMentorService struct {
	Mentors      mentorRepo.MentorRepository
	Availability availabilityRepo.AvailabilityRepository
}

// Authenticate verifies mentor credentials and mints a session token.
func (s *DefaultMentorService) Authenticate(ctx context.Context, email, password string) (string, *models.Mentor, error) {
	m, err := s.Mentors.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mentorRepo.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to load mentor: %w", err)
	}
	if !m.Active {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(m.ID, "mentor", tokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("failed to mint token: %w", err)
	}
	m.PasswordHash = ""
	return token, m, nil
}

func (s *DefaultMentorService) Create(ctx context.Context, req CreateMentorRequest) (*models.Mentor, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	m := &models.Mentor{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Specialty:    req.Specialty,
		Bio:          req.Bio,
		Phone:        req.Phone,
		Active:       true,
		CreatedAt:    now,
	}
	if err := s.Mentors.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create mentor: %w", err)
	}

	utils.GetLogger().Info("mentor created",
		zap.String("mentorID", m.ID), zap.String("email", m.Email))
	m.PasswordHash = ""
	return m, nil
}

func (s *DefaultMentorService) Get(ctx context.Context, id string) (*models.Mentor, error) {
	return s.Mentors.GetByID(ctx, id)
}

func (s *DefaultMentorService) List(ctx context.Context, activeOnly bool) ([]models.Mentor, error) {
	return s.Mentors.List(ctx, activeOnly)
}

func (s *DefaultMentorService) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Mentor, error) {
	return s.Mentors.Update(ctx, id, fields)
}

func (s *DefaultMentorService) Deactivate(ctx context.Context, id string) error {
	return s.Mentors.Deactivate(ctx, id)
}

// SetAvailability validates and upserts the window for (mentor, date). Start
// and end are "HH:MM"; a zero slotDuration takes the default.
func (s *DefaultMentorService) SetAvailability(ctx context.Context, mentorID, date, start, end string, slotDuration int) (*models.AvailabilityWindow, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, scheduling.NewInvalidWindowError("invalid date %q, expected YYYY-MM-DD", date)
	}
	startMin, err := utils.ParseClock(start)
	if err != nil {
		return nil, scheduling.NewInvalidWindowError("%v", err)
	}
	endMin, err := utils.ParseClock(end)
	if err != nil {
		return nil, scheduling.NewInvalidWindowError("%v", err)
	}
	if slotDuration == 0 {
		slotDuration = models.DefaultSlotDuration
	}
	// SlotTimes does the window validation; we only need it to not reject.
	if _, err := scheduling.SlotTimes(startMin, endMin, slotDuration); err != nil {
		return nil, err
	}

	if _, err := s.Mentors.GetByID(ctx, mentorID); err != nil {
		if errors.Is(err, mentorRepo.ErrNotFound) {
			return nil, scheduling.NewNotFoundError("mentor %s not found", mentorID)
		}
		return nil, fmt.Errorf("failed to load mentor: %w", err)
	}

	window, err := s.Availability.SetWindow(ctx, &models.AvailabilityWindow{
		MentorID:     mentorID,
		Date:         date,
		Start:        startMin,
		End:          endMin,
		SlotDuration: slotDuration,
		Active:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store availability window: %w", err)
	}

	utils.GetLogger().Info("availability window set",
		zap.String("mentorID", mentorID),
		zap.String("date", date),
		zap.String("start", start),
		zap.String("end", end))
	return window, nil
}

func (s *DefaultMentorService) ListAvailability(ctx context.Context, mentorID, fromDate, toDate string) ([]models.AvailabilityWindow, error) {
	return s.Availability.ListWindows(ctx, mentorID, fromDate, toDate)
}

func (s *DefaultMentorService) RemoveAvailability(ctx context.Context, windowID string) error {
	return s.Availability.Remove(ctx, windowID)
}
