package directory

import (
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
	"github.com/m04kA/SMC-SchedulingService/pkg/tzconv"
)

// DaySchedule модель расписания дня из справочника
type DaySchedule struct {
	IsOpen    bool   `json:"is_open"`
	OpenTime  string `json:"open_time,omitempty"`  // HH:MM
	CloseTime string `json:"close_time,omitempty"` // HH:MM
}

// WorkingHours модель недельного расписания из справочника
type WorkingHours struct {
	Monday    DaySchedule `json:"monday"`
	Tuesday   DaySchedule `json:"tuesday"`
	Wednesday DaySchedule `json:"wednesday"`
	Thursday  DaySchedule `json:"thursday"`
	Friday    DaySchedule `json:"friday"`
	Saturday  DaySchedule `json:"saturday"`
	Sunday    DaySchedule `json:"sunday"`
}

// Business модель бизнеса из справочника
type Business struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	TimeZone      string       `json:"timezone"`
	BufferMinutes int          `json:"buffer_minutes"`
	WorkingHours  WorkingHours `json:"working_hours"`
}

// Service модель услуги из справочника
type Service struct {
	ID              int64  `json:"id"`
	BusinessID      int64  `json:"business_id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int64  `json:"price_cents"`
}

// ToDomain преобразует ответ справочника в доменную модель
func (b *Business) ToDomain() (*domain.Business, error) {
	days := []*DaySchedule{
		&b.WorkingHours.Monday,
		&b.WorkingHours.Tuesday,
		&b.WorkingHours.Wednesday,
		&b.WorkingHours.Thursday,
		&b.WorkingHours.Friday,
		&b.WorkingHours.Saturday,
		&b.WorkingHours.Sunday,
	}

	if b.BufferMinutes < 0 {
		return nil, fmt.Errorf("%w: business %d: negative buffer %d", ErrInvalidResponse, b.ID, b.BufferMinutes)
	}
	if _, err := tzconv.New().Location(b.TimeZone); err != nil {
		return nil, fmt.Errorf("%w: business %d: %v", ErrInvalidResponse, b.ID, err)
	}

	converted := make([]domain.DaySchedule, len(days))
	for i, d := range days {
		day, err := d.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%w: business %d: %v", ErrInvalidResponse, b.ID, err)
		}
		converted[i] = day
	}

	return &domain.Business{
		ID:            b.ID,
		Name:          b.Name,
		TimeZone:      b.TimeZone,
		BufferMinutes: b.BufferMinutes,
		WorkingHours: domain.WorkingHours{
			Monday:    converted[0],
			Tuesday:   converted[1],
			Wednesday: converted[2],
			Thursday:  converted[3],
			Friday:    converted[4],
			Saturday:  converted[5],
			Sunday:    converted[6],
		},
	}, nil
}

func (d *DaySchedule) toDomain() (domain.DaySchedule, error) {
	if !d.IsOpen {
		return domain.DaySchedule{}, nil
	}

	open, err := types.NewTimeStringFromString(d.OpenTime)
	if err != nil {
		return domain.DaySchedule{}, err
	}
	closeTime, err := types.NewTimeStringFromString(d.CloseTime)
	if err != nil {
		return domain.DaySchedule{}, err
	}

	return domain.DaySchedule{IsOpen: true, OpenTime: open, CloseTime: closeTime}, nil
}

// ToDomain преобразует услугу справочника в доменную модель
func (s *Service) ToDomain() *domain.Service {
	return &domain.Service{
		ID:              s.ID,
		BusinessID:      s.BusinessID,
		Name:            s.Name,
		DurationMinutes: s.DurationMinutes,
		PriceCents:      s.PriceCents,
	}
}
