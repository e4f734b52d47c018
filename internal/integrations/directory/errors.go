package directory

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrBusinessNotFound возвращается, когда справочник не знает бизнес
	ErrBusinessNotFound = fmt.Errorf("%w: business", domain.ErrNotFound)

	// ErrServiceNotFound возвращается, когда у бизнеса нет такой услуги
	ErrServiceNotFound = fmt.Errorf("%w: service", domain.ErrNotFound)

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("directory client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("directory client: invalid response")
)
