package appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment.repository: appointment not found")

	// ErrOverlap возвращается, когда ограничение appointments_no_overlap отклонило запись
	ErrOverlap = errors.New("appointment.repository: time range overlaps an occupying appointment")

	// ErrStatusMismatch возвращается, когда условное обновление не нашло запись в ожидаемом статусе
	ErrStatusMismatch = errors.New("appointment.repository: appointment is not in the expected status")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)
