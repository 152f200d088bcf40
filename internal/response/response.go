package response

// SuccessResponse представляет успешный ответ API
type SuccessResponse struct {
	Message string `json:"message" example:"Операция успешно выполнена"`
}

// ErrorResponse представляет ответ с ошибкой API
type ErrorResponse struct {
	// Код ошибки для программной обработки
	// example: INVALID_TRANSITION
	Code string `json:"code"`

	// Человекочитаемое сообщение об ошибке
	// example: Недопустимый переход статуса
	Message string `json:"message"`

	// Дополнительные детали об ошибке (опционально)
	// example: invalid status transition from seated to waiting
	Details string `json:"details,omitempty"`
}

// TokenResponse представляет ответ с токенами авторизации
type TokenResponse struct {
	// JWT токен для доступа к защищенным эндпоинтам
	AccessToken string `json:"access_token"`

	// JWT токен для обновления access токена
	RefreshToken string `json:"refresh_token"`
}

// SeatWarningResponse — ответ посадки, завершившейся частично: запись уже
// seated, но зависимый шаг упал; персонал должен проверить место вручную.
type SeatWarningResponse struct {
	Message string `json:"message"`
	Warning string `json:"warning"`
}
