package response

import "floral_essence/internal/domain/models"

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func SuccessResponse(message string) Response {
	return Response{
		Success: true,
		Message: message,
	}
}

func ErrorResponseWithDetails(err, details string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error:   err,
		Details: details,
	}
}

type DatabaseResponse struct {
	Success bool            `json:"success"`
	Data    models.Document `json:"data"`
}

type SaveDatabaseResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Revision int64  `json:"revision"`
}

type UploadResponse struct {
	Success bool `json:"success"`
	models.UploadResult
}

type UploadMultipleResponse struct {
	Success bool                  `json:"success"`
	Images  []models.UploadResult `json:"images"`
	Count   int                   `json:"count"`
}

type RenameResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	models.RenameResult
}

type UploadsResponse struct {
	Success bool                   `json:"success"`
	Images  []models.UploadedImage `json:"images"`
	Count   int                    `json:"count"`
}

type LoginResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Token     string `json:"token,omitempty"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
}

type HealthResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	UploadsFolder string `json:"uploadsFolder"`
}

type CatalogResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}
