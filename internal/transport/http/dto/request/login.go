package request

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RenameUploadRequest struct {
	NewFilename string `json:"newFilename" validate:"required"`
}
