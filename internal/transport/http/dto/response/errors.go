package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Error:   "Yêu cầu không hợp lệ!",
		Details: "invalid_request",
	}

	ErrAuthenticationFailed = ErrorResponse{
		Error: "Sai tài khoản hoặc mật khẩu!",
	}

	ErrUnauthorized = ErrorResponse{
		Error: "Bạn cần đăng nhập để thực hiện thao tác này!",
	}

	ErrNoFileUploaded = ErrorResponse{
		Error: "Không có file nào được upload!",
	}

	ErrForbiddenPath = ErrorResponse{
		Error: "Không có quyền truy cập file này!",
	}

	ErrEmptyFilename = ErrorResponse{
		Error: "Tên file mới không được để trống!",
	}

	ErrUploadNotFound = ErrorResponse{
		Error: "Không tìm thấy file cần đổi tên!",
	}

	ErrUploadExists = ErrorResponse{
		Error: "Tên file này đã tồn tại!",
	}

	ErrInvalidFileType = ErrorResponse{
		Error: "Chỉ cho phép upload file ảnh (JPEG, PNG, GIF, WebP)!",
	}

	ErrFileTooLarge = ErrorResponse{
		Error: "File quá lớn!",
	}

	ErrRevisionConflict = ErrorResponse{
		Error: "Dữ liệu trên server đã thay đổi, hãy tải lại trước khi lưu!",
	}

	ErrCategoryNotFound = ErrorResponse{
		Error: "Không tìm thấy danh mục!",
	}

	ErrInternal = ErrorResponse{
		Error: "Lỗi máy chủ!",
	}
)
