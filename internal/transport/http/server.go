package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"floral_essence/internal/domain/models"
	"floral_essence/internal/lib/logger/sl"
	catalogsvc "floral_essence/internal/services/catalog_service"
	mediasvc "floral_essence/internal/services/media_service"
	"floral_essence/internal/storage"
	"floral_essence/internal/transport/http/dto"
	"floral_essence/internal/transport/http/dto/request"
	"floral_essence/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

type DatabaseService interface {
	Get(ctx context.Context) (models.Document, error)
	Replace(ctx context.Context, doc models.Document, expected *int64) (int64, error)
	HealthCheck(ctx context.Context) error
}

type MediaService interface {
	Upload(ctx context.Context, base string, file *multipart.FileHeader) (models.UploadResult, error)
	UploadMany(ctx context.Context, base string, files []*multipart.FileHeader) ([]models.UploadResult, error)
	Delete(ctx context.Context, name string) error
	Rename(ctx context.Context, base, oldName, desired string) (models.RenameResult, error)
	List(ctx context.Context, base, query string) ([]models.UploadedImage, error)
	UploadsDir() string
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (models.AdminToken, error)
	Verify(token string) (models.TokenMeta, error)
}

type CatalogService interface {
	Sections(ctx context.Context) ([]dto.SectionView, error)
	Category(ctx context.Context, name string, page int) (dto.SectionView, error)
}

type Routers struct {
	log             *slog.Logger
	DatabaseService DatabaseService
	MediaService    MediaService
	AuthService     AuthService
	CatalogService  CatalogService
	uploadsURL      string
}

// NewRouter builds the handlers. uploadsURL is the public prefix of stored
// files; when empty it is derived from each request.
func NewRouter(log *slog.Logger, databaseService DatabaseService, mediaService MediaService, authService AuthService, catalogService CatalogService, uploadsURL string) *Routers {
	return &Routers{
		log:             log,
		DatabaseService: databaseService,
		MediaService:    mediaService,
		AuthService:     authService,
		CatalogService:  catalogService,
		uploadsURL:      strings.TrimRight(uploadsURL, "/"),
	}
}

var ErrInvalidRevision = errors.New("invalid If-Match revision")

// UploadsPath is where stored files are served.
const UploadsPath = "/uploads"

// uploadsBase returns the public URL prefix of stored files.
func (r *Routers) uploadsBase(c echo.Context) string {
	if r.uploadsURL != "" {
		return r.uploadsURL
	}
	return c.Scheme() + "://" + c.Request().Host + UploadsPath
}

// Ping godoc
// @Summary Проверка доступности
// @Tags system
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/ping [get]
func (r *Routers) Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, response.SuccessResponse("Server is running"))
}

// Health godoc
// @Summary Состояние сервера
// @Description Проверяет хранилище документа и возвращает папку загрузок.
// @Tags system
// @Produce json
// @Success 200 {object} response.HealthResponse
// @Failure 503 {object} response.HealthResponse "Хранилище недоступно"
// @Router /api/health [get]
func (r *Routers) Health(c echo.Context) error {
	const op = "http.routers.Health"

	if err := r.DatabaseService.HealthCheck(c.Request().Context()); err != nil {
		r.log.Error("health check failed", slog.String("op", op), sl.Err(err))

		return c.JSON(http.StatusServiceUnavailable, response.HealthResponse{
			Status:        "ERROR",
			Message:       err.Error(),
			UploadsFolder: r.MediaService.UploadsDir(),
		})
	}

	return c.JSON(http.StatusOK, response.HealthResponse{
		Status:        "OK",
		Message:       "Server đang chạy!",
		UploadsFolder: r.MediaService.UploadsDir(),
	})
}

// GetDatabase godoc
// @Summary Получить документ магазина
// @Tags database
// @Produce json
// @Success 200 {object} response.DatabaseResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/database [get]
func (r *Routers) GetDatabase(c echo.Context) error {
	const op = "http.routers.GetDatabase"

	doc, err := r.DatabaseService.Get(c.Request().Context())
	if err != nil {
		r.log.Error("failed to load document", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	c.Response().Header().Set("ETag", strconv.FormatInt(doc.Revision, 10))

	return c.JSON(http.StatusOK, response.DatabaseResponse{
		Success: true,
		Data:    doc,
	})
}

// SaveDatabase godoc
// @Summary Заменить документ магазина
// @Description Полная замена документа. Заголовок If-Match с ревизией включает проверку конфликтов.
// @Tags database
// @Accept json
// @Produce json
// @Param If-Match header string false "Ожидаемая ревизия"
// @Param request body models.Document true "Документ"
// @Success 200 {object} response.SaveDatabaseResponse
// @Failure 400 {object} response.ErrorResponse "Неверный документ"
// @Failure 409 {object} response.ErrorResponse "Ревизия устарела"
// @Failure 500 {object} response.ErrorResponse
// @Router /api/database [post]
func (r *Routers) SaveDatabase(c echo.Context) error {
	const op = "http.routers.SaveDatabase"

	log := r.log.With(
		slog.String("op", op),
	)

	expected, err := parseIfMatch(c.Request().Header.Get("If-Match"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails(response.ErrInvalidRequestFormat.Error, err.Error()))
	}

	var doc models.Document
	if err := c.Bind(&doc); err != nil {
		log.Warn("failed to bind document", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails(response.ErrInvalidRequestFormat.Error, err.Error()))
	}

	rev, err := r.DatabaseService.Replace(c.Request().Context(), doc, expected)
	switch {
	case err == nil:
	case models.IsValidationError(err):
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails(response.ErrInvalidRequestFormat.Error, err.Error()))
	case errors.Is(err, storage.ErrRevisionConflict):
		c.Response().Header().Set("ETag", strconv.FormatInt(rev, 10))
		return c.JSON(http.StatusConflict, response.ErrorResponseWithDetails(
			response.ErrRevisionConflict.Error,
			fmt.Sprintf("current revision is %d", rev),
		))
	default:
		log.Error("failed to save document", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails(response.ErrInternal.Error, err.Error()))
	}

	c.Response().Header().Set("ETag", strconv.FormatInt(rev, 10))

	return c.JSON(http.StatusOK, response.SaveDatabaseResponse{
		Success:  true,
		Message:  "Đã lưu database thành công!",
		Revision: rev,
	})
}

// parseIfMatch accepts a bare or quoted revision. An empty header or "*"
// disables the check.
func parseIfMatch(v string) (*int64, error) {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "W/")
	v = strings.Trim(v, `"`)
	if v == "" || v == "*" {
		return nil, nil
	}

	rev, err := strconv.ParseInt(v, 10, 64)
	if err != nil || rev < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRevision, v)
	}
	return &rev, nil
}

// Upload godoc
// @Summary Загрузить изображение
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Изображение (JPEG, PNG, GIF, WebP)"
// @Success 200 {object} response.UploadResponse
// @Failure 400 {object} response.ErrorResponse "Нет файла или неверный тип"
// @Failure 413 {object} response.ErrorResponse "Файл слишком большой"
// @Router /api/upload [post]
func (r *Routers) Upload(c echo.Context) error {
	const op = "http.routers.Upload"

	file, err := c.FormFile("image")
	if err != nil {
		r.log.Warn("no file in request", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrNoFileUploaded)
	}

	if err := c.Validate(dto.UploadInput{File: file}); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrNoFileUploaded)
	}

	res, err := r.MediaService.Upload(c.Request().Context(), r.uploadsBase(c), file)
	if err != nil {
		return uploadError(c, err)
	}

	return c.JSON(http.StatusOK, response.UploadResponse{
		Success:      true,
		UploadResult: res,
	})
}

// UploadMultiple godoc
// @Summary Загрузить несколько изображений
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param images formData file true "Изображения"
// @Success 200 {object} response.UploadMultipleResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /api/upload-multiple [post]
func (r *Routers) UploadMultiple(c echo.Context) error {
	const op = "http.routers.UploadMultiple"

	form, err := c.MultipartForm()
	if err != nil {
		r.log.Warn("failed to parse multipart form", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrNoFileUploaded)
	}

	files := form.File["images"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, response.ErrNoFileUploaded)
	}

	res, err := r.MediaService.UploadMany(c.Request().Context(), r.uploadsBase(c), files)
	if err != nil {
		return uploadError(c, err)
	}

	return c.JSON(http.StatusOK, response.UploadMultipleResponse{
		Success: true,
		Images:  res,
		Count:   len(res),
	})
}

func uploadError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, storage.ErrFileTooLarge):
		return c.JSON(http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
	case errors.Is(err, storage.ErrInvalidFileType):
		return c.JSON(http.StatusBadRequest, response.ErrInvalidFileType)
	case errors.Is(err, mediasvc.ErrNoFiles):
		return c.JSON(http.StatusBadRequest, response.ErrNoFileUploaded)
	case errors.Is(err, mediasvc.ErrTooManyFiles):
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails(response.ErrInvalidRequestFormat.Error, err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails(response.ErrInternal.Error, err.Error()))
	}
}

// DeleteUpload godoc
// @Summary Удалить изображение
// @Description Отсутствующий файл считается удаленным.
// @Tags uploads
// @Produce json
// @Param filename path string true "Имя файла"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse "Путь вне папки загрузок"
// @Router /api/upload/{filename} [delete]
func (r *Routers) DeleteUpload(c echo.Context) error {
	const op = "http.routers.DeleteUpload"

	name := pathParam(c, "filename")

	err := r.MediaService.Delete(c.Request().Context(), name)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, response.SuccessResponse("Đã xóa ảnh thành công!"))
	case errors.Is(err, storage.ErrPathEscape):
		r.log.Warn("path escape attempt", slog.String("op", op), slog.String("filename", name))
		return c.JSON(http.StatusForbidden, response.ErrForbiddenPath)
	default:
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails(response.ErrInternal.Error, err.Error()))
	}
}

// RenameUpload godoc
// @Summary Переименовать изображение
// @Description Новое имя приводится к SEO-виду, расширение сохраняется.
// @Tags uploads
// @Accept json
// @Produce json
// @Param oldFilename path string true "Текущее имя файла"
// @Param request body request.RenameUploadRequest true "Желаемое имя"
// @Success 200 {object} response.RenameResponse
// @Failure 400 {object} response.ErrorResponse "Пустое имя"
// @Failure 403 {object} response.ErrorResponse "Путь вне папки загрузок"
// @Failure 404 {object} response.ErrorResponse "Файл не найден"
// @Failure 409 {object} response.ErrorResponse "Имя занято"
// @Router /api/rename-upload/{oldFilename} [put]
func (r *Routers) RenameUpload(c echo.Context) error {
	const op = "http.routers.RenameUpload"

	log := r.log.With(
		slog.String("op", op),
	)

	oldName := pathParam(c, "oldFilename")

	var req request.RenameUploadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil || strings.TrimSpace(req.NewFilename) == "" {
		return c.JSON(http.StatusBadRequest, response.ErrEmptyFilename)
	}

	res, err := r.MediaService.Rename(c.Request().Context(), r.uploadsBase(c), oldName, req.NewFilename)
	switch {
	case err == nil:
	case errors.Is(err, mediasvc.ErrEmptyFilename):
		return c.JSON(http.StatusBadRequest, response.ErrEmptyFilename)
	case errors.Is(err, storage.ErrPathEscape):
		log.Warn("path escape attempt", slog.String("filename", oldName))
		return c.JSON(http.StatusForbidden, response.ErrForbiddenPath)
	case errors.Is(err, storage.ErrFileNotFound):
		return c.JSON(http.StatusNotFound, response.ErrUploadNotFound)
	case errors.Is(err, storage.ErrFileExists):
		return c.JSON(http.StatusConflict, response.ErrUploadExists)
	default:
		log.Error("rename failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails(response.ErrInternal.Error, err.Error()))
	}

	return c.JSON(http.StatusOK, response.RenameResponse{
		Success:      true,
		Message:      "Đã đổi tên file thành công!",
		RenameResult: res,
	})
}

// ListUploads godoc
// @Summary Список загруженных изображений
// @Description Новые файлы первыми. Параметр q фильтрует по имени.
// @Tags uploads
// @Produce json
// @Param q query string false "Подстрока имени"
// @Success 200 {object} response.UploadsResponse
// @Router /api/uploads [get]
func (r *Routers) ListUploads(c echo.Context) error {
	const op = "http.routers.ListUploads"

	var q dto.UploadQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	images, err := r.MediaService.List(c.Request().Context(), r.uploadsBase(c), q.Q)
	if err != nil {
		r.log.Error("failed to list uploads", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails(response.ErrInternal.Error, err.Error()))
	}

	return c.JSON(http.StatusOK, response.UploadsResponse{
		Success: true,
		Images:  images,
		Count:   len(images),
	})
}

// Login godoc
// @Summary Вход администратора
// @Description Проверяет учетные данные, открывает сессию и возвращает JWT-токен.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Данные для входа"
// @Success 200 {object} response.LoginResponse
// @Failure 400 {object} response.ErrorResponse "Неверный формат запроса"
// @Failure 401 {object} response.ErrorResponse "Ошибка аутентификации"
// @Router /api/login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid format request", slog.String("username", req.Username))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails(response.ErrInvalidRequestFormat.Error, err.Error()))
	}

	token, err := r.AuthService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	if err := StartAdminSession(c, req.Username); err != nil {
		log.Warn("failed to save session", sl.Err(err))
	}

	return c.JSON(http.StatusOK, response.LoginResponse{
		Success:   true,
		Message:   "Đăng nhập thành công!",
		Token:     token.AccessToken,
		ExpiresAt: token.ExpiresAt,
	})
}

// Logout godoc
// @Summary Выход администратора
// @Tags auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/logout [post]
func (r *Routers) Logout(c echo.Context) error {
	const op = "http.routers.Logout"

	if err := EndAdminSession(c); err != nil {
		r.log.Warn("failed to clear session", slog.String("op", op), sl.Err(err))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse("Đã đăng xuất!"))
}

// Catalog godoc
// @Summary Витрина
// @Description Первая страница каждой непустой категории.
// @Tags catalog
// @Produce json
// @Success 200 {object} response.CatalogResponse{data=[]dto.SectionView}
// @Router /api/catalog [get]
func (r *Routers) Catalog(c echo.Context) error {
	views, err := r.CatalogService.Sections(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails(response.ErrInternal.Error, err.Error()))
	}

	return c.JSON(http.StatusOK, response.CatalogResponse{
		Success: true,
		Data:    views,
	})
}

// CatalogCategory godoc
// @Summary Страница категории
// @Tags catalog
// @Produce json
// @Param category path string true "Категория"
// @Param page query int false "Номер страницы"
// @Success 200 {object} response.CatalogResponse{data=dto.SectionView}
// @Failure 404 {object} response.ErrorResponse "Категория не найдена"
// @Router /api/catalog/{category} [get]
func (r *Routers) CatalogCategory(c echo.Context) error {
	var q dto.CatalogQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(q); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails(response.ErrInvalidRequestFormat.Error, err.Error()))
	}
	if q.Page == 0 {
		q.Page = 1
	}

	view, err := r.CatalogService.Category(c.Request().Context(), pathParam(c, "category"), q.Page)
	switch {
	case err == nil:
	case errors.Is(err, catalogsvc.ErrCategoryNotFound):
		return c.JSON(http.StatusNotFound, response.ErrCategoryNotFound)
	default:
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails(response.ErrInternal.Error, err.Error()))
	}

	return c.JSON(http.StatusOK, response.CatalogResponse{
		Success: true,
		Data:    view,
	})
}

// pathParam returns a decoded path parameter.
func pathParam(c echo.Context, name string) string {
	v := c.Param(name)
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}
