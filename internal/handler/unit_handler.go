package handler

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduworld-api/internal/dto"
	"github.com/noah-isme/eduworld-api/internal/service"
	"github.com/noah-isme/eduworld-api/internal/utils"
)

var errInvalidForm = errors.New("invalid multipart form")

// UnitHandler wires unit endpoints, including multipart media uploads.
type UnitHandler struct {
	service service.UnitService
	logger  zerolog.Logger
}

// NewUnitHandler constructs the handler.
func NewUnitHandler(service service.UnitService, logger zerolog.Logger) *UnitHandler {
	return &UnitHandler{
		service: service,
		logger:  logger.With().Str("component", "unit_handler").Logger(),
	}
}

// Register attaches unit routes. GET takes a subject id, mutations take a unit id.
func (h *UnitHandler) Register(router fiber.Router, adminOnly fiber.Handler) {
	router.Get("/:subjectId", h.listBySubject)
	router.Post("", adminOnly, h.create)
	router.Put("/:id", adminOnly, h.update)
	router.Delete("/:id", adminOnly, h.delete)
}

func (h *UnitHandler) listBySubject(c *fiber.Ctx) error {
	subjectID, err := parseUintParam(c, "subjectId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	units, err := h.service.ListBySubject(c.UserContext(), subjectID)
	if err != nil {
		return handleError(c, h.logger, err, "list units")
	}

	return utils.SendSuccess(c, "units retrieved", units)
}

func (h *UnitHandler) create(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, errInvalidForm.Error())
	}

	subjectID, err := strconv.ParseUint(formValue(form, "subjectId", "subject_id"), 10, 64)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "subject id is required")
	}

	videoNames, err := formList(form, "videoNames", "video_names")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	pdfNames, err := formList(form, "pdfNames", "pdf_names")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	req := dto.UnitCreateRequest{
		SubjectID:   uint(subjectID),
		Title:       formValue(form, "title"),
		Description: formValue(form, "description"),
		VideoNames:  videoNames,
		PDFNames:    pdfNames,
	}

	unit, err := h.service.Create(c.UserContext(), req, formUploads(form), uploaderID(c))
	if err != nil {
		return handleError(c, h.logger, err, "create unit")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "unit created", unit)
}

func (h *UnitHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.UnitUpdateRequest
	var uploads service.UnitUploads

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, errInvalidForm.Error())
		}
		if req, err = unitUpdateFromForm(form); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		uploads = formUploads(form)
	} else if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	unit, err := h.service.Update(c.UserContext(), id, req, uploads, uploaderID(c))
	if err != nil {
		return handleError(c, h.logger, err, "update unit")
	}

	return utils.SendSuccess(c, "unit updated", unit)
}

func (h *UnitHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return handleError(c, h.logger, err, "delete unit")
	}

	return utils.SendSuccess(c, "unit deleted", fiber.Map{"id": id})
}

func unitUpdateFromForm(form *multipart.Form) (dto.UnitUpdateRequest, error) {
	var req dto.UnitUpdateRequest
	var err error

	if values, ok := formValues(form, "title"); ok {
		title := values[0]
		req.Title = &title
	}
	if values, ok := formValues(form, "description"); ok {
		description := values[0]
		req.Description = &description
	}

	if req.VideoNames, err = formList(form, "videoNames", "video_names"); err != nil {
		return req, err
	}
	if req.PDFNames, err = formList(form, "pdfNames", "pdf_names"); err != nil {
		return req, err
	}
	if req.RemoveVideoURLs, err = formList(form, "removeVideoUrls", "remove_video_urls"); err != nil {
		return req, err
	}
	if req.RemovePDFURLs, err = formList(form, "removePdfUrls", "remove_pdf_urls"); err != nil {
		return req, err
	}
	if req.RenameVideoNames, err = formMap(form, "renameVideoNames", "rename_video_names"); err != nil {
		return req, err
	}
	if req.RenamePDFNames, err = formMap(form, "renamePdfNames", "rename_pdf_names"); err != nil {
		return req, err
	}

	return req, nil
}

func formUploads(form *multipart.Form) service.UnitUploads {
	return service.UnitUploads{
		Videos: form.File["videos"],
		PDFs:   form.File["pdfs"],
	}
}

func formValues(form *multipart.Form, keys ...string) ([]string, bool) {
	for _, key := range keys {
		if values, ok := form.Value[key]; ok && len(values) > 0 {
			return values, true
		}
	}
	return nil, false
}

func formValue(form *multipart.Form, keys ...string) string {
	values, ok := formValues(form, keys...)
	if !ok {
		return ""
	}
	return strings.TrimSpace(values[0])
}

// formList accepts either repeated fields or a single JSON array.
func formList(form *multipart.Form, keys ...string) ([]string, error) {
	values, ok := formValues(form, keys...)
	if !ok {
		return nil, nil
	}

	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var items []string
		if err := json.Unmarshal([]byte(values[0]), &items); err != nil {
			return nil, errors.New(keys[0] + " must be a JSON array of strings")
		}
		return items, nil
	}

	return values, nil
}

// formMap decodes a JSON object of url to display name.
func formMap(form *multipart.Form, keys ...string) (map[string]string, error) {
	raw := formValue(form, keys...)
	if raw == "" {
		return nil, nil
	}

	items := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, errors.New(keys[0] + " must be a JSON object")
	}
	return items, nil
}
