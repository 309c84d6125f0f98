package controller

import (
	"errors"

	"ai-digest-be/internal/service"
	"ai-digest-be/pkg/content"
	"ai-digest-be/pkg/media"
	"ai-digest-be/pkg/pdf"
	"ai-digest-be/pkg/quiz"
	"ai-digest-be/pkg/segmenter"
	"ai-digest-be/pkg/transcription"

	"github.com/gofiber/fiber/v2"
)

// summaryFailure writes the structured failure body for a pipeline run.
// Anything else is mapped to a fiber.Error for the error middleware.
func summaryFailure(ctx *fiber.Ctx, err error) error {
	var failed *service.SummaryFailedError
	if errors.As(err, &failed) {
		status := fiber.StatusUnprocessableEntity
		if failed.BackendFailed() {
			status = fiber.StatusBadGateway
		}
		return ctx.Status(status).JSON(failed.Response)
	}
	return httpError(err)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidSource),
		errors.Is(err, content.ErrInvalidURL),
		errors.Is(err, content.ErrEmptyContent),
		errors.Is(err, content.ErrUnsupportedKind),
		errors.Is(err, transcription.ErrUnsupportedFormat),
		errors.Is(err, pdf.ErrEmptyFile),
		errors.Is(err, segmenter.ErrEmptyInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, transcription.ErrFileTooLarge),
		errors.Is(err, media.ErrFileTooLarge),
		errors.Is(err, content.ErrDownloadTooBig):
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, service.ErrSummaryNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrArchiveDisabled):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, quiz.ErrNoQuestions):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return err
	}
}
