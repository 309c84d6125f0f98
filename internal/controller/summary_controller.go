package controller

import (
	"os"
	"path/filepath"
	"strings"

	"ai-digest-be/internal/dto"
	"ai-digest-be/internal/pkg/serverutils"
	"ai-digest-be/internal/service"
	"ai-digest-be/pkg/ai/pipeline"
	"ai-digest-be/pkg/content"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISummaryController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Summarize(ctx *fiber.Ctx) error
	ExtractBook(ctx *fiber.Ctx) error
	SummarizePDF(ctx *fiber.Ctx) error
	SummarizeAudio(ctx *fiber.Ctx) error
	SummarizeVideo(ctx *fiber.Ctx) error
	SummarizeSource(ctx *fiber.Ctx) error
	GenerateQuiz(ctx *fiber.Ctx) error
	CompletionStatus(ctx *fiber.Ctx) error
	VerifyModel(ctx *fiber.Ctx) error
	ListSummaries(ctx *fiber.Ctx) error
	ShowSummary(ctx *fiber.Ctx) error
}

type summaryController struct {
	service   service.ISummaryService
	uploadDir string
}

func NewSummaryController(service service.ISummaryService, uploadDir string) ISummaryController {
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	return &summaryController{service: service, uploadDir: uploadDir}
}

func (c *summaryController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	r.Post("/summarize", auth, c.Summarize)
	r.Post("/summarize/pdf", auth, c.SummarizePDF)
	r.Post("/summarize/audio", auth, c.SummarizeAudio)
	r.Post("/summarize/video", auth, c.SummarizeVideo)
	r.Post("/summarize/source", auth, c.SummarizeSource)
	r.Post("/extract/book", auth, c.ExtractBook)
	r.Post("/quiz", auth, c.GenerateQuiz)

	r.Get("/summaries", auth, c.ListSummaries)
	r.Get("/summaries/:id", auth, c.ShowSummary)

	r.Get("/completion/status", c.CompletionStatus)
	r.Get("/completion/verify", auth, c.VerifyModel)
}

func (c *summaryController) Summarize(ctx *fiber.Ctx) error {
	var req dto.SummarizeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Summarize(ctx.UserContext(), &req)
	if err != nil {
		return summaryFailure(ctx, err)
	}
	return ctx.JSON(res)
}

// ExtractBook accepts either a multipart PDF upload or a JSON body with
// already extracted text.
func (c *summaryController) ExtractBook(ctx *fiber.Ctx) error {
	if strings.HasPrefix(ctx.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return c.summarizeUpload(ctx, pipeline.KindBook)
	}

	var req dto.ExtractBookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ExtractBook(ctx.UserContext(), &req)
	if err != nil {
		return summaryFailure(ctx, err)
	}
	return ctx.JSON(res)
}

func (c *summaryController) SummarizePDF(ctx *fiber.Ctx) error {
	return c.summarizeUpload(ctx, pipeline.KindBook)
}

func (c *summaryController) SummarizeAudio(ctx *fiber.Ctx) error {
	return c.summarizeUpload(ctx, pipeline.KindAudio)
}

func (c *summaryController) SummarizeVideo(ctx *fiber.Ctx) error {
	return c.summarizeUpload(ctx, pipeline.KindVideo)
}

func (c *summaryController) summarizeUpload(ctx *fiber.Ctx, kind pipeline.Kind) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}

	path := filepath.Join(c.uploadDir, "upload-"+uuid.NewString()+strings.ToLower(filepath.Ext(fh.Filename)))
	if err := ctx.SaveFile(fh, path); err != nil {
		return err
	}
	defer os.Remove(path)

	src := content.FileUploadSource{
		Path:     path,
		Filename: fh.Filename,
		Title:    ctx.FormValue("title"),
		Kind:     kind,
	}
	res, err := c.service.SummarizeSource(ctx.UserContext(), src)
	if err != nil {
		return summaryFailure(ctx, err)
	}
	return ctx.JSON(res)
}

func (c *summaryController) SummarizeSource(ctx *fiber.Ctx) error {
	var req dto.SourceRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	src, err := service.SourceFromInput(service.JobInputFromRequest(&req))
	if err != nil {
		return httpError(err)
	}

	res, err := c.service.SummarizeSource(ctx.UserContext(), src)
	if err != nil {
		return summaryFailure(ctx, err)
	}
	return ctx.JSON(res)
}

func (c *summaryController) GenerateQuiz(ctx *fiber.Ctx) error {
	var req dto.QuizRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.GenerateQuiz(ctx.UserContext(), &req)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Quiz generated", res))
}

func (c *summaryController) CompletionStatus(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Completion status", c.service.CompletionStatus()))
}

func (c *summaryController) VerifyModel(ctx *fiber.Ctx) error {
	report, err := c.service.VerifyModel(ctx.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return ctx.JSON(serverutils.SuccessResponse("Model verified", report))
}

func (c *summaryController) ListSummaries(ctx *fiber.Ctx) error {
	var req dto.ListSummariesRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ListSummaries(ctx.UserContext(), &req)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list summaries", res))
}

func (c *summaryController) ShowSummary(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid summary id")
	}

	res, err := c.service.GetSummary(ctx.UserContext(), id)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show summary", res))
}
