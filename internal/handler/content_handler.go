package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/shinobi04/ThinkStore-backend/internal/domain/model"
	"github.com/shinobi04/ThinkStore-backend/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ContentUsecaseが実装する
type ContentService interface {
	Add(ctx context.Context, userID int64, in usecase.AddContentInput) (*model.Content, error)
	List(ctx context.Context, userID int64) ([]model.Content, error)
	Delete(ctx context.Context, userID int64, contentID int64) (*usecase.DeletedContent, error)
	CreateShareLink(ctx context.Context, userID int64, contentID int64) (*usecase.ShareLinkOutput, bool, error)
	RevokeShareLink(ctx context.Context, userID int64, contentID int64) error
	GetShared(ctx context.Context, link string) (*usecase.SharedContent, error)
}

// /api/v1/content と /api/v1/brain/share のHTTP
type ContentHandler struct {
	uc  ContentService
	log *zap.Logger
}

// DI
func NewContentHandler(uc ContentService, log *zap.Logger) *ContentHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContentHandler{uc: uc, log: log}
}

type addContentRequest struct {
	Type  string   `json:"type"`
	Title string   `json:"title"`
	URL   string   `json:"url"`
	Tags  []string `json:"tags"`
}

type deleteContentRequest struct {
	ContID int64 `json:"contId"`
}

type contentsData struct {
	Contents []model.Content `json:"contents"`
}

type contentData struct {
	Content *model.Content `json:"content"`
}

// g は /api/v1
func (h *ContentHandler) RegisterRoutes(g *echo.Group, authMW echo.MiddlewareFunc) {
	g.GET("/content", h.list, authMW)
	g.POST("/content", h.add, authMW)
	g.DELETE("/content", h.delete, authMW)

	g.POST("/brain/share/:id", h.share, authMW)
	g.DELETE("/brain/share/:id", h.unshare, authMW)
	// 公開
	g.GET("/brain/share/:id", h.shared)
}

func (h *ContentHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, message("Not authenticated"))
	}

	contents, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(http.StatusOK, Response{
		Message: "Contents fetched successfully",
		Data:    contentsData{Contents: contents},
	})
}

func (h *ContentHandler) add(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, message("Not authenticated"))
	}

	var req addContentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, message("Invalid request body"))
	}

	content, err := h.uc.Add(c.Request().Context(), userID, usecase.AddContentInput{
		Type:  req.Type,
		Title: req.Title,
		URL:   req.URL,
		Tags:  req.Tags,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(http.StatusCreated, Response{
		Message: "Content created",
		Data:    contentData{Content: content},
	})
}

func (h *ContentHandler) delete(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, message("Not authenticated"))
	}

	var req deleteContentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, message("Content ID must be a positive integer"))
	}

	out, err := h.uc.Delete(c.Request().Context(), userID, req.ContID)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(http.StatusOK, Response{Message: "Content deleted successfully", Data: out})
}

func (h *ContentHandler) share(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, message("Not authenticated"))
	}

	contentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, message("Invalid content ID"))
	}

	out, created, err := h.uc.CreateShareLink(c.Request().Context(), userID, contentID)
	if err != nil {
		return writeError(c, h.log, err)
	}

	msg := "Link already exists"
	if created {
		msg = "Link created"
	}
	return c.JSON(http.StatusOK, Response{Message: msg, Data: out})
}

func (h *ContentHandler) unshare(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, message("Not authenticated"))
	}

	contentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, message("Invalid content ID"))
	}

	if err := h.uc.RevokeShareLink(c.Request().Context(), userID, contentID); err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(http.StatusOK, message("Link removed"))
}

func (h *ContentHandler) shared(c echo.Context) error {
	out, err := h.uc.GetShared(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(http.StatusOK, Response{Message: "Content fetched successfully", Data: out})
}
