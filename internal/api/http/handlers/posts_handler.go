package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/internal/api/dto"
	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/service"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// PostsHandler manages post endpoints.
type PostsHandler struct {
	service *service.PostService
}

// NewPostsHandler constructs handler.
func NewPostsHandler(postService *service.PostService) *PostsHandler {
	return &PostsHandler{service: postService}
}

// CreatePost POST /api/posts.
func (h *PostsHandler) CreatePost(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("no token")
	}

	req, err := parsePostBody(c)
	if err != nil {
		return err
	}

	post, err := h.service.Create(c.Context(), identity, postInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewPostResponse(post)})
}

// ListPosts GET /api/posts. Public; published posts only.
func (h *PostsHandler) ListPosts(c *fiber.Ctx) error {
	posts, err := h.service.ListPublished(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPostResponses(posts)})
}

// GetPost GET /api/posts/:id. Identity is optional; drafts need the owner.
func (h *PostsHandler) GetPost(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}
	identity, _ := auth.IdentityFromContext(c)

	post, err := h.service.Get(c.Context(), identity, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPostResponse(post)})
}

// UpdatePost PUT /api/posts/:id.
func (h *PostsHandler) UpdatePost(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("no token")
	}
	id, err := parsePostID(c)
	if err != nil {
		return err
	}

	req, err := parsePostBody(c)
	if err != nil {
		return err
	}

	post, err := h.service.Update(c.Context(), identity, id, postInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPostResponse(post)})
}

// DeletePost DELETE /api/posts/:id.
func (h *PostsHandler) DeletePost(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("no token")
	}
	id, err := parsePostID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Context(), identity, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

func parsePostID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid post id", nil)
	}
	return id, nil
}

func parsePostBody(c *fiber.Ctx) (dto.PostRequest, error) {
	var req dto.PostRequest
	if err := c.BodyParser(&req); err != nil {
		return req, apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		return req, apperrors.NewValidationError("title and content required", nil)
	}
	return req, nil
}

func postInput(req dto.PostRequest) service.PostInput {
	return service.PostInput{
		Title:     req.Title,
		Content:   req.Content,
		Excerpt:   req.Excerpt,
		ImageURL:  req.ImageURL,
		Published: req.Published,
	}
}
