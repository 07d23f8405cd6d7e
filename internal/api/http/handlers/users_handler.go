package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-records/internal/api/dto"
	"github.com/spec-kit/user-records/internal/domain"
	"github.com/spec-kit/user-records/internal/service"
	apperrors "github.com/spec-kit/user-records/pkg/util"
)

// UsersHandler exposes the /users endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Search handles GET /users.
func (h *UsersHandler) Search(c *fiber.Ctx) error {
	req, err := parseUserRequest(c)
	if err != nil {
		return err
	}
	criteria, err := req.Criteria()
	if err != nil {
		return inputError(err)
	}

	result, err := h.users.Search(c.UserContext(), criteria, bool(req.Unique))
	if err != nil {
		return err
	}
	if result.NotUnique {
		return c.Status(http.StatusOK).JSON(fiber.Map{"errors": service.MsgNotUnique})
	}
	return c.JSON(fiber.Map{"users": dto.NewUserResponses(result.Users)})
}

// Create handles POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	req, err := parseUserRequest(c)
	if err != nil {
		return err
	}
	if len(req.User) == 0 {
		return apperrors.NewParameterMissing("user")
	}
	attrs, err := req.Attributes()
	if err != nil {
		return inputError(err)
	}

	user, err := h.users.Create(c.UserContext(), service.UserCreateInput{
		FirstName:   attrs.FirstName,
		LastName:    attrs.LastName,
		Email:       attrs.Email,
		GovIDNumber: attrs.GovIDNumber,
		GovIDType:   attrs.GovIDType,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"user": dto.NewUserResponse(*user)})
}

// Delete handles DELETE /users.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	req, err := parseUserRequest(c)
	if err != nil {
		return err
	}
	criteria, err := req.Criteria()
	if err != nil {
		return inputError(err)
	}

	if err := h.users.Delete(c.UserContext(), criteria); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// parseUserRequest reads the envelope from a JSON body and then from
// `user[field]=` / `unique=` query parameters. Body values win.
func parseUserRequest(c *fiber.Ctx) (dto.UserRequest, error) {
	var req dto.UserRequest

	contentType := strings.ToLower(string(c.Request().Header.ContentType()))
	if len(c.Body()) > 0 && strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
		if err := c.BodyParser(&req); err != nil {
			return req, apperrors.NewMalformedRequest("invalid payload")
		}
	}

	var queryErr error
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		switch {
		case k == "unique":
			if err := req.Unique.Set(string(value)); err != nil && queryErr == nil {
				queryErr = apperrors.NewMalformedRequest(err.Error())
			}
		case strings.HasPrefix(k, "user[") && strings.HasSuffix(k, "]"):
			field := k[len("user[") : len(k)-1]
			if req.User == nil {
				req.User = dto.Fields{}
			}
			if _, set := req.User[field]; !set {
				req.User[field] = string(value)
			}
		}
	})
	return req, queryErr
}

func inputError(err error) error {
	if errors.Is(err, domain.ErrUnknownGovIDType) {
		return apperrors.NewMalformedRequest(err.Error())
	}
	return err
}
