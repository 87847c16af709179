package handlers

import (
	"errors"

	"creditoya-web/internal/adapters/gateway"
	"creditoya-web/internal/core/services"
	"creditoya-web/internal/pkg/logger"
	"creditoya-web/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// fail maps a service error onto the envelope. Validation problems are 400,
// gateway answers keep their status, anything else is a 500 with fallback.
func fail(c *fiber.Ctx, err error, fallback string) error {
	var vErr *services.ValidationError
	if errors.As(err, &vErr) {
		return response.BadRequest(c, vErr.Message)
	}

	if gwErr, ok := gateway.AsError(err); ok {
		logEntry(c, err).WithField("status", gwErr.Status).Warn("gateway request failed")
		return response.Error(c, gwErr.Status, gwErr.MessageOr(fallback))
	}

	logEntry(c, err).Error("request failed")
	return response.InternalServerError(c, fallback)
}

func logEntry(c *fiber.Ctx, err error) *logrus.Entry {
	id, _ := c.Locals("requestid").(string)
	return logger.WithRequest(id).WithError(err).WithField("path", c.Path())
}

// formFile opens an optional multipart file. The returned closer is never nil.
func formFile(c *fiber.Ctx, field string) (*gateway.File, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		// missing part or not a multipart request
		return nil, func() {}, nil
	}

	f, err := header.Open()
	if err != nil {
		return nil, func() {}, err
	}

	return &gateway.File{Field: field, Filename: header.Filename, Content: f}, func() { _ = f.Close() }, nil
}
