package rest

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"user-directory-api/internal/application/ports"
	"user-directory-api/internal/domain/apperr"
	"user-directory-api/internal/interface/api/rest/dto/user"
	"user-directory-api/internal/interface/api/rest/middleware"
	"user-directory-api/internal/interface/api/rest/validator"
)

// imageField is the multipart field carrying the upload.
const imageField = "image"

// FormOverhead is the room left for form fields and part headers on top of
// the largest accepted upload.
const FormOverhead = 1 << 20

type UserController struct {
	userService ports.UserService
	attachments ports.AttachmentService
	logger      *zap.Logger
}

func NewUserController(
	r *gin.Engine,
	userService ports.UserService,
	attachments ports.AttachmentService,
	maxBodyBytes int64,
	logger *zap.Logger,
) *UserController {
	uc := &UserController{
		userService: userService,
		attachments: attachments,
		logger:      logger,
	}

	for _, prefix := range []string{RouteApi, RouteApiV1} {
		g := r.Group(prefix)
		if maxBodyBytes > 0 {
			g.Use(middleware.LimitBody(maxBodyBytes))
		}
		g.GET(RouteUsers, uc.GetUsersHandler)
		g.POST(RouteUsers, uc.CreateUserHandler)
		g.GET(RouteUser, uc.GetUserHandler)
		g.PATCH(RouteUser, uc.UpdateUserHandler)
		g.DELETE(RouteUser, uc.DeleteUserHandler)
	}

	return uc
}

func (uc *UserController) GetUsersHandler(c *gin.Context) {
	users, err := uc.userService.FindUsers(c.Request.Context())
	if err != nil {
		writeError(c, uc.logger, "FindUsers()", err)
		return
	}

	c.JSON(http.StatusOK, user.ResponseData{
		Data: user.ToResponseUsers(users, uc.attachments.ResolveURL),
	})
}

func (uc *UserController) GetUserHandler(c *gin.Context) {
	ok, uuid := validator.IsUUID(c.Param("user_id"))
	if !ok {
		writeError(c, uc.logger, "", apperr.Invalid("user_id", "user_id must be a valid UUID"))
		return
	}

	u, err := uc.userService.FindUserByID(c.Request.Context(), uuid)
	if err != nil {
		writeError(c, uc.logger, "FindUserByID()", err)
		return
	}

	c.JSON(http.StatusOK, user.ToResponseUser(*u, uc.attachments.ResolveURL))
}

func (uc *UserController) CreateUserHandler(c *gin.Context) {
	req, image, err := bindRequest(c)
	if err != nil {
		writeError(c, uc.logger, "", err)
		return
	}
	if errs := validator.ValidateCreate(req); errs != nil {
		writeError(c, uc.logger, "", apperr.NewValidationError(errs))
		return
	}
	if req.RemoveImage {
		writeError(c, uc.logger, "", apperr.Invalid("remove_image", "not allowed on create"))
		return
	}

	u, err := uc.userService.CreateUser(c.Request.Context(), user.ToDomainUser(req), image)
	if err != nil {
		writeError(c, uc.logger, "CreateUser()", err)
		return
	}

	c.JSON(http.StatusCreated, user.ToResponseUser(*u, uc.attachments.ResolveURL))
}

func (uc *UserController) UpdateUserHandler(c *gin.Context) {
	ok, uuid := validator.IsUUID(c.Param("user_id"))
	if !ok {
		writeError(c, uc.logger, "", apperr.Invalid("user_id", "user_id must be a valid UUID"))
		return
	}

	req, image, err := bindRequest(c)
	if err != nil {
		writeError(c, uc.logger, "", err)
		return
	}
	if errs := validator.ValidateUpdate(req); errs != nil {
		writeError(c, uc.logger, "", apperr.NewValidationError(errs))
		return
	}

	u, err := uc.userService.UpdateUser(c.Request.Context(), uuid, user.ToDomainPatch(req), image)
	if err != nil {
		writeError(c, uc.logger, "UpdateUser()", err)
		return
	}

	c.JSON(http.StatusOK, user.ToResponseUser(*u, uc.attachments.ResolveURL))
}

func (uc *UserController) DeleteUserHandler(c *gin.Context) {
	ok, uuid := validator.IsUUID(c.Param("user_id"))
	if !ok {
		writeError(c, uc.logger, "", apperr.Invalid("user_id", "user_id must be a valid UUID"))
		return
	}

	if err := uc.userService.DeleteUser(c.Request.Context(), uuid); err != nil {
		writeError(c, uc.logger, "DeleteUser()", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted", "id": uuid})
}

// bindRequest reads the user fields from a JSON or form body. Only multipart
// bodies can carry an image; a missing image part yields a nil header.
func bindRequest(c *gin.Context) (user.Request, *multipart.FileHeader, error) {
	var req user.Request

	switch c.ContentType() {
	case binding.MIMEJSON:
		if err := c.ShouldBindJSON(&req); err != nil {
			return req, nil, bodyError(err, "malformed JSON body")
		}
		return req, nil, nil
	case binding.MIMEMultipartPOSTForm:
		if _, err := c.MultipartForm(); err != nil {
			return req, nil, bodyError(err, "malformed multipart body")
		}
	case binding.MIMEPOSTForm:
		if err := c.Request.ParseForm(); err != nil {
			return req, nil, bodyError(err, "malformed form body")
		}
	default:
		return req, nil, apperr.Invalid("body", "expected multipart/form-data or application/json")
	}

	req.Name = postForm(c, "name")
	req.Email = postForm(c, "email")
	req.Phone = postForm(c, "phone")
	if v := postForm(c, "remove_image"); v != nil && *v != "" {
		b, err := strconv.ParseBool(*v)
		if err != nil {
			return req, nil, apperr.Invalid("remove_image", "must be a boolean")
		}
		req.RemoveImage = b
	}

	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		return req, nil, nil
	}

	fh, err := c.FormFile(imageField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return req, nil, nil
	case err != nil:
		return req, nil, apperr.Invalid("body", "malformed multipart body")
	}

	return req, fh, nil
}

// bodyError reports an oversized body by its limit and anything else as msg.
func bodyError(err error, msg string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.Invalid("body", fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	}
	return apperr.Invalid("body", msg)
}

func postForm(c *gin.Context, key string) *string {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &v
}
