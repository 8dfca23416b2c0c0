package services

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"user-directory-api/internal/application/ports"
	"user-directory-api/internal/domain/apperr"
	domain "user-directory-api/internal/domain/user"
	"user-directory-api/internal/infrastructure/mq"
	"user-directory-api/internal/interface/api/rest/dto/user"
)

type UserService struct {
	userRepository domain.Repository
	attachments    ports.AttachmentService
	events         ports.EventPublisher
	mCounter       *prometheus.CounterVec
	logger         *zap.Logger
}

func NewUserService(
	userRepository domain.Repository,
	attachments ports.AttachmentService,
	events ports.EventPublisher,
	mCounter *prometheus.CounterVec,
	logger *zap.Logger,
) ports.UserService {
	return &UserService{
		userRepository: userRepository,
		attachments:    attachments,
		events:         events,
		mCounter:       mCounter,
		logger:         logger,
	}
}

func (us *UserService) FindUserByID(ctx context.Context, uuid domain.UUID) (*domain.User, error) {
	return us.userRepository.FetchUserByID(ctx, uuid)
}

func (us *UserService) FindUsers(ctx context.Context) (domain.Users, error) {
	return us.userRepository.FetchUsers(ctx)
}

// CreateUser stores the image first, then inserts the record pointing at it.
// If the insert fails the stored image is removed again.
func (us *UserService) CreateUser(ctx context.Context, u domain.User, image *multipart.FileHeader) (*domain.User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	u.ImagePath = nil
	if image != nil {
		p, err := us.attachments.Store(ctx, image)
		if err != nil {
			return nil, err
		}
		u.ImagePath = &p
	}

	uRet, err := us.userRepository.CreateUser(ctx, u)
	if err != nil {
		us.discard(u.ImagePath, "create failed")
		return nil, err
	}

	us.publish(http.MethodPost, uRet)
	us.inc("user_created_total")

	return uRet, nil
}

// UpdateUser merges p onto an existing record. A new image replaces the old
// reference and the file the row held before the update is removed once the
// update has been stored.
func (us *UserService) UpdateUser(
	ctx context.Context,
	uuid domain.UUID,
	p domain.Patch,
	image *multipart.FileHeader,
) (*domain.User, error) {
	if image != nil && p.ClearImage {
		return nil, apperr.Invalid("image", "cannot upload and remove an image in the same request")
	}
	p.ImagePath = nil
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// fail before storing anything for an unknown id
	if _, err := us.userRepository.FetchUserByID(ctx, uuid); err != nil {
		return nil, err
	}

	if image != nil {
		path, err := us.attachments.Store(ctx, image)
		if err != nil {
			return nil, err
		}
		p.ImagePath = &path
	}

	uRet, prevImagePath, err := us.userRepository.UpdateUser(ctx, uuid, p)
	if err != nil {
		us.discard(p.ImagePath, "update failed")
		return nil, err
	}

	if p.ReplacesImage() {
		us.discard(prevImagePath, "image replaced")
	}

	us.publish(http.MethodPatch, uRet)
	us.inc("user_updated_total")

	return uRet, nil
}

// DeleteUser soft-deletes the record and removes its image file.
func (us *UserService) DeleteUser(ctx context.Context, uuid domain.UUID) error {
	u, err := us.userRepository.DeleteUser(ctx, uuid)
	if err != nil {
		return err
	}

	us.discard(u.ImagePath, "user deleted")
	us.publish(http.MethodDelete, u)
	us.inc("user_deleted_total")

	return nil
}

// discard removes a file no record references any more. Failures only leave
// an orphan behind, so they are logged and not returned.
func (us *UserService) discard(storagePath *string, reason string) {
	if storagePath == nil {
		return
	}
	if err := us.attachments.Remove(*storagePath); err != nil {
		us.logger.Warn("attachment cleanup failed",
			zap.String("storage_path", *storagePath),
			zap.String("reason", reason),
			zap.Error(err),
		)
	}
}

func (us *UserService) publish(method string, u *domain.User) {
	if us.events == nil || u == nil {
		return
	}
	us.events.Publish(mq.NewEvent(method, user.ToResponseUser(*u, us.attachments.ResolveURL)))
}

func (us *UserService) inc(label string) {
	if us.mCounter != nil {
		us.mCounter.WithLabelValues(label).Inc()
	}
}
