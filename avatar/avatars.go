package avatar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"primor/activity"
	"primor/bizerror"
	"primor/client/s3"
	"primor/domain/worker"
	"primor/persistence"
	"primor/session"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/fundwit/go-commons/types"
)

const (
	AvatarHandlerName  = "avatarCleaner"
	DefaultContentType = "image/png"
)

var (
	DetailAvatarFunc = DetailAvatar
	SaveAvatarFunc   = SaveAvatar
)

func Key(workerID types.ID) string {
	return "avatars/" + workerID.String() + ".png"
}

func DetailAvatar(workerID types.ID, s *session.Session) ([]byte, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	if !s3.Enabled() {
		return nil, bizerror.ErrFeatureDisabled
	}
	r, err := s3.GetObjectFunc(s.Ctx(), Key(workerID))
	if err != nil {
		var serErr oss.ServiceError
		if errors.As(err, &serErr) && serErr.Code == "NoSuchKey" {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func SaveAvatar(workerID types.ID, r io.Reader, contentType string, s *session.Session) error {
	if !s.Perms.IsAdmin() {
		return bizerror.ErrForbidden
	}
	if !s3.Enabled() {
		return bizerror.ErrFeatureDisabled
	}
	w := worker.Worker{}
	if err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Where("id = ?", workerID).First(&w).Error; err != nil {
		return err
	}
	if contentType == "" {
		contentType = DefaultContentType
	}
	return s3.PutObjectFunc(s.Ctx(), Key(workerID), r, oss.ContentType(contentType))
}

// AvatarCleanupHandle drops the stored avatar of deleted workers.
func AvatarCleanupHandle(r *activity.Record) *activity.HandleResult {
	if r.SourceType != activity.SourceWorker || r.Category != activity.CategoryDeleted || !s3.Enabled() {
		return nil
	}
	if err := s3.DeleteObjectFunc(context.Background(), Key(r.SourceID)); err != nil {
		return &activity.HandleResult{
			Message:           fmt.Sprintf("delete avatar of worker %d, %v", r.SourceID, err),
			HandlerIdentifier: AvatarHandlerName,
		}
	}
	return &activity.HandleResult{Success: true, HandlerIdentifier: AvatarHandlerName}
}
