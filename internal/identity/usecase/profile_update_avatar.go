package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shandysiswandi/watercan/internal/identity/entity"
	"github.com/shandysiswandi/watercan/internal/pkg/goerror"
	"github.com/shandysiswandi/watercan/internal/pkg/storage"
)

//nolint:gochecknoglobals // global for fast reuse
var avatarContentTypeExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

const (
	defaultAvatarMaxSize int64 = 2 << 20
	// Every upload gets a fresh key, so an object never changes once written.
	avatarCacheControl = "public, max-age=31536000, immutable"
)

var errAvatarTooLarge = errors.New("avatar exceeds max size")

type ProfileUpdateAvatarInput struct {
	Kind        entity.Kind
	File        io.Reader
	ContentType string
}

func (s *Usecase) ProfileUpdateAvatar(ctx context.Context, in ProfileUpdateAvatarInput) (*entity.Principal, error) {
	ctx, span := s.startSpan(ctx, "ProfileUpdateAvatar")
	defer span.End()

	clm, err := s.authenticated(ctx, in.Kind)
	if err != nil {
		return nil, err
	}

	if in.File == nil {
		return nil, goerror.NewInvalidInput(nil, "avatar", "avatar file is required")
	}

	contentType := strings.ToLower(strings.TrimSpace(in.ContentType))
	ext, ok := avatarContentTypeExt[contentType]
	if !ok {
		return nil, goerror.NewInvalidInput(nil, "avatar", "avatar must be a JPEG, PNG or WebP image")
	}

	current, err := s.repoDB.GetPrincipalByID(ctx, in.Kind, clm.PrincipalID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "principal in session not found", "kind", in.Kind, "principal_id", clm.PrincipalID)
		return nil, errPrincipalNotFound()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get principal by id", "kind", in.Kind, "principal_id", clm.PrincipalID, "error", err)
		return nil, goerror.NewServer(err)
	}

	bucket := strings.TrimSpace(s.cfg.GetString("modules.identity.avatar_bucket"))
	baseURL := strings.TrimRight(strings.TrimSpace(s.cfg.GetString("storage.public_base_url")), "/")
	key := fmt.Sprintf("%s/%d/%s%s", in.Kind, current.ID, s.uuid.Generate(), ext)
	maxSize := s.cfg.GetInt64("modules.identity.avatar_max_size_bytes")
	if maxSize <= 0 {
		maxSize = defaultAvatarMaxSize
	}

	_, err = s.storage.PutObject(ctx, bucket, key, &maxBytesReader{r: in.File, max: maxSize}, storage.PutOptions{
		Size:         -1,
		ContentType:  contentType,
		CacheControl: avatarCacheControl,
		Metadata: map[string]string{
			"principal_id": strconv.FormatInt(current.ID, 10),
			"kind":         in.Kind.String(),
		},
	})
	if err != nil {
		if errors.Is(err, errAvatarTooLarge) {
			return nil, goerror.NewInvalidInput(nil, "avatar", fmt.Sprintf("avatar must not exceed %d bytes", maxSize))
		}
		slog.ErrorContext(ctx, "failed to upload avatar", "kind", in.Kind, "principal_id", current.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	updated, err := s.repoDB.UpdatePrincipalAvatar(ctx, in.Kind, current.ID, baseURL+"/"+key)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update avatar", "kind", in.Kind, "principal_id", current.ID, "error", err)
		s.deleteAvatarObject(ctx, bucket, key)
		return nil, goerror.NewServer(err)
	}

	if oldKey, ok := strings.CutPrefix(current.AvatarURL, baseURL+"/"); ok && current.AvatarURL != "" {
		s.deleteAvatarObject(ctx, bucket, oldKey)
	}

	return updated, nil
}

func (s *Usecase) deleteAvatarObject(ctx context.Context, bucket, key string) {
	if err := s.storage.DeleteObject(context.WithoutCancel(ctx), bucket, key); err != nil {
		slog.WarnContext(ctx, "failed to delete avatar object", "key", key, "error", err)
	}
}

type maxBytesReader struct {
	r     io.Reader
	max   int64
	read  int64
	buf   [1]byte
	ended bool
}

func (m *maxBytesReader) Read(p []byte) (int, error) {
	if m.read >= m.max {
		if m.ended {
			return 0, errAvatarTooLarge
		}

		n, err := m.r.Read(m.buf[:])
		if n > 0 || err == nil {
			m.ended = true
			return 0, errAvatarTooLarge
		}
		return 0, err
	}

	remaining := m.max - m.read
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err := m.r.Read(p)
	m.read += int64(n)
	return n, err
}
