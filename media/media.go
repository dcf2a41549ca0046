// Package media stores user pictures with an external image host.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"wink/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ErrDisabled is returned by uploaders that have no backing service.
var ErrDisabled = errors.New("media: image uploads are not configured")

type Uploader interface {
	// UploadAvatar stores file as the avatar of userID and returns its
	// public HTTPS URL.
	UploadAvatar(ctx context.Context, userID string, file io.Reader) (string, error)
}

// New returns a Cloudinary uploader, or Disabled when no URL is configured.
func New(cfg config.CloudinaryConfig) (Uploader, error) {
	if !cfg.Enabled() {
		return Disabled{}, nil
	}
	cld, err := cloudinary.NewFromURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config: %w", err)
	}
	return &Cloudinary{cld: cld, folder: cfg.Folder}, nil
}

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func (c *Cloudinary) UploadAvatar(ctx context.Context, userID string, file io.Reader) (string, error) {
	res, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         c.folder,
		PublicID:       userID,
		Overwrite:      api.Bool(true),
		Transformation: "c_limit,w_400,h_400,q_auto",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}

type Disabled struct{}

func (Disabled) UploadAvatar(context.Context, string, io.Reader) (string, error) {
	return "", ErrDisabled
}
