package service

import (
	"bytes"
	"context"
	"errors"
	"image/jpeg"
	"testing"

	"nourish/internal/models"
	"nourish/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaUpload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		w, h         int
		wantRatio    string
		wantW, wantH int
	}{
		{"square", 400, 400, models.AspectSquare, 400, 400},
		{"landscape", 1910, 1000, models.AspectLandscape, 1910, 1000},
		{"portrait", 800, 1000, models.AspectPortrait, 800, 1000},
		{"wide crops to landscape", 3000, 1000, models.AspectLandscape, 1910, 1000},
		{"large is downscaled", 2500, 2500, models.AspectSquare, MasterMaxSize, MasterMaxSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := testutil.NewMemoryStore()
			svc := NewMediaService(store, 20)

			asset, err := svc.Upload(context.Background(), UploadMediaInput{
				UserID:      7,
				Filename:    "photo.png",
				ContentType: "image/png",
				Content:     testutil.TinyPNG(t, tt.w, tt.h),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantRatio, asset.AspectRatio)
			assert.InDelta(t, tt.wantW, asset.Width, 1)
			assert.InDelta(t, tt.wantH, asset.Height, 1)

			keys := store.Keys()
			require.Len(t, keys, 1)
			assert.Equal(t, "/media/"+keys[0], asset.URL)

			data, ok := store.Get(keys[0])
			require.True(t, ok)
			cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, asset.Width, cfg.Width)
			assert.Equal(t, asset.Height, cfg.Height)
		})
	}
}

func TestMediaUpload_Rejects(t *testing.T) {
	t.Parallel()

	png := testutil.TinyPNG(t, 10, 10)
	tests := []struct {
		name string
		in   UploadMediaInput
		code string
	}{
		{"anonymous", UploadMediaInput{Content: png}, models.CodeUnauthorized},
		{"empty", UploadMediaInput{UserID: 1}, models.CodeValidation},
		{"not an image", UploadMediaInput{UserID: 1, Content: []byte("%PDF-1.4 not an image")}, models.CodeValidation},
		{"type mismatch", UploadMediaInput{UserID: 1, ContentType: "image/jpeg", Content: png}, models.CodeValidation},
		{"too large", UploadMediaInput{UserID: 1, Content: bytes.Repeat([]byte{0}, 1024*1024+1)}, models.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewMediaService(testutil.NewMemoryStore(), 1).Upload(context.Background(), tt.in)
			assertCode(t, err, tt.code)
		})
	}
}

func TestMediaUpload_StoreFailure(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemoryStore()
	store.PutErr = errors.New("disk full")
	_, err := NewMediaService(store, 1).Upload(context.Background(), UploadMediaInput{
		UserID: 1, Content: testutil.TinyPNG(t, 10, 10),
	})
	assertCode(t, err, models.CodeInternal)
}

func TestAspectRatioFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, models.AspectSquare, AspectRatioFor(0, 0))
	assert.Equal(t, models.AspectSquare, AspectRatioFor(1100, 1000))
	assert.Equal(t, models.AspectLandscape, AspectRatioFor(1600, 900))
	assert.Equal(t, models.AspectPortrait, AspectRatioFor(1080, 1350))
}
