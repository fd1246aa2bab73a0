package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadraly/kadraly-backend/internal/models"
	"github.com/kadraly/kadraly-backend/pkg/cache"
)

type fakePhotos struct {
	photos map[uint]*models.Photo
	nextID uint
}

func newFakePhotos() *fakePhotos {
	return &fakePhotos{photos: make(map[uint]*models.Photo), nextID: 1}
}

func (f *fakePhotos) add(eventID uint, approved bool) *models.Photo {
	p := &models.Photo{EventID: eventID, IsApproved: approved}
	_ = f.Create(p)
	return p
}

func (f *fakePhotos) Create(photo *models.Photo) error {
	photo.ID = f.nextID
	f.nextID++
	f.photos[photo.ID] = photo
	return nil
}

func (f *fakePhotos) GetByID(id uint) (*models.Photo, error) {
	if p, ok := f.photos[id]; ok {
		return p, nil
	}
	return nil, errors.New("record not found")
}

func (f *fakePhotos) GetByEventID(eventID uint) ([]models.Photo, error) {
	var out []models.Photo
	for _, p := range f.photos {
		if p.EventID == eventID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePhotos) GetApprovedByEventID(eventID uint) ([]models.Photo, error) {
	var out []models.Photo
	for _, p := range f.photos {
		if p.EventID == eventID && p.IsApproved {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePhotos) GetPendingByEventID(eventID uint) ([]models.Photo, error) {
	var out []models.Photo
	for _, p := range f.photos {
		if p.EventID == eventID && !p.IsApproved {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePhotos) Approve(id uint) error {
	if p, ok := f.photos[id]; ok {
		p.IsApproved = true
		return nil
	}
	return errors.New("record not found")
}

func (f *fakePhotos) Delete(id uint) error {
	delete(f.photos, id)
	return nil
}

func (f *fakePhotos) CountByEventID(eventID uint) (int64, error) {
	var n int64
	for _, p := range f.photos {
		if p.EventID == eventID {
			n++
		}
	}
	return n, nil
}

type fakeEventTable map[uint]*models.Event

func (f fakeEventTable) GetByID(id uint) (*models.Event, error) {
	if e, ok := f[id]; ok {
		return e, nil
	}
	return nil, errors.New("record not found")
}

type fakeUserTable map[uint]*models.User

func (f fakeUserTable) GetByID(id uint) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, errors.New("record not found")
}

type fakeObjectStorage struct {
	objects map[string][]byte
}

func newFakeObjectStorage() *fakeObjectStorage {
	return &fakeObjectStorage{objects: make(map[string][]byte)}
}

func (f *fakeObjectStorage) Upload(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = b
	return nil
}

func (f *fakeObjectStorage) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeObjectStorage) DeletePrefix(_ context.Context, prefix string) error {
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			delete(f.objects, k)
		}
	}
	return nil
}

func (f *fakeObjectStorage) ListKeys(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (f *fakeObjectStorage) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeObjectStorage) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

func newTestPhotoService(photos *fakePhotos, events fakeEventTable, users fakeUserTable, store *fakeObjectStorage) *PhotoService {
	c := cache.New(newFakeStore(), nil)
	return NewPhotoService(photos, events, users, store, c, NewStatsService(photos, c))
}

// LastUploadAt lets fakePhotos double as the stats source.
func (f *fakePhotos) LastUploadAt(uint) (*time.Time, error) { return nil, nil }

func (f *fakePhotos) CountApprovedByEventID(eventID uint) (int64, error) {
	var n int64
	for _, p := range f.photos {
		if p.EventID == eventID && p.IsApproved {
			n++
		}
	}
	return n, nil
}

// makeFileHeader builds a real multipart file header whose Open works, by
// writing and re-reading an in-memory form.
func makeFileHeader(t *testing.T, name, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename="%s"`, name))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["photo"][0]
}

func TestUploadPhotoEnforcesPhotoLimit(t *testing.T) {
	photos := newFakePhotos()
	events := fakeEventTable{1: {ID: 1, UserID: 10, AllowGuestUploads: true}}
	users := fakeUserTable{10: {ID: 10, PhotoLimit: 2}}
	svc := newTestPhotoService(photos, events, users, newFakeObjectStorage())
	ctx := context.Background()

	photos.add(1, true)
	photos.add(1, false)

	file := makeFileHeader(t, "a.jpg", "image/jpeg", []byte("jpeg-bytes"))

	_, err := svc.UploadPhoto(ctx, 1, 10, GuestInfo{}, file)
	assert.EqualError(t, err, "photo limit reached for this event")

	// Guest uploads burn the host's credit too.
	_, err = svc.UploadPhoto(ctx, 1, 0, GuestInfo{Name: "Guest"}, file)
	assert.EqualError(t, err, "photo limit reached for this event")
}

func TestUploadPhotoBelowLimitSucceeds(t *testing.T) {
	photos := newFakePhotos()
	events := fakeEventTable{1: {ID: 1, UserID: 10, RequireApproval: true, AllowGuestUploads: true}}
	users := fakeUserTable{10: {ID: 10, PhotoLimit: 20}}
	store := newFakeObjectStorage()
	svc := newTestPhotoService(photos, events, users, store)
	ctx := context.Background()

	file := makeFileHeader(t, "a.jpg", "image/jpeg", []byte("jpeg-bytes"))

	photo, err := svc.UploadPhoto(ctx, 1, 0, GuestInfo{Name: "Guest"}, file)
	require.NoError(t, err)
	assert.False(t, photo.IsApproved, "guest upload on a moderated event stays pending")

	key, ok := photo.ObjectKey()
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(key, "events/1/"))
	_, stored := store.objects[key]
	assert.True(t, stored, "upload must land in object storage")

	// Owner uploads bypass moderation.
	owned, err := svc.UploadPhoto(ctx, 1, 10, GuestInfo{}, file)
	require.NoError(t, err)
	assert.True(t, owned.IsApproved)
}

func TestUploadPhotoRejectsGuestWhenDisallowed(t *testing.T) {
	photos := newFakePhotos()
	events := fakeEventTable{1: {ID: 1, UserID: 10, AllowGuestUploads: false}}
	users := fakeUserTable{10: {ID: 10, PhotoLimit: 20}}
	svc := newTestPhotoService(photos, events, users, newFakeObjectStorage())

	file := makeFileHeader(t, "a.jpg", "image/jpeg", []byte("jpeg-bytes"))
	_, err := svc.UploadPhoto(context.Background(), 1, 0, GuestInfo{Name: "Guest"}, file)
	assert.EqualError(t, err, "guest uploads are not allowed for this event")
}

func TestSignedThumbnailURLFallsBackToOriginal(t *testing.T) {
	photos := newFakePhotos()
	store := newFakeObjectStorage()
	svc := newTestPhotoService(photos, fakeEventTable{}, fakeUserTable{}, store)
	ctx := context.Background()

	store.objects["events/1/a.jpg"] = []byte("original")
	noThumb := &models.Photo{ID: 1, EventID: 1, FilePath: models.StorageKeyPrefix + "events/1/a.jpg"}

	url, err := svc.SignedThumbnailURL(ctx, noThumb)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/events/1/a.jpg", url,
		"missing thumbnail must fall back to the original")

	store.objects["events/1/b.jpg"] = []byte("original")
	store.objects["thumbs/events/1/b.jpg"] = []byte("thumb")
	withThumb := &models.Photo{ID: 2, EventID: 1, FilePath: models.StorageKeyPrefix + "events/1/b.jpg"}

	url, err = svc.SignedThumbnailURL(ctx, withThumb)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/thumbs/events/1/b.jpg", url)
}
