package service_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/libris-api/internal/models"
	"github.com/noah-isme/libris-api/internal/repository"
	"github.com/noah-isme/libris-api/internal/service"
)

func newUserService(t *testing.T) (service.UserService, *gorm.DB, *miniredis.Miniredis, *recorderStub) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	recorder := &recorderStub{}
	svc := service.NewUserService(repository.NewUserRepository(db), client, time.Minute, recorder, zerolog.New(io.Discard))
	return svc, db, mr, recorder
}

func seedUser(t *testing.T, db *gorm.DB, user models.User) uint {
	t.Helper()
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func TestViewProfileAnonymousGetsPublicProjection(t *testing.T) {
	svc, db, _, _ := newUserService(t)
	id := seedUser(t, db, sampleUser())

	result := svc.ViewProfile(context.Background(), nil, id)
	require.True(t, result.Success)

	view, ok := result.Data.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "ada", view["username"])
	require.NotContains(t, view, "emails")
	require.NotContains(t, view, "id")
}

func TestViewProfileCachesPublicView(t *testing.T) {
	svc, db, mr, _ := newUserService(t)
	id := seedUser(t, db, sampleUser())

	result := svc.ViewProfile(context.Background(), nil, id)
	require.True(t, result.Success)
	require.True(t, mr.Exists("libris:profile:public:7"))

	// Change the record behind the cache: the anonymous view keeps serving
	// the cached projection until the TTL or an invalidation.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", id).Update("bio", "changed").Error)

	cached := svc.ViewProfile(context.Background(), nil, id)
	view, ok := cached.Data.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "mathematician", view["bio"])
}

func TestViewProfilePrivateIsForbidden(t *testing.T) {
	svc, db, _, _ := newUserService(t)
	user := sampleUser()
	user.ProfileVisibility = models.VisibilityPrivate
	id := seedUser(t, db, user)

	result := svc.ViewProfile(context.Background(), nil, id)
	require.False(t, result.Success)
	require.Equal(t, 403, result.Status)

	stranger := service.Actor{ID: 2, Role: "user", Authenticated: true}
	result = svc.ViewProfile(context.Background(), &stranger, id)
	require.Equal(t, 403, result.Status)

	owner := service.Actor{ID: 7, Role: "user", Authenticated: true}
	result = svc.ViewProfile(context.Background(), &owner, id)
	require.True(t, result.Success)
}

func TestViewProfileUnknownUser(t *testing.T) {
	svc, _, _, _ := newUserService(t)

	result := svc.ViewProfile(context.Background(), nil, 1234)
	require.False(t, result.Success)
	require.Equal(t, 404, result.Status)
}

func TestViewProfileAdminFetchIsAudited(t *testing.T) {
	svc, db, _, recorder := newUserService(t)
	id := seedUser(t, db, sampleUser())

	admin := service.Actor{ID: 99, Username: "root", Role: "admin", Authenticated: true}
	result := svc.ViewProfile(context.Background(), &admin, id)
	require.True(t, result.Success)

	view, ok := result.Data.(map[string]interface{})
	require.True(t, ok)
	require.Contains(t, view, "emails")
	require.Contains(t, view, "id")

	require.Len(t, recorder.entries, 1)
	require.Equal(t, models.ActionFetch, recorder.entries[0].Action)
	require.Equal(t, []uint{id}, recorder.entries[0].AffectedIDs)
}

func TestViewOwnProfileRequiresAuth(t *testing.T) {
	svc, db, _, _ := newUserService(t)
	seedUser(t, db, sampleUser())

	result := svc.ViewOwnProfile(context.Background(), service.Actor{})
	require.False(t, result.Success)
	require.Equal(t, 403, result.Status)

	result = svc.ViewOwnProfile(context.Background(), service.Actor{ID: 7, Role: "user", Authenticated: true})
	require.True(t, result.Success)

	view, ok := result.Data.(map[string]interface{})
	require.True(t, ok)
	require.Contains(t, view, "emails")
}

func TestUpdateVisibilityValidatesAndInvalidates(t *testing.T) {
	svc, db, mr, recorder := newUserService(t)
	id := seedUser(t, db, sampleUser())

	// warm the cache
	require.True(t, svc.ViewProfile(context.Background(), nil, id).Success)
	require.True(t, mr.Exists("libris:profile:public:7"))

	actor := service.Actor{ID: 7, Username: "ada", Role: "user", Authenticated: true}

	bad := svc.UpdateVisibility(context.Background(), actor, "invisible")
	require.False(t, bad.Success)
	require.Equal(t, 400, bad.Status)

	result := svc.UpdateVisibility(context.Background(), actor, models.VisibilityPrivate)
	require.True(t, result.Success)
	require.False(t, mr.Exists("libris:profile:public:7"))

	var stored models.User
	require.NoError(t, db.First(&stored, id).Error)
	require.Equal(t, models.VisibilityPrivate, stored.ProfileVisibility)

	require.Len(t, recorder.entries, 1)
	require.Equal(t, models.ActionUpdate, recorder.entries[0].Action)
}
