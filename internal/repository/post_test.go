package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"nourish/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &models.Post{CreatorID: 1, Title: "Overnight oats", Type: models.PostTypeNormal, Date: time.Now()}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"aspect_ratio", "id"}).AddRow("square", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(ctx, post))
	assert.Equal(t, uint(1), post.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ListStreamSplitsAndOrders(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	creator := seedUser(t, db, models.RoleCreator)
	tier := seedTier(t, db, creator.ID, 1)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	freeOld := seedPost(t, db, creator.ID, nil, base)
	freeNew := seedPost(t, db, creator.ID, nil, base.Add(time.Hour))
	// Same instant as freeNew: id breaks the tie.
	freeTie := seedPost(t, db, creator.ID, nil, base.Add(time.Hour))
	gated := seedPost(t, db, creator.ID, uintPtr(tier.ID), base.Add(2*time.Hour))

	free, err := repo.ListStream(ctx, false, 10, 0, 0)
	require.NoError(t, err)
	require.Len(t, free, 3)
	assert.Equal(t, []uint{freeTie.ID, freeNew.ID, freeOld.ID}, []uint{free[0].ID, free[1].ID, free[2].ID})
	require.NotNil(t, free[0].Creator)
	assert.Equal(t, creator.Handle, free[0].Creator.Handle)

	page, err := repo.ListStream(ctx, false, 1, 1, 0)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, freeNew.ID, page[0].ID)

	gatedPage, err := repo.ListStream(ctx, true, 10, 0, 0)
	require.NoError(t, err)
	require.Len(t, gatedPage, 1)
	assert.Equal(t, gated.ID, gatedPage[0].ID)

	none, err := repo.ListStream(ctx, true, 0, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPostRepository_DerivedCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	creator := seedUser(t, db, models.RoleCreator)
	fan := seedUser(t, db, models.RoleConsumer)
	post := seedPost(t, db, creator.ID, nil, time.Now())

	require.NoError(t, repo.Like(ctx, fan.ID, post.ID))
	require.NoError(t, repo.Like(ctx, fan.ID, post.ID))
	require.NoError(t, repo.Like(ctx, creator.ID, post.ID))
	require.NoError(t, comments.Create(ctx, &models.Comment{PostID: post.ID, UserID: fan.ID, Message: "yum", Date: time.Now()}))

	got, err := repo.GetByID(ctx, post.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.LikesCount)
	assert.Equal(t, 1, got.CommentsCount)
	assert.True(t, got.Liked)

	anon, err := repo.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.False(t, anon.Liked)

	liked, err := repo.ListLiked(ctx, fan.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.Equal(t, post.ID, liked[0].ID)

	require.NoError(t, repo.Unlike(ctx, fan.ID, post.ID))
	got, err = repo.GetByID(ctx, post.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount)
	assert.False(t, got.Liked)
}

func TestPostRepository_UpdateKeepsDate(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	creator := seedUser(t, db, models.RoleCreator)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	post := seedPost(t, db, creator.ID, nil, created)

	edit := *post
	edit.Title = "Edited"
	edit.Date = time.Now()
	edit.AllowComments = false
	require.NoError(t, repo.Update(ctx, &edit))

	got, err := repo.GetSummary(ctx, post.ID)
	require.NoError(t, err)
	assert.False(t, got.AllowComments)
	assert.True(t, created.Equal(got.Date.UTC()))

	require.NoError(t, repo.Delete(ctx, post.ID))
	_, err = repo.GetByID(ctx, post.ID, 0)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(repo.Delete(ctx, post.ID)))
}

func TestPostRepository_DeletedCreatorIsUnresolved(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	creator := seedUser(t, db, models.RoleCreator)
	seedPost(t, db, creator.ID, nil, time.Now())
	require.NoError(t, db.Delete(creator).Error)

	posts, err := repo.ListStream(ctx, false, 10, 0, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Nil(t, posts[0].Creator)
}
