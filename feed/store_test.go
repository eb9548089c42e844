package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"goldennile/models"
	"goldennile/upstream"
	"goldennile/utils"
)

type likeCall struct {
	reply chan upstream.LikeResult
	fail  chan error
}

// fakeBackend drives each operation from function fields so tests
// control exactly when and how the network settles.
type fakeBackend struct {
	posts         func(ctx context.Context) ([]models.Post, error)
	createPost    func(ctx context.Context, p models.Post) (models.Post, error)
	updatePost    func(ctx context.Context, p models.Post) (models.Post, error)
	deletePost    func(ctx context.Context, postID string) error
	toggleLike    func(ctx context.Context, postID string) (upstream.LikeResult, error)
	createComment func(ctx context.Context, postID string, c models.Comment) (models.Comment, error)
	updateComment func(ctx context.Context, postID string, c models.Comment) (models.Comment, error)
	deleteComment func(ctx context.Context, postID, commentID string) error
}

func (f *fakeBackend) Posts(ctx context.Context) ([]models.Post, error) {
	return f.posts(ctx)
}
func (f *fakeBackend) CreatePost(ctx context.Context, p models.Post) (models.Post, error) {
	return f.createPost(ctx, p)
}
func (f *fakeBackend) UpdatePost(ctx context.Context, p models.Post) (models.Post, error) {
	return f.updatePost(ctx, p)
}
func (f *fakeBackend) DeletePost(ctx context.Context, postID string) error {
	return f.deletePost(ctx, postID)
}
func (f *fakeBackend) ToggleLike(ctx context.Context, postID string) (upstream.LikeResult, error) {
	return f.toggleLike(ctx, postID)
}
func (f *fakeBackend) CreateComment(ctx context.Context, postID string, c models.Comment) (models.Comment, error) {
	return f.createComment(ctx, postID, c)
}
func (f *fakeBackend) UpdateComment(ctx context.Context, postID string, c models.Comment) (models.Comment, error) {
	return f.updateComment(ctx, postID, c)
}
func (f *fakeBackend) DeleteComment(ctx context.Context, postID, commentID string) error {
	return f.deleteComment(ctx, postID, commentID)
}

func seededStore(fb *fakeBackend) *Store {
	s := NewStore(fb, "u1", "amira")
	s.posts = []models.Post{{
		PostID:   "p1",
		UserID:   "u2",
		Username: "karim",
		Content:  "Sunset felucca ride on the Nile",
		Likes:    3,
		Comments: []models.Comment{
			{CommentID: "c1", PostID: "p1", UserID: "u3", Username: "nour", Content: "Looks amazing"},
		},
	}}
	return s
}

func intptr(n int) *int { return &n }

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for mutation to settle")
		return nil
	}
}

func TestToggleLikeRoundTrip(t *testing.T) {
	fb := &fakeBackend{
		toggleLike: func(ctx context.Context, postID string) (upstream.LikeResult, error) {
			return upstream.LikeResult{Liked: true, Count: intptr(4)}, nil
		},
	}
	s := seededStore(fb)

	done, err := s.ToggleLike(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := wait(t, done); err != nil {
		t.Fatalf("settle error: %v", err)
	}

	p := s.Posts()[0]
	if p.Likes != 4 || !p.Liked {
		t.Fatalf("got likes=%d liked=%v, want 4/true", p.Likes, p.Liked)
	}
}

func TestToggleLikeAppliesBeforeSettle(t *testing.T) {
	release := make(chan struct{})
	fb := &fakeBackend{
		toggleLike: func(ctx context.Context, postID string) (upstream.LikeResult, error) {
			<-release
			return upstream.LikeResult{Liked: true, Count: intptr(4)}, nil
		},
	}
	s := seededStore(fb)

	done, err := s.ToggleLike(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := s.Posts()[0]
	if p.Likes != 4 || !p.Liked {
		t.Fatalf("optimistic state likes=%d liked=%v, want 4/true", p.Likes, p.Liked)
	}

	close(release)
	wait(t, done)
}

func TestToggleLikeRollsBackOnFailure(t *testing.T) {
	fb := &fakeBackend{
		toggleLike: func(ctx context.Context, postID string) (upstream.LikeResult, error) {
			return upstream.LikeResult{}, errors.New("network down")
		},
	}
	s := seededStore(fb)

	done, err := s.ToggleLike(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := wait(t, done); err == nil {
		t.Fatal("expected settle error")
	}

	p := s.Posts()[0]
	if p.Likes != 3 || p.Liked {
		t.Fatalf("got likes=%d liked=%v, want pre-action 3/false", p.Likes, p.Liked)
	}
}

func TestToggleLikeDoubleClickLastResponseWins(t *testing.T) {
	calls := make(chan likeCall, 2)
	fb := &fakeBackend{
		toggleLike: func(ctx context.Context, postID string) (upstream.LikeResult, error) {
			c := likeCall{reply: make(chan upstream.LikeResult, 1)}
			calls <- c
			return <-c.reply, nil
		},
	}
	s := seededStore(fb)

	// first toggle dispatched, network pending
	done1, err := s.ToggleLike(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	call1 := <-calls

	// second toggle before the first resolves: its previous state is the
	// still-optimistic one, so it flips the like back off
	done2, err := s.ToggleLike(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	call2 := <-calls

	// first response lands first (likes=5), second lands after (likes=4)
	call1.reply <- upstream.LikeResult{Liked: true, Count: intptr(5)}
	wait(t, done1)
	call2.reply <- upstream.LikeResult{Liked: false, Count: intptr(4)}
	wait(t, done2)

	p := s.Posts()[0]
	if p.Likes != 4 || p.Liked {
		t.Fatalf("got likes=%d liked=%v, want last-resolved 4/false", p.Likes, p.Liked)
	}
}

func TestCreateCommentSuccess(t *testing.T) {
	fb := &fakeBackend{
		createComment: func(ctx context.Context, postID string, c models.Comment) (models.Comment, error) {
			return models.Comment{CommentID: "srv-9", PostID: postID, UserID: "u1", Username: "amira", Content: c.Content}, nil
		},
	}
	s := seededStore(fb)

	temp, done, err := s.CreateComment(context.Background(), "p1", "Adding this to my trip", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !utils.IsTempID(temp.CommentID) || temp.Username != "You" {
		t.Fatalf("optimistic comment %+v lacks temp id or synthetic author", temp)
	}

	// optimistic entry is visible immediately
	if got := len(s.Posts()[0].Comments); got != 2 {
		t.Fatalf("optimistic comment count %d, want 2", got)
	}

	if err := wait(t, done); err != nil {
		t.Fatalf("settle error: %v", err)
	}

	comments := s.Posts()[0].Comments
	if len(comments) != 2 {
		t.Fatalf("reconciled comment count %d, want 2", len(comments))
	}
	for _, c := range comments {
		if utils.IsTempID(c.CommentID) {
			t.Fatalf("temp-id comment survived reconciliation: %+v", c)
		}
	}
	if comments[1].CommentID != "srv-9" {
		t.Fatalf("server comment missing, got %+v", comments[1])
	}
}

func TestCreateCommentRollback(t *testing.T) {
	fb := &fakeBackend{
		createComment: func(ctx context.Context, postID string, c models.Comment) (models.Comment, error) {
			return models.Comment{}, errors.New("network down")
		},
	}
	s := seededStore(fb)
	before := s.Posts()[0].Comments

	_, done, err := s.CreateComment(context.Background(), "p1", "never lands", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := wait(t, done); err == nil {
		t.Fatal("expected settle error")
	}

	after := s.Posts()[0].Comments
	if len(after) != len(before) {
		t.Fatalf("comment count %d, want %d", len(after), len(before))
	}
	for i, c := range after {
		if c.CommentID != before[i].CommentID {
			t.Fatalf("comment list changed after rollback: %+v", after)
		}
		if utils.IsTempID(c.CommentID) {
			t.Fatalf("residual temp-id entry after rollback: %+v", c)
		}
	}
}

func TestCreateCommentEmptyInputIsNoOp(t *testing.T) {
	s := seededStore(&fakeBackend{})

	_, _, err := s.CreateComment(context.Background(), "p1", "   ", nil)
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("error = %v, want ErrEmptyInput", err)
	}
	if got := len(s.Posts()[0].Comments); got != 1 {
		t.Fatalf("comment count %d changed by no-op", got)
	}
}

func TestUnauthenticatedToggleRedirects(t *testing.T) {
	fb := &fakeBackend{}
	s := NewStore(fb, "", "")
	s.posts = []models.Post{{PostID: "p1"}}

	_, err := s.ToggleLike(context.Background(), "p1")
	if !errors.Is(err, ErrNoUser) {
		t.Fatalf("error = %v, want ErrNoUser", err)
	}
}

func TestDeletePostRollbackRestoresSnapshot(t *testing.T) {
	fb := &fakeBackend{
		deletePost: func(ctx context.Context, postID string) error {
			return errors.New("network down")
		},
	}
	s := seededStore(fb)

	done, err := s.DeletePost(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// removed immediately
	if got := len(s.Posts()); got != 0 {
		t.Fatalf("optimistic post count %d, want 0", got)
	}
	if err := wait(t, done); err == nil {
		t.Fatal("expected settle error")
	}
	if got := len(s.Posts()); got != 1 {
		t.Fatalf("post count after rollback %d, want 1", got)
	}
}

func TestCreatePostReconciliationSwapsTempID(t *testing.T) {
	fb := &fakeBackend{
		createPost: func(ctx context.Context, p models.Post) (models.Post, error) {
			return models.Post{PostID: "srv-p2", UserID: "u1", Username: "amira", Content: p.Content}, nil
		},
	}
	s := seededStore(fb)

	temp, done, err := s.CreatePost(context.Background(), "Guesthouse recs for Luxor?", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !utils.IsTempID(temp.PostID) {
		t.Fatalf("optimistic post id %q is not temporary", temp.PostID)
	}
	if err := wait(t, done); err != nil {
		t.Fatalf("settle error: %v", err)
	}

	posts := s.Posts()
	if len(posts) != 2 {
		t.Fatalf("post count %d, want 2", len(posts))
	}
	if posts[0].PostID != "srv-p2" {
		t.Fatalf("server post not at head: %+v", posts[0])
	}
	for _, p := range posts {
		if utils.IsTempID(p.PostID) {
			t.Fatalf("temp-id post survived reconciliation: %+v", p)
		}
	}
}
