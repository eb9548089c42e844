// Package feed owns the community feed collection for one session:
// posts with their comments and engagement state. Every mutation is
// optimistic — applied synchronously, then reconciled with the backend
// response or rolled back to the snapshot captured at dispatch time.
package feed

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"goldennile/models"
	"goldennile/optimistic"
	"goldennile/upstream"
	"goldennile/utils"
)

var (
	// ErrEmptyInput marks a silent no-op precondition, not a failure.
	ErrEmptyInput = errors.New("feed: empty input")
	// ErrNoUser means the caller must be sent to the auth flow first.
	ErrNoUser   = errors.New("feed: authentication required")
	ErrNotFound = errors.New("feed: post not found")
)

// Backend is the slice of the upstream API the feed needs.
type Backend interface {
	Posts(ctx context.Context) ([]models.Post, error)
	CreatePost(ctx context.Context, p models.Post) (models.Post, error)
	UpdatePost(ctx context.Context, p models.Post) (models.Post, error)
	DeletePost(ctx context.Context, postID string) error
	ToggleLike(ctx context.Context, postID string) (upstream.LikeResult, error)
	CreateComment(ctx context.Context, postID string, c models.Comment) (models.Comment, error)
	UpdateComment(ctx context.Context, postID string, c models.Comment) (models.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID string) error
}

// Store is the in-memory post collection. All access goes through its
// lock; each synchronous mutation step runs to completion before the
// next one starts, but overlapping mutations on the same entity are not
// serialized across their network round trips.
type Store struct {
	mu       sync.Mutex
	backend  Backend
	userID   string
	username string
	posts    []models.Post
}

func NewStore(backend Backend, userID, username string) *Store {
	return &Store{backend: backend, userID: userID, username: username}
}

// Load replaces the collection with the backend's authoritative list.
func (s *Store) Load(ctx context.Context) error {
	posts, err := s.backend.Posts(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.posts = posts
	s.mu.Unlock()
	return nil
}

// Posts returns a snapshot of the current collection, optimistic
// entries included.
func (s *Store) Posts() []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Post, len(s.posts))
	copy(out, s.posts)
	for i := range out {
		cs := make([]models.Comment, len(out[i].Comments))
		copy(cs, out[i].Comments)
		out[i].Comments = cs
	}
	return out
}

// find returns a pointer into the live slice; callers must hold the lock.
func (s *Store) find(postID string) *models.Post {
	for i := range s.posts {
		if s.posts[i].PostID == postID {
			return &s.posts[i]
		}
	}
	return nil
}

func (s *Store) exists(postID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(postID) != nil
}

// ToggleLike flips the current user's like flag and adjusts the counter
// by one, both computed from whatever is in the store at dispatch time.
// Reconciliation overwrites flag and counter with the server's answer;
// a failed call restores the captured pre-action values.
func (s *Store) ToggleLike(ctx context.Context, postID string) (<-chan error, error) {
	if s.userID == "" {
		return nil, ErrNoUser
	}
	if !s.exists(postID) {
		return nil, ErrNotFound
	}

	var prevLikes int
	var prevLiked bool

	done := optimistic.Go(ctx, optimistic.Mutation[upstream.LikeResult]{
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			p := s.find(postID)
			if p == nil {
				return
			}
			prevLikes, prevLiked = p.Likes, p.Liked
			if prevLiked {
				p.Likes = prevLikes - 1
			} else {
				p.Likes = prevLikes + 1
			}
			p.Liked = !prevLiked
		},
		Send: func(ctx context.Context) (upstream.LikeResult, error) {
			return s.backend.ToggleLike(ctx, postID)
		},
		Reconcile: func(res upstream.LikeResult) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if p := s.find(postID); p != nil {
				p.Likes = res.ResolveCount(p.Likes)
				p.Liked = res.Liked
			}
		},
		Rollback: func(error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if p := s.find(postID); p != nil {
				p.Likes = prevLikes
				p.Liked = prevLiked
			}
		},
	})
	return done, nil
}

// CreateComment inserts a synthetic comment immediately — authored
// "You", timestamped now, carrying locally generated preview URLs for
// any attachments. Reconciliation swaps every temp-id entry for the
// server's comment; rollback restores the pre-action list.
func (s *Store) CreateComment(ctx context.Context, postID, content string, images []string) (models.Comment, <-chan error, error) {
	if s.userID == "" {
		return models.Comment{}, nil, ErrNoUser
	}
	if strings.TrimSpace(content) == "" && len(images) == 0 {
		return models.Comment{}, nil, ErrEmptyInput
	}
	if !s.exists(postID) {
		return models.Comment{}, nil, ErrNotFound
	}

	temp := models.Comment{
		CommentID: utils.TempID(),
		PostID:    postID,
		UserID:    s.userID,
		Username:  "You",
		Content:   content,
		Images:    images,
		CreatedAt: time.Now(),
	}

	var snapshot []models.Comment

	done := optimistic.Go(ctx, optimistic.Mutation[models.Comment]{
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			p := s.find(postID)
			if p == nil {
				return
			}
			snapshot = make([]models.Comment, len(p.Comments))
			copy(snapshot, p.Comments)
			p.Comments = append(append([]models.Comment{}, snapshot...), temp)
		},
		Send: func(ctx context.Context) (models.Comment, error) {
			return s.backend.CreateComment(ctx, postID, models.Comment{
				PostID:  postID,
				Content: content,
				Images:  images,
			})
		},
		Reconcile: func(created models.Comment) {
			s.mu.Lock()
			defer s.mu.Unlock()
			p := s.find(postID)
			if p == nil {
				return
			}
			kept := p.Comments[:0:0]
			for _, c := range p.Comments {
				if !utils.IsTempID(c.CommentID) {
					kept = append(kept, c)
				}
			}
			p.Comments = append(kept, created)
		},
		Rollback: func(error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if p := s.find(postID); p != nil {
				p.Comments = snapshot
			}
		},
	})
	return temp, done, nil
}

// UpdateComment edits a comment's text in place, then reconciles with
// the server copy.
func (s *Store) UpdateComment(ctx context.Context, postID, commentID, content string) (<-chan error, error) {
	if s.userID == "" {
		return nil, ErrNoUser
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyInput
	}
	if !s.exists(postID) {
		return nil, ErrNotFound
	}

	var snapshot models.Comment

	done := optimistic.Go(ctx, optimistic.Mutation[models.Comment]{
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			p := s.find(postID)
			if p == nil {
				return
			}
			for i := range p.Comments {
				if p.Comments[i].CommentID == commentID {
					snapshot = p.Comments[i]
					p.Comments[i].Content = content
					p.Comments[i].UpdatedAt = time.Now()
					return
				}
			}
		},
		Send: func(ctx context.Context) (models.Comment, error) {
			return s.backend.UpdateComment(ctx, postID, models.Comment{CommentID: commentID, PostID: postID, Content: content})
		},
		Reconcile: func(updated models.Comment) {
			s.mu.Lock()
			defer s.mu.Unlock()
			p := s.find(postID)
			if p == nil {
				return
			}
			for i := range p.Comments {
				if p.Comments[i].CommentID == commentID {
					p.Comments[i] = updated
					return
				}
			}
		},
		Rollback: func(error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			p := s.find(postID)
			if p == nil {
				return
			}
			for i := range p.Comments {
				if p.Comments[i].CommentID == commentID {
					p.Comments[i] = snapshot
					return
				}
			}
		},
	})
	return done, nil
}

// DeleteComment removes immediately and restores the snapshot when the
// backend refuses. Snapshot-restore is the one rollback strategy used
// everywhere, deletes included.
func (s *Store) DeleteComment(ctx context.Context, postID, commentID string) (<-chan error, error) {
	if s.userID == "" {
		return nil, ErrNoUser
	}
	if !s.exists(postID) {
		return nil, ErrNotFound
	}

	var snapshot []models.Comment

	done := optimistic.Go(ctx, optimistic.Mutation[struct{}]{
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			p := s.find(postID)
			if p == nil {
				return
			}
			snapshot = make([]models.Comment, len(p.Comments))
			copy(snapshot, p.Comments)
			kept := p.Comments[:0:0]
			for _, c := range p.Comments {
				if c.CommentID != commentID {
					kept = append(kept, c)
				}
			}
			p.Comments = kept
		},
		Send: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.backend.DeleteComment(ctx, postID, commentID)
		},
		Rollback: func(error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if p := s.find(postID); p != nil {
				p.Comments = snapshot
			}
		},
	})
	return done, nil
}

// CreatePost prepends a synthetic post, newest first.
func (s *Store) CreatePost(ctx context.Context, content string, images []string) (models.Post, <-chan error, error) {
	if s.userID == "" {
		return models.Post{}, nil, ErrNoUser
	}
	if strings.TrimSpace(content) == "" && len(images) == 0 {
		return models.Post{}, nil, ErrEmptyInput
	}

	temp := models.Post{
		PostID:    utils.TempID(),
		UserID:    s.userID,
		Username:  s.username,
		Content:   content,
		Images:    images,
		Comments:  []models.Comment{},
		CreatedAt: time.Now(),
	}

	var snapshot []models.Post

	done := optimistic.Go(ctx, optimistic.Mutation[models.Post]{
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			snapshot = make([]models.Post, len(s.posts))
			copy(snapshot, s.posts)
			s.posts = append([]models.Post{temp}, snapshot...)
		},
		Send: func(ctx context.Context) (models.Post, error) {
			return s.backend.CreatePost(ctx, models.Post{Content: content, Images: images})
		},
		Reconcile: func(created models.Post) {
			s.mu.Lock()
			defer s.mu.Unlock()
			kept := s.posts[:0:0]
			for _, p := range s.posts {
				if !utils.IsTempID(p.PostID) {
					kept = append(kept, p)
				}
			}
			if created.Comments == nil {
				created.Comments = []models.Comment{}
			}
			s.posts = append([]models.Post{created}, kept...)
		},
		Rollback: func(error) {
			s.mu.Lock()
			s.posts = snapshot
			s.mu.Unlock()
		},
	})
	return temp, done, nil
}

// UpdatePost edits a post's content in place.
func (s *Store) UpdatePost(ctx context.Context, postID, content string) (<-chan error, error) {
	if s.userID == "" {
		return nil, ErrNoUser
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyInput
	}
	if !s.exists(postID) {
		return nil, ErrNotFound
	}

	var snapshot models.Post

	done := optimistic.Go(ctx, optimistic.Mutation[models.Post]{
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if p := s.find(postID); p != nil {
				snapshot = *p
				p.Content = content
				p.UpdatedAt = time.Now()
			}
		},
		Send: func(ctx context.Context) (models.Post, error) {
			return s.backend.UpdatePost(ctx, models.Post{PostID: postID, Content: content})
		},
		Reconcile: func(updated models.Post) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if p := s.find(postID); p != nil {
				// keep locally-materialized comments if the server omits them
				if updated.Comments == nil {
					updated.Comments = p.Comments
				}
				*p = updated
			}
		},
		Rollback: func(error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if p := s.find(postID); p != nil {
				*p = snapshot
			}
		},
	})
	return done, nil
}

// DeletePost removes immediately; rollback restores the snapshot.
func (s *Store) DeletePost(ctx context.Context, postID string) (<-chan error, error) {
	if s.userID == "" {
		return nil, ErrNoUser
	}
	if !s.exists(postID) {
		return nil, ErrNotFound
	}

	var snapshot []models.Post

	done := optimistic.Go(ctx, optimistic.Mutation[struct{}]{
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			snapshot = make([]models.Post, len(s.posts))
			copy(snapshot, s.posts)
			kept := s.posts[:0:0]
			for _, p := range s.posts {
				if p.PostID != postID {
					kept = append(kept, p)
				}
			}
			s.posts = kept
		},
		Send: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.backend.DeletePost(ctx, postID)
		},
		Rollback: func(error) {
			s.mu.Lock()
			s.posts = snapshot
			s.mu.Unlock()
		},
	})
	return done, nil
}
