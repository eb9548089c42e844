// Package chats owns the per-session message collections. Sends, edits
// and deletes are optimistic; each open conversation is re-fetched from
// the backend on a fixed interval, so a poll that lands between an
// optimistic send and its reconciliation can transiently show the temp
// entry next to the server copy. That window is accepted behavior.
package chats

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"goldennile/models"
	"goldennile/optimistic"
	"goldennile/utils"
)

// PollInterval is how often an open conversation is re-fetched.
const PollInterval = 5 * time.Second

var ErrEmptyInput = errors.New("chats: empty message")

type Backend interface {
	Chats(ctx context.Context) ([]models.Chat, error)
	Messages(ctx context.Context, chatID string) ([]models.Message, error)
	SendMessage(ctx context.Context, chatID, text string) (models.Message, error)
	EditMessage(ctx context.Context, chatID, msgID, text string) (models.Message, error)
	DeleteMessage(ctx context.Context, chatID, msgID string) error
}

type Store struct {
	mu        sync.Mutex
	backend   Backend
	userID    string
	msgs      map[string][]models.Message
	drafts    map[string]string
	pollers   map[string]context.CancelFunc
	pollEvery time.Duration
	notify    func(chatID string)
}

func NewStore(backend Backend, userID string) *Store {
	return &Store{
		backend:   backend,
		userID:    userID,
		msgs:      make(map[string][]models.Message),
		drafts:    make(map[string]string),
		pollers:   make(map[string]context.CancelFunc),
		pollEvery: PollInterval,
	}
}

// SetNotify installs the hook invoked after any collection change, used
// to push the updated conversation to connected UI clients.
func (s *Store) SetNotify(fn func(chatID string)) {
	s.mu.Lock()
	s.notify = fn
	s.mu.Unlock()
}

func (s *Store) notifyChange(chatID string) {
	s.mu.Lock()
	fn := s.notify
	s.mu.Unlock()
	if fn != nil {
		fn(chatID)
	}
}

// Conversations lists the user's chats straight from the backend; the
// list view has no optimistic state of its own.
func (s *Store) Conversations(ctx context.Context) ([]models.Chat, error) {
	return s.backend.Chats(ctx)
}

// Messages returns a snapshot of the conversation, pending optimistic
// sends included.
func (s *Store) Messages(chatID string) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.msgs[chatID]))
	copy(out, s.msgs[chatID])
	return out
}

// FailedDraft returns and clears the text of the last send that rolled
// back, so the compose box can be repopulated.
func (s *Store) FailedDraft(chatID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft := s.drafts[chatID]
	delete(s.drafts, chatID)
	return draft
}

// Refresh fetches the authoritative message list and merges it in: the
// server list replaces every settled entry, pending temp-id sends stay
// appended at the tail.
func (s *Store) Refresh(ctx context.Context, chatID string) error {
	serverMsgs, err := s.backend.Messages(ctx, chatID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	var pending []models.Message
	for _, m := range s.msgs[chatID] {
		if utils.IsTempID(m.MsgID) {
			pending = append(pending, m)
		}
	}
	sort.SliceStable(serverMsgs, func(i, j int) bool {
		return serverMsgs[i].CreatedAt.Before(serverMsgs[j].CreatedAt)
	})
	s.msgs[chatID] = append(serverMsgs, pending...)
	s.mu.Unlock()

	s.notifyChange(chatID)
	return nil
}

// Send appends a synthetic message immediately. Reconciliation swaps
// every temp entry for the server message; on failure the temp entries
// are dropped and the text is parked for compose-box restore.
func (s *Store) Send(ctx context.Context, chatID, text string) (models.Message, <-chan error, error) {
	if strings.TrimSpace(text) == "" {
		return models.Message{}, nil, ErrEmptyInput
	}

	temp := models.Message{
		MsgID:     utils.TempID(),
		ChatID:    chatID,
		UserID:    s.userID,
		Text:      text,
		CreatedAt: time.Now(),
	}

	var snapshot []models.Message

	done := optimistic.Go(ctx, optimistic.Mutation[models.Message]{
		Apply: func() {
			s.mu.Lock()
			snapshot = make([]models.Message, len(s.msgs[chatID]))
			copy(snapshot, s.msgs[chatID])
			s.msgs[chatID] = append(append([]models.Message{}, snapshot...), temp)
			s.mu.Unlock()
			s.notifyChange(chatID)
		},
		Send: func(ctx context.Context) (models.Message, error) {
			return s.backend.SendMessage(ctx, chatID, text)
		},
		Reconcile: func(sent models.Message) {
			s.mu.Lock()
			kept := s.msgs[chatID][:0:0]
			for _, m := range s.msgs[chatID] {
				if !utils.IsTempID(m.MsgID) && m.MsgID != sent.MsgID {
					kept = append(kept, m)
				}
			}
			s.msgs[chatID] = append(kept, sent)
			s.mu.Unlock()
			s.notifyChange(chatID)
		},
		Rollback: func(error) {
			s.mu.Lock()
			s.msgs[chatID] = snapshot
			s.drafts[chatID] = text
			s.mu.Unlock()
			s.notifyChange(chatID)
		},
	})
	return temp, done, nil
}

// Edit rewrites a message's text in place.
func (s *Store) Edit(ctx context.Context, chatID, msgID, text string) (<-chan error, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	var snapshot models.Message

	done := optimistic.Go(ctx, optimistic.Mutation[models.Message]{
		Apply: func() {
			s.mu.Lock()
			for i := range s.msgs[chatID] {
				if s.msgs[chatID][i].MsgID == msgID {
					snapshot = s.msgs[chatID][i]
					s.msgs[chatID][i].Text = text
					s.msgs[chatID][i].EditedAt = time.Now()
					break
				}
			}
			s.mu.Unlock()
			s.notifyChange(chatID)
		},
		Send: func(ctx context.Context) (models.Message, error) {
			return s.backend.EditMessage(ctx, chatID, msgID, text)
		},
		Reconcile: func(edited models.Message) {
			s.mu.Lock()
			for i := range s.msgs[chatID] {
				if s.msgs[chatID][i].MsgID == msgID {
					s.msgs[chatID][i] = edited
					break
				}
			}
			s.mu.Unlock()
			s.notifyChange(chatID)
		},
		Rollback: func(error) {
			s.mu.Lock()
			for i := range s.msgs[chatID] {
				if s.msgs[chatID][i].MsgID == msgID {
					s.msgs[chatID][i] = snapshot
					break
				}
			}
			s.mu.Unlock()
			s.notifyChange(chatID)
		},
	})
	return done, nil
}

// Delete removes a message immediately; rollback restores the snapshot.
func (s *Store) Delete(ctx context.Context, chatID, msgID string) (<-chan error, error) {
	var snapshot []models.Message

	done := optimistic.Go(ctx, optimistic.Mutation[struct{}]{
		Apply: func() {
			s.mu.Lock()
			snapshot = make([]models.Message, len(s.msgs[chatID]))
			copy(snapshot, s.msgs[chatID])
			kept := s.msgs[chatID][:0:0]
			for _, m := range s.msgs[chatID] {
				if m.MsgID != msgID {
					kept = append(kept, m)
				}
			}
			s.msgs[chatID] = kept
			s.mu.Unlock()
			s.notifyChange(chatID)
		},
		Send: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.backend.DeleteMessage(ctx, chatID, msgID)
		},
		Rollback: func(error) {
			s.mu.Lock()
			s.msgs[chatID] = snapshot
			s.mu.Unlock()
			s.notifyChange(chatID)
		},
	})
	return done, nil
}

// OpenView starts polling a conversation. Opening an already-open view
// is a no-op.
func (s *Store) OpenView(chatID string) {
	s.mu.Lock()
	if _, running := s.pollers[chatID]; running {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.pollers[chatID] = cancel
	every := s.pollEvery
	s.mu.Unlock()

	go func() {
		_ = s.Refresh(ctx, chatID)
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = s.Refresh(ctx, chatID)
			}
		}
	}()
}

// CloseView stops the poller for a conversation. Mutations already in
// flight still settle against the store when their responses arrive.
func (s *Store) CloseView(chatID string) {
	s.mu.Lock()
	cancel, ok := s.pollers[chatID]
	delete(s.pollers, chatID)
	s.mu.Unlock()
	if ok {
		cancel()
	}
}

// CloseAll stops every poller; used at session teardown.
func (s *Store) CloseAll() {
	s.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(s.pollers))
	for id, cancel := range s.pollers {
		cancels = append(cancels, cancel)
		delete(s.pollers, id)
	}
	s.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}
