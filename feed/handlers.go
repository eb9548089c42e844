package feed

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"goldennile/upstream"
	"goldennile/utils"

	"github.com/julienschmidt/httprouter"
)

// Sessions resolves the calling user's feed store. Implemented by the
// session manager.
type Sessions interface {
	FeedStore(r *http.Request) (*Store, error)
	Invalidate(token string)
}

const maxUploadSize = 10 << 20

// GetPosts refreshes the feed from the backend and returns it.
func GetPosts(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		store, err := sessions.FeedStore(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if err := store.Load(r.Context()); err != nil {
			if errors.Is(err, upstream.ErrUnauthorized) {
				sessions.Invalidate(r.Header.Get("Authorization"))
				utils.RespondWithError(w, http.StatusUnauthorized, "Session expired")
				return
			}
			log.Printf("feed load error: %v", err)
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"posts": store.Posts()})
	}
}

// CreatePost applies the optimistic insert and answers with the temp
// post. Attachments arrive as multipart images and become preview URLs.
func CreatePost(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		store, err := sessions.FeedStore(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid form")
			return
		}

		images, err := saveAttachments(r, "images")
		if err != nil {
			log.Printf("attachment error: %v", err)
			utils.RespondWithError(w, http.StatusBadRequest, "Attachment processing failed")
			return
		}

		temp, done, err := store.CreatePost(context.Background(), r.FormValue("content"), images)
		if errors.Is(err, ErrEmptyInput) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		go settle(sessions, r.Header.Get("Authorization"), done)

		utils.RespondWithJSON(w, http.StatusAccepted, temp)
	}
}

// UpdatePost rewrites a post's content optimistically.
func UpdatePost(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		store, err := sessions.FeedStore(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var input struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}

		done, err := store.UpdatePost(context.Background(), ps.ByName("postid"), input.Content)
		if err := respondMutationStart(w, err); err != nil {
			return
		}
		go settle(sessions, r.Header.Get("Authorization"), done)
		w.WriteHeader(http.StatusAccepted)
	}
}

// DeletePost removes a post optimistically.
func DeletePost(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		store, err := sessions.FeedStore(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		done, err := store.DeletePost(context.Background(), ps.ByName("postid"))
		if err := respondMutationStart(w, err); err != nil {
			return
		}
		go settle(sessions, r.Header.Get("Authorization"), done)
		w.WriteHeader(http.StatusAccepted)
	}
}

// LikePost flips the caller's like optimistically; the settled count
// arrives with the next feed read.
func LikePost(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		store, err := sessions.FeedStore(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		done, err := store.ToggleLike(context.Background(), ps.ByName("postid"))
		if errors.Is(err, ErrNoUser) {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if err := respondMutationStart(w, err); err != nil {
			return
		}
		go settle(sessions, r.Header.Get("Authorization"), done)
		w.WriteHeader(http.StatusAccepted)
	}
}

// CreateComment applies the optimistic insert and answers with the temp
// comment.
func CreateComment(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		store, err := sessions.FeedStore(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid form")
			return
		}

		images, err := saveAttachments(r, "images")
		if err != nil {
			log.Printf("attachment error: %v", err)
			utils.RespondWithError(w, http.StatusBadRequest, "Attachment processing failed")
			return
		}

		temp, done, err := store.CreateComment(context.Background(), ps.ByName("postid"), r.FormValue("content"), images)
		if errors.Is(err, ErrEmptyInput) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err := respondMutationStart(w, err); err != nil {
			return
		}
		go settle(sessions, r.Header.Get("Authorization"), done)

		utils.RespondWithJSON(w, http.StatusAccepted, temp)
	}
}

// UpdateComment rewrites a comment's content optimistically.
func UpdateComment(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		store, err := sessions.FeedStore(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var input struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}

		done, err := store.UpdateComment(context.Background(), ps.ByName("postid"), ps.ByName("commentid"), input.Content)
		if err := respondMutationStart(w, err); err != nil {
			return
		}
		go settle(sessions, r.Header.Get("Authorization"), done)
		w.WriteHeader(http.StatusAccepted)
	}
}

// DeleteComment removes a comment optimistically.
func DeleteComment(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		store, err := sessions.FeedStore(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		done, err := store.DeleteComment(context.Background(), ps.ByName("postid"), ps.ByName("commentid"))
		if err := respondMutationStart(w, err); err != nil {
			return
		}
		go settle(sessions, r.Header.Get("Authorization"), done)
		w.WriteHeader(http.StatusAccepted)
	}
}

// respondMutationStart maps optimistic-dispatch errors onto responses
// and passes the error back so callers can bail out.
func respondMutationStart(w http.ResponseWriter, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrEmptyInput):
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Not found")
	default:
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	}
	return err
}

// settle waits out a dispatched mutation; auth expiry tears the session
// down so the next request redirects to login. The bearer token is
// captured by the caller so the request itself is not held past the
// handler's return.
func settle(sessions Sessions, token string, done <-chan error) {
	if err := <-done; err != nil {
		if errors.Is(err, upstream.ErrUnauthorized) {
			sessions.Invalidate(token)
			return
		}
		log.Printf("feed mutation failed: %v", err)
	}
}
