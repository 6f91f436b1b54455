package api

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MediSynth-io/contactbook/internal/apperr"
	"github.com/MediSynth-io/contactbook/internal/auth"
)

// authenticate resolves the bearer access token to a user and stores it in
// the request context.
func (api *Api) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.BearerToken(r)
		if err != nil {
			api.respondError(w, r, err)
			return
		}

		user, err := api.auth.Authenticate(r.Context(), token)
		if err != nil {
			api.respondError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
	})
}

// validateID rejects requests whose URL param is not a well-formed id.
func validateID(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := uuid.Parse(chi.URLParam(r, param)); err != nil {
				writeJSON(w, http.StatusBadRequest, envelope{
					Status:  http.StatusBadRequest,
					Message: http.StatusText(http.StatusBadRequest),
					Data:    errorData{Message: "Invalid id"},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// currentUserID returns the id stored by authenticate.
func currentUserID(r *http.Request) (string, error) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		return "", apperr.Unauthorized("User not found")
	}
	return user.ID, nil
}

// filesOnly serves regular files and hides directories, so the uploads
// listing is never exposed.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}
