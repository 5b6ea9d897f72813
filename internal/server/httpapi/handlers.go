package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/s2yeji/practice-blog/internal/common"
	"github.com/s2yeji/practice-blog/internal/server/models"
)

// maxUploadBytes caps the multipart form size on /write and /edit.
const maxUploadBytes = 10 << 20

// writeError maps the sentinel error taxonomy onto HTTP statuses. Anything
// unexpected is logged and answered as a 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, common.ErrorAlreadyExists):
		http.Error(w, "already exists", http.StatusConflict)
	case errors.Is(err, common.ErrorUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, common.ErrorForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// viewer returns the data-bag entry describing who is looking at the page.
func viewer(r *http.Request) map[string]any {
	user := userFromContext(r.Context())
	if user == nil {
		return map[string]any{"authenticated": false}
	}
	return map[string]any{"authenticated": true, "user_id": user.Login, "user_name": user.UserName}
}

// --- feed ---

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	posts, err := s.posts.List(r.Context(), postsPerPage, (page-1)*postsPerPage)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	total, err := s.posts.Count(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "home", map[string]any{
		"viewer":      viewer(r),
		"posts":       posts,
		"page":        page,
		"total_posts": total,
	})
}

// handleGetPosts answers a JSON page of posts for the infinite-scroll feed.
func (s *Server) handleGetPosts(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	posts, err := s.posts.List(r.Context(), postsPerPage, (page-1)*postsPerPage)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	total, err := s.posts.Count(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts, "page": page, "total_posts": total})
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "bad post id", http.StatusBadRequest)
		return
	}

	post, err := s.posts.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	comments, err := s.engagement.ListComments(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	likes, err := s.engagement.GetLikes(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	liked := false
	if user := userFromContext(r.Context()); user != nil {
		liked = likes.Liked(user.Login)
	}

	s.render(w, r, http.StatusOK, "detail", map[string]any{
		"viewer":      viewer(r),
		"post":        post,
		"comments":    comments,
		"total_likes": likes.TotalLikes,
		"liked":       liked,
	})
}

// --- accounts ---

func (s *Server) handleSignupForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "signup", map[string]any{"viewer": viewer(r)})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	login := r.PostFormValue("user_id")
	password := r.PostFormValue("password")
	userName := r.PostFormValue("user_name")
	if login == "" || password == "" {
		http.Error(w, "user_id and password required", http.StatusBadRequest)
		return
	}

	if _, err := s.users.Register(r.Context(), login, userName, password); err != nil {
		s.writeError(w, r, err)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login", map[string]any{"viewer": viewer(r)})
}

// handleLogin answers 404 for an unknown user and 401 for a wrong
// password. The split is deliberate: the login page tells the two cases
// apart.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	login := r.PostFormValue("user_id")
	password := r.PostFormValue("password")

	token, _, err := s.users.Login(r.Context(), login, password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.config.TokenValidityDuration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// --- posts ---

func (s *Server) handleWriteForm(w http.ResponseWriter, r *http.Request) {
	user := s.requireUser(w, r)
	if user == nil {
		return
	}
	s.render(w, r, http.StatusOK, "write", map[string]any{"viewer": viewer(r)})
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	user := s.requireUser(w, r)
	if user == nil {
		return
	}

	imagePath, err := s.saveUploadedImage(w, r)
	if err != nil {
		return // saveUploadedImage already answered
	}

	post := &models.Post{
		Title:      r.PostFormValue("title"),
		Body:       r.PostFormValue("body"),
		PostDate:   r.PostFormValue("date"),
		AuthorID:   user.Login,
		AuthorName: user.UserName,
		ImagePath:  imagePath,
	}
	created, err := s.posts.Create(r.Context(), post)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	http.Redirect(w, r, "/detail/"+strconv.FormatInt(created.ID, 10), http.StatusSeeOther)
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	user := s.requireUser(w, r)
	if user == nil {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "bad post id", http.StatusBadRequest)
		return
	}

	post, err := s.posts.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if post.AuthorID != user.Login {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	s.render(w, r, http.StatusOK, "edit", map[string]any{"viewer": viewer(r), "post": post})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	user := s.requireUser(w, r)
	if user == nil {
		return
	}

	imagePath, err := s.saveUploadedImage(w, r)
	if err != nil {
		return
	}

	id, err := strconv.ParseInt(r.PostFormValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "bad post id", http.StatusBadRequest)
		return
	}

	post := &models.Post{
		ID:        id,
		Title:     r.PostFormValue("title"),
		Body:      r.PostFormValue("body"),
		PostDate:  r.PostFormValue("date"),
		ImagePath: imagePath,
	}
	if err := s.posts.Update(r.Context(), user.Login, post); err != nil {
		s.writeError(w, r, err)
		return
	}
	http.Redirect(w, r, "/detail/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	user := s.requireUser(w, r)
	if user == nil {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "bad post id", http.StatusBadRequest)
		return
	}

	if err := s.posts.Delete(r.Context(), user.Login, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// saveUploadedImage extracts the optional image field from the multipart
// form and stores it in the blob store. An absent file is not an error and
// yields an empty reference. On failure the response is already written.
func (s *Server) saveUploadedImage(w http.ResponseWriter, r *http.Request) (string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		// plain form post without an image
		return "", nil
	}

	file, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		http.Error(w, "bad image upload", http.StatusBadRequest)
		return "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, err)
		return "", err
	}

	ref, err := s.blobs.Save(r.Context(), "image", data)
	if err != nil {
		s.writeError(w, r, err)
		return "", err
	}
	return ref, nil
}

// --- profiles ---

func (s *Server) handlePersonal(w http.ResponseWriter, r *http.Request) {
	authorID := mux.Vars(r)["userId"]

	author, err := s.users.FindByLogin(r.Context(), authorID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	posts, err := s.posts.ListByAuthor(r.Context(), authorID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "personal", map[string]any{
		"viewer":      viewer(r),
		"author_id":   author.Login,
		"author_name": author.UserName,
		"posts":       posts,
	})
}

func (s *Server) handleMyPage(w http.ResponseWriter, r *http.Request) {
	user := s.requireUser(w, r)
	if user == nil {
		return
	}

	posts, err := s.posts.ListByAuthor(r.Context(), user.Login)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "mypage", map[string]any{"viewer": viewer(r), "posts": posts})
}

// --- engagement ---

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	user := s.requireUser(w, r)
	if user == nil {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "bad post id", http.StatusBadRequest)
		return
	}

	rec, err := s.engagement.ToggleLike(r.Context(), id, user.Login)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"post_id":     rec.PostID,
		"total_likes": rec.TotalLikes,
		"liked":       rec.Liked(user.Login),
	})
}

func (s *Server) handleComment(w http.ResponseWriter, r *http.Request) {
	user := s.requireUser(w, r)
	if user == nil {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "bad post id", http.StatusBadRequest)
		return
	}

	comment := &models.Comment{
		PostID:     id,
		Body:       r.PostFormValue("body"),
		AuthorID:   user.Login,
		AuthorName: user.UserName,
	}
	if _, err := s.engagement.AddComment(r.Context(), comment); err != nil {
		s.writeError(w, r, err)
		return
	}
	http.Redirect(w, r, "/detail/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

// render forwards to the renderer and logs a failure; by then the status
// line is out, so there is nothing better to do.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, view string, data map[string]any) {
	if err := s.renderer.Render(w, status, view, data); err != nil {
		s.logger.Error(r.Context(), "render failed", "view", view, "error", err.Error())
	}
}
