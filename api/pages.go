package api

import (
	"html/template"
	"net/http"

	"github.com/jmcleod/postit/postit"
)

// Page handlers serve the application shell; everything dynamic loads
// through the JSON API. The gate has already authenticated the session by
// the time any of these run, except for the sign-in page.

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}} · Post It</title>
</head>
<body>
  <div id="root" data-page="{{.Page}}"{{if .UserID}} data-user-id="{{.UserID}}"{{end}}></div>
</body>
</html>
`))

type pageData struct {
	Title  string
	Page   string
	UserID string
}

func (a *API) renderPage(w http.ResponseWriter, r *http.Request, title, page string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	pageTemplate.Execute(w, pageData{
		Title:  title,
		Page:   page,
		UserID: userFromContext(r.Context()).ID,
	})
}

func (a *API) HomePage(w http.ResponseWriter, r *http.Request) {
	a.renderPage(w, r, "Feed", "home")
}

func (a *API) AuthPage(w http.ResponseWriter, r *http.Request) {
	a.renderPage(w, r, "Sign In", "auth")
}

func (a *API) ProfilePage(w http.ResponseWriter, r *http.Request) {
	a.renderPage(w, r, "Profile", "profile")
}

// AdminPage canonicalizes the bare admin root to its first sub-page.
func (a *API) AdminPage(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin/users", http.StatusTemporaryRedirect)
}

func (a *API) AdminUsersPage(w http.ResponseWriter, r *http.Request) {
	a.renderAdminPage(w, r, "Manage Users", "admin-users", false)
}

func (a *API) AdminPostsPage(w http.ResponseWriter, r *http.Request) {
	a.renderAdminPage(w, r, "Manage Posts", "admin-posts", false)
}

func (a *API) AdminPreferencesPage(w http.ResponseWriter, r *http.Request) {
	a.renderAdminPage(w, r, "Preferences", "admin-preferences", true)
}

func (a *API) renderAdminPage(w http.ResponseWriter, r *http.Request, title, page string, adminOnly bool) {
	user := userFromContext(r.Context())
	if adminOnly && user.Role != postit.RoleAdmin {
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}
	if !user.Role.CanModerate() {
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}
	a.renderPage(w, r, title, page)
}
