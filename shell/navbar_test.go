package shell_test

import (
	"testing"

	"github.com/jrsteele09/learnpath-client/sessions"
	"github.com/jrsteele09/learnpath-client/sessions/authfakes"
	"github.com/jrsteele09/learnpath-client/sessions/storagerepo"
	"github.com/jrsteele09/learnpath-client/shell"
	"github.com/jrsteele09/learnpath-client/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, path string) (*shell.Navbar, *sessions.Store) {
	t.Helper()
	store, err := sessions.NewStore(storagerepo.NewInMemoryRepo(), &authfakes.FakeAuthenticator{})
	require.NoError(t, err)
	nav, err := shell.NewNavbar(store, path)
	require.NoError(t, err)
	t.Cleanup(nav.Close)
	return nav, store
}

func login(t *testing.T, store *sessions.Store, u users.User) {
	t.Helper()
	require.NoError(t, store.Login(sessions.LoginPayload{User: u, Token: "tok"}))
}

func TestActiveLinkFor(t *testing.T) {
	tests := map[string]shell.Link{
		"/":                   shell.LinkHome,
		"/learning-paths/abc": shell.LinkLearningPaths,
		"/posts":              shell.LinkPosts,
		"/create-path":        shell.LinkCreatePath,
		"/profile":            shell.LinkNone,
	}
	for path, want := range tests {
		assert.Equal(t, want, shell.ActiveLinkFor(path), path)
	}
}

func TestNavbar_FollowsSession(t *testing.T) {
	nav, store := setup(t, "/posts")
	require.Equal(t, shell.LinkPosts, nav.Active())
	require.False(t, nav.IsAuthenticated())
	require.Empty(t, nav.UserLabel())
	require.Equal(t, "/login", nav.AccountLinks()[0].Route)
	require.False(t, nav.ToggleDropdown())

	login(t, store, users.User{ID: "u1", Name: "Ada Lovelace", Email: "ada@example.com"})
	require.True(t, nav.IsAuthenticated())
	require.Equal(t, "Ada Lovelace", nav.UserLabel())
	require.Len(t, nav.AccountLinks(), 4)

	require.NoError(t, store.UpdateCurrentUser(users.User{Username: "ada"}))
	require.Equal(t, "ada", nav.UserLabel())
	user, ok := nav.User()
	require.True(t, ok)
	require.Equal(t, "u1", user.ID)
}

func TestNavbar_LogoutClosesDropdown(t *testing.T) {
	nav, store := setup(t, "/")
	login(t, store, users.User{ID: "u1", Email: "ada@example.com"})

	require.True(t, nav.ToggleDropdown())
	require.True(t, nav.ToggleMobileMenu())
	nav.Logout()

	require.False(t, nav.DropdownOpen())
	require.False(t, nav.MobileMenuOpen())
	require.False(t, nav.IsAuthenticated())
	require.False(t, store.IsAuthenticated())
}

func TestNavbar_ExternalLogoutClosesDropdown(t *testing.T) {
	nav, store := setup(t, "/")
	login(t, store, users.User{ID: "u1", Email: "ada@example.com"})
	require.True(t, nav.ToggleDropdown())

	store.Logout()
	require.False(t, nav.DropdownOpen())
}

func TestNavbar_Search(t *testing.T) {
	nav, _ := setup(t, "/")

	require.True(t, nav.ToggleSearch())
	nav.SetQuery("  go & rust ")
	route, ok := nav.SubmitSearch()
	require.True(t, ok)
	require.Equal(t, "/search?q=go+%26+rust", route)
	require.False(t, nav.SearchOpen())
	require.Empty(t, nav.Query())

	nav.SetQuery("   ")
	_, ok = nav.SubmitSearch()
	require.False(t, ok)
}

func TestNavbar_NavigateClosesMenus(t *testing.T) {
	nav, store := setup(t, "/")
	login(t, store, users.User{ID: "u1", Username: "ada"})
	nav.ToggleDropdown()
	nav.ToggleMobileMenu()
	nav.ToggleSearch()

	nav.Navigate("/learning-paths")
	require.Equal(t, shell.LinkLearningPaths, nav.Active())
	require.False(t, nav.DropdownOpen())
	require.False(t, nav.MobileMenuOpen())
	require.False(t, nav.SearchOpen())
	require.Len(t, nav.PrimaryLinks(), 4)
}

func TestNavbar_CloseUnsubscribes(t *testing.T) {
	nav, store := setup(t, "/")
	nav.Close()
	login(t, store, users.User{ID: "u1", Username: "ada"})
	require.False(t, nav.IsAuthenticated())
}
