package shell

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/jrsteele09/learnpath-client/sessions"
	"github.com/jrsteele09/learnpath-client/users"
)

// SessionSource is the part of the session store the navigation shell uses.
type SessionSource interface {
	Current() sessions.Session
	Subscribe(fn func(sessions.Session)) func()
	Logout()
}

// Link identifies a primary navigation entry.
type Link string

const (
	LinkNone          Link = ""
	LinkHome          Link = "home"
	LinkLearningPaths Link = "learning-paths"
	LinkPosts         Link = "posts"
	LinkCreatePath    Link = "create-path"
)

// MenuItem is a label and the route it opens.
type MenuItem struct {
	Label string
	Route string
	Link  Link
}

var primaryItems = []MenuItem{
	{Label: "Home", Route: "/", Link: LinkHome},
	{Label: "Learning Paths", Route: "/learning-paths", Link: LinkLearningPaths},
	{Label: "Create Path", Route: "/create-path", Link: LinkCreatePath},
	{Label: "Posts", Route: "/posts", Link: LinkPosts},
}

var accountItems = []MenuItem{
	{Label: "Profile", Route: "/profile"},
	{Label: "Learning Progress", Route: "/learning-progress"},
	{Label: "Settings", Route: "/settings"},
	{Label: "Saved Paths", Route: "/saved-paths"},
}

var guestItems = []MenuItem{
	{Label: "Login", Route: "/login"},
	{Label: "Register", Route: "/register"},
}

// ActiveLinkFor maps a route path to the highlighted primary link.
func ActiveLinkFor(path string) Link {
	switch {
	case path == "/":
		return LinkHome
	case strings.Contains(path, "/learning-paths"):
		return LinkLearningPaths
	case strings.Contains(path, "/posts"):
		return LinkPosts
	case strings.Contains(path, "/create-path"):
		return LinkCreatePath
	default:
		return LinkNone
	}
}

// Navbar is the navigation shell state. It follows the session store and
// never talks to the backend itself.
type Navbar struct {
	source      SessionSource
	unsubscribe func()

	mu           sync.Mutex
	session      sessions.Session
	dropdownOpen bool
	mobileOpen   bool
	searchOpen   bool
	query        string
	active       Link
}

func NewNavbar(source SessionSource, currentPath string) (*Navbar, error) {
	if source == nil {
		return nil, errors.New("[Navbar New] session source is required")
	}
	n := &Navbar{
		source:  source,
		session: source.Current(),
		active:  ActiveLinkFor(currentPath),
	}
	n.unsubscribe = source.Subscribe(n.onSession)
	return n, nil
}

func (n *Navbar) onSession(s sessions.Session) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.session = s
	if s.IsZero() {
		n.dropdownOpen = false
	}
}

// Close stops following the session store.
func (n *Navbar) Close() {
	if n.unsubscribe != nil {
		n.unsubscribe()
	}
}

func (n *Navbar) IsAuthenticated() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return !n.session.IsZero()
}

// User returns the displayed user, if any.
func (n *Navbar) User() (users.User, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.session.User, !n.session.IsZero()
}

// UserLabel is the name shown next to the avatar, empty when logged out.
func (n *Navbar) UserLabel() string {
	user, ok := n.User()
	if !ok {
		return ""
	}
	return user.DisplayName()
}

func (n *Navbar) Active() Link {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.active
}

// Navigate records the new route and closes every open menu.
func (n *Navbar) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.active = ActiveLinkFor(path)
	n.dropdownOpen = false
	n.mobileOpen = false
	n.searchOpen = false
}

func (n *Navbar) PrimaryLinks() []MenuItem {
	return append([]MenuItem{}, primaryItems...)
}

// AccountLinks lists the dropdown entries for a signed in user, or the
// login and register entries otherwise.
func (n *Navbar) AccountLinks() []MenuItem {
	if n.IsAuthenticated() {
		return append([]MenuItem{}, accountItems...)
	}
	return append([]MenuItem{}, guestItems...)
}

func (n *Navbar) DropdownOpen() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.dropdownOpen
}

// ToggleDropdown opens the account dropdown. It stays closed while logged out.
func (n *Navbar) ToggleDropdown() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.session.IsZero() {
		n.dropdownOpen = false
		return false
	}
	n.dropdownOpen = !n.dropdownOpen
	return n.dropdownOpen
}

// CloseDropdown is the outside-click handler.
func (n *Navbar) CloseDropdown() {
	n.mu.Lock()
	n.dropdownOpen = false
	n.mu.Unlock()
}

func (n *Navbar) MobileMenuOpen() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.mobileOpen
}

func (n *Navbar) ToggleMobileMenu() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mobileOpen = !n.mobileOpen
	return n.mobileOpen
}

func (n *Navbar) SearchOpen() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.searchOpen
}

func (n *Navbar) ToggleSearch() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.searchOpen = !n.searchOpen
	return n.searchOpen
}

func (n *Navbar) SetQuery(q string) {
	n.mu.Lock()
	n.query = q
	n.mu.Unlock()
}

func (n *Navbar) Query() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.query
}

// SubmitSearch closes the search box, clears the query and returns the
// results route. A blank query yields no route.
func (n *Navbar) SubmitSearch() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	q := strings.TrimSpace(n.query)
	n.searchOpen = false
	n.query = ""
	if q == "" {
		return "", false
	}
	return "/search?q=" + url.QueryEscape(q), true
}

// Logout ends the session through the store and closes the dropdown.
func (n *Navbar) Logout() {
	n.source.Logout()

	n.mu.Lock()
	n.dropdownOpen = false
	n.mobileOpen = false
	n.mu.Unlock()
}
